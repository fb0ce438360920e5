// Package records persists extracted voting records in SQLite and builds a
// full-text retrieval index over motion descriptions, so past votes can be
// searched without re-reading the CSV and JSON outputs.
package records

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ballston-civic/minutes-engine/internal/votes"
	"github.com/ballston-civic/minutes-engine/pkg/types"
)

const dbFile = "votes.db"

// Store manages the voting-records SQLite database.
type Store struct {
	db         *sql.DB
	indexDir   string
	maxResults int
}

// NewStore opens or creates the records database at indexDir/votes.db,
// creating the schema if it does not exist.
func NewStore(cfg types.RecordsConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, indexDir: cfg.IndexDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS votes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			date TEXT,
			section TEXT,
			motion_description TEXT NOT NULL,
			mover TEXT,
			seconder TEXT,
			vote_result TEXT,
			mayor_rossi TEXT,
			trustee_price_bush TEXT,
			trustee_dunkelbarger TEXT,
			trustee_vandeinse_perez TEXT,
			trustee_dubuque TEXT,
			notes TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_date ON votes(date)`,
		`CREATE TABLE IF NOT EXISTS scan_records (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			motion TEXT NOT NULL,
			description TEXT,
			category TEXT,
			date TEXT,
			proposer TEXT,
			seconder TEXT,
			result TEXT,
			url TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS member_votes (
			record_id TEXT NOT NULL REFERENCES scan_records(id) ON DELETE CASCADE,
			member_name TEXT NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_member_votes_record ON member_votes(record_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='votes_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE votes_fts USING fts5(motion_description, content=votes, content_rowid=rowid)`,
			`CREATE TRIGGER votes_ai AFTER INSERT ON votes BEGIN
				INSERT INTO votes_fts(rowid, motion_description) VALUES (new.rowid, new.motion_description);
			END`,
			`CREATE TRIGGER votes_ad AFTER DELETE ON votes BEGIN
				INSERT INTO votes_fts(votes_fts, rowid, motion_description) VALUES('delete', old.rowid, old.motion_description);
			END`,
			`CREATE TRIGGER votes_au AFTER UPDATE ON votes BEGIN
				INSERT INTO votes_fts(votes_fts, rowid, motion_description) VALUES('delete', old.rowid, old.motion_description);
				INSERT INTO votes_fts(rowid, motion_description) VALUES (new.rowid, new.motion_description);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// IngestSummary holds counts from an ingest run.
type IngestSummary struct {
	Rows    int
	Records int
	Failed  int
}

// IngestCSV loads a voting-record CSV into the votes table, replacing any
// rows previously ingested from the same source path.
func (s *Store) IngestCSV(ctx context.Context, path string, w io.Writer) (IngestSummary, error) {
	rows, err := votes.ReadCSV(path)
	if err != nil {
		return IngestSummary{}, err
	}

	source := filepath.Base(path)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE source = ?`, source); err != nil {
		return IngestSummary{}, fmt.Errorf("deleting old rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO votes (source, date, section, motion_description, mover, seconder, vote_result,
			mayor_rossi, trustee_price_bush, trustee_dunkelbarger, trustee_vandeinse_perez, trustee_dubuque, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		args := make([]any, 0, len(types.VoteColumns)+1)
		args = append(args, source)
		for _, col := range types.VoteColumns {
			args = append(args, row[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return IngestSummary{}, fmt.Errorf("inserting row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return IngestSummary{}, err
	}
	fmt.Fprintf(w, "ingested %d row(s) from %s\n", len(rows), source)
	return IngestSummary{Rows: len(rows)}, nil
}

// IngestJSON loads a generated-votes JSON file into the scan_records and
// member_votes tables, replacing any records previously ingested from the
// same source path.
func (s *Store) IngestJSON(ctx context.Context, path string, w io.Writer) (IngestSummary, error) {
	records, err := readVoteRecords(path)
	if err != nil {
		return IngestSummary{}, err
	}

	source := filepath.Base(path)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scan_records WHERE source = ?`, source); err != nil {
		return IngestSummary{}, fmt.Errorf("deleting old records: %w", err)
	}

	recStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO scan_records (id, source, motion, description, category, date, proposer, seconder, result, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer recStmt.Close()

	mvStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO member_votes (record_id, member_name, status) VALUES (?, ?, ?)`)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer mvStmt.Close()

	for _, rec := range records {
		if _, err := recStmt.ExecContext(ctx,
			rec.ID, source, rec.Motion, rec.Description, rec.Category,
			rec.Date, rec.Proposer, rec.Seconder, rec.Result, rec.URL,
		); err != nil {
			return IngestSummary{}, fmt.Errorf("inserting record %s: %w", rec.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM member_votes WHERE record_id = ?`, rec.ID); err != nil {
			return IngestSummary{}, fmt.Errorf("clearing member votes: %w", err)
		}
		for _, mv := range rec.Votes {
			if _, err := mvStmt.ExecContext(ctx, rec.ID, mv.MemberName, mv.Status); err != nil {
				return IngestSummary{}, fmt.Errorf("inserting member vote: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return IngestSummary{}, err
	}
	fmt.Fprintf(w, "ingested %d record(s) from %s\n", len(records), source)
	return IngestSummary{Records: len(records)}, nil
}
