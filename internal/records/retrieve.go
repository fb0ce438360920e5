package records

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ballston-civic/minutes-engine/pkg/types"
)

// QueryOptions holds parameters for records queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over motion descriptions.
	Query string

	// Date filters by exact meeting date (YYYY-MM-DD).
	Date string

	// Result filters by vote result (e.g. "ALL AYES", "FAILED").
	Result string

	// Mover filters by mover substring, case-insensitive.
	Mover string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Date == "" && q.Result == "" && q.Mover == ""
}

// QueryResult is one stored voting-record row with its source file.
type QueryResult struct {
	Source string        `json:"source" yaml:"source"`
	Row    types.VoteRow `json:"row" yaml:"row"`
}

// Retrieve queries the votes table with optional full-text search and
// structured filters. Full-text queries are ranked by relevance; structured
// queries sort by date then section.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	cols := "v.source, v." + strings.Join(types.VoteColumns, ", v.")

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(`SELECT ` + cols + `
			FROM votes_fts
			JOIN votes v ON v.rowid = votes_fts.rowid
			WHERE votes_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(`SELECT ` + cols + ` FROM votes v WHERE 1=1`)
	}

	if opts.Date != "" {
		qb.WriteString(` AND v.date = ?`)
		args = append(args, opts.Date)
	}
	if opts.Result != "" {
		qb.WriteString(` AND v.vote_result = ?`)
		args = append(args, opts.Result)
	}
	if opts.Mover != "" {
		qb.WriteString(` AND lower(v.mover) LIKE ?`)
		args = append(args, "%"+strings.ToLower(opts.Mover)+"%")
	}

	if useFTS {
		qb.WriteString(` ORDER BY votes_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY v.date, v.section`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var source string
		vals := make([]string, len(types.VoteColumns))
		scanDest := make([]any, 0, len(vals)+1)
		scanDest = append(scanDest, &source)
		for i := range vals {
			scanDest = append(scanDest, &vals[i])
		}
		if err := rows.Scan(scanDest...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(types.VoteRow, len(types.VoteColumns))
		for i, col := range types.VoteColumns {
			row[col] = vals[i]
		}
		results = append(results, QueryResult{Source: source, Row: row})
	}
	return results, rows.Err()
}

// MemberHistory returns every stored motion the named member voted on, with
// their status. Matching is exact on the stored member name.
func (s *Store) MemberHistory(ctx context.Context, member string) ([]types.VoteRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.motion, r.description, r.category, r.date, r.proposer, r.seconder, r.result, r.url,
			mv.member_name, mv.status
		FROM member_votes mv
		JOIN scan_records r ON r.id = mv.record_id
		WHERE mv.member_name = ?
		ORDER BY r.date, r.id`, member)
	if err != nil {
		return nil, fmt.Errorf("querying member history: %w", err)
	}
	defer rows.Close()

	var records []types.VoteRecord
	for rows.Next() {
		var rec types.VoteRecord
		var mv types.MemberVote
		if err := rows.Scan(
			&rec.ID, &rec.Motion, &rec.Description, &rec.Category, &rec.Date,
			&rec.Proposer, &rec.Seconder, &rec.Result, &rec.URL,
			&mv.MemberName, &mv.Status,
		); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.Votes = []types.MemberVote{mv}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// readVoteRecords reads a generated-votes JSON array from path.
func readVoteRecords(path string) ([]types.VoteRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []types.VoteRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}
