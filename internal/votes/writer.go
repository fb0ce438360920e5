package votes

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ballston-civic/minutes-engine/pkg/types"
)

// WriteCSV writes the fixed header and all rows to path, overwriting any
// existing file. Parent directories are created as needed.
func WriteCSV(path string, rows []types.VoteRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(types.VoteColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(types.VoteColumns))
		for i, col := range types.VoteColumns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

// ReadCSV reads a voting-record CSV written by WriteCSV back into rows.
// The header row must match the fixed column set.
func ReadCSV(path string) ([]types.VoteRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	header := records[0]
	if len(header) != len(types.VoteColumns) {
		return nil, fmt.Errorf("%s: expected %d columns, found %d", path, len(types.VoteColumns), len(header))
	}
	for i, col := range types.VoteColumns {
		if header[i] != col {
			return nil, fmt.Errorf("%s: column %d is %q, want %q", path, i, header[i], col)
		}
	}

	rows := make([]types.VoteRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(types.VoteRow, len(types.VoteColumns))
		for i, col := range types.VoteColumns {
			row[col] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteXLSX writes the rows as a single-sheet workbook for trustees who want
// the record in a spreadsheet rather than the front-end.
func WriteXLSX(path string, rows []types.VoteRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	f := excelize.NewFile()
	const sheet = "Voting Record"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	for i, col := range types.VoteColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for i, col := range types.VoteColumns {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(sheet, cell, row[col]); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return f.Close()
}
