// Package votes implements the voting-record extraction pipeline: locate
// minutes PDFs, pull text from each, send it to the Messages API with the
// vote extraction guide, and normalize the returned rows onto the fixed
// 12-column CSV schema.
package votes

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ballston-civic/minutes-engine/internal/anthropic"
	"github.com/ballston-civic/minutes-engine/internal/documents"
	"github.com/ballston-civic/minutes-engine/pkg/types"
)

// minUsableChars is the minimum stripped text length worth sending to the
// API. Below this the PDF is almost certainly image-only without OCR.
const minUsableChars = 50

// TextExtractor pulls text from a PDF file.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Backend abstracts the Messages API so tests can supply a mock.
type Backend interface {
	ExtractRows(ctx context.Context, docText, title, dateHint, guide string) ([]map[string]any, error)
}

// ClaudeBackend renders the extraction prompt and calls the Messages API.
type ClaudeBackend struct {
	Client *anthropic.Client
}

// ExtractRows sends one document's text and decodes the response rows.
func (b *ClaudeBackend) ExtractRows(ctx context.Context, docText, title, dateHint, guide string) ([]map[string]any, error) {
	prompt, err := renderPrompt(guide, title, dateHint, docText)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}
	text, err := b.Client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return anthropic.DecodeRows(text)
}

// BatchSummary holds counts from one pipeline run.
type BatchSummary struct {
	Processed int
	Skipped   int
	Failed    int
	Rows      int
}

// Total returns the number of files considered.
func (s BatchSummary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// HasFailures reports whether any files failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Run processes every located minutes PDF and returns the accumulated
// normalized rows. Per-file failures are printed to w and counted; the run
// continues. A missing documents directory is fatal.
func Run(ctx context.Context, cfg types.VotesConfig, extractor TextExtractor, backend Backend, w io.Writer) ([]types.VoteRow, BatchSummary, error) {
	files, err := documents.ListPDFs(cfg.DocsDir, cfg.Limit, !cfg.IncludeAll)
	if err != nil {
		return nil, BatchSummary{}, fmt.Errorf("documents directory not found: %s", cfg.DocsDir)
	}

	label := "minute PDF(s)"
	if cfg.IncludeAll {
		label = "PDF(s)"
	}
	fmt.Fprintf(w, "Found %d %s to process.\n", len(files), label)
	if len(files) == 0 {
		return nil, BatchSummary{}, fmt.Errorf("no meeting minute PDFs found in %s", cfg.DocsDir)
	}

	guide := LoadGuide(cfg.GuidePaths)

	var summary BatchSummary
	var allRows []types.VoteRow

	for i, name := range files {
		path := filepath.Join(cfg.DocsDir, name)
		dateHint := documents.DateFromFilename(name)
		fmt.Fprintf(w, "[%d/%d] %s (%s)\n", i+1, len(files), name, dateHint)

		text, err := extractor.Extract(ctx, path)
		if err != nil {
			fmt.Fprintf(w, "  Error: %v\n", err)
			summary.Failed++
			continue
		}
		if n := len(strings.TrimSpace(text)); n < minUsableChars {
			fmt.Fprintf(w, "  Skipped: only %d char(s) extracted (PDF may be image-only; install pdftoppm + tesseract for OCR)\n", n)
			summary.Skipped++
			continue
		}

		raws, err := backend.ExtractRows(ctx, text, name, dateHint, guide)
		if err != nil {
			fmt.Fprintf(w, "  Error: %v\n", err)
			summary.Failed++
			continue
		}
		if len(raws) == 0 {
			fmt.Fprintf(w, "  -> 0 row(s) (no motions found or parse failed)\n")
			summary.Processed++
			continue
		}

		kept := 0
		for _, row := range NormalizeRows(raws, dateHint) {
			if err := ValidateRow(row); err != nil {
				fmt.Fprintf(w, "  dropped invalid row: %v\n", err)
				continue
			}
			allRows = append(allRows, row)
			kept++
		}
		fmt.Fprintf(w, "  -> %d row(s)\n", kept)
		summary.Processed++
		summary.Rows += kept
	}

	return allRows, summary, nil
}
