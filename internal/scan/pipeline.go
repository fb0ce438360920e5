// Package scan produces the per-motion vote records consumed by the
// front-end's Voting History tab. It is the older of the two vote pipelines
// and keeps its original member roster and JSON output shape.
package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ballston-civic/minutes-engine/internal/anthropic"
	"github.com/ballston-civic/minutes-engine/internal/documents"
	"github.com/ballston-civic/minutes-engine/pkg/types"
)

// minUsableChars is the minimum stripped text length worth analyzing.
const minUsableChars = 100

// maxDocChars caps how much document text is inlined into the prompt.
const maxDocChars = 180_000

// analysisSchemaJSON constrains the model's structured output to the
// MeetingAnalysis shape.
const analysisSchemaJSON = `{
  "type": "object",
  "properties": {
    "meetingDate": {"type": "string"},
    "summary": {"type": "string"},
    "votes": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "motion": {"type": "string"},
          "proposer": {"type": "string"},
          "seconder": {"type": "string"},
          "ayes": {"type": "array", "items": {"type": "string"}},
          "nays": {"type": "array", "items": {"type": "string"}},
          "absent": {"type": "array", "items": {"type": "string"}},
          "result": {"type": "string", "enum": ["Passed", "Failed"]}
        },
        "required": ["motion", "ayes", "nays", "result"]
      }
    }
  },
  "required": ["meetingDate", "summary", "votes"],
  "additionalProperties": false
}`

// Analyzer extracts a meeting analysis from one document's text.
type Analyzer interface {
	Analyze(ctx context.Context, docText, title, date string) (types.MeetingAnalysis, error)
}

// ClaudeAnalyzer calls the Messages API with structured output.
type ClaudeAnalyzer struct {
	Client *anthropic.Client
}

// Analyze sends the document text and decodes the constrained JSON response.
func (a *ClaudeAnalyzer) Analyze(ctx context.Context, docText, title, date string) (types.MeetingAnalysis, error) {
	if len(docText) > maxDocChars {
		docText = docText[:maxDocChars]
	}
	prompt := fmt.Sprintf(`Below is the full text of a Board of Trustees meeting minutes document from the Village of Ballston Spa.

Title: %s
Date (from filename): %s

Extract: meeting date, a brief summary of major decisions, and for each motion: motion text, proposer, seconder, ayes (array of trustee names), nays (array of names), absent (array of names), and result (Passed or Failed). Return only valid JSON matching the required schema.

--- DOCUMENT TEXT ---
%s
--- END ---`, title, date, docText)

	text, err := a.Client.CompleteJSON(ctx, prompt, json.RawMessage(analysisSchemaJSON))
	if err != nil {
		return types.MeetingAnalysis{}, err
	}

	var analysis types.MeetingAnalysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &analysis); err != nil {
		return types.MeetingAnalysis{}, fmt.Errorf("decoding analysis: %w", err)
	}
	return analysis, nil
}

// TextExtractor pulls text from a PDF file.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// BatchSummary holds counts from one scan run.
type BatchSummary struct {
	Scanned int
	Skipped int
	Failed  int
	Records int
}

// Total returns the number of files considered.
func (s BatchSummary) Total() int {
	return s.Scanned + s.Skipped + s.Failed
}

// HasFailures reports whether any files failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Run analyzes every located minutes PDF and returns the flattened vote
// records. Per-file failures are printed to w and counted; the run continues.
func Run(ctx context.Context, cfg types.ScanConfig, extractor TextExtractor, analyzer Analyzer, w io.Writer) ([]types.VoteRecord, BatchSummary, error) {
	files, err := documents.ListPDFs(cfg.DocsDir, cfg.Limit, true)
	if err != nil {
		return nil, BatchSummary{}, fmt.Errorf("documents directory not found: %s", cfg.DocsDir)
	}
	fmt.Fprintf(w, "Found %d minute PDF(s) to scan (limit=%d): %v\n", len(files), cfg.Limit, files)

	var summary BatchSummary
	var all []types.VoteRecord

	for i, name := range files {
		path := filepath.Join(cfg.DocsDir, name)
		date := documents.DateFromFilename(name)
		fmt.Fprintf(w, "[%d/%d] %s (%s)\n", i+1, len(files), name, date)

		text, err := extractor.Extract(ctx, path)
		if err != nil {
			fmt.Fprintf(w, "  Error: %v\n", err)
			summary.Failed++
			continue
		}
		if len(strings.TrimSpace(text)) < minUsableChars {
			fmt.Fprintf(w, "  Skipped: too little text extracted\n")
			summary.Skipped++
			continue
		}

		analysis, err := analyzer.Analyze(ctx, text, name, date)
		if err != nil {
			fmt.Fprintf(w, "  Error: %v\n", err)
			summary.Failed++
			continue
		}

		meta := DocMeta{
			ID:    fmt.Sprintf("local-bot-%d", i+1),
			Title: name,
			Date:  date,
			URL:   "/documents/board_of_trustees_documents/" + name,
		}
		records := RecordsFromAnalysis(analysis, meta)
		all = append(all, records...)
		fmt.Fprintf(w, "  -> %d vote(s)\n", len(records))
		summary.Scanned++
		summary.Records += len(records)
	}

	return all, summary, nil
}

// WriteJSON writes the records as indented JSON without HTML escaping, so
// document URLs stay readable in the output file.
func WriteJSON(path string, records []types.VoteRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if records == nil {
		records = []types.VoteRecord{}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
