// Package minutesjson turns meeting minutes PDFs into per-document structured
// JSON. Unlike the text pipelines, the PDF itself travels to the Messages API
// as a base64 document attachment, so scanned minutes work without OCR.
package minutesjson

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ballston-civic/minutes-engine/internal/anthropic"
	"github.com/ballston-civic/minutes-engine/pkg/types"
)

// maxGuideChars caps how much of the extraction guide travels in the prompt.
const maxGuideChars = 50_000

// fallbackGuide is used when no guide document is found.
const fallbackGuide = "Extract all meeting data following standard meeting minutes format."

// Backend abstracts the document-attachment API call.
type Backend interface {
	ExtractDocument(ctx context.Context, pdfData []byte, prompt string) (string, error)
}

// ClaudeBackend sends the PDF as a base64 document block.
type ClaudeBackend struct {
	Client *anthropic.Client
}

func (b *ClaudeBackend) ExtractDocument(ctx context.Context, pdfData []byte, prompt string) (string, error) {
	return b.Client.CompleteWithDocument(ctx, pdfData, prompt)
}

// Summary holds counts from one processing run.
type Summary struct {
	Successful int
	Failed     int
	Skipped    int
}

// HasFailures reports whether any files failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Pending lists PDFs in cfg.PDFDir that have no matching JSON output yet.
// Already-processed files are reported to w and skipped.
func Pending(cfg types.ProcessConfig, w io.Writer) ([]string, int, error) {
	entries, err := os.ReadDir(cfg.PDFDir)
	if err != nil {
		return nil, 0, fmt.Errorf("PDF directory not found: %s", cfg.PDFDir)
	}

	var pending []string
	skipped := 0
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		jsonName := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())) + ".json"
		if _, err := os.Stat(filepath.Join(cfg.JSONDir, jsonName)); err == nil {
			fmt.Fprintf(w, "Skipping %s (JSON already exists)\n", e.Name())
			skipped++
			continue
		}
		pending = append(pending, e.Name())
	}
	sort.Strings(pending)
	return pending, skipped, nil
}

// Confirm asks the user to approve processing the pending files. It returns
// true without prompting when cfg.AssumeYes is set.
func Confirm(cfg types.ProcessConfig, n int, in io.Reader, w io.Writer) bool {
	if cfg.AssumeYes {
		return true
	}
	fmt.Fprintf(w, "\nProcess these %d file(s)? (y/n): ", n)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

// Run processes every pending PDF: one API call per document, or two merged
// calls for PDFs larger than cfg.TwoPassBytes, writing <stem>.json next to
// the other outputs. Per-file failures are reported and counted.
func Run(ctx context.Context, cfg types.ProcessConfig, backend Backend, pending []string, w io.Writer) (Summary, error) {
	if err := os.MkdirAll(cfg.JSONDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating JSON directory: %w", err)
	}

	guide := loadGuide(cfg.GuidePaths, w)

	var summary Summary
	for i, name := range pending {
		fmt.Fprintf(w, "\n[%d/%d] Processing: %s\n", i+1, len(pending), name)

		data, err := processOne(ctx, cfg, backend, name, guide, w)
		if err != nil {
			fmt.Fprintf(w, "  Error: %v\n", err)
			summary.Failed++
			continue
		}

		stem := strings.TrimSuffix(name, filepath.Ext(name))
		outPath := filepath.Join(cfg.JSONDir, stem+".json")
		if err := writeJSON(outPath, data); err != nil {
			fmt.Fprintf(w, "  Error: %v\n", err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "  Saved: %s\n", outPath)
		summary.Successful++
	}
	return summary, nil
}

func processOne(ctx context.Context, cfg types.ProcessConfig, backend Backend, name, guide string, w io.Writer) (map[string]any, error) {
	pdfData, err := os.ReadFile(filepath.Join(cfg.PDFDir, name))
	if err != nil {
		return nil, fmt.Errorf("reading PDF: %w", err)
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if cfg.TwoPassBytes > 0 && int64(len(pdfData)) > cfg.TwoPassBytes {
		fmt.Fprintf(w, "  Large document (%d bytes), extracting in two passes\n", len(pdfData))
		structure, err := extractPass(ctx, backend, pdfData, structurePrompt(name, stem, guide))
		if err != nil {
			return nil, err
		}
		detail, err := extractPass(ctx, backend, pdfData, detailPrompt(name, stem, guide))
		if err != nil {
			return nil, err
		}
		return anthropic.MergeShallow(structure, detail), nil
	}
	return extractPass(ctx, backend, pdfData, fullPrompt(name, stem, guide))
}

func extractPass(ctx context.Context, backend Backend, pdfData []byte, prompt string) (map[string]any, error) {
	text, err := backend.ExtractDocument(ctx, pdfData, prompt)
	if err != nil {
		return nil, err
	}
	cleaned := text
	if strings.HasPrefix(strings.TrimSpace(cleaned), "```") {
		cleaned = anthropic.ExtractObject(cleaned)
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		pv := cleaned
		if len(pv) > 200 {
			pv = pv[:200]
		}
		return nil, fmt.Errorf("invalid JSON response: %w (preview: %s)", err, pv)
	}
	return data, nil
}

func loadGuide(candidates []string, w io.Writer) string {
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		guide := string(data)
		if len(guide) > maxGuideChars {
			guide = guide[:maxGuideChars]
		}
		return guide
	}
	fmt.Fprintf(w, "Warning: extraction guide not found, using basic instructions\n")
	return fallbackGuide
}

func writeJSON(path string, data map[string]any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func fullPrompt(name, stem, guide string) string {
	return fmt.Sprintf(`You are processing a Board of Trustees meeting minutes PDF.

Follow the extraction guide exactly to extract all data into JSON format.

CRITICAL REQUIREMENTS:
1. Output filename MUST be: %s.json
2. Include ALL sections: meeting_metadata, votes, public_comments, mayor_announcements, liaison_reports, etc.
3. Public comment_text must be WORD-FOR-WORD from source
4. Every vote must include individual trustee breakdown
5. Standardize all trustee/mayor names consistently

Return ONLY valid JSON - no markdown, no explanations, just the JSON object.

The PDF filename is: %s

EXTRACTION GUIDE:
%s

Please extract all data from this meeting minutes PDF into the JSON format specified in the guide.`, stem, name, guide)
}

func structurePrompt(name, stem, guide string) string {
	return fmt.Sprintf(`You are processing a large Board of Trustees meeting minutes PDF in two passes. This is PASS 1 of 2: structure.

Follow the extraction guide to extract meeting_metadata, votes, mayor_announcements, and liaison_reports. SKIP public_comments entirely in this pass; it is extracted separately.

Every vote must include individual trustee breakdown. Standardize all trustee/mayor names consistently. Output filename will be: %s.json

Return ONLY valid JSON - no markdown, no explanations, just the JSON object.

The PDF filename is: %s

EXTRACTION GUIDE:
%s`, stem, name, guide)
}

func detailPrompt(name, stem, guide string) string {
	return fmt.Sprintf(`You are processing a large Board of Trustees meeting minutes PDF in two passes. This is PASS 2 of 2: verbatim detail.

Extract ONLY the public_comments section. comment_text must be WORD-FOR-WORD from source, complete and unabridged. Return a JSON object with the single top-level key "public_comments".

Return ONLY valid JSON - no markdown, no explanations, just the JSON object.

The PDF filename is: %s (output: %s.json)

EXTRACTION GUIDE:
%s`, name, stem, guide)
}
