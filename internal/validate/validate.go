// Package validate reports how much text each extraction method can pull out
// of the downloaded PDFs, so the operator knows whether the vote pipelines
// will see usable input before spending API calls.
package validate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/ballston-civic/minutes-engine/internal/documents"
)

// usableChars is the per-method threshold for counting a file as readable.
const usableChars = 100

// previewChars caps the stored text preview.
const previewChars = 200

// Probes supplies the extraction methods under test. The OCR fields may
// report unavailability; the report then marks OCR as not installed.
type Probes struct {
	Native       func(path string) (string, error)
	OCRAvailable func() bool
	OCR          func(ctx context.Context, path string) (string, error)
}

// FileReport is one PDF's extraction results.
type FileReport struct {
	Name          string `yaml:"name"`
	NativeChars   int    `yaml:"native_chars"`
	NativeError   string `yaml:"native_error,omitempty"`
	NativePreview string `yaml:"native_preview,omitempty"`
	OCRChars      int    `yaml:"ocr_chars"`
	OCRError      string `yaml:"ocr_error,omitempty"`
	OCRPreview    string `yaml:"ocr_preview,omitempty"`
}

// Report is the full validation result.
type Report struct {
	Dir          string       `yaml:"dir"`
	OCRAvailable bool         `yaml:"ocr_available"`
	Files        []FileReport `yaml:"files"`
	NativeOK     int          `yaml:"native_ok"`
	OCROK        int          `yaml:"ocr_ok"`
}

// Run probes every non-draft PDF in dir, minutes or not, and prints per-file
// results to w.
func Run(ctx context.Context, dir string, limit int, probes Probes, w io.Writer) (Report, error) {
	files, err := documents.ListPDFs(dir, limit, false)
	if err != nil {
		return Report{}, fmt.Errorf("directory not found: %s", dir)
	}

	report := Report{Dir: dir, OCRAvailable: probes.OCRAvailable()}
	fmt.Fprintf(w, "Testing text extraction on %d PDF(s) in %s\n", len(files), dir)

	for _, name := range files {
		path := filepath.Join(dir, name)
		fr := FileReport{Name: name}

		if text, err := probes.Native(path); err != nil {
			fr.NativeError = err.Error()
		} else {
			stripped := strings.TrimSpace(text)
			fr.NativeChars = len(stripped)
			fr.NativePreview = preview(stripped)
		}

		if report.OCRAvailable {
			if text, err := probes.OCR(ctx, path); err != nil {
				fr.OCRError = err.Error()
			} else {
				stripped := strings.TrimSpace(text)
				fr.OCRChars = len(stripped)
				fr.OCRPreview = preview(stripped)
			}
		}

		if fr.NativeChars >= usableChars {
			report.NativeOK++
		}
		if fr.OCRChars >= usableChars {
			report.OCROK++
		}
		report.Files = append(report.Files, fr)

		fmt.Fprintf(w, "\n%s\n", name)
		fmt.Fprintf(w, "  native: %s\n", statusLine(fr.NativeChars, fr.NativeError))
		if report.OCRAvailable {
			fmt.Fprintf(w, "  OCR:    %s\n", statusLine(fr.OCRChars, fr.OCRError))
		} else {
			fmt.Fprintf(w, "  OCR:    not available (install poppler and tesseract)\n")
		}
	}

	fmt.Fprintf(w, "\nSummary: %d PDF(s) tested, native >=%d chars: %d", len(files), usableChars, report.NativeOK)
	if report.OCRAvailable {
		fmt.Fprintf(w, ", OCR >=%d chars: %d", usableChars, report.OCROK)
	}
	fmt.Fprintln(w)

	return report, nil
}

// WriteYAML writes the report to path.
func WriteYAML(path string, report Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func preview(stripped string) string {
	if stripped == "" {
		return ""
	}
	p := stripped
	if len(p) > previewChars {
		p = p[:previewChars]
	}
	return strings.ReplaceAll(p, "\n", " ")
}

func statusLine(chars int, errMsg string) string {
	if errMsg != "" {
		return "error: " + errMsg
	}
	return fmt.Sprintf("%d chars", chars)
}
