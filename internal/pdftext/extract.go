// Package pdftext pulls text out of meeting-document PDFs.
//
// The primary path reads the embedded text layer page by page. Scanned
// minutes (common for older meetings) have little or no text layer, so when
// the primary result is too short the package rasterizes the pages and runs
// OCR, then keeps whichever candidate is longer.
package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/ballston-civic/minutes-engine/pkg/types"
)

// minTextChars is the stripped-length threshold below which the embedded
// text layer is considered unusable and OCR is attempted.
const minTextChars = 100

// Extractor extracts text from PDF files, with an OCR fallback for scanned
// documents.
type Extractor struct {
	ocr *OCR
}

// NewExtractor returns an Extractor using the given OCR configuration.
func NewExtractor(cfg types.OCRConfig) *Extractor {
	return &Extractor{ocr: NewOCR(cfg)}
}

// Extract returns best-effort text for the PDF at path. The embedded text
// layer is read first; if its stripped length is under minTextChars and OCR
// is available, the pages are rasterized and recognized, and the longer
// non-empty candidate wins (the text layer wins ties). OCR being missing or
// failing is not an error; the short primary result is returned as-is.
// A fundamentally unreadable file yields an error; callers skip the file.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	text, err := readTextLayer(path)
	if err != nil {
		return "", err
	}

	if len(strings.TrimSpace(text)) >= minTextChars {
		return text, nil
	}
	if !e.ocr.Available() {
		return text, nil
	}

	ocrText, err := e.ocr.Recognize(ctx, path)
	if err != nil {
		return text, nil
	}
	return ChooseLonger(text, ocrText), nil
}

// TextLayer returns only the embedded text layer, with no OCR fallback. The
// validation report uses it to compare the two methods side by side.
func (e *Extractor) TextLayer(path string) (string, error) {
	return readTextLayer(path)
}

// OCR exposes the extractor's OCR engine.
func (e *Extractor) OCR() *OCR {
	return e.ocr
}

// PageCount returns the number of pages in the PDF at path. It doubles as a
// cheap validity check: a file pdfcpu cannot open is not a usable PDF.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading page count of %s: %w", path, err)
	}
	return n, nil
}

// readTextLayer is a package-level var so tests can substitute a fake text
// layer without fixture PDFs.
var readTextLayer = readTextLayerFile

// readTextLayerFile concatenates the embedded text of every page. Pages that
// fail to decode are skipped rather than failing the file.
func readTextLayerFile(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var parts []string
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// ChooseLonger is the two-candidate selection rule shared by the extraction
// fallbacks: the longer stripped non-empty candidate wins, and primary wins
// ties.
func ChooseLonger(primary, secondary string) string {
	if len(strings.TrimSpace(secondary)) > len(strings.TrimSpace(primary)) {
		return secondary
	}
	return primary
}
