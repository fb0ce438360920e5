package pdftext

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/ballston-civic/minutes-engine/pkg/types"
)

func TestChooseLonger(t *testing.T) {
	tests := []struct {
		name      string
		primary   string
		secondary string
		want      string
	}{
		{"secondary longer wins", "short", "a much longer recognized text", "a much longer recognized text"},
		{"primary longer wins", "a much longer embedded text", "short", "a much longer embedded text"},
		{"primary wins ties", "same!", "other", "same!"},
		{"whitespace-only secondary loses", "text", "   \n\t  ", "text"},
		{"both empty returns primary", "", "", ""},
		{"whitespace-padded secondary measured stripped", "abcdef", "  abc  ", "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChooseLonger(tt.primary, tt.secondary); got != tt.want {
				t.Errorf("ChooseLonger(%q, %q) = %q, want %q", tt.primary, tt.secondary, got, tt.want)
			}
		})
	}
}

// fakeRunner simulates pdftoppm (by creating page images at the requested
// prefix) and tesseract (by returning canned text per page).
type fakeRunner struct {
	pages     int
	pageText  map[int]string
	renderErr error
	calls     []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name)
	// Dispatch on argument shape: the render call carries -png, the
	// recognition call writes to stdout.
	switch {
	case contains(args, "-png"):
		if f.renderErr != nil {
			return nil, []byte("render failed"), f.renderErr
		}
		prefix := args[len(args)-1]
		for i := 1; i <= f.pages; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), []byte("png"), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case contains(args, "stdout"):
		img := args[0]
		for i, text := range f.pageText {
			if strings.HasSuffix(img, fmt.Sprintf("-%d.png", i)) {
				return []byte(text), nil, nil
			}
		}
		return nil, []byte("no text"), fmt.Errorf("unrecognized page")
	}
	return nil, nil, fmt.Errorf("unexpected command %s %v", name, args)
}

func contains(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func newTestOCR(r Runner) *OCR {
	o := NewOCR(types.OCRConfig{DPI: 72})
	o.runner = r
	return o
}

func TestOCRRecognizeConcatenatesPagesInOrder(t *testing.T) {
	r := &fakeRunner{
		pages:    3,
		pageText: map[int]string{1: "page one", 2: "page two", 3: "page three"},
	}
	got, err := newTestOCR(r).Recognize(context.Background(), "scan.pdf")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	want := "page one\npage two\npage three"
	if got != want {
		t.Errorf("Recognize = %q, want %q", got, want)
	}
}

func TestOCRRecognizeSkipsFailedPages(t *testing.T) {
	r := &fakeRunner{
		pages:    3,
		pageText: map[int]string{1: "page one", 3: "page three"},
	}
	got, err := newTestOCR(r).Recognize(context.Background(), "scan.pdf")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if got != "page one\npage three" {
		t.Errorf("Recognize = %q", got)
	}
}

func TestOCRRecognizeRenderFailure(t *testing.T) {
	r := &fakeRunner{renderErr: fmt.Errorf("boom")}
	if _, err := newTestOCR(r).Recognize(context.Background(), "scan.pdf"); err == nil {
		t.Fatal("expected error when rendering fails")
	}
}

func withTextLayer(t *testing.T, text string) {
	t.Helper()
	orig := readTextLayer
	readTextLayer = func(string) (string, error) { return text, nil }
	t.Cleanup(func() { readTextLayer = orig })
}

func TestExtractKeepsSufficientTextLayer(t *testing.T) {
	long := strings.Repeat("minutes of the board of trustees meeting ", 10)
	withTextLayer(t, long)

	e := NewExtractor(types.OCRConfig{})
	r := &fakeRunner{pages: 1, pageText: map[int]string{1: strings.Repeat("ocr ", 500)}}
	e.ocr.runner = r

	got, err := e.Extract(context.Background(), "minutes.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != long {
		t.Errorf("expected text layer result, got %q", got[:40])
	}
	if len(r.calls) != 0 {
		t.Errorf("OCR should not run when the text layer is sufficient, saw calls %v", r.calls)
	}
}

func TestExtractFallsBackToLongerOCR(t *testing.T) {
	withTextLayer(t, "too short")

	ocrText := strings.Repeat("recognized text from the scanned page ", 20)
	e := NewExtractor(types.OCRConfig{})
	e.ocr.runner = &fakeRunner{pages: 1, pageText: map[int]string{1: ocrText}}
	// fakeRunner handles the binaries, so bypass the PATH check.
	e.ocr.cfg.Pdftoppm = "sh"
	e.ocr.cfg.Tesseract = "sh"

	got, err := e.Extract(context.Background(), "scan.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(got, "recognized text") {
		t.Errorf("expected OCR result, got %q", got)
	}
}

func TestExtractKeepsShortPrimaryWhenOCRShorter(t *testing.T) {
	withTextLayer(t, "short but best")

	e := NewExtractor(types.OCRConfig{})
	e.ocr.runner = &fakeRunner{pages: 1, pageText: map[int]string{1: "tiny"}}
	e.ocr.cfg.Pdftoppm = "sh"
	e.ocr.cfg.Tesseract = "sh"

	got, err := e.Extract(context.Background(), "scan.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "short but best" {
		t.Errorf("Extract = %q, want primary result", got)
	}
}
