package pdftext

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ballston-civic/minutes-engine/pkg/types"
)

// OCR renders PDF pages to images with pdftoppm and recognizes them with
// tesseract. Both tools are invoked as external commands; if either binary is
// absent the fallback reports itself unavailable and extraction quietly keeps
// the text-layer result.
type OCR struct {
	cfg    types.OCRConfig
	runner Runner
}

// NewOCR returns an OCR fallback with defaults filled in.
func NewOCR(cfg types.OCRConfig) *OCR {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 150
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &OCR{cfg: cfg, runner: execRunner{}}
}

// Available reports whether both external tools can be found on PATH.
func (o *OCR) Available() bool {
	if _, err := exec.LookPath(o.cfg.Pdftoppm); err != nil {
		return false
	}
	if _, err := exec.LookPath(o.cfg.Tesseract); err != nil {
		return false
	}
	return true
}

// Recognize renders each page of the PDF at path to a PNG and runs text
// recognition over the pages in order, concatenating the results. Pages that
// fail recognition are skipped.
func (o *OCR) Recognize(ctx context.Context, path string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "minutes-ocr-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp>/page
	_, stderr, err := o.runner.Run(ctx, o.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", o.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %v (%s)", path, err, truncate(string(stderr), 200))
	}

	// pdftoppm names output page-1.png, page-2.png, ...
	pages, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(pages)
	if len(pages) == 0 {
		return "", fmt.Errorf("no pages rendered for %s", path)
	}

	var parts []string
	for _, img := range pages {
		stdout, _, err := o.runner.Run(ctx, o.cfg.Tesseract, img, "stdout", "-l", o.cfg.Language)
		if err != nil {
			continue
		}
		parts = append(parts, string(stdout))
	}
	return strings.Join(parts, "\n"), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
