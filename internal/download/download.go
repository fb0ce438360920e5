// Package download fetches the PDFs discovered by the scrape stage into the
// local documents directory.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ballston-civic/minutes-engine/internal/httputil"
	"github.com/ballston-civic/minutes-engine/internal/scrape"
	"github.com/ballston-civic/minutes-engine/pkg/types"
)

// Summary holds counts from one download run.
type Summary struct {
	Downloaded int
	Failed     int
}

// Total returns the number of files attempted.
func (s Summary) Total() int {
	return s.Downloaded + s.Failed
}

// HasFailures reports whether any downloads failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Filter keeps only links whose event name contains the filter substring.
// An empty filter keeps everything.
func Filter(links []scrape.PDFLink, eventFilter string) []scrape.PDFLink {
	if eventFilter == "" {
		return links
	}
	var kept []scrape.PDFLink
	for _, l := range links {
		if strings.Contains(l.Event, eventFilter) {
			kept = append(kept, l)
		}
	}
	return kept
}

// Run reads the results CSV, filters by event substring, and downloads each
// PDF into cfg.DocsDir. Filenames come from the last URL path segment. Each
// download writes to a temp file and renames into place so an interrupted
// transfer never leaves a truncated PDF behind. Per-file failures are printed
// to w and counted; the run continues.
func Run(ctx context.Context, cfg types.DownloadConfig, resultsCSV string, client *http.Client, w io.Writer) (Summary, error) {
	links, err := scrape.ReadResultsCSV(resultsCSV)
	if err != nil {
		return Summary{}, err
	}

	links = Filter(links, cfg.EventFilter)
	fmt.Fprintf(w, "Found %d PDF(s) to download\n", len(links))

	if err := os.MkdirAll(cfg.DocsDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating %s: %w", cfg.DocsDir, err)
	}

	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	var summary Summary
	for i, link := range links {
		name := path.Base(link.PDFURL)
		if u := strings.Index(name, "?"); u >= 0 {
			name = name[:u]
		}
		dest := filepath.Join(cfg.DocsDir, name)
		fmt.Fprintf(w, "[%d/%d] Downloading: %s\n", i+1, len(links), name)

		if err := fetchFile(ctx, cfg, client, link.PDFURL, dest, w); err != nil {
			fmt.Fprintf(w, "  Error: %v\n", err)
			summary.Failed++
		} else {
			fmt.Fprintf(w, "  Saved to: %s\n", dest)
			summary.Downloaded++
		}

		if cfg.DownloadDelay > 0 && i < len(links)-1 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(cfg.DownloadDelay):
			}
		}
	}
	return summary, nil
}

func fetchFile(ctx context.Context, cfg types.DownloadConfig, client *http.Client, rawURL, dest string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0, w)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
