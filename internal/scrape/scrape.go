// Package scrape discovers PDF links on municipal event pages. It reads an
// events CSV, fetches each page, extracts every PDF href, and writes a
// results CSV consumed by the download stage.
package scrape

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ballston-civic/minutes-engine/internal/httputil"
	"github.com/ballston-civic/minutes-engine/pkg/types"
)

// EventPage is one row of the events CSV.
type EventPage struct {
	Event string
	URL   string
	Date  string
}

// PDFLink is one discovered PDF, written as a row of the results CSV.
type PDFLink struct {
	Event   string
	Date    string
	PageURL string
	PDFURL  string
}

// ReadEventsCSV reads the events CSV. The header must be event,url,date.
func ReadEventsCSV(path string) ([]EventPage, error) {
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
	if got := records[0]; len(got) != 3 || got[0] != "event" || got[1] != "url" || got[2] != "date" {
		return nil, fmt.Errorf("%s: expected header event,url,date, found %v", path, got)
	}

	pages := make([]EventPage, 0, len(records)-1)
	for _, rec := range records[1:] {
		pages = append(pages, EventPage{Event: rec[0], URL: rec[1], Date: rec[2]})
	}
	return pages, nil
}

// WriteResultsCSV writes the discovered links with header event,date,page_url,pdf_url.
func WriteResultsCSV(path string, links []PDFLink) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"event", "date", "page_url", "pdf_url"}); err != nil {
		return err
	}
	for _, l := range links {
		if err := w.Write([]string{l.Event, l.Date, l.PageURL, l.PDFURL}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

// ReadResultsCSV reads a results CSV written by WriteResultsCSV.
func ReadResultsCSV(path string) ([]PDFLink, error) {
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
	if got := records[0]; len(got) != 4 || got[0] != "event" || got[3] != "pdf_url" {
		return nil, fmt.Errorf("%s: expected header event,date,page_url,pdf_url, found %v", path, got)
	}

	links := make([]PDFLink, 0, len(records)-1)
	for _, rec := range records[1:] {
		links = append(links, PDFLink{Event: rec[0], Date: rec[1], PageURL: rec[2], PDFURL: rec[3]})
	}
	return links, nil
}

// ExtractPDFLinks walks the parsed HTML and returns every anchor href whose
// path ends in .pdf, resolved against base and deduplicated in document order.
func ExtractPDFLinks(r io.Reader, base *url.URL) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var links []string
	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				ref, err := url.Parse(strings.TrimSpace(attr.Val))
				if err != nil {
					continue
				}
				resolved := base.ResolveReference(ref)
				if !strings.HasSuffix(strings.ToLower(resolved.Path), ".pdf") {
					continue
				}
				s := resolved.String()
				if !seen[s] {
					seen[s] = true
					links = append(links, s)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// Summary holds counts from one scrape run.
type Summary struct {
	Pages  int
	Failed int
	Links  int
}

// HasFailures reports whether any pages failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Run fetches every event page and collects its PDF links. Per-page failures
// are printed to w and counted; the run continues.
func Run(ctx context.Context, cfg types.ScrapeConfig, client *http.Client, w io.Writer) ([]PDFLink, Summary, error) {
	pages, err := ReadEventsCSV(cfg.EventsCSV)
	if err != nil {
		return nil, Summary{}, err
	}
	fmt.Fprintf(w, "Read %d event page(s) from %s\n", len(pages), cfg.EventsCSV)

	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	var summary Summary
	var all []PDFLink
	for i, page := range pages {
		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(pages), page.URL)

		links, err := fetchPage(ctx, cfg, client, page.URL, w)
		if err != nil {
			fmt.Fprintf(w, "  Error: %v\n", err)
			summary.Failed++
			continue
		}
		for _, link := range links {
			all = append(all, PDFLink{Event: page.Event, Date: page.Date, PageURL: page.URL, PDFURL: link})
		}
		fmt.Fprintf(w, "  -> %d PDF link(s)\n", len(links))
		summary.Pages++
		summary.Links += len(links)
	}
	return all, summary, nil
}

func fetchPage(ctx context.Context, cfg types.ScrapeConfig, client *http.Client, pageURL string, w io.Writer) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0, w)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return ExtractPDFLinks(resp.Body, base)
}
