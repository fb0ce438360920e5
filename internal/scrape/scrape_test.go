package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballston-civic/minutes-engine/pkg/types"
)

func TestExtractPDFLinks(t *testing.T) {
	base, _ := url.Parse("https://www.example.org/events/board-meeting")
	page := `<html><body>
		<a href="/files/bd._mtg._01.02.25.pdf">Minutes</a>
		<a href="agenda.PDF">Agenda</a>
		<a href="https://cdn.example.org/docs/budget.pdf?rev=2">Budget</a>
		<a href="/files/bd._mtg._01.02.25.pdf">Minutes again</a>
		<a href="/about.html">About</a>
		<a>no href</a>
	</body></html>`

	links, err := ExtractPDFLinks(strings.NewReader(page), base)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.example.org/files/bd._mtg._01.02.25.pdf",
		"https://www.example.org/events/agenda.PDF",
		"https://cdn.example.org/docs/budget.pdf?rev=2",
	}, links)
}

func TestExtractPDFLinksEmptyPage(t *testing.T) {
	base, _ := url.Parse("https://www.example.org/")
	links, err := ExtractPDFLinks(strings.NewReader("<html><body><p>nothing here</p></body></html>"), base)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestReadEventsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	content := "event,url,date\nBoard of Trustees Meeting,https://example.org/bot,2025-01-02\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	pages, err := ReadEventsCSV(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, EventPage{
		Event: "Board of Trustees Meeting",
		URL:   "https://example.org/bot",
		Date:  "2025-01-02",
	}, pages[0])
}

func TestReadEventsCSVRejectsWrongHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,link\na,b\n"), 0o644))
	_, err := ReadEventsCSV(path)
	assert.Error(t, err)
}

func TestResultsCSVRoundTrip(t *testing.T) {
	links := []PDFLink{{
		Event:   "Board of Trustees Meeting",
		Date:    "2025-01-02",
		PageURL: "https://example.org/bot",
		PDFURL:  "https://example.org/files/minutes.pdf",
	}}
	path := filepath.Join(t.TempDir(), "out", "results.csv")
	require.NoError(t, WriteResultsCSV(path, links))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"event,date,page_url,pdf_url\nBoard of Trustees Meeting,2025-01-02,https://example.org/bot,https://example.org/files/minutes.pdf\n",
		string(data))
}

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bot":
			w.Write([]byte(`<a href="/files/minutes.pdf">Minutes</a>`))
		case "/planning":
			http.NotFound(w, r)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	eventsPath := filepath.Join(dir, "events.csv")
	events := "event,url,date\n" +
		"Board of Trustees Meeting," + srv.URL + "/bot,2025-01-02\n" +
		"Planning Board Meeting," + srv.URL + "/planning,2025-01-08\n"
	require.NoError(t, os.WriteFile(eventsPath, []byte(events), 0o644))

	cfg := types.ScrapeConfig{EventsCSV: eventsPath}
	cfg.UserAgent = "minutes-engine/0.1"

	var out strings.Builder
	links, summary, err := Run(context.Background(), cfg, srv.Client(), &out)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Pages)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Links)
	assert.True(t, summary.HasFailures())
	require.Len(t, links, 1)
	assert.Equal(t, "Board of Trustees Meeting", links[0].Event)
	assert.Equal(t, srv.URL+"/files/minutes.pdf", links[0].PDFURL)
	assert.Contains(t, out.String(), "HTTP 404")
}

func TestRunMissingEventsCSV(t *testing.T) {
	cfg := types.ScrapeConfig{EventsCSV: filepath.Join(t.TempDir(), "missing.csv")}
	var out strings.Builder
	_, _, err := Run(context.Background(), cfg, nil, &out)
	assert.Error(t, err)
}
