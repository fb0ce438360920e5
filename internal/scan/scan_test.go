package scan

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballston-civic/minutes-engine/pkg/types"
)

func TestMatchMember(t *testing.T) {
	tests := []struct {
		name   string
		list   []string
		member string
		want   bool
	}{
		{"exact", []string{"Baskin"}, "Baskin", true},
		{"list entry contains member", []string{"Trustee VanHall"}, "VanHall", true},
		{"member contains list entry", []string{"Rossi"}, "Mayor Rossi", true},
		{"case insensitive", []string{"baskin"}, "Baskin", true},
		{"no match", []string{"Fitzpatrick"}, "Kormos", false},
		{"empty entry ignored", []string{""}, "Baskin", false},
		{"empty list", nil, "Baskin", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchMember(tt.list, tt.member))
		})
	}
}

func TestRecordsFromAnalysis(t *testing.T) {
	analysis := types.MeetingAnalysis{
		MeetingDate: "2025-01-02",
		Summary:     "Budget adopted; water main contract awarded.",
		Votes: []types.MotionVotes{
			{
				Motion:   "Adopt the 2025 budget",
				Proposer: "Trustee Baskin",
				Seconder: "Trustee Kormos",
				Ayes:     []string{"Mayor Rossi", "Baskin", "Kormos", "VanHall"},
				Nays:     []string{"Fitzpatrick"},
				Result:   "Passed",
			},
			{
				Motion: "Table the sidewalk proposal",
				Ayes:   []string{},
				Nays:   []string{"Rossi", "Baskin", "Fitzpatrick"},
				Absent: []string{"Trustee VanHall"},
				Result: "Failed",
			},
		},
	}
	meta := DocMeta{
		ID:   "local-bot-1",
		Date: "2025-01-02",
		URL:  "/documents/board_of_trustees_documents/bd._mtg._01.02.25.pdf",
	}

	records := RecordsFromAnalysis(analysis, meta)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "local-bot-1-0", first.ID)
	assert.Equal(t, "Adopt the 2025 budget", first.Motion)
	assert.Equal(t, analysis.Summary, first.Description)
	assert.Equal(t, "Board of Trustees", first.Category)
	assert.Equal(t, "Passed", first.Result)
	assert.Equal(t, meta.URL, first.URL)
	require.Len(t, first.Votes, len(types.BoardMembers))

	status := map[string]string{}
	for _, mv := range first.Votes {
		status[mv.MemberName] = mv.Status
	}
	assert.Equal(t, "Aye", status["Mayor Rossi"])
	assert.Equal(t, "No", status["Fitzpatrick"])
	assert.Equal(t, "Aye", status["VanHall"])

	second := records[1]
	assert.Equal(t, "local-bot-1-1", second.ID)
	assert.Equal(t, "Failed", second.Result)
	status = map[string]string{}
	for _, mv := range second.Votes {
		status[mv.MemberName] = mv.Status
	}
	assert.Equal(t, "No", status["Mayor Rossi"])
	assert.Equal(t, "Absent", status["VanHall"])
	assert.Equal(t, "No", status["Baskin"])
	assert.Equal(t, "Not Found", status["Kormos"])
}

func TestRecordsFromAnalysisResultDefaultsToPassed(t *testing.T) {
	analysis := types.MeetingAnalysis{
		Votes: []types.MotionVotes{{Motion: "m", Result: "failed"}},
	}
	records := RecordsFromAnalysis(analysis, DocMeta{ID: "local-bot-1"})
	require.Len(t, records, 1)
	assert.Equal(t, "Passed", records[0].Result, "only the exact token Failed maps to Failed")
}

type stubExtractor struct {
	texts map[string]string
	errs  map[string]error
}

func (s *stubExtractor) Extract(_ context.Context, path string) (string, error) {
	name := filepath.Base(path)
	if err := s.errs[name]; err != nil {
		return "", err
	}
	return s.texts[name], nil
}

type stubAnalyzer struct {
	analysis types.MeetingAnalysis
	err      error
	calls    int
}

func (s *stubAnalyzer) Analyze(_ context.Context, _, _, _ string) (types.MeetingAnalysis, error) {
	s.calls++
	return s.analysis, s.err
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bd._mtg._01.02.25.pdf"), []byte("%PDF-1.4"), 0o644))

	longText := strings.Repeat("Motion made and seconded. ALL AYES. ", 10)
	extractor := &stubExtractor{texts: map[string]string{"bd._mtg._01.02.25.pdf": longText}}
	analyzer := &stubAnalyzer{analysis: types.MeetingAnalysis{
		Summary: "summary",
		Votes:   []types.MotionVotes{{Motion: "m", Ayes: []string{"Baskin"}, Result: "Passed"}},
	}}

	var out strings.Builder
	records, summary, err := Run(context.Background(), types.ScanConfig{DocsDir: dir, Limit: 3}, extractor, analyzer, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Scanned)
	assert.Equal(t, 1, summary.Records)
	require.Len(t, records, 1)
	assert.Equal(t, "local-bot-1-0", records[0].ID)
	assert.Equal(t, "2025-01-02", records[0].Date)
	assert.Equal(t, "/documents/board_of_trustees_documents/bd._mtg._01.02.25.pdf", records[0].URL)
	assert.Contains(t, out.String(), "-> 1 vote(s)")
}

func TestRunSkipsAndContinues(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"01.02.25_minutes.pdf", "02.03.25_minutes.pdf", "03.04.25_minutes.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644))
	}
	longText := strings.Repeat("minutes ", 20)
	extractor := &stubExtractor{
		texts: map[string]string{
			"01.02.25_minutes.pdf": "short",
			"03.04.25_minutes.pdf": longText,
		},
		errs: map[string]error{"02.03.25_minutes.pdf": errors.New("bad pdf")},
	}
	analyzer := &stubAnalyzer{}

	var out strings.Builder
	_, summary, err := Run(context.Background(), types.ScanConfig{DocsDir: dir}, extractor, analyzer, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Scanned)
	assert.Equal(t, 1, analyzer.calls, "skipped and failed files never reach the API")
	assert.Equal(t, 3, summary.Total())
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "generated-votes.json")
	records := []types.VoteRecord{{
		ID:     "local-bot-1-0",
		Motion: "Adopt budget",
		Votes:  []types.MemberVote{{MemberName: "Baskin", Status: "Aye"}},
		Result: "Passed",
		URL:    "/documents/board_of_trustees_documents/bd._mtg._01.02.25.pdf",
	}}
	require.NoError(t, WriteJSON(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `&`, "HTML escaping is off")
	assert.Contains(t, string(data), `"memberName": "Baskin"`)

	var got []types.VoteRecord
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, records, got)
}

func TestWriteJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated-votes.json")
	require.NoError(t, WriteJSON(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)), "an empty run still writes a valid array")
}
