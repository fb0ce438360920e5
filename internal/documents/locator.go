// Package documents lists meeting-document PDFs and derives meeting dates
// from their filenames.
//
// The board clerk's filenames follow no single convention, so minutes are
// recognized by a set of heuristics accumulated from the actual corpus:
// "minutes" anywhere in the name, bd._mtg._MM.DD.YY.pdf, M.DD.YY_mtg_minutes.pdf,
// special_mtg, or a bare "mtg" that is not an agenda, attachment, or abstract.
package documents

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	bdMtgPattern      = regexp.MustCompile(`(?i)^bd\._mtg\._\d{2}\.\d{2}\.\d{2}\.pdf$`)
	mtgMinutesPattern = regexp.MustCompile(`(?i)^\d\.\d{2}\.\d{2}_mtg_minutes\.pdf$`)
)

// ListPDFs returns the names of the PDF files in dir, sorted lexicographically.
// Files whose name contains "draft" (case-insensitive) are always excluded.
// When minutesOnly is true only filenames matching one of the minutes
// conventions are returned. A limit > 0 keeps the first limit names of the
// sorted set.
func ListPDFs(dir string, limit int, minutesOnly bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		lower := strings.ToLower(name)
		if strings.Contains(lower, "draft") {
			continue
		}
		if minutesOnly && !looksLikeMinutes(name, lower) {
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func looksLikeMinutes(name, lower string) bool {
	switch {
	case strings.Contains(lower, "minutes"):
		return true
	case bdMtgPattern.MatchString(name):
		return true
	case mtgMinutesPattern.MatchString(name):
		return true
	case strings.Contains(lower, "special_mtg"):
		return true
	case strings.Contains(lower, "mtg"):
		return !strings.Contains(lower, "agenda") &&
			!strings.Contains(lower, "attachment") &&
			!strings.Contains(lower, "abstract")
	}
	return false
}
