package documents

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	// M.D.YY with a two-digit year, e.g. bd._mtg._03.15.24.
	dottedDate = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{2})`)
	// M-D-YYYY with a four-digit year, e.g. agenda_3-15-2024.
	dashedDate = regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(\d{4})`)
)

// DateFromFilename derives an ISO YYYY-MM-DD date from a meeting-document
// filename, or "" when no date pattern matches. Two-digit years are resolved
// with a 50-year pivot: YY < 50 means 20YY, otherwise 19YY. The first
// matching pattern wins and the result is not checked for calendar validity.
func DateFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	if m := dottedDate.FindStringSubmatch(base); m != nil {
		month, day := m[1], m[2]
		yy, _ := strconv.Atoi(m[3])
		year := 1900 + yy
		if yy < 50 {
			year = 2000 + yy
		}
		return fmt.Sprintf("%d-%s-%s", year, pad2(month), pad2(day))
	}

	if m := dashedDate.FindStringSubmatch(base); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[3], pad2(m[1]), pad2(m[2]))
	}

	return ""
}

func pad2(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
