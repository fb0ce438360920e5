package votes

import (
	"os"
	"strings"
)

// defaultGuide is used when no guide document is found at any candidate
// path. It compresses the full extraction guide to its load-bearing rules.
const defaultGuide = `Use the CSV structure:
date, section, motion_description, mover, seconder, vote_result, mayor_rossi, trustee_price_bush, trustee_dunkelbarger, trustee_vandeinse_perez, trustee_dubuque, notes

Rules: Extract every voted motion; use section (e.g. 3a, 6a-i); vote_result: ALL AYES, FAILED, TABLED, WITHDRAWN, or Vote not recorded; trustee columns: YES, NO, ABSENT, ABSTAIN; consent agenda items get same vote for each sub-item; standardize names (Mayor Rossi, Trustee Price-Bush, etc.).`

// LoadGuide reads the first readable candidate path and returns its trimmed
// contents, falling back to the embedded default when none exists.
func LoadGuide(candidates []string) string {
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			return text
		}
	}
	return defaultGuide
}
