package scan

import (
	"fmt"
	"strings"

	"github.com/ballston-civic/minutes-engine/pkg/types"
)

// DocMeta identifies the source document a set of vote records came from.
type DocMeta struct {
	ID    string
	Title string
	Date  string
	URL   string
}

// RecordsFromAnalysis flattens a meeting analysis into one record per motion.
// Every board member appears in every record; members the model did not place
// in any of the three name lists get status "Not Found". Result maps to
// "Passed" unless the model said exactly "Failed".
func RecordsFromAnalysis(analysis types.MeetingAnalysis, meta DocMeta) []types.VoteRecord {
	records := make([]types.VoteRecord, 0, len(analysis.Votes))
	for i, v := range analysis.Votes {
		members := make([]types.MemberVote, 0, len(types.BoardMembers))
		for _, name := range types.BoardMembers {
			status := "Not Found"
			switch {
			case matchMember(v.Ayes, name):
				status = "Aye"
			case matchMember(v.Nays, name):
				status = "No"
			case matchMember(v.Absent, name):
				status = "Absent"
			}
			members = append(members, types.MemberVote{MemberName: name, Status: status})
		}

		result := "Passed"
		if v.Result == "Failed" {
			result = "Failed"
		}

		records = append(records, types.VoteRecord{
			ID:          fmt.Sprintf("%s-%d", meta.ID, i),
			Motion:      v.Motion,
			Description: analysis.Summary,
			Category:    "Board of Trustees",
			Date:        meta.Date,
			Proposer:    v.Proposer,
			Seconder:    v.Seconder,
			Votes:       members,
			Result:      result,
			URL:         meta.URL,
		})
	}
	return records
}

// matchMember reports whether name matches any entry in the list. Matching is
// case-insensitive substring in either direction, so "VanHall" matches
// "Trustee VanHall" and "Rossi" matches "Mayor Rossi".
func matchMember(list []string, name string) bool {
	nameL := strings.ToLower(name)
	for _, entry := range list {
		entryL := strings.ToLower(entry)
		if entryL == "" {
			continue
		}
		if strings.Contains(entryL, nameL) || strings.Contains(nameL, entryL) {
			return true
		}
	}
	return false
}
