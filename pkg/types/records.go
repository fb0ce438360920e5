package types

// VoteColumns is the fixed column order of the voting-record CSV. Every row
// carries all twelve fields; unknown values are empty strings, never omitted.
var VoteColumns = []string{
	"date",
	"section",
	"motion_description",
	"mover",
	"seconder",
	"vote_result",
	"mayor_rossi",
	"trustee_price_bush",
	"trustee_dunkelbarger",
	"trustee_vandeinse_perez",
	"trustee_dubuque",
	"notes",
}

// VoteRow is one voted motion in the flat CSV schema. Keys are the entries of
// VoteColumns; values are strings (possibly empty).
type VoteRow map[string]string

// BoardMembers is the member list used by the scan pipeline. The two vote
// pipelines predate each other's rosters and intentionally disagree; see
// DESIGN.md.
var BoardMembers = []string{
	"Mayor Rossi",
	"Baskin",
	"Fitzpatrick",
	"Kormos",
	"VanHall",
}

// MemberVote records one board member's position on a single motion.
type MemberVote struct {
	MemberName string `json:"memberName"`
	Status     string `json:"status"` // "Aye", "No", "Absent", or "Not Found"
}

// VoteRecord is the scan pipeline's per-motion output consumed by the
// front-end's Voting History tab.
type VoteRecord struct {
	ID          string       `json:"id"`
	Motion      string       `json:"motion"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Date        string       `json:"date"`
	Proposer    string       `json:"proposer"`
	Seconder    string       `json:"seconder"`
	Votes       []MemberVote `json:"votes"`
	Result      string       `json:"result"` // "Passed" or "Failed"
	URL         string       `json:"url"`
}

// MeetingAnalysis is the structured response the scan pipeline requests from
// the model for one document.
type MeetingAnalysis struct {
	MeetingDate string        `json:"meetingDate"`
	Summary     string        `json:"summary"`
	Votes       []MotionVotes `json:"votes"`
}

// MotionVotes is one motion inside a MeetingAnalysis.
type MotionVotes struct {
	Motion   string   `json:"motion"`
	Proposer string   `json:"proposer"`
	Seconder string   `json:"seconder"`
	Ayes     []string `json:"ayes"`
	Nays     []string `json:"nays"`
	Absent   []string `json:"absent"`
	Result   string   `json:"result"`
}
