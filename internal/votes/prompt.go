package votes

import (
	"bytes"
	"text/template"
)

// maxDocChars caps how much document text is inlined into the prompt.
const maxDocChars = 180_000

// votesPromptTmpl is the prompt sent to the Messages API for one document.
// The guide text travels inside the prompt so the clerk can tune extraction
// behavior without a code change.
var votesPromptTmpl = template.Must(template.New("votes").Parse(`You are extracting voting records from Board of Trustees meeting minutes for the Village of Ballston Spa. Follow the extraction guide below exactly.

## Extraction guide
{{.Guide}}

## Your task
1. Read the document text below. Identify the meeting date from the header (or use date hint: {{.DateHint}}).
2. Find every voted motion. Look for: "Motion made by [Name], seconded by [Name]" and the vote result (ALL AYES, AYES/NAYS, 4-1, etc.).
3. For each motion, extract: section (e.g. 3a, 6a-i), motion_description, mover, seconder, vote_result.
4. For each trustee column (mayor_rossi, trustee_price_bush, trustee_dunkelbarger, trustee_vandeinse_perez, trustee_dubuque), set YES, NO, ABSENT, or ABSTAIN based on the vote. If "ALL AYES", set all present trustees to YES and absent to ABSENT. Use the "Present:" list to know who was there.
5. notes: use "Consent agenda item" for consent items, or leave empty.

## Required output format
Return valid JSON only, no other text. Use this exact structure:
{"rows": [
  {"date": "YYYY-MM-DD", "section": "3a", "motion_description": "Approve minutes of ...", "mover": "Trustee DuBuque", "seconder": "Trustee Price-Bush", "vote_result": "ALL AYES", "mayor_rossi": "YES", "trustee_price_bush": "YES", "trustee_dunkelbarger": "YES", "trustee_vandeinse_perez": "YES", "trustee_dubuque": "YES", "notes": ""},
  ... more rows ...
]}

Every row must have all 12 fields. Use empty string "" for missing values. vote_result must be one of: ALL AYES, FAILED, TABLED, WITHDRAWN, Vote not recorded, or a count like "4-1".

## Document to process
Filename: {{.Title}}
Date hint: {{.DateHint}}

--- DOCUMENT TEXT ---
{{.Text}}
--- END ---`))

type promptData struct {
	Guide    string
	Title    string
	DateHint string
	Text     string
}

func renderPrompt(guide, title, dateHint, text string) (string, error) {
	if len(text) > maxDocChars {
		text = text[:maxDocChars]
	}
	var buf bytes.Buffer
	err := votesPromptTmpl.Execute(&buf, promptData{
		Guide:    guide,
		Title:    title,
		DateHint: dateHint,
		Text:     text,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
