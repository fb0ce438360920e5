package votes

import (
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ballston-civic/minutes-engine/pkg/types"
)

// rowSchemaJSON describes one normalized voting-record row. Trustee columns
// carry a vote state or empty string; everything else is free text.
const rowSchemaJSON = `{
  "type": "object",
  "properties": {
    "date": {"type": "string"},
    "section": {"type": "string"},
    "motion_description": {"type": "string"},
    "mover": {"type": "string"},
    "seconder": {"type": "string"},
    "vote_result": {"type": "string"},
    "mayor_rossi": {"$ref": "#/$defs/memberVote"},
    "trustee_price_bush": {"$ref": "#/$defs/memberVote"},
    "trustee_dunkelbarger": {"$ref": "#/$defs/memberVote"},
    "trustee_vandeinse_perez": {"$ref": "#/$defs/memberVote"},
    "trustee_dubuque": {"$ref": "#/$defs/memberVote"},
    "notes": {"type": "string"}
  },
  "required": [
    "date", "section", "motion_description", "mover", "seconder", "vote_result",
    "mayor_rossi", "trustee_price_bush", "trustee_dunkelbarger",
    "trustee_vandeinse_perez", "trustee_dubuque", "notes"
  ],
  "additionalProperties": false,
  "$defs": {
    "memberVote": {
      "type": "string",
      "enum": ["YES", "NO", "ABSENT", "ABSTAIN", ""]
    }
  }
}`

var rowSchema = jsonschema.MustCompileString("vote_row.json", rowSchemaJSON)

// ValidateRow checks a normalized row against the row schema. Normalization
// is total, so failures here mean the model put an unexpected token in a
// trustee column; the caller logs and drops the row.
func ValidateRow(row types.VoteRow) error {
	doc := make(map[string]any, len(row))
	for k, v := range row {
		doc[k] = v
	}
	return rowSchema.Validate(doc)
}
