package votes

import (
	"fmt"
	"strings"

	"github.com/ballston-civic/minutes-engine/pkg/types"
)

// NormalizeRow maps a raw model row onto the fixed column set. Every column
// is present in the result: missing or null values become empty strings,
// scalars are stringified, and a Title Cased space-separated variant of the
// column name is tried as an alternate lookup key (the model occasionally
// re-capitalizes field names). An absent date falls back to dateHint.
func NormalizeRow(raw map[string]any, dateHint string) types.VoteRow {
	if _, ok := raw["date"]; !ok {
		raw["date"] = dateHint
	}

	row := make(types.VoteRow, len(types.VoteColumns))
	for _, col := range types.VoteColumns {
		val, ok := raw[col]
		if !ok || val == nil {
			val, ok = raw[titleKey(col)]
			if !ok || val == nil {
				row[col] = ""
				continue
			}
		}
		row[col] = strings.TrimSpace(stringify(val))
	}
	return row
}

// NormalizeRows applies NormalizeRow to every raw row.
func NormalizeRows(raws []map[string]any, dateHint string) []types.VoteRow {
	rows := make([]types.VoteRow, 0, len(raws))
	for _, raw := range raws {
		rows = append(rows, NormalizeRow(raw, dateHint))
	}
	return rows
}

// titleKey converts "motion_description" to "Motion Description".
func titleKey(col string) string {
	words := strings.Split(col, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func stringify(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		// JSON numbers arrive as float64; print integers without a decimal.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
