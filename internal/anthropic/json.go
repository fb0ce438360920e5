package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFence removes a surrounding markdown code fence from a model response,
// tolerating a language tag on the opening line. Text without a fence is
// returned unchanged (trimmed).
func StripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ExtractObject returns the substring from the first "{" to the last "}" of
// text. Some responses wrap the JSON object in prose or a fence despite
// instructions; this recovers the payload. Returns text unchanged when no
// braces are found.
func ExtractObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return text
	}
	return text[start : end+1]
}

// DecodeRows parses a response as either a bare JSON array of row objects or
// an object with a "rows" array, after fence stripping. Non-object entries
// are silently dropped. A response that parses but has neither shape yields
// zero rows, not an error.
func DecodeRows(text string) ([]map[string]any, error) {
	text = StripFence(text)
	if text == "" {
		return nil, nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("parsing response JSON: %w", err)
	}

	switch v := parsed.(type) {
	case []any:
		return onlyObjects(v), nil
	case map[string]any:
		if rows, ok := v["rows"].([]any); ok {
			return onlyObjects(rows), nil
		}
	}
	return nil, nil
}

func onlyObjects(entries []any) []map[string]any {
	var rows []map[string]any
	for _, entry := range entries {
		if obj, ok := entry.(map[string]any); ok {
			rows = append(rows, obj)
		}
	}
	return rows
}

// MergeShallow unions two JSON objects by top-level key; keys of second
// override on conflict. Used by the two-pass extraction to combine the
// structure pass with the verbatim-detail pass.
func MergeShallow(first, second map[string]any) map[string]any {
	merged := make(map[string]any, len(first)+len(second))
	for k, v := range first {
		merged[k] = v
	}
	for k, v := range second {
		merged[k] = v
	}
	return merged
}
