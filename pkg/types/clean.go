package types

import (
	"encoding/json"
	"fmt"
)

// CleanDocument drops attributes whose value is null or an empty string and
// strips nested objects that end up empty, recursively. Empty arrays and
// zero numbers are kept.
func CleanDocument(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if cv, ok := cleanValue(v); ok {
			out[k] = cv
		}
	}
	return out
}

func cleanValue(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		return t, t != ""
	case map[string]any:
		c := CleanDocument(t)
		return c, len(c) > 0
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				c := CleanDocument(m)
				if len(c) == 0 {
					continue
				}
				out = append(out, c)
				continue
			}
			if e == nil {
				continue
			}
			out = append(out, e)
		}
		return out, true
	default:
		return v, true
	}
}

// GameDocument converts g into a cleaned JSON document ready to persist.
func GameDocument(g Game) (map[string]any, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encoding game: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decoding game document: %w", err)
	}
	return CleanDocument(doc), nil
}
