package analyze

import "fmt"

// Model output that survived JSON extraction is still untrusted: fields may
// be missing, scalars where lists belong, numbers as strings. These helpers
// coerce loosely instead of failing.

func asString(v any, fallback string) string {
	switch s := v.(type) {
	case nil:
		return fallback
	case string:
		if s == "" {
			return fallback
		}
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}

func asStringSlice(v any, max int) []string {
	list, ok := v.([]any)
	if !ok {
		if s, ok := v.(string); ok && s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if len(out) >= max {
			break
		}
		s := asString(item, "")
		if len(s) > 200 {
			s = s[:200]
		}
		out = append(out, s)
	}
	return out
}

func asMapSlice(v any, max int) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if len(out) >= max {
			break
		}
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func asScore(v any, fallback int) int {
	var score int
	switch n := v.(type) {
	case float64:
		score = int(n)
	case int:
		score = n
	case string:
		if _, err := fmt.Sscanf(n, "%d", &score); err != nil {
			return fallback
		}
	default:
		return fallback
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
