// Package aijson turns free-form model output into a JSON object. Model text
// is supposed to contain one JSON object but may include markdown fences,
// surrounding prose, or be cut off mid-structure when the output token budget
// runs out.
package aijson

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// rawCap bounds the "raw" echo in failure payloads.
const rawCap = 2000

// Clean extracts the JSON candidate from text: fence markers are removed and
// the span from the first { to the last } is taken.
func Clean(text string) string {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}
	return cleaned
}

// Repair attempts to complete JSON that was cut off mid-structure. The result
// is a best-effort candidate for re-parsing, not guaranteed valid. A dangling
// string value is closed with an empty literal, which loses whatever partial
// content the model did produce.
func Repair(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")

	// An odd quote count means the text ends inside a string. If that string
	// was opened after a colon it is a dangling value; replace it with "".
	if strings.Count(s, `"`)%2 == 1 {
		lastQuote := strings.LastIndex(s, `"`)
		if lastQuote > 0 && strings.Contains(s[:lastQuote], ":") {
			tail := strings.TrimSpace(s[:lastQuote])
			if strings.HasSuffix(tail, ":") || strings.HasSuffix(tail, ",") || strings.HasSuffix(tail, "[") {
				s = s[:lastQuote] + `""`
			} else {
				s += `"`
			}
		} else {
			s += `"`
		}
	}

	s = strings.TrimSuffix(strings.TrimSpace(s), ",")

	openBraces := strings.Count(s, "{") - strings.Count(s, "}")
	openBrackets := strings.Count(s, "[") - strings.Count(s, "]")

	// Arrays close before the objects that contain them.
	if openBrackets > 0 {
		s += strings.Repeat("]", openBrackets)
	}
	if openBraces > 0 {
		s += strings.Repeat("}", openBraces)
	}
	return s
}

// Parse strictly parses text after cleaning, applying truncation repair on a
// first failure. Returns the decoded value, which may be any JSON type.
func Parse(text string) (any, error) {
	cleaned := Clean(text)
	if cleaned == "" {
		return nil, eris.New("no JSON content found")
	}

	var v any
	if err := json.Unmarshal([]byte(cleaned), &v); err == nil {
		return v, nil
	}

	repaired := Repair(cleaned)
	var rv any
	if err := json.Unmarshal([]byte(repaired), &rv); err != nil {
		return nil, eris.Wrap(err, "parse after repair")
	}
	return rv, nil
}

// ParseGuaranteed always returns a map, never panics, never returns an error.
// Non-object JSON (arrays, scalars) is wrapped as {"data": value, "raw": text};
// unparseable input yields {"error": message, "raw": text}. Callers detect
// failure by the presence of the "error" key.
func ParseGuaranteed(raw string) map[string]any {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{"error": "empty response", "raw": ""}
	}

	v, err := Parse(raw)
	if err != nil {
		zap.L().Debug("json extraction failed",
			zap.String("raw_prefix", truncateRaw(raw, 500)),
			zap.Error(err))
		return map[string]any{
			"error": "invalid JSON: " + truncateRaw(err.Error(), 100),
			"raw":   truncateRaw(raw, rawCap),
		}
	}

	switch m := v.(type) {
	case map[string]any:
		return m
	default:
		return map[string]any{"data": v, "raw": raw}
	}
}

func truncateRaw(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
