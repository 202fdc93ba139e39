package aijson

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean_FencedBlock(t *testing.T) {
	in := "```json\n{\"score\": 7}\n```"
	assert.Equal(t, `{"score": 7}`, Clean(in))
}

func TestClean_ProseAroundObject(t *testing.T) {
	in := `Here is the analysis you asked for:
{"verdict": "good", "items": [1, 2]}
Let me know if you need more detail.`
	assert.Equal(t, `{"verdict": "good", "items": [1, 2]}`, Clean(in))
}

func TestClean_PlainObjectUntouched(t *testing.T) {
	in := `{"a": 1}`
	assert.Equal(t, in, Clean(in))
}

func TestRepair_MissingClosers(t *testing.T) {
	assert.Equal(t, `{"a": 1, "b": [1,2]}`, Repair(`{"a": 1, "b": [1,2`))
}

func TestRepair_TrailingComma(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, Repair(`{"a": 1,`))
}

func TestRepair_DanglingStringValue(t *testing.T) {
	out := Repair(`{"summary": "the site has sev`)
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Contains(t, v, "summary")
}

func TestRepair_ArraysCloseBeforeObjects(t *testing.T) {
	out := Repair(`{"items": ["a", "b"`)
	assert.True(t, strings.HasSuffix(out, `]}`), out)
}

func TestParse_WellFormed(t *testing.T) {
	v, err := Parse(`{"a": 1, "b": true}`)
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), m["a"])
	assert.Equal(t, true, m["b"])
}

func TestParseGuaranteed_RoundTrip(t *testing.T) {
	original := map[string]any{
		"title":  "Acme",
		"score":  float64(42),
		"ok":     true,
		"tags":   []any{"a", "b"},
		"nested": map[string]any{"k": "v"},
	}
	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	out := ParseGuaranteed(string(encoded))
	assert.Equal(t, original, out)
}

func TestParseGuaranteed_RepairsTruncation(t *testing.T) {
	out := ParseGuaranteed(`{"a": 1, "b": [1,2`)

	assert.NotContains(t, out, "error")
	assert.Equal(t, float64(1), out["a"])
	assert.Equal(t, []any{float64(1), float64(2)}, out["b"])
}

func TestParseGuaranteed_NotJSON(t *testing.T) {
	out := ParseGuaranteed("not json at all")

	assert.Contains(t, out, "error")
	assert.Equal(t, "not json at all", out["raw"])
}

func TestParseGuaranteed_Empty(t *testing.T) {
	out := ParseGuaranteed("   ")
	assert.Contains(t, out, "error")
}

func TestParseGuaranteed_WrapsArray(t *testing.T) {
	out := ParseGuaranteed(`["a", "b"]`)

	assert.Equal(t, []any{"a", "b"}, out["data"])
	assert.Equal(t, `["a", "b"]`, out["raw"])
	assert.NotContains(t, out, "error")
}

func TestParseGuaranteed_RawTruncatedOnFailure(t *testing.T) {
	long := "x" + strings.Repeat("y", 5000)
	out := ParseGuaranteed(long)

	raw, ok := out["raw"].(string)
	require.True(t, ok)
	assert.LessOrEqual(t, len(raw), 2000)
	assert.Contains(t, out, "error")
}

func TestParseGuaranteed_NeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"{",
		"}",
		"```json```",
		`{"a":`,
		`{"a": "unterminated`,
		"null",
		"[[[",
		`{"a": {"b": {"c":`,
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			out := ParseGuaranteed(in)
			assert.NotNil(t, out)
		}, "input %q", in)
	}
}
