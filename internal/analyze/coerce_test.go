package analyze

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsString(t *testing.T) {
	assert.Equal(t, "hello", asString("hello", "d"))
	assert.Equal(t, "d", asString(nil, "d"))
	assert.Equal(t, "d", asString("", "d"))
	assert.Equal(t, "42", asString(float64(42), "d"))
	assert.Equal(t, "map[a:1]", asString(map[string]any{"a": 1}, "d"))
}

func TestAsStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, asStringSlice([]any{"a", "b"}, 5))
	assert.Equal(t, []string{"a"}, asStringSlice([]any{"a", "b"}, 1))
	assert.Equal(t, []string{"solo"}, asStringSlice("solo", 5))
	assert.Nil(t, asStringSlice(nil, 5))
	assert.Nil(t, asStringSlice(42, 5))

	long := strings.Repeat("x", 300)
	got := asStringSlice([]any{long}, 5)
	assert.Len(t, got[0], 200)
}

func TestAsMapSlice(t *testing.T) {
	in := []any{map[string]any{"a": 1}, "not a map", map[string]any{"b": 2}}
	got := asMapSlice(in, 5)
	assert.Len(t, got, 2)

	assert.Nil(t, asMapSlice("nope", 5))
	assert.Len(t, asMapSlice(in, 1), 1)
}

func TestAsScore(t *testing.T) {
	assert.Equal(t, 75, asScore(float64(75), 50))
	assert.Equal(t, 75, asScore("75", 50))
	assert.Equal(t, 50, asScore("abc", 50))
	assert.Equal(t, 50, asScore(nil, 50))
	assert.Equal(t, 0, asScore(float64(-10), 50))
	assert.Equal(t, 100, asScore(float64(250), 50))
}
