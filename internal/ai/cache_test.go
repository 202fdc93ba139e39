package ai

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_GetPut(t *testing.T) {
	c := NewCache()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("k", "v")
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	c.Put("k", "v2")
	got, _ = c.Get("k")
	assert.Equal(t, "v2", got)
}

func TestCache_Clear(t *testing.T) {
	c := NewCache()
	c.Put("a", "1")
	c.Put("b", "2")

	c.Clear()

	assert.Equal(t, 0, c.Stats().Count)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_Stats(t *testing.T) {
	c := NewCache()
	for i := 0; i < 15; i++ {
		c.Put(fmt.Sprintf("key-%02d", i), "v")
	}

	stats := c.Stats()
	assert.Equal(t, 15, stats.Count)
	assert.Len(t, stats.SampleKeys, 10)
	assert.Equal(t, "key-00", stats.SampleKeys[0])
}

func TestCache_StatsEmpty(t *testing.T) {
	stats := NewCache().Stats()
	assert.Equal(t, 0, stats.Count)
	assert.Empty(t, stats.SampleKeys)
}
