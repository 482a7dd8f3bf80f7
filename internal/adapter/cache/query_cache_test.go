package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (e *countingEmbedder) Dimension() int    { return 2 }
func (e *countingEmbedder) ModelName() string { return "counting" }

func TestQueryCache_Eviction(t *testing.T) {
	c, err := NewQueryCache(2)
	require.NoError(t, err)

	c.Put("a", []float32{1})
	c.Put("b", []float32{2})
	_, _ = c.Get("a")
	c.Put("c", []float32{3})

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []float32{1}, v)
	assert.Equal(t, 2, c.Size())

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)

	c.Purge()
	assert.Equal(t, 0, c.Size())
}

func TestQueryCache_ReturnsCopies(t *testing.T) {
	c, err := NewQueryCache(4)
	require.NoError(t, err)

	orig := []float32{1, 2}
	c.Put("q", orig)
	orig[0] = 99

	v, ok := c.Get("q")
	require.True(t, ok)
	assert.Equal(t, float32(1), v[0])

	v[1] = 42
	again, _ := c.Get("q")
	assert.Equal(t, float32(2), again[1])
}

func TestQueryCache_InvalidSize(t *testing.T) {
	_, err := NewQueryCache(0)
	assert.Error(t, err)
}

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := NewQueryCache(8)
	require.NoError(t, err)
	e := NewCachedEmbedder(inner, c)

	ctx := context.Background()
	first, err := e.Embed(ctx, []string{"feeling hopeless"})
	require.NoError(t, err)
	second, err := e.Embed(ctx, []string{"feeling hopeless"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	_, err = e.Embed(ctx, []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "batches bypass the cache")
	assert.Equal(t, 1, c.Size())
	assert.Equal(t, "counting", e.ModelName())
}
