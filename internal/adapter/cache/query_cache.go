package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"ppdrag/internal/port"
)

// QueryCache is a bounded LRU of query embeddings keyed by the exact query text.
type QueryCache struct {
	entries *lru.Cache[string, []float32]
	hits    atomic.Int64
	misses  atomic.Int64
}

func NewQueryCache(maxSize int) (*QueryCache, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("query cache size must be greater than zero, got %d", maxSize)
	}
	entries, err := lru.New[string, []float32](maxSize)
	if err != nil {
		return nil, fmt.Errorf("init query cache: %w", err)
	}
	return &QueryCache{entries: entries}, nil
}

func (c *QueryCache) Get(query string) ([]float32, bool) {
	v, ok := c.entries.Get(query)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return cloneVector(v), true
}

func (c *QueryCache) Put(query string, vector []float32) {
	if len(vector) == 0 {
		return
	}
	c.entries.Add(query, cloneVector(vector))
}

func (c *QueryCache) Size() int {
	return c.entries.Len()
}

// Stats returns the hit and miss counts since creation.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) Purge() {
	c.entries.Purge()
}

// CachedEmbedder serves single-text embeddings from a QueryCache.
// Batches of more than one text bypass the cache.
type CachedEmbedder struct {
	port.Embedder
	cache *QueryCache
}

func NewCachedEmbedder(embedder port.Embedder, cache *QueryCache) *CachedEmbedder {
	return &CachedEmbedder{
		Embedder: embedder,
		cache:    cache,
	}
}

func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) != 1 {
		return e.Embedder.Embed(ctx, texts)
	}

	if v, hit := e.cache.Get(texts[0]); hit {
		return [][]float32{v}, nil
	}

	vectors, err := e.Embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 1 {
		e.cache.Put(texts[0], vectors[0])
	}
	return vectors, nil
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
