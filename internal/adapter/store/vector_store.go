package store

import (
	"fmt"
	"sort"
)

// FlatIndex is an exact inner-product index over unit-length vectors.
// Uses brute-force search; the corpus is small enough that no ANN structure is needed.
type FlatIndex struct {
	dimension int
	vectors   [][]float32
}

// Hit is a search result addressed by vector position.
type Hit struct {
	Position int
	Score    float64
}

// NewFlatIndex wraps vectors, rejecting any whose length differs from dimension.
func NewFlatIndex(dimension int, vectors [][]float32) (*FlatIndex, error) {
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("vector dimension mismatch at position %d: expected %d, got %d", i, dimension, len(v))
		}
	}
	return &FlatIndex{dimension: dimension, vectors: vectors}, nil
}

func (x *FlatIndex) Len() int       { return len(x.vectors) }
func (x *FlatIndex) Dimension() int { return x.dimension }

// Search returns up to k hits ordered by descending inner product.
// Ties keep the lower position first.
func (x *FlatIndex) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != x.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", x.dimension, len(query))
	}
	if k <= 0 || len(x.vectors) == 0 {
		return nil, nil
	}

	hits := make([]Hit, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = Hit{Position: i, Score: innerProduct(query, v)}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func innerProduct(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
