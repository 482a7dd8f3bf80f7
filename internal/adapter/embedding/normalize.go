package embedding

import (
	"context"
	"math"

	"ppdrag/internal/port"
)

// Normalizing scales every vector produced by the wrapped embedder to unit L2 norm,
// so inner product equals cosine similarity. Zero vectors are left as they are.
type Normalizing struct {
	port.Embedder
}

func NewNormalizing(inner port.Embedder) *Normalizing {
	return &Normalizing{Embedder: inner}
}

func (n *Normalizing) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := n.Embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	for _, v := range vectors {
		L2Normalize(v)
	}
	return vectors, nil
}

// L2Normalize normalizes v in place.
func L2Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1.0 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}
