package retriever

import (
	"context"
	"fmt"

	"ppdrag/internal/adapter/store"
	"ppdrag/internal/domain"
	"ppdrag/internal/port"
)

// SemanticRetriever embeds the query and searches a loaded flat index.
type SemanticRetriever struct {
	index    *store.Index
	embedder port.Embedder
}

func NewSemanticRetriever(index *store.Index, embedder port.Embedder) *SemanticRetriever {
	return &SemanticRetriever{
		index:    index,
		embedder: embedder,
	}
}

// Retrieve returns up to k results by descending similarity. Hits whose position
// has no chunk record are dropped.
func (r *SemanticRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievalResult, error) {
	embeddings, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	hits, err := r.index.Flat.Search(embeddings[0], k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]domain.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		chunk, ok := r.index.Chunk(hit.Position)
		if !ok {
			continue
		}
		results = append(results, domain.RetrievalResult{
			Score: hit.Score,
			Text:  chunk.Text,
			Meta:  chunk.Meta,
		})
	}

	return results, nil
}
