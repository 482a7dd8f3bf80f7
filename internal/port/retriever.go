package port

import (
	"context"

	"ppdrag/internal/domain"
)

// Retriever returns the top-k chunks for a query, best first.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievalResult, error)
}
