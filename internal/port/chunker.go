package port

import (
	"context"

	"ppdrag/internal/domain"
)

// Loader turns one source document into retrievable chunks.
type Loader interface {
	Load(ctx context.Context, file domain.SourceFile) ([]domain.Chunk, error)
}
