package port

import "ppdrag/internal/domain"

// SourceWalker discovers the documents to ingest under a data directory.
type SourceWalker interface {
	Walk(root string) ([]domain.SourceFile, error)
}
