package chunker

import (
	"context"
	"fmt"

	"ppdrag/internal/domain"
	"ppdrag/internal/port"
)

// CompositeLoader routes each source file to the loader registered for its type.
type CompositeLoader struct {
	loaders map[domain.SourceType]port.Loader
}

func NewCompositeLoader(window Window, csvMaxRows int) *CompositeLoader {
	return &CompositeLoader{
		loaders: map[domain.SourceType]port.Loader{
			domain.SourcePDF:  NewPDFLoader(window),
			domain.SourceCSV:  NewCSVLoader(window, csvMaxRows),
			domain.SourceText: NewTextLoader(window),
		},
	}
}

func (c *CompositeLoader) Load(ctx context.Context, file domain.SourceFile) ([]domain.Chunk, error) {
	loader, ok := c.loaders[file.Type]
	if !ok {
		return nil, fmt.Errorf("no loader for source type %q (%s)", file.Type, file.Name)
	}
	return loader.Load(ctx, file)
}
