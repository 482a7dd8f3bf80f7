package chunker

import (
	"context"
	"fmt"
	"os"
	"strings"

	"ppdrag/internal/domain"
)

// TextLoader windows a whole .txt or .md file.
type TextLoader struct {
	window Window
}

func NewTextLoader(window Window) *TextLoader {
	return &TextLoader{window: window}
}

func (l *TextLoader) Load(_ context.Context, file domain.SourceFile) ([]domain.Chunk, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.Name, err)
	}
	text := strings.ToValidUTF8(string(data), "")

	windows := l.window.Split(text)
	chunks := make([]domain.Chunk, 0, len(windows))
	for _, w := range windows {
		chunks = append(chunks, domain.Chunk{
			Text: w,
			Meta: domain.ChunkMeta{Source: file.Name, Type: domain.SourceText},
		})
	}
	return chunks, nil
}
