package chunker

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"ppdrag/internal/domain"
)

// PDFLoader produces one window sequence per page, tagged with the 1-based page number.
type PDFLoader struct {
	window Window
}

func NewPDFLoader(window Window) *PDFLoader {
	return &PDFLoader{window: window}
}

func (l *PDFLoader) Load(ctx context.Context, file domain.SourceFile) ([]domain.Chunk, error) {
	mtype, err := mimetype.DetectFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("detect type of %s: %w", file.Name, err)
	}
	if !mtype.Is("application/pdf") {
		log.FromContext(ctx).Warn("skipping file with pdf extension", "file", file.Name, "mime", mtype.String())
		return nil, nil
	}

	f, reader, err := pdf.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", file.Name, err)
	}
	defer f.Close()

	var chunks []domain.Chunk
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract text from %s page %d: %w", file.Name, pageNum, err)
		}
		for _, w := range l.window.Split(text) {
			chunks = append(chunks, domain.Chunk{
				Text: w,
				Meta: domain.ChunkMeta{Source: file.Name, Type: domain.SourcePDF, Page: pageNum},
			})
		}
	}
	return chunks, nil
}
