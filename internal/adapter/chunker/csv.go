package chunker

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ppdrag/internal/domain"
)

// CSVLoader flattens every data row into "column: value" lines and windows the result.
type CSVLoader struct {
	window  Window
	maxRows int
}

// NewCSVLoader creates a CSV loader. maxRows <= 0 ingests every row.
func NewCSVLoader(window Window, maxRows int) *CSVLoader {
	return &CSVLoader{window: window, maxRows: maxRows}
}

func (l *CSVLoader) Load(ctx context.Context, file domain.SourceFile) ([]domain.Chunk, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", file.Name, err)
	}
	defer f.Close()

	return l.read(ctx, f, file.Name)
}

func (l *CSVLoader) read(ctx context.Context, r io.Reader, source string) ([]domain.Chunk, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header of %s: %w", source, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = cleanCell(h)
	}
	if len(columns) > 0 {
		columns[0] = strings.TrimPrefix(columns[0], "\ufeff")
	}

	var chunks []domain.Chunk
	for row := 1; ; row++ {
		if l.maxRows > 0 && row > l.maxRows {
			break
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s row %d: %w", source, row, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, w := range l.window.Split(RowToText(columns, record)) {
			chunks = append(chunks, domain.Chunk{
				Text: w,
				Meta: domain.ChunkMeta{Source: source, Type: domain.SourceCSV, Row: row},
			})
		}
	}
	return chunks, nil
}

// RowToText renders a record as one "column: value" line per column.
// Cells missing from a short record render as empty values.
func RowToText(columns, record []string) string {
	lines := make([]string, len(columns))
	for i, col := range columns {
		value := ""
		if i < len(record) {
			value = cleanCell(record[i])
		}
		lines[i] = col + ": " + value
	}
	return strings.Join(lines, "\n")
}

func cleanCell(v string) string {
	v = strings.ToValidUTF8(v, "")
	v = strings.TrimSpace(v)
	v = strings.ReplaceAll(v, "\r\n", " ")
	return strings.ReplaceAll(v, "\n", " ")
}
