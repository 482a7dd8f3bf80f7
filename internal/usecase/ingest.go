package usecase

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"ppdrag/internal/adapter/store"
	"ppdrag/internal/domain"
	"ppdrag/internal/port"
)

// Ingestion progress stages reported to ProgressFunc.
const (
	StageLoad  = "load"
	StageEmbed = "embed"
)

// ProgressFunc is called after each file is loaded and after each embedding batch.
type ProgressFunc func(stage string, done, total int)

// IngestSettings carries the values recorded in the manifest of a new index.
type IngestSettings struct {
	Provider     string
	ChunkSize    int
	ChunkOverlap int
	ConfigHash   string
	BatchSize    int
}

// IngestUseCase builds an index from a directory of source documents.
type IngestUseCase struct {
	walker   port.SourceWalker
	loader   port.Loader
	embedder port.Embedder
	settings IngestSettings
}

// NewIngestUseCase creates a new ingest use case.
func NewIngestUseCase(
	walker port.SourceWalker,
	loader port.Loader,
	embedder port.Embedder,
	settings IngestSettings,
) *IngestUseCase {
	if settings.BatchSize <= 0 {
		settings.BatchSize = 64
	}
	return &IngestUseCase{
		walker:   walker,
		loader:   loader,
		embedder: embedder,
		settings: settings,
	}
}

// IngestResult contains the results of an ingestion run.
type IngestResult struct {
	FilesFound    int
	FilesLoaded   int
	ChunksCreated int
	Warnings      []string
	Manifest      domain.Manifest
}

// Ingest loads every source file under dataDir, embeds the chunks and writes the
// index into indexDir. A file that fails to load is reported as a warning; if no
// chunks are extracted at all, nothing is written and domain.ErrNoChunks is returned.
func (u *IngestUseCase) Ingest(ctx context.Context, dataDir, indexDir string, progress ProgressFunc) (*IngestResult, error) {
	logger := log.FromContext(ctx)
	result := &IngestResult{}

	files, err := u.walker.Walk(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dataDir, err)
	}
	result.FilesFound = len(files)
	logger.Info("scanning sources", "dir", dataDir, "files", len(files))

	var chunks []domain.Chunk
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileChunks, err := u.loader.Load(ctx, file)
		if err != nil {
			msg := fmt.Sprintf("failed to load %s: %v", file.Name, err)
			logger.Warn("skipping file", "file", file.Name, "err", err)
			result.Warnings = append(result.Warnings, msg)
		} else {
			if len(fileChunks) > 0 {
				result.FilesLoaded++
			}
			logger.Debug("loaded file", "file", file.Name, "type", file.Type, "chunks", len(fileChunks))
			chunks = append(chunks, fileChunks...)
		}
		if progress != nil {
			progress(StageLoad, i+1, len(files))
		}
	}

	if len(chunks) == 0 {
		return result, fmt.Errorf("%w: check files in %s", domain.ErrNoChunks, dataDir)
	}
	result.ChunksCreated = len(chunks)

	vectors, err := u.embed(ctx, chunks, progress)
	if err != nil {
		return nil, err
	}

	manifest, err := store.WriteIndex(ctx, indexDir, domain.Manifest{
		EmbeddingProvider: u.settings.Provider,
		EmbeddingModel:    u.embedder.ModelName(),
		Dimension:         u.embedder.Dimension(),
		ChunkSize:         u.settings.ChunkSize,
		ChunkOverlap:      u.settings.ChunkOverlap,
		ConfigHash:        u.settings.ConfigHash,
	}, vectors, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to write index: %w", err)
	}
	result.Manifest = manifest

	logger.Info("index built", "dir", indexDir, "chunks", manifest.Count, "model", manifest.EmbeddingModel)
	return result, nil
}

func (u *IngestUseCase) embed(ctx context.Context, chunks []domain.Chunk, progress ProgressFunc) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	batch := u.settings.BatchSize

	for start := 0; start < len(chunks); start += batch {
		end := start + batch
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, end-start)
		for i, c := range chunks[start:end] {
			texts[i] = c.Text
		}

		batchVectors, err := u.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(batchVectors) != len(texts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(batchVectors), len(texts))
		}
		vectors = append(vectors, batchVectors...)

		if progress != nil {
			progress(StageEmbed, end, len(chunks))
		}
	}
	return vectors, nil
}
