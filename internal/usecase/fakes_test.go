package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ppdrag/internal/adapter/analyzer"
	"ppdrag/internal/adapter/chunker"
	"ppdrag/internal/adapter/embedding"
	"ppdrag/internal/adapter/fs"
	"ppdrag/internal/domain"
	"ppdrag/internal/port"
)

type fakeLLM struct {
	reply    string
	err      error
	calls    int
	messages []domain.Message
}

func (f *fakeLLM) Complete(_ context.Context, messages []domain.Message) (string, error) {
	f.calls++
	f.messages = messages
	return f.reply, f.err
}

func (f *fakeLLM) ModelName() string { return "fake-llm" }

type fakeRetriever struct {
	results []domain.RetrievalResult
	err     error
	calls   int
	query   string
	k       int
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, k int) ([]domain.RetrievalResult, error) {
	f.calls++
	f.query = query
	f.k = k
	return f.results, f.err
}

// failingLoader fails for any file whose name contains "broken".
type failingLoader struct {
	port.Loader
}

func (l failingLoader) Load(ctx context.Context, file domain.SourceFile) ([]domain.Chunk, error) {
	if strings.Contains(file.Name, "broken") {
		return nil, fmt.Errorf("corrupt file")
	}
	return l.Loader.Load(ctx, file)
}

func newHashingEmbedder(t *testing.T, dim int) port.Embedder {
	t.Helper()
	inner, err := embedding.NewHashingEmbedder(analyzer.NewTokenizer(true), dim)
	require.NoError(t, err)
	return embedding.NewNormalizing(inner)
}

func newIngest(t *testing.T, embedder port.Embedder, batch int) *IngestUseCase {
	t.Helper()
	w, err := chunker.NewWindow(chunker.DefaultWindowSize, chunker.DefaultWindowOverlap)
	require.NoError(t, err)
	return NewIngestUseCase(
		fs.NewWalker(nil, nil),
		failingLoader{chunker.NewCompositeLoader(w, 0)},
		embedder,
		IngestSettings{Provider: "hashing", ChunkSize: w.Size(), ChunkOverlap: w.Overlap(), BatchSize: batch},
	)
}

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const (
	sleepNote = "I have trouble sleeping and I cry every night since the baby arrived."
	bluesNote = "Baby blues usually fade within two weeks after delivery."
)

// buildCorpus ingests a small corpus and returns the index dir.
func buildCorpus(t *testing.T, embedder port.Embedder) string {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	indexDir := filepath.Join(root, "index")

	writeSource(t, dataDir, "sleep.txt", sleepNote)
	writeSource(t, dataDir, "blues.md", bluesNote)
	writeSource(t, dataDir, "checkins.csv", "mood,appetite\nlow,poor\nok,good\n")

	_, err := newIngest(t, embedder, 2).Ingest(context.Background(), dataDir, indexDir, nil)
	require.NoError(t, err)
	return indexDir
}
