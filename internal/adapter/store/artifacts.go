package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"ppdrag/internal/domain"
)

const (
	VectorsFile = "vectors.db"
	ChunksFile  = "chunks.json"
)

// Index is a loaded, searchable index.
type Index struct {
	Manifest domain.Manifest
	Flat     *FlatIndex
	chunks   []domain.Chunk
}

// Chunk returns the chunk record stored at pos.
func (i *Index) Chunk(pos int) (domain.Chunk, bool) {
	if pos < 0 || pos >= len(i.chunks) {
		return domain.Chunk{}, false
	}
	return i.chunks[pos], true
}

func (i *Index) ChunkCount() int { return len(i.chunks) }

// Exists reports whether both artifacts are present in dir.
func Exists(dir string) bool {
	for _, name := range []string{VectorsFile, ChunksFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// WriteIndex persists vectors and chunks into dir. Both artifacts are built in a
// temporary directory inside dir and renamed into place only once complete. A
// failed build or a failed install leaves any previous index in place.
// SchemaVersion, BuildID, Count and CreatedAt are filled in on the returned manifest.
func WriteIndex(ctx context.Context, dir string, manifest domain.Manifest, vectors [][]float32, chunks []domain.Chunk) (domain.Manifest, error) {
	if len(vectors) != len(chunks) {
		return manifest, fmt.Errorf("vector count %d does not match chunk count %d", len(vectors), len(chunks))
	}
	for i, v := range vectors {
		if len(v) != manifest.Dimension {
			return manifest, fmt.Errorf("vector dimension mismatch at position %d: expected %d, got %d", i, manifest.Dimension, len(v))
		}
	}

	manifest.SchemaVersion = CurrentSchemaVersion
	manifest.BuildID = uuid.NewString()
	manifest.Count = len(vectors)
	manifest.CreatedAt = time.Now().UTC()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return manifest, fmt.Errorf("failed to create index directory: %w", err)
	}
	tmpDir, err := os.MkdirTemp(dir, ".build-"+manifest.BuildID[:8]+"-")
	if err != nil {
		return manifest, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := writeVectors(filepath.Join(tmpDir, VectorsFile), manifest, vectors); err != nil {
		return manifest, err
	}
	if err := writeChunks(filepath.Join(tmpDir, ChunksFile), chunks); err != nil {
		return manifest, err
	}
	if err := ctx.Err(); err != nil {
		return manifest, err
	}

	if err := install(dir, tmpDir, []string{ChunksFile, VectorsFile}); err != nil {
		return manifest, err
	}

	log.FromContext(ctx).Debug("index written", "dir", dir, "build", manifest.BuildID, "count", manifest.Count)
	return manifest, nil
}

var rename = os.Rename

// install moves the staged artifacts from stage into dir. The artifacts they
// replace are parked in stage first; if any move fails, the ones already
// installed are removed and the parked ones are put back.
func install(dir, stage string, names []string) error {
	var parked, installed []string

	rollback := func() {
		for _, name := range installed {
			os.Remove(filepath.Join(dir, name))
		}
		for _, name := range parked {
			if err := rename(filepath.Join(stage, name+".prev"), filepath.Join(dir, name)); err != nil {
				log.Error("failed to restore previous index artifact", "name", name, "err", err)
			}
		}
	}

	for _, name := range names {
		target := filepath.Join(dir, name)
		if _, err := os.Stat(target); err != nil {
			continue
		}
		if err := rename(target, filepath.Join(stage, name+".prev")); err != nil {
			rollback()
			return fmt.Errorf("failed to set aside previous %s: %w", name, err)
		}
		parked = append(parked, name)
	}

	for _, name := range names {
		if err := rename(filepath.Join(stage, name), filepath.Join(dir, name)); err != nil {
			rollback()
			return fmt.Errorf("failed to install %s: %w", name, err)
		}
		installed = append(installed, name)
	}
	return nil
}

func writeVectors(path string, manifest domain.Manifest, vectors [][]float32) error {
	s, err := CreateBoltStore(path)
	if err != nil {
		return err
	}
	if err := s.PutVectors(vectors); err != nil {
		s.Close()
		return fmt.Errorf("failed to store vectors: %w", err)
	}
	if err := s.PutManifest(manifest); err != nil {
		s.Close()
		return fmt.Errorf("failed to store manifest: %w", err)
	}
	return s.Close()
}

func writeChunks(path string, chunks []domain.Chunk) error {
	data, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("failed to encode chunks: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write chunks: %w", err)
	}
	return nil
}

// LoadIndex reads both artifacts from dir. Missing artifacts yield domain.ErrIndexMissing.
func LoadIndex(ctx context.Context, dir string) (*Index, error) {
	if !Exists(dir) {
		return nil, fmt.Errorf("%w in %s: run ppdrag ingest first", domain.ErrIndexMissing, dir)
	}

	s, err := OpenBoltStore(filepath.Join(dir, VectorsFile))
	if err != nil {
		return nil, err
	}
	defer s.Close()

	manifest, err := s.Manifest()
	if err != nil {
		return nil, fmt.Errorf("failed to read index manifest: %w", err)
	}
	vectors, err := s.Vectors()
	if err != nil {
		return nil, fmt.Errorf("failed to read vectors: %w", err)
	}
	if len(vectors) != manifest.Count {
		return nil, fmt.Errorf("index holds %d vectors, manifest records %d; re-run ppdrag ingest", len(vectors), manifest.Count)
	}
	flat, err := NewFlatIndex(manifest.Dimension, vectors)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, ChunksFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s: run ppdrag ingest first", domain.ErrIndexMissing, dir)
		}
		return nil, fmt.Errorf("failed to read chunks: %w", err)
	}
	var chunks []domain.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("failed to decode chunks: %w", err)
	}
	if len(chunks) != len(vectors) {
		log.FromContext(ctx).Warn("chunk records do not match vectors", "chunks", len(chunks), "vectors", len(vectors))
	}

	return &Index{Manifest: manifest, Flat: flat, chunks: chunks}, nil
}
