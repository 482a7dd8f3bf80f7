package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"ppdrag/config"
	"ppdrag/internal/domain"
)

// CurrentSchemaVersion is the current artifact schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 1

// ComputeConfigHash computes a hash of the configuration that shapes index contents.
// A different hash means the index no longer reflects the current configuration.
func ComputeConfigHash(cfg *config.Config) string {
	relevant := struct {
		Includes     []string `json:"includes"`
		Excludes     []string `json:"excludes"`
		ChunkSize    int      `json:"chunk_size"`
		ChunkOverlap int      `json:"chunk_overlap"`
		CSVMaxRows   int      `json:"csv_max_rows"`
		EmbProvider  string   `json:"emb_provider"`
		EmbModel     string   `json:"emb_model"`
		EmbDimension int      `json:"emb_dimension"`
	}{
		Includes:     cfg.Ingest.Includes,
		Excludes:     cfg.Ingest.Excludes,
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
		CSVMaxRows:   cfg.Ingest.CSVMaxRows,
		EmbProvider:  cfg.Embedding.Provider,
		EmbModel:     cfg.Embedding.Model,
		EmbDimension: cfg.Embedding.Dimension,
	}

	data, _ := json.Marshal(relevant)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

// CheckCompatibility verifies that an index can be searched with the given embedding function.
func CheckCompatibility(m domain.Manifest, model string, dimension int) error {
	switch {
	case m.SchemaVersion == 0:
		return fmt.Errorf("index manifest has no schema version, re-run ppdrag ingest")
	case m.SchemaVersion > CurrentSchemaVersion:
		return fmt.Errorf("index created by newer version (v%d > v%d), re-run ppdrag ingest", m.SchemaVersion, CurrentSchemaVersion)
	}

	if m.EmbeddingModel != model || m.Dimension != dimension {
		return fmt.Errorf("%w: index built with %q (dim %d), current embedder is %q (dim %d); re-run ppdrag ingest",
			domain.ErrEmbeddingMismatch, m.EmbeddingModel, m.Dimension, model, dimension)
	}
	return nil
}

// NeedsRebuild reports whether the index was built under a different configuration.
func NeedsRebuild(m domain.Manifest, cfg *config.Config) (bool, string) {
	if m.ConfigHash != "" && m.ConfigHash != ComputeConfigHash(cfg) {
		return true, "index configuration changed"
	}
	return false, ""
}
