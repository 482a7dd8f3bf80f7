package domain

import "time"

// Manifest describes a built index and the embedding function that produced it.
type Manifest struct {
	SchemaVersion     int       `json:"schema_version"`
	BuildID           string    `json:"build_id"`
	EmbeddingProvider string    `json:"embedding_provider"`
	EmbeddingModel    string    `json:"embedding_model"`
	Dimension         int       `json:"dimension"`
	Count             int       `json:"count"`
	ChunkSize         int       `json:"chunk_size"`
	ChunkOverlap      int       `json:"chunk_overlap"`
	ConfigHash        string    `json:"config_hash"`
	CreatedAt         time.Time `json:"created_at"`
}
