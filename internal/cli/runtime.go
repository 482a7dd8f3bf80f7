package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"ppdrag/config"
	"ppdrag/internal/adapter/embedding"
	"ppdrag/internal/domain"
	"ppdrag/internal/usecase"
)

// newRegistry builds the embedder from config and a registry that loads the
// configured index on demand.
func newRegistry(cfg *config.Config) (*usecase.Registry, error) {
	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return usecase.NewRegistry(embedder, usecase.HandleOptions{
		QueryCacheSize:    cfg.Retrieve.QueryCacheSize,
		MinScoreThreshold: cfg.Retrieve.MinScore,
		Config:            cfg,
	}), nil
}

// loadHistory reads prior turns from a JSON array of {"role", "content"} objects.
// An empty path means no history.
func loadHistory(path string) ([]domain.Message, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var history []domain.Message
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to parse history %s: %w", path, err)
	}
	return history, nil
}
