package embedding

import (
	"fmt"

	"ppdrag/config"
	"ppdrag/internal/adapter/analyzer"
	"ppdrag/internal/port"
)

// New builds the configured embedder, wrapped so its vectors are unit length.
func New(cfg config.EmbeddingConfig) (port.Embedder, error) {
	var (
		inner port.Embedder
		err   error
	)

	switch cfg.Provider {
	case "hashing", "":
		inner, err = NewHashingEmbedder(analyzer.NewTokenizer(true), cfg.Dimension)
	case "openai":
		inner, err = NewOpenAIEmbedder(cfg.APIKeyEnv, cfg.Model, cfg.BaseURL, cfg.Dimension)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewNormalizing(inner), nil
}
