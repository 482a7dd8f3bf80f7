package embedding

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
}

var knownDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
}

// NewOpenAIEmbedder reads the API key from apiKeyEnv. An empty baseURL uses the OpenAI default.
// dimension overrides the model's known dimension when positive.
func NewOpenAIEmbedder(apiKeyEnv, model, baseURL string, dimension int) (*OpenAIEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	if dimension <= 0 {
		d, ok := knownDimensions[model]
		if !ok {
			return nil, fmt.Errorf("unknown dimension for embedding model %q, set embedding.dimension", model)
		}
		dimension = d
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		dimension: dimension,
	}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(embeddings) {
			return nil, fmt.Errorf("embedding response index %d out of range", data.Index)
		}
		v := make([]float32, len(data.Embedding))
		for i, x := range data.Embedding {
			v[i] = float32(x)
		}
		embeddings[data.Index] = v
	}
	for i, v := range embeddings {
		if v == nil {
			return nil, fmt.Errorf("embedding response missing vector for input %d", i)
		}
		if len(v) != e.dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", e.dimension, len(v))
		}
	}

	return embeddings, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}
