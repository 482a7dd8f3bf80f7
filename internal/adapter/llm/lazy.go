package llm

import (
	"context"
	"fmt"
	"sync"

	"ppdrag/config"
	"ppdrag/internal/domain"
)

// LazyClient builds its Client on the first Complete, so callers that never
// reach the model do not need an API key.
type LazyClient struct {
	cfg config.LLMConfig

	once   sync.Once
	client *Client
	err    error
}

func NewLazyClient(cfg config.LLMConfig) *LazyClient {
	return &LazyClient{cfg: cfg}
}

func (l *LazyClient) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	l.once.Do(func() {
		l.client, l.err = NewClient(l.cfg)
	})
	if l.err != nil {
		return "", fmt.Errorf("failed to create LLM client: %w", l.err)
	}
	return l.client.Complete(ctx, messages)
}

func (l *LazyClient) ModelName() string {
	return l.cfg.Model
}
