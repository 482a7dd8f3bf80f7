package port

import (
	"context"

	"ppdrag/internal/domain"
)

// LLM is a chat-completion model.
type LLM interface {
	// Complete sends the conversation and returns the assistant reply text.
	Complete(ctx context.Context, messages []domain.Message) (string, error)

	ModelName() string
}
