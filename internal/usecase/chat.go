package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"ppdrag/internal/domain"
	"ppdrag/internal/port"
)

// EmptyMessageReply is returned for a blank chat message without calling the model.
const EmptyMessageReply = "Please provide a message."

// ChatUseCase answers questions grounded on retrieved documents.
type ChatUseCase struct {
	retriever port.Retriever
	llm       port.LLM
	packer    *ContextPacker
	topK      int
}

// NewChatUseCase creates a new chat use case.
func NewChatUseCase(retriever port.Retriever, llm port.LLM, packer *ContextPacker, topK int) *ChatUseCase {
	return &ChatUseCase{
		retriever: retriever,
		llm:       llm,
		packer:    packer,
		topK:      topK,
	}
}

// ChatResult is the assistant reply and the chunks it was given.
type ChatResult struct {
	Reply   string                   `json:"reply"`
	Results []domain.RetrievalResult `json:"results"`
}

// Reply retrieves context for userText and asks the model to answer it.
func (u *ChatUseCase) Reply(ctx context.Context, userText string, history []domain.Message) (*ChatResult, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return &ChatResult{Reply: EmptyMessageReply, Results: []domain.RetrievalResult{}}, nil
	}

	results, err := u.retriever.Retrieve(ctx, userText, u.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	packed := u.packer.Pack(results)
	messages, err := buildMessages("chat_system.tmpl", "chat_user.tmpl", history, promptData{
		Question: userText,
		Context:  packed.Block,
	})
	if err != nil {
		return nil, err
	}

	log.FromContext(ctx).Debug("chat prompt assembled", "snippets", len(packed.Snippets), "context_tokens", packed.UsedTokens)

	reply, err := u.llm.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	return &ChatResult{Reply: reply, Results: results}, nil
}
