package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"

	"ppdrag/config"
	"ppdrag/internal/domain"
)

// Client sends chat completions to an OpenAI-compatible endpoint.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewClient reads the API key from the environment variable named in cfg.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", cfg.APIKeyEnv)
	}

	oc := openai.DefaultConfig(apiKey)
	oc.BaseURL = cfg.BaseURL
	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.Timeout <= 0 {
		httpClient.Timeout = 60 * time.Second
	}
	oc.HTTPClient = httpClient

	return &Client{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

func (c *Client) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		role, err := wireRole(m.Role)
		if err != nil {
			return "", err
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrExternalCall, describe(err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", domain.ErrExternalCall)
	}

	log.FromContext(ctx).Debug("chat completion",
		"model", c.model,
		"messages", len(messages),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) ModelName() string {
	return c.model
}

func wireRole(r domain.Role) (string, error) {
	switch r {
	case domain.RoleSystem:
		return openai.ChatMessageRoleSystem, nil
	case domain.RoleUser:
		return openai.ChatMessageRoleUser, nil
	case domain.RoleAssistant:
		return openai.ChatMessageRoleAssistant, nil
	default:
		return "", fmt.Errorf("unsupported message role %s", r)
	}
}

func describe(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("status %d: %v", reqErr.HTTPStatusCode, reqErr.Err)
	}
	return err.Error()
}
