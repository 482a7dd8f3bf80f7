package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppdrag/config"
	"ppdrag/internal/domain"
)

func testConfig(url string) config.LLMConfig {
	return config.LLMConfig{
		BaseURL:     url + "/v1",
		Model:       "test-chat",
		APIKeyEnv:   "TEST_LLM_KEY",
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	}
}

func TestClient_Complete(t *testing.T) {
	type wireMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	var got struct {
		Model       string        `json:"model"`
		Temperature float32       `json:"temperature"`
		Messages    []wireMessage `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "c1",
			"object": "chat.completion",
			"model": "test-chat",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "You are not alone."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14}
		}`))
	}))
	defer server.Close()

	t.Setenv("TEST_LLM_KEY", "secret")
	c, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	reply, err := c.Complete(context.Background(), []domain.Message{
		{Role: domain.RoleSystem, Content: "be kind"},
		{Role: domain.RoleUser, Content: "hello"},
		{Role: domain.RoleAssistant, Content: "hi"},
		{Role: domain.RoleUser, Content: "I feel overwhelmed"},
	})
	require.NoError(t, err)
	assert.Equal(t, "You are not alone.", reply)

	assert.Equal(t, "test-chat", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "I feel overwhelmed", got.Messages[3].Content)
}

func TestClient_Non200IsExternalCallError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
	}))
	defer server.Close()

	t.Setenv("TEST_LLM_KEY", "secret")
	c, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalCall)
}

func TestClient_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "c2", "object": "chat.completion", "choices": []}`))
	}))
	defer server.Close()

	t.Setenv("TEST_LLM_KEY", "secret")
	c, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}})
	assert.ErrorIs(t, err, domain.ErrExternalCall)
}

func TestClient_RejectsUnknownRole(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "secret")
	c, err := NewClient(testConfig("http://127.0.0.1:1"))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), []domain.Message{{Role: domain.Role(9), Content: "?"}})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrExternalCall)
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "")
	_, err := NewClient(testConfig("http://localhost"))
	assert.Error(t, err)
}

func TestLazyClient_DefersKeyLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"test-chat",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	t.Setenv("TEST_LLM_KEY", "")
	c := NewLazyClient(testConfig(server.URL))
	assert.Equal(t, "test-chat", c.ModelName())

	// the key is read on the first call only
	t.Setenv("TEST_LLM_KEY", "secret")
	reply, err := c.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestLazyClient_MissingKey(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "")
	c := NewLazyClient(testConfig("http://localhost"))

	_, err := c.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_LLM_KEY")
}
