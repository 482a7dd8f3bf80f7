package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppdrag/config"
	"ppdrag/internal/adapter/analyzer"
)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func TestHashingEmbedder_Deterministic(t *testing.T) {
	e, err := NewHashingEmbedder(analyzer.NewTokenizer(true), 64)
	require.NoError(t, err)

	a, err := e.Embed(context.Background(), []string{"trouble sleeping and feeling anxious"})
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), []string{"trouble sleeping and feeling anxious"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a[0], 64)
	assert.Equal(t, "feature-hash-64", e.ModelName())
}

func TestHashingEmbedder_InvalidDimension(t *testing.T) {
	_, err := NewHashingEmbedder(analyzer.NewTokenizer(true), 0)
	assert.Error(t, err)
}

func TestNormalizing_UnitLength(t *testing.T) {
	inner, err := NewHashingEmbedder(analyzer.NewTokenizer(true), 128)
	require.NoError(t, err)
	e := NewNormalizing(inner)

	vecs, err := e.Embed(context.Background(), []string{
		"low mood and loss of interest after birth",
		"",
	})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	assert.InDelta(t, 1.0, norm(vecs[0]), 1e-5)
	assert.Equal(t, 0.0, norm(vecs[1]), "empty text stays the zero vector")
	assert.Equal(t, 128, e.Dimension())
	assert.Equal(t, "feature-hash-128", e.ModelName())
}

func TestNormalizing_SimilarTextsScoreHigher(t *testing.T) {
	e, err := New(config.EmbeddingConfig{Provider: "hashing", Dimension: 384})
	require.NoError(t, err)

	vecs, err := e.Embed(context.Background(), []string{
		"crying every day and not sleeping",
		"she has been crying and cannot sleep",
		"infant feeding schedule for formula",
	})
	require.NoError(t, err)

	assert.Greater(t, dot(vecs[0], vecs[1]), dot(vecs[0], vecs[2]))
	assert.InDelta(t, 1.0, dot(vecs[0], vecs[0]), 1e-5)
}

func TestHashingEmbedder_StopwordOnlyText(t *testing.T) {
	inner, err := NewHashingEmbedder(analyzer.NewTokenizer(true), 128)
	require.NoError(t, err)
	e := NewNormalizing(inner)

	vecs, err := e.Embed(context.Background(), []string{
		"It is what it is.",
		"it   is WHAT it is.",
		"I",
		"Postpartum mood screening notes.",
	})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, norm(vecs[0]), 1e-5)
	assert.InDelta(t, 1.0, norm(vecs[2]), 1e-5)
	assert.InDelta(t, 1.0, dot(vecs[0], vecs[1]), 1e-5, "case and spacing do not change the vector")
	assert.Less(t, dot(vecs[0], vecs[3]), 0.99)
}

func TestL2Normalize(t *testing.T) {
	v := []float32{3, 4}
	L2Normalize(v)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	zero := []float32{0, 0}
	L2Normalize(zero)
	assert.Equal(t, []float32{0, 0}, zero)
}

func TestOpenAIEmbedder(t *testing.T) {
	var gotInputs []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotInputs = req.Input
		assert.Equal(t, "tiny-embed", req.Model)

		w.Header().Set("Content-Type", "application/json")
		// reversed order to check index handling
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "tiny-embed",
			"data": [
				{"object": "embedding", "index": 1, "embedding": [0, 3, 4]},
				{"object": "embedding", "index": 0, "embedding": [1, 0, 0]}
			],
			"usage": {"prompt_tokens": 4, "total_tokens": 4}
		}`))
	}))
	defer server.Close()

	t.Setenv("TEST_EMBED_KEY", "test-key")
	e, err := New(config.EmbeddingConfig{
		Provider:  "openai",
		Model:     "tiny-embed",
		BaseURL:   server.URL + "/v1",
		APIKeyEnv: "TEST_EMBED_KEY",
		Dimension: 3,
	})
	require.NoError(t, err)

	vecs, err := e.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, gotInputs)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{1, 0, 0}, vecs[0])
	assert.InDelta(t, 0.6, vecs[1][1], 1e-6)
	assert.InDelta(t, 0.8, vecs[1][2], 1e-6)
	assert.Equal(t, "tiny-embed", e.ModelName())
}

func TestOpenAIEmbedder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	t.Setenv("TEST_EMBED_KEY", "test-key")
	e, err := NewOpenAIEmbedder("TEST_EMBED_KEY", "tiny-embed", server.URL+"/v1", 3)
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), []string{"x"})
	assert.Error(t, err)
}

func TestOpenAIEmbedder_MissingKeyOrDimension(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "")
	_, err := NewOpenAIEmbedder("TEST_EMBED_KEY", "text-embedding-3-small", "", 0)
	assert.Error(t, err)

	t.Setenv("TEST_EMBED_KEY", "k")
	e, err := NewOpenAIEmbedder("TEST_EMBED_KEY", "text-embedding-3-small", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1536, e.Dimension())

	_, err = NewOpenAIEmbedder("TEST_EMBED_KEY", "mystery-model", "", 0)
	assert.Error(t, err)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(config.EmbeddingConfig{Provider: "voyage"})
	assert.Error(t, err)
}
