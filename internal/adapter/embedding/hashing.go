package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"ppdrag/internal/port"
)

// HashingEmbedder is a local, deterministic embedder using signed feature hashing
// over unigrams and adjacent bigrams. It needs no network access or model files.
//
// Text whose words are all stopwords or single letters yields no terms; it is
// hashed by character trigrams instead so only empty text maps to a zero vector.
type HashingEmbedder struct {
	tokenizer port.Tokenizer
	dimension int
}

func NewHashingEmbedder(tokenizer port.Tokenizer, dimension int) (*HashingEmbedder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("hashing embedder dimension must be positive, got %d", dimension)
	}
	return &HashingEmbedder{tokenizer: tokenizer, dimension: dimension}, nil
}

func (e *HashingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.embed(text)
	}
	return out, nil
}

func (e *HashingEmbedder) embed(text string) []float32 {
	v := make([]float32, e.dimension)
	terms := e.tokenizer.Tokenize(text)
	if len(terms) == 0 {
		for _, gram := range trigrams(text) {
			e.add(v, gram, 1)
		}
		return v
	}
	for i, term := range terms {
		e.add(v, term, 1)
		if i > 0 {
			e.add(v, terms[i-1]+" "+term, 0.5)
		}
	}
	return v
}

// trigrams returns the character trigrams of the lowercased, space-padded text.
func trigrams(text string) []string {
	text = strings.Join(strings.Fields(strings.ToLower(text)), " ")
	if text == "" {
		return nil
	}
	runes := []rune(" " + text + " ")
	grams := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		grams = append(grams, "#"+string(runes[i:i+3]))
	}
	return grams
}

func (e *HashingEmbedder) add(v []float32, feature string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(e.dimension))
	if sum>>63 == 1 {
		weight = -weight
	}
	v[bucket] += weight
}

func (e *HashingEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashingEmbedder) ModelName() string {
	return fmt.Sprintf("feature-hash-%d", e.dimension)
}
