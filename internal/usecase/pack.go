package usecase

import (
	"strings"

	"ppdrag/internal/domain"
	"ppdrag/internal/port"
)

// EmptyContext stands in for the documents block when nothing was retrieved.
const EmptyContext = "(none)"

// ContextPacker formats retrieved chunks into the citation-tagged block placed in prompts.
type ContextPacker struct {
	tokenizer port.Tokenizer
	maxChars  int
}

// NewContextPacker creates a packer that cuts each chunk to maxChars runes.
func NewContextPacker(tokenizer port.Tokenizer, maxChars int) *ContextPacker {
	return &ContextPacker{
		tokenizer: tokenizer,
		maxChars:  maxChars,
	}
}

// Pack keeps retrieval order. Each snippet is "<citation> <text>", snippets are
// separated by a blank line.
func (p *ContextPacker) Pack(results []domain.RetrievalResult) domain.PackedContext {
	if len(results) == 0 {
		return domain.PackedContext{
			Snippets: []domain.Snippet{},
			Block:    EmptyContext,
		}
	}

	snippets := make([]domain.Snippet, 0, len(results))
	lines := make([]string, 0, len(results))
	used := 0
	for _, r := range results {
		s := domain.Snippet{
			Citation: r.Meta.Citation(),
			Text:     truncateRunes(r.Text, p.maxChars),
			Score:    r.Score,
		}
		snippets = append(snippets, s)
		lines = append(lines, s.Citation+" "+s.Text)
		used += p.tokenizer.CountTokens(s.Text)
	}

	return domain.PackedContext{
		Snippets:   snippets,
		Block:      strings.Join(lines, "\n\n"),
		UsedTokens: used,
	}
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
