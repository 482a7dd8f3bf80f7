package domain

// Snippet is one retrieved chunk as it appears in a prompt.
type Snippet struct {
	Citation string  `json:"citation"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

// PackedContext is the retrieved-documents block handed to the model.
type PackedContext struct {
	Snippets   []Snippet `json:"snippets"`
	Block      string    `json:"block"`
	UsedTokens int       `json:"used_tokens"`
}
