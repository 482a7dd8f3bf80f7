package domain

import (
	"fmt"
	"strings"
)

// SourceType identifies the loader that produced a chunk.
type SourceType string

const (
	SourcePDF  SourceType = "pdf"
	SourceCSV  SourceType = "csv"
	SourceText SourceType = "text"
)

// ChunkMeta is the provenance of a chunk. Page is set for PDF chunks, Row for CSV chunks.
type ChunkMeta struct {
	Source string     `json:"source"`
	Type   SourceType `json:"type"`
	Page   int        `json:"page,omitempty"`
	Row    int        `json:"row,omitempty"`
}

// Citation returns the tag used to cite the chunk inside prompts.
func (m ChunkMeta) Citation() string {
	src := m.Source
	if src == "" {
		src = "unknown"
	}
	switch {
	case m.Type == SourcePDF && m.Page > 0:
		return fmt.Sprintf("[%s p.%d]", src, m.Page)
	case m.Type == SourceCSV && m.Row > 0:
		return fmt.Sprintf("[%s row %d]", src, m.Row)
	default:
		return "[" + src + "]"
	}
}

type Chunk struct {
	Text string    `json:"text"`
	Meta ChunkMeta `json:"meta"`
}

// SourceFile is a document discovered for ingestion.
type SourceFile struct {
	Path string
	Name string
	Type SourceType
	Size int64
}

type RetrievalResult struct {
	Score float64   `json:"score"`
	Text  string    `json:"text"`
	Meta  ChunkMeta `json:"meta"`
}

// Role is the speaker of a chat message.
type Role int

const (
	RoleSystem Role = iota
	RoleUser
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole maps a wire role name to a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "system":
		return RoleSystem, nil
	case "user":
		return RoleUser, nil
	case "assistant":
		return RoleAssistant, nil
	default:
		return 0, fmt.Errorf("unknown message role %q", s)
	}
}

func (r Role) MarshalText() ([]byte, error) {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return []byte(r.String()), nil
	default:
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Assessment is the structured PPD risk stratification returned by the scoring prompt.
type Assessment struct {
	Category          string     `json:"category"`
	CategoryID        int        `json:"category_id"`
	Score             float64    `json:"score"`
	Confidence        float64    `json:"confidence"`
	Rationale         string     `json:"rationale"`
	Evidence          []Evidence `json:"evidence"`
	MissingInfo       []string   `json:"missing_info"`
	FollowUpQuestions []string   `json:"follow_up_questions"`
	SafetyFlag        SafetyFlag `json:"safety_flag"`
}

type Evidence struct {
	Quote    string `json:"quote"`
	Citation string `json:"citation"`
}

type SafetyFlag struct {
	Risk              string `json:"risk"`
	Reason            string `json:"reason"`
	RecommendedAction string `json:"recommended_action"`
}

// Urgent reports whether the model flagged an urgent safety risk.
func (a Assessment) Urgent() bool {
	return strings.EqualFold(a.SafetyFlag.Risk, "urgent")
}
