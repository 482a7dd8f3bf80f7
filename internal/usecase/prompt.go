package usecase

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"ppdrag/internal/domain"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

type promptData struct {
	Question string
	Context  string
}

func renderPrompt(name string, data promptData) (string, error) {
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// buildMessages assembles system instructions, prior turns and the final user turn.
func buildMessages(systemTmpl, userTmpl string, history []domain.Message, data promptData) ([]domain.Message, error) {
	system, err := renderPrompt(systemTmpl, data)
	if err != nil {
		return nil, err
	}
	user, err := renderPrompt(userTmpl, data)
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(history)+2)
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: system})
	messages = append(messages, history...)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: user})
	return messages, nil
}
