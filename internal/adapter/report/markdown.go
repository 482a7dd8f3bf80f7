package report

import (
	"fmt"
	"strings"
	"time"

	"ppdrag/internal/domain"
)

const disclaimer = "This assessment is generated by a language model from the information provided. " +
	"It is not a diagnosis. Please discuss it with a qualified healthcare professional."

// Markdown lays out an assessment and the sources it was grounded on as a markdown document.
func Markdown(a domain.Assessment, sources []domain.RetrievalResult, generated time.Time) string {
	var b strings.Builder

	b.WriteString("# Postpartum Depression Risk Assessment\n\n")
	fmt.Fprintf(&b, "Generated %s\n\n", generated.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Category:** %s (%d)\n", escape(a.Category), a.CategoryID)
	fmt.Fprintf(&b, "- **Score:** %.0f / 100\n", a.Score)
	fmt.Fprintf(&b, "- **Confidence:** %.2f\n\n", a.Confidence)

	b.WriteString("## Safety\n\n")
	risk := a.SafetyFlag.Risk
	if risk == "" {
		risk = "none"
	}
	if a.Urgent() {
		fmt.Fprintf(&b, "**Risk: %s.** %s\n\n", escape(risk), escape(a.SafetyFlag.Reason))
	} else {
		fmt.Fprintf(&b, "Risk: %s. %s\n\n", escape(risk), escape(a.SafetyFlag.Reason))
	}
	if a.SafetyFlag.RecommendedAction != "" {
		fmt.Fprintf(&b, "*Recommended action:* %s\n\n", escape(a.SafetyFlag.RecommendedAction))
	}

	if a.Rationale != "" {
		b.WriteString("## Rationale\n\n")
		b.WriteString(escape(a.Rationale))
		b.WriteString("\n\n")
	}

	if len(a.Evidence) > 0 {
		b.WriteString("## Evidence\n\n")
		for _, e := range a.Evidence {
			fmt.Fprintf(&b, "- \"%s\" %s\n", escape(e.Quote), escape(e.Citation))
		}
		b.WriteString("\n")
	}

	writeList(&b, "Missing information", a.MissingInfo)
	writeList(&b, "Follow-up questions", a.FollowUpQuestions)

	if len(sources) > 0 {
		b.WriteString("## Sources consulted\n\n")
		for _, s := range sources {
			fmt.Fprintf(&b, "- %s (score %.3f)\n", escape(s.Meta.Citation()), s.Score)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "*%s*\n", disclaimer)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", escape(item))
	}
	b.WriteString("\n")
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"#", `\#`,
	"<", `\<`,
	"\n", " ",
)

// escape keeps model-produced text from being read as markdown markup.
func escape(s string) string {
	return markdownEscaper.Replace(strings.TrimSpace(s))
}
