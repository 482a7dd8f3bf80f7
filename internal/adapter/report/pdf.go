package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"ppdrag/internal/domain"
)

const (
	fontFamily = "Helvetica"
	fontSize   = 10.0
	lineHeight = 5.0
)

// Renderer turns assessments into PDF reports.
type Renderer struct {
	now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Render returns the PDF bytes for an assessment.
func (r *Renderer) Render(ctx context.Context, a domain.Assessment, sources []domain.RetrievalResult) ([]byte, error) {
	source := []byte(Markdown(a, sources, r.now()))
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Postpartum Depression Risk Assessment", true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", fontSize)

	w := &pdfWriter{
		pdf:    pdf,
		source: source,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
	}
	if err := ast.Walk(doc, w.walk); err != nil {
		return nil, fmt.Errorf("failed to lay out report: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	log.FromContext(ctx).Debug("report rendered", "bytes", buf.Len(), "category", a.Category)
	return buf.Bytes(), nil
}

// WriteFile renders the report and writes it to path.
func (r *Renderer) WriteFile(ctx context.Context, path string, a domain.Assessment, sources []domain.RetrievalResult) error {
	data, err := r.Render(ctx, a, sources)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

type pdfWriter struct {
	pdf       *fpdf.Fpdf
	source    []byte
	tr        func(string) string
	bold      bool
	italic    bool
	listLevel int
}

func (w *pdfWriter) updateFont() {
	style := ""
	if w.bold {
		style += "B"
	}
	if w.italic {
		style += "I"
	}
	w.pdf.SetFont(fontFamily, style, fontSize)
}

func (w *pdfWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		w.heading(node, entering)
	case *ast.Paragraph:
		if !entering && w.listLevel == 0 {
			w.pdf.Ln(lineHeight + 2)
		}
	case *ast.Text:
		if entering {
			w.pdf.Write(lineHeight, w.tr(textOf(node, w.source)))
			if node.SoftLineBreak() || node.HardLineBreak() {
				w.pdf.Ln(lineHeight)
			}
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			w.bold = entering
		} else {
			w.italic = entering
		}
		w.updateFont()
	case *ast.List:
		if entering {
			w.listLevel++
		} else {
			w.listLevel--
			w.pdf.Ln(lineHeight + 2)
		}
	case *ast.ListItem:
		if entering {
			if node.PreviousSibling() != nil {
				w.pdf.Ln(lineHeight)
			}
			w.pdf.SetX(15 + float64(w.listLevel)*4)
			w.pdf.Write(lineHeight, w.tr("- "))
		}
	case *ast.ThematicBreak:
		if entering {
			w.pdf.Ln(2)
			w.pdf.Line(15, w.pdf.GetY(), 195, w.pdf.GetY())
			w.pdf.Ln(3)
		}
	}
	return ast.WalkContinue, nil
}

func (w *pdfWriter) heading(n *ast.Heading, entering bool) {
	if !entering {
		w.pdf.Ln(lineHeight + 3)
		w.updateFont()
		return
	}
	size := 11.0
	if n.Level == 1 {
		size = 15
	}
	w.pdf.Ln(2)
	w.pdf.SetFont(fontFamily, "B", size)
}

// textOf returns the text of a node with markdown backslash escapes removed.
func textOf(node *ast.Text, source []byte) string {
	return string(util.UnescapePunctuations(node.Segment.Value(source)))
}
