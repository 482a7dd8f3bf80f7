package chunker

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"

	"ppdrag/internal/domain"
)

func writePDF(t *testing.T, dir, name string, pages ...string) domain.SourceFile {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		doc.Cell(0, 10, text)
	}
	path := filepath.Join(dir, name)
	if err := doc.OutputFileAndClose(path); err != nil {
		t.Fatal(err)
	}
	return domain.SourceFile{Path: path, Name: name, Type: domain.SourcePDF}
}

func TestTextLoaderWholeFile(t *testing.T) {
	w, _ := NewWindow(900, 150)
	file := writeFile(t, t.TempDir(), "notes.md", "\n# Baby blues\n\nUsually resolves within two weeks.\n")
	file.Type = domain.SourceText

	chunks, err := NewTextLoader(w).Load(context.Background(), file)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "# Baby blues\n\nUsually resolves within two weeks." {
		t.Errorf("unexpected text %q", chunks[0].Text)
	}
	if chunks[0].Meta.Type != domain.SourceText || chunks[0].Meta.Source != "notes.md" {
		t.Errorf("unexpected meta %+v", chunks[0].Meta)
	}
}

func TestTextLoaderEmptyFile(t *testing.T) {
	w, _ := NewWindow(900, 150)
	file := writeFile(t, t.TempDir(), "empty.txt", "   \n")
	file.Type = domain.SourceText

	chunks, err := NewTextLoader(w).Load(context.Background(), file)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestPDFLoaderPages(t *testing.T) {
	w, _ := NewWindow(900, 150)
	file := writePDF(t, t.TempDir(), "guide.pdf", "Edinburgh scale overview", "Screening thresholds")

	chunks, err := NewPDFLoader(w).Load(context.Background(), file)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "Edinburgh") {
		t.Errorf("page 1 text %q missing content", chunks[0].Text)
	}
	for i, c := range chunks {
		if c.Meta.Page != i+1 {
			t.Errorf("chunk %d has page %d, want %d", i, c.Meta.Page, i+1)
		}
		if c.Meta.Type != domain.SourcePDF {
			t.Errorf("chunk %d has type %q", i, c.Meta.Type)
		}
	}
}

func TestPDFLoaderSkipsNonPDF(t *testing.T) {
	w, _ := NewWindow(900, 150)
	file := writeFile(t, t.TempDir(), "fake.pdf", "just some text")
	file.Type = domain.SourcePDF

	chunks, err := NewPDFLoader(w).Load(context.Background(), file)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for mislabelled file, got %d", len(chunks))
	}
}

func TestCompositeLoaderDispatch(t *testing.T) {
	w, _ := NewWindow(900, 150)
	loader := NewCompositeLoader(w, 0)
	dir := t.TempDir()

	csvFile := writeFile(t, dir, "a.csv", "k,v\n1,2\n")
	csvFile.Type = domain.SourceCSV
	chunks, err := loader.Load(context.Background(), csvFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0].Meta.Row != 1 {
		t.Errorf("unexpected csv chunks %+v", chunks)
	}

	unknown := writeFile(t, dir, "a.docx", "x")
	unknown.Type = domain.SourceType("docx")
	if _, err := loader.Load(context.Background(), unknown); err == nil {
		t.Error("expected error for unknown source type")
	}
}
