package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"ppdrag/internal/domain"
)

// DefaultIncludes matches the supported document types directly inside the data directory.
var DefaultIncludes = []string{"*.pdf", "*.csv", "*.txt", "*.md"}

// extension order decides ingestion order: all PDFs, then CSVs, then text, then markdown.
var extensionRank = map[string]int{
	".pdf": 0,
	".csv": 1,
	".txt": 2,
	".md":  3,
}

type Walker struct {
	includes  []string
	excludes  []string
	recursive bool
}

func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = DefaultIncludes
	}
	return &Walker{
		includes:  includes,
		excludes:  excludes,
		recursive: reachesSubdirs(includes),
	}
}

// reachesSubdirs reports whether any pattern can match below the top level.
func reachesSubdirs(patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(p, "/") || strings.Contains(p, "**") {
			return true
		}
	}
	return false
}

// Walk returns the ingestible files under root. A missing root yields no files.
func (w *Walker) Walk(root string) ([]domain.SourceFile, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}

	var files []domain.SourceFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath == "." {
				return nil
			}
			if !w.recursive || w.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		srcType, ok := TypeForPath(path)
		if !ok || !w.shouldInclude(relPath) || w.shouldExclude(relPath) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, domain.SourceFile{
			Path: path,
			Name: d.Name(),
			Type: srcType,
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		ri := extensionRank[strings.ToLower(filepath.Ext(files[i].Path))]
		rj := extensionRank[strings.ToLower(filepath.Ext(files[j].Path))]
		if ri != rj {
			return ri < rj
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// TypeForPath maps a file extension to the loader that handles it.
func TypeForPath(path string) (domain.SourceType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return domain.SourcePDF, true
	case ".csv":
		return domain.SourceCSV, true
	case ".txt", ".md":
		return domain.SourceText, true
	default:
		return "", false
	}
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}
