package chunker

import (
	"fmt"
	"strings"
)

const (
	DefaultWindowSize    = 900
	DefaultWindowOverlap = 150
)

// Window splits text into fixed-size overlapping rune windows.
type Window struct {
	size    int
	overlap int
}

// NewWindow validates the window parameters.
func NewWindow(size, overlap int) (Window, error) {
	if size <= 0 {
		return Window{}, fmt.Errorf("chunk size must be greater than zero, got %d", size)
	}
	if overlap < 0 {
		return Window{}, fmt.Errorf("chunk overlap cannot be negative, got %d", overlap)
	}
	if overlap >= size {
		return Window{}, fmt.Errorf("chunk overlap %d must be smaller than size %d", overlap, size)
	}
	return Window{size: size, overlap: overlap}, nil
}

func (w Window) Size() int    { return w.size }
func (w Window) Overlap() int { return w.overlap }

// Split trims the text and cuts it into windows. Consecutive windows share
// exactly Overlap runes; the last window may be shorter.
func (w Window) Split(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	n := len(runes)
	if n == 0 {
		return nil
	}

	var out []string
	start := 0
	for start < n {
		end := start + w.size
		if end > n {
			end = n
		}
		out = append(out, string(runes[start:end]))
		if end == n {
			break
		}
		start = end - w.overlap
	}
	return out
}
