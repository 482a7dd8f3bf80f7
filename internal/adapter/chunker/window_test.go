package chunker

import (
	"strings"
	"testing"
)

func TestNewWindowValidation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"defaults", DefaultWindowSize, DefaultWindowOverlap, false},
		{"no overlap", 10, 0, false},
		{"zero size", 0, 0, true},
		{"negative overlap", 10, -1, true},
		{"overlap equals size", 10, 10, true},
		{"overlap larger than size", 10, 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWindow(tt.size, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewWindow(%d, %d) error = %v, wantErr %v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestWindowSplitEmpty(t *testing.T) {
	w, _ := NewWindow(900, 150)

	for _, in := range []string{"", "   ", "\n\t\n"} {
		if got := w.Split(in); len(got) != 0 {
			t.Errorf("Split(%q) = %v, want no windows", in, got)
		}
	}
}

func TestWindowSplitShortText(t *testing.T) {
	w, _ := NewWindow(900, 150)

	got := w.Split("  I have not slept properly in weeks.  ")
	if len(got) != 1 {
		t.Fatalf("expected 1 window, got %d", len(got))
	}
	if got[0] != "I have not slept properly in weeks." {
		t.Errorf("unexpected window %q", got[0])
	}
}

func TestWindowSplitOverlapAndReconstruction(t *testing.T) {
	w, _ := NewWindow(10, 3)
	text := strings.Repeat("abcdefghijklmnopqrstuvwxyz", 3)

	windows := w.Split(text)
	if len(windows) < 2 {
		t.Fatalf("expected several windows, got %d", len(windows))
	}

	for i, win := range windows {
		n := len([]rune(win))
		if n > 10 {
			t.Errorf("window %d has %d runes, exceeds size", i, n)
		}
		if i < len(windows)-1 && n != 10 {
			t.Errorf("non-final window %d has %d runes, want 10", i, n)
		}
	}

	for i := 1; i < len(windows); i++ {
		prev := []rune(windows[i-1])
		cur := []rune(windows[i])
		if string(prev[len(prev)-3:]) != string(cur[:3]) {
			t.Errorf("windows %d and %d do not share a 3-rune overlap", i-1, i)
		}
	}

	var b strings.Builder
	b.WriteString(windows[0])
	for _, win := range windows[1:] {
		b.WriteString(string([]rune(win)[3:]))
	}
	if b.String() != text {
		t.Errorf("reconstruction mismatch:\n got %q\nwant %q", b.String(), text)
	}
}

func TestWindowSplitCountsRunes(t *testing.T) {
	w, _ := NewWindow(4, 1)

	windows := w.Split("ééééééé")
	want := []string{"éééé", "éééé"}
	if len(windows) != len(want) {
		t.Fatalf("got %v, want %v", windows, want)
	}
	for i := range want {
		if windows[i] != want[i] {
			t.Errorf("window %d = %q, want %q", i, windows[i], want[i])
		}
	}
}
