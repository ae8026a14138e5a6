package preview

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func TestImageToAnsi(t *testing.T) {
	img := imaging.New(40, 60, color.NRGBA{255, 0, 0, 255})

	art := ImageToAnsi(img, 10, 6, true)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6", len(lines))
	}
	if got := len([]rune(StripAnsi(lines[0]))); got != 10 {
		t.Errorf("visible width = %d, want 10", got)
	}
	if !strings.HasPrefix(lines[0], "\x1b[38;2;25") || !strings.Contains(lines[0], ";0;0m\x1b[48;2;") {
		t.Errorf("expected red foreground in %q", lines[0])
	}

	plain := ImageToAnsi(img, 3, 2, false)
	if plain != "▀▀▀\n▀▀▀\n" {
		t.Errorf("plain art = %q", plain)
	}
}

func TestRows(t *testing.T) {
	tests := []struct {
		w, h, cols, want int
	}{
		{100, 140, 40, 28},
		{100, 100, 40, 20},
		{100, 1, 40, 1},
	}
	for _, tt := range tests {
		img := imaging.New(tt.w, tt.h, color.Black)
		if got := Rows(img, tt.cols); got != tt.want {
			t.Errorf("Rows(%dx%d, %d) = %d, want %d", tt.w, tt.h, tt.cols, got, tt.want)
		}
	}
}

func TestStripAnsi(t *testing.T) {
	if got := StripAnsi("\x1b[31mred\x1b[0m plain"); got != "red plain" {
		t.Errorf("StripAnsi = %q", got)
	}
}

func TestWrapText(t *testing.T) {
	got := WrapText("the quick brown fox jumps over the lazy dog", 15)
	want := []string{"the quick brown", "fox jumps over", "the lazy dog"}
	if len(got) != len(want) {
		t.Fatalf("WrapText = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	if got := WrapText("   ", 20); len(got) != 1 || got[0] != "" {
		t.Errorf("empty text = %q", got)
	}
}

func TestSideBySide(t *testing.T) {
	var buf bytes.Buffer
	SideBySide(&buf, "\x1b[31mab\x1b[0m\ncd\n", []string{"one", "two", "three"})

	lines := strings.Split(buf.String(), "\n")
	// Leading blank line, three content rows, trailing blank line
	if lines[1] != "  \x1b[31mab\x1b[0m    one" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "  cd    two" {
		t.Errorf("row 2 = %q", lines[2])
	}
	if lines[3] != "        three" {
		t.Errorf("row 3 = %q", lines[3])
	}
}

func TestInfoWidth(t *testing.T) {
	if got := InfoWidth("abcd\n", 80); got != 68 {
		t.Errorf("InfoWidth = %d, want 68", got)
	}
	if got := InfoWidth("abcd\n", 10); got != 20 {
		t.Errorf("InfoWidth on narrow terminal = %d, want 20", got)
	}
}
