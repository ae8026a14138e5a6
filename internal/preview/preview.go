// Package preview renders generated card images as ANSI art for terminals.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

// Rows returns the number of text rows needed to show img at cols columns
// without distorting it. Each row holds two pixel rows.
func Rows(img image.Image, cols int) int {
	b := img.Bounds()
	if b.Dx() == 0 {
		return 0
	}
	rows := (cols*b.Dy()/b.Dx() + 1) / 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

// ImageToAnsi converts an image to ANSI art of width by height cells using
// upper half blocks. Without trueColor the block characters are written
// without escape codes.
func ImageToAnsi(img image.Image, width, height int, trueColor bool) string {
	// Doubled for half-block characters
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	var buffer strings.Builder
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			// Top pixels as foreground, bottom pixels as background
			fg := averageColor(colorAt(resized, x, y), colorAt(resized, x+1, y))
			bg := averageColor(colorAt(resized, x, y+1), colorAt(resized, x+1, y+1))
			buffer.WriteString(ansiColorString('▀', fg, bg, trueColor))
		}
		buffer.WriteString("\n")
	}

	return buffer.String()
}

// colorAt returns the color at a coordinate, black when out of bounds.
func colorAt(img image.Image, x, y int) colorful.Color {
	p := image.Pt(x, y)
	if !p.In(img.Bounds()) {
		return colorful.Color{}
	}
	c, _ := colorful.MakeColor(img.At(x, y))
	return c
}

func averageColor(colors ...colorful.Color) color.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	avg := colorful.Color{R: r / count, G: g / count, B: b / count}

	r8, g8, b8 := avg.Clamped().RGB255()
	return color.RGBA{R: r8, G: g8, B: b8, A: 255}
}

// ansiColorString formats a character with 24-bit ANSI color codes
func ansiColorString(char rune, fg, bg color.Color, trueColor bool) string {
	if !trueColor {
		return string(char)
	}

	r1, g1, b1, _ := fg.RGBA()
	r2, g2, b2, _ := bg.RGBA()

	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c\x1b[0m",
		r1>>8, g1>>8, b1>>8, r2>>8, g2>>8, b2>>8, char)
}

// StripAnsi removes ANSI escape sequences from a string
func StripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// visibleWidth counts the printed cells of a line.
func visibleWidth(s string) int {
	return len([]rune(StripAnsi(s)))
}

// WrapText wraps text to a specified width
func WrapText(text string, width int) []string {
	if width < 10 {
		width = 40
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var result []string
	currentLine := ""
	for _, word := range words {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= width:
			currentLine += " " + word
		default:
			result = append(result, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		result = append(result, currentLine)
	}

	return result
}

// SideBySide writes art on the left and info lines on the right. Info
// lines are not wrapped; use WrapText with InfoWidth first.
func SideBySide(w io.Writer, art string, info []string) {
	artLines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	infoStart := artWidth(artLines) + gutter

	fmt.Fprintln(w)
	for i := 0; i < max(len(artLines), len(info)); i++ {
		fmt.Fprint(w, "  ")
		if i < len(artLines) {
			fmt.Fprint(w, artLines[i])
			fmt.Fprint(w, strings.Repeat(" ", infoStart-visibleWidth(artLines[i])))
		} else {
			fmt.Fprint(w, strings.Repeat(" ", infoStart))
		}
		if i < len(info) {
			fmt.Fprint(w, info[i])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

const gutter = 4

func artWidth(lines []string) int {
	width := 0
	for _, line := range lines {
		width = max(width, visibleWidth(line))
	}
	return width
}

// InfoWidth returns the space left for text next to art in a terminal of
// termWidth columns, never less than 20.
func InfoWidth(art string, termWidth int) int {
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	return max(termWidth-artWidth(lines)-gutter-4, 20)
}
