package export

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// ptToMM converts a font size in points to millimetres.
const ptToMM = 25.4 / 72

// Wrap splits s into lines no wider than width millimetres at the given
// font size. A full-width rune is counted as one em and a half-width rune
// as half an em. Explicit newlines are kept.
func Wrap(s string, width, size float64) []string {
	if s == "" {
		return nil
	}
	cells := int(width / (size * ptToMM / 2))
	if cells < 2 {
		cells = 2
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		out = append(out, wrapLine(para, cells)...)
	}
	return out
}

func wrapLine(s string, cells int) []string {
	if s == "" {
		return []string{""}
	}
	var (
		out   []string
		b     strings.Builder
		w     int
		space = -1 // byte offset in b after the last space
	)
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > cells && b.Len() > 0 {
			line := b.String()
			rest := ""
			if space > 0 && space < len(line) {
				line, rest = line[:space], line[space:]
			}
			out = append(out, strings.TrimRight(line, " "))
			b.Reset()
			b.WriteString(rest)
			w = runewidth.StringWidth(rest)
			space = -1
		}
		b.WriteRune(r)
		w += rw
		if r == ' ' {
			space = b.Len()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
