// Package text provides the text styling model and line wrapping used by
// the renderers.
package text

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAlign is returned for an alignment name ParseTextAlign does
// not know.
var ErrUnknownAlign = errors.New("unknown text alignment")

// TextAlign represents horizontal text alignment.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// String returns the string representation.
func (a TextAlign) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseTextAlign parses "left", "center" (or "centre") and "right".
func ParseTextAlign(s string) (TextAlign, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("%w: %q", ErrUnknownAlign, s)
}

// Offset returns the x offset of a line of the given width inside a box.
func (a TextAlign) Offset(boxWidth, lineWidth float64) float64 {
	switch a {
	case AlignCenter:
		return (boxWidth - lineWidth) / 2
	case AlignRight:
		return boxWidth - lineWidth
	default:
		return 0
	}
}

// Color represents an RGB color.
type Color struct {
	R, G, B float64 // 0.0 to 1.0
}

// Black returns black color.
func Black() Color {
	return Color{0, 0, 0}
}

// White returns white color.
func White() Color {
	return Color{1, 1, 1}
}

// RGB creates a color from RGB values (0-255).
func RGB(r, g, b int) Color {
	return Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
}

// RGBA8 returns the color as 8-bit channels.
func (c Color) RGBA8() (r, g, b uint8) {
	return to8(c.R), to8(c.G), to8(c.B)
}

func to8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// WidthFunc measures a string at the current font size.
type WidthFunc func(s string) float64

// Wrap breaks s into lines no wider than maxWidth. A string that already
// fits is returned unchanged, internal spacing included. Words wider than
// maxWidth are split between runes.
func Wrap(s string, maxWidth float64, width WidthFunc) []string {
	if s == "" {
		return nil
	}
	if width(s) <= maxWidth {
		return []string{s}
	}

	var lines []string
	current := ""

	for _, word := range strings.Fields(s) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}

		if width(candidate) <= maxWidth {
			current = candidate
			continue
		}

		if current != "" {
			lines = append(lines, current)
			current = ""
		}

		if width(word) <= maxWidth {
			current = word
			continue
		}

		parts := splitWord(word, maxWidth, width)
		lines = append(lines, parts[:len(parts)-1]...)
		current = parts[len(parts)-1]
	}

	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func splitWord(word string, maxWidth float64, width WidthFunc) []string {
	var parts []string
	var b strings.Builder

	for _, r := range word {
		if b.Len() > 0 && width(b.String()+string(r)) > maxWidth {
			parts = append(parts, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	return append(parts, b.String())
}
