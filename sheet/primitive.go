package sheet

import (
	"fmt"
	"io"

	"github.com/buffalographics/fleet-spec-sheet/pdf/layout"
	"github.com/buffalographics/fleet-spec-sheet/pdf/text"
)

// Kind identifies a primitive variant.
type Kind int

const (
	KindRect Kind = iota
	KindLine
	KindText
	KindImage
)

// String returns the string representation.
func (k Kind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindLine:
		return "line"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Primitive is a single draw instruction. The set of variants is closed:
// RectPrim, LinePrim, TextPrim and ImagePrim.
type Primitive interface {
	Kind() Kind
	// Apply returns a copy of the primitive mapped through t.
	Apply(t layout.Transform) Primitive
	// Encode writes a canonical one-line form used for digests.
	Encode(w io.Writer)
}

// RectPrim is a filled or stroked rectangle.
type RectPrim struct {
	Box  layout.Rect
	Fill bool
}

// LinePrim is a stroked straight line.
type LinePrim struct {
	From, To layout.Point
}

// TextPrim is a block of text laid out inside Box.
type TextPrim struct {
	Box     layout.Rect
	Content string
	Size    float64
	Color   text.Color
	Align   text.TextAlign
}

// ImageRef is an opaque handle to a rasterized artboard with its intrinsic
// pixel size.
type ImageRef struct {
	Key    string
	Width  int
	Height int
}

// ImagePrim places an image scaled to fill Box.
type ImagePrim struct {
	Ref ImageRef
	Box layout.Rect
}

func (RectPrim) Kind() Kind  { return KindRect }
func (LinePrim) Kind() Kind  { return KindLine }
func (TextPrim) Kind() Kind  { return KindText }
func (ImagePrim) Kind() Kind { return KindImage }

func (p RectPrim) Apply(t layout.Transform) Primitive {
	p.Box = t.ApplyRect(p.Box)
	return p
}

func (p LinePrim) Apply(t layout.Transform) Primitive {
	p.From = t.Apply(p.From)
	p.To = t.Apply(p.To)
	return p
}

func (p TextPrim) Apply(t layout.Transform) Primitive {
	p.Box = t.ApplyRect(p.Box)
	return p
}

func (p ImagePrim) Apply(t layout.Transform) Primitive {
	p.Box = t.ApplyRect(p.Box)
	return p
}

func (p RectPrim) Encode(w io.Writer) {
	mode := "stroke"
	if p.Fill {
		mode = "fill"
	}
	fmt.Fprintf(w, "rect %s %s\n", encodeRect(p.Box), mode)
}

func (p LinePrim) Encode(w io.Writer) {
	fmt.Fprintf(w, "line %.4f %.4f %.4f %.4f\n", p.From.X, p.From.Y, p.To.X, p.To.Y)
}

func (p TextPrim) Encode(w io.Writer) {
	fmt.Fprintf(w, "text %s %.2f %.3f %.3f %.3f %s %q\n",
		encodeRect(p.Box), p.Size, p.Color.R, p.Color.G, p.Color.B, p.Align, p.Content)
}

func (p ImagePrim) Encode(w io.Writer) {
	fmt.Fprintf(w, "image %s %q %d %d\n", encodeRect(p.Box), p.Ref.Key, p.Ref.Width, p.Ref.Height)
}

func encodeRect(r layout.Rect) string {
	return fmt.Sprintf("%.4f %.4f %.4f %.4f", r.X, r.Y, r.Width, r.Height)
}

// Count returns how many primitives of each kind are in prims.
func Count(prims []Primitive) map[Kind]int {
	counts := make(map[Kind]int)
	for _, p := range prims {
		counts[p.Kind()]++
	}
	return counts
}
