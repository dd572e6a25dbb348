// Package fonts provides the fonts used to draw spec sheet text: the
// standard Helvetica fallback and TrueType fonts loaded from disk.
package fonts

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/encoding/charmap"
)

// Common errors
var (
	ErrInvalidFont       = errors.New("invalid font data")
	ErrFontUnavailable   = errors.New("font unavailable")
	ErrUnsupportedFormat = errors.New("unsupported font format")
)

// FontType represents the type of a PDF font.
type FontType string

const (
	FontTypeType1    FontType = "Type1"
	FontTypeTrueType FontType = "TrueType"
)

// StandardFont represents a PDF standard font name.
type StandardFont string

// Standard fonts used by the sheet.
const (
	Helvetica     StandardFont = "Helvetica"
	HelveticaBold StandardFont = "Helvetica-Bold"
)

// FontMetrics holds font metrics in glyph space (UnitsPerEm per em).
type FontMetrics struct {
	Ascender   float64
	Descender  float64
	UnitsPerEm float64
	// Widths by rune; runes outside the table use DefaultWidth.
	Widths       map[rune]float64
	DefaultWidth float64
	// Font bounding box [xMin, yMin, xMax, yMax]
	BBox        [4]float64
	ItalicAngle float64
	CapHeight   float64
	StemV       float64
}

// NewFontMetrics creates new font metrics with defaults.
func NewFontMetrics() *FontMetrics {
	return &FontMetrics{
		Ascender:     800,
		Descender:    -200,
		UnitsPerEm:   1000,
		Widths:       make(map[rune]float64),
		DefaultWidth: 600,
		BBox:         [4]float64{0, -200, 1000, 800},
		CapHeight:    700,
		StemV:        80,
	}
}

// GetWidth returns the width of a character.
func (m *FontMetrics) GetWidth(r rune) float64 {
	if w, ok := m.Widths[r]; ok {
		return w
	}
	return m.DefaultWidth
}

// GetStringWidth calculates the width of a string at a given font size.
func (m *FontMetrics) GetStringWidth(s string, fontSize float64) float64 {
	var width float64
	for _, r := range s {
		width += m.GetWidth(r)
	}
	return width * fontSize / m.UnitsPerEm
}

// GetAscent returns the ascent at a given font size.
func (m *FontMetrics) GetAscent(fontSize float64) float64 {
	return m.Ascender * fontSize / m.UnitsPerEm
}

// GetLineHeight returns the line height at a given font size.
func (m *FontMetrics) GetLineHeight(fontSize float64) float64 {
	return (m.Ascender - m.Descender) * fontSize / m.UnitsPerEm
}

// Font represents a font that can be used in PDF documents.
type Font interface {
	// Name returns the PostScript font name.
	Name() string
	// Type returns the font type.
	Type() FontType
	// Metrics returns the font metrics.
	Metrics() *FontMetrics
	// Encode encodes a string for use in a PDF content stream.
	Encode(s string) []byte
}

// StandardType1Font represents a standard Type 1 font.
type StandardType1Font struct {
	name    StandardFont
	metrics *FontMetrics
}

// NewStandardFont creates a new standard font.
func NewStandardFont(name StandardFont) *StandardType1Font {
	return &StandardType1Font{name: name, metrics: helveticaMetrics()}
}

// Name returns the font name.
func (f *StandardType1Font) Name() string {
	return string(f.name)
}

// Type returns the font type.
func (f *StandardType1Font) Type() FontType {
	return FontTypeType1
}

// Metrics returns the font metrics.
func (f *StandardType1Font) Metrics() *FontMetrics {
	return f.metrics
}

// Encode encodes a string in WinAnsiEncoding.
func (f *StandardType1Font) Encode(s string) []byte {
	return EncodeWinAnsi(s)
}

// helveticaWidths holds the Helvetica advance widths of ASCII 32 to 126.
var helveticaWidths = [...]float64{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278, // space to /
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, // digits
	278, 278, 584, 584, 584, 556, 1015, // : to @
	667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, // A to M
	722, 778, 667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, // N to Z
	278, 278, 278, 469, 556, 333, // [ to `
	556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, // a to m
	556, 556, 556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, // n to z
	334, 260, 334, 584, // { to ~
}

func helveticaMetrics() *FontMetrics {
	m := NewFontMetrics()
	m.Ascender = 718
	m.Descender = -207
	m.BBox = [4]float64{-166, -225, 1000, 931}
	m.CapHeight = 718
	m.StemV = 88
	m.DefaultWidth = 556
	for i, w := range helveticaWidths {
		m.Widths[rune(32+i)] = w
	}
	return m
}

// EncodeWinAnsi encodes a string in Windows-1252. Characters outside the
// code page become '?'.
func EncodeWinAnsi(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, b)
		} else {
			out = append(out, '?')
		}
	}
	return out
}

// WinAnsiFirstChar and WinAnsiLastChar bound the character codes a simple
// font is declared with.
const (
	WinAnsiFirstChar = 32
	WinAnsiLastChar  = 255
)

// TrueTypeFont is a TrueType or OpenType font read from disk.
type TrueTypeFont struct {
	name    string
	family  string
	data    []byte
	metrics *FontMetrics
	cff     bool
}

// LoadTrueTypeFont parses font data and collects the metrics of its
// WinAnsi glyphs, scaled to 1000 units per em.
func LoadTrueTypeFont(data []byte) (*TrueTypeFont, error) {
	if len(data) < 12 {
		return nil, ErrInvalidFont
	}
	sig := string(data[0:4])
	if sig != "\x00\x01\x00\x00" && sig != "true" && sig != "OTTO" {
		return nil, ErrUnsupportedFormat
	}

	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFont, err)
	}

	var buf sfnt.Buffer
	ps, err := f.Name(&buf, sfnt.NameIDPostScript)
	if err != nil || ps == "" {
		ps, err = f.Name(&buf, sfnt.NameIDFull)
		if err != nil {
			return nil, fmt.Errorf("%w: no font name: %v", ErrInvalidFont, err)
		}
		ps = strings.ReplaceAll(ps, " ", "")
	}
	family, _ := f.Name(&buf, sfnt.NameIDFamily)

	upem := float64(f.UnitsPerEm())
	ppem := fixed.I(int(f.UnitsPerEm()))
	scale := func(v fixed.Int26_6) float64 {
		return float64(v) / 64 * 1000 / upem
	}

	m := NewFontMetrics()
	fm, err := f.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFont, err)
	}
	m.Ascender = scale(fm.Ascent)
	m.Descender = -scale(fm.Descent)
	m.CapHeight = scale(fm.CapHeight)
	if m.CapHeight == 0 {
		m.CapHeight = m.Ascender
	}

	if b, err := f.Bounds(&buf, ppem, font.HintingNone); err == nil {
		// sfnt bounds are y-down
		m.BBox = [4]float64{scale(b.Min.X), -scale(b.Max.Y), scale(b.Max.X), -scale(b.Min.Y)}
	}

	for code := WinAnsiFirstChar; code <= WinAnsiLastChar; code++ {
		r := charmap.Windows1252.DecodeByte(byte(code))
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			continue
		}
		adv, err := f.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			continue
		}
		m.Widths[r] = scale(adv)
	}
	if w, ok := m.Widths[' ']; ok {
		m.DefaultWidth = w
	}

	return &TrueTypeFont{
		name:    ps,
		family:  family,
		data:    data,
		metrics: m,
		cff:     sig == "OTTO",
	}, nil
}

// Name returns the PostScript name.
func (f *TrueTypeFont) Name() string {
	return f.name
}

// Family returns the family name, if the font has one.
func (f *TrueTypeFont) Family() string {
	return f.family
}

// Type returns the font type.
func (f *TrueTypeFont) Type() FontType {
	return FontTypeTrueType
}

// Metrics returns the font metrics.
func (f *TrueTypeFont) Metrics() *FontMetrics {
	return f.metrics
}

// Encode encodes a string in WinAnsiEncoding.
func (f *TrueTypeFont) Encode(s string) []byte {
	return EncodeWinAnsi(s)
}

// Data returns the raw font file.
func (f *TrueTypeFont) Data() []byte {
	return f.data
}

// IsCFF reports whether the font has PostScript (CFF) outlines.
func (f *TrueTypeFont) IsCFF() bool {
	return f.cff
}

// CharWidths returns the widths of character codes WinAnsiFirstChar to
// WinAnsiLastChar, in 1000 units per em.
func (f *TrueTypeFont) CharWidths() []float64 {
	widths := make([]float64, 0, WinAnsiLastChar-WinAnsiFirstChar+1)
	for code := WinAnsiFirstChar; code <= WinAnsiLastChar; code++ {
		r := charmap.Windows1252.DecodeByte(byte(code))
		widths = append(widths, f.metrics.GetWidth(r))
	}
	return widths
}

// FontRegistry assigns PDF resource names to fonts.
type FontRegistry struct {
	fonts    []Font
	fontRefs map[string]string // font name -> PDF resource name
}

// NewFontRegistry creates a new font registry.
func NewFontRegistry() *FontRegistry {
	return &FontRegistry{fontRefs: make(map[string]string)}
}

// Register registers a font and returns its PDF resource name.
func (r *FontRegistry) Register(font Font) string {
	name := font.Name()
	if ref, ok := r.fontRefs[name]; ok {
		return ref
	}

	ref := fmt.Sprintf("F%d", len(r.fonts)+1)
	r.fonts = append(r.fonts, font)
	r.fontRefs[name] = ref
	return ref
}

// Fonts returns the registered fonts in registration order.
func (r *FontRegistry) Fonts() []Font {
	return r.fonts
}

// Ref returns the resource name of a registered font.
func (r *FontRegistry) Ref(font Font) string {
	return r.fontRefs[font.Name()]
}
