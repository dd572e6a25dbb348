package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/buffalographics/fleet-spec-sheet/pdf/images"
	"github.com/buffalographics/fleet-spec-sheet/pdf/layout"
	"github.com/buffalographics/fleet-spec-sheet/sheet"
)

// DefaultPreviewScale is the preview resolution in pixels per point.
const DefaultPreviewScale = 0.5

var (
	canvasColor = color.RGBA{0xE0, 0xE0, 0xE0, 0xFF}
	boardColor  = color.RGBA{0x80, 0x80, 0x80, 0xFF}
	pageColor   = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	inkColor    = color.RGBA{0x00, 0x00, 0x00, 0xFF}
)

// Preview draws the whole document, source boards outlined and spec pages
// filled in, as one PNG written to Out on Close.
type Preview struct {
	Out    io.Writer
	Images ImageStore
	// Boards are the source document's artboards.
	Boards []layout.Rect
	Scale  float64

	pages   []RecordedPage
	decoded map[string]image.Image
	closed  bool
}

// NewPreview creates a preview renderer.
func NewPreview(out io.Writer, store ImageStore, boards []layout.Rect) *Preview {
	return &Preview{Out: out, Images: store, Boards: boards, Scale: DefaultPreviewScale}
}

// RenderPage implements Renderer.
func (p *Preview) RenderPage(ctx context.Context, page sheet.PageContext, prims []sheet.Primitive) error {
	if p.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p.pages = append(p.pages, RecordedPage{Context: page, Primitives: append([]sheet.Primitive(nil), prims...)})
	return nil
}

// Close draws and encodes the preview.
func (p *Preview) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	img, err := p.Draw()
	if err != nil {
		return err
	}
	if err := png.Encode(p.Out, img); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

// canvas maps document points to preview pixels.
type canvas struct {
	dst    *image.RGBA
	origin layout.Point
	scale  float64
}

func (c *canvas) pt(p layout.Point) (int, int) {
	return int(math.Round((p.X - c.origin.X) * c.scale)), int(math.Round((p.Y - c.origin.Y) * c.scale))
}

func (c *canvas) rect(r layout.Rect) image.Rectangle {
	x0, y0 := c.pt(layout.Point{X: r.X, Y: r.Y})
	x1, y1 := c.pt(layout.Point{X: r.Right(), Y: r.Bottom()})
	return image.Rect(x0, y0, x1, y1)
}

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	xdraw.Draw(c.dst, r, image.NewUniform(col), image.Point{}, xdraw.Src)
}

func (c *canvas) outline(r image.Rectangle, col color.Color) {
	c.fill(image.Rect(r.Min.X, r.Min.Y, r.Max.X+1, r.Min.Y+1), col)
	c.fill(image.Rect(r.Min.X, r.Max.Y, r.Max.X+1, r.Max.Y+1), col)
	c.fill(image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y+1), col)
	c.fill(image.Rect(r.Max.X, r.Min.Y, r.Max.X+1, r.Max.Y+1), col)
}

func (c *canvas) line(from, to layout.Point, col color.Color) {
	x0, y0 := c.pt(from)
	x1, y1 := c.pt(to)
	steps := max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		c.dst.Set(x0, y0, col)
		return
	}
	for i := 0; i <= steps; i++ {
		x := x0 + (x1-x0)*i/steps
		y := y0 + (y1-y0)*i/steps
		c.dst.Set(x, y, col)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Draw renders the preview image.
func (p *Preview) Draw() (*image.RGBA, error) {
	var bounds layout.Rect
	first := true
	extend := func(r layout.Rect) {
		if first {
			bounds, first = r, false
			return
		}
		bounds = bounds.Union(r)
	}
	for _, b := range p.Boards {
		extend(b)
	}
	for _, pg := range p.pages {
		extend(pg.Context.Target)
	}
	if first {
		return nil, fmt.Errorf("preview: nothing to draw")
	}

	scale := p.Scale
	if scale <= 0 {
		scale = DefaultPreviewScale
	}
	pad := layout.Inches(0.25)
	bounds = bounds.Inset(-pad, -pad, -pad, -pad)

	c := &canvas{
		dst:    image.NewRGBA(image.Rect(0, 0, int(math.Ceil(bounds.Width*scale))+1, int(math.Ceil(bounds.Height*scale))+1)),
		origin: layout.Point{X: bounds.X, Y: bounds.Y},
		scale:  scale,
	}
	c.fill(c.dst.Bounds(), canvasColor)

	for _, b := range p.Boards {
		r := c.rect(b)
		c.fill(r, pageColor)
		c.outline(r, boardColor)
	}
	for _, pg := range p.pages {
		c.fill(c.rect(pg.Context.Target), pageColor)
		for _, prim := range pg.Primitives {
			if err := p.drawPrimitive(c, prim); err != nil {
				return nil, err
			}
		}
	}
	return c.dst, nil
}

func (p *Preview) drawPrimitive(c *canvas, prim sheet.Primitive) error {
	switch v := prim.(type) {
	case sheet.RectPrim:
		if v.Fill {
			c.fill(c.rect(v.Box), inkColor)
		} else {
			c.outline(c.rect(v.Box), inkColor)
		}
	case sheet.LinePrim:
		c.line(v.From, v.To, inkColor)
	case sheet.TextPrim:
		box := c.rect(v.Box)
		dst, ok := c.dst.SubImage(box).(*image.RGBA)
		if !ok || dst.Bounds().Empty() {
			return nil
		}
		r, g, b := v.Color.RGBA8()
		face := basicfont.Face7x13
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(color.RGBA{r, g, b, 0xFF}),
			Face: face,
			Dot:  fixed.P(box.Min.X, box.Min.Y+face.Metrics().Ascent.Ceil()),
		}
		d.DrawString(v.Content)
	case sheet.ImagePrim:
		src, err := p.decode(v.Ref.Key)
		if err != nil {
			return err
		}
		xdraw.ApproxBiLinear.Scale(c.dst, c.rect(v.Box), src, src.Bounds(), xdraw.Over, nil)
	default:
		return fmt.Errorf("unsupported primitive %T", prim)
	}
	return nil
}

func (p *Preview) decode(key string) (image.Image, error) {
	if img, ok := p.decoded[key]; ok {
		return img, nil
	}
	src, err := lookup(p.Images, key)
	if err != nil {
		return nil, err
	}
	img, err := images.Decode(src.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", key, err)
	}
	if p.decoded == nil {
		p.decoded = make(map[string]image.Image)
	}
	p.decoded[key] = img
	return img, nil
}
