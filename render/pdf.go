package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/buffalographics/fleet-spec-sheet/pdf/content"
	"github.com/buffalographics/fleet-spec-sheet/pdf/fonts"
	"github.com/buffalographics/fleet-spec-sheet/pdf/generic"
	"github.com/buffalographics/fleet-spec-sheet/pdf/images"
	"github.com/buffalographics/fleet-spec-sheet/pdf/layout"
	"github.com/buffalographics/fleet-spec-sheet/pdf/text"
	"github.com/buffalographics/fleet-spec-sheet/pdf/writer"
	"github.com/buffalographics/fleet-spec-sheet/sheet"
)

// Oversample bounds embedded image resolution: pixels per point of the
// placed size.
const Oversample = 2.0

// PDF writes each page as one letter page of a PDF document. The file is
// written to Out on Close.
type PDF struct {
	Out      io.Writer
	Font     fonts.Font
	Images   ImageStore
	Geometry sheet.Geometry
	Title    string
	Subject  string
	Creator  string
	Now      func() time.Time
	Logger   *slog.Logger

	w       *writer.PdfFileWriter
	fontReg *fonts.FontRegistry
	fontRes string
	fontRef generic.Reference
	xobjs   map[string]xobject
	closed  bool
}

type xobject struct {
	name string
	ref  generic.Reference
}

// NewPDF creates a PDF renderer. A nil font uses standard Helvetica.
func NewPDF(out io.Writer, font fonts.Font, store ImageStore) *PDF {
	if font == nil {
		font = fonts.NewStandardFont(fonts.Helvetica)
	}
	return &PDF{
		Out:      out,
		Font:     font,
		Images:   store,
		Geometry: sheet.DefaultGeometry(),
		Title:    sheet.DefaultPageName,
		Now:      time.Now,
	}
}

func (p *PDF) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *PDF) init() error {
	if p.w != nil {
		return nil
	}
	p.w = writer.NewPdfFileWriter("1.7")
	p.w.Title = p.Title
	p.w.Subject = p.Subject
	p.w.Creator = p.Creator
	if p.Now != nil {
		p.w.Now = p.Now
	}
	ref, err := p.w.AddFont(p.Font)
	if err != nil {
		return fmt.Errorf("embed font %s: %w", p.Font.Name(), err)
	}
	p.fontReg = fonts.NewFontRegistry()
	p.fontRes = p.fontReg.Register(p.Font)
	p.fontRef = ref
	p.xobjs = make(map[string]xobject)
	return nil
}

// pageTransform maps document coordinates onto the bottom-up PDF page.
func (p *PDF) pageTransform(page sheet.PageContext) layout.Transform {
	pl := p.Geometry.PageLayout()
	area := pl.ContentArea()
	return layout.FlipY(pl.Size.Height).
		Multiply(layout.Translate(area.X, area.Y)).
		Multiply(page.Transform.Inverse())
}

// RenderPage implements Renderer.
func (p *PDF) RenderPage(ctx context.Context, page sheet.PageContext, prims []sheet.Primitive) error {
	if p.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.init(); err != nil {
		return err
	}

	m := p.pageTransform(page)
	res := writer.PageResources{
		Fonts:    map[string]generic.Reference{p.fontRes: p.fontRef},
		XObjects: make(map[string]generic.Reference),
	}

	cb := content.NewContentBuilder().
		SetLineWidth(StrokeWidth).
		SetStrokeGray(0)

	for _, prim := range prims {
		switch v := prim.(type) {
		case sheet.RectPrim:
			r := m.ApplyRect(v.Box)
			if v.Fill {
				cb.SetFillGray(0).Rectangle(r.X, r.Y, r.Width, r.Height).Fill()
			} else {
				cb.Rectangle(r.X, r.Y, r.Width, r.Height).Stroke()
			}
		case sheet.LinePrim:
			from, to := m.Apply(v.From), m.Apply(v.To)
			cb.MoveTo(from.X, from.Y).LineTo(to.X, to.Y).Stroke()
		case sheet.TextPrim:
			p.text(cb, m, v)
		case sheet.ImagePrim:
			xo, err := p.image(v)
			if err != nil {
				return err
			}
			res.XObjects[xo.name] = xo.ref
			r := m.ApplyRect(v.Box)
			cb.SaveState().
				Transform(r.Width, 0, 0, r.Height, r.X, r.Y).
				PaintXObject(xo.name).
				RestoreState()
		default:
			return fmt.Errorf("unsupported primitive %T", prim)
		}
	}

	mediaBox := generic.Rectangle{URX: p.Geometry.PageLayout().Size.Width, URY: p.Geometry.PageLayout().Size.Height}
	if _, err := p.w.AddPage(mediaBox, cb.Render(), res); err != nil {
		return fmt.Errorf("page %d: %w", page.Number, err)
	}
	p.logger().Debug("rendered page", "page", page.Number, "name", page.Name, "primitives", len(prims))
	return nil
}

// text draws a text primitive wrapped inside its box. Lines that would
// fall below the box are dropped, except the first.
func (p *PDF) text(cb *content.ContentBuilder, m layout.Transform, t sheet.TextPrim) {
	metrics := p.Font.Metrics()
	width := func(s string) float64 { return metrics.GetStringWidth(s, t.Size) }
	lines := text.Wrap(t.Content, t.Box.Width, width)

	top := m.Apply(layout.Point{X: t.Box.X, Y: t.Box.Y})
	ascent := metrics.GetAscent(t.Size)
	leading := metrics.GetLineHeight(t.Size) * LineSpacing
	if leading <= 0 {
		leading = t.Size * LineSpacing
	}

	cb.BeginText().
		SetFont(p.fontRes, t.Size).
		SetFillColor(t.Color.R, t.Color.G, t.Color.B)
	x0, y0 := 0.0, 0.0
	for i, line := range lines {
		if i > 0 && float64(i+1)*leading > t.Box.Height {
			break
		}
		x := top.X + t.Align.Offset(t.Box.Width, width(line))
		y := top.Y - ascent - float64(i)*leading
		cb.TextPosition(x-x0, y-y0).ShowText(p.Font.Encode(line))
		x0, y0 = x, y
	}
	cb.EndText()
}

// image embeds an image once per key, downscaled to Oversample times the
// size of its first placement.
func (p *PDF) image(prim sheet.ImagePrim) (xobject, error) {
	if xo, ok := p.xobjs[prim.Ref.Key]; ok {
		return xo, nil
	}

	src, err := lookup(p.Images, prim.Ref.Key)
	if err != nil {
		return xobject{}, err
	}
	maxW := int(math.Ceil(prim.Box.Width * Oversample))
	maxH := int(math.Ceil(prim.Box.Height * Oversample))
	img, err := images.Prepare(src.Data, maxW, maxH)
	if err != nil {
		return xobject{}, fmt.Errorf("prepare image %q: %w", prim.Ref.Key, err)
	}

	xo := xobject{
		name: fmt.Sprintf("Im%d", len(p.xobjs)+1),
		ref:  p.w.AddImage(img),
	}
	p.xobjs[prim.Ref.Key] = xo
	return xo, nil
}

// PageCount returns the number of pages rendered so far.
func (p *PDF) PageCount() int {
	if p.w == nil {
		return 0
	}
	return p.w.PageCount()
}

// Close writes the document to Out.
func (p *PDF) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.w == nil {
		return fmt.Errorf("pdf: no pages rendered")
	}
	if err := p.w.Write(p.Out); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
