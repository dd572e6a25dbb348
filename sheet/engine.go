package sheet

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/buffalographics/fleet-spec-sheet/artboard"
	"github.com/buffalographics/fleet-spec-sheet/details"
	"github.com/buffalographics/fleet-spec-sheet/pdf/layout"
	"github.com/buffalographics/fleet-spec-sheet/pdf/text"
)

// Layout errors. They are reported before any primitive is produced.
var (
	ErrMissingProof    = errors.New("first page has no proof image")
	ErrThumbnailCount  = errors.New("thumbnail count does not match page items")
	ErrDegenerateImage = errors.New("image has no intrinsic size")
)

// DefaultHeaderText is the title drawn in the header bar.
const DefaultHeaderText = "BUFFALO GRAPHICS COMPANY"

// Labels drawn by the layout.
const (
	labelCustomer  = "CUSTOMER:"
	labelVehicle   = "VEHICLE:"
	labelUnit      = "VEHICLE UNIT #:"
	labelManifest  = "PRINT MANIFEST"
	labelSignoff   = "INSTALL SIGN-OFF"
	labelInstalled = "INSTALLED BY:"
	labelPhotos    = "PHOTOS TAKEN:"
	labelYesNo     = "YES   NO"
	labelDate      = "DATE:"
	labelIssues    = "ISSUES / DAMAGE NOTES:"
	labelThumbnail = "THUMBNAIL"
	labelName      = "NAME"
	labelFileName  = "FILE NAME"
	labelQty       = "QTY"
	labelDone      = "DONE"
)

// PageInput is the data a page is laid out from.
type PageInput struct {
	Details details.Details
	// Proof is required on the first page and ignored elsewhere.
	Proof *ImageRef
	// Thumbs holds one image per page item, in item order.
	Thumbs []ImageRef
}

// PageOutput is a laid out page.
type PageOutput struct {
	Page       Page
	Context    PageContext
	Primitives []Primitive
	// ContentBottom is the lowest y reached in the page-local frame. It can
	// exceed the content height when a tall proof pushes rows off the page.
	ContentBottom float64
}

// Overflows reports whether the page content runs past the bottom margin.
func (o PageOutput) Overflows(g Geometry) bool {
	return o.ContentBottom > g.ContentHeight()
}

// Engine lays out spec sheet pages.
type Engine struct {
	Geometry   Geometry
	HeaderText string
	// HeaderAlign places the title inside the header bar.
	HeaderAlign text.TextAlign
}

// NewEngine creates an engine with the default geometry and header.
func NewEngine() *Engine {
	return &Engine{Geometry: DefaultGeometry(), HeaderText: DefaultHeaderText}
}

// LayoutPage computes the primitives of one page in the page-local frame
// and maps them into the document through ctx.Transform.
func (e *Engine) LayoutPage(page Page, input PageInput, ctx PageContext) (PageOutput, error) {
	if err := e.check(page, input); err != nil {
		return PageOutput{}, fmt.Errorf("page %d: %w", page.Number, err)
	}

	b := &pageBuilder{
		g:     e.Geometry,
		w:     e.Geometry.ContentWidth(),
		upper: cases.Upper(language.Und),
	}

	header := e.HeaderText
	if header == "" {
		header = DefaultHeaderText
	}
	b.header(header, e.HeaderAlign)
	b.details(input.Details)
	if page.IsFirst {
		b.proof(*input.Proof)
	}
	b.manifest(page.Items, input.Thumbs)
	if page.IsLast {
		b.signoff()
	}

	out := PageOutput{
		Page:          page,
		Context:       ctx,
		Primitives:    make([]Primitive, len(b.prims)),
		ContentBottom: b.y,
	}
	for i, p := range b.prims {
		out.Primitives[i] = p.Apply(ctx.Transform)
	}
	return out, nil
}

func (e *Engine) check(page Page, input PageInput) error {
	if page.IsFirst {
		if input.Proof == nil {
			return ErrMissingProof
		}
		if !validSize(*input.Proof) {
			return fmt.Errorf("proof %q: %w", input.Proof.Key, ErrDegenerateImage)
		}
	}
	if len(input.Thumbs) != len(page.Items) {
		return fmt.Errorf("%w: %d thumbnails for %d items", ErrThumbnailCount, len(input.Thumbs), len(page.Items))
	}
	for i, ref := range input.Thumbs {
		if !validSize(ref) {
			return fmt.Errorf("thumbnail for %q: %w", page.Items[i].Name, ErrDegenerateImage)
		}
	}
	return nil
}

func validSize(ref ImageRef) bool {
	return ref.Width > 0 && ref.Height > 0
}

// LayoutAll lays out every page. Targets must already be planned, so pages
// are independent and up to workers of them run concurrently. Output keeps
// page order.
func (e *Engine) LayoutAll(pages []Page, inputs []PageInput, contexts []PageContext, workers int) ([]PageOutput, error) {
	if len(inputs) != len(pages) || len(contexts) != len(pages) {
		return nil, fmt.Errorf("layout: %d pages, %d inputs, %d contexts", len(pages), len(inputs), len(contexts))
	}
	if workers < 1 {
		workers = 1
	}

	outputs := make([]PageOutput, len(pages))
	errs := make([]error, len(pages))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range pages {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			outputs[i], errs[i] = e.LayoutPage(pages[i], inputs[i], contexts[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return outputs, nil
}

// pageBuilder accumulates primitives in the page-local frame while a
// cursor y walks down the content column.
type pageBuilder struct {
	g     Geometry
	w     float64
	y     float64
	upper cases.Caser
	prims []Primitive
}

func (b *pageBuilder) rect(x, y, w, h float64, fill bool) {
	b.prims = append(b.prims, RectPrim{Box: layout.NewRect(x, y, w, h), Fill: fill})
}

func (b *pageBuilder) line(x1, y1, x2, y2 float64) {
	b.prims = append(b.prims, LinePrim{From: layout.Point{X: x1, Y: y1}, To: layout.Point{X: x2, Y: y2}})
}

func (b *pageBuilder) styledText(x, y, w, h float64, s string, size float64, c text.Color, align text.TextAlign) {
	b.prims = append(b.prims, TextPrim{
		Box:     layout.NewRect(x, y, w, h),
		Content: s,
		Size:    size,
		Color:   c,
		Align:   align,
	})
}

func (b *pageBuilder) text(x, y, w, h float64, s string, size float64) {
	b.styledText(x, y, w, h, s, size, text.Black(), text.AlignLeft)
}

// cell writes a body-size label inside a column with the standard padding.
func (b *pageBuilder) cell(x, y, colW, h float64, s string) {
	pad := b.g.CellPadX
	b.text(x+pad, y, colW-2*pad, h, s, b.g.BodyTextSize)
}

// narrowCell is cell with the wider padding used by the quantity and
// yes/no columns.
func (b *pageBuilder) narrowCell(x, y, colW, h float64, s string) {
	pad := b.g.NarrowPadX
	b.text(x+pad, y, colW-2*pad, h, s, b.g.BodyTextSize)
}

func (b *pageBuilder) header(title string, align text.TextAlign) {
	g := b.g
	b.rect(0, b.y, b.w, g.HeaderHeight, true)
	b.styledText(g.HeaderInsetX, b.y+g.HeaderInsetY, b.w-2*g.HeaderInsetX, g.HeaderHeight,
		title, g.HeaderTextSize, text.White(), align)
	b.y += g.HeaderHeight + g.HeaderGap
}

func (b *pageBuilder) details(d details.Details) {
	g := b.g
	cols := g.DetailsColumns
	rowH := g.DetailsRowHeight()
	top := b.y
	row2 := top + rowH
	bottom := top + g.DetailsHeight

	b.rect(0, top, b.w, g.DetailsHeight, false)
	b.line(0, row2, b.w, row2)

	b.line(cols.Label, top, cols.Label, bottom)
	valueEnd := cols.Label + cols.Value
	unitStart := b.w - (cols.UnitLabel + cols.UnitBlank)
	b.line(valueEnd, row2, valueEnd, bottom)
	// With the standard columns both rules land on the same x.
	if !nearlyEqual(valueEnd, unitStart) {
		b.line(unitStart, row2, unitStart, bottom)
	}
	blankStart := b.w - cols.UnitBlank
	b.line(blankStart, row2, blankStart, bottom)

	ty := top + g.RowTextY
	b.cell(0, ty, cols.Label, rowH, labelCustomer)
	b.cell(cols.Label, ty, b.w-cols.Label, rowH, d.Customer)

	ty = row2 + g.RowTextY
	b.cell(0, ty, cols.Label, rowH, labelVehicle)
	b.cell(cols.Label, ty, cols.Value, rowH, d.Vehicle)
	b.cell(unitStart, ty, cols.UnitLabel, rowH, labelUnit)

	b.y = bottom + g.DetailsGap
}

func (b *pageBuilder) proof(ref ImageRef) {
	g := b.g
	scale, _ := layout.FitScale(float64(ref.Width), float64(ref.Height), g.ProofInnerWidth, g.ProofMaxHeight)
	pw := float64(ref.Width) * scale
	ph := float64(ref.Height) * scale

	b.prims = append(b.prims, ImagePrim{Ref: ref, Box: layout.NewRect((b.w-pw)/2, b.y, pw, ph)})
	// The border follows the placed proof, not a fixed height.
	b.rect(0, b.y, b.w, ph, false)

	b.y += ph + g.ProofGap
}

func (b *pageBuilder) columnRules(cols []float64, top, bottom float64) {
	x := 0.0
	for _, w := range cols[:len(cols)-1] {
		x += w
		b.line(x, top, x, bottom)
	}
}

func (b *pageBuilder) manifest(items []artboard.ClassifiedItem, thumbs []ImageRef) {
	g := b.g
	cols := g.ManifestColumns[:]

	b.text(0, b.y, b.w, g.TitleHeight, labelManifest, g.TitleTextSize)
	b.line(0, b.y+g.TitleUnderlineY, g.ManifestUnderline, b.y+g.TitleUnderlineY)
	b.y += g.ManifestTitleGap

	top := b.y
	b.rect(0, top, b.w, g.ManifestHeader, false)
	b.columnRules(cols, top, top+g.ManifestHeader)

	ty := top + g.HeaderTextY
	x := 0.0
	b.cell(x, ty, cols[ColThumb], g.ManifestHeader, labelThumbnail)
	x += cols[ColThumb]
	b.cell(x, ty, cols[ColName], g.ManifestHeader, labelName)
	x += cols[ColName]
	b.cell(x, ty, cols[ColFile], g.ManifestHeader, labelFileName)
	x += cols[ColFile]
	b.narrowCell(x, ty, cols[ColQty], g.ManifestHeader, labelQty)
	x += cols[ColQty]
	b.cell(x, ty, cols[ColDone], g.ManifestHeader, labelDone)

	b.y = top + g.ManifestHeader

	for i, item := range items {
		b.row(item, thumbs[i])
	}
}

func (b *pageBuilder) row(item artboard.ClassifiedItem, thumb ImageRef) {
	g := b.g
	cols := g.ManifestColumns[:]
	top := b.y

	b.rect(0, top, b.w, g.RowHeight, false)
	b.columnRules(cols, top, top+g.RowHeight)

	cell := layout.NewRect(0, top, cols[ColThumb], g.RowHeight)
	if box, ok := layout.FitInto(float64(thumb.Width), float64(thumb.Height), g.ThumbWidth, g.ThumbHeight, cell); ok {
		b.prims = append(b.prims, ImagePrim{Ref: thumb, Box: box})
	}

	ty := top + g.RowTextY
	x := cols[ColThumb]
	b.cell(x, ty, cols[ColName], g.RowHeight, b.upper.String(item.Name))
	x += cols[ColName]
	b.cell(x, ty, cols[ColFile], g.RowHeight, b.upper.String(item.File))
	x += cols[ColFile]
	b.narrowCell(x, ty, cols[ColQty], g.RowHeight, strconv.Itoa(item.Quantity))

	b.y += g.RowHeight
}

func (b *pageBuilder) signoff() {
	g := b.g
	cols := g.SignColumns[:]

	b.y += g.SignTitleGap
	b.text(0, b.y, b.w, g.TitleHeight, labelSignoff, g.TitleTextSize)
	b.line(0, b.y+g.TitleUnderlineY, g.SignUnderline, b.y+g.TitleUnderlineY)
	b.y += g.SignTitleSpace

	top := b.y
	row2 := top + g.SignRow1
	bottom := top + g.SignHeight()

	b.rect(0, top, b.w, g.SignHeight(), false)
	b.line(0, row2, b.w, row2)
	b.columnRules(cols, top, row2)
	b.line(cols[0], row2, cols[0], bottom)

	ty := top + g.SignTextY
	b.cell(0, ty, cols[0], g.SignRow1, labelInstalled)
	x := cols[0] + cols[1]
	b.cell(x, ty, cols[2], g.SignRow1, labelPhotos)
	x += cols[2]
	b.narrowCell(x, ty, cols[3], g.SignRow1, labelYesNo)
	x += cols[3]
	b.cell(x, ty, cols[4], g.SignRow1, labelDate)

	b.cell(0, row2+g.RowTextY, cols[0], g.SignRow2, labelIssues)

	b.y = bottom
}

func nearlyEqual(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}
