// Package sheet paginates classified print items and lays out spec sheet
// pages as a stream of draw primitives.
package sheet

import (
	"fmt"
	"math"

	"github.com/buffalographics/fleet-spec-sheet/pdf/layout"
)

// Geometry holds the fixed page geometry of a spec sheet, in points.
type Geometry struct {
	Page   layout.PageSize
	Margin float64

	HeaderHeight float64
	HeaderGap    float64
	HeaderInsetX float64
	HeaderInsetY float64

	DetailsHeight float64
	// The planner and the layout use different gaps below the details
	// table. Both are kept so that pagination stays compatible.
	DetailsGapPlanned float64
	DetailsGap        float64
	DetailsColumns    DetailsColumns

	ProofInnerWidth float64
	ProofMaxHeight  float64
	ProofReserve    float64
	ProofGap        float64

	TitleHeight       float64
	TitleUnderlineY   float64
	ManifestUnderline float64
	ManifestTitleGap  float64
	ManifestHeader    float64
	RowHeight         float64
	ManifestColumns   [5]float64
	ThumbWidth        float64
	ThumbHeight       float64

	SignTitleGap   float64
	SignTitleSpace float64
	SignUnderline  float64
	SignRow1       float64
	SignRow2       float64
	SignReservePad float64
	SignColumns    [6]float64

	CellPadX       float64
	NarrowPadX     float64
	HeaderTextY    float64
	RowTextY       float64
	SignTextY      float64
	HeaderTextSize float64
	TitleTextSize  float64
	BodyTextSize   float64
}

// DetailsColumns are the column widths of the details table: label,
// vehicle value, unit label and the blank unit cell. The customer value
// spans everything after the first label.
type DetailsColumns struct {
	Label, Value, UnitLabel, UnitBlank float64
}

// Manifest column indexes.
const (
	ColThumb = iota
	ColName
	ColFile
	ColQty
	ColDone
)

func in(v float64) float64 { return layout.Inches(v) }

// DefaultGeometry returns the spec sheet geometry: US Letter with half-inch
// margins and a 7.5 inch content column.
func DefaultGeometry() Geometry {
	return Geometry{
		Page:   layout.Letter,
		Margin: in(0.5),

		HeaderHeight: in(0.45),
		HeaderGap:    in(0.12),
		HeaderInsetX: in(0.18),
		HeaderInsetY: in(0.12),

		DetailsHeight:     in(0.6),
		DetailsGapPlanned: in(0.14),
		DetailsGap:        in(0.18),
		DetailsColumns:    DetailsColumns{in(1.2), in(4.4), in(1.3), in(0.6)},

		ProofInnerWidth: in(7.2),
		ProofMaxHeight:  in(1000),
		ProofReserve:    in(3.2),
		ProofGap:        in(0.18),

		TitleHeight:       in(0.25),
		TitleUnderlineY:   in(0.2),
		ManifestUnderline: in(1.7),
		ManifestTitleGap:  in(0.12),
		ManifestHeader:    in(0.32),
		RowHeight:         in(0.85),
		ManifestColumns:   [5]float64{in(1.4), in(1.9), in(2.6), in(0.7), in(0.9)},
		ThumbWidth:        in(0.95),
		ThumbHeight:       in(0.7),

		SignTitleGap:   in(0.2),
		SignTitleSpace: in(0.28),
		SignUnderline:  in(1.75),
		SignRow1:       in(0.35),
		SignRow2:       in(1.2),
		SignReservePad: in(0.1),
		SignColumns:    [6]float64{in(1.3), in(2.2), in(1.1), in(0.9), in(0.7), in(1.3)},

		CellPadX:       in(0.08),
		NarrowPadX:     in(0.1),
		HeaderTextY:    in(0.12),
		RowTextY:       in(0.14),
		SignTextY:      in(0.11),
		HeaderTextSize: 14,
		TitleTextSize:  11,
		BodyTextSize:   9,
	}
}

// PageLayout returns the page with its margins.
func (g Geometry) PageLayout() layout.PageLayout {
	return layout.NewPageLayout(g.Page, layout.UniformMargins(g.Margin))
}

// ContentWidth is the page width minus both side margins.
func (g Geometry) ContentWidth() float64 {
	return g.Page.Width - 2*g.Margin
}

// ContentHeight is the page height minus top and bottom margins.
func (g Geometry) ContentHeight() float64 {
	return g.Page.Height - 2*g.Margin
}

// DetailsRowHeight is the height of one details table row.
func (g Geometry) DetailsRowHeight() float64 {
	return g.DetailsHeight / 2
}

// SignHeight is the height of the sign-off table.
func (g Geometry) SignHeight() float64 {
	return g.SignRow1 + g.SignRow2
}

const sumTolerance = 1e-9

// Validate checks that every table spans exactly the content width.
func (g Geometry) Validate() error {
	w := g.ContentWidth()
	if w <= 0 {
		return fmt.Errorf("content width %.2f is not positive", w)
	}

	d := g.DetailsColumns
	checks := []struct {
		name string
		sum  float64
	}{
		{"details", d.Label + d.Value + d.UnitLabel + d.UnitBlank},
		{"manifest", sum(g.ManifestColumns[:])},
		{"sign-off", sum(g.SignColumns[:])},
	}
	for _, c := range checks {
		if math.Abs(c.sum-w) > sumTolerance*w {
			return fmt.Errorf("%s columns sum to %.4f, want content width %.4f", c.name, c.sum, w)
		}
	}
	if g.ProofInnerWidth > w {
		return fmt.Errorf("proof inner width %.2f exceeds content width %.2f", g.ProofInnerWidth, w)
	}
	return nil
}

func sum(vs []float64) float64 {
	total := 0.0
	for _, v := range vs {
		total += v
	}
	return total
}
