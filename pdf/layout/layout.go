// Package layout provides page geometry and positioning utilities.
//
// Rectangles in this package use a top-down frame: Y is the top edge and
// grows downward, matching how the sheet is stacked block by block.
package layout

import (
	"fmt"
	"math"
)

// Unit represents a measurement unit.
type Unit float64

// In is one inch in points.
const In Unit = 72

// Inches converts inches to points.
func Inches(value float64) float64 {
	return value * float64(In)
}

// PageSize represents page dimensions in points.
type PageSize struct {
	Width  float64
	Height float64
}

// Letter is US Letter, 8.5x11 inches.
var Letter = PageSize{612, 792}

// Point represents a 2D point.
type Point struct {
	X, Y float64
}

// Add returns p + other.
func (p Point) Add(other Point) Point {
	return Point{p.X + other.X, p.Y + other.Y}
}

// Rect is an axis-aligned box with its origin at the top-left corner.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// NewRect creates a new rectangle.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Right returns the right edge.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Center returns the center point.
func (r Rect) Center() Point {
	return Point{r.X + r.Width/2, r.Y + r.Height/2}
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{r.X + dx, r.Y + dy, r.Width, r.Height}
}

// Inset shrinks the rectangle by the given amounts.
func (r Rect) Inset(top, right, bottom, left float64) Rect {
	return Rect{
		X:      r.X + left,
		Y:      r.Y + top,
		Width:  r.Width - left - right,
		Height: r.Height - top - bottom,
	}
}

// Union returns the smallest rectangle containing both.
func (r Rect) Union(other Rect) Rect {
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.Right(), other.Right())
	maxY := math.Max(r.Bottom(), other.Bottom())
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", r.X, r.Y, r.Width, r.Height)
}

// Margins represents page margins.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// UniformMargins creates margins with the same value on all sides.
func UniformMargins(value float64) Margins {
	return Margins{value, value, value, value}
}

// Apply shrinks r by the margins.
func (m Margins) Apply(r Rect) Rect {
	return r.Inset(m.Top, m.Right, m.Bottom, m.Left)
}

// PageLayout represents a page with margins.
type PageLayout struct {
	Size    PageSize
	Margins Margins
}

// NewPageLayout creates a new page layout.
func NewPageLayout(size PageSize, margins Margins) PageLayout {
	return PageLayout{Size: size, Margins: margins}
}

// Bounds returns the full page rectangle.
func (p PageLayout) Bounds() Rect {
	return Rect{0, 0, p.Size.Width, p.Size.Height}
}

// ContentArea returns the content area rectangle.
func (p PageLayout) ContentArea() Rect {
	return p.Margins.Apply(p.Bounds())
}

// Transform represents a 2D affine transformation matrix.
type Transform struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{1, 0, 0, 1, 0, 0}
}

// Translate creates a translation transform.
func Translate(dx, dy float64) Transform {
	return Transform{1, 0, 0, 1, dx, dy}
}

// FlipY maps a top-down frame of the given height onto a bottom-up one.
func FlipY(height float64) Transform {
	return Transform{1, 0, 0, -1, 0, height}
}

// Multiply returns the transform that applies other first, then t.
func (t Transform) Multiply(other Transform) Transform {
	return Transform{
		A: t.A*other.A + t.C*other.B,
		B: t.B*other.A + t.D*other.B,
		C: t.A*other.C + t.C*other.D,
		D: t.B*other.C + t.D*other.D,
		E: t.A*other.E + t.C*other.F + t.E,
		F: t.B*other.E + t.D*other.F + t.F,
	}
}

// Apply applies the transform to a point.
func (t Transform) Apply(p Point) Point {
	return Point{
		X: t.A*p.X + t.C*p.Y + t.E,
		Y: t.B*p.X + t.D*p.Y + t.F,
	}
}

// ApplyRect applies the transform to a rectangle and returns the bounding box.
func (t Transform) ApplyRect(r Rect) Rect {
	corners := [4]Point{
		{r.X, r.Y},
		{r.Right(), r.Y},
		{r.X, r.Bottom()},
		{r.Right(), r.Bottom()},
	}

	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64

	for _, corner := range corners {
		p := t.Apply(corner)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Inverse returns the inverse transform.
func (t Transform) Inverse() Transform {
	det := t.A*t.D - t.B*t.C
	if det == 0 {
		return Identity()
	}

	return Transform{
		A: t.D / det,
		B: -t.B / det,
		C: -t.C / det,
		D: t.A / det,
		E: (t.C*t.F - t.D*t.E) / det,
		F: (t.B*t.E - t.A*t.F) / det,
	}
}

// FitScale returns the largest uniform scale that fits an item of the
// given intrinsic size inside a box. ok is false for degenerate sizes.
func FitScale(intrinsicW, intrinsicH, boxW, boxH float64) (scale float64, ok bool) {
	if intrinsicW <= 0 || intrinsicH <= 0 {
		return 0, false
	}
	return math.Min(boxW/intrinsicW, boxH/intrinsicH), true
}

// Center returns the top-left corner that centers an item of the given
// size on the cell.
func Center(width, height float64, cell Rect) Point {
	c := cell.Center()
	return Point{c.X - width/2, c.Y - height/2}
}

// FitInto scales an item into a box no larger than maxW x maxH and centers
// it on cell.
func FitInto(intrinsicW, intrinsicH, maxW, maxH float64, cell Rect) (Rect, bool) {
	scale, ok := FitScale(intrinsicW, intrinsicH, maxW, maxH)
	if !ok {
		return Rect{}, false
	}
	w, h := intrinsicW*scale, intrinsicH*scale
	origin := Center(w, h, cell)
	return Rect{origin.X, origin.Y, w, h}, true
}
