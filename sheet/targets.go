package sheet

import (
	"fmt"
	"math"

	"github.com/buffalographics/fleet-spec-sheet/pdf/layout"
)

// DefaultPageName names the first generated page; later pages get a
// " — Pg N" suffix.
const DefaultPageName = "SPEC SHEET (V1)"

// PageContext carries the per-page state of a layout run: where the page
// lands in the document and the transform from the page-local frame to it.
type PageContext struct {
	Number int
	Name   string
	// Target is the full page region in document coordinates.
	Target layout.Rect
	// Transform maps the page-local frame (origin at the top-left of the
	// content area) into document coordinates.
	Transform layout.Transform
}

// PageName returns the name of the n-th generated page (1-based).
func PageName(base string, n int) string {
	if base == "" {
		base = DefaultPageName
	}
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s — Pg %d", base, n)
}

// PlanTargets computes the document regions of n new pages. Each page is
// placed to the right of everything already in the document, including
// the pages planned before it, and top-aligned with the first existing
// board.
func PlanTargets(existing []layout.Rect, n int, g Geometry, baseName string) []PageContext {
	gap := layout.Inches(0.5)

	maxRight := math.Inf(-1)
	top := 0.0
	for i, r := range existing {
		if i == 0 {
			top = r.Y
		}
		maxRight = math.Max(maxRight, r.Right())
	}
	if math.IsInf(maxRight, -1) {
		maxRight = -gap
	}

	contexts := make([]PageContext, n)
	for i := range contexts {
		left := maxRight + gap
		target := layout.NewRect(left, top, g.Page.Width, g.Page.Height)
		contexts[i] = PageContext{
			Number:    i + 1,
			Name:      PageName(baseName, i+1),
			Target:    target,
			Transform: layout.Translate(target.X+g.Margin, target.Y+g.Margin),
		}
		maxRight = target.Right()
	}
	return contexts
}
