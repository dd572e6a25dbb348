package sheet

import (
	"math"

	"github.com/buffalographics/fleet-spec-sheet/artboard"
)

// Page is one spec sheet page and the items it lists.
type Page struct {
	Number  int
	IsFirst bool
	IsLast  bool
	Items   []artboard.ClassifiedItem
}

// Planner splits items across pages.
type Planner struct {
	Geometry Geometry
}

// NewPlanner creates a planner for the given geometry.
func NewPlanner(g Geometry) *Planner {
	return &Planner{Geometry: g}
}

// Capacity returns how many manifest rows fit on a page, given whether the
// page reserves room for the proof and the sign-off block.
func (p *Planner) Capacity(includeProof, includeSignoff bool) int {
	g := p.Geometry

	used := g.HeaderHeight + g.HeaderGap
	used += g.DetailsHeight + g.DetailsGapPlanned
	if includeProof {
		used += g.ProofReserve + g.ProofGap
	}
	used += g.ManifestTitleGap + g.ManifestHeader

	reserved := 0.0
	if includeSignoff {
		reserved = g.SignTitleGap + g.SignHeight() + g.SignReservePad
	}

	available := g.ContentHeight() - used - reserved
	// Values come from inch constants; round away float noise before flooring.
	rows := int(math.Floor(available/g.RowHeight + 1e-9))
	if rows < 0 {
		return 0
	}
	return rows
}

// FirstCapacity is the row capacity of page one, at least 1.
func (p *Planner) FirstCapacity() int {
	return atLeastOne(p.Capacity(true, true))
}

// ContinuationCapacity is the row capacity of every later page, at least 1.
// Sign-off space is reserved on every continuation page, not just the last.
func (p *Planner) ContinuationCapacity() int {
	return atLeastOne(p.Capacity(false, true))
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Paginate assigns items to pages greedily, in order.
func (p *Planner) Paginate(items []artboard.ClassifiedItem) []Page {
	firstCap := p.FirstCapacity()
	contCap := p.ContinuationCapacity()

	var pages []Page
	for start := 0; start < len(items); {
		limit := contCap
		if len(pages) == 0 {
			limit = firstCap
		}
		end := min(start+limit, len(items))

		pages = append(pages, Page{
			Number:  len(pages) + 1,
			IsFirst: len(pages) == 0,
			Items:   items[start:end:end],
		})
		start = end
	}

	if len(pages) > 0 {
		pages[len(pages)-1].IsLast = true
	}
	return pages
}
