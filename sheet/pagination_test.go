package sheet

import (
	"fmt"
	"testing"

	"github.com/buffalographics/fleet-spec-sheet/artboard"
)

func makeItems(n int) []artboard.ClassifiedItem {
	items := make([]artboard.ClassifiedItem, n)
	for i := range items {
		name := fmt.Sprintf("DECAL %d", i+1)
		items[i] = artboard.ClassifiedItem{Name: name, File: name, Quantity: 1, SourceIndex: i + 1}
	}
	return items
}

func TestCapacity(t *testing.T) {
	p := NewPlanner(DefaultGeometry())

	tests := []struct {
		proof, sign bool
		want        int
	}{
		{true, true, 3},
		{false, true, 7},
		{true, false, 5},
		{false, false, 9},
	}

	for _, tt := range tests {
		if got := p.Capacity(tt.proof, tt.sign); got != tt.want {
			t.Errorf("Capacity(%v, %v) = %d, want %d", tt.proof, tt.sign, got, tt.want)
		}
	}
}

func TestCapacityClampsAtZero(t *testing.T) {
	g := DefaultGeometry()
	g.ProofReserve = g.ContentHeight()
	p := NewPlanner(g)

	if got := p.Capacity(true, true); got != 0 {
		t.Errorf("Capacity() = %d, want 0", got)
	}
	if got := p.FirstCapacity(); got != 1 {
		t.Errorf("FirstCapacity() = %d, want 1", got)
	}
}

func TestPaginateEmpty(t *testing.T) {
	if pages := NewPlanner(DefaultGeometry()).Paginate(nil); len(pages) != 0 {
		t.Errorf("Paginate(nil) = %d pages, want 0", len(pages))
	}
}

func TestPaginateSizes(t *testing.T) {
	tests := []struct {
		items int
		want  []int
	}{
		{1, []int{1}},
		{3, []int{3}},
		{4, []int{3, 1}},
		{10, []int{3, 7}},
		{11, []int{3, 7, 1}},
		{24, []int{3, 7, 7, 7}},
	}

	p := NewPlanner(DefaultGeometry())
	for _, tt := range tests {
		pages := p.Paginate(makeItems(tt.items))
		var got []int
		for _, pg := range pages {
			got = append(got, len(pg.Items))
		}
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("Paginate(%d items) sizes = %v, want %v", tt.items, got, tt.want)
		}
	}
}

// Pages partition the items exactly, in order, with one first and one last page.
func TestPaginatePartition(t *testing.T) {
	geometries := map[string]Geometry{"default": DefaultGeometry()}
	tight := DefaultGeometry()
	tight.RowHeight = tight.ContentHeight()
	geometries["one row"] = tight

	for name, g := range geometries {
		p := NewPlanner(g)
		firstCap, contCap := p.FirstCapacity(), p.ContinuationCapacity()

		for n := 1; n <= 40; n++ {
			items := makeItems(n)
			pages := p.Paginate(items)

			next := 0
			firsts, lasts := 0, 0
			for i, pg := range pages {
				if pg.Number != i+1 {
					t.Errorf("%s/%d: page %d has Number %d", name, n, i, pg.Number)
				}
				if len(pg.Items) == 0 {
					t.Errorf("%s/%d: page %d is empty", name, n, pg.Number)
				}
				limit := contCap
				if i == 0 {
					limit = firstCap
				}
				if len(pg.Items) > limit {
					t.Errorf("%s/%d: page %d has %d items, cap %d", name, n, pg.Number, len(pg.Items), limit)
				}
				for _, it := range pg.Items {
					if it.SourceIndex != items[next].SourceIndex {
						t.Errorf("%s/%d: item order broken at %d", name, n, next)
					}
					next++
				}
				if pg.IsFirst {
					firsts++
					if i != 0 {
						t.Errorf("%s/%d: page %d marked first", name, n, pg.Number)
					}
				}
				if pg.IsLast {
					lasts++
					if i != len(pages)-1 {
						t.Errorf("%s/%d: page %d marked last", name, n, pg.Number)
					}
				}
			}
			if next != n {
				t.Errorf("%s/%d: pages hold %d items", name, n, next)
			}
			if firsts != 1 || lasts != 1 {
				t.Errorf("%s/%d: %d first pages and %d last pages", name, n, firsts, lasts)
			}
		}
	}
}

func TestPaginateDoesNotAlias(t *testing.T) {
	items := makeItems(5)
	pages := NewPlanner(DefaultGeometry()).Paginate(items)

	pages[0].Items = append(pages[0].Items, artboard.ClassifiedItem{Name: "EXTRA"})
	if items[3].Name == "EXTRA" {
		t.Error("appending to a page overwrote the next item")
	}
}
