package specsheet

import (
	"github.com/buffalographics/fleet-spec-sheet/details"
)

// Summary is the printable outline of a plan.
type Summary struct {
	Details details.Details `yaml:"details"`
	Proof   string          `yaml:"proof"`
	Ignored []string        `yaml:"ignored,omitempty"`
	Pages   []PageSummary   `yaml:"pages"`
	Total   int             `yaml:"total_quantity"`
	Digest  string          `yaml:"digest"`
}

// PageSummary outlines one generated page.
type PageSummary struct {
	Number int           `yaml:"number"`
	Name   string        `yaml:"name"`
	Target [4]float64    `yaml:"target,flow"`
	Items  []ItemSummary `yaml:"items"`
}

// ItemSummary outlines one manifest row.
type ItemSummary struct {
	Name     string `yaml:"name"`
	File     string `yaml:"file"`
	Quantity int    `yaml:"quantity"`
}

// Summary outlines the plan.
func (p *Plan) Summary() Summary {
	names := make(map[int]string, len(p.Boards))
	for _, b := range p.Boards {
		names[b.Index] = b.Name
	}

	s := Summary{
		Details: p.Details,
		Total:   p.Classification.TotalQuantity(),
		Digest:  p.Digest,
	}
	if p.Classification.Proof != nil {
		s.Proof = names[p.Classification.Proof.SourceIndex]
	}
	for _, idx := range p.Classification.Ignored {
		s.Ignored = append(s.Ignored, names[idx])
	}
	for i, pg := range p.Pages {
		ps := PageSummary{Number: pg.Number}
		if i < len(p.Contexts) {
			t := p.Contexts[i].Target
			ps.Name = p.Contexts[i].Name
			ps.Target = [4]float64{t.X, t.Y, t.Width, t.Height}
		}
		for _, it := range pg.Items {
			ps.Items = append(ps.Items, ItemSummary{Name: it.Name, File: it.File, Quantity: it.Quantity})
		}
		s.Pages = append(s.Pages, ps)
	}
	return s
}
