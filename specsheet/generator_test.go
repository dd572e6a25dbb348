package specsheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/buffalographics/fleet-spec-sheet/artboard"
	"github.com/buffalographics/fleet-spec-sheet/details"
	"github.com/buffalographics/fleet-spec-sheet/pdf/layout"
	"github.com/buffalographics/fleet-spec-sheet/render"
	"github.com/buffalographics/fleet-spec-sheet/sheet"
	"github.com/buffalographics/fleet-spec-sheet/source"
)

// memSource serves fixed-size images for every board except those listed
// in missing.
type memSource struct {
	missing map[string]bool
}

func (s memSource) Image(b artboard.SourceArtboard) (*source.Image, error) {
	if s.missing[b.Name] {
		return nil, &source.ImageError{Board: b.Name, Err: errors.New("not exported")}
	}
	w, h := 400, 200
	if artboard.IsProof(b.Name) {
		w, h = 1600, 800
	}
	return &source.Image{Key: "img:" + b.Name, Width: w, Height: h}, nil
}

func boards(names ...string) []artboard.SourceArtboard {
	out := make([]artboard.SourceArtboard, len(names))
	for i, name := range names {
		out[i] = artboard.SourceArtboard{
			Name:  name,
			Index: i,
			Rect:  layout.Rect{X: float64(i) * 700, Y: 0, Width: 600, Height: 400},
		}
	}
	return out
}

func jobBoards(items int) []artboard.SourceArtboard {
	names := []string{"PROOF", "Unit Numbers"}
	for i := 1; i <= items; i++ {
		names = append(names, fmt.Sprintf("Panel %d", i))
	}
	return boards(names...)
}

func newGenerator(r render.Renderer) *Generator {
	return &Generator{
		Details:  details.Static{Customer: "Acme Concrete", Vehicle: "MIXER"},
		Images:   memSource{},
		Renderer: r,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Workers:  2,
	}
}

func TestRun(t *testing.T) {
	rec := &render.Recorder{}
	g := newGenerator(rec)

	plan, err := g.Run(context.Background(), jobBoards(10))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(rec.Pages) != 2 || !rec.Closed {
		t.Fatalf("rendered %d pages (closed=%v), want 2 closed", len(rec.Pages), rec.Closed)
	}
	if got := len(plan.Classification.Items); got != 10 {
		t.Errorf("items = %d, want 10", got)
	}
	if len(plan.Classification.Ignored) != 1 {
		t.Errorf("ignored = %v, want one unit numbers board", plan.Classification.Ignored)
	}

	wantNames := []string{sheet.DefaultPageName, sheet.PageName("", 2)}
	for i, p := range rec.Pages {
		if p.Context.Name != wantNames[i] {
			t.Errorf("page %d name = %q, want %q", i+1, p.Context.Name, wantNames[i])
		}
		// every page lands right of the source boards
		if p.Context.Target.X <= 9*700+600 {
			t.Errorf("page %d target x = %v overlaps the source boards", i+1, p.Context.Target.X)
		}
	}

	if len(plan.Images) != 11 {
		t.Errorf("loaded %d images, want 11", len(plan.Images))
	}
	if plan.Digest == "" || plan.Digest != sheet.Digest(plan.Outputs) {
		t.Errorf("Digest = %q", plan.Digest)
	}
}

func TestRunDeterministic(t *testing.T) {
	a, err := newGenerator(&render.Recorder{}).Run(context.Background(), jobBoards(12))
	if err != nil {
		t.Fatal(err)
	}
	b, err := newGenerator(&render.Recorder{}).Run(context.Background(), jobBoards(12))
	if err != nil {
		t.Fatal(err)
	}
	if a.Digest != b.Digest {
		t.Errorf("digests differ: %s vs %s", a.Digest, b.Digest)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name    string
		boards  []artboard.SourceArtboard
		details details.Provider
		missing string
		want    error
		cause   error
	}{
		{"no proof", boards("Hood", "Door"), nil, "", ErrNoProofFound, artboard.ErrNoProof},
		{"no items", boards("PROOF", "Unit #"), nil, "", ErrNoItemsFound, artboard.ErrNoItems},
		{"cancelled", boards("PROOF", "Hood"), details.Cancelled{}, "", ErrDetailsCancelled, details.ErrCancelled},
		{"missing image", boards("PROOF", "Hood", "Door"), nil, "Door", ErrImageUnavailable, source.ErrImageUnavailable},
		{"missing proof image", boards("PROOF", "Hood"), nil, "PROOF", ErrImageUnavailable, source.ErrImageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &render.Recorder{}
			g := newGenerator(rec)
			g.Details = tt.details
			if tt.missing != "" {
				g.Images = memSource{missing: map[string]bool{tt.missing: true}}
			}

			_, err := g.Run(context.Background(), tt.boards)
			if !errors.Is(err, tt.want) || !errors.Is(err, tt.cause) {
				t.Errorf("Run() error = %v, want %v wrapping %v", err, tt.want, tt.cause)
			}
			if len(rec.Pages) != 0 || rec.Closed {
				t.Errorf("renderer saw %d pages (closed=%v) on failure", len(rec.Pages), rec.Closed)
			}
		})
	}
}

func TestRunWithoutRenderer(t *testing.T) {
	g := newGenerator(nil)
	if _, err := g.Run(context.Background(), jobBoards(1)); !errors.Is(err, ErrNoRenderer) {
		t.Errorf("Run() error = %v, want ErrNoRenderer", err)
	}
}

func TestRenderPDF(t *testing.T) {
	g := newGenerator(nil)
	plan, err := g.Plan(context.Background(), jobBoards(3))
	if err != nil {
		t.Fatal(err)
	}

	// memSource images carry no pixels, so rendering them must fail
	// cleanly rather than write a broken file.
	var buf bytes.Buffer
	err = g.Render(context.Background(), plan, render.NewPDF(&buf, nil, plan.Images))
	if err == nil {
		t.Fatal("Render() should fail for images without data")
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes after a failed render", buf.Len())
	}

	if err := g.Render(context.Background(), plan, nil); !errors.Is(err, ErrNoRenderer) {
		t.Errorf("Render(nil) error = %v, want ErrNoRenderer", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &render.Recorder{}
	if _, err := newGenerator(rec).Run(ctx, jobBoards(3)); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(rec.Pages) != 0 {
		t.Errorf("rendered %d pages after cancellation", len(rec.Pages))
	}
}

func TestPlanDefaults(t *testing.T) {
	g := &Generator{
		Images:          memSource{},
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		DefaultCustomer: "  Fleet Co ",
		PageName:        "JOB 42",
	}

	plan, err := g.Plan(context.Background(), jobBoards(4))
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if plan.Details.Customer != "Fleet Co" || plan.Details.Vehicle != details.DefaultVehicle {
		t.Errorf("Details = %+v", plan.Details)
	}
	if len(plan.Contexts) != 1 || plan.Contexts[0].Name != "JOB 42" {
		t.Errorf("contexts = %+v", plan.Contexts)
	}
}

func TestSummary(t *testing.T) {
	plan, err := newGenerator(nil).Plan(context.Background(), boards("PROOF", "Hood QTY2", "Unit No.", "Door x3"))
	if err != nil {
		t.Fatal(err)
	}

	s := plan.Summary()
	if s.Proof != "PROOF" || s.Total != 5 {
		t.Errorf("Summary proof/total = %q/%d, want PROOF/5", s.Proof, s.Total)
	}
	if len(s.Ignored) != 1 || s.Ignored[0] != "Unit No." {
		t.Errorf("Ignored = %v", s.Ignored)
	}
	if len(s.Pages) != 1 || len(s.Pages[0].Items) != 2 {
		t.Fatalf("Pages = %+v", s.Pages)
	}
	if it := s.Pages[0].Items[1]; it.Name != "Door x3" || it.Quantity != 3 {
		t.Errorf("second item = %+v", it)
	}
	if s.Digest != plan.Digest {
		t.Errorf("Digest = %q", s.Digest)
	}
}
