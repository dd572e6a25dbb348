// Package specsheet runs the spec sheet pipeline: classify artboards,
// collect job details, load images, paginate, lay out and render.
package specsheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/buffalographics/fleet-spec-sheet/artboard"
	"github.com/buffalographics/fleet-spec-sheet/details"
	"github.com/buffalographics/fleet-spec-sheet/pdf/layout"
	"github.com/buffalographics/fleet-spec-sheet/render"
	"github.com/buffalographics/fleet-spec-sheet/sheet"
	"github.com/buffalographics/fleet-spec-sheet/source"
)

// Run errors. Each wraps the package error that caused it.
var (
	ErrNoProofFound     = errors.New("no proof found")
	ErrNoItemsFound     = errors.New("no items found")
	ErrDetailsCancelled = errors.New("details cancelled")
	ErrImageUnavailable = errors.New("image unavailable")
	ErrNoRenderer       = errors.New("no renderer configured")
)

// Generator produces spec sheet pages from a document's artboards.
type Generator struct {
	Engine   *sheet.Engine
	Details  details.Provider
	Images   source.ImageSource
	Renderer render.Renderer
	Logger   *slog.Logger
	// Workers bounds concurrent image loading and page layout.
	Workers int
	// PageName is the base name of generated pages.
	PageName        string
	DefaultCustomer string
	DefaultVehicle  string
}

// Plan is everything computed before rendering.
type Plan struct {
	Boards         []artboard.SourceArtboard
	Classification artboard.Classification
	Details        details.Details
	Pages          []sheet.Page
	Contexts       []sheet.PageContext
	Outputs        []sheet.PageOutput
	Images         render.ImageSet
	Digest         string
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

func (g *Generator) workers() int {
	if g.Workers > 0 {
		return g.Workers
	}
	return runtime.NumCPU()
}

func (g *Generator) engine() *sheet.Engine {
	if g.Engine != nil {
		return g.Engine
	}
	return sheet.NewEngine()
}

// Plan classifies, prompts for details, loads images and lays out every
// page without rendering anything.
func (g *Generator) Plan(ctx context.Context, boards []artboard.SourceArtboard) (*Plan, error) {
	log := g.logger()

	c := artboard.Classify(boards)
	if err := c.Validate(); err != nil {
		switch {
		case errors.Is(err, artboard.ErrNoProof):
			return nil, fmt.Errorf("%w: %w", ErrNoProofFound, err)
		case errors.Is(err, artboard.ErrNoItems):
			return nil, fmt.Errorf("%w: %w", ErrNoItemsFound, err)
		}
		return nil, err
	}
	log.Info("classified artboards",
		"items", len(c.Items), "quantity", c.TotalQuantity(), "ignored", len(c.Ignored))

	d, err := g.requestDetails(ctx)
	if err != nil {
		return nil, err
	}

	byIndex := make(map[int]artboard.SourceArtboard, len(boards))
	for _, b := range boards {
		byIndex[b.Index] = b
	}

	proofBoard := byIndex[c.Proof.SourceIndex]
	itemBoards := make([]artboard.SourceArtboard, len(c.Items))
	for i, it := range c.Items {
		itemBoards[i] = byIndex[it.SourceIndex]
	}

	loaded, err := g.loadImages(ctx, append([]artboard.SourceArtboard{proofBoard}, itemBoards...))
	if err != nil {
		return nil, err
	}
	set := render.ImageSet{}
	for _, img := range loaded {
		set.Add(img)
	}

	e := g.engine()
	pages := sheet.NewPlanner(e.Geometry).Paginate(c.Items)

	rects := make([]layout.Rect, len(boards))
	for i, b := range boards {
		rects[i] = b.Rect
	}
	contexts := sheet.PlanTargets(rects, len(pages), e.Geometry, g.PageName)

	proof := refOf(loaded[0])
	thumbs := loaded[1:]
	inputs := make([]sheet.PageInput, len(pages))
	next := 0
	for i, pg := range pages {
		inputs[i].Details = d
		if pg.IsFirst {
			inputs[i].Proof = &proof
		}
		for range pg.Items {
			inputs[i].Thumbs = append(inputs[i].Thumbs, refOf(thumbs[next]))
			next++
		}
	}

	outputs, err := e.LayoutAll(pages, inputs, contexts, g.workers())
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	for _, out := range outputs {
		if out.Overflows(e.Geometry) {
			log.Warn("page content runs past the bottom margin",
				"page", out.Page.Number, "bottom", out.ContentBottom)
		}
	}

	return &Plan{
		Boards:         boards,
		Classification: c,
		Details:        d,
		Pages:          pages,
		Contexts:       contexts,
		Outputs:        outputs,
		Images:         set,
		Digest:         sheet.Digest(outputs),
	}, nil
}

func refOf(img *source.Image) sheet.ImageRef {
	return sheet.ImageRef{Key: img.Key, Width: img.Width, Height: img.Height}
}

func (g *Generator) requestDetails(ctx context.Context) (details.Details, error) {
	if g.Details == nil {
		return details.Static{}.RequestDetails(ctx, g.DefaultCustomer, g.DefaultVehicle)
	}
	d, err := g.Details.RequestDetails(ctx, g.DefaultCustomer, g.DefaultVehicle)
	if err != nil {
		if errors.Is(err, details.ErrCancelled) {
			return details.Details{}, fmt.Errorf("%w: %w", ErrDetailsCancelled, err)
		}
		return details.Details{}, fmt.Errorf("details: %w", err)
	}
	return d.Normalize(), nil
}

// loadImages loads one image per board, keeping board order.
func (g *Generator) loadImages(ctx context.Context, boards []artboard.SourceArtboard) ([]*source.Image, error) {
	if g.Images == nil {
		return nil, fmt.Errorf("%w: no image source configured", ErrImageUnavailable)
	}

	out := make([]*source.Image, len(boards))
	errs := make([]error, len(boards))

	sem := make(chan struct{}, g.workers())
	var wg sync.WaitGroup
	for i := range boards {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i], errs[i] = g.Images.Image(boards[i])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: artboard %q: %w", ErrImageUnavailable, boards[i].Name, err)
	}
	for i, img := range out {
		if img == nil || img.Width <= 0 || img.Height <= 0 {
			return nil, fmt.Errorf("%w: artboard %q has no pixels", ErrImageUnavailable, boards[i].Name)
		}
	}
	return out, nil
}

// Run plans every page, then renders them with the generator's renderer.
// Nothing is rendered unless the whole plan succeeds.
func (g *Generator) Run(ctx context.Context, boards []artboard.SourceArtboard) (*Plan, error) {
	if g.Renderer == nil {
		return nil, ErrNoRenderer
	}

	plan, err := g.Plan(ctx, boards)
	if err != nil {
		return nil, err
	}
	if err := g.Render(ctx, plan, g.Renderer); err != nil {
		return nil, err
	}
	return plan, nil
}

// Render sends the planned pages to r in order and closes it. Renderers
// that draw images are built over plan.Images.
func (g *Generator) Render(ctx context.Context, plan *Plan, r render.Renderer) error {
	if r == nil {
		return ErrNoRenderer
	}
	for _, out := range plan.Outputs {
		if err := r.RenderPage(ctx, out.Context, out.Primitives); err != nil {
			return fmt.Errorf("render page %d: %w", out.Page.Number, err)
		}
	}
	if err := r.Close(); err != nil {
		return fmt.Errorf("close renderer: %w", err)
	}

	g.logger().Info(fmt.Sprintf("created %d pages", len(plan.Outputs)),
		"items", len(plan.Classification.Items), "digest", plan.Digest)
	return nil
}
