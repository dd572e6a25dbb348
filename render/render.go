// Package render draws laid out spec sheet pages: into a PDF, a PNG
// preview of the whole document, or an in-memory recording.
package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/buffalographics/fleet-spec-sheet/sheet"
	"github.com/buffalographics/fleet-spec-sheet/source"
)

// ErrClosed is returned when a page is rendered after Close.
var ErrClosed = errors.New("renderer closed")

// StrokeWidth is the width of every rule and border, in points.
const StrokeWidth = 1.0

// LineSpacing is the leading of wrapped text as a multiple of the font's
// line height.
const LineSpacing = 1.2

// Renderer receives pages in order. Primitives are in document
// coordinates; page carries the transform that placed them.
type Renderer interface {
	RenderPage(ctx context.Context, page sheet.PageContext, prims []sheet.Primitive) error
	Close() error
}

// ImageStore resolves image keys to loaded images.
type ImageStore interface {
	Lookup(key string) (*source.Image, bool)
}

// ImageSet is an ImageStore backed by a map.
type ImageSet map[string]*source.Image

// Lookup implements ImageStore.
func (s ImageSet) Lookup(key string) (*source.Image, bool) {
	img, ok := s[key]
	return img, ok
}

// Add stores an image under its key.
func (s ImageSet) Add(img *source.Image) {
	s[img.Key] = img
}

func lookup(store ImageStore, key string) (*source.Image, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: no image store for %q", source.ErrImageUnavailable, key)
	}
	img, ok := store.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q was not loaded", source.ErrImageUnavailable, key)
	}
	return img, nil
}

// Multi fans every call out to several renderers, stopping at the first
// error.
type Multi []Renderer

// RenderPage implements Renderer.
func (m Multi) RenderPage(ctx context.Context, page sheet.PageContext, prims []sheet.Primitive) error {
	for _, r := range m {
		if err := r.RenderPage(ctx, page, prims); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every renderer and returns the first error.
func (m Multi) Close() error {
	var first error
	for _, r := range m {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RecordedPage is one page seen by a Recorder.
type RecordedPage struct {
	Context    sheet.PageContext
	Primitives []sheet.Primitive
}

// Recorder keeps every rendered page in memory.
type Recorder struct {
	Pages  []RecordedPage
	Closed bool
}

// RenderPage implements Renderer.
func (r *Recorder) RenderPage(ctx context.Context, page sheet.PageContext, prims []sheet.Primitive) error {
	if r.Closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.Pages = append(r.Pages, RecordedPage{Context: page, Primitives: append([]sheet.Primitive(nil), prims...)})
	return nil
}

// Close implements Renderer.
func (r *Recorder) Close() error {
	r.Closed = true
	return nil
}
