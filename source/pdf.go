package source

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"math"
	"path"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// ErrUnreadablePDF is wrapped when a PDF print file cannot be opened or
// has no pages.
var ErrUnreadablePDF = errors.New("unreadable PDF")

// PDFRenderDPI is the resolution of the first page thumbnail of a PDF
// print file.
const PDFRenderDPI = 144.0

// MaxPDFRasterSide caps the longer side of a PDF thumbnail in pixels.
const MaxPDFRasterSide = 3000

// IsPDF reports whether name has a .pdf extension.
func IsPDF(name string) bool {
	return strings.EqualFold(path.Ext(name), ".pdf")
}

// renderPDF rasterises the first page of a PDF document to PNG.
func renderPDF(data []byte) (*Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	defer doc.Close()

	if doc.NumPage() < 1 {
		return nil, fmt.Errorf("%w: no pages", ErrUnreadablePDF)
	}
	bounds, err := doc.Bound(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}

	dpi := PDFRenderDPI
	if side := float64(max(bounds.Dx(), bounds.Dy())); side > 0 {
		// bounds are in points
		dpi = math.Min(dpi, MaxPDFRasterSide*72/side)
	}
	img, err := doc.ImageDPI(0, dpi)
	if err != nil {
		return nil, fmt.Errorf("%w: render page 1: %v", ErrUnreadablePDF, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &Image{Width: b.Dx(), Height: b.Dy(), Data: buf.Bytes()}, nil
}
