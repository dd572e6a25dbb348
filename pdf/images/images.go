// Package images prepares raster artwork for embedding as PDF image
// XObjects.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/buffalographics/fleet-spec-sheet/pdf/filters"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// Common errors
var (
	ErrInvalidImage      = errors.New("invalid image data")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrDecodeFailed      = errors.New("image decode failed")
	ErrInvalidDimensions = errors.New("invalid image dimensions")
)

// ColorSpace represents a PDF color space.
type ColorSpace string

const (
	ColorSpaceGray ColorSpace = "DeviceGray"
	ColorSpaceRGB  ColorSpace = "DeviceRGB"
	ColorSpaceCMYK ColorSpace = "DeviceCMYK"
)

// ImageFormat represents an image format.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "PNG"
	FormatJPEG ImageFormat = "JPEG"
	FormatGIF  ImageFormat = "GIF"
	FormatBMP  ImageFormat = "BMP"
	FormatTIFF ImageFormat = "TIFF"
)

// PDFImage represents an image ready for PDF embedding.
type PDFImage struct {
	// Width in pixels
	Width int
	// Height in pixels
	Height int
	// Bits per component
	BitsPerComponent int
	ColorSpace       ColorSpace
	// Number of color components (1 for gray, 3 for RGB, 4 for CMYK)
	Components int
	// Image data, encoded with Filter
	Data []byte
	// Filter applied to data ("FlateDecode" or "DCTDecode")
	Filter string
	// Alpha channel data, Flate encoded, nil when the image is opaque
	AlphaData []byte
	// Original format
	OriginalFormat ImageFormat
}

// HasAlpha returns true if the image carries a soft mask.
func (img *PDFImage) HasAlpha() bool {
	return len(img.AlphaData) > 0
}

// DetectFormat detects the image format from the file header.
func DetectFormat(data []byte) ImageFormat {
	if len(data) < 8 {
		return ""
	}

	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG
	case data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return FormatJPEG
	case bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")):
		return FormatGIF
	case data[0] == 'B' && data[1] == 'M':
		return FormatBMP
	case bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*")):
		return FormatTIFF
	}
	return ""
}

// Dimensions returns the pixel size of an encoded image without decoding
// the pixel data.
func Dimensions(data []byte) (width, height int, err error) {
	if DetectFormat(data) == "" {
		return 0, 0, ErrUnsupportedFormat
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, ErrInvalidDimensions
	}
	return cfg.Width, cfg.Height, nil
}

// Decode decodes any supported raster format.
func Decode(data []byte) (image.Image, error) {
	if DetectFormat(data) == "" {
		return nil, ErrUnsupportedFormat
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return img, nil
}

// Downscale shrinks img to fit within maxW x maxH, keeping its aspect
// ratio. Images already small enough are returned as-is.
func Downscale(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxW <= 0 || maxH <= 0 || (w <= maxW && h <= maxH) {
		return img
	}

	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// Prepare converts encoded image data into a PDFImage no larger than
// maxW x maxH pixels. Opaque JPEGs within the limit are embedded as-is.
func Prepare(data []byte, maxW, maxH int) (*PDFImage, error) {
	format := DetectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	if format == FormatJPEG {
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
		}
		if fits(cfg.Width, cfg.Height, maxW, maxH) && cfg.ColorModel != color.CMYKModel {
			return passthroughJPEG(data, cfg), nil
		}
	}

	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	pdfImg, err := NewPDFImageFromImage(Downscale(img, maxW, maxH))
	if err != nil {
		return nil, err
	}
	pdfImg.OriginalFormat = format
	return pdfImg, nil
}

func fits(w, h, maxW, maxH int) bool {
	if maxW <= 0 || maxH <= 0 {
		return true
	}
	return w <= maxW && h <= maxH
}

func passthroughJPEG(data []byte, cfg image.Config) *PDFImage {
	cs, n := ColorSpaceRGB, 3
	if cfg.ColorModel == color.GrayModel {
		cs, n = ColorSpaceGray, 1
	}
	return &PDFImage{
		Width:            cfg.Width,
		Height:           cfg.Height,
		BitsPerComponent: 8,
		ColorSpace:       cs,
		Components:       n,
		Data:             data,
		Filter:           "DCTDecode",
		OriginalFormat:   FormatJPEG,
	}
}

// NewPDFImageFromImage creates a Flate encoded PDFImage from a Go image.
// Gray images stay gray; everything else becomes RGB with a soft mask when
// any pixel is translucent.
func NewPDFImageFromImage(img image.Image) (*PDFImage, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}

	if gray, ok := img.(*image.Gray); ok {
		pix := make([]byte, 0, width*height)
		for y := 0; y < height; y++ {
			off := gray.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			pix = append(pix, gray.Pix[off:off+width]...)
		}
		data, err := filters.Flate.Encode(pix)
		if err != nil {
			return nil, err
		}
		return &PDFImage{
			Width:            width,
			Height:           height,
			BitsPerComponent: 8,
			ColorSpace:       ColorSpaceGray,
			Components:       1,
			Data:             data,
			Filter:           "FlateDecode",
		}, nil
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, xdraw.Src)

	rgb := make([]byte, 0, width*height*3)
	alpha := make([]byte, 0, width*height)
	opaque := true
	for i := 0; i < len(nrgba.Pix); i += 4 {
		rgb = append(rgb, nrgba.Pix[i], nrgba.Pix[i+1], nrgba.Pix[i+2])
		alpha = append(alpha, nrgba.Pix[i+3])
		if nrgba.Pix[i+3] != 0xFF {
			opaque = false
		}
	}

	data, err := filters.Flate.Encode(rgb)
	if err != nil {
		return nil, err
	}
	out := &PDFImage{
		Width:            width,
		Height:           height,
		BitsPerComponent: 8,
		ColorSpace:       ColorSpaceRGB,
		Components:       3,
		Data:             data,
		Filter:           "FlateDecode",
	}
	if !opaque {
		if out.AlphaData, err = filters.Flate.Encode(alpha); err != nil {
			return nil, err
		}
	}
	return out, nil
}
