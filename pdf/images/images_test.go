package images

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/buffalographics/fleet-spec-sheet/pdf/filters"
)

func createTestPNG(width, height int, alpha uint8) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: alpha})
		}
	}

	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func createTestJPEG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x % 256), B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80})
	return buf.Bytes()
}

func inflate(t *testing.T, data []byte) []byte {
	t.Helper()
	out, err := filters.Flate.Decode(data)
	if err != nil {
		t.Fatalf("inflate error = %v", err)
	}
	return out
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		data []byte
		want ImageFormat
	}{
		{createTestPNG(2, 2, 255), FormatPNG},
		{createTestJPEG(2, 2), FormatJPEG},
		{[]byte("GIF89a\x01\x00\x01\x00"), FormatGIF},
		{[]byte("BM\x00\x00\x00\x00\x00\x00"), FormatBMP},
		{[]byte("II*\x00\x08\x00\x00\x00"), FormatTIFF},
		{[]byte("%PDF-1.7\n"), ""},
		{[]byte("short"), ""},
	}

	for _, tt := range tests {
		if got := DetectFormat(tt.data); got != tt.want {
			t.Errorf("DetectFormat(%q...) = %q, want %q", tt.data[:4], got, tt.want)
		}
	}
}

func TestDimensions(t *testing.T) {
	w, h, err := Dimensions(createTestPNG(40, 25, 255))
	if err != nil {
		t.Fatalf("Dimensions() error = %v", err)
	}
	if w != 40 || h != 25 {
		t.Errorf("Dimensions() = %dx%d, want 40x25", w, h)
	}

	if _, _, err := Dimensions([]byte("not an image at all")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Dimensions(garbage) error = %v, want ErrUnsupportedFormat", err)
	}

	truncated := createTestPNG(4, 4, 255)[:12]
	if _, _, err := Dimensions(truncated); !errors.Is(err, ErrDecodeFailed) {
		t.Errorf("Dimensions(truncated) error = %v, want ErrDecodeFailed", err)
	}
}

func TestDownscale(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 400, 100))

	tests := []struct {
		maxW, maxH int
		wantW      int
		wantH      int
	}{
		{200, 200, 200, 50},
		{1000, 1000, 400, 100},
		{400, 20, 80, 20},
		{0, 0, 400, 100},
	}

	for _, tt := range tests {
		b := Downscale(img, tt.maxW, tt.maxH).Bounds()
		if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
			t.Errorf("Downscale(400x100, %d, %d) = %dx%d, want %dx%d",
				tt.maxW, tt.maxH, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
		}
	}
}

func TestPrepareOpaquePNG(t *testing.T) {
	img, err := Prepare(createTestPNG(10, 6, 255), 0, 0)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if img.Width != 10 || img.Height != 6 {
		t.Errorf("size = %dx%d, want 10x6", img.Width, img.Height)
	}
	if img.ColorSpace != ColorSpaceRGB || img.Filter != "FlateDecode" || img.OriginalFormat != FormatPNG {
		t.Errorf("image = %s %s %s", img.ColorSpace, img.Filter, img.OriginalFormat)
	}
	if img.HasAlpha() {
		t.Error("opaque PNG should not carry a soft mask")
	}

	raw := inflate(t, img.Data)
	if len(raw) != 10*6*3 {
		t.Fatalf("raw length = %d, want %d", len(raw), 10*6*3)
	}
	// pixel (3, 2)
	i := (2*10 + 3) * 3
	if raw[i] != 3 || raw[i+1] != 2 || raw[i+2] != 128 {
		t.Errorf("pixel (3,2) = %v", raw[i:i+3])
	}
}

func TestPrepareTranslucentPNG(t *testing.T) {
	img, err := Prepare(createTestPNG(4, 4, 100), 0, 0)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !img.HasAlpha() {
		t.Fatal("translucent PNG should carry a soft mask")
	}
	alpha := inflate(t, img.AlphaData)
	if len(alpha) != 16 || alpha[0] != 100 {
		t.Errorf("alpha = %v", alpha)
	}
}

func TestPrepareJPEGPassthrough(t *testing.T) {
	data := createTestJPEG(32, 16)

	img, err := Prepare(data, 100, 100)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if img.Filter != "DCTDecode" || !bytes.Equal(img.Data, data) {
		t.Errorf("small JPEG should pass through, got filter %s", img.Filter)
	}

	small, err := Prepare(data, 8, 8)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if small.Filter != "FlateDecode" || small.Width != 8 || small.Height != 4 {
		t.Errorf("oversized JPEG = %s %dx%d, want FlateDecode 8x4", small.Filter, small.Width, small.Height)
	}
}

func TestPrepareGray(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	gray.Pix[4] = 77
	var buf bytes.Buffer
	png.Encode(&buf, gray)

	img, err := Prepare(buf.Bytes(), 0, 0)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if img.ColorSpace != ColorSpaceGray || img.Components != 1 {
		t.Errorf("color space = %s/%d, want gray", img.ColorSpace, img.Components)
	}
	if raw := inflate(t, img.Data); len(raw) != 6 || raw[4] != 77 {
		t.Errorf("gray data = %v", raw)
	}
}

func TestNewPDFImageFromImageInvalid(t *testing.T) {
	if _, err := NewPDFImageFromImage(image.NewRGBA(image.Rect(0, 0, 0, 5))); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("error = %v, want ErrInvalidDimensions", err)
	}
}
