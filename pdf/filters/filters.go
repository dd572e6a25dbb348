// Package filters provides the PDF stream filters the sheet writer uses.
package filters

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// ErrDecodeFailed is wrapped by every decode failure.
var ErrDecodeFailed = errors.New("decode failed")

// Filter represents a PDF stream filter.
type Filter interface {
	// Decode decodes the data.
	Decode(data []byte) ([]byte, error)
	// Encode encodes the data.
	Encode(data []byte) ([]byte, error)
	// Name returns the filter name.
	Name() string
}

// FlateDecodeFilter implements the FlateDecode filter (zlib compression).
type FlateDecodeFilter struct {
	// Level is the zlib compression level; zero means the default.
	Level int
}

// Name implements Filter.
func (f *FlateDecodeFilter) Name() string {
	return "FlateDecode"
}

// Decode implements Filter.
func (f *FlateDecodeFilter) Decode(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return buf.Bytes(), nil
}

// Encode implements Filter.
func (f *FlateDecodeFilter) Encode(data []byte) ([]byte, error) {
	level := f.Level
	if level == 0 {
		level = zlib.DefaultCompression
	}

	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("flate encode failed: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("flate encode failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flate encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Flate is the filter used for every compressed stream.
var Flate Filter = &FlateDecodeFilter{}
