// Package source supplies artboards and their raster images: from a YAML
// job manifest, a directory of artwork, or a zip archive.
package source

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/buffalographics/fleet-spec-sheet/artboard"
	"github.com/buffalographics/fleet-spec-sheet/details"
	"github.com/buffalographics/fleet-spec-sheet/pdf/images"
	"github.com/buffalographics/fleet-spec-sheet/pdf/layout"
)

// ErrImageUnavailable is wrapped by every failure to produce a board image.
var ErrImageUnavailable = errors.New("image unavailable")

// ProofBoardName names the board created for an explicit proof file.
const ProofBoardName = "PROOF"

// BoardGap separates boards laid out from image sizes.
var BoardGap = layout.Inches(0.5)

// Image is a decoded-size raster image with its encoded bytes.
type Image struct {
	Key    string
	Width  int
	Height int
	Data   []byte
}

// ImageSource produces the raster image of an artboard.
type ImageSource interface {
	Image(board artboard.SourceArtboard) (*Image, error)
}

// ImageError reports which board's image could not be produced.
type ImageError struct {
	Board string
	Path  string
	Err   error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image for artboard %q (%s): %v", e.Board, e.Path, e.Err)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

// Is matches ErrImageUnavailable.
func (e *ImageError) Is(target error) bool {
	return target == ErrImageUnavailable
}

// FileSource reads board images from the board's Source path. Absolute
// paths are read from disk; relative paths from FS. PDF files are
// rasterised from their first page, once per path.
type FileSource struct {
	FS fs.FS

	mu       sync.Mutex
	rendered map[string]*Image
}

// Image implements ImageSource.
func (s *FileSource) Image(board artboard.SourceArtboard) (*Image, error) {
	if board.Source == "" {
		return nil, &ImageError{Board: board.Name, Err: errors.New("artboard has no source file")}
	}

	if IsPDF(board.Source) {
		img, err := s.pdfImage(board.Source)
		if err != nil {
			return nil, &ImageError{Board: board.Name, Path: board.Source, Err: err}
		}
		return img, nil
	}

	data, err := s.read(board.Source)
	if err != nil {
		return nil, &ImageError{Board: board.Name, Path: board.Source, Err: err}
	}
	w, h, err := images.Dimensions(data)
	if err != nil {
		return nil, &ImageError{Board: board.Name, Path: board.Source, Err: err}
	}
	return &Image{Key: board.Source, Width: w, Height: h, Data: data}, nil
}

func (s *FileSource) pdfImage(name string) (*Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if img, ok := s.rendered[name]; ok {
		return img, nil
	}

	data, err := s.read(name)
	if err != nil {
		return nil, err
	}
	img, err := renderPDF(data)
	if err != nil {
		return nil, err
	}
	img.Key = name
	if s.rendered == nil {
		s.rendered = make(map[string]*Image)
	}
	s.rendered[name] = img
	return img, nil
}

func (s *FileSource) read(name string) ([]byte, error) {
	if filepath.IsAbs(name) || s.FS == nil {
		return os.ReadFile(name)
	}
	return fs.ReadFile(s.FS, filepath.ToSlash(name))
}

// Input is a set of boards together with the source of their images.
type Input struct {
	Boards []artboard.SourceArtboard
	Images ImageSource
	// Details carries defaults supplied by the input, such as a job manifest.
	Details details.Details
	// Skipped lists PDF print files left out because they could not be read.
	Skipped []string

	closer io.Closer
}

// Close releases any archive the input holds open.
func (in *Input) Close() error {
	if in.closer == nil {
		return nil
	}
	return in.closer.Close()
}

// BoardRects returns the rectangles of every board.
func (in *Input) BoardRects() []layout.Rect {
	rects := make([]layout.Rect, len(in.Boards))
	for i, b := range in.Boards {
		rects[i] = b.Rect
	}
	return rects
}

var rasterExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true,
}

// IsRaster reports whether name has a supported raster extension.
func IsRaster(name string) bool {
	return rasterExts[strings.ToLower(path.Ext(name))]
}

func isJunk(name string) bool {
	base := path.Base(name)
	return base == ".DS_Store" || strings.HasPrefix(base, "._")
}

// underIgnoredFolder reports whether any directory of rel is a
// unit-number folder or macOS metadata.
func underIgnoredFolder(rel string) bool {
	dir := path.Dir(rel)
	if dir == "." {
		return false
	}
	for _, part := range strings.Split(dir, "/") {
		if part == "__MACOSX" || artboard.IsIgnored(part) {
			return true
		}
	}
	return false
}

// collect lists raster and PDF files in fsys that should become boards.
func collect(fsys fs.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "__MACOSX" {
				return fs.SkipDir
			}
			return nil
		}
		if isJunk(p) || !(IsRaster(p) || IsPDF(p)) || underIgnoredFolder(p) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := strings.ToLower(files[i]), strings.ToLower(files[j])
		if a != b {
			return a < b
		}
		return files[i] < files[j]
	})
	return files, nil
}

// scan builds the boards of fsys, prefixed by the explicit proof if any.
func scan(fsys fs.FS, proofPath string) (*Input, error) {
	files, err := collect(fsys)
	if err != nil {
		return nil, err
	}

	src := &FileSource{FS: fsys}
	var boards []artboard.SourceArtboard
	if proofPath != "" {
		abs, err := filepath.Abs(proofPath)
		if err != nil {
			return nil, err
		}
		boards = append(boards, artboard.SourceArtboard{Name: ProofBoardName, File: filepath.Base(abs), Source: abs})
	}
	for _, f := range files {
		stem := strings.TrimSuffix(path.Base(f), path.Ext(f))
		boards = append(boards, artboard.SourceArtboard{Name: stem, File: f, Source: f})
	}

	in := &Input{Images: src}
	x := 0.0
	for i, b := range boards {
		img, err := src.Image(b)
		if err != nil {
			// An unreadable print PDF is left out; a broken explicit proof is not.
			explicitProof := proofPath != "" && i == 0
			if errors.Is(err, ErrUnreadablePDF) && !explicitProof {
				in.Skipped = append(in.Skipped, b.File)
				continue
			}
			return nil, err
		}
		b.Index = len(in.Boards)
		b.Rect = layout.NewRect(x, 0, float64(img.Width), float64(img.Height))
		x = b.Rect.Right() + BoardGap
		in.Boards = append(in.Boards, b)
	}
	return in, nil
}

// ScanDir turns every raster or PDF file under root into an artboard
// named by its file stem. Unreadable PDFs are listed in Input.Skipped. proofPath, when set, is added first as the proof board.
func ScanDir(root, proofPath string) (*Input, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", root)
	}
	in, err := scan(os.DirFS(root), proofPath)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return in, nil
}

// ScanZip is ScanDir over a zip archive. The archive stays open until the
// returned input is closed.
func ScanZip(zipPath, proofPath string) (*Input, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", zipPath, err)
	}
	in, err := scan(zr, proofPath)
	if err != nil {
		zr.Close()
		return nil, fmt.Errorf("scan %s: %w", zipPath, err)
	}
	in.closer = zr
	return in, nil
}

var (
	nonWord    = regexp.MustCompile(`[^\w\s-]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// MaxFilenameLength bounds SafeFilename results.
const MaxFilenameLength = 120

// SafeFilename strips characters outside letters, digits, '_', '-' and
// spaces, then joins words with '_'. An empty result becomes "Spec_Sheet".
func SafeFilename(s string) string {
	s = nonWord.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "_")
	if len(s) > MaxFilenameLength {
		s = s[:MaxFilenameLength]
	}
	if s == "" {
		return "Spec_Sheet"
	}
	return s
}

// OutputName suggests the PDF file name for a job.
func OutputName(date time.Time, d details.Details) string {
	d = d.Normalize()
	return fmt.Sprintf("%s__%s__%s__Spec_Sheet.pdf",
		date.Format("2006-01-02"), SafeFilename(d.Customer), SafeFilename(d.Vehicle))
}
