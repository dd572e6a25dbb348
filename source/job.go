package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/buffalographics/fleet-spec-sheet/artboard"
	"github.com/buffalographics/fleet-spec-sheet/details"
	"github.com/buffalographics/fleet-spec-sheet/pdf/layout"
)

// ErrInvalidJob is wrapped by job manifest validation failures.
var ErrInvalidJob = errors.New("invalid job manifest")

// Job is a YAML job manifest: details defaults plus the document's
// artboards in order.
//
//	customer: Cornerstone Concrete
//	vehicle: MIXER
//	artboards:
//	  - name: PROOF
//	    image: proof.png
//	  - name: Door Logo QTY2
//	    image: door.png
//	    rect: [0, 0, 300, 200]
type Job struct {
	Customer  string        `yaml:"customer"`
	Vehicle   string        `yaml:"vehicle"`
	Artboards []JobArtboard `yaml:"artboards"`
}

// JobArtboard is one artboard of a job. Rect is [x, y, width, height] in
// points with y growing downward; boards without one are laid out from
// their image size.
type JobArtboard struct {
	Name  string    `yaml:"name"`
	Image string    `yaml:"image"`
	Rect  []float64 `yaml:"rect,omitempty"`
}

// LoadJob reads a job manifest. Image paths resolve against the
// manifest's directory.
func LoadJob(path string) (*Job, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read job %s: %w", path, err)
	}
	job, err := ParseJob(data)
	if err != nil {
		return nil, "", fmt.Errorf("job %s: %w", path, err)
	}
	return job, filepath.Dir(path), nil
}

// ParseJob parses and validates a job manifest.
func ParseJob(data []byte) (*Job, error) {
	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// Validate checks the manifest structure.
func (j *Job) Validate() error {
	if len(j.Artboards) == 0 {
		return fmt.Errorf("%w: no artboards", ErrInvalidJob)
	}
	for i, ab := range j.Artboards {
		if ab.Image == "" {
			return fmt.Errorf("%w: artboard %d (%q) has no image", ErrInvalidJob, i+1, ab.Name)
		}
		if ab.Rect != nil {
			if len(ab.Rect) != 4 {
				return fmt.Errorf("%w: artboard %d rect needs 4 numbers, got %d", ErrInvalidJob, i+1, len(ab.Rect))
			}
			if ab.Rect[2] <= 0 || ab.Rect[3] <= 0 {
				return fmt.Errorf("%w: artboard %d rect has no area", ErrInvalidJob, i+1)
			}
		}
	}
	return nil
}

// Input resolves the job's boards against baseDir. Boards without a rect
// read their image size, so a missing image fails here.
func (j *Job) Input(baseDir string) (*Input, error) {
	src := &FileSource{}
	boards := make([]artboard.SourceArtboard, len(j.Artboards))

	x := 0.0
	for i, ab := range j.Artboards {
		p := ab.Image
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		// File stays empty: job boards are shown by name only.
		board := artboard.SourceArtboard{Name: ab.Name, Index: i, Source: abs}

		if ab.Rect != nil {
			board.Rect = layout.NewRect(ab.Rect[0], ab.Rect[1], ab.Rect[2], ab.Rect[3])
		} else {
			img, err := src.Image(board)
			if err != nil {
				return nil, err
			}
			board.Rect = layout.NewRect(x, 0, float64(img.Width), float64(img.Height))
		}
		x = max(x, board.Rect.Right()+BoardGap)
		boards[i] = board
	}

	return &Input{
		Boards:  boards,
		Images:  src,
		Details: details.Details{Customer: j.Customer, Vehicle: j.Vehicle},
	}, nil
}
