// Package artboard classifies named artboards into a proof, ignored boards
// and print items, parsing quantities from the board names.
package artboard

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/buffalographics/fleet-spec-sheet/pdf/layout"
)

// Classification errors.
var (
	ErrNoProof = errors.New("no proof artboard found; name an artboard \"PROOF\" or \"MOCKUP\"")
	ErrNoItems = errors.New("no print artboards found besides the proof")
)

// SourceArtboard is a named rectangular region of the source document.
type SourceArtboard struct {
	Name  string
	Index int
	Rect  layout.Rect
	// File is the display path shown in the manifest, relative to the
	// input root. Empty means the board name.
	File string
	// Source is where the board image is read from. Empty for boards that
	// only exist in memory.
	Source string
}

// ClassifiedItem is a print item with its parsed quantity.
type ClassifiedItem struct {
	Name        string
	File        string
	Quantity    int
	SourceIndex int
}

// ProofRef points at the artboard used as the proof image.
type ProofRef struct {
	SourceIndex int
}

// Classification is the result of Classify.
type Classification struct {
	Proof   *ProofRef
	Items   []ClassifiedItem
	Ignored []int
}

// Validate reports the fatal preconditions of a classification.
func (c Classification) Validate() error {
	if c.Proof == nil {
		return ErrNoProof
	}
	if len(c.Items) == 0 {
		return ErrNoItems
	}
	return nil
}

var (
	qtyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:^|[_\-\s])qty(?:[_\-\s]*)(\d+)(?:[_\-\s.]|$)`),
		regexp.MustCompile(`(?i)(?:^|[_\-\s])x(\d+)(?:[_\-\s.]|$)`),
		regexp.MustCompile(`(?i)(?:^|[_\-\s])(\d+)x(?:[_\-\s.]|$)`),
	}

	ignorePattern = regexp.MustCompile(`(?i)unit\s*(number|numbers|#|no\.?)`)

	proofExact = regexp.MustCompile(`(?i)^\s*(proof|mockup)\s*$`)
	proofToken = regexp.MustCompile(`(?i)(^|\s)(proof|mockup)($|\s)`)
)

// ParseQuantity extracts the print quantity encoded in a name. Supported
// forms are QTY2, QTY_2, QTY-2, QTY 2, x2 and 2x; anything else is 1, as
// is a zero or out of range count.
func ParseQuantity(name string) int {
	for _, re := range qtyPatterns {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		// The first matching form decides, even when its digits do not
		// fit an int.
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return 1
		}
		return n
	}
	return 1
}

// IsIgnored reports whether the name belongs to the "unit number" family.
func IsIgnored(name string) bool {
	return ignorePattern.MatchString(name)
}

// IsProof reports whether the name marks a proof or mockup board.
func IsProof(name string) bool {
	return proofExact.MatchString(name) || proofToken.MatchString(name)
}

// DisplayName returns the name used for matching and display.
func DisplayName(b SourceArtboard) string {
	name := norm.NFC.String(b.Name)
	if strings.TrimSpace(name) == "" {
		return fmt.Sprintf("Artboard %d", b.Index+1)
	}
	return name
}

// Classify partitions boards into ignored boards, a single proof and the
// ordered print items. Only the first proof-named board becomes the proof;
// later ones are regular items.
func Classify(boards []SourceArtboard) Classification {
	var c Classification

	for _, b := range boards {
		name := DisplayName(b)

		if IsIgnored(name) {
			c.Ignored = append(c.Ignored, b.Index)
			continue
		}

		if c.Proof == nil && IsProof(name) {
			c.Proof = &ProofRef{SourceIndex: b.Index}
			continue
		}

		file := name
		if b.File != "" {
			file = b.File
		}

		c.Items = append(c.Items, ClassifiedItem{
			Name:        name,
			File:        file,
			Quantity:    ParseQuantity(name),
			SourceIndex: b.Index,
		})
	}

	return c
}

// TotalQuantity returns the sum of item quantities.
func (c Classification) TotalQuantity() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}
