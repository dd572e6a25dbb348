package sheet

import (
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
)

// Encode writes the canonical text form of the laid out pages.
func Encode(w io.Writer, pages []PageOutput) {
	for _, p := range pages {
		fmt.Fprintf(w, "page %d %q first=%t last=%t items=%d target=%s\n",
			p.Page.Number, p.Context.Name, p.Page.IsFirst, p.Page.IsLast, len(p.Page.Items), encodeRect(p.Context.Target))
		for _, prim := range p.Primitives {
			prim.Encode(w)
		}
	}
}

// Digest returns a BLAKE2b-256 hash of the primitive stream. Identical
// inputs always produce the same digest.
func Digest(pages []PageOutput) string {
	h, _ := blake2b.New256(nil)
	Encode(h, pages)
	return hex.EncodeToString(h.Sum(nil))
}
