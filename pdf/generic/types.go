// Package generic provides the PDF object types the sheet writer emits.
package generic

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/encoding/unicode"
)

// PdfObject is the base interface for all PDF objects.
type PdfObject interface {
	// Write serializes the object to PDF format.
	Write(w io.Writer) error
}

// Reference represents an indirect reference to a PDF object.
type Reference struct {
	ObjectNumber     int
	GenerationNumber int
}

// NewReference creates a new reference.
func NewReference(objNum, genNum int) Reference {
	return Reference{ObjectNumber: objNum, GenerationNumber: genNum}
}

// Write implements PdfObject.
func (r Reference) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d %d R", r.ObjectNumber, r.GenerationNumber)
	return err
}

// String returns the reference in PDF syntax.
func (r Reference) String() string {
	return fmt.Sprintf("%d %d R", r.ObjectNumber, r.GenerationNumber)
}

// IndirectObject wraps an object with its object and generation numbers.
type IndirectObject struct {
	ObjectNumber     int
	GenerationNumber int
	Object           PdfObject
}

// NewIndirectObject creates a new indirect object.
func NewIndirectObject(objNum, genNum int, obj PdfObject) *IndirectObject {
	return &IndirectObject{ObjectNumber: objNum, GenerationNumber: genNum, Object: obj}
}

// Write implements PdfObject.
func (i *IndirectObject) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%d %d obj\n", i.ObjectNumber, i.GenerationNumber); err != nil {
		return err
	}
	if err := i.Object.Write(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\nendobj")
	return err
}

// Reference returns a reference to this object.
func (i *IndirectObject) Reference() Reference {
	return NewReference(i.ObjectNumber, i.GenerationNumber)
}

// NullObject represents the PDF null object.
type NullObject struct{}

// Write implements PdfObject.
func (NullObject) Write(w io.Writer) error {
	_, err := io.WriteString(w, "null")
	return err
}

// BooleanObject represents a PDF boolean.
type BooleanObject bool

// Write implements PdfObject.
func (b BooleanObject) Write(w io.Writer) error {
	_, err := io.WriteString(w, strconv.FormatBool(bool(b)))
	return err
}

// IntegerObject represents a PDF integer.
type IntegerObject int64

// Write implements PdfObject.
func (i IntegerObject) Write(w io.Writer) error {
	_, err := io.WriteString(w, strconv.FormatInt(int64(i), 10))
	return err
}

// RealObject represents a PDF real value.
type RealObject float64

// Write implements PdfObject.
func (r RealObject) Write(w io.Writer) error {
	_, err := io.WriteString(w, FormatReal(float64(r)))
	return err
}

// FormatReal formats a number with at most four decimals and no trailing
// zeros, the precision used throughout the sheet output.
func FormatReal(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// NameObject represents a PDF name object (e.g., /Type).
type NameObject string

var nameEscapeRegex = regexp.MustCompile(`[^!-~]|[#%/\[\]()<>{}]`)

// Write implements PdfObject.
func (n NameObject) Write(w io.Writer) error {
	escaped := nameEscapeRegex.ReplaceAllStringFunc(string(n), func(s string) string {
		var b strings.Builder
		for i := 0; i < len(s); i++ {
			fmt.Fprintf(&b, "#%02X", s[i])
		}
		return b.String()
	})
	_, err := fmt.Fprintf(w, "/%s", escaped)
	return err
}

// StringObject represents a PDF string object.
type StringObject struct {
	Value []byte
	IsHex bool
}

// NewLiteralString creates a new literal string.
func NewLiteralString(s string) *StringObject {
	return &StringObject{Value: []byte(s)}
}

// NewHexString creates a new hex string.
func NewHexString(data []byte) *StringObject {
	return &StringObject{Value: data, IsHex: true}
}

var utf16BOM = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)

// NewTextString creates a PDF text string. ASCII text is stored as-is;
// anything else is stored as UTF-16BE with a byte order mark.
func NewTextString(s string) *StringObject {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			encoded, err := utf16BOM.NewEncoder().Bytes([]byte(s))
			if err != nil {
				break
			}
			return &StringObject{Value: encoded}
		}
	}
	return &StringObject{Value: []byte(s)}
}

// Write implements PdfObject.
func (s *StringObject) Write(w io.Writer) error {
	if s.IsHex {
		_, err := fmt.Fprintf(w, "<%s>", hex.EncodeToString(s.Value))
		return err
	}
	_, err := w.Write(EscapeLiteral(s.Value))
	return err
}

// EscapeLiteral renders bytes as a parenthesized PDF literal string.
func EscapeLiteral(value []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for _, b := range value {
		switch b {
		case '\\':
			buf.WriteString("\\\\")
		case '(':
			buf.WriteString("\\(")
		case ')':
			buf.WriteString("\\)")
		case '\n':
			buf.WriteString("\\n")
		case '\r':
			buf.WriteString("\\r")
		case '\t':
			buf.WriteString("\\t")
		default:
			if b < 32 || b > 126 {
				fmt.Fprintf(&buf, "\\%03o", b)
			} else {
				buf.WriteByte(b)
			}
		}
	}
	buf.WriteByte(')')
	return buf.Bytes()
}

// Text returns the string value decoded as text.
func (s *StringObject) Text() string {
	if len(s.Value) >= 2 && s.Value[0] == 0xFE && s.Value[1] == 0xFF {
		decoded, err := utf16BOM.NewDecoder().Bytes(s.Value)
		if err == nil {
			return string(decoded)
		}
	}
	return string(s.Value)
}

// ArrayObject represents a PDF array.
type ArrayObject []PdfObject

// NewArray creates a new array.
func NewArray(items ...PdfObject) ArrayObject {
	return ArrayObject(items)
}

// Reals creates an array of real numbers.
func Reals(values ...float64) ArrayObject {
	arr := make(ArrayObject, len(values))
	for i, v := range values {
		arr[i] = RealObject(v)
	}
	return arr
}

// Write implements PdfObject.
func (a ArrayObject) Write(w io.Writer) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i, item := range a {
		if i > 0 {
			if _, err := io.WriteString(w, " "); err != nil {
				return err
			}
		}
		if err := item.Write(w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]")
	return err
}

// DictionaryObject represents a PDF dictionary. Keys are written in
// insertion order.
type DictionaryObject struct {
	entries map[string]PdfObject
	order   []string
}

// NewDictionary creates a new dictionary.
func NewDictionary() *DictionaryObject {
	return &DictionaryObject{entries: make(map[string]PdfObject)}
}

// Write implements PdfObject.
func (d *DictionaryObject) Write(w io.Writer) error {
	if _, err := io.WriteString(w, "<<"); err != nil {
		return err
	}
	for _, key := range d.order {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
		if err := NameObject(key).Write(w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, " "); err != nil {
			return err
		}
		if err := d.entries[key].Write(w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n>>")
	return err
}

// Set sets a key-value pair.
func (d *DictionaryObject) Set(key string, value PdfObject) {
	if _, exists := d.entries[key]; !exists {
		d.order = append(d.order, key)
	}
	d.entries[key] = value
}

// StreamObject represents a PDF stream. Data is written as given; callers
// set Filter when the data is already encoded.
type StreamObject struct {
	Dictionary *DictionaryObject
	Data       []byte
}

// NewStream creates a new stream.
func NewStream(dict *DictionaryObject, data []byte) *StreamObject {
	if dict == nil {
		dict = NewDictionary()
	}
	return &StreamObject{Dictionary: dict, Data: data}
}

// Write implements PdfObject.
func (s *StreamObject) Write(w io.Writer) error {
	s.Dictionary.Set("Length", IntegerObject(len(s.Data)))
	if err := s.Dictionary.Write(w); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\nstream\n"); err != nil {
		return err
	}
	if _, err := w.Write(s.Data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\nendstream")
	return err
}

// Rectangle represents a PDF rectangle (lower-left and upper-right coordinates).
type Rectangle struct {
	LLX, LLY float64
	URX, URY float64
}

// ToArray converts the rectangle to a PDF array.
func (r Rectangle) ToArray() ArrayObject {
	return Reals(r.LLX, r.LLY, r.URX, r.URY)
}

// Width returns the rectangle width.
func (r Rectangle) Width() float64 {
	return r.URX - r.LLX
}

// Height returns the rectangle height.
func (r Rectangle) Height() float64 {
	return r.URY - r.LLY
}

// ComputeFileID derives a 16-byte file identifier from document
// parameters. Keys are hashed in sorted order so equal inputs give equal IDs.
func ComputeFileID(info map[string]string) []byte {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h, _ := blake2b.New(16, nil)
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(info[k]))
		h.Write([]byte{0})
	}
	return h.Sum(nil)
}
