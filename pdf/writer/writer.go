// Package writer assembles spec sheet pages into a PDF file.
package writer

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/buffalographics/fleet-spec-sheet/pdf/filters"
	"github.com/buffalographics/fleet-spec-sheet/pdf/fonts"
	"github.com/buffalographics/fleet-spec-sheet/pdf/generic"
	"github.com/buffalographics/fleet-spec-sheet/pdf/images"
	"github.com/buffalographics/fleet-spec-sheet/pdf/metadata"
)

// DefaultProducer is written to the document info dictionary.
const DefaultProducer = "fleet-spec-sheet"

// PageResources names the fonts and XObjects a page content stream uses.
type PageResources struct {
	Fonts    map[string]generic.Reference
	XObjects map[string]generic.Reference
}

// PdfFileWriter creates new PDF files.
type PdfFileWriter struct {
	Version  string
	Title    string
	Subject  string
	Keywords []string
	Creator  string
	Producer string
	// Now stamps CreationDate; tests fix it to get byte-identical output.
	Now func() time.Time
	// Compress Flate encodes page content streams.
	Compress bool
	FileID   []byte

	objects  []*generic.IndirectObject
	root     *generic.DictionaryObject
	pages    *generic.DictionaryObject
	kids     generic.ArrayObject
	pagesRef generic.Reference
}

// NewPdfFileWriter creates a new PDF writer.
func NewPdfFileWriter(version string) *PdfFileWriter {
	if version == "" {
		version = "1.7"
	}

	w := &PdfFileWriter{
		Version:  version,
		Producer: DefaultProducer,
		Now:      time.Now,
		Compress: true,
	}

	w.pages = generic.NewDictionary()
	w.pages.Set("Type", generic.NameObject("Pages"))
	w.pagesRef = w.AddObject(w.pages)

	w.root = generic.NewDictionary()
	w.root.Set("Type", generic.NameObject("Catalog"))
	w.root.Set("Pages", w.pagesRef)
	return w
}

// AddObject adds an object and returns its reference.
func (w *PdfFileWriter) AddObject(obj generic.PdfObject) generic.Reference {
	ind := generic.NewIndirectObject(len(w.objects)+1, 0, obj)
	w.objects = append(w.objects, ind)
	return ind.Reference()
}

// PageCount returns the number of pages added so far.
func (w *PdfFileWriter) PageCount() int {
	return len(w.kids)
}

// AddPage adds a page with the given media box, content and resources.
func (w *PdfFileWriter) AddPage(mediaBox generic.Rectangle, contents []byte, res PageResources) (generic.Reference, error) {
	stream := generic.NewStream(nil, contents)
	if w.Compress {
		encoded, err := filters.Flate.Encode(contents)
		if err != nil {
			return generic.Reference{}, fmt.Errorf("compress page content: %w", err)
		}
		stream.Data = encoded
		stream.Dictionary.Set("Filter", generic.NameObject("FlateDecode"))
	}
	contentsRef := w.AddObject(stream)

	resources := generic.NewDictionary()
	resources.Set("ProcSet", generic.NewArray(
		generic.NameObject("PDF"), generic.NameObject("Text"), generic.NameObject("ImageC"), generic.NameObject("ImageB")))
	if len(res.Fonts) > 0 {
		resources.Set("Font", refDict(res.Fonts))
	}
	if len(res.XObjects) > 0 {
		resources.Set("XObject", refDict(res.XObjects))
	}

	page := generic.NewDictionary()
	page.Set("Type", generic.NameObject("Page"))
	page.Set("Parent", w.pagesRef)
	page.Set("MediaBox", mediaBox.ToArray())
	page.Set("Resources", resources)
	page.Set("Contents", contentsRef)

	pageRef := w.AddObject(page)
	w.kids = append(w.kids, pageRef)
	return pageRef, nil
}

// refDict builds a resource sub-dictionary with keys in sorted order.
func refDict(refs map[string]generic.Reference) *generic.DictionaryObject {
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)

	d := generic.NewDictionary()
	for _, name := range names {
		d.Set(name, refs[name])
	}
	return d
}

// AddFont adds a font dictionary. TrueType fonts are embedded in full.
func (w *PdfFileWriter) AddFont(f fonts.Font) (generic.Reference, error) {
	font := generic.NewDictionary()
	font.Set("Type", generic.NameObject("Font"))
	font.Set("BaseFont", generic.NameObject(f.Name()))

	switch ft := f.(type) {
	case *fonts.TrueTypeFont:
		font.Set("Subtype", generic.NameObject("TrueType"))
		font.Set("FirstChar", generic.IntegerObject(fonts.WinAnsiFirstChar))
		font.Set("LastChar", generic.IntegerObject(fonts.WinAnsiLastChar))
		font.Set("Widths", generic.Reals(ft.CharWidths()...))
		font.Set("Encoding", generic.NameObject("WinAnsiEncoding"))

		fileRef, err := w.addFontFile(ft)
		if err != nil {
			return generic.Reference{}, err
		}
		font.Set("FontDescriptor", w.AddObject(fontDescriptor(ft, fileRef)))
	default:
		font.Set("Subtype", generic.NameObject(string(f.Type())))
		font.Set("Encoding", generic.NameObject("WinAnsiEncoding"))
	}
	return w.AddObject(font), nil
}

func (w *PdfFileWriter) addFontFile(f *fonts.TrueTypeFont) (generic.Reference, error) {
	data := f.Data()
	encoded, err := filters.Flate.Encode(data)
	if err != nil {
		return generic.Reference{}, fmt.Errorf("compress font %s: %w", f.Name(), err)
	}
	stream := generic.NewStream(nil, encoded)
	stream.Dictionary.Set("Filter", generic.NameObject("FlateDecode"))
	if f.IsCFF() {
		stream.Dictionary.Set("Subtype", generic.NameObject("OpenType"))
	} else {
		stream.Dictionary.Set("Length1", generic.IntegerObject(len(data)))
	}
	return w.AddObject(stream), nil
}

func fontDescriptor(f *fonts.TrueTypeFont, fileRef generic.Reference) *generic.DictionaryObject {
	m := f.Metrics()
	d := generic.NewDictionary()
	d.Set("Type", generic.NameObject("FontDescriptor"))
	d.Set("FontName", generic.NameObject(f.Name()))
	d.Set("Flags", generic.IntegerObject(32)) // nonsymbolic
	d.Set("FontBBox", generic.Reals(m.BBox[:]...))
	d.Set("ItalicAngle", generic.RealObject(m.ItalicAngle))
	d.Set("Ascent", generic.RealObject(m.Ascender))
	d.Set("Descent", generic.RealObject(m.Descender))
	d.Set("CapHeight", generic.RealObject(m.CapHeight))
	d.Set("StemV", generic.RealObject(m.StemV))
	if f.IsCFF() {
		d.Set("FontFile3", fileRef)
	} else {
		d.Set("FontFile2", fileRef)
	}
	return d
}

// AddImage adds an image XObject, with its soft mask when it has one.
func (w *PdfFileWriter) AddImage(img *images.PDFImage) generic.Reference {
	dict := imageDict(img.Width, img.Height, img.BitsPerComponent, img.ColorSpace, img.Filter)
	if img.HasAlpha() {
		mask := generic.NewStream(imageDict(img.Width, img.Height, 8, images.ColorSpaceGray, "FlateDecode"), img.AlphaData)
		dict.Set("SMask", w.AddObject(mask))
	}
	return w.AddObject(generic.NewStream(dict, img.Data))
}

func imageDict(width, height, bpc int, cs images.ColorSpace, filter string) *generic.DictionaryObject {
	d := generic.NewDictionary()
	d.Set("Type", generic.NameObject("XObject"))
	d.Set("Subtype", generic.NameObject("Image"))
	d.Set("Width", generic.IntegerObject(width))
	d.Set("Height", generic.IntegerObject(height))
	d.Set("ColorSpace", generic.NameObject(string(cs)))
	d.Set("BitsPerComponent", generic.IntegerObject(bpc))
	if filter != "" {
		d.Set("Filter", generic.NameObject(filter))
	}
	return d
}

// Write writes the PDF to the given writer.
func (w *PdfFileWriter) Write(out io.Writer) error {
	if len(w.kids) == 0 {
		return fmt.Errorf("pdf has no pages")
	}

	w.pages.Set("Kids", w.kids)
	w.pages.Set("Count", generic.IntegerObject(len(w.kids)))

	meta := metadata.Document{
		Title:    w.Title,
		Subject:  w.Subject,
		Keywords: w.Keywords,
		Creator:  w.Creator,
		Producer: w.Producer,
		Created:  w.Now(),
	}
	xmp := generic.NewStream(nil, meta.XMP())
	xmp.Dictionary.Set("Type", generic.NameObject("Metadata"))
	xmp.Dictionary.Set("Subtype", generic.NameObject("XML"))
	w.root.Set("Metadata", w.AddObject(xmp))
	rootRef := w.AddObject(w.root)

	info := generic.NewDictionary()
	var created string
	for _, e := range meta.InfoEntries() {
		if e.Key == "CreationDate" {
			created = e.Value
			info.Set(e.Key, generic.NewLiteralString(e.Value))
			continue
		}
		info.Set(e.Key, generic.NewTextString(e.Value))
	}
	infoRef := w.AddObject(info)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n", w.Version)
	// Binary comment (per PDF spec)
	buf.Write([]byte{0x25, 0xE2, 0xE3, 0xCF, 0xD3, 0x0A})

	offsets := make([]int, len(w.objects))
	for i, obj := range w.objects {
		offsets[i] = buf.Len()
		if err := obj.Write(&buf); err != nil {
			return fmt.Errorf("write object %d: %w", obj.ObjectNumber, err)
		}
		buf.WriteByte('\n')
	}

	if w.FileID == nil {
		body := blake2b.Sum256(buf.Bytes())
		w.FileID = generic.ComputeFileID(map[string]string{
			"body":    hex.EncodeToString(body[:]),
			"created": created,
			"version": w.Version,
		})
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(w.objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	trailer := generic.NewDictionary()
	trailer.Set("Size", generic.IntegerObject(len(w.objects)+1))
	trailer.Set("Root", rootRef)
	trailer.Set("Info", infoRef)
	trailer.Set("ID", generic.NewArray(generic.NewHexString(w.FileID), generic.NewHexString(w.FileID)))

	buf.WriteString("trailer\n")
	trailer.Write(&buf)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err := out.Write(buf.Bytes())
	return err
}
