// Package metadata provides PDF document metadata: the info dictionary
// entries and the matching XMP packet.
package metadata

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// XML namespace URIs
const (
	NSRDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSXMP = "http://ns.adobe.com/xap/1.0/"
	NSDC  = "http://purl.org/dc/elements/1.1/"
	NSPDF = "http://ns.adobe.com/pdf/1.3/"
	NSX   = "adobe:ns:meta/"
)

// Document is the metadata of a generated document.
type Document struct {
	// Title is the document's title.
	Title string

	// Subject is the document's subject.
	Subject string

	// Keywords are keywords associated with the document.
	Keywords []string

	// Creator is the software that authored the document.
	Creator string

	// Producer is the software that produced the PDF.
	Producer string

	// Created is when the document was created. Zero means unknown.
	Created time.Time
}

// InfoDictEntry represents an entry in the PDF info dictionary.
type InfoDictEntry struct {
	Key   string
	Value string
}

// InfoEntries returns the info dictionary entries in a fixed order.
func (d Document) InfoEntries() []InfoDictEntry {
	var entries []InfoDictEntry

	if d.Title != "" {
		entries = append(entries, InfoDictEntry{Key: "Title", Value: d.Title})
	}
	if d.Subject != "" {
		entries = append(entries, InfoDictEntry{Key: "Subject", Value: d.Subject})
	}
	if len(d.Keywords) > 0 {
		entries = append(entries, InfoDictEntry{Key: "Keywords", Value: strings.Join(d.Keywords, ", ")})
	}
	if d.Creator != "" {
		entries = append(entries, InfoDictEntry{Key: "Creator", Value: d.Creator})
	}
	if d.Producer != "" {
		entries = append(entries, InfoDictEntry{Key: "Producer", Value: d.Producer})
	}
	if !d.Created.IsZero() {
		entries = append(entries, InfoDictEntry{Key: "CreationDate", Value: FormatPDFDate(d.Created)})
	}

	return entries
}

// XMP serializes the metadata as an XMP packet. Output is deterministic.
func (d Document) XMP() []byte {
	var buf bytes.Buffer

	buf.WriteString("<?xpacket begin=\"\ufeff\" id=\"W5M0MpCehiHzreSzNTczkc9d\"?>\n")
	fmt.Fprintf(&buf, "<x:xmpmeta xmlns:x=\"%s\">\n", NSX)
	fmt.Fprintf(&buf, "<rdf:RDF xmlns:rdf=\"%s\">\n", NSRDF)
	fmt.Fprintf(&buf, "<rdf:Description rdf:about=\"\" xmlns:dc=\"%s\" xmlns:pdf=\"%s\" xmlns:xmp=\"%s\">\n", NSDC, NSPDF, NSXMP)

	if d.Title != "" {
		writeAlt(&buf, "dc:title", d.Title)
	}
	if d.Subject != "" {
		writeAlt(&buf, "dc:description", d.Subject)
	}
	if len(d.Keywords) > 0 {
		writeSimple(&buf, "pdf:Keywords", strings.Join(d.Keywords, ", "))
	}
	if d.Creator != "" {
		writeSimple(&buf, "xmp:CreatorTool", d.Creator)
	}
	if d.Producer != "" {
		writeSimple(&buf, "pdf:Producer", d.Producer)
	}
	if !d.Created.IsZero() {
		writeSimple(&buf, "xmp:CreateDate", d.Created.Format(time.RFC3339))
	}

	buf.WriteString("</rdf:Description>\n")
	buf.WriteString("</rdf:RDF>\n")
	buf.WriteString("</x:xmpmeta>\n")
	buf.WriteString("<?xpacket end=\"r\"?>")
	return buf.Bytes()
}

func writeSimple(buf *bytes.Buffer, tag, value string) {
	fmt.Fprintf(buf, "<%s>%s</%s>\n", tag, escapeXML(value), tag)
}

func writeAlt(buf *bytes.Buffer, tag, value string) {
	fmt.Fprintf(buf, "<%s>\n<rdf:Alt>\n<rdf:li xml:lang=\"x-default\">%s</rdf:li>\n</rdf:Alt>\n</%s>\n",
		tag, escapeXML(value), tag)
}

// escapeXML escapes special XML characters.
func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// FormatPDFDate formats a time as a PDF date string (D:YYYYMMDDHHmmSSOHH'mm').
func FormatPDFDate(t time.Time) string {
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}

	return fmt.Sprintf("D:%04d%02d%02d%02d%02d%02d%s%02d'%02d'",
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(),
		sign, offset/3600, (offset%3600)/60)
}

// ParsePDFDate parses a PDF date string.
func ParsePDFDate(s string) (time.Time, error) {
	if !strings.HasPrefix(s, "D:") {
		return time.Time{}, fmt.Errorf("invalid PDF date: missing D: prefix")
	}

	s = s[2:]
	s = strings.ReplaceAll(s, "'", "")

	formats := []string{
		"20060102150405-0700",
		"20060102150405Z",
		"20060102150405",
		"200601021504",
		"2006010215",
		"20060102",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse PDF date: %s", s)
}
