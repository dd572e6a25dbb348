package metadata

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"
)

func testDocument() Document {
	return Document{
		Title:    "SPEC SHEET (V1)",
		Subject:  "Acme <Concrete> & Sons / MIXER",
		Keywords: []string{"fleet", "spec sheet"},
		Creator:  "specsheet",
		Producer: "fleet-spec-sheet",
		Created:  time.Date(2024, 1, 15, 10, 30, 45, 0, time.FixedZone("Test", 3600)),
	}
}

func TestInfoEntries(t *testing.T) {
	entries := testDocument().InfoEntries()

	want := []InfoDictEntry{
		{"Title", "SPEC SHEET (V1)"},
		{"Subject", "Acme <Concrete> & Sons / MIXER"},
		{"Keywords", "fleet, spec sheet"},
		{"Creator", "specsheet"},
		{"Producer", "fleet-spec-sheet"},
		{"CreationDate", "D:20240115103045+01'00'"},
	}
	if len(entries) != len(want) {
		t.Fatalf("InfoEntries() returned %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, e, want[i])
		}
	}

	if got := (Document{Producer: "x"}).InfoEntries(); len(got) != 1 {
		t.Errorf("sparse document entries = %+v, want only Producer", got)
	}
}

func TestXMP(t *testing.T) {
	doc := testDocument()
	packet := doc.XMP()

	if string(packet) != string(doc.XMP()) {
		t.Error("XMP() should be deterministic")
	}
	if !strings.HasPrefix(string(packet), "<?xpacket begin=") || !strings.HasSuffix(string(packet), `<?xpacket end="r"?>`) {
		t.Error("XMP() should be wrapped in xpacket instructions")
	}

	// the packet must be well formed XML
	dec := xml.NewDecoder(strings.NewReader(string(packet)))
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			if err.Error() != "EOF" {
				t.Fatalf("XMP() is not well formed: %v", err)
			}
			break
		}
		if cd, ok := tok.(xml.CharData); ok {
			text.Write(cd)
		}
	}

	for _, want := range []string{"SPEC SHEET (V1)", "Acme <Concrete> & Sons / MIXER", "2024-01-15T10:30:45+01:00", "fleet, spec sheet"} {
		if !strings.Contains(text.String(), want) {
			t.Errorf("XMP() text is missing %q", want)
		}
	}
}

func TestFormatPDFDate(t *testing.T) {
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Date(2024, 1, 15, 10, 30, 45, 0, time.FixedZone("Test", 3600)), "D:20240115103045+01'00'"},
		{time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("IST", -(5*3600+30*60))), "D:20250102030405-05'30'"},
		{time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "D:20250601000000+00'00'"},
	}

	for _, tt := range tests {
		if got := FormatPDFDate(tt.t); got != tt.want {
			t.Errorf("FormatPDFDate(%v) = %s, want %s", tt.t, got, tt.want)
		}
	}
}

func TestParsePDFDate(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"D:20240115103045+01'00'", false},
		{"D:20240115103045", false},
		{"D:20240115", false},
		{"invalid", true},
		{"20240115", true}, // Missing D: prefix
	}

	for _, tt := range tests {
		result, err := ParsePDFDate(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePDFDate(%s) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePDFDate(%s) unexpected error: %v", tt.input, err)
		}
		if result.Year() != 2024 || result.Day() != 15 {
			t.Errorf("ParsePDFDate(%s) = %v", tt.input, result)
		}
	}

	created := testDocument().Created
	parsed, err := ParsePDFDate(FormatPDFDate(created))
	if err != nil || !parsed.Equal(created) {
		t.Errorf("ParsePDFDate(FormatPDFDate(t)) = %v, %v, want %v", parsed, err, created)
	}
}
