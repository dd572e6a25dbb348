package generic

import (
	"bytes"
	"strings"
	"testing"
)

func render(t *testing.T, obj PdfObject) string {
	t.Helper()
	var buf bytes.Buffer
	if err := obj.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	return buf.String()
}

func TestScalarObjects(t *testing.T) {
	tests := []struct {
		obj      PdfObject
		expected string
	}{
		{NullObject{}, "null"},
		{BooleanObject(true), "true"},
		{BooleanObject(false), "false"},
		{IntegerObject(-123), "-123"},
		{RealObject(1.5), "1.5"},
		{RealObject(612), "612"},
		{RealObject(0.1 + 0.2), "0.3"},
		{RealObject(-0.00001), "0"},
		{NameObject("Type"), "/Type"},
		{NameObject("A B#"), "/A#20B#23"},
		{NewReference(7, 0), "7 0 R"},
	}

	for _, tt := range tests {
		if got := render(t, tt.obj); got != tt.expected {
			t.Errorf("Write(%#v) = %q, want %q", tt.obj, got, tt.expected)
		}
	}
}

func TestStringObjects(t *testing.T) {
	tests := []struct {
		obj      *StringObject
		expected string
	}{
		{NewLiteralString("Hello"), "(Hello)"},
		{NewLiteralString(`a(b)\c`), `(a\(b\)\\c)`},
		{NewLiteralString("x\ny"), `(x\ny)`},
		{NewHexString([]byte{0xDE, 0xAD}), "<dead>"},
	}

	for _, tt := range tests {
		if got := render(t, tt.obj); got != tt.expected {
			t.Errorf("Write(%q) = %q, want %q", tt.obj.Value, got, tt.expected)
		}
	}
}

func TestTextString(t *testing.T) {
	ascii := NewTextString("Spec Sheet")
	if string(ascii.Value) != "Spec Sheet" {
		t.Errorf("ASCII text = %q", ascii.Value)
	}

	unicode := NewTextString("Pg — 2")
	if !bytes.HasPrefix(unicode.Value, []byte{0xFE, 0xFF}) {
		t.Fatalf("unicode text should start with a BOM, got %x", unicode.Value)
	}
	if got := unicode.Text(); got != "Pg — 2" {
		t.Errorf("Text() = %q, want %q", got, "Pg — 2")
	}
}

func TestDictionaryOrder(t *testing.T) {
	d := NewDictionary()
	d.Set("Type", NameObject("Page"))
	d.Set("Count", IntegerObject(1))
	d.Set("Type", NameObject("Pages"))

	want := "<<\n/Type /Pages\n/Count 1\n>>"
	if got := render(t, d); got != want {
		t.Errorf("Write() = %q, want %q", got, want)
	}
}

func TestArrayAndRectangle(t *testing.T) {
	arr := NewArray(IntegerObject(1), NameObject("X"), NewLiteralString("s"))
	if got := render(t, arr); got != "[1 /X (s)]" {
		t.Errorf("array = %q", got)
	}

	r := Rectangle{LLX: 0, LLY: 0, URX: 612, URY: 792}
	if got := render(t, r.ToArray()); got != "[0 0 612 792]" {
		t.Errorf("rect = %q", got)
	}
	if r.Width() != 612 || r.Height() != 792 {
		t.Errorf("size = %vx%v", r.Width(), r.Height())
	}
}

func TestStreamAndIndirectObject(t *testing.T) {
	s := NewStream(nil, []byte("0 0 m"))
	obj := NewIndirectObject(3, 0, s)

	got := render(t, obj)
	for _, want := range []string{"3 0 obj\n", "/Length 5", "stream\n0 0 m\nendstream", "endobj"} {
		if !strings.Contains(got, want) {
			t.Errorf("indirect stream missing %q in %q", want, got)
		}
	}
	if obj.Reference() != NewReference(3, 0) {
		t.Errorf("Reference() = %v", obj.Reference())
	}
}

func TestComputeFileID(t *testing.T) {
	a := ComputeFileID(map[string]string{"digest": "abc", "pages": "2"})
	b := ComputeFileID(map[string]string{"pages": "2", "digest": "abc"})
	c := ComputeFileID(map[string]string{"digest": "abd", "pages": "2"})

	if len(a) != 16 {
		t.Errorf("len = %d, want 16", len(a))
	}
	if !bytes.Equal(a, b) {
		t.Error("equal inputs should give equal IDs")
	}
	if bytes.Equal(a, c) {
		t.Error("different inputs should give different IDs")
	}
}
