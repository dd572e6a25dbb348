package fonts

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestNewFontMetrics(t *testing.T) {
	m := NewFontMetrics()

	if m.UnitsPerEm != 1000 {
		t.Errorf("Expected UnitsPerEm 1000, got %f", m.UnitsPerEm)
	}
	if m.Ascender != 800 {
		t.Errorf("Expected Ascender 800, got %f", m.Ascender)
	}
	if m.Widths == nil {
		t.Error("Widths map should not be nil")
	}
}

func TestHelveticaWidths(t *testing.T) {
	m := NewStandardFont(Helvetica).Metrics()

	tests := []struct {
		r    rune
		want float64
	}{
		{' ', 278},
		{'0', 556},
		{'@', 1015},
		{'A', 667},
		{'W', 944},
		{'i', 222},
		{'m', 833},
		{'~', 584},
		{'é', 556},
	}

	for _, tt := range tests {
		if got := m.GetWidth(tt.r); got != tt.want {
			t.Errorf("GetWidth(%q) = %v, want %v", tt.r, got, tt.want)
		}
	}

	// "AW" = 667 + 944 at 10pt
	if got := m.GetStringWidth("AW", 10); got != 16.11 {
		t.Errorf("GetStringWidth(AW, 10) = %v, want 16.11", got)
	}
}

func TestEncodeWinAnsi(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"ABC", []byte("ABC")},
		{"café", []byte{'c', 'a', 'f', 0xE9}},
		{"—", []byte{0x97}},
		{"€", []byte{0x80}},
		{"日本", []byte("??")},
	}

	for _, tt := range tests {
		if got := EncodeWinAnsi(tt.in); !bytes.Equal(got, tt.want) {
			t.Errorf("EncodeWinAnsi(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadTrueTypeFont(t *testing.T) {
	f, err := LoadTrueTypeFont(goregular.TTF)
	if err != nil {
		t.Fatalf("LoadTrueTypeFont() error = %v", err)
	}

	if f.Name() == "" {
		t.Error("font should have a name")
	}
	if f.Type() != FontTypeTrueType || f.IsCFF() {
		t.Errorf("type = %s cff=%v", f.Type(), f.IsCFF())
	}

	m := f.Metrics()
	if m.Ascender <= 0 || m.Descender >= 0 {
		t.Errorf("ascender/descender = %v/%v", m.Ascender, m.Descender)
	}
	if m.GetWidth('W') <= m.GetWidth('i') {
		t.Errorf("W (%v) should be wider than i (%v)", m.GetWidth('W'), m.GetWidth('i'))
	}
	if got := len(f.CharWidths()); got != WinAnsiLastChar-WinAnsiFirstChar+1 {
		t.Errorf("len(CharWidths()) = %d", got)
	}
	if !bytes.Equal(f.Data(), goregular.TTF) {
		t.Error("Data() should return the font file")
	}
}

func TestLoadTrueTypeFontInvalid(t *testing.T) {
	if _, err := LoadTrueTypeFont([]byte("tiny")); !errors.Is(err, ErrInvalidFont) {
		t.Errorf("short data error = %v, want ErrInvalidFont", err)
	}
	if _, err := LoadTrueTypeFont([]byte("wOFFxxxxxxxxxxxx")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("woff error = %v, want ErrUnsupportedFormat", err)
	}
	bad := append([]byte("\x00\x01\x00\x00"), make([]byte, 32)...)
	if _, err := LoadTrueTypeFont(bad); !errors.Is(err, ErrInvalidFont) {
		t.Errorf("corrupt data error = %v, want ErrInvalidFont", err)
	}
}

func TestFontRegistry(t *testing.T) {
	r := NewFontRegistry()
	helv := NewStandardFont(Helvetica)

	if ref := r.Register(helv); ref != "F1" {
		t.Errorf("Register() = %s, want F1", ref)
	}
	if ref := r.Register(NewStandardFont(Helvetica)); ref != "F1" {
		t.Errorf("second Register() = %s, want F1", ref)
	}
	if ref := r.Register(NewStandardFont(HelveticaBold)); ref != "F2" {
		t.Errorf("Register(bold) = %s, want F2", ref)
	}
	if len(r.Fonts()) != 2 || r.Ref(helv) != "F1" {
		t.Errorf("fonts = %d, ref = %s", len(r.Fonts()), r.Ref(helv))
	}
}

func TestResolverFindsByFileName(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "HudsonNY.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "broken.ttf"), []byte("garbage"), 0o644)

	r := &Resolver{Dirs: []string{dir}, Preferred: []string{"Hudson NY", "hudsonny"}, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	f := r.Resolve()
	if f.Type() != FontTypeTrueType {
		t.Errorf("Resolve() type = %s, want TrueType", f.Type())
	}
	if r.Resolve() != f {
		t.Error("Resolve() should return the same font on every call")
	}
}

func TestResolverContainsFallback(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "HudsonNYSerif-Light.ttf"), goregular.TTF, 0o644)

	r := &Resolver{Dirs: []string{dir}, Preferred: DefaultPreferred, Contains: DefaultContains}
	if _, err := r.Find(); err != nil {
		t.Errorf("Find() error = %v", err)
	}

	r.Contains = ""
	if _, err := r.Find(); !errors.Is(err, ErrFontUnavailable) {
		t.Errorf("Find() without fallback error = %v, want ErrFontUnavailable", err)
	}
}

func TestResolverFallsBackToStandard(t *testing.T) {
	r := &Resolver{Dirs: []string{filepath.Join(t.TempDir(), "missing")}, Preferred: DefaultPreferred, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	f := r.Resolve()
	if f.Name() != string(Helvetica) || f.Type() != FontTypeType1 {
		t.Errorf("Resolve() = %s %s, want standard Helvetica", f.Name(), f.Type())
	}
}
