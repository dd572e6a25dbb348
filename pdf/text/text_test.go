package text

import (
	"errors"
	"reflect"
	"testing"
)

// monoWidth treats every rune as one unit wide.
func monoWidth(s string) float64 {
	return float64(len([]rune(s)))
}

func TestWrap(t *testing.T) {
	tests := []struct {
		in       string
		maxWidth float64
		want     []string
	}{
		{"", 10, nil},
		{"YES   NO", 10, []string{"YES   NO"}},
		{"ISSUES / DAMAGE NOTES:", 10, []string{"ISSUES /", "DAMAGE", "NOTES:"}},
		{"ABCDEFGHIJ", 4, []string{"ABCD", "EFGH", "IJ"}},
		{"AB CDEFGHIJ K", 4, []string{"AB", "CDEF", "GHIJ", "K"}},
	}

	for _, tt := range tests {
		got := Wrap(tt.in, tt.maxWidth, monoWidth)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Wrap(%q, %v) = %q, want %q", tt.in, tt.maxWidth, got, tt.want)
		}
	}
}

func TestWrapNeverExceedsWidth(t *testing.T) {
	in := "FRONT/DRIVER_SIDE_DOOR_DECAL_QTY2.PNG AND SOME MORE WORDS"
	for _, w := range []float64{3, 8, 15, 40} {
		for _, line := range Wrap(in, w, monoWidth) {
			if monoWidth(line) > w {
				t.Errorf("Wrap(_, %v) produced %q", w, line)
			}
		}
	}
}

func TestAlignOffset(t *testing.T) {
	tests := []struct {
		align TextAlign
		want  float64
	}{
		{AlignLeft, 0},
		{AlignCenter, 30},
		{AlignRight, 60},
	}

	for _, tt := range tests {
		if got := tt.align.Offset(100, 40); got != tt.want {
			t.Errorf("%v.Offset(100, 40) = %v, want %v", tt.align, got, tt.want)
		}
	}
}

func TestParseTextAlign(t *testing.T) {
	tests := []struct {
		in   string
		want TextAlign
	}{
		{"left", AlignLeft},
		{"Centre", AlignCenter},
		{" center ", AlignCenter},
		{"RIGHT", AlignRight},
	}

	for _, tt := range tests {
		got, err := ParseTextAlign(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseTextAlign(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseTextAlign("justify"); !errors.Is(err, ErrUnknownAlign) {
		t.Errorf("ParseTextAlign(justify) error = %v, want ErrUnknownAlign", err)
	}
}
