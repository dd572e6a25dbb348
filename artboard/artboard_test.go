package artboard

import (
	"errors"
	"testing"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"TRUCK_QTY3", 3},
		{"DOOR x2", 2},
		{"2x-DECAL", 2},
		{"PLAIN-DECAL", 1},
		{"CODE2024", 1},
		{"qty 12", 12},
		{"Hood QTY-4.png", 4},
		{"SIDE_qty_2_LEFT", 2},
		{"bumper X5", 5},
		{"3X tailgate", 3},
		{"xmas x", 1},
		{"max2 panel", 1},
		{"DOOR_QTY0", 1},
		// qty wins over x<n> regardless of position
		{"x9 DOOR QTY2", 2},
		// x<n> wins over <n>x
		{"4x DOOR x7", 7},
		// an out of range qty count still takes precedence
		{"QTY99999999999999999999 x3", 1},
		{"x99999999999999999999 4x", 1},
		{"", 1},
	}

	for _, tt := range tests {
		if got := ParseQuantity(tt.name); got != tt.want {
			t.Errorf("ParseQuantity(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestIsIgnored(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Unit Number", true},
		{"unit numbers", true},
		{"UNIT #", true},
		{"Unit No.", true},
		{"unit no", true},
		{"UnitNumber 14", true},
		{"Unit", false},
		{"Community Decal", false},
		{"Proof", false},
	}

	for _, tt := range tests {
		if got := IsIgnored(tt.name); got != tt.want {
			t.Errorf("IsIgnored(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsProof(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"PROOF", true},
		{"  mockup ", true},
		{"Proof Notes", true},
		{"Truck Mockup", true},
		{"Proofreading Notes", false},
		{"proof_1", false},
		{"Decal A", false},
	}

	for _, tt := range tests {
		if got := IsProof(tt.name); got != tt.want {
			t.Errorf("IsProof(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func boards(names ...string) []SourceArtboard {
	out := make([]SourceArtboard, len(names))
	for i, n := range names {
		out[i] = SourceArtboard{Name: n, Index: i}
	}
	return out
}

func TestClassifyFirstProofWins(t *testing.T) {
	c := Classify(boards("Mockup", "Proof", "Decal A"))

	if c.Proof == nil || c.Proof.SourceIndex != 0 {
		t.Fatalf("Proof = %+v, want index 0", c.Proof)
	}
	if len(c.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(c.Items))
	}
	if c.Items[0].Name != "Proof" || c.Items[0].SourceIndex != 1 {
		t.Errorf("Items[0] = %+v, want the second proof-named board", c.Items[0])
	}
	if c.Items[1].Name != "Decal A" || c.Items[1].Quantity != 1 {
		t.Errorf("Items[1] = %+v", c.Items[1])
	}
}

func TestClassifyIgnored(t *testing.T) {
	c := Classify(boards("Unit Number", "Unit No. Proof", "PROOF", "DOOR x2", "Unit #"))

	if c.Proof == nil || c.Proof.SourceIndex != 2 {
		t.Fatalf("Proof = %+v, want index 2", c.Proof)
	}
	if len(c.Ignored) != 3 {
		t.Errorf("Ignored = %v, want 3 boards", c.Ignored)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != 2 {
		t.Errorf("Items = %+v, want one DOOR x2 item", c.Items)
	}
}

func TestClassifyPreservesOrder(t *testing.T) {
	c := Classify(boards("C", "proof", "A", "B"))

	var got []string
	for _, it := range c.Items {
		got = append(got, it.Name)
	}
	want := []string{"C", "A", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Items order = %v, want %v", got, want)
			break
		}
	}
}

func TestClassifyFileName(t *testing.T) {
	in := []SourceArtboard{
		{Name: "proof", Index: 0},
		{Name: "Door", Index: 1},
		{Name: "Hood", Index: 2, File: "front/Hood.png", Source: "/jobs/42/front/Hood.png"},
	}
	c := Classify(in)

	if c.Items[0].File != "Door" {
		t.Errorf("Items[0].File = %q, want the name", c.Items[0].File)
	}
	if c.Items[1].File != "front/Hood.png" {
		t.Errorf("Items[1].File = %q, want the display path", c.Items[1].File)
	}
}

func TestClassifyBlankName(t *testing.T) {
	c := Classify(boards("proof", ""))
	if c.Items[0].Name != "Artboard 2" {
		t.Errorf("blank name = %q, want %q", c.Items[0].Name, "Artboard 2")
	}
}

func TestClassificationValidate(t *testing.T) {
	tests := []struct {
		names []string
		want  error
	}{
		{[]string{"Decal"}, ErrNoProof},
		{[]string{"Proof", "Unit Number"}, ErrNoItems},
		{[]string{"Proof", "Decal"}, nil},
		{nil, ErrNoProof},
	}

	for _, tt := range tests {
		err := Classify(boards(tt.names...)).Validate()
		if !errors.Is(err, tt.want) {
			t.Errorf("Classify(%v).Validate() = %v, want %v", tt.names, err, tt.want)
		}
	}
}

func TestTotalQuantity(t *testing.T) {
	c := Classify(boards("proof", "A QTY3", "B x2", "C"))
	if got := c.TotalQuantity(); got != 6 {
		t.Errorf("TotalQuantity() = %d, want 6", got)
	}
}
