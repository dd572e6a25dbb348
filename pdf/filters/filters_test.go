package filters

import (
	"bytes"
	"errors"
	"testing"
)

func TestFlateEncodeDecode(t *testing.T) {
	content := bytes.Repeat([]byte("0 0 m 540 0 l S\n"), 64)

	encoded, err := Flate.Encode(content)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(encoded) >= len(content) {
		t.Errorf("encoded length %d should be below %d", len(encoded), len(content))
	}

	if Flate.Name() != "FlateDecode" {
		t.Errorf("Name() = %q, want FlateDecode", Flate.Name())
	}

	decoded, err := Flate.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(decoded, content) {
		t.Error("decoded data does not match the original")
	}
}

func TestFlateLevel(t *testing.T) {
	data := bytes.Repeat([]byte("spec sheet "), 200)
	fast, err := (&FlateDecodeFilter{Level: 1}).Encode(data)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := (&FlateDecodeFilter{Level: 42}).Encode(data); err == nil {
		t.Error("Encode should reject an invalid level")
	}
	if got, err := Flate.Decode(fast); err != nil || !bytes.Equal(got, data) {
		t.Errorf("Decode(level 1) = %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Flate.Decode([]byte("not zlib")); !errors.Is(err, ErrDecodeFailed) {
		t.Errorf("Decode(garbage) error = %v, want ErrDecodeFailed", err)
	}
}
