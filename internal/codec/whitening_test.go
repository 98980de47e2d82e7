package codec

import (
	"bytes"
	"testing"
)

func TestDewhitenIsInvolution(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, twice")
	once := Dewhiten(data, 0)
	twice := Dewhiten(once, 0)
	if !bytes.Equal(twice, data) {
		t.Fatalf("dewhiten twice should recover original: got %x want %x", twice, data)
	}
}

func TestDewhitenChangesData(t *testing.T) {
	data := bytes.Repeat([]byte{0x00}, 32)
	out := Dewhiten(data, 0)
	if bytes.Equal(out, data) {
		t.Fatal("dewhitening all-zero data should not be a no-op")
	}
}

func TestDewhitenOffsetWraps(t *testing.T) {
	data := make([]byte, 10)
	out := Dewhiten(data, 250)
	if len(out) != len(data) {
		t.Fatalf("unexpected output length %d", len(out))
	}
}

// TestWhiteningTableMatchesReferenceSequence locks the PN9 LFSR's tap and
// bit order against the first four bytes produced by the reference
// generator (taps bit0^bit4, MSB-first packing) from seed 0x1FF.
func TestWhiteningTableMatchesReferenceSequence(t *testing.T) {
	want := []byte{0xff, 0x83, 0xdf, 0x17}
	for i, b := range want {
		if whiteningTable[i] != b {
			t.Fatalf("whiteningTable[%d] = %#02x, want %#02x", i, whiteningTable[i], b)
		}
	}
}
