package codec

import "testing"

func TestGrayRoundTrip(t *testing.T) {
	for x := uint32(0); x < 1<<12; x++ {
		g := GrayEncode(x)
		got := GrayDecode(g)
		if got != x {
			t.Fatalf("gray round trip failed for %d: got %d via gray %d", x, got, g)
		}
	}
}

func TestGrayEncodeAdjacentDiffersByOneBit(t *testing.T) {
	for x := uint32(0); x < 255; x++ {
		a := GrayEncode(x)
		b := GrayEncode(x + 1)
		diff := a ^ b
		if diff == 0 || diff&(diff-1) != 0 {
			t.Fatalf("gray(%d) and gray(%d) should differ by exactly one bit, got %#x and %#x", x, x+1, a, b)
		}
	}
}
