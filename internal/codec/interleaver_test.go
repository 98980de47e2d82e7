package codec

import (
	"math/rand"
	"testing"
)

func TestInterleaverIsInvolution(t *testing.T) {
	cases := []struct{ sfRows, cwCols int }{
		{5, 8}, {7, 8}, {10, 8},
		{7, 5}, {7, 6}, {7, 7}, {7, 8},
		{12, 5}, {10, 8},
	}
	rng := rand.New(rand.NewSource(1))

	for _, c := range cases {
		il, err := New(c.sfRows, c.cwCols)
		if err != nil {
			t.Fatalf("New(%d,%d): %v", c.sfRows, c.cwCols, err)
		}

		bits := make([]byte, c.sfRows*c.cwCols)
		for i := range bits {
			bits[i] = byte(rng.Intn(2))
		}

		once := il.Permute(bits)
		twice := il.Permute(once)

		for i := range bits {
			if twice[i] != bits[i] {
				t.Fatalf("sfRows=%d cwCols=%d: permutation is not an involution at index %d", c.sfRows, c.cwCols, i)
			}
		}
	}
}

func TestInterleaverCachePersists(t *testing.T) {
	c := NewCache()
	a, err := c.Get(5, 8)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, err := c.Get(5, 8)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a != b {
		t.Fatalf("expected cached interleaver to be reused")
	}
	if len(c.entries) != 1 {
		t.Fatalf("expected one cache entry after repeated Get, got %d", len(c.entries))
	}
}

func TestInterleaverInvalidGeometry(t *testing.T) {
	if _, err := New(0, 8); err == nil {
		t.Fatal("expected error for zero sfRows")
	}
	if _, err := New(5, 0); err == nil {
		t.Fatal("expected error for zero cwCols")
	}
}
