package codec

import "testing"

func TestHammingCR47CorrectsSingleBitError(t *testing.T) {
	for d := uint8(0); d < 16; d++ {
		cw := HammingEncode(d, CR47)
		for bit := 0; bit < 7; bit++ {
			corrupt := cw ^ (1 << uint(bit))
			res, err := HammingDecodeStrict(corrupt, CR47)
			if err != nil {
				t.Fatalf("nibble %d bit %d: unexpected error %v", d, bit, err)
			}
			if res.Nibble != d {
				t.Fatalf("nibble %d bit %d: got %d, corrected=%v", d, bit, res.Nibble, res.Corrected)
			}
			if !res.Corrected {
				t.Fatalf("nibble %d bit %d: expected Corrected=true", d, bit)
			}
		}
	}
}

func TestHammingCR48CorrectsSingleBitError(t *testing.T) {
	for d := uint8(0); d < 16; d++ {
		cw := HammingEncode(d, CR48)
		for bit := 0; bit < 8; bit++ {
			corrupt := cw ^ (1 << uint(bit))
			res, err := HammingDecodeStrict(corrupt, CR48)
			if err != nil {
				t.Fatalf("nibble %d bit %d: unexpected error %v", d, bit, err)
			}
			if res.Nibble != d {
				t.Fatalf("nibble %d bit %d: got %d", d, bit, res.Nibble)
			}
		}
	}
}

// CR45's parity p1=d0^d1^d3 gives the code minimum distance 1: the nibble
// 0100 (d2 set, all else clear) encodes to the unique weight-1 codeword
// (only bit 2 set), so XOR-ing bit 2 into any valid CR45 codeword lands
// exactly on the codeword for the nibble XORed with 0100 — a different,
// equally valid codeword, not a detectable error. Every other single-bit
// flip is detected (nonzero syndrome).
func TestHammingCR45DetectsWithoutMiscorrect(t *testing.T) {
	for d := uint8(0); d < 16; d++ {
		cw := HammingEncode(d, CR45)
		for bit := 0; bit < 5; bit++ {
			corrupt := cw ^ (1 << uint(bit))
			res, err := HammingDecodeStrict(corrupt, CR45)
			if bit == 2 {
				if err != nil {
					t.Fatalf("nibble %d bit 2: expected silent miscorrection, got error %v", d, err)
				}
				if want := d ^ 0x4; res.Nibble != want {
					t.Fatalf("nibble %d bit 2: got %d, want %d (indistinguishable codeword)", d, res.Nibble, want)
				}
				continue
			}
			if err != ErrUncorrectable {
				t.Fatalf("nibble %d bit %d: expected ErrUncorrectable, got %v", d, bit, err)
			}
		}
	}
}

// HammingDecodeNearest is an alias for HammingDecodeStrict (see hamming.go);
// it must reproduce the same distance-1 blind spot, not silently "recover"
// the original nibble.
func TestHammingDecodeNearestMatchesStrict(t *testing.T) {
	for _, cr := range []CodeRate{CR45, CR46, CR47, CR48} {
		for d := uint8(0); d < 16; d++ {
			cw := HammingEncode(d, cr)
			for bit := 0; bit < cr.CWLen(); bit++ {
				corrupt := cw ^ (1 << uint(bit))
				wantRes, wantErr := HammingDecodeStrict(corrupt, cr)
				gotRes, gotErr := HammingDecodeNearest(corrupt, cr)
				if gotErr != wantErr || gotRes != wantRes {
					t.Fatalf("cr=%d nibble %d bit %d: Nearest=(%+v,%v), Strict=(%+v,%v)", cr, d, bit, gotRes, gotErr, wantRes, wantErr)
				}
			}
		}
	}
}

func TestHammingDecodeZeroSyndromeAccepts(t *testing.T) {
	for _, cr := range []CodeRate{CR45, CR46, CR47, CR48} {
		for d := uint8(0); d < 16; d++ {
			cw := HammingEncode(d, cr)
			res, err := HammingDecodeStrict(cw, cr)
			if err != nil {
				t.Fatalf("cr=%d nibble %d: unexpected error %v", cr, d, err)
			}
			if res.Nibble != d || res.Corrected {
				t.Fatalf("cr=%d nibble %d: got %+v", cr, d, res)
			}
		}
	}
}
