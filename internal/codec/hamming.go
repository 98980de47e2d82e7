package codec

import (
	"errors"
	"fmt"
	"math/bits"
)

// CodeRate enumerates the four supported coding rates. CRIndex() gives the
// cr_index used by cw_len = 4 + cr_index.
type CodeRate uint8

const (
	CR45 CodeRate = 1
	CR46 CodeRate = 2
	CR47 CodeRate = 3
	CR48 CodeRate = 4
)

// CRIndex returns the numeric cr_index carried in the header flags field.
func (cr CodeRate) CRIndex() int { return int(cr) }

// CWLen returns the encoded codeword width 4 + cr_index.
func (cr CodeRate) CWLen() int { return 4 + int(cr) }

// ParseCodeRate validates a cr_index from a decoded header against the
// closed enumeration {1,2,3,4}.
func ParseCodeRate(crIndex int) (CodeRate, error) {
	switch crIndex {
	case 1:
		return CR45, nil
	case 2:
		return CR46, nil
	case 3:
		return CR47, nil
	case 4:
		return CR48, nil
	default:
		return 0, fmt.Errorf("codec: cr_index %d out of range [1,4]", crIndex)
	}
}

// ErrUncorrectable is returned when a codeword's syndrome cannot be mapped
// to a single-bit correction (CR47/CR48), or when the syndrome is nonzero
// at all (CR45/CR46, which have no correction).
var ErrUncorrectable = errors.New("codec: hamming codeword uncorrectable")

// parities computes p1,p2,p3,p0 for a 4-bit nibble, matching the encoder
// relations in §4.6: p1=d0^d1^d3, p2=d0^d2^d3, p3=d1^d2^d3,
// p0=d0^d1^d2^d3^p1^p2^p3.
func parities(d uint8) (p1, p2, p3, p0 uint8) {
	d0 := d & 1
	d1 := (d >> 1) & 1
	d2 := (d >> 2) & 1
	d3 := (d >> 3) & 1
	p1 = d0 ^ d1 ^ d3
	p2 = d0 ^ d2 ^ d3
	p3 = d1 ^ d2 ^ d3
	p0 = d0 ^ d1 ^ d2 ^ d3 ^ p1 ^ p2 ^ p3
	return
}

// HammingEncode encodes a 4-bit nibble into the codeword for the given code
// rate. Bits are packed with d in bits [0:4), p1 in bit 4, p2 in bit 5, p3
// in bit 6 and p0 in bit 7 (present only as cw_len grows with cr_index).
func HammingEncode(nibble uint8, cr CodeRate) uint8 {
	d := nibble & 0xF
	p1, p2, p3, p0 := parities(d)
	switch cr {
	case CR45:
		return d | p1<<4
	case CR46:
		return d | p1<<4 | p2<<5
	case CR47:
		return d | p1<<4 | p2<<5 | p3<<6
	case CR48:
		return d | p1<<4 | p2<<5 | p3<<6 | p0<<7
	default:
		return d
	}
}

func parityBit(v uint8) uint8 {
	return uint8(bits.OnesCount8(v) & 1)
}

func syndrome(cw uint8, nbits int) uint8 {
	d0 := cw & 1
	d1 := (cw >> 1) & 1
	d2 := (cw >> 2) & 1
	d3 := (cw >> 3) & 1
	p1 := (cw >> 4) & 1
	p2 := (cw >> 5) & 1
	p3 := (cw >> 6) & 1

	s1 := (d0 ^ d1 ^ d3) ^ p1
	var s2, s3, s0 uint8
	if nbits >= 6 {
		s2 = (d0 ^ d2 ^ d3) ^ p2
	}
	if nbits >= 7 {
		s3 = (d1 ^ d2 ^ d3) ^ p3
	}
	if nbits == 8 {
		s0 = parityBit(cw)
	}
	return s0<<3 | s3<<2 | s2<<1 | s1
}

// singleBitSyndromeTable maps a nonzero syndrome to the bit index that
// produces it, built once from the all-zero codeword's single-bit-flip
// neighbourhood. Used for CR47/CR48 single-bit correction.
type singleBitSyndromeTable [16]int8

func buildSyndromeTable(nbits int) singleBitSyndromeTable {
	var t singleBitSyndromeTable
	for i := range t {
		t[i] = -1
	}
	for bit := 0; bit < nbits; bit++ {
		cw := uint8(1) << uint(bit)
		s := syndrome(cw, nbits)
		if int(s) < len(t) {
			t[s] = int8(bit)
		}
	}
	return t
}

var (
	synd47 = buildSyndromeTable(7)
	synd48 = buildSyndromeTable(8)
)

// HammingDecodeResult carries a decoded nibble and whether the codeword
// required single-bit correction.
type HammingDecodeResult struct {
	Nibble    uint8
	Corrected bool
}

// HammingDecodeStrict decodes a cw_len-bit codeword without the
// caller-discretion nearest-codeword fallback for CR45/CR46: any nonzero
// syndrome for those rates is reported as ErrUncorrectable.
func HammingDecodeStrict(codeword uint8, cr CodeRate) (HammingDecodeResult, error) {
	nbits := cr.CWLen()
	cw := codeword & uint8((1<<uint(nbits))-1)
	syn := syndrome(cw, nbits)
	nibble := cw & 0xF

	switch cr {
	case CR45, CR46:
		if syn != 0 {
			return HammingDecodeResult{}, ErrUncorrectable
		}
		return HammingDecodeResult{Nibble: nibble}, nil
	case CR47:
		return decodeCorrecting(cw, syn, synd47)
	case CR48:
		return decodeCorrecting(cw, syn, synd48)
	default:
		return HammingDecodeResult{}, fmt.Errorf("codec: unknown code rate %d", cr)
	}
}

func decodeCorrecting(cw, syn uint8, table singleBitSyndromeTable) (HammingDecodeResult, error) {
	if syn == 0 {
		return HammingDecodeResult{Nibble: cw & 0xF}, nil
	}
	idx := table[syn]
	if idx < 0 {
		return HammingDecodeResult{}, ErrUncorrectable
	}
	corrected := cw ^ (1 << uint(idx))
	return HammingDecodeResult{Nibble: corrected & 0xF, Corrected: true}, nil
}

// HammingDecodeNearest decodes a codeword for the given code rate. It is an
// alias for HammingDecodeStrict: CR45/CR46 have minimum codeword distance 1
// (flipping bit 2 of any CR45/CR46 codeword lands exactly on another valid
// codeword, since the all-data-zero-except-d2 nibble encodes to the unique
// weight-1 codeword), so no nearest-codeword search can distinguish a
// single-bit error from a legitimately different transmitted nibble for
// that bit. A prior version of this function searched for the
// minimum-distance candidate among all 16 codewords and accepted any unique
// match within distance 2; that search silently "corrected" bit-2 errors to
// the wrong nibble, since the corrupted word is, undetectably, already a
// valid codeword of Hamming distance 0. There is no sound repair for that
// case, so this now matches the reference decoder: any nonzero syndrome for
// CR45/CR46 is ErrUncorrectable, and a corruption that happens to land
// exactly on another codeword is accepted as that (wrong) codeword, exactly
// as it would be for any linear block code whose minimum distance is 1.
func HammingDecodeNearest(codeword uint8, cr CodeRate) (HammingDecodeResult, error) {
	return HammingDecodeStrict(codeword, cr)
}
