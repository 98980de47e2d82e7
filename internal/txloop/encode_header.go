package txloop

import (
	"github.com/jeongseonghan/lora-lite-phy/internal/chirp"
	"github.com/jeongseonghan/lora-lite-phy/internal/codec"
	"github.com/jeongseonghan/lora-lite-phy/pkg/lora"
)

const headerBlockSymbols = 8
const headerNumBlocks = 2
const headerCodewordsPerBlock = 5

// encodeHeader inverts header.Decode: it packs the wire nibbles, computes
// the checksum, Hamming-encodes each codeword, applies the (self-inverse)
// diagonal interleaver and modulates the resulting sfApp-bit-per-symbol
// reduced bins back into chirp symbols.
func encodeHeader(ws *chirp.Workspace, payloadLen uint8, cr codec.CodeRate, hasCRC bool) ([]complex128, error) {
	n0 := payloadLen >> 4
	n1 := payloadLen & 0xF
	crcBit := uint8(0)
	if hasCRC {
		crcBit = 1
	}
	n2 := crcBit | uint8(cr.CRIndex())<<1

	c4, c3, c2, c1, c0 := headerChecksum(n0, n1, n2)

	nibbles := [10]uint8{
		n0, 0,
		n1, 0,
		n2, 0,
		c4, 0,
		c3<<3 | c2<<2 | c1<<1 | c0, 0,
	}

	sfApp := ws.SF() - 2
	il, err := ws.Interleaver(sfApp, headerBlockSymbols)
	if err != nil {
		return nil, lora.NewError(lora.KindInvalidConfig, "header interleaver setup", err)
	}

	n := ws.N()
	var out []complex128
	for b := 0; b < headerNumBlocks; b++ {
		cwBits := make([]byte, sfApp*headerBlockSymbols)
		for row := 0; row < headerCodewordsPerBlock; row++ {
			nibble := nibbles[b*headerCodewordsPerBlock+row]
			cw := codec.HammingEncode(nibble, codec.CR48)
			for col := 0; col < headerBlockSymbols; col++ {
				bit := (cw >> uint(headerBlockSymbols-1-col)) & 1
				cwBits[row*headerBlockSymbols+col] = bit
			}
		}

		bits := il.Permute(cwBits)
		for col := 0; col < headerBlockSymbols; col++ {
			var g uint32
			for row := 0; row < sfApp; row++ {
				g |= uint32(bits[row*headerBlockSymbols+col]) << uint(sfApp-1-row)
			}
			r := codec.GrayDecode(g)
			raw := int((r<<2 + 1) % uint32(n))
			out = append(out, chirp.ModulateSymbol(n, raw)...)
		}
	}
	return out, nil
}

func headerChecksum(n0, n1, n2 uint8) (c4, c3, c2, c1, c0 uint8) {
	bit := func(v uint8, k uint) uint8 { return (v >> k) & 1 }

	c4 = bit(n0, 3) ^ bit(n0, 2) ^ bit(n0, 1) ^ bit(n0, 0)
	c3 = bit(n0, 3) ^ bit(n1, 3) ^ bit(n1, 2) ^ bit(n1, 1) ^ bit(n2, 0)
	c2 = bit(n0, 2) ^ bit(n1, 3) ^ bit(n1, 0) ^ bit(n2, 3) ^ bit(n2, 1)
	c1 = bit(n0, 1) ^ bit(n1, 2) ^ bit(n1, 0) ^ bit(n2, 2) ^ bit(n2, 1) ^ bit(n2, 0)
	c0 = bit(n0, 0) ^ bit(n1, 1) ^ bit(n2, 3) ^ bit(n2, 2) ^ bit(n2, 1) ^ bit(n2, 0)
	return
}
