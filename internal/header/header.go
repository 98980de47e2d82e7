// Package header implements the explicit-header decoder (C8): sync-locked
// symbol demodulation, Gray coding, diagonal de-interleaving, CR48 Hamming
// decoding and the 5-bit checksum verification of §6.
package header

import (
	"github.com/jeongseonghan/lora-lite-phy/internal/chirp"
	"github.com/jeongseonghan/lora-lite-phy/internal/codec"
	"github.com/jeongseonghan/lora-lite-phy/internal/demod"
	"github.com/jeongseonghan/lora-lite-phy/pkg/lora"
)

// blockSymbols is cw_cols: every header interleaver block spans exactly 8
// chip symbols, independent of SF.
const blockSymbols = 8

// numBlocks is the fixed two-block header layout of §4.8 step 3.
const numBlocks = 2

// codewordsPerBlock is how many of a block's sf_app rows carry header
// codewords. sf_app = SF-2 is always >= 5 for SF in [7,12]; only the first
// 5 rows of each block are meaningful, the remainder is unused padding
// rows inherent to the reduced-rate interleaver geometry.
const codewordsPerBlock = 5

// NSymbols is the number of chip symbols a caller must supply to Decode:
// two interleaver blocks of 8 symbols each.
const NSymbols = numBlocks * blockSymbols

// Decoded is the parsed header contract of §4.8.
type Decoded struct {
	PayloadLen uint8
	CR         codec.CodeRate
	HasCRC     bool
}

// Decode consumes exactly NSymbols aligned, CFO-compensated symbol blocks
// (each ws.N() samples long) starting at the header position and returns
// the parsed header, or a *lora.Error tagged KindHeaderInvalid /
// KindHeaderCrcFailed.
func Decode(ws *chirp.Workspace, symbols [][]complex128, cfoInteger int) (Decoded, error) {
	if len(symbols) != NSymbols {
		return Decoded{}, lora.NewError(lora.KindHeaderInvalid, "expected NSymbols symbol blocks", nil)
	}

	sfApp := ws.SF() - 2
	n := ws.N()

	il, err := ws.Interleaver(sfApp, blockSymbols)
	if err != nil {
		return Decoded{}, lora.NewError(lora.KindHeaderInvalid, "interleaver setup", err)
	}

	nibbles := make([]uint8, 0, numBlocks*codewordsPerBlock)
	for b := 0; b < numBlocks; b++ {
		bits := make([]byte, sfApp*blockSymbols)
		for col := 0; col < blockSymbols; col++ {
			symIdx := b*blockSymbols + col
			raw := demod.Demod(ws, symbols[symIdx])
			g := reducedBin(raw, cfoInteger, n, sfApp)
			g = codec.GrayEncode(uint32(g))
			for row := 0; row < sfApp; row++ {
				bit := (g >> uint(sfApp-1-row)) & 1
				bits[row*blockSymbols+col] = byte(bit)
			}
		}

		deint := il.Permute(bits)
		for row := 0; row < codewordsPerBlock; row++ {
			var cw uint8
			for col := 0; col < blockSymbols; col++ {
				cw |= deint[row*blockSymbols+col] << uint(blockSymbols-1-col)
			}
			res, err := codec.HammingDecodeStrict(cw, codec.CR48)
			if err != nil {
				return Decoded{}, lora.NewError(lora.KindHeaderInvalid, "header codeword uncorrectable", err)
			}
			nibbles = append(nibbles, res.Nibble)
		}
	}

	bytes := make([]uint8, len(nibbles)/2)
	for i := range bytes {
		lo := nibbles[2*i]
		hi := nibbles[2*i+1]
		bytes[i] = lo | hi<<4
	}
	if len(bytes) < 5 {
		return Decoded{}, lora.NewError(lora.KindHeaderInvalid, "short header byte count", nil)
	}

	n0, n1, n2 := bytes[0]&0xF, bytes[1]&0xF, bytes[2]&0xF
	c4, c3, c2, c1, c0 := checksum(n0, n1, n2)

	gotC4 := bytes[3] & 1
	gotC3 := (bytes[4] >> 3) & 1
	gotC2 := (bytes[4] >> 2) & 1
	gotC1 := (bytes[4] >> 1) & 1
	gotC0 := bytes[4] & 1

	if c4 != gotC4 || c3 != gotC3 || c2 != gotC2 || c1 != gotC1 || c0 != gotC0 {
		return Decoded{}, lora.NewError(lora.KindHeaderCrcFailed, "header checksum mismatch", nil)
	}

	payloadLen := n0<<4 | n1
	hasCRC := n2&1 != 0
	crIndex := int((n2 >> 1) & 0x7)

	cr, err := codec.ParseCodeRate(crIndex)
	if err != nil || payloadLen == 0 {
		return Decoded{}, lora.NewError(lora.KindHeaderInvalid, "invalid cr_index or zero payload_len", err)
	}

	return Decoded{PayloadLen: payloadLen, CR: cr, HasCRC: hasCRC}, nil
}

// reducedBin forms g = (((raw - cfoInteger) mod N - 1) mod N) >> 2, masked
// to sf_app bits.
func reducedBin(raw, cfoInteger, n, sfApp int) uint32 {
	v := mod(raw-cfoInteger, n)
	v = mod(v-1, n)
	v >>= 2
	mask := (1 << uint(sfApp)) - 1
	return uint32(v & mask)
}

func mod(x, m int) int {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}

// checksum computes c4..c0 from the three header nibbles per §6, with
// n[k] meaning bit k of nibble n.
func checksum(n0, n1, n2 uint8) (c4, c3, c2, c1, c0 uint8) {
	bit := func(n uint8, k uint) uint8 { return (n >> k) & 1 }

	c4 = bit(n0, 3) ^ bit(n0, 2) ^ bit(n0, 1) ^ bit(n0, 0)
	c3 = bit(n0, 3) ^ bit(n1, 3) ^ bit(n1, 2) ^ bit(n1, 1) ^ bit(n2, 0)
	c2 = bit(n0, 2) ^ bit(n1, 3) ^ bit(n1, 0) ^ bit(n2, 3) ^ bit(n2, 1)
	c1 = bit(n0, 1) ^ bit(n1, 2) ^ bit(n1, 0) ^ bit(n2, 2) ^ bit(n2, 1) ^ bit(n2, 0)
	c0 = bit(n0, 0) ^ bit(n1, 1) ^ bit(n2, 3) ^ bit(n2, 2) ^ bit(n2, 1) ^ bit(n2, 0)
	return
}
