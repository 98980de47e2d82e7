// Package payload implements the payload decoder (C9): expected-symbol
// count, Gray coding, diagonal de-interleaving, per-code-rate Hamming
// decoding, de-whitening and CRC-16/CCITT verification.
package payload

import (
	"github.com/jeongseonghan/lora-lite-phy/internal/chirp"
	"github.com/jeongseonghan/lora-lite-phy/internal/codec"
	"github.com/jeongseonghan/lora-lite-phy/internal/crcutil"
	"github.com/jeongseonghan/lora-lite-phy/internal/demod"
	"github.com/jeongseonghan/lora-lite-phy/pkg/lora"
)

// ExpectedSymbols computes expected_symbols per §4.9 step 1: 8 symbols for
// the header-block term plus the payload blocks. The payload blocks alone
// span ExpectedSymbols-8 symbols.
func ExpectedSymbols(sf int, payloadLen int, cr codec.CodeRate, hasCRC, ldro bool) int {
	crc := 0
	if hasCRC {
		crc = 1
	}
	de := 0
	if ldro {
		de = 1
	}
	const ih = 0

	numerator := 8*payloadLen - 4*sf + 28 + 16*crc - 20*ih
	denom := 4 * (sf - 2*de)

	blocks := ceilDiv(numerator, denom)
	extra := blocks * (cr.CRIndex() + 4)
	if extra < 0 {
		extra = 0
	}
	return 8 + extra
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Result is the decoded payload and its CRC verdict.
type Result struct {
	Bytes []byte
	CRCOk bool
}

// Decode consumes len(symbols) aligned symbol blocks spanning the payload
// and decodes payloadLen bytes (plus a CRC trailer when hasCRC), following
// §4.9. It returns *lora.Error tagged KindFecUncorrectable when a codeword's
// syndrome cannot be resolved to a correction (CR47/CR48) or is simply
// nonzero (CR45/CR46, which carry no correction capability).
func Decode(ws *chirp.Workspace, symbols [][]complex128, payloadLen int, cr codec.CodeRate, hasCRC, ldro bool) (Result, error) {
	sfRows := ws.SF()
	if ldro {
		sfRows = ws.SF() - 2
	}
	cwCols := cr.CWLen()

	if cwCols <= 0 || len(symbols)%cwCols != 0 {
		return Result{}, lora.NewError(lora.KindFecUncorrectable, "symbol count not a multiple of cw_len", nil)
	}
	numBlocks := len(symbols) / cwCols

	il, err := ws.Interleaver(sfRows, cwCols)
	if err != nil {
		return Result{}, lora.NewError(lora.KindFecUncorrectable, "interleaver setup", err)
	}

	nibbles := make([]uint8, 0, numBlocks*sfRows)
	for b := 0; b < numBlocks; b++ {
		bits := make([]byte, sfRows*cwCols)
		for col := 0; col < cwCols; col++ {
			symIdx := b*cwCols + col
			raw := demod.Demod(ws, symbols[symIdx])
			g := codec.GrayEncode(uint32(raw) & uint32((1<<uint(ws.SF()))-1))
			for row := 0; row < sfRows; row++ {
				bit := (g >> uint(sfRows-1-row)) & 1
				bits[row*cwCols+col] = byte(bit)
			}
		}

		deint := il.Permute(bits)
		for row := 0; row < sfRows; row++ {
			var cw uint8
			for col := 0; col < cwCols; col++ {
				cw |= deint[row*cwCols+col] << uint(cwCols-1-col)
			}
			res, err := codec.HammingDecodeNearest(cw, cr)
			if err != nil {
				return Result{}, lora.NewError(lora.KindFecUncorrectable, "payload codeword uncorrectable", err)
			}
			nibbles = append(nibbles, res.Nibble)
		}
	}

	bytes := make([]byte, len(nibbles)/2)
	for i := range bytes {
		lo := nibbles[2*i]
		hi := nibbles[2*i+1]
		bytes[i] = lo | hi<<4
	}

	want := payloadLen
	if hasCRC {
		want += 2
	}
	if len(bytes) > want {
		bytes = bytes[:want]
	}
	if len(bytes) < want {
		return Result{}, lora.NewError(lora.KindFecUncorrectable, "short payload byte count", nil)
	}

	dewhitened := codec.Dewhiten(bytes[:payloadLen], 0)
	copy(bytes[:payloadLen], dewhitened)

	if !hasCRC {
		return Result{Bytes: bytes[:payloadLen], CRCOk: true}, nil
	}

	trailer := append(append([]byte{}, bytes[:payloadLen]...), bytes[payloadLen:payloadLen+2]...)
	_, ok := crcutil.VerifyTrailerLE(trailer)
	return Result{Bytes: bytes[:payloadLen], CRCOk: ok}, nil
}
