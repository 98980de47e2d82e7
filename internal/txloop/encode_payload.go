package txloop

import (
	"github.com/jeongseonghan/lora-lite-phy/internal/chirp"
	"github.com/jeongseonghan/lora-lite-phy/internal/codec"
	"github.com/jeongseonghan/lora-lite-phy/internal/crcutil"
	"github.com/jeongseonghan/lora-lite-phy/pkg/lora"
)

// encodePayload inverts payload.Decode: whiten the payload bytes, append
// the CRC trailer when requested, split into nibbles, Hamming-encode,
// diagonally interleave and modulate each column back into a chirp
// symbol.
func encodePayload(ws *chirp.Workspace, data []byte, cr codec.CodeRate, hasCRC, ldro bool) ([]complex128, error) {
	whitened := codec.Dewhiten(data, 0) // whitening is an involution

	body := whitened
	if hasCRC {
		body = crcutil.AppendTrailerLE(append([]byte(nil), whitened...))
	}

	nibbles := make([]uint8, 0, len(body)*2)
	for _, b := range body {
		nibbles = append(nibbles, b&0xF, b>>4)
	}

	sfRows := ws.SF()
	if ldro {
		sfRows = ws.SF() - 2
	}
	cwCols := cr.CWLen()

	il, err := ws.Interleaver(sfRows, cwCols)
	if err != nil {
		return nil, lora.NewError(lora.KindInvalidConfig, "payload interleaver setup", err)
	}

	n := ws.N()
	numBlocks := (len(nibbles) + sfRows - 1) / sfRows
	var out []complex128
	for b := 0; b < numBlocks; b++ {
		cwBits := make([]byte, sfRows*cwCols)
		for row := 0; row < sfRows; row++ {
			idx := b*sfRows + row
			var nibble uint8
			if idx < len(nibbles) {
				nibble = nibbles[idx]
			}
			cw := codec.HammingEncode(nibble, cr)
			for col := 0; col < cwCols; col++ {
				bit := (cw >> uint(cwCols-1-col)) & 1
				cwBits[row*cwCols+col] = bit
			}
		}

		bits := il.Permute(cwBits)
		for col := 0; col < cwCols; col++ {
			var g uint32
			for row := 0; row < sfRows; row++ {
				g |= uint32(bits[row*cwCols+col]) << uint(sfRows-1-row)
			}
			raw := int(codec.GrayDecode(g))
			out = append(out, chirp.ModulateSymbol(n, raw)...)
		}
	}

	return out, nil
}
