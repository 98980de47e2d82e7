// Package txloop builds synthetic transmit waveforms by inverting the
// receive pipeline's codec stages. It exists to drive loopback tests and
// the golden-vector scenarios of spec §8 without a second, independently
// written encoder to keep in sync.
package txloop

import (
	"math"

	"github.com/jeongseonghan/lora-lite-phy/internal/chirp"
	"github.com/jeongseonghan/lora-lite-phy/internal/codec"
)

// Options configures a generated frame.
type Options struct {
	SF        int
	CR        codec.CodeRate
	HasCRC    bool
	SyncWord  byte
	MinSyms   int
	OS        int
	LeadZeros int // STO injection: leading zero samples before the preamble
	CFOCycles float64
	LDRO      bool
}

// GenerateFrame builds the at-rest-rate (pre-oversample) complex sample
// stream for one frame: min_syms reference upchirps, the two sync-word
// upchirps, the two-downchirp SFD, a quarter upchirp, the header block
// and the payload block. It then oversamples by Options.OS (zero-order
// hold) and injects LeadZeros silence and a per-sample CFO rotation to
// exercise the detector/estimator.
func GenerateFrame(ws *chirp.Workspace, payloadBytes []byte, opt Options) ([]complex128, error) {
	n := ws.N()

	var samples []complex128
	up := chirp.ModulateSymbol(n, 0)
	down := conj(up)

	for i := 0; i < opt.MinSyms; i++ {
		samples = append(samples, up...)
	}

	samples = append(samples, chirp.ModulateSymbol(n, int((opt.SyncWord>>4)<<3))...)
	samples = append(samples, chirp.ModulateSymbol(n, int((opt.SyncWord&0xF)<<3))...)
	samples = append(samples, down...)
	samples = append(samples, down...)
	samples = append(samples, up[:n/4]...)

	hdr, err := encodeHeader(ws, uint8(len(payloadBytes)), opt.CR, opt.HasCRC)
	if err != nil {
		return nil, err
	}
	samples = append(samples, hdr...)

	pld, err := encodePayload(ws, payloadBytes, opt.CR, opt.HasCRC, opt.LDRO)
	if err != nil {
		return nil, err
	}
	samples = append(samples, pld...)

	samples = oversample(samples, opt.OS)
	samples = applyCFO(samples, opt.CFOCycles)

	if opt.LeadZeros > 0 {
		lead := make([]complex128, opt.LeadZeros)
		samples = append(lead, samples...)
	}
	return samples, nil
}

func conj(x []complex128) []complex128 {
	out := make([]complex128, len(x))
	for i, v := range x {
		out[i] = complex(real(v), -imag(v))
	}
	return out
}

func oversample(x []complex128, os int) []complex128 {
	if os <= 1 {
		return x
	}
	out := make([]complex128, len(x)*os)
	for i, v := range x {
		for k := 0; k < os; k++ {
			out[i*os+k] = v
		}
	}
	return out
}

func applyCFO(x []complex128, cyclesPerSample float64) []complex128 {
	if cyclesPerSample == 0 {
		return x
	}
	out := make([]complex128, len(x))
	for i, v := range x {
		theta := -2 * math.Pi * cyclesPerSample * float64(i)
		out[i] = v * complex(math.Cos(theta), math.Sin(theta))
	}
	return out
}
