// Package sync implements preamble/SFD detection and the CFO/STO estimator
// that lock a candidate frame's oversampling factor, phase, frequency
// offset and sample timing before symbol demodulation begins.
package sync

import (
	"math/cmplx"

	"github.com/jeongseonghan/lora-lite-phy/internal/chirp"
	"github.com/jeongseonghan/lora-lite-phy/internal/dsp"
)

// DefaultOSCandidates is the oversampling search order used when the
// caller has no prior knowledge of the transmitter's OS.
var DefaultOSCandidates = []int{1, 2, 4, 8}

// Detection is the result of a successful preamble search.
type Detection struct {
	StartSampleRaw int
	OS             int
	Phase          int
}

// Detector runs the deterministic, first-match-wins preamble search of
// §4.3 across a set of oversampling candidates, reusing one decimator per
// OS value across calls.
type Detector struct {
	ws         *chirp.Workspace
	minSyms    int
	candidates []int
	decimators map[int]*dsp.Decimator
}

// NewDetector builds a detector over the given workspace. candidates
// defaults to DefaultOSCandidates when nil.
func NewDetector(ws *chirp.Workspace, minSyms int, candidates []int) (*Detector, error) {
	if candidates == nil {
		candidates = DefaultOSCandidates
	}
	d := &Detector{
		ws:         ws,
		minSyms:    minSyms,
		candidates: candidates,
		decimators: make(map[int]*dsp.Decimator, len(candidates)),
	}
	for _, os := range candidates {
		dec, err := dsp.NewDecimator(os, 60)
		if err != nil {
			return nil, err
		}
		d.decimators[os] = dec
	}
	return d, nil
}

// Detect searches raw for a run of at least minSyms reference upchirps,
// trying every OS candidate in order and every phase in [0, os). It
// returns the first candidate whose correlation clears the threshold, or
// ok=false if no candidate yields a sustained run (including when raw is
// too short to evaluate any candidate).
func (d *Detector) Detect(raw []complex128) (Detection, bool) {
	n := d.ws.N()
	up := d.ws.Upchirp()

	for _, os := range d.candidates {
		dec := d.decimators[os]
		for phase := 0; phase < os; phase++ {
			x, err := dec.Decimate(raw, phase)
			if err != nil || len(x) < n {
				continue
			}
			m := correlate(x, up)
			if len(m) == 0 {
				continue
			}

			maxMag := 0.0
			for _, v := range m {
				if v > maxMag {
					maxMag = v
				}
			}
			if maxMag == 0 {
				continue
			}
			tau := 0.4 * maxMag

			i0, found := firstSustainedRun(m, n, d.minSyms, tau)
			if !found {
				continue
			}

			start := i0*os + phase - dec.GroupDelay()
			if start < 0 {
				start = 0
			}
			return Detection{StartSampleRaw: start, OS: os, Phase: phase}, true
		}
	}
	return Detection{}, false
}

// correlate computes m[i] = |sum_n x[i+n]*conj(u[n])| for every valid i.
func correlate(x, u []complex128) []float64 {
	n := len(u)
	if len(x) < n {
		return nil
	}
	out := make([]float64, len(x)-n+1)
	for i := range out {
		var acc complex128
		for k := 0; k < n; k++ {
			acc += x[i+k] * cmplx.Conj(u[k])
		}
		out[i] = cmplx.Abs(acc)
	}
	return out
}

func firstSustainedRun(m []float64, n, minSyms int, tau float64) (int, bool) {
	for i0 := 0; i0 < len(m); i0++ {
		ok := true
		for k := 0; k < minSyms; k++ {
			idx := i0 + k*n
			if idx >= len(m) || m[idx] < tau {
				ok = false
				break
			}
		}
		if ok {
			return i0, true
		}
	}
	return 0, false
}

