// Package demod implements the per-symbol chirp demodulator: dechirp, FFT,
// peak-bin argmax, plus the shift-search variant used to lock the header.
package demod

import (
	"math"
	"math/cmplx"

	"github.com/jeongseonghan/lora-lite-phy/internal/chirp"
)

// Demod dechirps block against the workspace's reference downchirp, runs
// the size-N forward FFT and returns the index of the largest-magnitude
// bin. len(block) must equal ws.N().
func Demod(ws *chirp.Workspace, block []complex128) int {
	y := ws.Dechirp(block)
	spec := ws.FFT(y)
	return argmaxMag(spec)
}

func argmaxMag(spec []complex128) int {
	best := 0
	bestMag := -1.0
	for k, v := range spec {
		m := cmplx.Abs(v)
		if m > bestMag {
			bestMag = m
			best = k
		}
	}
	return best
}

// BestShift is the result of demod_best_shift: the winning bin and the
// integer sample shift that produced it.
type BestShift struct {
	Bin   int
	Shift int
}

// DemodBestShift explores integer shifts s in [-radius, +radius] around
// block's start, re-running Demod with CFO compensation eps (cycles per
// sample) applied before dechirping, and returns the (bin, shift) pair
// maximising a sharpness proxy: the winning bin's magnitude minus the
// average magnitude of its two neighbour bins. Only used by the header
// stage, which needs a finer lock than the coarse preamble/SFD search.
//
// block must supply radius extra samples of context on each side, i.e.
// len(block) == ws.N()+2*radius, with the nominal symbol starting at
// block[radius:radius+ws.N()].
func DemodBestShift(ws *chirp.Workspace, block []complex128, eps float64, radius int) BestShift {
	n := ws.N()
	bestSharpness := math.Inf(-1)
	var best BestShift

	compensated := make([]complex128, n)
	for s := -radius; s <= radius; s++ {
		start := radius + s
		if start < 0 || start+n > len(block) {
			continue
		}
		window := block[start : start+n]
		for i := 0; i < n; i++ {
			phase := -2 * math.Pi * eps * float64(i)
			compensated[i] = window[i] * cmplx.Exp(complex(0, phase))
		}

		y := ws.Dechirp(compensated)
		spec := ws.FFT(y)
		bin := argmaxMag(spec)
		sharpness := sharpnessProxy(spec, bin)
		if sharpness > bestSharpness {
			bestSharpness = sharpness
			best = BestShift{Bin: bin, Shift: s}
		}
	}
	return best
}

func sharpnessProxy(spec []complex128, bin int) float64 {
	n := len(spec)
	left := (bin - 1 + n) % n
	right := (bin + 1) % n
	neighbourAvg := (cmplx.Abs(spec[left]) + cmplx.Abs(spec[right])) / 2
	return cmplx.Abs(spec[bin]) - neighbourAvg
}
