// Package dsp implements the polyphase decimation filter that brings a raw
// oversampled IQ stream down to one sample per chip before symbol sync and
// demodulation.
package dsp

import (
	"math"

	"gonum.org/v1/gonum/dsp/window"
)

// kaiserBeta derives the Kaiser window shape parameter from a target
// stopband attenuation in dB, using the standard Kaiser approximation
// (Oppenheim & Schafer, eq. 7.75).
func kaiserBeta(attenuationDB float64) float64 {
	switch {
	case attenuationDB > 50:
		return 0.1102 * (attenuationDB - 8.7)
	case attenuationDB >= 21:
		return 0.5842*math.Pow(attenuationDB-21, 0.4) + 0.07886*(attenuationDB-21)
	default:
		return 0
	}
}

// designLowpass returns L windowed-sinc lowpass taps with normalised
// cutoff frequency cutoff (fraction of the sample rate, 0 < cutoff < 0.5)
// and the given stopband attenuation, normalised to unit DC gain.
func designLowpass(cutoff float64, l int, attenuationDB float64) []float64 {
	taps := make([]float64, l)
	mid := float64(l-1) / 2
	for n := 0; n < l; n++ {
		x := float64(n) - mid
		taps[n] = sinc(2 * cutoff * x)
	}
	window.Kaiser{Beta: kaiserBeta(attenuationDB)}.Transform(taps)

	sum := 0.0
	for _, t := range taps {
		sum += t
	}
	if sum != 0 {
		for i := range taps {
			taps[i] /= sum
		}
	}
	return taps
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}
