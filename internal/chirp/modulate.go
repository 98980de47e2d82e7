package chirp

import (
	"math"
	"math/cmplx"
)

// ModulateSymbol generates the length-N CSS chirp that demodulates to bin,
// using the closed form s[n] = exp(j*2*pi*(n^2/(2N) + n*(bin/N - 1/2))).
// Dechirping against the workspace's reference downchirp and taking the
// forward FFT of the result peaks exactly at bin, making this the
// transmit-side inverse of demod.Demod.
func ModulateSymbol(n, bin int) []complex128 {
	out := make([]complex128, n)
	nf := float64(n)
	for i := 0; i < n; i++ {
		fi := float64(i)
		phase := 2 * math.Pi * (fi*fi/(2*nf) + fi*(float64(bin)/nf-0.5))
		out[i] = cmplx.Exp(complex(0, phase))
	}
	return out
}
