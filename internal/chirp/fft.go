package chirp

import "gonum.org/v1/gonum/dsp/fourier"

// fftPlan wraps a gonum complex FFT plan sized to one symbol. Only the
// forward transform is needed: chirps are generated directly in the time
// domain from closed-form formulas, and symbol demodulation only argmaxes
// the forward spectrum after dechirping.
type fftPlan struct {
	n   int
	cfg *fourier.CmplxFFT
	dst []complex128
}

func newFFTPlan(n int) *fftPlan {
	return &fftPlan{
		n:   n,
		cfg: fourier.NewCmplxFFT(n),
		dst: make([]complex128, n),
	}
}

// Forward computes the length-N forward DFT of seq into the plan's
// reusable scratch buffer and returns it. The returned slice is only valid
// until the next call to Forward on the same plan.
func (p *fftPlan) Forward(seq []complex128) []complex128 {
	return p.cfg.Coefficients(p.dst, seq)
}
