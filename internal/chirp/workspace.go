// Package chirp implements the receiver's per-spreading-factor workspace:
// reference up/down chirps, an FFT plan, scratch buffers and the cached
// diagonal-interleaver permutations consumed by every other stage.
package chirp

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/jeongseonghan/lora-lite-phy/internal/codec"
)

// Workspace owns everything that is a pure function of the spreading
// factor: reference chirps, the FFT plan and scratch buffers sized to the
// largest demodulation block seen so far. Init rebuilds the chirps, plan,
// scratch and interleaver cache only when SF changes, and the interleaver
// cache it owns is private to this workspace instance.
type Workspace struct {
	sf int
	n  int

	upchirp   []complex128
	downchirp []complex128

	plan *fftPlan

	scratchMul []complex128
	scratchOut []complex128

	interleavers *codec.Cache
}

// NewWorkspace builds a workspace for the given spreading factor.
func NewWorkspace(sf int) (*Workspace, error) {
	w := &Workspace{}
	if err := w.Init(sf); err != nil {
		return nil, err
	}
	return w, nil
}

// Init (re)computes the reference chirps and FFT plan for sf and resizes
// scratch. It is idempotent when sf is unchanged from the workspace's
// current configuration.
func (w *Workspace) Init(sf int) error {
	if sf < 7 || sf > 12 {
		return fmt.Errorf("chirp: spreading factor %d out of range [7,12]", sf)
	}
	if w.sf == sf && w.plan != nil {
		return nil
	}

	n := 1 << uint(sf)
	w.sf = sf
	w.n = n
	w.upchirp = make([]complex128, n)
	w.downchirp = make([]complex128, n)
	for i := 0; i < n; i++ {
		phase := 2 * math.Pi * (float64(i*i)/(2*float64(n)) - float64(i)/2)
		u := cmplx.Exp(complex(0, phase))
		w.upchirp[i] = u
		w.downchirp[i] = cmplx.Conj(u)
	}

	w.plan = newFFTPlan(n)
	w.scratchMul = make([]complex128, n)
	w.scratchOut = make([]complex128, n)
	w.interleavers = codec.NewCache()
	return nil
}

// SF returns the workspace's current spreading factor.
func (w *Workspace) SF() int { return w.sf }

// N returns the current symbol length 2^SF.
func (w *Workspace) N() int { return w.n }

// Upchirp returns the reference upchirp u[n] = exp(j*2pi*(n^2/(2N) - n/2)).
// The returned slice is owned by the workspace and must not be mutated.
func (w *Workspace) Upchirp() []complex128 { return w.upchirp }

// Downchirp returns the reference downchirp d[n] = conj(u[n]).
func (w *Workspace) Downchirp() []complex128 { return w.downchirp }

// EnsureScratch guarantees the mul/FFT-output scratch buffers are large
// enough for nsym symbols worth of samples; growth is monotonic.
func (w *Workspace) EnsureScratch(nsym int) {
	need := nsym * w.n
	if len(w.scratchMul) < need {
		w.scratchMul = make([]complex128, need)
	}
	if len(w.scratchOut) < need {
		w.scratchOut = make([]complex128, need)
	}
}

// Interleaver returns the cached diagonal-interleaver permutation for
// (sfRows, cwCols), building it on first use.
func (w *Workspace) Interleaver(sfRows, cwCols int) (codec.Interleaver, error) {
	return w.interleavers.Get(sfRows, cwCols)
}

// FFT runs the workspace's size-N forward FFT in place of a hand-rolled
// transform: out[k] = sum_n in[n]*exp(-j*2*pi*k*n/N).
func (w *Workspace) FFT(in []complex128) []complex128 {
	return w.plan.Forward(in)
}

// Dechirp multiplies block by the reference downchirp into the workspace's
// scratch buffer, returning y[n] = block[n]*d[n]. The returned slice is
// only valid until the next call that reuses scratchMul.
func (w *Workspace) Dechirp(block []complex128) []complex128 {
	n := w.n
	if len(w.scratchMul) < n {
		w.scratchMul = make([]complex128, n)
	}
	y := w.scratchMul[:n]
	for i := 0; i < n; i++ {
		y[i] = block[i] * w.downchirp[i]
	}
	return y
}

// Release drops the FFT plan and scratch buffers. The workspace's
// resources are plain Go heap allocations with no external handle, so
// Release simply clears the references to let the garbage collector
// reclaim them deterministically at the call site rather than waiting on
// workspace finalisation.
func (w *Workspace) Release() {
	w.plan = nil
	w.scratchMul = nil
	w.scratchOut = nil
	w.interleavers = nil
	w.upchirp = nil
	w.downchirp = nil
}
