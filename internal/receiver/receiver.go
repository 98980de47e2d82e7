// Package receiver implements the streaming receive state machine (C10):
// a bounded ring buffer, preamble/sync locking, header and payload
// decoding, and deterministic cursor advancement on every success or
// failure.
package receiver

import (
	"github.com/jeongseonghan/lora-lite-phy/internal/chirp"
	"github.com/jeongseonghan/lora-lite-phy/internal/dsp"
	"github.com/jeongseonghan/lora-lite-phy/internal/sync"
	"github.com/jeongseonghan/lora-lite-phy/pkg/lora"
)

// Receiver is a single-threaded, cooperative LoRa frame receiver. All
// operations on a given instance are serialised; the only suspension
// point is between Step calls.
type Receiver struct {
	cfg Config
	ws  *chirp.Workspace

	ring     *ring
	detector *sync.Detector

	decimators map[int]*dsp.Decimator

	state          state
	ctx            *frameContext
	decimatedCache []complex128

	frames []lora.Frame
}

// New constructs a receiver for cfg, validating its fields.
func New(cfg Config) (*Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ws, err := chirp.NewWorkspace(cfg.SF)
	if err != nil {
		return nil, lora.NewError(lora.KindInvalidConfig, "workspace init", err)
	}
	det, err := sync.NewDetector(ws, cfg.MinPreambleSyms, cfg.OSCandidates)
	if err != nil {
		return nil, lora.NewError(lora.KindInvalidConfig, "detector init", err)
	}

	maxOS := 1
	for _, os := range cfg.OSCandidates {
		if os > maxOS {
			maxOS = os
		}
	}
	margin := historySymbols * ws.N() * maxOS

	return &Receiver{
		cfg:        cfg,
		ws:         ws,
		ring:       newRing(margin),
		detector:   det,
		decimators: make(map[int]*dsp.Decimator),
		state:      stateSearchPreamble,
	}, nil
}

func (rc *Receiver) decimatorFor(os int) (*dsp.Decimator, error) {
	if d, ok := rc.decimators[os]; ok {
		return d, nil
	}
	d, err := dsp.NewDecimator(os, 60)
	if err != nil {
		return nil, err
	}
	rc.decimators[os] = d
	return d, nil
}

// Feed appends raw complex samples to the ring at the write tail.
func (rc *Receiver) Feed(samples []complex128) {
	rc.ring.Append(samples)
}

// Step advances the state machine by at most one transition. It returns
// true if progress was made (state changed, the read head advanced or a
// frame was yielded) and
// false if more samples are needed before the current transition can run.
// A non-nil error accompanies a failed transition that already advanced
// the read cursor; it is informational, not fatal to the receiver.
func (rc *Receiver) Step() (bool, error) {
	return rc.step()
}

// NextFrame pops the oldest yielded frame not yet returned to the caller,
// or ok=false if none is queued.
func (rc *Receiver) NextFrame() (lora.Frame, bool) {
	if len(rc.frames) == 0 {
		return lora.Frame{}, false
	}
	f := rc.frames[0]
	rc.frames = rc.frames[1:]
	return f, true
}

// ReadHead returns the ring's current read-head sample index, monotonic
// across Step calls.
func (rc *Receiver) ReadHead() int { return rc.ring.Head() }

// Reset discards the ring contents, the current frame context, and
// returns the state machine to SearchPreamble.
func (rc *Receiver) Reset() {
	rc.ring.Reset()
	rc.ctx = nil
	rc.decimatedCache = nil
	rc.frames = nil
	rc.state = stateSearchPreamble
}

// Workspace exposes the receiver's chirp workspace, mainly for tests that
// need to build synthetic symbol blocks with the same SF/N.
func (rc *Receiver) Workspace() *chirp.Workspace { return rc.ws }
