package receiver

import (
	"bytes"
	"testing"

	"github.com/jeongseonghan/lora-lite-phy/internal/codec"
	"github.com/jeongseonghan/lora-lite-phy/internal/txloop"
	"github.com/jeongseonghan/lora-lite-phy/pkg/lora"
)

// drainFrame steps rx until a frame is yielded or the step budget runs out.
func drainFrame(rx *Receiver) (lora.Frame, bool) {
	for i := 0; i < 8192; i++ {
		if f, ok := rx.NextFrame(); ok {
			return f, true
		}
		rx.Step()
	}
	return lora.Frame{}, false
}

func TestLoopbackS1HelloLoRa(t *testing.T) {
	sf := 7
	cr := codec.CR45
	payload := txloop.S1Payload()

	cfg := DefaultConfig(sf)
	cfg.OSCandidates = []int{1}
	rx, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	opt := txloop.DefaultOptions(sf, cr, true)
	samples, err := txloop.GenerateFrame(rx.Workspace(), payload, opt)
	if err != nil {
		t.Fatalf("GenerateFrame: %v", err)
	}

	rx.Feed(samples)
	f, found := drainFrame(rx)
	if !found {
		t.Fatalf("no frame yielded within step budget")
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Fatalf("payload mismatch: got %q want %q", f.Payload, payload)
	}
	if !f.CRCOk {
		t.Fatal("expected crc_ok=true")
	}
}

// TestLoopbackS2OversampledMultiCandidate exercises scenario S2: an OS=4
// frame searched with the default multi-candidate order {4,2,1,8}, whose
// first candidate is OS 4; the detector must report OS 4 and the frame must
// decode through the oversampled (decimated) path.
func TestLoopbackS2OversampledMultiCandidate(t *testing.T) {
	sf := 7
	cr := codec.CR46
	payload := txloop.S2Payload()

	cfg := DefaultConfig(sf) // os_candidates = {4,2,1,8}
	rx, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	opt := txloop.DefaultOptions(sf, cr, true)
	opt.OS = 4
	samples, err := txloop.GenerateFrame(rx.Workspace(), payload, opt)
	if err != nil {
		t.Fatalf("GenerateFrame: %v", err)
	}

	rx.Feed(samples)
	f, found := drainFrame(rx)
	if !found {
		t.Fatalf("no frame yielded within step budget")
	}
	if f.Detection.OS != 4 {
		t.Fatalf("detected OS = %d, want 4", f.Detection.OS)
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Fatalf("payload mismatch: got %x want %x", f.Payload, payload)
	}
	if !f.CRCOk {
		t.Fatal("expected crc_ok=true")
	}
}

// TestLoopbackS3FractionalCFO exercises scenario S3: a nonzero fractional
// CFO must be estimated and compensated (sync.CompensateCFO) before header
// and payload demodulation, or the frame fails to decode byte-exactly.
func TestLoopbackS3FractionalCFO(t *testing.T) {
	sf := 9
	cr := codec.CR48
	payload := txloop.S3Payload()

	cfg := DefaultConfig(sf)
	cfg.OSCandidates = []int{1}
	rx, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	opt := txloop.DefaultOptions(sf, cr, true)
	opt.MinSyms = cfg.MinPreambleSyms
	opt.CFOCycles = 5e-4
	samples, err := txloop.GenerateFrame(rx.Workspace(), payload, opt)
	if err != nil {
		t.Fatalf("GenerateFrame: %v", err)
	}

	rx.Feed(samples)
	f, found := drainFrame(rx)
	if !found {
		t.Fatalf("no frame yielded within step budget")
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Fatalf("payload mismatch under fractional CFO: got %x want %x", f.Payload, payload)
	}
	if !f.CRCOk {
		t.Fatal("expected crc_ok=true under fractional CFO compensation")
	}
}

// TestLoopbackS4SampleTimingOffset exercises scenario S4: a positive sample
// timing offset (leading zeros before the preamble) must be located and
// the payload still decoded byte-exactly.
func TestLoopbackS4SampleTimingOffset(t *testing.T) {
	sf := 8
	cr := codec.CR47
	payload := txloop.S4Payload()

	cfg := DefaultConfig(sf)
	cfg.OSCandidates = []int{1}
	rx, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	opt := txloop.DefaultOptions(sf, cr, true)
	opt.MinSyms = cfg.MinPreambleSyms
	opt.LeadZeros = 13
	samples, err := txloop.GenerateFrame(rx.Workspace(), payload, opt)
	if err != nil {
		t.Fatalf("GenerateFrame: %v", err)
	}

	rx.Feed(samples)
	f, found := drainFrame(rx)
	if !found {
		t.Fatalf("no frame yielded within step budget")
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Fatalf("payload mismatch with leading-zero STO: got %x want %x", f.Payload, payload)
	}
	if !f.CRCOk {
		t.Fatal("expected crc_ok=true")
	}
}

// TestLoopbackS6EmptyAndNoiseInput exercises scenario S6: an empty feed
// yields nothing immediately, and a short noise-only feed never locates a
// preamble.
func TestLoopbackS6EmptyAndNoiseInput(t *testing.T) {
	cfg := DefaultConfig(7)
	rx, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := rx.NextFrame(); ok {
		t.Fatal("expected no frame from an empty receiver")
	}
	progressed, _ := rx.Step()
	if progressed {
		t.Fatal("expected no progress with zero samples available")
	}

	n := rx.Workspace().N()
	noise := make([]complex128, 7*n)
	for i := range noise {
		noise[i] = complex(0.01*float64(i%5-2), -0.01*float64(i%3-1))
	}
	rx.Feed(noise)
	for i := 0; i < 32; i++ {
		rx.Step()
		if _, ok := rx.NextFrame(); ok {
			t.Fatal("expected no frame detected in short noise-only input")
		}
	}
}

func TestReadHeadMonotonic(t *testing.T) {
	cfg := DefaultConfig(7)
	rx, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	noise := make([]complex128, 7*rx.Workspace().N())
	for i := range noise {
		noise[i] = complex(0.01, -0.01)
	}
	rx.Feed(noise)

	last := rx.ReadHead()
	for i := 0; i < 64; i++ {
		rx.Step()
		h := rx.ReadHead()
		if h < last {
			t.Fatalf("read head regressed: %d -> %d", last, h)
		}
		last = h
	}
}

func TestResetReturnsToSearchPreamble(t *testing.T) {
	cfg := DefaultConfig(7)
	rx, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rx.Feed(make([]complex128, 1024))
	rx.Step()
	rx.Reset()
	if rx.state != stateSearchPreamble {
		t.Fatalf("expected state reset to SearchPreamble, got %d", rx.state)
	}
	if rx.ReadHead() != 0 {
		t.Fatalf("expected read head reset to 0, got %d", rx.ReadHead())
	}
}
