package receiver

import (
	"github.com/jeongseonghan/lora-lite-phy/internal/header"
	"github.com/jeongseonghan/lora-lite-phy/internal/payload"
	"github.com/jeongseonghan/lora-lite-phy/internal/sync"
	"github.com/jeongseonghan/lora-lite-phy/pkg/lora"
)

type state int

const (
	stateSearchPreamble state = iota
	stateLocateSync
	stateDemodHeader
	stateDemodPayload
	stateYieldFrame
	stateAdvance
)

// frameContext is the state machine's single owned, in-place-updated
// context. It exists only between preamble detect and yield/abandon.
type frameContext struct {
	detection     sync.Detection
	estimate      sync.Estimate
	syncStart     int
	headerStart   int
	header        header.Decoded
	payloadBytes  []byte
	crcOk         bool
	frameStartRaw int
	frameEndRaw   int
}

// failAdvance is N/8 samples, the standard retry step on any non-fatal
// failure. Callers advance the raw read head by this amount directly; it
// is not scaled by the oversampling factor.
func failAdvance(n int) int {
	return n / 8
}

// step runs exactly one state transition. It returns true if it made
// progress (changed state, advanced the read head or yielded a frame) and
// false if it needs more samples before it can proceed.
func (rc *Receiver) step() (bool, error) {
	switch rc.state {
	case stateSearchPreamble:
		return rc.stepSearchPreamble()
	case stateLocateSync:
		return rc.stepLocateSync()
	case stateDemodHeader:
		return rc.stepDemodHeader()
	case stateDemodPayload:
		return rc.stepDemodPayload()
	case stateYieldFrame:
		return rc.stepYieldFrame()
	case stateAdvance:
		return rc.stepAdvance()
	default:
		rc.state = stateSearchPreamble
		return false, nil
	}
}

func (rc *Receiver) stepSearchPreamble() (bool, error) {
	n := rc.ws.N()
	h := rc.ring.Head()
	from := h - historySymbols*n
	length := historySymbols*n + searchWindowSymbols*n
	if from < 0 {
		length += from
		from = 0
	}
	if rc.ring.Available()+historySymbols*n < historySymbols*n+searchWindowSymbols*n {
		return false, nil
	}
	span, ok := rc.ring.Span(from, length)
	if !ok {
		return false, nil
	}

	det, found := rc.detector.Detect(span)
	if !found {
		rc.ring.Advance(failAdvance(n))
		return true, nil
	}

	rc.ctx = &frameContext{detection: det}
	rc.state = stateLocateSync
	return true, nil
}

func (rc *Receiver) stepLocateSync() (bool, error) {
	n := rc.ws.N()
	dec, err := rc.decimatorFor(rc.ctx.detection.OS)
	if err != nil {
		rc.abandon()
		return true, err
	}
	raw, ok := rc.ring.Span(0, rc.ring.Head()+rc.ring.Available())
	if !ok {
		return false, nil
	}
	decimated, err := dec.Decimate(raw, rc.ctx.detection.Phase)
	if err != nil {
		rc.abandon()
		return true, err
	}

	// The detector reports the raw arrival sample with the filter group
	// delay removed; map it back to an index in this phase's decimated
	// stream, where the delay is still present.
	preambleStart := (rc.ctx.detection.StartSampleRaw - rc.ctx.detection.Phase + dec.GroupDelay()) / rc.ctx.detection.OS
	est, ok := sync.EstimateCFOSTO(rc.ws, decimated, preambleStart, rc.cfg.MinPreambleSyms)
	if !ok {
		rc.ring.Advance(failAdvance(n))
		rc.state = stateSearchPreamble
		rc.ctx = nil
		return true, nil
	}

	// sync_start marks the SFD (the two-downchirp pair), i.e. after the
	// min_syms preamble upchirps and the two sync-word upchirps.
	syncStart := preambleStart + rc.cfg.MinPreambleSyms*n + 2*n + est.STO
	headerStart := syncStart + 2*n + n/4

	rc.ctx.estimate = est
	rc.ctx.syncStart = syncStart
	rc.ctx.headerStart = headerStart
	// §4.4: every downstream symbol extraction demodulates the
	// CFO-compensated buffer, never the raw decimated samples.
	rc.decimatedCache = sync.CompensateCFO(decimated, est.CFOFractional)
	rc.state = stateDemodHeader
	return true, nil
}

func (rc *Receiver) stepDemodHeader() (bool, error) {
	n := rc.ws.N()
	blocks := make([][]complex128, header.NSymbols)
	for i := range blocks {
		start := rc.ctx.headerStart + i*n
		if start+n > len(rc.decimatedCache) {
			return false, nil
		}
		blocks[i] = rc.decimatedCache[start : start+n]
	}

	dec, err := header.Decode(rc.ws, blocks, rc.ctx.estimate.CFOInteger)
	if err != nil {
		rc.ring.Advance(failAdvance(n))
		rc.state = stateSearchPreamble
		rc.ctx = nil
		return true, err
	}

	rc.ctx.header = dec
	rc.ctx.frameStartRaw = rc.ctx.detection.StartSampleRaw
	rc.state = stateDemodPayload
	return true, nil
}

func (rc *Receiver) stepDemodPayload() (bool, error) {
	n := rc.ws.N()
	cr := rc.ctx.header.CR
	ldro := rc.cfg.LDRO()
	// ExpectedSymbols includes the 8-symbol header-block term; the header
	// was already consumed as its own header.NSymbols block, so only the
	// remainder is payload.
	nsym := payload.ExpectedSymbols(rc.ws.SF(), int(rc.ctx.header.PayloadLen), cr, rc.ctx.header.HasCRC, ldro) - 8

	payloadStart := rc.ctx.headerStart + header.NSymbols*n
	blocks := make([][]complex128, nsym)
	for i := range blocks {
		start := payloadStart + i*n
		if start+n > len(rc.decimatedCache) {
			return false, nil
		}
		blocks[i] = rc.decimatedCache[start : start+n]
	}

	res, err := payload.Decode(rc.ws, blocks, int(rc.ctx.header.PayloadLen), cr, rc.ctx.header.HasCRC, ldro)
	if err != nil {
		rc.ring.Advance(failAdvance(n))
		rc.state = stateSearchPreamble
		rc.ctx = nil
		return true, err
	}

	rc.ctx.payloadBytes = res.Bytes
	rc.ctx.crcOk = res.CRCOk
	rc.ctx.frameEndRaw = (payloadStart + nsym*n) * rc.ctx.detection.OS
	rc.state = stateYieldFrame
	return true, nil
}

func (rc *Receiver) stepYieldFrame() (bool, error) {
	frame := lora.Frame{
		Payload: append([]byte(nil), rc.ctx.payloadBytes...),
		Header: lora.Header{
			PayloadLen: rc.ctx.header.PayloadLen,
			CR:         rc.ctx.header.CR,
			HasCRC:     rc.ctx.header.HasCRC,
		},
		Detection: lora.Detection{
			StartSampleRaw: rc.ctx.detection.StartSampleRaw,
			OS:             rc.ctx.detection.OS,
			Phase:          rc.ctx.detection.Phase,
		},
		CFOFractional: rc.ctx.estimate.CFOFractional,
		CFOInteger:    rc.ctx.estimate.CFOInteger,
		STO:           rc.ctx.estimate.STO,
		CRCOk:         rc.ctx.crcOk,
	}
	rc.frames = append(rc.frames, frame)
	rc.state = stateAdvance
	return true, nil
}

func (rc *Receiver) stepAdvance() (bool, error) {
	n := rc.ws.N()
	target := rc.ctx.frameEndRaw - n
	if target < rc.ring.Head() {
		target = rc.ring.Head()
	}
	rc.ring.Advance(target - rc.ring.Head())
	rc.ctx = nil
	rc.decimatedCache = nil
	rc.state = stateSearchPreamble
	return true, nil
}

func (rc *Receiver) abandon() {
	n := rc.ws.N()
	rc.ring.Advance(failAdvance(n))
	rc.ctx = nil
	rc.decimatedCache = nil
	rc.state = stateSearchPreamble
}
