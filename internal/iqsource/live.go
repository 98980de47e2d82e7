package iqsource

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// LiveFramesPerBuf is the capture chunk size, matching the teacher's
// fixed-size stream buffering pattern.
const LiveFramesPerBuf = 1024

// LiveSource captures real-valued audio from the default input device and
// treats each sample as a complex sample with Q=0, the typical setup for
// a single real ADC feeding an IQ-shaped receive pipeline.
type LiveSource struct {
	stream *portaudio.Stream
	buf    []float32
	mu     sync.Mutex
}

// OpenLive initialises PortAudio and opens the default mono input stream
// at sampleRate.
func OpenLive(sampleRate float64) (*LiveSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("iqsource: portaudio init: %w", err)
	}

	buf := make([]float32, LiveFramesPerBuf)
	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, LiveFramesPerBuf, buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("iqsource: open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("iqsource: start input stream: %w", err)
	}

	return &LiveSource{stream: stream, buf: buf}, nil
}

// Read blocks for one capture buffer's worth of audio (at most
// LiveFramesPerBuf samples, ignoring maxSamples) and returns it as
// complex samples with Q=0.
func (l *LiveSource) Read(maxSamples int) ([]complex128, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.stream.Read(); err != nil {
		return nil, fmt.Errorf("iqsource: live read: %w", err)
	}
	out := make([]complex128, len(l.buf))
	for i, v := range l.buf {
		out[i] = complex(float64(v), 0)
	}
	return out, nil
}

// Close stops the stream and terminates PortAudio.
func (l *LiveSource) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	if err := l.stream.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := l.stream.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := portaudio.Terminate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("iqsource: close errors: %v", errs)
	}
	return nil
}
