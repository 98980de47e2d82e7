package iqsource

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// FileSource reads interleaved little-endian float32 I/Q pairs from an
// io.Reader (typically an *os.File or stdin), the offline counterpart to
// the live capture source.
type FileSource struct {
	r      io.Reader
	closer io.Closer
	eof    bool
}

// NewFileSource wraps r. If r also implements io.Closer, Close releases
// it.
func NewFileSource(r io.Reader) *FileSource {
	fs := &FileSource{r: r}
	if c, ok := r.(io.Closer); ok {
		fs.closer = c
	}
	return fs
}

// Read reads up to maxSamples complex samples (8 bytes each: I, Q as
// little-endian float32). A short final read that doesn't complete a full
// sample pair has its trailing partial sample discarded; the following
// call returns io.EOF.
func (fs *FileSource) Read(maxSamples int) ([]complex128, error) {
	if fs.eof {
		return nil, io.EOF
	}
	if maxSamples <= 0 {
		return nil, nil
	}

	raw := make([]byte, maxSamples*8)
	n, err := io.ReadFull(fs.r, raw)
	switch {
	case err == io.ErrUnexpectedEOF:
		fs.eof = true
		n -= n % 8
	case err == io.EOF:
		return nil, io.EOF
	case err != nil:
		return nil, fmt.Errorf("iqsource: read: %w", err)
	}

	count := n / 8
	out := make([]complex128, count)
	for i := 0; i < count; i++ {
		ib := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8:]))
		qb := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8+4:]))
		out[i] = complex(float64(ib), float64(qb))
	}
	return out, nil
}

// Close releases the underlying reader if it is closeable.
func (fs *FileSource) Close() error {
	if fs.closer != nil {
		return fs.closer.Close()
	}
	return nil
}
