// Package iqsource implements the sample source side of the external
// interface in §6: a pull interface yielding contiguous complex spans,
// with a zero-length span meaning "try again later". The core does not
// care how samples are acquired; this package supplies a file/stdin
// reader and a live capture source.
package iqsource

// Source is the pull interface the receiver's driving loop polls.
type Source interface {
	// Read returns the next span of samples, or a zero-length slice if
	// none are available yet. io.EOF signals the source is
	// exhausted and will never produce more samples.
	Read(maxSamples int) ([]complex128, error)
	// Close releases any underlying resource.
	Close() error
}
