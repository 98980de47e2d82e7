// Package lora defines the public types and error taxonomy shared by the
// receive pipeline: frames, headers and the tagged error kinds a caller
// can switch on at the state-machine boundary.
package lora

import "errors"

// Kind tags a receive-path error so callers can branch on it without
// string matching, per §7's closed enumeration.
type Kind int

const (
	// KindInsufficientSamples means the ring does not yet hold enough
	// data to attempt the current transition; not fatal, retry later.
	KindInsufficientSamples Kind = iota
	// KindPreambleNotFound means no preamble cleared the detector's
	// threshold within the search window.
	KindPreambleNotFound
	// KindSyncMismatch means the sync-word search did not find a
	// matching symbol pair near the expected phase.
	KindSyncMismatch
	// KindHeaderCrcFailed means the header checksum did not match.
	KindHeaderCrcFailed
	// KindHeaderInvalid means the header parsed to an out-of-range
	// field (cr_index or payload_len) or a codeword was uncorrectable.
	KindHeaderInvalid
	// KindFecUncorrectable means a payload codeword's Hamming decode
	// failed past recovery.
	KindFecUncorrectable
	// KindPayloadCrcFailed means the payload decoded but its CRC
	// trailer did not match; the frame is still yielded with
	// CRCOk=false.
	KindPayloadCrcFailed
	// KindInvalidConfig means the receiver was constructed with an
	// out-of-range parameter; fatal for that receiver instance.
	KindInvalidConfig
)

func (k Kind) String() string {
	switch k {
	case KindInsufficientSamples:
		return "insufficient_samples"
	case KindPreambleNotFound:
		return "preamble_not_found"
	case KindSyncMismatch:
		return "sync_mismatch"
	case KindHeaderCrcFailed:
		return "header_crc_failed"
	case KindHeaderInvalid:
		return "header_invalid"
	case KindFecUncorrectable:
		return "fec_uncorrectable"
	case KindPayloadCrcFailed:
		return "payload_crc_failed"
	case KindInvalidConfig:
		return "invalid_config"
	default:
		return "unknown"
	}
}

// Error wraps a Kind with context, letting callers do errors.As(err,
// *lora.Error) to recover the tag while still formatting with %w.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a tagged Error, optionally wrapping a lower-level cause.
func NewError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
