package crcutil

import "testing"

func TestVerifyTrailerRoundTrip(t *testing.T) {
	data := []byte("Hello LoRa!")
	withTrailer := AppendTrailerLE(append([]byte(nil), data...))
	if len(withTrailer) != len(data)+2 {
		t.Fatalf("expected length %d, got %d", len(data)+2, len(withTrailer))
	}

	calc, ok := VerifyTrailerLE(withTrailer)
	if !ok {
		t.Fatalf("expected trailer to verify, calc=%#x", calc)
	}
}

func TestVerifyTrailerDetectsCorruption(t *testing.T) {
	data := []byte("Hello LoRa!")
	withTrailer := AppendTrailerLE(append([]byte(nil), data...))
	withTrailer[0] ^= 0xFF

	if _, ok := VerifyTrailerLE(withTrailer); ok {
		t.Fatal("expected corrupted data to fail CRC verification")
	}
}

func TestCCITT16KnownVector(t *testing.T) {
	// CRC-16/CCITT-FALSE of "123456789" is 0x29B1, the standard check
	// value for this polynomial/init/no-reflect configuration.
	got := CCITT16([]byte("123456789"))
	if got != 0x29B1 {
		t.Fatalf("CCITT16(\"123456789\") = %#x, want 0x29b1", got)
	}
}
