package txloop

import "github.com/jeongseonghan/lora-lite-phy/internal/codec"

// PRNG is a tiny xorshift32 generator standing in for std::mt19937 to reproduce
// the "16 pseudo-random bytes seeded by std::mt19937(1234)" golden vector
// (S2) deterministically without pulling in a C++ RNG port; it is not
// required to bit-match mt19937, only to be a fixed, repeatable sequence
// for a test fixture.
type PRNG struct{ state uint32 }

// NewPRNG seeds a generator.
func NewPRNG(seed uint32) *PRNG { return &PRNG{state: seed} }

func (p *PRNG) next() uint32 {
	p.state ^= p.state << 13
	p.state ^= p.state >> 17
	p.state ^= p.state << 5
	return p.state
}

// Bytes returns n pseudo-random bytes.
func (p *PRNG) Bytes(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(p.next())
	}
	return out
}

// S1Payload returns the literal payload bytes of scenario S1.
func S1Payload() []byte {
	return []byte("Hello LoRa!")
}

// S2Payload returns 16 deterministic pseudo-random bytes for scenario S2.
func S2Payload() []byte {
	return NewPRNG(1234).Bytes(16)
}

// S3Payload returns the 32-byte i -> 0xAB xor (i&0xFF) pattern of scenario
// S3.
func S3Payload() []byte {
	out := make([]byte, 32)
	for i := range out {
		out[i] = 0xAB ^ byte(i&0xFF)
	}
	return out
}

// S4Payload returns the 24-byte i -> 7*i+3 mod 256 pattern of scenario S4.
func S4Payload() []byte {
	out := make([]byte, 24)
	for i := range out {
		out[i] = byte((7*i + 3) % 256)
	}
	return out
}

// DefaultOptions builds Options with the scenario defaults shared across
// S1-S6: 8-symbol preamble, sync word 0x34, OS=1, no CFO/STO.
func DefaultOptions(sf int, cr codec.CodeRate, hasCRC bool) Options {
	return Options{
		SF:       sf,
		CR:       cr,
		HasCRC:   hasCRC,
		SyncWord: 0x34,
		MinSyms:  8,
		OS:       1,
	}
}
