package codec

// whiteningTable holds the 255-byte PN9 whitening sequence used by the
// payload de-whitener. It is generated once at init time by running the
// standard Semtech LoRa PN9 LFSR (taps x^9 + x^5 + 1, seed 0x1FF) and
// capturing one byte per step, matching the generator in the reference C++
// implementation's whitening unit while exposing it the way §4.7 describes:
// a fixed 255-entry sequence indexed with mod-255 wraparound.
var whiteningTable = buildWhiteningTable()

func buildWhiteningTable() [255]byte {
	var table [255]byte
	lfsr := uint16(0x1FF)
	for i := range table {
		var b byte
		for bit := 0; bit < 8; bit++ {
			out := lfsr & 1
			b |= byte(out) << uint(7-bit)
			newBit := (lfsr & 1) ^ ((lfsr >> 4) & 1)
			lfsr = ((lfsr >> 1) | (newBit << 8)) & 0x1FF
		}
		table[i] = b
	}
	return table
}

// Dewhiten XORs span with the PN9 whitening sequence starting at offset,
// wrapping the sequence index modulo 255. Whitening is an involution, so
// the same function both whitens (at the transmitter) and de-whitens (at
// the receiver).
func Dewhiten(span []byte, offset int) []byte {
	out := make([]byte, len(span))
	for i, b := range span {
		out[i] = b ^ whiteningTable[(offset+i)%255]
	}
	return out
}
