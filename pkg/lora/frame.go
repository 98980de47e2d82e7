package lora

import "github.com/jeongseonghan/lora-lite-phy/internal/codec"

// Header is the locally decoded frame header (post-decode, not the
// on-the-wire nibble layout).
type Header struct {
	PayloadLen uint8
	CR         codec.CodeRate
	HasCRC     bool
}

// Detection is the result of a successful preamble search.
type Detection struct {
	StartSampleRaw int
	OS             int
	Phase          int
}

// Frame is a fully decoded receive result, owned by the caller once
// yielded.
type Frame struct {
	Payload       []byte
	Header        Header
	Detection     Detection
	CFOFractional float64
	CFOInteger    int
	STO           int
	CRCOk         bool
}
