package payload

import (
	"testing"

	"github.com/jeongseonghan/lora-lite-phy/internal/codec"
)

func TestExpectedSymbolsNonNegative(t *testing.T) {
	for sf := 7; sf <= 12; sf++ {
		for _, cr := range []codec.CodeRate{codec.CR45, codec.CR46, codec.CR47, codec.CR48} {
			for _, payloadLen := range []int{1, 16, 255} {
				for _, hasCRC := range []bool{true, false} {
					for _, ldro := range []bool{true, false} {
						got := ExpectedSymbols(sf, payloadLen, cr, hasCRC, ldro)
						if got < 8 {
							t.Fatalf("sf=%d cr=%d len=%d crc=%v ldro=%v: expected_symbols=%d < 8 (header floor)", sf, cr, payloadLen, hasCRC, ldro, got)
						}
					}
				}
			}
		}
	}
}

func TestExpectedSymbolsGrowsWithPayloadLen(t *testing.T) {
	small := ExpectedSymbols(7, 1, codec.CR45, true, false)
	large := ExpectedSymbols(7, 200, codec.CR45, true, false)
	if large <= small {
		t.Fatalf("expected_symbols should grow with payload length: %d vs %d", small, large)
	}
}
