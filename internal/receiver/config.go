package receiver

import (
	"github.com/jeongseonghan/lora-lite-phy/internal/sync"
	"github.com/jeongseonghan/lora-lite-phy/pkg/lora"
)

// Config is the receiver construction configuration of §6.
type Config struct {
	SF                int
	MinPreambleSyms   int
	OSCandidates      []int
	ExpectedSyncWord  byte
	ExpectPayloadCRC  bool
	LDROOverride      *bool
	BandwidthHz       int
}

// DefaultConfig returns the defaults named in §6: sf as given,
// min_preamble_syms=8 (auto-raised for higher SF), os_candidates
// {4,2,1,8}, sync word 0x34 ("public"), expect_payload_crc=true, LDRO
// inferred from SF/bandwidth.
func DefaultConfig(sf int) Config {
	return Config{
		SF:               sf,
		MinPreambleSyms:  minPreambleSyms(sf),
		OSCandidates:     []int{4, 2, 1, 8},
		ExpectedSyncWord: 0x34,
		ExpectPayloadCRC: true,
		BandwidthHz:      125000,
	}
}

func minPreambleSyms(sf int) int {
	switch {
	case sf >= 10:
		return 12
	case sf >= 9:
		return 10
	default:
		return 8
	}
}

// LDRO resolves the low-data-rate-optimisation flag: the override when
// set, else SF >= 11 at 125 kHz bandwidth.
func (c Config) LDRO() bool {
	if c.LDROOverride != nil {
		return *c.LDROOverride
	}
	return c.SF >= 11 && c.BandwidthHz == 125000
}

// Validate checks the configuration against the closed ranges of §3/§6.
func (c Config) Validate() error {
	if c.SF < 7 || c.SF > 12 {
		return lora.NewError(lora.KindInvalidConfig, "sf out of range [7,12]", nil)
	}
	if len(c.OSCandidates) == 0 {
		return lora.NewError(lora.KindInvalidConfig, "os_candidates must be non-empty", nil)
	}
	for _, os := range c.OSCandidates {
		valid := false
		for _, v := range sync.DefaultOSCandidates {
			if v == os {
				valid = true
				break
			}
		}
		if !valid {
			return lora.NewError(lora.KindInvalidConfig, "os_candidates entries must be in {1,2,4,8}", nil)
		}
	}
	if c.MinPreambleSyms <= 0 {
		return lora.NewError(lora.KindInvalidConfig, "min_preamble_syms must be positive", nil)
	}
	return nil
}
