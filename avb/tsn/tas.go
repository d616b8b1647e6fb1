// Package tsn is the request-facing face of spec §4.H's TSN
// Programming Engine: the IEEE 802.1Qbv/802.1Qbu/PCIe-PTM operations
// the request multiplexer calls directly. Register-level sequencing
// and per-family errata live behind the hal package's vtable (spec
// §4.E), since the spec ties the two-write FUTSCDDIS quirk and the
// I225/I226 register addresses to the family implementation, not to
// this orchestration layer.
package tsn

import (
	"github.com/zarfld/IntelAvbFilter-sub000/avb"
	"github.com/zarfld/IntelAvbFilter-sub000/avb/hal"
)

// ValidateTasConfig checks the §3/§4.H invariants that do not depend
// on hardware state, so the request multiplexer can reject a
// malformed config before it ever reaches the family vtable.
func ValidateTasConfig(cfg *avb.TasConfig) error {
	cycle := cfg.CycleTimeTotalNs()
	if cycle == 0 || cycle > 1_000_000_000 {
		return avb.NewStatusError(avb.StatusInvalidParameter, "cycle time %dns out of (0, 1e9] range", cycle)
	}
	if cfg.SumGateDurations() != cycle {
		return avb.NewStatusError(avb.StatusInvalidParameter, "sum(gate durations)=%d != cycle_time_ns=%d", cfg.SumGateDurations(), cycle)
	}
	return nil
}

// SetupTas validates the config and dispatches to the adapter's
// family vtable (spec §4.H activation sequence). Only I225/I226 carry
// the CapTsnTas bit; every other family's dispatch returns
// StatusUnsupported before ever touching a register.
func SetupTas(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.TasConfig) error {
	if err := ValidateTasConfig(cfg); err != nil {
		return err
	}
	return hal.SetupTas(ctx, backend, cfg)
}
