// Package ptp implements spec §4.G: the family-agnostic PTP hardware
// clock enable/prime sequence. Per-family errata (I210's stuck-at-zero
// recovery) live in the hal package's vtable instead, since the spec
// calls those out as living "in the family vtable".
package ptp

import (
	"time"

	"github.com/zarfld/IntelAvbFilter-sub000/avb"
)

const (
	tsauxcDisableSystime uint32 = 1 << 31
	timincaDefault       uint32 = 0x18000000

	// primeWaitInterval is the wall-clock gap between the two SYSTIML
	// samples used to decide whether the clock is running (spec §4.G
	// step 3, "~10ms").
	primeWaitInterval = 10 * time.Millisecond
)

// Prime runs the three-step generic bring-up: clear TSAUXC's disable
// bit if set, seed TIMINCA if it reads zero, then sample SYSTIML twice
// across ~10ms. A non-advancing clock is not an error: Prime returns
// nil, the adapter stays at HwStateBarMapped and the caller can retry
// later (spec §4.C step 3, §4.G step 3).
func Prime(ctx *avb.AdapterContext, backend avb.PlatformBackend) error {
	tsauxc, err := ctx.ReadMmio32(backend, avb.RegTSAUXC)
	if err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "read TSAUXC: %v", err)
	}
	if tsauxc&tsauxcDisableSystime != 0 {
		if err := ctx.WriteMmio32(backend, avb.RegTSAUXC, tsauxc&^tsauxcDisableSystime); err != nil {
			return avb.NewStatusError(avb.StatusHardwareError, "clear TSAUXC.DisableSystime: %v", err)
		}
	}

	timinca, err := ctx.ReadMmio32(backend, avb.RegTIMINCA)
	if err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "read TIMINCA: %v", err)
	}
	if timinca == 0 {
		if err := ctx.WriteMmio32(backend, avb.RegTIMINCA, timincaDefault); err != nil {
			return avb.NewStatusError(avb.StatusHardwareError, "seed TIMINCA: %v", err)
		}
	}

	running, err := VerifyAdvancing(ctx, backend)
	if err != nil {
		return err
	}
	if running {
		ctx.MarkPtpReady()
	}
	return nil
}

// VerifyAdvancing samples SYSTIML twice across primeWaitInterval and
// reports whether the second sample is strictly greater, per spec
// §4.G step 3 and the TSN re-verification-on-entry prerequisite
// (§4.H).
func VerifyAdvancing(ctx *avb.AdapterContext, backend avb.PlatformBackend) (bool, error) {
	first, err := ctx.ReadMmio32(backend, avb.RegSYSTIML)
	if err != nil {
		return false, avb.NewStatusError(avb.StatusHardwareError, "read SYSTIML: %v", err)
	}

	backend.Sleep(primeWaitInterval)

	second, err := ctx.ReadMmio32(backend, avb.RegSYSTIML)
	if err != nil {
		return false, avb.NewStatusError(avb.StatusHardwareError, "read SYSTIML: %v", err)
	}

	return second > first, nil
}

// ReadSystime reads the full 64-bit PTP hardware clock value.
func ReadSystime(ctx *avb.AdapterContext, backend avb.PlatformBackend) (uint64, error) {
	lo, err := ctx.ReadMmio32(backend, avb.RegSYSTIML)
	if err != nil {
		return 0, err
	}
	hi, err := ctx.ReadMmio32(backend, avb.RegSYSTIMH)
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}
