package hal

import (
	"time"

	"github.com/zarfld/IntelAvbFilter-sub000/avb"
)

const (
	tsauxcDisableSystime uint32 = 1 << 31
	timincaDefault       uint32 = 0x18000000

	// I210-specific TSAUXC bit that must be set to let the timestamp
	// capture logic actually advance SYSTIM (spec §4.G "I210 requires
	// a more elaborate stuck-at-zero recovery sequence").
	tsauxcI210PhcEn uint32 = 1 << 24

	i210SeedInitial uint64 = 1
)

type i210Ops struct{}

func (i210Ops) Name() string { return "I210" }

func (i210Ops) Init(ctx *avb.AdapterContext, backend avb.PlatformBackend) error {
	status, err := ctx.ReadMmio32(backend, avb.RegSTATUS)
	if err != nil {
		return err
	}
	if status == avb.InvalidRegisterValue {
		return avb.NewStatusError(avb.StatusHardwareError, "STATUS register reads as invalid, link likely absent")
	}
	return nil
}

func (i210Ops) Cleanup(*avb.AdapterContext, avb.PlatformBackend) {}

func (i210Ops) GetInfo(ctx *avb.AdapterContext, backend avb.PlatformBackend) ([]byte, error) {
	return genericGetInfo(ctx, backend, "I210")
}

func (i210Ops) GetSystime(ctx *avb.AdapterContext, backend avb.PlatformBackend) (uint64, error) {
	return readSystim(ctx, backend)
}

func (i210Ops) SetSystime(ctx *avb.AdapterContext, backend avb.PlatformBackend, ns uint64) error {
	return writeSystim(ctx, backend, ns)
}

// InitPtp runs the I210 "stuck-at-zero" recovery sequence (spec §4.G):
// disable, clear, delay ~50ms, programme TIMINCA, re-enable, seed a
// non-zero initial value, enable timestamp capture, poll up to 8 x
// 100ms for the clock to start advancing.
func (i210Ops) InitPtp(ctx *avb.AdapterContext, backend avb.PlatformBackend) error {
	tsauxc, err := ctx.ReadMmio32(backend, avb.RegTSAUXC)
	if err != nil {
		return err
	}

	// Disable, then clear the auxiliary control register entirely
	// before reprogramming, matching the "disable, clear" steps of the
	// recovery sequence.
	if err := ctx.WriteMmio32(backend, avb.RegTSAUXC, tsauxc|tsauxcDisableSystime); err != nil {
		return err
	}
	if err := ctx.WriteMmio32(backend, avb.RegTSAUXC, 0); err != nil {
		return err
	}

	backend.Sleep(50 * time.Millisecond)

	if err := ctx.WriteMmio32(backend, avb.RegTIMINCA, timincaDefault); err != nil {
		return err
	}

	if err := writeSystim(ctx, backend, i210SeedInitial); err != nil {
		return err
	}

	if err := ctx.WriteMmio32(backend, avb.RegTSAUXC, tsauxcI210PhcEn); err != nil {
		return err
	}

	const attempts = 8
	const interval = 100 * time.Millisecond
	first, err := readSystim(ctx, backend)
	if err != nil {
		return err
	}
	for i := 0; i < attempts; i++ {
		backend.Sleep(interval)
		now, err := readSystim(ctx, backend)
		if err != nil {
			return err
		}
		if now > first {
			ctx.MarkPtpReady()
			return nil
		}
	}

	// Non-fatal: the context simply stays at BarMapped per §4.C step 3.
	return avb.NewStatusError(avb.StatusNotReady, "I210 SYSTIM did not advance after stuck-at-zero recovery")
}

func (i210Ops) SetupTas(*avb.AdapterContext, avb.PlatformBackend, *avb.TasConfig) error {
	return avb.NewStatusError(avb.StatusUnsupported, "I210 has no TSN Time-Aware Shaper")
}

func (i210Ops) SetupFp(*avb.AdapterContext, avb.PlatformBackend, *avb.FpConfig) error {
	return avb.NewStatusError(avb.StatusUnsupported, "I210 has no Frame Preemption")
}

func (i210Ops) SetupPtm(*avb.AdapterContext, avb.PlatformBackend, *avb.PtmConfig) error {
	return avb.NewStatusError(avb.StatusUnsupported, "I210 has no PCIe PTM")
}

func (i210Ops) MdioRead(*avb.AdapterContext, avb.PlatformBackend, uint16, uint16) (uint16, error) {
	return 0, avb.NewStatusError(avb.StatusUnsupported, "I210 has no MDIO capability")
}

func (i210Ops) MdioWrite(*avb.AdapterContext, avb.PlatformBackend, uint16, uint16, uint16) error {
	return avb.NewStatusError(avb.StatusUnsupported, "I210 has no MDIO capability")
}
