package hal

import "github.com/zarfld/IntelAvbFilter-sub000/avb"

type i225Ops struct{}

func (i225Ops) Name() string { return "I225" }

func (i225Ops) Init(ctx *avb.AdapterContext, backend avb.PlatformBackend) error {
	status, err := ctx.ReadMmio32(backend, avb.RegSTATUS)
	if err != nil {
		return err
	}
	if status == avb.InvalidRegisterValue {
		return avb.NewStatusError(avb.StatusHardwareError, "STATUS register reads as invalid")
	}
	return nil
}

func (i225Ops) Cleanup(*avb.AdapterContext, avb.PlatformBackend) {}

func (i225Ops) GetInfo(ctx *avb.AdapterContext, backend avb.PlatformBackend) ([]byte, error) {
	return genericGetInfo(ctx, backend, "I225")
}

func (i225Ops) GetSystime(ctx *avb.AdapterContext, backend avb.PlatformBackend) (uint64, error) {
	return readSystim(ctx, backend)
}

func (i225Ops) SetSystime(ctx *avb.AdapterContext, backend avb.PlatformBackend, ns uint64) error {
	return writeSystim(ctx, backend, ns)
}

func (i225Ops) InitPtp(ctx *avb.AdapterContext, backend avb.PlatformBackend) error {
	return runGenericPtpPrime(ctx, backend)
}

// SetupTas mirrors I226's sequence without the FUTSCDDIS quirk (spec
// §4.H: "I225 mirrors except for the FUTSCDDIS bit").
func (i225Ops) SetupTas(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.TasConfig) error {
	return runTasSequence(ctx, backend, cfg, false)
}

func (i225Ops) SetupFp(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.FpConfig) error {
	return runFpSequence(ctx, backend, cfg)
}

func (i225Ops) SetupPtm(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.PtmConfig) error {
	return runPtmSequence(ctx, backend, cfg)
}

func (i225Ops) MdioRead(*avb.AdapterContext, avb.PlatformBackend, uint16, uint16) (uint16, error) {
	return 0, avb.NewStatusError(avb.StatusUnsupported, "I225 has no MDIO capability")
}

func (i225Ops) MdioWrite(*avb.AdapterContext, avb.PlatformBackend, uint16, uint16, uint16) error {
	return avb.NewStatusError(avb.StatusUnsupported, "I225 has no MDIO capability")
}
