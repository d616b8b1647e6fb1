package hal

import "github.com/zarfld/IntelAvbFilter-sub000/avb"

type i226Ops struct{}

func (i226Ops) Name() string { return "I226" }

func (i226Ops) Init(ctx *avb.AdapterContext, backend avb.PlatformBackend) error {
	status, err := ctx.ReadMmio32(backend, avb.RegSTATUS)
	if err != nil {
		return err
	}
	if status == avb.InvalidRegisterValue {
		return avb.NewStatusError(avb.StatusHardwareError, "STATUS register reads as invalid")
	}
	return nil
}

func (i226Ops) Cleanup(*avb.AdapterContext, avb.PlatformBackend) {}

func (i226Ops) GetInfo(ctx *avb.AdapterContext, backend avb.PlatformBackend) ([]byte, error) {
	return genericGetInfo(ctx, backend, "I226")
}

func (i226Ops) GetSystime(ctx *avb.AdapterContext, backend avb.PlatformBackend) (uint64, error) {
	return readSystim(ctx, backend)
}

// SetSystime fails: on I226, SYSTIM is read-only (spec §4.G notes);
// the wall clock is steered via TIMINCA drift/offset at higher layers.
func (i226Ops) SetSystime(*avb.AdapterContext, avb.PlatformBackend, uint64) error {
	return avb.NewStatusError(avb.StatusUnsupported, "I226 SYSTIM is read-only, steer via TIMINCA instead")
}

func (i226Ops) InitPtp(ctx *avb.AdapterContext, backend avb.PlatformBackend) error {
	return runGenericPtpPrime(ctx, backend)
}

// SetupTas applies the I226 FUTSCDDIS two-write quirk (spec §4.H step
// 2 and step 7).
func (i226Ops) SetupTas(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.TasConfig) error {
	return runTasSequence(ctx, backend, cfg, true)
}

func (i226Ops) SetupFp(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.FpConfig) error {
	return runFpSequence(ctx, backend, cfg)
}

func (i226Ops) SetupPtm(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.PtmConfig) error {
	return runPtmSequence(ctx, backend, cfg)
}

func (i226Ops) MdioRead(*avb.AdapterContext, avb.PlatformBackend, uint16, uint16) (uint16, error) {
	return 0, avb.NewStatusError(avb.StatusUnsupported, "I226 has no MDIO capability")
}

func (i226Ops) MdioWrite(*avb.AdapterContext, avb.PlatformBackend, uint16, uint16, uint16) error {
	return avb.NewStatusError(avb.StatusUnsupported, "I226 has no MDIO capability")
}
