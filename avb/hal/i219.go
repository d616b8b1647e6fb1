package hal

import "github.com/zarfld/IntelAvbFilter-sub000/avb"

type i219Ops struct{}

func (i219Ops) Name() string { return "I219" }

func (i219Ops) Init(ctx *avb.AdapterContext, backend avb.PlatformBackend) error {
	status, err := ctx.ReadMmio32(backend, avb.RegSTATUS)
	if err != nil {
		return err
	}
	if status == avb.InvalidRegisterValue {
		return avb.NewStatusError(avb.StatusHardwareError, "STATUS register reads as invalid")
	}
	return nil
}

func (i219Ops) Cleanup(*avb.AdapterContext, avb.PlatformBackend) {}

func (i219Ops) GetInfo(ctx *avb.AdapterContext, backend avb.PlatformBackend) ([]byte, error) {
	return genericGetInfo(ctx, backend, "I219")
}

func (i219Ops) GetSystime(ctx *avb.AdapterContext, backend avb.PlatformBackend) (uint64, error) {
	return readSystim(ctx, backend)
}

func (i219Ops) SetSystime(ctx *avb.AdapterContext, backend avb.PlatformBackend, ns uint64) error {
	return writeSystim(ctx, backend, ns)
}

func (i219Ops) InitPtp(ctx *avb.AdapterContext, backend avb.PlatformBackend) error {
	return runGenericPtpPrime(ctx, backend)
}

func (i219Ops) SetupTas(*avb.AdapterContext, avb.PlatformBackend, *avb.TasConfig) error {
	return avb.NewStatusError(avb.StatusUnsupported, "I219 has no TSN Time-Aware Shaper")
}

func (i219Ops) SetupFp(*avb.AdapterContext, avb.PlatformBackend, *avb.FpConfig) error {
	return avb.NewStatusError(avb.StatusUnsupported, "I219 has no Frame Preemption")
}

func (i219Ops) SetupPtm(*avb.AdapterContext, avb.PlatformBackend, *avb.PtmConfig) error {
	return avb.NewStatusError(avb.StatusUnsupported, "I219 has no PCIe PTM")
}

func (i219Ops) MdioRead(ctx *avb.AdapterContext, backend avb.PlatformBackend, phy, reg uint16) (uint16, error) {
	return mdioRead(ctx, backend, phy, reg)
}

func (i219Ops) MdioWrite(ctx *avb.AdapterContext, backend avb.PlatformBackend, phy, reg, value uint16) error {
	return mdioWrite(ctx, backend, phy, reg, value)
}
