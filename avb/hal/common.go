package hal

import "github.com/zarfld/IntelAvbFilter-sub000/avb"

func resolve(ctx *avb.AdapterContext) (DeviceOps, error) {
	ops, ok := Lookup(ctx.Identity.Family)
	if !ok {
		return nil, avb.NewStatusError(avb.StatusUnsupported, "no hal vtable for family %s", ctx.Identity.Family)
	}
	return ops, nil
}

func requireCapability(ctx *avb.AdapterContext, want avb.Capabilities, opName string) error {
	if !ctx.Capabilities().Has(want) {
		return avb.NewStatusError(avb.StatusUnsupported, "%s requires capability %s, adapter has %s", opName, want, ctx.Capabilities())
	}
	return nil
}

// Init runs the family's initialisation sequence (spec §4.C deferred
// bring-up step "invoke family init").
func Init(ctx *avb.AdapterContext, backend avb.PlatformBackend) error {
	ops, err := resolve(ctx)
	if err != nil {
		return err
	}
	return ops.Init(ctx, backend)
}

// Cleanup runs the family's teardown sequence. Best-effort: a missing
// vtable is not an error at teardown time.
func Cleanup(ctx *avb.AdapterContext, backend avb.PlatformBackend) {
	ops, ok := Lookup(ctx.Identity.Family)
	if !ok {
		return
	}
	ops.Cleanup(ctx, backend)
}

// GetInfo returns the family's device-info blob (spec §6 GetDeviceInfo).
func GetInfo(ctx *avb.AdapterContext, backend avb.PlatformBackend) ([]byte, error) {
	ops, err := resolve(ctx)
	if err != nil {
		return nil, err
	}
	return ops.GetInfo(ctx, backend)
}

// SetSystime writes the PTP hardware clock (spec §6 SetTimestamp).
func SetSystime(ctx *avb.AdapterContext, backend avb.PlatformBackend, ns uint64) error {
	ops, err := resolve(ctx)
	if err != nil {
		return err
	}
	if err := requireCapability(ctx, avb.CapBasicPtp, "SetSystime"); err != nil {
		return err
	}
	return ops.SetSystime(ctx, backend, ns)
}

// GetSystime reads the PTP hardware clock (spec §6 GetTimestamp).
func GetSystime(ctx *avb.AdapterContext, backend avb.PlatformBackend) (uint64, error) {
	ops, err := resolve(ctx)
	if err != nil {
		return 0, err
	}
	if err := requireCapability(ctx, avb.CapBasicPtp, "GetSystime"); err != nil {
		return 0, err
	}
	return ops.GetSystime(ctx, backend)
}

// InitPtp runs the family's PTP prime sequence (spec §4.G). The request
// multiplexer's opportunistic prime calls ptp.Prime directly rather
// than this dispatcher.
func InitPtp(ctx *avb.AdapterContext, backend avb.PlatformBackend) error {
	ops, err := resolve(ctx)
	if err != nil {
		return err
	}
	return ops.InitPtp(ctx, backend)
}

// SetupTas dispatches IEEE 802.1Qbv programming (spec §4.H). Gated on
// CapTsnTas: the generic core never reaches a non-I225/I226 vtable for
// this operation.
func SetupTas(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.TasConfig) error {
	ops, err := resolve(ctx)
	if err != nil {
		return err
	}
	if err := requireCapability(ctx, avb.CapTsnTas, "SetupTas"); err != nil {
		return err
	}
	return ops.SetupTas(ctx, backend, cfg)
}

// SetupFp dispatches IEEE 802.1Qbu programming (spec §4.H).
func SetupFp(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.FpConfig) error {
	ops, err := resolve(ctx)
	if err != nil {
		return err
	}
	if err := requireCapability(ctx, avb.CapTsnFp, "SetupFp"); err != nil {
		return err
	}
	return ops.SetupFp(ctx, backend, cfg)
}

// SetupPtm dispatches PCIe PTM programming (spec §4.H).
func SetupPtm(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.PtmConfig) error {
	ops, err := resolve(ctx)
	if err != nil {
		return err
	}
	if err := requireCapability(ctx, avb.CapPciePtm, "SetupPtm"); err != nil {
		return err
	}
	return ops.SetupPtm(ctx, backend, cfg)
}

// MdioRead dispatches an indirect PHY register read (spec §4.F).
func MdioRead(ctx *avb.AdapterContext, backend avb.PlatformBackend, phy, reg uint16) (uint16, error) {
	ops, err := resolve(ctx)
	if err != nil {
		return 0, err
	}
	if err := requireCapability(ctx, avb.CapMdio, "MdioRead"); err != nil {
		return 0, err
	}
	return ops.MdioRead(ctx, backend, phy, reg)
}

// MdioWrite dispatches an indirect PHY register write (spec §4.F).
func MdioWrite(ctx *avb.AdapterContext, backend avb.PlatformBackend, phy, reg, value uint16) error {
	ops, err := resolve(ctx)
	if err != nil {
		return err
	}
	if err := requireCapability(ctx, avb.CapMdio, "MdioWrite"); err != nil {
		return err
	}
	return ops.MdioWrite(ctx, backend, phy, reg, value)
}
