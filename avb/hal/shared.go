package hal

import (
	"encoding/binary"

	"github.com/zarfld/IntelAvbFilter-sub000/avb"
	"github.com/zarfld/IntelAvbFilter-sub000/avb/ptp"
)

// writeSystim writes both SYSTIM halves. Per spec §4.G, some families
// (I226) treat SYSTIM as read-only and never call this from their
// vtable's SetSystime.
func writeSystim(ctx *avb.AdapterContext, backend avb.PlatformBackend, ns uint64) error {
	if err := ctx.WriteMmio32(backend, avb.RegSYSTIML, uint32(ns)); err != nil {
		return err
	}
	return ctx.WriteMmio32(backend, avb.RegSYSTIMH, uint32(ns>>32))
}

// genericGetInfo renders a minimal device-info blob shared by every
// family: name, current capability bits, the STATUS register value, and the adapter's
// human-facing friendly name (the same label ConvertWindows2000AdapterName
// supplied the teacher's NetworkAdapterInfo listing). Families with
// additional fields (none currently) would override this.
func genericGetInfo(ctx *avb.AdapterContext, backend avb.PlatformBackend, name string) ([]byte, error) {
	status, err := ctx.ReadMmio32(backend, avb.RegSTATUS)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 48)
	copy(buf[0:8], padName(name))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(ctx.Capabilities()))
	binary.LittleEndian.PutUint32(buf[12:16], status)
	copy(buf[16:48], padFriendlyName(ctx.Binding.FriendlyName()))
	return buf, nil
}

func padName(name string) []byte {
	out := make([]byte, 8)
	copy(out, name)
	return out
}

// padFriendlyName truncates or zero-pads a friendly name to the 32
// bytes reserved for it in the device-info blob.
func padFriendlyName(name string) []byte {
	out := make([]byte, 32)
	copy(out, name)
	return out
}

// runGenericPtpPrime delegates to the family-agnostic PTP prime
// sequence (spec §4.G), used by every family whose InitPtp does not
// need a family-specific recovery sequence.
func runGenericPtpPrime(ctx *avb.AdapterContext, backend avb.PlatformBackend) error {
	return ptp.Prime(ctx, backend)
}
