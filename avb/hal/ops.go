// Package hal implements spec §4.E: a per-family operation vtable that
// the generic core dispatches into once it knows an adapter's family
// tag. Offset knowledge, bit masks, and errata workarounds live behind
// this interface; avb and request never hardcode a family-specific
// register offset.
package hal

import "github.com/zarfld/IntelAvbFilter-sub000/avb"

// DeviceOps is the family operation vtable (spec §4.E). Every family
// implements every method; families that lack a capability (e.g. I210
// lacks TsnTas) answer with a StatusUnsupported error rather than
// omitting the method, since Go has no optional interface members.
// The generic dispatch in this package still gates the call on the
// matching capability bit before ever reaching the vtable.
type DeviceOps interface {
	Name() string

	Init(ctx *avb.AdapterContext, backend avb.PlatformBackend) error
	Cleanup(ctx *avb.AdapterContext, backend avb.PlatformBackend)
	GetInfo(ctx *avb.AdapterContext, backend avb.PlatformBackend) ([]byte, error)

	SetSystime(ctx *avb.AdapterContext, backend avb.PlatformBackend, ns uint64) error
	GetSystime(ctx *avb.AdapterContext, backend avb.PlatformBackend) (uint64, error)
	InitPtp(ctx *avb.AdapterContext, backend avb.PlatformBackend) error

	SetupTas(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.TasConfig) error
	SetupFp(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.FpConfig) error
	SetupPtm(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.PtmConfig) error

	MdioRead(ctx *avb.AdapterContext, backend avb.PlatformBackend, phy, reg uint16) (uint16, error)
	MdioWrite(ctx *avb.AdapterContext, backend avb.PlatformBackend, phy, reg, value uint16) error
}

var registry = map[avb.FamilyTag]DeviceOps{}

// Register installs a family's vtable. The init() below registers every
// supported family.
func Register(tag avb.FamilyTag, ops DeviceOps) {
	registry[tag] = ops
}

// Lookup returns the vtable for a family tag, if one is registered.
func Lookup(tag avb.FamilyTag) (DeviceOps, bool) {
	ops, ok := registry[tag]
	return ops, ok
}

func init() {
	Register(avb.FamilyI210, i210Ops{})
	Register(avb.FamilyI217, i217Ops{})
	Register(avb.FamilyI219, i219Ops{})
	Register(avb.FamilyI225, i225Ops{})
	Register(avb.FamilyI226, i226Ops{})
}
