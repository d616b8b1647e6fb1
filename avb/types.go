// Package avb implements the core of the Intel AVB/TSN filter driver:
// adapter discovery, MMIO mapping, the hardware-readiness state machine,
// and the registry of bound adapters. The NDIS filter attach/detach
// plumbing, packet send/receive paths, and driver entry/unload
// boilerplate are external collaborators and are not implemented here;
// they are expected to drive this package through FilterBinding and
// Logger (see platform.go, logger.go).
package avb

import "fmt"

// FamilyTag identifies the Intel Ethernet controller family an adapter
// belongs to. The generic core never branches on family directly; it
// looks up a FamilyTag in the hal package's operation registry.
type FamilyTag int

const (
	FamilyUnknown FamilyTag = iota
	FamilyI210
	FamilyI217
	FamilyI219
	FamilyI225
	FamilyI226
)

func (f FamilyTag) String() string {
	switch f {
	case FamilyI210:
		return "I210"
	case FamilyI217:
		return "I217"
	case FamilyI219:
		return "I219"
	case FamilyI225:
		return "I225"
	case FamilyI226:
		return "I226"
	default:
		return "Unknown"
	}
}

// VendorIntel is the only PCI vendor id the core will classify.
const VendorIntel uint16 = 0x8086

// deviceFamilyTable is the authoritative PCI device id -> family
// mapping (spec §6). Lookups outside this table classify as
// FamilyUnknown.
var deviceFamilyTable = map[uint16]FamilyTag{
	0x1533: FamilyI210, 0x1534: FamilyI210, 0x1535: FamilyI210,
	0x1536: FamilyI210, 0x1537: FamilyI210, 0x1538: FamilyI210, 0x157B: FamilyI210,

	0x153A: FamilyI217, 0x153B: FamilyI217,

	0x15B7: FamilyI219, 0x15B8: FamilyI219, 0x15D6: FamilyI219, 0x15D7: FamilyI219,
	0x15D8: FamilyI219, 0x0DC7: FamilyI219, 0x1570: FamilyI219, 0x15E3: FamilyI219,

	0x15F2: FamilyI225, 0x15F3: FamilyI225, 0x0D9F: FamilyI225,

	0x125B: FamilyI226, 0x125C: FamilyI226, 0x125D: FamilyI226,
}

// ClassifyFamily derives a FamilyTag from a PCI vendor/device id pair,
// per the authoritative table in spec §6. Any vendor other than Intel
// also classifies as FamilyUnknown.
func ClassifyFamily(vendorID, deviceID uint16) FamilyTag {
	if vendorID != VendorIntel {
		return FamilyUnknown
	}
	if family, ok := deviceFamilyTable[deviceID]; ok {
		return family
	}
	return FamilyUnknown
}

// bar0LengthTable maps device id to the length of BAR0. All currently
// supported families use 128 KiB; the table exists so a newly added
// family with a different aperture size needs only a table entry.
var bar0LengthTable = map[uint16]uint32{}

const defaultBar0Length uint32 = 0x20000

// Bar0Length returns the BAR0 length to map for a given device id.
func Bar0Length(deviceID uint16) uint32 {
	if length, ok := bar0LengthTable[deviceID]; ok {
		return length
	}
	return defaultBar0Length
}

// Capabilities is a bitset of hardware features an adapter exposes.
// Once set for an AdapterContext, a capability bit is never cleared
// until the context itself is destroyed (spec §3 invariants).
type Capabilities uint32

const (
	CapMmio Capabilities = 1 << iota
	CapMdio
	CapBasicPtp
	CapEnhancedTimestamp
	CapTsnTas
	CapTsnFp
	CapPciePtm
	CapRate2_5G
	CapEee
)

var capabilityNames = []struct {
	bit  Capabilities
	name string
}{
	{CapMmio, "Mmio"},
	{CapMdio, "Mdio"},
	{CapBasicPtp, "BasicPtp"},
	{CapEnhancedTimestamp, "EnhancedTimestamp"},
	{CapTsnTas, "TsnTas"},
	{CapTsnFp, "TsnFp"},
	{CapPciePtm, "PciePtm"},
	{CapRate2_5G, "Rate2_5G"},
	{CapEee, "Eee"},
}

// Has reports whether every bit in want is set in c.
func (c Capabilities) Has(want Capabilities) bool {
	return c&want == want
}

func (c Capabilities) String() string {
	s := ""
	for _, entry := range capabilityNames {
		if c.Has(entry.bit) {
			if s != "" {
				s += "|"
			}
			s += entry.name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// familyBaseline is the authoritative per-family baseline capability
// set (spec §4.C), applied the moment an AdapterContext reaches
// HwStateBound. It never includes Mmio/PtpReady-gated bits that are
// earned dynamically except where the table below says so explicitly
// (Mmio is part of every family's baseline because BAR0 is the same
// shape for every supported family; it is confirmed, not earned, by
// successful mapping).
var familyBaseline = map[FamilyTag]Capabilities{
	FamilyI210:    CapBasicPtp | CapEnhancedTimestamp | CapMmio,
	FamilyI217:    CapBasicPtp | CapMmio | CapMdio,
	FamilyI219:    CapBasicPtp | CapEnhancedTimestamp | CapMmio | CapMdio,
	FamilyI225:    CapBasicPtp | CapEnhancedTimestamp | CapTsnTas | CapTsnFp | CapPciePtm | CapRate2_5G | CapMmio,
	FamilyI226:    CapBasicPtp | CapEnhancedTimestamp | CapTsnTas | CapTsnFp | CapPciePtm | CapRate2_5G | CapEee | CapMmio,
	FamilyUnknown: CapMmio,
}

// BaselineCapabilities returns the capability bits a family is
// guaranteed to expose as soon as it is classified, per spec §4.C.
func BaselineCapabilities(family FamilyTag) Capabilities {
	return familyBaseline[family]
}

// PciAddress identifies an adapter's location on the PCI bus.
type PciAddress struct {
	Bus      uint8
	Device   uint8
	Function uint8
}

func (a PciAddress) String() string {
	return fmt.Sprintf("%02x:%02x.%x", a.Bus, a.Device, a.Function)
}

// Identity is the immutable identity of a bound adapter.
type Identity struct {
	VendorID uint16
	DeviceID uint16
	Family   FamilyTag
	Pci      PciAddress
}
