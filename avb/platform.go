package avb

import "time"

// FilterBinding is the non-owning back-reference to the NDIS filter
// binding record that owns an AdapterContext (spec §3, §9 "cyclic
// ownership"). The filter attach/detach plumbing itself is an external
// collaborator (spec §1) and is represented here only by the
// properties the core needs to discover hardware resources.
type FilterBinding interface {
	// FriendlyName is the adapter's OS-presented friendly name. It is
	// carried into the GetDeviceInfo blob; the family is classified from
	// the PCI device id (ClassifyFamily), not from this name.
	FriendlyName() string

	// PciLocation returns the bus number and packed (device,function)
	// byte the OS associates with this binding, or ok=false if the
	// binding cannot be resolved to a PCI location.
	PciLocation() (bus uint8, deviceFunc uint8, ok bool)
}

// PlatformBackend is the seam between the family-agnostic core and the
// host's actual register-access mechanism. RegisterPrimitives
// (spec §4.F) and the Resource Discoverer/MMIO Mapper (spec §4.A/§4.B)
// are expressed entirely in terms of this interface so that the core
// can be exercised by SimBackend in tests and by the real Windows
// backend (winbackend.go) in production, the same way the teacher's
// NdisApiInterface lets driver/proxy code run against a gomock double.
type PlatformBackend interface {
	// ReadConfig32 reads a 32-bit value from PCI configuration space.
	ReadConfig32(pci PciAddress, offset uint8) (uint32, error)
	// WriteConfig32 writes a 32-bit value to PCI configuration space.
	WriteConfig32(pci PciAddress, offset uint8, value uint32) error

	// MapMmio maps length bytes of physical address space starting at
	// pa as non-cacheable device memory and returns an opaque token
	// used by ReadMmio32/WriteMmio32/UnmapMmio.
	MapMmio(pa uint64, length uint32) (token uintptr, err error)
	// UnmapMmio releases a mapping previously returned by MapMmio.
	UnmapMmio(token uintptr, length uint32) error

	// ReadMmio32 and WriteMmio32 perform ordered 32-bit register
	// accesses relative to a mapping token returned by MapMmio.
	ReadMmio32(token uintptr, offset uint32) (uint32, error)
	WriteMmio32(token uintptr, offset uint32, value uint32) error

	// Sleep is the backend's bounded-delay primitive. It exists as an
	// interface method (rather than a bare time.Sleep call) so tests
	// can run the PTP-prime and TAS sequences without incurring their
	// real wall-clock waits.
	Sleep(d time.Duration)

	// Now returns the backend's notion of wall-clock time. It is never
	// treated as the PTP hardware clock; the TAS base-time computation
	// reads SYSTIM, not Now.
	Now() time.Time
}
