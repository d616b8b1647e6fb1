//go:build windows

package avb

// WinFilterBinding is the real FilterBinding, backed by the raw
// \DEVICE\{GUID} name and PCI location the kernel-mode filter reports
// on attach. It mirrors WinBackend's "thin wrapper over what the
// driver gave us" shape: the only work it does is resolve the raw
// adapter name to its OS-presented friendly name on first use, the
// same conversion the teacher's ConvertWindows2000AdapterName performs
// for NetworkAdapterInfo.
type WinFilterBinding struct {
	AdapterName string
	Bus         uint8
	DeviceFunc  uint8
	HasLocation bool

	friendlyName string
	resolved     bool
}

// NewWinFilterBinding wraps the raw attach-time identity the filter's
// IOCTL surface reported for one adapter.
func NewWinFilterBinding(adapterName string, bus, deviceFunc uint8, hasLocation bool) *WinFilterBinding {
	return &WinFilterBinding{AdapterName: adapterName, Bus: bus, DeviceFunc: deviceFunc, HasLocation: hasLocation}
}

// FriendlyName resolves and caches the adapter's friendly name.
func (b *WinFilterBinding) FriendlyName() string {
	if !b.resolved {
		b.friendlyName = ResolveFriendlyName(b.AdapterName)
		b.resolved = true
	}
	return b.friendlyName
}

// PciLocation returns the bus/device-function byte the filter reported
// at attach, or ok=false if the adapter never resolved to a PCI
// location (e.g. a non-PCI NDIS miniport).
func (b *WinFilterBinding) PciLocation() (bus uint8, deviceFunc uint8, ok bool) {
	return b.Bus, b.DeviceFunc, b.HasLocation
}

var _ FilterBinding = (*WinFilterBinding)(nil)
