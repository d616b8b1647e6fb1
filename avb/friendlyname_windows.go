//go:build windows

package avb

import (
	"bytes"
	"strings"

	"golang.org/x/sys/windows/registry"
)

const (
	regNetworkControlKey = `SYSTEM\CurrentControlSet\Control\Network\{4D36E972-E325-11CE-BFC1-08002BE10318}\`
	regValConnection     = `\Connection`
	regValName            = `Name`
)

// ResolveFriendlyName converts a \DEVICE\{GUID} adapter name to the
// OS-presented friendly name carried in the GetDeviceInfo blob; the
// family itself is classified from the PCI device id (ClassifyFamily),
// not from this name. Adapted from the teacher's
// ConvertWindows2000AdapterName, trimmed to the single case this
// filter cares about: a real physical NIC, never an NDISWAN pseudo
// adapter.
func ResolveFriendlyName(adapterName string) string {
	trimmed := bytes.Trim([]byte(strings.TrimPrefix(adapterName, `\DEVICE\`)), "\x00")

	keyPath := regNetworkControlKey + string(trimmed) + regValConnection

	key, err := registry.OpenKey(registry.LOCAL_MACHINE, keyPath, registry.READ)
	if err != nil {
		return string(trimmed)
	}
	defer key.Close()

	val, _, err := key.GetStringValue(regValName)
	if err != nil {
		return string(trimmed)
	}

	return val
}
