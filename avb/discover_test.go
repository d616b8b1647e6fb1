package avb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarfld/IntelAvbFilter-sub000/avb"
)

func TestDiscover_RejectsNonIntelVendor(t *testing.T) {
	backend := avb.NewSimBackend()
	pci := avb.PciAddress{Bus: 0, Device: 1, Function: 0}
	backend.SetConfig(pci, 0x00, 0x1234_10DE) // NVIDIA vendor id

	binding := fakeBinding{ok: true, bus: 0, devFunc: 1 << 3}
	_, err := avb.Discover(backend, binding)
	require.Error(t, err)
	assert.Equal(t, avb.StatusNotFound, avb.AsStatus(err))
}

func TestDiscover_RejectsIoSpaceBar(t *testing.T) {
	backend := avb.NewSimBackend()
	pci := avb.PciAddress{Bus: 0, Device: 1, Function: 0}
	backend.SetConfig(pci, 0x00, uint32(0x125B)<<16|uint32(avb.VendorIntel))
	backend.SetConfig(pci, 0x10, 0x1) // BAR0 io-space bit set

	binding := fakeBinding{ok: true, bus: 0, devFunc: 1 << 3}
	_, err := avb.Discover(backend, binding)
	require.Error(t, err)
	assert.Equal(t, avb.StatusHardwareError, avb.AsStatus(err))
}

func TestDiscover_ClassifiesFamilyFromDeviceID(t *testing.T) {
	backend := avb.NewSimBackend()
	pci := avb.PciAddress{Bus: 0, Device: 1, Function: 0}
	backend.SetConfig(pci, 0x00, uint32(0x125B)<<16|uint32(avb.VendorIntel))
	backend.SetConfig(pci, 0x10, 0xFE000000) // 32-bit memory BAR

	binding := fakeBinding{ok: true, bus: 0, devFunc: 1 << 3}
	resources, err := avb.Discover(backend, binding)
	require.NoError(t, err)
	assert.Equal(t, avb.FamilyI226, resources.Identity.Family)
	assert.Equal(t, uint64(0xFE000000), resources.Bar0PhysicalBase)
}

func TestDiscover_NoPciLocationIsNoDevice(t *testing.T) {
	backend := avb.NewSimBackend()
	binding := fakeBinding{ok: false}
	_, err := avb.Discover(backend, binding)
	require.Error(t, err)
	assert.Equal(t, avb.StatusNotFound, avb.AsStatus(err))
}
