package avb_test

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarfld/IntelAvbFilter-sub000/avb"
	"github.com/zarfld/IntelAvbFilter-sub000/mock"
)

// Exercises the exact ReadConfig32 call sequence Discover issues
// (vendor/device, then BAR0, then BAR1 only for a 64-bit memory BAR),
// something avb.SimBackend's stateful fake can't assert on its own.
func TestDiscover_Calls64BitBarSequenceInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockPlatformBackend(ctrl)

	pci := avb.PciAddress{Bus: 0, Device: 1, Function: 0}
	vendorDevice := uint32(0x125B)<<16 | uint32(avb.VendorIntel)

	gomock.InOrder(
		backend.EXPECT().ReadConfig32(pci, uint8(0x00)).Return(vendorDevice, nil),
		backend.EXPECT().ReadConfig32(pci, uint8(0x10)).Return(uint32(0xFE000004), nil), // 64-bit memory BAR
		backend.EXPECT().ReadConfig32(pci, uint8(0x14)).Return(uint32(0x1), nil),
	)

	binding := fakeBinding{ok: true, bus: 0, devFunc: 1 << 3}
	resources, err := avb.Discover(backend, binding)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1_0000_0000)|0xFE000000, resources.Bar0PhysicalBase)
	assert.Equal(t, avb.FamilyI226, resources.Identity.Family)
}

func TestDiscover_32BitBarSkipsBar1Read(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock.NewMockPlatformBackend(ctrl)

	pci := avb.PciAddress{Bus: 0, Device: 1, Function: 0}
	vendorDevice := uint32(0x125B)<<16 | uint32(avb.VendorIntel)

	// No expectation is set for offset 0x14: if Discover ever reads it
	// for a 32-bit BAR, the mock fails the test at that unexpected call.
	backend.EXPECT().ReadConfig32(pci, uint8(0x00)).Return(vendorDevice, nil)
	backend.EXPECT().ReadConfig32(pci, uint8(0x10)).Return(uint32(0xFE000000), nil)

	binding := fakeBinding{ok: true, bus: 0, devFunc: 1 << 3}
	_, err := avb.Discover(backend, binding)
	require.NoError(t, err)
}
