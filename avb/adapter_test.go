package avb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarfld/IntelAvbFilter-sub000/avb"
)

type fakeBinding struct {
	friendlyName string
	bus          uint8
	devFunc      uint8
	ok           bool
}

func (f fakeBinding) FriendlyName() string { return f.friendlyName }
func (f fakeBinding) PciLocation() (uint8, uint8, bool) {
	return f.bus, f.devFunc, f.ok
}

func newTestContext(family avb.FamilyTag) *avb.AdapterContext {
	identity := avb.Identity{VendorID: avb.VendorIntel, DeviceID: 0x125B, Family: family}
	return avb.NewAdapterContext(identity, fakeBinding{friendlyName: "Intel(R) Ethernet Controller", ok: true})
}

// State only ever advances, never regresses (spec testable property 1).
func TestAdapterContext_StateIsMonotonic(t *testing.T) {
	ctx := newTestContext(avb.FamilyI226)
	assert.Equal(t, avb.HwStateBound, ctx.State())

	ctx.MarkBarMapped(&avb.MmioMapping{})
	assert.Equal(t, avb.HwStateBarMapped, ctx.State())

	ctx.MarkPtpReady()
	assert.Equal(t, avb.HwStatePtpReady, ctx.State())

	// Calling MarkBarMapped again must never regress the state below
	// what was already achieved.
	ctx.MarkBarMapped(&avb.MmioMapping{})
	assert.Equal(t, avb.HwStatePtpReady, ctx.State())
}

// Once a capability bit is set it is never cleared (spec testable
// property 2).
func TestAdapterContext_CapabilitiesAreStable(t *testing.T) {
	ctx := newTestContext(avb.FamilyI226)
	before := ctx.Capabilities()
	assert.True(t, before.Has(avb.CapTsnTas))

	ctx.MarkBarMapped(&avb.MmioMapping{})
	after := ctx.Capabilities()
	assert.True(t, after.Has(before))
	assert.True(t, after.Has(avb.CapMmio))
}

func TestAdapterContext_ReadWriteMmioRequiresMapping(t *testing.T) {
	ctx := newTestContext(avb.FamilyI210)
	backend := avb.NewSimBackend()

	_, err := ctx.ReadMmio32(backend, avb.RegSTATUS)
	require.Error(t, err)
	assert.Equal(t, avb.StatusNotReady, avb.AsStatus(err))

	mapping, err := avb.Map(backend, 0xFE000000, 0x20000)
	require.NoError(t, err)
	ctx.MarkBarMapped(mapping)

	require.NoError(t, ctx.WriteMmio32(backend, avb.RegSTATUS, 0x2))
	value, err := ctx.ReadMmio32(backend, avb.RegSTATUS)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x2), value)
}

func TestFamilyBaseline_NonTsnFamiliesLackTas(t *testing.T) {
	for _, family := range []avb.FamilyTag{avb.FamilyI210, avb.FamilyI217, avb.FamilyI219} {
		caps := avb.BaselineCapabilities(family)
		assert.False(t, caps.Has(avb.CapTsnTas), "family %s should not have CapTsnTas", family)
	}
	for _, family := range []avb.FamilyTag{avb.FamilyI225, avb.FamilyI226} {
		caps := avb.BaselineCapabilities(family)
		assert.True(t, caps.Has(avb.CapTsnTas), "family %s should have CapTsnTas", family)
	}
}
