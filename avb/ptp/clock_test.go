package ptp_test

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarfld/IntelAvbFilter-sub000/avb"
	"github.com/zarfld/IntelAvbFilter-sub000/avb/ptp"
)

type fakeBinding struct{}

func (fakeBinding) FriendlyName() string             { return "Intel(R) I226" }
func (fakeBinding) PciLocation() (uint8, uint8, bool) { return 0, 0, true }

func newReadyContext(t *testing.T, backend *avb.SimBackend) *avb.AdapterContext {
	t.Helper()
	identity := avb.Identity{VendorID: avb.VendorIntel, DeviceID: 0x125B, Family: avb.FamilyI226}
	ctx := avb.NewAdapterContext(identity, fakeBinding{})
	mapping, err := avb.Map(backend, 0xFE000000, 0x20000)
	require.NoError(t, err)
	ctx.MarkBarMapped(mapping)
	return ctx
}

func TestPrime_AdvancingClockReachesPtpReady(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newReadyContext(t, backend)

	backend.TickHook = func(_ uintptr, registers []byte, elapsed time.Duration) {
		current := binary.LittleEndian.Uint32(registers[avb.RegSYSTIML:])
		binary.LittleEndian.PutUint32(registers[avb.RegSYSTIML:], current+uint32(elapsed))
	}

	require.NoError(t, ptp.Prime(ctx, backend))
	assert.Equal(t, avb.HwStatePtpReady, ctx.State())
}

func TestPrime_StuckClockStaysAtBarMapped(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newReadyContext(t, backend)

	// No TickHook: SYSTIML never advances across the Prime sequence's
	// sampling window.
	require.NoError(t, ptp.Prime(ctx, backend))
	assert.Equal(t, avb.HwStateBarMapped, ctx.State())
}

func TestPrime_ClearsDisableSystimeBit(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newReadyContext(t, backend)
	require.NoError(t, ctx.WriteMmio32(backend, avb.RegTSAUXC, 1<<31))

	_ = ptp.Prime(ctx, backend)

	tsauxc, err := ctx.ReadMmio32(backend, avb.RegTSAUXC)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), tsauxc&(1<<31))
}
