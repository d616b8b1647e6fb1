package hal_test

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarfld/IntelAvbFilter-sub000/avb"
	"github.com/zarfld/IntelAvbFilter-sub000/avb/hal"
)

type fakeBinding struct{ family avb.FamilyTag }

func (fakeBinding) FriendlyName() string             { return "Intel(R) Ethernet Controller" }
func (fakeBinding) PciLocation() (uint8, uint8, bool) { return 0, 0, true }

func newMappedContext(t *testing.T, backend *avb.SimBackend, family avb.FamilyTag, deviceID uint16) *avb.AdapterContext {
	t.Helper()
	identity := avb.Identity{VendorID: avb.VendorIntel, DeviceID: deviceID, Family: family}
	ctx := avb.NewAdapterContext(identity, fakeBinding{family: family})
	mapping, err := avb.Map(backend, 0xFE000000, 0x20000)
	require.NoError(t, err)
	ctx.MarkBarMapped(mapping)
	return ctx
}

func advancingClock(backend *avb.SimBackend) {
	backend.TickHook = func(_ uintptr, registers []byte, elapsed time.Duration) {
		current := binary.LittleEndian.Uint32(registers[avb.RegSYSTIML:])
		binary.LittleEndian.PutUint32(registers[avb.RegSYSTIML:], current+uint32(elapsed))
	}
}

func TestMdioReadWrite_I219(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newMappedContext(t, backend, avb.FamilyI219, 0x15B7)

	// MDIC layout: ready bit set, data in the low 16 bits.
	backend.TickHook = func(token uintptr, registers []byte, _ time.Duration) {
		cmd := binary.LittleEndian.Uint32(registers[hal.RegMDIC:])
		binary.LittleEndian.PutUint32(registers[hal.RegMDIC:], cmd|(1<<28)|0x00AB)
	}

	value, err := hal.MdioRead(ctx, backend, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x00AB), value)

	err = hal.MdioWrite(ctx, backend, 1, 5, 0x1234)
	require.NoError(t, err)
}

func TestMdioRead_UnsupportedOnI210(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newMappedContext(t, backend, avb.FamilyI210, 0x1533)

	_, err := hal.MdioRead(ctx, backend, 1, 5)
	require.Error(t, err)
	assert.Equal(t, avb.StatusUnsupported, avb.AsStatus(err))
}

func validTasConfig() *avb.TasConfig {
	return &avb.TasConfig{
		CycleTimeNs:   1_000_000,
		GateDurations: [8]uint32{500_000, 500_000},
	}
}

func TestSetupTas_I226AppliesFutscddisOnFirstProgram(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newMappedContext(t, backend, avb.FamilyI226, 0x125B)
	advancingClock(backend)
	ctx.MarkPtpReady()

	require.NoError(t, hal.SetupTas(ctx, backend, validTasConfig()))

	tqavctrl, err := ctx.ReadMmio32(backend, hal.RegTQAVCTRL)
	require.NoError(t, err)
	assert.NotZero(t, tqavctrl&0x1, "TRANSMIT_MODE_TSN should be set")
	assert.NotZero(t, tqavctrl&0x800000, "FUTSCDDIS should be set when no schedule was running")
}

// Reprogramming the same schedule twice must succeed both times with
// no accumulation of stale state (spec testable property: idempotent
// TAS reprogramming).
func TestSetupTas_IdempotentReprogram(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newMappedContext(t, backend, avb.FamilyI225, 0x15F2)
	advancingClock(backend)
	ctx.MarkPtpReady()

	cfg := validTasConfig()
	require.NoError(t, hal.SetupTas(ctx, backend, cfg))
	require.NoError(t, hal.SetupTas(ctx, backend, cfg))

	tqavctrl, err := ctx.ReadMmio32(backend, hal.RegTQAVCTRL)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1|0x8), tqavctrl, "TQAVCTRL should hold only TRANSMIT_MODE_TSN|ENHANCED_QAV")
	cycleT, err := ctx.ReadMmio32(backend, hal.RegQBVCYCLET)
	require.NoError(t, err)
	assert.Equal(t, cfg.CycleTimeNs, cycleT)
}

func TestSetupTas_RejectsGateDurationMismatch(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newMappedContext(t, backend, avb.FamilyI226, 0x125B)
	advancingClock(backend)
	ctx.MarkPtpReady()

	cfg := &avb.TasConfig{CycleTimeNs: 1_000_000, GateDurations: [8]uint32{1}}
	err := hal.SetupTas(ctx, backend, cfg)
	require.Error(t, err)
	assert.Equal(t, avb.StatusInvalidParameter, avb.AsStatus(err))
}

func TestSetupTas_NotReadyBelowPtpReady(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newMappedContext(t, backend, avb.FamilyI226, 0x125B)

	err := hal.SetupTas(ctx, backend, validTasConfig())
	require.Error(t, err)
	assert.Equal(t, avb.StatusNotReady, avb.AsStatus(err))
}

func TestSetupFp_RequiresLinkUp(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newMappedContext(t, backend, avb.FamilyI226, 0x125B)
	advancingClock(backend)
	ctx.MarkPtpReady()

	err := hal.SetupFp(ctx, backend, &avb.FpConfig{PreemptableQueues: 0x0F})
	require.Error(t, err)
	assert.Equal(t, avb.StatusNotReady, avb.AsStatus(err))

	require.NoError(t, ctx.WriteMmio32(backend, avb.RegSTATUS, 1<<1))
	require.NoError(t, hal.SetupFp(ctx, backend, &avb.FpConfig{PreemptableQueues: 0x0F}))
}

func TestSetupPtm_RoundTrips(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newMappedContext(t, backend, avb.FamilyI226, 0x125B)
	advancingClock(backend)
	ctx.MarkPtpReady()

	require.NoError(t, hal.SetupPtm(ctx, backend, &avb.PtmConfig{Enabled: true, ClockGranularity: 4}))
}
