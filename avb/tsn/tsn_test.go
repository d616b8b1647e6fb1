package tsn_test

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarfld/IntelAvbFilter-sub000/avb"
	"github.com/zarfld/IntelAvbFilter-sub000/avb/tsn"
)

type fakeBinding struct{}

func (fakeBinding) FriendlyName() string             { return "Intel(R) I226" }
func (fakeBinding) PciLocation() (uint8, uint8, bool) { return 0, 0, true }

func newReadyContext(t *testing.T, backend *avb.SimBackend, family avb.FamilyTag, deviceID uint16) *avb.AdapterContext {
	t.Helper()
	identity := avb.Identity{VendorID: avb.VendorIntel, DeviceID: deviceID, Family: family}
	ctx := avb.NewAdapterContext(identity, fakeBinding{})
	mapping, err := avb.Map(backend, 0xFE000000, 0x20000)
	require.NoError(t, err)
	ctx.MarkBarMapped(mapping)

	backend.TickHook = func(_ uintptr, registers []byte, elapsed time.Duration) {
		current := binary.LittleEndian.Uint32(registers[avb.RegSYSTIML:])
		binary.LittleEndian.PutUint32(registers[avb.RegSYSTIML:], current+uint32(elapsed))
	}
	ctx.MarkPtpReady()
	return ctx
}

func TestValidateTasConfig_RejectsZeroCycleTime(t *testing.T) {
	err := tsn.ValidateTasConfig(&avb.TasConfig{})
	require.Error(t, err)
	assert.Equal(t, avb.StatusInvalidParameter, avb.AsStatus(err))
}

func TestValidateTasConfig_RejectsCycleOverOneSecond(t *testing.T) {
	cfg := &avb.TasConfig{CycleTimeS: 2, GateDurations: [8]uint32{1}}
	err := tsn.ValidateTasConfig(cfg)
	require.Error(t, err)
	assert.Equal(t, avb.StatusInvalidParameter, avb.AsStatus(err))
}

func TestValidateTasConfig_RejectsGateDurationSumMismatch(t *testing.T) {
	cfg := &avb.TasConfig{CycleTimeNs: 1_000_000, GateDurations: [8]uint32{1}}
	err := tsn.ValidateTasConfig(cfg)
	require.Error(t, err)
	assert.Equal(t, avb.StatusInvalidParameter, avb.AsStatus(err))
}

func TestValidateTasConfig_AcceptsBalancedSchedule(t *testing.T) {
	cfg := &avb.TasConfig{CycleTimeNs: 1_000_000, GateDurations: [8]uint32{500_000, 500_000}}
	assert.NoError(t, tsn.ValidateTasConfig(cfg))
}

// SetupTas must reject a malformed schedule before it ever reaches the
// family vtable, even for a family that doesn't support TAS at all.
func TestSetupTas_ValidatesBeforeDispatchingToFamily(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newReadyContext(t, backend, avb.FamilyI210, 0x1533)

	err := tsn.SetupTas(ctx, backend, &avb.TasConfig{GateDurations: [8]uint32{1}})
	require.Error(t, err)
	assert.Equal(t, avb.StatusInvalidParameter, avb.AsStatus(err))
}

func TestSetupTas_UnsupportedFamilyRejectedAfterValidation(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newReadyContext(t, backend, avb.FamilyI210, 0x1533)

	cfg := &avb.TasConfig{CycleTimeNs: 1_000_000, GateDurations: [8]uint32{500_000, 500_000}}
	err := tsn.SetupTas(ctx, backend, cfg)
	require.Error(t, err)
	assert.Equal(t, avb.StatusUnsupported, avb.AsStatus(err))
}

func TestSetupTas_I225Succeeds(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newReadyContext(t, backend, avb.FamilyI225, 0x15F2)

	cfg := &avb.TasConfig{CycleTimeNs: 1_000_000, GateDurations: [8]uint32{500_000, 500_000}}
	assert.NoError(t, tsn.SetupTas(ctx, backend, cfg))
}

// SetupFp/SetupPtm are thin delegations straight to the hal vtable;
// exercise that the family gate is actually reached through tsn, not
// bypassed.
func TestSetupFp_UnsupportedFamily(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newReadyContext(t, backend, avb.FamilyI210, 0x1533)

	err := tsn.SetupFp(ctx, backend, &avb.FpConfig{PreemptableQueues: 0x0F})
	require.Error(t, err)
	assert.Equal(t, avb.StatusUnsupported, avb.AsStatus(err))
}

func TestSetupFp_I226RequiresLinkUp(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newReadyContext(t, backend, avb.FamilyI226, 0x125B)

	err := tsn.SetupFp(ctx, backend, &avb.FpConfig{PreemptableQueues: 0x0F})
	require.Error(t, err)
	assert.Equal(t, avb.StatusNotReady, avb.AsStatus(err))

	require.NoError(t, ctx.WriteMmio32(backend, avb.RegSTATUS, 1<<1))
	assert.NoError(t, tsn.SetupFp(ctx, backend, &avb.FpConfig{PreemptableQueues: 0x0F}))
}

func TestSetupPtm_UnsupportedFamily(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newReadyContext(t, backend, avb.FamilyI219, 0x15B7)

	err := tsn.SetupPtm(ctx, backend, &avb.PtmConfig{Enabled: true, ClockGranularity: 4})
	require.Error(t, err)
	assert.Equal(t, avb.StatusUnsupported, avb.AsStatus(err))
}

func TestSetupPtm_I226Succeeds(t *testing.T) {
	backend := avb.NewSimBackend()
	ctx := newReadyContext(t, backend, avb.FamilyI226, 0x125B)

	assert.NoError(t, tsn.SetupPtm(ctx, backend, &avb.PtmConfig{Enabled: true, ClockGranularity: 4}))
}
