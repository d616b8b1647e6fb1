package request_test

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarfld/IntelAvbFilter-sub000/avb"
	"github.com/zarfld/IntelAvbFilter-sub000/request"
)

type fakeBinding struct{}

func (fakeBinding) FriendlyName() string             { return "Intel(R) I226" }
func (fakeBinding) PciLocation() (uint8, uint8, bool) { return 0, 0, true }

func newFixture(t *testing.T) (*request.Dispatcher, *avb.AdapterRegistry, avb.AdapterHandle, *avb.SimBackend) {
	t.Helper()
	backend := avb.NewSimBackend()
	backend.SetConfig(avb.PciAddress{}, 0x00, uint32(0x125B)<<16|uint32(avb.VendorIntel))
	backend.SetConfig(avb.PciAddress{}, 0x10, 0xFE000000)

	backend.TickHook = func(_ uintptr, registers []byte, elapsed time.Duration) {
		current := binary.LittleEndian.Uint32(registers[avb.RegSYSTIML:])
		binary.LittleEndian.PutUint32(registers[avb.RegSYSTIML:], current+uint32(elapsed))
	}

	identity := avb.Identity{VendorID: avb.VendorIntel, DeviceID: 0x125B, Family: avb.FamilyI226}
	ctx := avb.NewAdapterContext(identity, fakeBinding{})
	registry := avb.NewAdapterRegistry()
	handle := registry.Insert(ctx)
	registry.SetActive(handle)

	d := request.NewDispatcher(registry, backend, avb.NopLogger(), nil)
	return d, registry, handle, backend
}

func TestGetVersion_CallableInBoundState(t *testing.T) {
	d, _, handle, _ := newFixture(t)
	out := make([]byte, 4)
	env := &request.RequestEnvelope{Opcode: request.OpGetVersion, Output: out}

	status := d.Handle(env, handle)
	assert.Equal(t, avb.StatusSuccess, status)
	assert.Equal(t, uint32(4), env.OutBytesWritten)
}

func TestGetTimestamp_BringsAdapterUpToPtpReady(t *testing.T) {
	d, registry, handle, _ := newFixture(t)
	in := make([]byte, 4)
	out := make([]byte, 16)
	env := &request.RequestEnvelope{Opcode: request.OpGetTimestamp, Input: in, Output: out}

	status := d.Handle(env, handle)
	require.Equal(t, avb.StatusSuccess, status)

	ctx, ok := registry.Get(handle)
	require.True(t, ok)
	assert.Equal(t, avb.HwStatePtpReady, ctx.State())
}

func TestSetupTas_UnderPtpReadyPrecondition(t *testing.T) {
	d, _, handle, _ := newFixture(t)
	wire := struct {
		BaseTimeS     uint64
		BaseTimeNs    uint32
		CycleTimeS    uint32
		CycleTimeNs   uint32
		GateStates    [8]uint8
		GateDurations [8]uint32
	}{CycleTimeNs: 1_000_000, GateDurations: [8]uint32{500_000, 500_000}}

	buf := make([]byte, binary.Size(wire))
	_ = binary.Write(sliceWriter{buf}, binary.LittleEndian, wire)

	env := &request.RequestEnvelope{Opcode: request.OpSetupTas, Input: buf}
	status := d.Handle(env, handle)
	assert.Equal(t, avb.StatusSuccess, status)
}

func TestGetDeviceInfo_BufferTooSmallWritesNothing(t *testing.T) {
	d, _, handle, _ := newFixture(t)
	out := make([]byte, 2) // far smaller than DeviceInfoReply's encoded size
	env := &request.RequestEnvelope{Opcode: request.OpGetDeviceInfo, Output: out}

	status := d.Handle(env, handle)
	assert.Equal(t, avb.StatusBufferTooSmall, status)
	assert.Equal(t, uint32(0), env.OutBytesWritten)
	for _, b := range out {
		assert.Equal(t, byte(0), b)
	}
}

func TestEnumAdapters_UnknownIndexIsNotFound(t *testing.T) {
	d, _, handle, _ := newFixture(t)
	in := make([]byte, 4)
	binary.LittleEndian.PutUint32(in, 5)
	out := make([]byte, 20)
	env := &request.RequestEnvelope{Opcode: request.OpEnumAdapters, Input: in, Output: out}

	status := d.Handle(env, handle)
	assert.Equal(t, avb.StatusNotFound, status)
}

func TestReadRegister_DisabledByDefault(t *testing.T) {
	d, _, handle, _ := newFixture(t)
	in := make([]byte, 4)
	out := make([]byte, 8)
	env := &request.RequestEnvelope{Opcode: request.OpReadRegister, Input: in, Output: out}

	status := d.Handle(env, handle)
	assert.Equal(t, avb.StatusUnsupported, status)
}

type sliceWriter struct{ buf []byte }

func (w sliceWriter) Write(p []byte) (int, error) {
	copy(w.buf, p)
	return len(p), nil
}
