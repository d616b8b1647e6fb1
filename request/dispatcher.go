package request

import (
	"github.com/zarfld/IntelAvbFilter-sub000/avb"
	"github.com/zarfld/IntelAvbFilter-sub000/avb/hal"
	"github.com/zarfld/IntelAvbFilter-sub000/avb/ptp"
	"github.com/zarfld/IntelAvbFilter-sub000/avb/tsn"
)

// ProtocolVersion is the wire version GetVersion reports. Bump the
// minor component for backward-compatible additions, the major
// component if an existing payload shape ever changes.
const (
	ProtocolVersionMajor uint16 = 1
	ProtocolVersionMinor uint16 = 0
)

// minHwState is spec §4.I's minimum-hw_state precondition table. An
// opcode absent from this map requires no more than HwStateBound (the
// state every registered adapter already has).
var minHwState = map[Opcode]avb.HwState{
	OpGetDeviceInfo:      avb.HwStateBarMapped,
	OpReadRegister:       avb.HwStateBarMapped,
	OpWriteRegister:      avb.HwStateBarMapped,
	OpMdioRead:           avb.HwStateBarMapped,
	OpMdioWrite:          avb.HwStateBarMapped,
	OpAdjustFrequency:    avb.HwStateBarMapped,
	OpGetClockConfig:     avb.HwStateBarMapped,
	OpSetHwTimestamping:  avb.HwStateBarMapped,
	OpSetRxTimestamp:     avb.HwStateBarMapped,
	OpSetQueueTimestamp:  avb.HwStateBarMapped,

	OpGetTimestamp:    avb.HwStatePtpReady,
	OpSetTimestamp:    avb.HwStatePtpReady,
	OpSetTargetTime:   avb.HwStatePtpReady,
	OpGetAuxTimestamp: avb.HwStatePtpReady,
	OpSetupTas:        avb.HwStatePtpReady,
	OpSetupFp:         avb.HwStatePtpReady,
	OpSetupPtm:        avb.HwStatePtpReady,
}

// Dispatcher is spec §4.I's request multiplexer: the single entry
// point a transport drives with a decoded RequestEnvelope. It never
// touches the wire framing itself (that's the envelope's job); it only
// resolves an adapter, enforces preconditions, and calls into avb/hal,
// avb/ptp and avb/tsn.
type Dispatcher struct {
	Registry *avb.AdapterRegistry
	Backend  avb.PlatformBackend
	Logger   avb.Logger
	Metrics  *Metrics

	// DebugOpsEnabled gates OpReadRegister/OpWriteRegister. It mirrors
	// a release build's debug-ioctls-compiled-out behaviour without an
	// actual build tag, since both variants must stay reachable from
	// tests; production wiring sets this to false.
	DebugOpsEnabled bool
}

// NewDispatcher constructs a Dispatcher. logger and metrics may be nil;
// a nil logger falls back to avb.NopLogger semantics (silent), a nil
// metrics struct makes Metrics.observe a no-op.
func NewDispatcher(registry *avb.AdapterRegistry, backend avb.PlatformBackend, logger avb.Logger, metrics *Metrics) *Dispatcher {
	if logger == nil {
		logger = avb.NopLogger()
	}
	return &Dispatcher{Registry: registry, Backend: backend, Logger: logger, Metrics: metrics}
}

// Handle decodes nothing itself (the caller already filled in
// env.Input/env.Output); it resolves deliveryContext into a live
// adapter per spec §4.D's "active-adapter selector, falling back to
// the delivery context", enforces the precondition table, and
// dispatches to the matching handler. The returned Status is also
// written nowhere except the return value and the metrics counters;
// encoding it onto the wire is the transport's job.
func (d *Dispatcher) Handle(env *RequestEnvelope, deliveryContext avb.AdapterHandle) avb.Status {
	status := d.dispatch(env, deliveryContext)
	if d.Metrics != nil {
		d.Metrics.observe(env.Opcode, status.String(), status != avb.StatusSuccess)
	}
	return status
}

func (d *Dispatcher) dispatch(env *RequestEnvelope, deliveryContext avb.AdapterHandle) avb.Status {
	// GetVersion, EnumAdapters and OpenAdapter operate on the registry
	// itself and need no resolved adapter context.
	switch env.Opcode {
	case OpGetVersion:
		return d.handleGetVersion(env)
	case OpEnumAdapters:
		return d.handleEnumAdapters(env)
	case OpOpenAdapter:
		return d.handleOpenAdapter(env)
	}

	_, ctx, err := d.resolveAdapter(deliveryContext)
	if err != nil {
		return avb.AsStatus(err)
	}

	switch env.Opcode {
	case OpInitDevice:
		return d.handleInitDevice(ctx)
	case OpGetHwState:
		return d.handleGetHwState(env, ctx)
	}

	required, ok := minHwState[env.Opcode]
	if !ok {
		required = avb.HwStateBound
	}
	if err := d.ensureState(ctx, required); err != nil {
		return avb.AsStatus(err)
	}

	switch env.Opcode {
	case OpGetDeviceInfo:
		return d.handleGetDeviceInfo(env, ctx)
	case OpGetTimestamp:
		return d.handleGetTimestamp(env, ctx)
	case OpSetTimestamp:
		return d.handleSetTimestamp(env, ctx)
	case OpAdjustFrequency:
		return d.handleAdjustFrequency(env, ctx)
	case OpGetClockConfig:
		return d.handleGetClockConfig(env, ctx)
	case OpSetHwTimestamping:
		return d.handleCtrlExtFlag(env, ctx, avb.CtrlExtHwTimestampEnable)
	case OpSetRxTimestamp:
		return d.handleCtrlExtFlag(env, ctx, avb.CtrlExtRxTimestampEnable)
	case OpSetQueueTimestamp:
		return d.handleSetQueueTimestamp(env, ctx)
	case OpSetTargetTime:
		return d.handleSetTargetTime(env, ctx)
	case OpGetAuxTimestamp:
		return d.handleGetAuxTimestamp(env, ctx)
	case OpSetupTas:
		return d.handleSetupTas(env, ctx)
	case OpSetupFp:
		return d.handleSetupFp(env, ctx)
	case OpSetupPtm:
		return d.handleSetupPtm(env, ctx)
	case OpTsSubscribe:
		return d.handleTsSubscribe(env, ctx)
	case OpTsRingMap:
		return d.handleTsRingMap(env, ctx)
	case OpMdioRead:
		return d.handleMdioRead(env, ctx)
	case OpMdioWrite:
		return d.handleMdioWrite(env, ctx)
	case OpReadRegister:
		return d.handleReadRegister(env, ctx)
	case OpWriteRegister:
		return d.handleWriteRegister(env, ctx)
	default:
		return avb.StatusUnsupported
	}
}

// resolveAdapter implements spec §4.D: prefer the coarse process-wide
// active-adapter selector, falling back to the handle the transport
// delivered the request on.
func (d *Dispatcher) resolveAdapter(deliveryContext avb.AdapterHandle) (avb.AdapterHandle, *avb.AdapterContext, error) {
	if handle, ok := d.Registry.GetActive(); ok {
		if ctx, ok := d.Registry.Get(handle); ok {
			return handle, ctx, nil
		}
	}
	if ctx, ok := d.Registry.Get(deliveryContext); ok {
		return deliveryContext, ctx, nil
	}
	return 0, nil, avb.NewStatusError(avb.StatusNotFound, "no active adapter selected and delivery context is not registered")
}

// ensureState opportunistically brings the adapter up to the required
// state per spec §4.I ("advancing via A→B→E-init as needed"). A
// bring-up failure is reported as StatusNotReady, never surfaced as
// whatever internal error triggered it, since the caller is expected
// to retry rather than branch on the cause.
func (d *Dispatcher) ensureState(ctx *avb.AdapterContext, required avb.HwState) error {
	if ctx.State() >= required {
		return nil
	}
	if required >= avb.HwStateBarMapped && ctx.State() < avb.HwStateBarMapped {
		if err := d.bringUpBarMapped(ctx); err != nil {
			d.Logger.Printf("intelavb: bar mapping bring-up failed for %s: %v", ctx.Identity.Pci, err)
			return avb.NewStatusError(avb.StatusNotReady, "bar mapping not available")
		}
	}
	if required >= avb.HwStatePtpReady && ctx.State() < avb.HwStatePtpReady {
		if err := ptp.Prime(ctx, d.Backend); err != nil {
			d.Logger.Printf("intelavb: ptp prime failed for %s: %v", ctx.Identity.Pci, err)
		}
		if ctx.State() < avb.HwStatePtpReady {
			return avb.NewStatusError(avb.StatusNotReady, "ptp clock is not advancing yet")
		}
	}
	return nil
}

func (d *Dispatcher) bringUpBarMapped(ctx *avb.AdapterContext) error {
	resources, err := avb.Discover(d.Backend, ctx.Binding)
	if err != nil {
		return err
	}
	mapping, err := avb.Map(d.Backend, resources.Bar0PhysicalBase, resources.Bar0Length)
	if err != nil {
		return err
	}
	ctx.MarkBarMapped(mapping)
	return hal.Init(ctx, d.Backend)
}

func (d *Dispatcher) handleGetVersion(env *RequestEnvelope) avb.Status {
	n, err := encode(env.Output, &VersionReply{Major: ProtocolVersionMajor, Minor: ProtocolVersionMinor})
	if err != nil {
		return avb.AsStatus(err)
	}
	env.OutBytesWritten = uint32(n)
	return avb.StatusSuccess
}

func (d *Dispatcher) handleEnumAdapters(env *RequestEnvelope) avb.Status {
	var req EnumAdaptersRequest
	if err := decode(env.Input, &req); err != nil {
		return avb.AsStatus(err)
	}
	entry, count, ok := d.Registry.Enumerate(req.Index)
	reply := EnumAdaptersReply{Count: count}
	if !ok {
		reply.Status = uint32(avb.StatusNotFound)
	} else {
		reply.VendorID = uint32(entry.VendorID)
		reply.DeviceID = uint32(entry.DeviceID)
		reply.Capabilities = uint32(entry.Capabilities)
	}
	n, err := encode(env.Output, &reply)
	if err != nil {
		return avb.AsStatus(err)
	}
	env.OutBytesWritten = uint32(n)
	if !ok {
		return avb.StatusNotFound
	}
	return avb.StatusSuccess
}

func (d *Dispatcher) handleOpenAdapter(env *RequestEnvelope) avb.Status {
	var req OpenAdapterRequest
	if err := decode(env.Input, &req); err != nil {
		return avb.AsStatus(err)
	}
	handle, ok := d.Registry.FindByIDs(uint16(req.VendorID), uint16(req.DeviceID))
	if !ok {
		return avb.StatusNotFound
	}
	d.Registry.SetActive(handle)
	return avb.StatusSuccess
}

func (d *Dispatcher) handleInitDevice(ctx *avb.AdapterContext) avb.Status {
	if err := d.ensureState(ctx, avb.HwStatePtpReady); err != nil {
		// Bar mapping without PTP readiness is still progress; report
		// whatever state was actually reached rather than failing the
		// whole call when only the clock prime did not complete.
		if ctx.State() >= avb.HwStateBarMapped {
			return avb.StatusSuccess
		}
		return avb.AsStatus(err)
	}
	return avb.StatusSuccess
}

func (d *Dispatcher) handleGetHwState(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	reply := HwStateReply{
		HwState:      uint32(ctx.State()),
		VendorID:     uint32(ctx.Identity.VendorID),
		DeviceID:     uint32(ctx.Identity.DeviceID),
		Capabilities: uint32(ctx.Capabilities()),
	}
	n, err := encode(env.Output, &reply)
	if err != nil {
		return avb.AsStatus(err)
	}
	env.OutBytesWritten = uint32(n)
	return avb.StatusSuccess
}

func (d *Dispatcher) handleGetDeviceInfo(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	blob, err := hal.GetInfo(ctx, d.Backend)
	reply := DeviceInfoReply{}
	if err != nil {
		reply.Status = uint32(avb.AsStatus(err))
	} else {
		reply.BufferSize = uint32(copy(reply.DeviceInfo[:], blob))
	}
	n, encErr := encode(env.Output, &reply)
	if encErr != nil {
		return avb.AsStatus(encErr)
	}
	env.OutBytesWritten = uint32(n)
	return avb.AsStatus(err)
}

func (d *Dispatcher) handleGetTimestamp(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	var req GetTimestampRequest
	if err := decode(env.Input, &req); err != nil {
		return avb.AsStatus(err)
	}
	ts, err := hal.GetSystime(ctx, d.Backend)
	reply := GetTimestampReply{Timestamp: ts, Status: uint32(avb.AsStatus(err))}
	n, encErr := encode(env.Output, &reply)
	if encErr != nil {
		return avb.AsStatus(encErr)
	}
	env.OutBytesWritten = uint32(n)
	return avb.AsStatus(err)
}

func (d *Dispatcher) handleSetTimestamp(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	var req SetTimestampRequest
	if err := decode(env.Input, &req); err != nil {
		return avb.AsStatus(err)
	}
	err := hal.SetSystime(ctx, d.Backend, req.Timestamp)
	return avb.AsStatus(err)
}

func (d *Dispatcher) handleAdjustFrequency(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	var req AdjustFrequencyRequest
	if err := decode(env.Input, &req); err != nil {
		return avb.AsStatus(err)
	}
	previous, err := ctx.ReadMmio32(d.Backend, avb.RegTIMINCA)
	if err != nil {
		return avb.AsStatus(err)
	}
	increment := uint32(req.IncrementNs)<<24 | req.IncrementFrac&0x00FFFFFF
	if err := ctx.WriteMmio32(d.Backend, avb.RegTIMINCA, increment); err != nil {
		return avb.AsStatus(err)
	}
	reply := AdjustFrequencyReply{CurrentIncrement: increment, PreviousIncrement: previous}
	n, err := encode(env.Output, &reply)
	if err != nil {
		return avb.AsStatus(err)
	}
	env.OutBytesWritten = uint32(n)
	return avb.StatusSuccess
}

func (d *Dispatcher) handleGetClockConfig(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	systim, sErr := ptp.ReadSystime(ctx, d.Backend)
	timinca, tErr := ctx.ReadMmio32(d.Backend, avb.RegTIMINCA)
	tsauxc, aErr := ctx.ReadMmio32(d.Backend, avb.RegTSAUXC)
	status := avb.StatusSuccess
	if err := firstNonNil(sErr, tErr, aErr); err != nil {
		status = avb.AsStatus(err)
	}
	reply := ClockConfigReply{
		Systim:       systim,
		Timinca:      timinca,
		Tsauxc:       tsauxc,
		ClockRateMhz: 125,
		Status:       uint32(status),
	}
	n, err := encode(env.Output, &reply)
	if err != nil {
		return avb.AsStatus(err)
	}
	env.OutBytesWritten = uint32(n)
	return status
}

func firstNonNil(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// handleCtrlExtFlag backs SetHwTimestamping/SetRxTimestamp: both are
// generic enable toggles in CTRL_EXT, distinct bits, identical shape.
func (d *Dispatcher) handleCtrlExtFlag(env *RequestEnvelope, ctx *avb.AdapterContext, bit uint32) avb.Status {
	var req BoolRequest
	if err := decode(env.Input, &req); err != nil {
		return avb.AsStatus(err)
	}
	current, err := ctx.ReadMmio32(d.Backend, avb.RegCTRLExt)
	if err != nil {
		return avb.AsStatus(err)
	}
	if req.Enable != 0 {
		current |= bit
	} else {
		current &^= bit
	}
	if err := ctx.WriteMmio32(d.Backend, avb.RegCTRLExt, current); err != nil {
		return avb.AsStatus(err)
	}
	return avb.StatusSuccess
}

// handleSetQueueTimestamp is gated on CapTsnTas: per-queue launch-time
// timestamping only makes sense on a family with a TAS-capable queue
// block (spec leaves the exact per-queue register undocumented; see
// DESIGN.md). It checks the queue index (< 8) and returns success
// without writing any register; req.Enable is not applied.
func (d *Dispatcher) handleSetQueueTimestamp(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	var req SetQueueTimestampRequest
	if err := decode(env.Input, &req); err != nil {
		return avb.AsStatus(err)
	}
	if !ctx.Capabilities().Has(avb.CapTsnTas) {
		return avb.StatusUnsupported
	}
	if req.Queue >= 8 {
		return avb.StatusInvalidParameter
	}
	return avb.StatusSuccess
}

func (d *Dispatcher) handleSetTargetTime(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	var req SetTargetTimeRequest
	if err := decode(env.Input, &req); err != nil {
		return avb.AsStatus(err)
	}
	if err := ctx.WriteMmio32(d.Backend, avb.RegTRGTTIML, uint32(req.TargetNs)); err != nil {
		return avb.AsStatus(err)
	}
	if err := ctx.WriteMmio32(d.Backend, avb.RegTRGTTIMH, uint32(req.TargetNs>>32)); err != nil {
		return avb.AsStatus(err)
	}
	return avb.StatusSuccess
}

func (d *Dispatcher) handleGetAuxTimestamp(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	lo, err := ctx.ReadMmio32(d.Backend, avb.RegAUXSTMPL0)
	if err != nil {
		return avb.AsStatus(err)
	}
	hi, err := ctx.ReadMmio32(d.Backend, avb.RegAUXSTMPH0)
	if err != nil {
		return avb.AsStatus(err)
	}
	reply := GetAuxTimestampReply{Timestamp: uint64(hi)<<32 | uint64(lo)}
	n, err := encode(env.Output, &reply)
	if err != nil {
		return avb.AsStatus(err)
	}
	env.OutBytesWritten = uint32(n)
	return avb.StatusSuccess
}

func (d *Dispatcher) handleSetupTas(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	cfg, status := decodeTasConfig(env.Input)
	if status != avb.StatusSuccess {
		return status
	}
	err := tsn.SetupTas(ctx, d.Backend, cfg)
	return avb.AsStatus(err)
}

func (d *Dispatcher) handleSetupFp(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	var wire fpConfigWire
	if err := decode(env.Input, &wire); err != nil {
		return avb.AsStatus(err)
	}
	cfg := &avb.FpConfig{
		PreemptableQueues: wire.PreemptableQueues,
		MinFragmentSize:   wire.MinFragmentSize,
		VerifyDisable:     wire.VerifyDisable != 0,
	}
	err := tsn.SetupFp(ctx, d.Backend, cfg)
	return avb.AsStatus(err)
}

func (d *Dispatcher) handleSetupPtm(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	var wire ptmConfigWire
	if err := decode(env.Input, &wire); err != nil {
		return avb.AsStatus(err)
	}
	cfg := &avb.PtmConfig{Enabled: wire.Enabled != 0, ClockGranularity: wire.ClockGranularity}
	err := tsn.SetupPtm(ctx, d.Backend, cfg)
	return avb.AsStatus(err)
}

func (d *Dispatcher) handleTsSubscribe(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	var req TsSubscribeRequest
	if err := decode(env.Input, &req); err != nil {
		return avb.AsStatus(err)
	}
	sub, err := ctx.Subscribe(avb.EventType(req.TypesMask), uint16(req.Vlan), uint8(req.Pcp), 0)
	reply := TsSubscribeReply{}
	if err != nil {
		reply.Status = uint32(avb.AsStatus(err))
	} else {
		reply.RingID = sub.RingID
	}
	n, encErr := encode(env.Output, &reply)
	if encErr != nil {
		return avb.AsStatus(encErr)
	}
	env.OutBytesWritten = uint32(n)
	return avb.AsStatus(err)
}

func (d *Dispatcher) handleTsRingMap(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	var req TsRingMapRequest
	if err := decode(env.Input, &req); err != nil {
		return avb.AsStatus(err)
	}
	if !avb.IsValidRingID(req.RingID) {
		return avb.StatusInvalidParameter
	}
	sub, err := ctx.MapRing(req.RingID, avb.UserAddress(req.RingID))
	reply := TsRingMapReply{}
	if err != nil {
		reply.Status = uint32(avb.AsStatus(err))
	} else {
		reply.ShmToken = uint64(*sub.UserMapping)
		reply.Length = uint32(len(sub.Ring.Records)) * 32
	}
	n, encErr := encode(env.Output, &reply)
	if encErr != nil {
		return avb.AsStatus(encErr)
	}
	env.OutBytesWritten = uint32(n)
	return avb.AsStatus(err)
}

func (d *Dispatcher) handleMdioRead(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	var req MdioAddress
	if err := decode(env.Input, &req); err != nil {
		return avb.AsStatus(err)
	}
	value, err := hal.MdioRead(ctx, d.Backend, uint16(req.Phy), uint16(req.Reg))
	reply := MdioReadReply{Value: uint32(value), Status: uint32(avb.AsStatus(err))}
	n, encErr := encode(env.Output, &reply)
	if encErr != nil {
		return avb.AsStatus(encErr)
	}
	env.OutBytesWritten = uint32(n)
	return avb.AsStatus(err)
}

func (d *Dispatcher) handleMdioWrite(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	var req MdioWriteRequest
	if err := decode(env.Input, &req); err != nil {
		return avb.AsStatus(err)
	}
	err := hal.MdioWrite(ctx, d.Backend, uint16(req.Phy), uint16(req.Reg), uint16(req.Value))
	return avb.AsStatus(err)
}

func (d *Dispatcher) handleReadRegister(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	if !d.DebugOpsEnabled {
		return avb.StatusUnsupported
	}
	var req ReadRegisterRequest
	if err := decode(env.Input, &req); err != nil {
		return avb.AsStatus(err)
	}
	value, err := ctx.ReadMmio32(d.Backend, req.Offset)
	reply := ReadRegisterReply{Value: value, Status: uint32(avb.AsStatus(err))}
	n, encErr := encode(env.Output, &reply)
	if encErr != nil {
		return avb.AsStatus(encErr)
	}
	env.OutBytesWritten = uint32(n)
	return avb.AsStatus(err)
}

func (d *Dispatcher) handleWriteRegister(env *RequestEnvelope, ctx *avb.AdapterContext) avb.Status {
	if !d.DebugOpsEnabled {
		return avb.StatusUnsupported
	}
	var req WriteRegisterRequest
	if err := decode(env.Input, &req); err != nil {
		return avb.AsStatus(err)
	}
	err := ctx.WriteMmio32(d.Backend, req.Offset, req.Value)
	return avb.AsStatus(err)
}
