package request

import (
	"bytes"
	"encoding/binary"

	"github.com/zarfld/IntelAvbFilter-sub000/avb"
)

// RequestEnvelope is the host-agnostic shape of spec §3's wire
// envelope: an opcode plus an input buffer the caller filled in and an
// output buffer the dispatcher writes into. The Windows IOCTL framing
// that actually carries these bytes across the user/kernel boundary is
// an external collaborator (spec §1); this struct is what survives on
// this side of that boundary.
type RequestEnvelope struct {
	Opcode          Opcode
	Input           []byte
	Output          []byte
	OutBytesWritten uint32
}

func decode(buf []byte, v any) error {
	size := binary.Size(v)
	if size < 0 {
		return avb.NewStatusError(avb.StatusInvalidParameter, "payload type has no fixed wire size")
	}
	if len(buf) < size {
		return avb.NewStatusError(avb.StatusBufferTooSmall, "input buffer is %d bytes, need %d", len(buf), size)
	}
	return binary.Read(bytes.NewReader(buf[:size]), binary.LittleEndian, v)
}

func encode(buf []byte, v any) (int, error) {
	size := binary.Size(v)
	if size < 0 {
		return 0, avb.NewStatusError(avb.StatusInvalidParameter, "payload type has no fixed wire size")
	}
	if len(buf) < size {
		return 0, avb.NewStatusError(avb.StatusBufferTooSmall, "output buffer is %d bytes, need %d", len(buf), size)
	}
	w := bytes.NewBuffer(buf[:0])
	if err := binary.Write(w, binary.LittleEndian, v); err != nil {
		return 0, avb.NewStatusError(avb.StatusHardwareError, "encode wire payload: %v", err)
	}
	return size, nil
}

// Payload shapes (spec §6, abridged table). Every struct here is
// fixed-width so it can round-trip through encoding/binary without a
// bespoke marshaller per opcode.

type VersionReply struct {
	Major uint16
	Minor uint16
}

type EnumAdaptersRequest struct {
	Index uint32
}

type EnumAdaptersReply struct {
	Count        uint32
	VendorID     uint32
	DeviceID     uint32
	Capabilities uint32
	Status       uint32
}

type OpenAdapterRequest struct {
	VendorID uint32
	DeviceID uint32
}

type StatusReply struct {
	Status uint32
}

type HwStateReply struct {
	HwState      uint32
	VendorID     uint32
	DeviceID     uint32
	Capabilities uint32
}

const deviceInfoBlobSize = 64

type DeviceInfoReply struct {
	DeviceInfo [deviceInfoBlobSize]byte
	BufferSize uint32
	Status     uint32
}

type GetTimestampRequest struct {
	ClockID uint32
}

type GetTimestampReply struct {
	Timestamp uint64
	Status    uint32
	_         uint32
}

type SetTimestampRequest struct {
	Timestamp uint64
}

type AdjustFrequencyRequest struct {
	IncrementNs   uint8
	_             [3]byte
	IncrementFrac uint32
}

type AdjustFrequencyReply struct {
	CurrentIncrement  uint32
	PreviousIncrement uint32
	Status            uint32
}

type ClockConfigReply struct {
	Systim       uint64
	Timinca      uint32
	Tsauxc       uint32
	ClockRateMhz uint32
	Status       uint32
}

type BoolRequest struct {
	Enable uint32
}

type SetQueueTimestampRequest struct {
	Queue  uint32
	Enable uint32
}

type SetTargetTimeRequest struct {
	TargetNs uint64
}

type GetAuxTimestampReply struct {
	Timestamp uint64
	Status    uint32
	_         uint32
}

type TsSubscribeRequest struct {
	TypesMask uint32
	Vlan      uint32
	Pcp       uint32
}

type TsSubscribeReply struct {
	RingID uint32
	Status uint32
}

type TsRingMapRequest struct {
	RingID uint32
	Length uint32
}

type TsRingMapReply struct {
	ShmToken uint64
	Length   uint32
	Status   uint32
}

type MdioAddress struct {
	Phy uint32
	Reg uint32
}

type MdioReadReply struct {
	Value  uint32
	Status uint32
}

type MdioWriteRequest struct {
	Phy   uint32
	Reg   uint32
	Value uint32
}

type ReadRegisterRequest struct {
	Offset uint32
}

type ReadRegisterReply struct {
	Value  uint32
	Status uint32
}

type WriteRegisterRequest struct {
	Offset uint32
	Value  uint32
}

// tasConfigWire mirrors avb.TasConfig for wire transport (spec §6
// SetupTas). Kept separate from avb.TasConfig so the core package
// never needs an encoding/binary tag vocabulary of its own.
type tasConfigWire struct {
	BaseTimeS     uint64
	BaseTimeNs    uint32
	CycleTimeS    uint32
	CycleTimeNs   uint32
	GateStates    [8]uint8
	GateDurations [8]uint32
}

func decodeTasConfig(buf []byte) (*avb.TasConfig, avb.Status) {
	var wire tasConfigWire
	if err := decode(buf, &wire); err != nil {
		return nil, avb.AsStatus(err)
	}
	return &avb.TasConfig{
		BaseTimeS:     wire.BaseTimeS,
		BaseTimeNs:    wire.BaseTimeNs,
		CycleTimeS:    wire.CycleTimeS,
		CycleTimeNs:   wire.CycleTimeNs,
		GateStates:    wire.GateStates,
		GateDurations: wire.GateDurations,
	}, avb.StatusSuccess
}

type fpConfigWire struct {
	PreemptableQueues uint8
	_                 [1]byte
	MinFragmentSize   uint16
	VerifyDisable     uint32
}

type ptmConfigWire struct {
	Enabled          uint32
	ClockGranularity uint8
	_                [3]byte
}
