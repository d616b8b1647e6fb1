// Package request implements spec §4.I: the control-plane request
// multiplexer. It is the single synchronous entry point a transport
// (the Windows IOCTL boundary, an external collaborator per spec §1)
// drives to reach every other component in this module.
package request

// Opcode is the stable, versioned numeric identifier of a request.
// Bit-exact values are an ABI: never renumber an existing opcode, only
// append new ones at the end (spec §6).
type Opcode uint32

const (
	OpGetVersion Opcode = iota // Protocol: always available.

	// Lifecycle
	OpInitDevice
	OpGetHwState
	OpEnumAdapters
	OpOpenAdapter

	// Introspection
	OpGetDeviceInfo

	// Clock
	OpGetTimestamp
	OpSetTimestamp
	OpAdjustFrequency
	OpGetClockConfig
	OpSetHwTimestamping
	OpSetRxTimestamp
	OpSetQueueTimestamp
	OpSetTargetTime
	OpGetAuxTimestamp

	// TSN
	OpSetupTas
	OpSetupFp
	OpSetupPtm

	// Events
	OpTsSubscribe
	OpTsRingMap

	// MDIO
	OpMdioRead
	OpMdioWrite

	// Debug-only: refused unless Dispatcher.DebugOpsEnabled is set, see dispatcher.go.
	OpReadRegister
	OpWriteRegister
)

func (o Opcode) String() string {
	switch o {
	case OpGetVersion:
		return "GetVersion"
	case OpInitDevice:
		return "InitDevice"
	case OpGetHwState:
		return "GetHwState"
	case OpEnumAdapters:
		return "EnumAdapters"
	case OpOpenAdapter:
		return "OpenAdapter"
	case OpGetDeviceInfo:
		return "GetDeviceInfo"
	case OpGetTimestamp:
		return "GetTimestamp"
	case OpSetTimestamp:
		return "SetTimestamp"
	case OpAdjustFrequency:
		return "AdjustFrequency"
	case OpGetClockConfig:
		return "GetClockConfig"
	case OpSetHwTimestamping:
		return "SetHwTimestamping"
	case OpSetRxTimestamp:
		return "SetRxTimestamp"
	case OpSetQueueTimestamp:
		return "SetQueueTimestamp"
	case OpSetTargetTime:
		return "SetTargetTime"
	case OpGetAuxTimestamp:
		return "GetAuxTimestamp"
	case OpSetupTas:
		return "SetupTas"
	case OpSetupFp:
		return "SetupFp"
	case OpSetupPtm:
		return "SetupPtm"
	case OpTsSubscribe:
		return "TsSubscribe"
	case OpTsRingMap:
		return "TsRingMap"
	case OpMdioRead:
		return "MdioRead"
	case OpMdioWrite:
		return "MdioWrite"
	case OpReadRegister:
		return "ReadRegister"
	case OpWriteRegister:
		return "WriteRegister"
	default:
		return "Unknown"
	}
}

// opcodeClass groups opcodes for the §4.I per-opcode-class statistics.
// The minimum-hw_state precondition table (minHwState in dispatcher.go)
// is keyed by individual opcode, not by class.
type opcodeClass int

const (
	classProtocol opcodeClass = iota
	classLifecycle
	classIntrospection
	classClock
	classTsn
	classEvents
	classMdio
	classDebug
)

func (o Opcode) class() opcodeClass {
	switch o {
	case OpGetVersion:
		return classProtocol
	case OpInitDevice, OpGetHwState, OpEnumAdapters, OpOpenAdapter:
		return classLifecycle
	case OpGetDeviceInfo:
		return classIntrospection
	case OpGetTimestamp, OpSetTimestamp, OpAdjustFrequency, OpGetClockConfig,
		OpSetHwTimestamping, OpSetRxTimestamp, OpSetQueueTimestamp,
		OpSetTargetTime, OpGetAuxTimestamp:
		return classClock
	case OpSetupTas, OpSetupFp, OpSetupPtm:
		return classTsn
	case OpTsSubscribe, OpTsRingMap:
		return classEvents
	case OpMdioRead, OpMdioWrite:
		return classMdio
	case OpReadRegister, OpWriteRegister:
		return classDebug
	default:
		return classProtocol
	}
}

func (c opcodeClass) String() string {
	switch c {
	case classProtocol:
		return "protocol"
	case classLifecycle:
		return "lifecycle"
	case classIntrospection:
		return "introspection"
	case classClock:
		return "clock"
	case classTsn:
		return "tsn"
	case classEvents:
		return "events"
	case classMdio:
		return "mdio"
	case classDebug:
		return "debug"
	default:
		return "unknown"
	}
}
