package avb

// Well-known register offsets the generic core knows about (spec §4.E,
// §6). Family-specific offsets (TSN, errata workarounds) live in the
// hal package next to the vtable that uses them.
const (
	RegCTRL   uint32 = 0x00000
	RegSTATUS uint32 = 0x00008

	RegSYSTIML uint32 = 0x0B600
	RegSYSTIMH uint32 = 0x0B604
	RegTIMINCA uint32 = 0x0B608
	RegTSAUXC  uint32 = 0x0B640

	// RegTRGTTIML/H and RegAUXSTMPL0/AUXSTMPH0 back the SetTargetTime
	// and GetAuxTimestamp opcodes (spec §6); they sit in the same PTP
	// block as SYSTIM/TIMINCA/TSAUXC and correspond to the
	// EventTargetTimeHit/EventAuxTimestamp event types a subscriber can
	// filter on (see subscription.go).
	RegTRGTTIML  uint32 = 0x0B644
	RegTRGTTIMH  uint32 = 0x0B648
	RegAUXSTMPL0 uint32 = 0x0B65C
	RegAUXSTMPH0 uint32 = 0x0B660

	// RegCTRLExt hosts the generic hardware-timestamping enable bits
	// that back SetHwTimestamping/SetRxTimestamp; it is distinct from
	// CTRL so toggling timestamping never disturbs link/reset bits.
	RegCTRLExt uint32 = 0x00018
)

// Generic CTRL_EXT bits used by the request layer's timestamping
// toggles (spec §6 SetHwTimestamping/SetRxTimestamp).
const (
	CtrlExtHwTimestampEnable uint32 = 1 << 19
	CtrlExtRxTimestampEnable uint32 = 1 << 20
)

// InvalidRegisterValue is the sentinel an adapter returns over MMIO
// when the link has gone away or the BAR mapping is stale.
const InvalidRegisterValue uint32 = 0xFFFFFFFF
