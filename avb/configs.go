package avb

// TasConfig is the caller-supplied IEEE 802.1Qbv schedule (spec §3).
// GateStates/GateDurations are parallel arrays indexed by traffic
// class, 0..7. A zero GateDurations entry means that queue carries no
// gate window in this cycle.
type TasConfig struct {
	BaseTimeS     uint64
	BaseTimeNs    uint32
	CycleTimeS    uint32
	CycleTimeNs   uint32
	GateStates    [8]uint8
	GateDurations [8]uint32
}

// CycleTimeTotalNs returns the configured cycle time in nanoseconds,
// combining the (rarely used) seconds component with the nanoseconds
// component.
func (c *TasConfig) CycleTimeTotalNs() uint64 {
	return uint64(c.CycleTimeS)*1_000_000_000 + uint64(c.CycleTimeNs)
}

// SumGateDurations returns the sum of every non-zero gate duration,
// used to validate the §3 invariant sum(durations) == cycle_time_ns.
func (c *TasConfig) SumGateDurations() uint64 {
	var sum uint64
	for _, d := range c.GateDurations {
		if d > 0 {
			sum += uint64(d)
		}
	}
	return sum
}

// FpConfig is the caller-supplied IEEE 802.1Qbu configuration (spec §3).
type FpConfig struct {
	PreemptableQueues uint8 // bitmask over 8 queues
	MinFragmentSize   uint16
	VerifyDisable     bool
}

// PtmConfig is the caller-supplied PCIe PTM configuration (spec §3).
type PtmConfig struct {
	Enabled          bool
	ClockGranularity uint8
}
