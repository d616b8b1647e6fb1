package avb

import (
	"sync"
)

// HwState is the monotonic hardware-readiness state of an
// AdapterContext (spec §3). States only ever advance; a failed
// bring-up step leaves the context at its highest achieved state.
type HwState uint32

const (
	HwStateBound HwState = iota
	HwStateBarMapped
	HwStatePtpReady
)

func (s HwState) String() string {
	switch s {
	case HwStateBound:
		return "Bound"
	case HwStateBarMapped:
		return "BarMapped"
	case HwStatePtpReady:
		return "PtpReady"
	default:
		return "Unknown"
	}
}

// AdapterContext is the per-bound-adapter struct described in spec §3.
// It is created on filter attach and destroyed on filter detach; the
// binding owns the context, and the context's Binding field is a
// non-owning handle valid for the binding's lifetime (spec §9 "cyclic
// ownership").
type AdapterContext struct {
	Identity Identity
	Binding  FilterBinding

	mu           sync.RWMutex
	mmio         *MmioMapping
	state        HwState
	capabilities Capabilities

	subMu         sync.Mutex
	subscriptions map[uint32]*EventSubscription
	nextRingID    uint32
}

// NewAdapterContext constructs a context at HwStateBound with the
// family baseline capabilities applied immediately (spec §4.C step 1).
func NewAdapterContext(identity Identity, binding FilterBinding) *AdapterContext {
	return &AdapterContext{
		Identity:      identity,
		Binding:       binding,
		state:         HwStateBound,
		capabilities:  BaselineCapabilities(identity.Family),
		subscriptions: make(map[uint32]*EventSubscription),
	}
}

// State returns the current, monotonically non-decreasing hardware
// state (spec §8 property 1).
func (c *AdapterContext) State() HwState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Capabilities returns the current capability bitset. Once a bit is
// set it is never cleared until the context is destroyed (spec §8
// property 2).
func (c *AdapterContext) Capabilities() Capabilities {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.capabilities
}

// Mmio returns the active MMIO mapping, or nil if the adapter has not
// advanced past HwStateBound.
func (c *AdapterContext) Mmio() *MmioMapping {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mmio
}

// advanceLocked moves the state forward to target if target is further along
// than the current state; it never regresses (spec §3 invariant).
// Callers hold c.mu for writing.
func (c *AdapterContext) advanceLocked(target HwState) {
	if target > c.state {
		c.state = target
	}
}

// addCapabilitiesLocked ORs bits into the capability set. Callers hold
// c.mu for writing.
func (c *AdapterContext) addCapabilitiesLocked(bits Capabilities) {
	c.capabilities |= bits
}

// MarkBarMapped records a successful BAR0 mapping: stores the mapping,
// sets the Mmio capability, and advances the state to HwStateBarMapped.
func (c *AdapterContext) MarkBarMapped(mapping *MmioMapping) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mmio = mapping
	c.addCapabilitiesLocked(CapMmio)
	c.advanceLocked(HwStateBarMapped)
}

// MarkPtpReady advances the state to HwStatePtpReady once the PHC has
// been observed advancing (spec §4.G).
func (c *AdapterContext) MarkPtpReady() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advanceLocked(HwStatePtpReady)
}

// ReadMmio32 performs an ordered 32-bit register read relative to the
// adapter's active mapping. It fails with StatusNotReady if the
// adapter has no active mapping (spec §4.F).
func (c *AdapterContext) ReadMmio32(backend PlatformBackend, offset uint32) (uint32, error) {
	c.mu.RLock()
	mapping := c.mmio
	c.mu.RUnlock()

	if mapping == nil {
		return 0, NewStatusError(StatusNotReady, "no active MMIO mapping")
	}
	value, err := backend.ReadMmio32(mapping.token, offset)
	if err != nil {
		return 0, NewStatusError(StatusHardwareError, "mmio read @0x%x: %v", offset, err)
	}
	return value, nil
}

// WriteMmio32 performs an ordered 32-bit register write relative to
// the adapter's active mapping. It fails with StatusNotReady if the
// adapter has no active mapping (spec §4.F).
func (c *AdapterContext) WriteMmio32(backend PlatformBackend, offset uint32, value uint32) error {
	c.mu.RLock()
	mapping := c.mmio
	c.mu.RUnlock()

	if mapping == nil {
		return NewStatusError(StatusNotReady, "no active MMIO mapping")
	}
	if err := backend.WriteMmio32(mapping.token, offset, value); err != nil {
		return NewStatusError(StatusHardwareError, "mmio write @0x%x: %v", offset, err)
	}
	return nil
}

// Destroy tears down the MMIO mapping (if any) and releases every
// outstanding event subscription. It is called on filter detach.
func (c *AdapterContext) Destroy(backend PlatformBackend) {
	c.mu.Lock()
	mapping := c.mmio
	c.mmio = nil
	c.mu.Unlock()

	if mapping != nil {
		_ = Unmap(backend, mapping)
	}

	c.subMu.Lock()
	c.subscriptions = make(map[uint32]*EventSubscription)
	c.subMu.Unlock()
}
