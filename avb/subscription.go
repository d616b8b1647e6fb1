package avb

import "sync/atomic"

// Maximum ring buffer size a single subscription may request
// (spec §4.J).
const MaxRingBufferLength = 1 << 20 // 1 MiB

// Sentinel ring id values that a caller can never legitimately use as
// input (spec §4.J): 0 is "unused", the other two are debug sentinels
// carried over from the teacher lineage's tendency to reuse obviously
// fake handles for "not a real ring" in test fixtures.
const (
	RingIDUnused   uint32 = 0
	RingIDSentinelA uint32 = 0xDEADBEEF
	RingIDSentinelB uint32 = 0xFFFFFFFF
)

// EventType is a bitmask of timestamp event categories a subscriber
// can filter on.
type EventType uint32

const (
	EventTxTimestamp EventType = 1 << iota
	EventRxTimestamp
	EventTargetTimeHit
	EventAuxTimestamp
)

// TimestampRecord is one entry written into a subscription's ring by
// the producer side (spec §4.J: "An implementer must define a record
// format"). SequenceNumber is the SPSC fencing field: a consumer only
// trusts a record once it observes SequenceNumber advance past its
// last-read value.
type TimestampRecord struct {
	SequenceNumber uint64
	EventType      EventType
	TimestampNs    uint64
	Vlan           uint16
	Pcp            uint8
	_              [5]byte // pad to 8-byte alignment, matches the wire envelope convention (spec §6)
}

// OwnedBuffer is a non-pageable byte buffer sized to hold a ring of
// TimestampRecord entries, exclusively owned by the EventSubscription
// that allocated it.
type OwnedBuffer struct {
	Records []TimestampRecord
}

// UserAddress is the opaque token a caller uses to map an
// OwnedBuffer's memory into its own address space. The actual mapping
// mechanism (e.g. a section object on Windows) is an external
// collaborator; the core only hands out and tracks the token.
type UserAddress uint64

// RingNotifier lets a subscription wake a consumer blocked waiting for
// new ring data without that consumer having to poll SequenceNumber in
// a tight loop. The real implementation (ring_signal_windows.go) wraps
// a Windows event object the way the teacher's SafeEvent does;
// SimBackend-driven tests simply never set one, since Subscribe works
// the same with or without a notifier attached.
type RingNotifier interface {
	Signal() error
}

// EventSubscription is one caller's standing interest in timestamp
// events on an adapter (spec §3, §4.J).
type EventSubscription struct {
	RingID        uint32
	EventTypeMask EventType
	VlanFilter    uint16
	PcpFilter     uint8

	Ring        OwnedBuffer
	UserMapping *UserAddress

	// Notifier, when set, is signalled every time PushRecord writes a
	// new entry, so a consumer can block on it instead of spin-polling
	// SequenceNumber.
	Notifier RingNotifier

	sequence atomic.Uint64
}

// PushRecord writes rec at slot (sequence-1) mod len(Ring.Records),
// stamps it with the next sequence number, and signals Notifier if one
// is attached. This is the producer side of the SPSC ring contract
// TimestampRecord documents.
func (s *EventSubscription) PushRecord(rec TimestampRecord) {
	seq := s.NextSequence()
	rec.SequenceNumber = seq
	slot := (seq - 1) % uint64(len(s.Ring.Records))
	s.Ring.Records[slot] = rec
	if s.Notifier != nil {
		_ = s.Notifier.Signal()
	}
}

// NextSequence atomically allocates the next sequence number a
// producer should stamp on the next record it writes into this
// subscription's ring.
func (s *EventSubscription) NextSequence() uint64 {
	return s.sequence.Add(1)
}

// Subscribe allocates a new ring_id > 0, builds a bounded ring buffer,
// and registers the subscription against the adapter context. It
// rejects typesMask == 0 and length > MaxRingBufferLength per spec
// §4.J.
func (c *AdapterContext) Subscribe(typesMask EventType, vlan uint16, pcp uint8, length uint32) (*EventSubscription, error) {
	if typesMask == 0 {
		return nil, NewStatusError(StatusInvalidParameter, "types_mask must be non-zero")
	}
	if length > MaxRingBufferLength {
		return nil, NewStatusError(StatusResourceExhausted, "ring length %d exceeds %d byte cap", length, MaxRingBufferLength)
	}

	recordSize := uint32(32) // unsafe.Sizeof(TimestampRecord{}) is 32 bytes on every supported host
	if length == 0 {
		length = recordSize * 64
	}
	count := length / recordSize
	if count == 0 {
		count = 1
	}

	c.subMu.Lock()
	defer c.subMu.Unlock()

	c.nextRingID++
	ringID := c.nextRingID

	sub := &EventSubscription{
		RingID:        ringID,
		EventTypeMask: typesMask,
		VlanFilter:    vlan,
		PcpFilter:     pcp,
		Ring:          OwnedBuffer{Records: make([]TimestampRecord, count)},
	}
	c.subscriptions[ringID] = sub
	return sub, nil
}

// Unsubscribe releases a subscription and its ring memory.
func (c *AdapterContext) Unsubscribe(ringID uint32) error {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	if _, ok := c.subscriptions[ringID]; !ok {
		return NewStatusError(StatusNotFound, "ring id %d not subscribed", ringID)
	}
	delete(c.subscriptions, ringID)
	return nil
}

// Subscription looks up a live subscription by ring id.
func (c *AdapterContext) Subscription(ringID uint32) (*EventSubscription, bool) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	sub, ok := c.subscriptions[ringID]
	return sub, ok
}

// MapRing assigns (or returns the existing) user-mapping token for a
// subscription's ring. IsValidRingID rejects the reserved sentinels
// before this is ever called.
func (c *AdapterContext) MapRing(ringID uint32, token UserAddress) (*EventSubscription, error) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	sub, ok := c.subscriptions[ringID]
	if !ok {
		return nil, NewStatusError(StatusNotFound, "ring id %d not subscribed", ringID)
	}
	if sub.UserMapping == nil {
		sub.UserMapping = &token
	}
	return sub, nil
}

// IsValidRingID rejects the sentinel values a caller must never pass
// as an existing ring id (spec §4.J).
func IsValidRingID(ringID uint32) bool {
	return ringID != RingIDUnused && ringID != RingIDSentinelA && ringID != RingIDSentinelB
}
