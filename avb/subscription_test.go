package avb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarfld/IntelAvbFilter-sub000/avb"
)

func TestSubscribe_RejectsZeroTypesMask(t *testing.T) {
	ctx := newTestContext(avb.FamilyI226)
	_, err := ctx.Subscribe(0, 0, 0, 0)
	require.Error(t, err)
	assert.Equal(t, avb.StatusInvalidParameter, avb.AsStatus(err))
}

func TestSubscribe_RejectsOversizedRing(t *testing.T) {
	ctx := newTestContext(avb.FamilyI226)
	_, err := ctx.Subscribe(avb.EventTxTimestamp, 0, 0, avb.MaxRingBufferLength+1)
	require.Error(t, err)
	assert.Equal(t, avb.StatusResourceExhausted, avb.AsStatus(err))
}

// Every live subscription gets a distinct ring id (spec testable
// property on ring allocation).
func TestSubscribe_RingIDsAreUnique(t *testing.T) {
	ctx := newTestContext(avb.FamilyI226)
	seen := make(map[uint32]bool)
	for i := 0; i < 16; i++ {
		sub, err := ctx.Subscribe(avb.EventTxTimestamp, 0, 0, 0)
		require.NoError(t, err)
		assert.True(t, avb.IsValidRingID(sub.RingID))
		assert.False(t, seen[sub.RingID], "ring id %d reused", sub.RingID)
		seen[sub.RingID] = true
	}
}

func TestIsValidRingID_RejectsSentinelRingIDs(t *testing.T) {
	for _, ringID := range []uint32{avb.RingIDUnused, avb.RingIDSentinelA, avb.RingIDSentinelB} {
		assert.False(t, avb.IsValidRingID(ringID))
	}
}

func TestUnsubscribe_ThenLookupFails(t *testing.T) {
	ctx := newTestContext(avb.FamilyI226)
	sub, err := ctx.Subscribe(avb.EventRxTimestamp, 0, 0, 0)
	require.NoError(t, err)

	require.NoError(t, ctx.Unsubscribe(sub.RingID))
	_, ok := ctx.Subscription(sub.RingID)
	assert.False(t, ok)

	err = ctx.Unsubscribe(sub.RingID)
	require.Error(t, err)
	assert.Equal(t, avb.StatusNotFound, avb.AsStatus(err))
}

type countingNotifier struct{ signals int }

func (n *countingNotifier) Signal() error {
	n.signals++
	return nil
}

func TestPushRecord_StampsSequenceAndSignalsNotifier(t *testing.T) {
	ctx := newTestContext(avb.FamilyI226)
	sub, err := ctx.Subscribe(avb.EventTxTimestamp, 0, 0, 32*4)
	require.NoError(t, err)

	notifier := &countingNotifier{}
	sub.Notifier = notifier

	sub.PushRecord(avb.TimestampRecord{EventType: avb.EventTxTimestamp, TimestampNs: 100})
	sub.PushRecord(avb.TimestampRecord{EventType: avb.EventTxTimestamp, TimestampNs: 200})

	assert.Equal(t, 2, notifier.signals)
	assert.Equal(t, uint64(1), sub.Ring.Records[0].SequenceNumber)
	assert.Equal(t, uint64(2), sub.Ring.Records[1].SequenceNumber)
}

func TestDestroy_ClearsSubscriptions(t *testing.T) {
	ctx := newTestContext(avb.FamilyI226)
	sub, err := ctx.Subscribe(avb.EventTxTimestamp, 0, 0, 0)
	require.NoError(t, err)

	ctx.Destroy(avb.NewSimBackend())
	_, ok := ctx.Subscription(sub.RingID)
	assert.False(t, ok)
}
