//go:build windows

package avb

import (
	"errors"

	"golang.org/x/sys/windows"
)

// RingSignal wraps a Windows event object used to wake a consumer
// blocked waiting for new entries in an EventSubscription's ring
// (spec §4.J). Adapted from the teacher's SafeObjectHandle/SafeEvent:
// same idempotent-close, same valid-handle guard on every operation,
// renamed to this module's domain since what gets signalled here is
// "ring has a new record," not a generic kernel event.
type RingSignal struct {
	handle windows.Handle
}

// NewRingSignal wraps an existing event handle, typically one created
// with windows.CreateEvent by the caller that will also map the ring
// into its own address space.
func NewRingSignal(handle windows.Handle) *RingSignal {
	return &RingSignal{handle: handle}
}

// IsValid reports whether the wrapped handle can be used.
func (r *RingSignal) IsValid() bool {
	return r.handle != windows.InvalidHandle && r.handle != 0
}

// Signal sets the event to the signalled state, implementing
// RingNotifier.
func (r *RingSignal) Signal() error {
	if !r.IsValid() {
		return errors.New("ring signal: invalid handle")
	}
	return windows.SetEvent(r.handle)
}

// Reset clears the event back to non-signalled, called by the
// consumer after it has drained the ring up to the sequence it last
// observed.
func (r *RingSignal) Reset() error {
	if !r.IsValid() {
		return errors.New("ring signal: invalid handle")
	}
	return windows.ResetEvent(r.handle)
}

// Close releases the underlying handle. Safe to call on an
// already-invalid RingSignal.
func (r *RingSignal) Close() error {
	if !r.IsValid() {
		return nil
	}
	return windows.CloseHandle(r.handle)
}

var _ RingNotifier = (*RingSignal)(nil)
