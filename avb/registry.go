package avb

import (
	"sync"
	"sync/atomic"
)

// AdapterHandle identifies one AdapterContext inside the registry. It
// is a distinct type from a raw pointer so that request-side code
// can't accidentally dereference a context without going through the
// registry's locking discipline.
type AdapterHandle uint64

// AdapterRegistry is the process-wide list of bound adapters (spec
// §4.D). Enumeration and lookup are readers; insert/remove/set-active
// are writers, following the same reader/writer discipline the rest of
// this codebase's lineage applies to its shared, low-churn
// collections.
type AdapterRegistry struct {
	mu       sync.RWMutex
	contexts map[AdapterHandle]*AdapterContext
	nextID   uint64

	active atomic.Uint64 // AdapterHandle, 0 means "none selected"
}

// NewAdapterRegistry constructs an empty registry.
func NewAdapterRegistry() *AdapterRegistry {
	return &AdapterRegistry{
		contexts: make(map[AdapterHandle]*AdapterContext),
	}
}

// Insert publishes a newly attached adapter context and returns its
// handle. At most one context is ever registered per filter binding;
// callers are expected to enforce that at attach time since the
// registry itself is binding-agnostic (it indexes by handle and by
// vendor/device id only, per spec §4.D).
func (r *AdapterRegistry) Insert(ctx *AdapterContext) AdapterHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	handle := AdapterHandle(r.nextID)
	r.contexts[handle] = ctx
	return handle
}

// Remove unregisters an adapter context. If it was the active
// selection, the active selector is cleared.
func (r *AdapterRegistry) Remove(handle AdapterHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.contexts, handle)
	r.active.CompareAndSwap(uint64(handle), 0)
}

// Get resolves a handle to its context.
func (r *AdapterRegistry) Get(handle AdapterHandle) (*AdapterContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ctx, ok := r.contexts[handle]
	return ctx, ok
}

// FindByIDs returns the first registered adapter matching a
// vendor/device id pair (spec §4.D find_by_ids).
func (r *AdapterRegistry) FindByIDs(vendorID, deviceID uint16) (AdapterHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for handle, ctx := range r.contexts {
		if ctx.Identity.VendorID == vendorID && ctx.Identity.DeviceID == deviceID {
			return handle, true
		}
	}
	return 0, false
}

// EnumerationEntry is one row of a point-in-time adapter listing.
type EnumerationEntry struct {
	Handle       AdapterHandle
	VendorID     uint16
	DeviceID     uint16
	Capabilities Capabilities
}

// Enumerate returns the adapter at the given zero-based index, plus
// the total adapter count, so a caller can page through the registry
// one EnumAdapters call at a time (spec §4.D / §6 EnumAdapters).
// Iteration order is stable only within a single Enumerate call's
// internal snapshot; it is not guaranteed stable across calls if the
// registry mutates between them.
func (r *AdapterRegistry) Enumerate(index uint32) (EnumerationEntry, uint32, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handles := make([]AdapterHandle, 0, len(r.contexts))
	for handle := range r.contexts {
		handles = append(handles, handle)
	}
	count := uint32(len(handles))
	if index >= count {
		return EnumerationEntry{}, count, false
	}

	// Stable ordering within this snapshot: ascending handle value,
	// which also happens to be insertion order.
	sortHandles(handles)

	ctx := r.contexts[handles[index]]
	return EnumerationEntry{
		Handle:       handles[index],
		VendorID:     ctx.Identity.VendorID,
		DeviceID:     ctx.Identity.DeviceID,
		Capabilities: ctx.Capabilities(),
	}, count, true
}

// Count returns the number of registered adapters.
func (r *AdapterRegistry) Count() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint32(len(r.contexts))
}

// SetActive atomically updates the coarse, process-wide active-adapter
// selector (spec §4.D, §9 "global singletons → process-scoped owned
// structure").
func (r *AdapterRegistry) SetActive(handle AdapterHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active.Store(uint64(handle))
}

// GetActive returns the current active-adapter selection, if any.
func (r *AdapterRegistry) GetActive() (AdapterHandle, bool) {
	handle := AdapterHandle(r.active.Load())
	if handle == 0 {
		return 0, false
	}
	return handle, true
}

func sortHandles(handles []AdapterHandle) {
	// insertion sort: registries are expected to hold a handful of
	// adapters (multi-NIC, not data-center fleets), so this avoids
	// pulling in sort for a handful of comparisons.
	for i := 1; i < len(handles); i++ {
		for j := i; j > 0 && handles[j-1] > handles[j]; j-- {
			handles[j-1], handles[j] = handles[j], handles[j-1]
		}
	}
}
