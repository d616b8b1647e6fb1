package avb

// MmioMapping is the live, non-cacheable BAR0 mapping owned by exactly
// one AdapterContext (spec §3). It is created by Map and released by
// Unmap; no two contexts ever share a mapping.
type MmioMapping struct {
	PhysicalBase uint64
	Length       uint32
	token        uintptr
}

// Map maps the physical BAR0 range as non-cacheable device memory
// (spec §4.B). Fails with StatusHardwareError if the backend cannot
// establish the mapping.
func Map(backend PlatformBackend, pa uint64, length uint32) (*MmioMapping, error) {
	token, err := backend.MapMmio(pa, length)
	if err != nil {
		return nil, NewStatusError(StatusHardwareError, "map BAR0: %v", err)
	}
	return &MmioMapping{PhysicalBase: pa, Length: length, token: token}, nil
}

// Unmap releases a mapping. A nil *MmioMapping (some discovery failures
// construct no mapping at all) is a no-op; a non-nil mapping is handed
// to the backend as is, so each mapping is released once.
func Unmap(backend PlatformBackend, m *MmioMapping) error {
	if m == nil {
		return nil
	}
	return backend.UnmapMmio(m.token, m.Length)
}
