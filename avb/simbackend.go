package avb

import (
	"encoding/binary"
	"sync"
	"time"
)

// SimBackend is an in-memory PlatformBackend used by tests and by any
// host that wants to exercise this core without real hardware. It
// models PCI configuration space and a BAR0-sized register file per
// mapping, and a virtual clock so that the bounded polling loops in
// ptp/tsn do not spend real wall-clock time in tests.
type SimBackend struct {
	mu sync.Mutex

	configSpace map[PciAddress]map[uint8]uint32
	regions     map[uintptr][]byte
	nextToken   uintptr

	now time.Time

	// TickHook, if set, is invoked after every Sleep with the elapsed
	// duration and every live mapping token, so a test can advance a
	// simulated PHC (e.g. bump SYSTIML/SYSTIMH) in step with the
	// bounded-wait loops that call Sleep.
	TickHook func(token uintptr, registers []byte, elapsed time.Duration)
}

// NewSimBackend constructs a SimBackend whose virtual wall clock starts
// at the Unix epoch; SetNow moves it. The simulated PHC is the SYSTIM
// register file, not this clock.
func NewSimBackend() *SimBackend {
	return &SimBackend{
		configSpace: make(map[PciAddress]map[uint8]uint32),
		regions:     make(map[uintptr][]byte),
		now:         time.Unix(0, 0).UTC(),
	}
}

// SetConfig seeds PCI configuration space for a device, so tests can
// drive Discover without real hardware.
func (s *SimBackend) SetConfig(pci PciAddress, offset uint8, value uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configSpace[pci] == nil {
		s.configSpace[pci] = make(map[uint8]uint32)
	}
	s.configSpace[pci][offset] = value
}

// SetNow pins the virtual wall clock that Now reports and Sleep advances.
func (s *SimBackend) SetNow(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = t
}

func (s *SimBackend) ReadConfig32(pci PciAddress, offset uint8) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs, ok := s.configSpace[pci]
	if !ok {
		return 0, NewStatusError(StatusHardwareError, "no simulated device at %s", pci)
	}
	return regs[offset], nil
}

func (s *SimBackend) WriteConfig32(pci PciAddress, offset uint8, value uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configSpace[pci] == nil {
		s.configSpace[pci] = make(map[uint8]uint32)
	}
	s.configSpace[pci][offset] = value
	return nil
}

func (s *SimBackend) MapMmio(pa uint64, length uint32) (uintptr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextToken++
	token := s.nextToken
	region := make([]byte, length)
	// Registers a simulated adapter is expected to answer liveness
	// checks with should be pre-seeded by the test; everything else
	// defaults to zero rather than 0xFFFFFFFF so an unseeded register
	// doesn't look like a dead adapter.
	s.regions[token] = region
	return token, nil
}

func (s *SimBackend) UnmapMmio(token uintptr, _ uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.regions, token)
	return nil
}

func (s *SimBackend) ReadMmio32(token uintptr, offset uint32) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	region, ok := s.regions[token]
	if !ok {
		return 0, NewStatusError(StatusHardwareError, "mmio token %d not mapped", token)
	}
	if int(offset)+4 > len(region) {
		return 0, NewStatusError(StatusHardwareError, "offset 0x%x out of range", offset)
	}
	return binary.LittleEndian.Uint32(region[offset:]), nil
}

func (s *SimBackend) WriteMmio32(token uintptr, offset uint32, value uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	region, ok := s.regions[token]
	if !ok {
		return NewStatusError(StatusHardwareError, "mmio token %d not mapped", token)
	}
	if int(offset)+4 > len(region) {
		return NewStatusError(StatusHardwareError, "offset 0x%x out of range", offset)
	}
	binary.LittleEndian.PutUint32(region[offset:], value)
	return nil
}

// SetRegister is a test convenience for seeding a register. It goes
// through WriteMmio32 and discards its error, so an unknown token or an
// out-of-range offset is silently ignored.
func (s *SimBackend) SetRegister(token uintptr, offset uint32, value uint32) {
	_ = s.WriteMmio32(token, offset, value)
}

// Register reads a raw register back for assertions.
func (s *SimBackend) Register(token uintptr, offset uint32) uint32 {
	v, _ := s.ReadMmio32(token, offset)
	return v
}

func (s *SimBackend) Sleep(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	hook := s.TickHook
	regions := make(map[uintptr][]byte, len(s.regions))
	for token, region := range s.regions {
		regions[token] = region
	}
	s.mu.Unlock()

	if hook == nil {
		return
	}
	for token, region := range regions {
		hook(token, region, d)
	}
}

func (s *SimBackend) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}
