// Code generated in the style of mockgen -source=avb/platform.go
// -destination=mock/platform_backend.go; hand-maintained here since the
// mockgen binary is not run as part of this build.
package mock

import (
	"reflect"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/zarfld/IntelAvbFilter-sub000/avb"
)

// MockPlatformBackend is a gomock double for avb.PlatformBackend, used
// wherever a test needs to assert the exact sequence of register
// accesses a core primitive issues (spec §4.F) rather than observe
// their effect through avb.SimBackend's in-memory model.
type MockPlatformBackend struct {
	ctrl     *gomock.Controller
	recorder *MockPlatformBackendMockRecorder
}

type MockPlatformBackendMockRecorder struct {
	mock *MockPlatformBackend
}

func NewMockPlatformBackend(ctrl *gomock.Controller) *MockPlatformBackend {
	mock := &MockPlatformBackend{ctrl: ctrl}
	mock.recorder = &MockPlatformBackendMockRecorder{mock}
	return mock
}

func (m *MockPlatformBackend) EXPECT() *MockPlatformBackendMockRecorder {
	return m.recorder
}

func (m *MockPlatformBackend) ReadConfig32(pci avb.PciAddress, offset uint8) (uint32, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadConfig32", pci, offset)
	ret0, _ := ret[0].(uint32)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockPlatformBackendMockRecorder) ReadConfig32(pci, offset any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadConfig32", reflect.TypeOf((*MockPlatformBackend)(nil).ReadConfig32), pci, offset)
}

func (m *MockPlatformBackend) WriteConfig32(pci avb.PciAddress, offset uint8, value uint32) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteConfig32", pci, offset, value)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockPlatformBackendMockRecorder) WriteConfig32(pci, offset, value any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteConfig32", reflect.TypeOf((*MockPlatformBackend)(nil).WriteConfig32), pci, offset, value)
}

func (m *MockPlatformBackend) MapMmio(pa uint64, length uint32) (uintptr, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MapMmio", pa, length)
	ret0, _ := ret[0].(uintptr)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockPlatformBackendMockRecorder) MapMmio(pa, length any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MapMmio", reflect.TypeOf((*MockPlatformBackend)(nil).MapMmio), pa, length)
}

func (m *MockPlatformBackend) UnmapMmio(token uintptr, length uint32) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UnmapMmio", token, length)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockPlatformBackendMockRecorder) UnmapMmio(token, length any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UnmapMmio", reflect.TypeOf((*MockPlatformBackend)(nil).UnmapMmio), token, length)
}

func (m *MockPlatformBackend) ReadMmio32(token uintptr, offset uint32) (uint32, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReadMmio32", token, offset)
	ret0, _ := ret[0].(uint32)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockPlatformBackendMockRecorder) ReadMmio32(token, offset any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReadMmio32", reflect.TypeOf((*MockPlatformBackend)(nil).ReadMmio32), token, offset)
}

func (m *MockPlatformBackend) WriteMmio32(token uintptr, offset, value uint32) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteMmio32", token, offset, value)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockPlatformBackendMockRecorder) WriteMmio32(token, offset, value any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteMmio32", reflect.TypeOf((*MockPlatformBackend)(nil).WriteMmio32), token, offset, value)
}

func (m *MockPlatformBackend) Sleep(d time.Duration) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Sleep", d)
}

func (mr *MockPlatformBackendMockRecorder) Sleep(d any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Sleep", reflect.TypeOf((*MockPlatformBackend)(nil).Sleep), d)
}

func (m *MockPlatformBackend) Now() time.Time {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Now")
	ret0, _ := ret[0].(time.Time)
	return ret0
}

func (mr *MockPlatformBackendMockRecorder) Now() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Now", reflect.TypeOf((*MockPlatformBackend)(nil).Now))
}

var _ avb.PlatformBackend = (*MockPlatformBackend)(nil)
