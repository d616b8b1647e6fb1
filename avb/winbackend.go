//go:build windows

package avb

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// controlDevicePath is the user-mode name of the filter's own control
// device, opened the same way the teacher's NewNdisApi opens \\.\NDISRD:
// a plain CreateFile against a device the kernel-mode half of this
// filter exposes for exactly this purpose (spec §1 "the kernel-mode
// NDIS filter and its IOCTL surface are given, external collaborators").
const controlDevicePath = `\\.\IntelAvbFilter`

// ioctl service codes the kernel-mode half answers. Numeric values are
// placeholders for the CTL_CODE values the driver build defines; they
// exist here only so this backend has something concrete to pass to
// DeviceIoControl.
const (
	ioctlReadConfig32  uint32 = 0x830020C0
	ioctlWriteConfig32 uint32 = 0x830020C4
	ioctlMapBar0       uint32 = 0x830020C8
	ioctlUnmapBar0     uint32 = 0x830020CC
	ioctlReadMmio32    uint32 = 0x830020D0
	ioctlWriteMmio32   uint32 = 0x830020D4
)

type configAccess struct {
	Bus      uint8
	Device   uint8
	Function uint8
	_        uint8
	Offset   uint8
	_        [3]uint8
	Value    uint32
}

type mapBar0Request struct {
	Bus          uint8
	Device       uint8
	Function     uint8
	_            uint8
	PhysicalBase uint64
	Length       uint32
}

type mapBar0Reply struct {
	Token uintptr
}

type mmioAccess struct {
	Token  uintptr
	Offset uint32
	Value  uint32
}

// WinBackend is the real PlatformBackend, talking to the kernel-mode
// filter through its control device the same way the teacher's NdisApi
// talks to \\.\NDISRD: open once, DeviceIoControl per operation.
type WinBackend struct {
	fileHandle windows.Handle
}

// NewWinBackend opens the filter's control device. Mirrors
// NewNdisApi's "open on construction, Close explicitly" lifecycle.
func NewWinBackend() (*WinBackend, error) {
	devicePath, err := windows.UTF16PtrFromString(controlDevicePath)
	if err != nil {
		return nil, err
	}

	fileHandle, err := windows.CreateFile(
		devicePath,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", controlDevicePath, err)
	}

	return &WinBackend{fileHandle: fileHandle}, nil
}

// Close releases the control device handle.
func (w *WinBackend) Close() {
	if w.fileHandle != windows.InvalidHandle {
		windows.CloseHandle(w.fileHandle)
	}
}

func (w *WinBackend) ioctl(service uint32, in, out unsafe.Pointer, sizeIn, sizeOut uint32) error {
	var returned uint32
	return windows.DeviceIoControl(
		w.fileHandle,
		service,
		(*byte)(in),
		sizeIn,
		(*byte)(out),
		sizeOut,
		&returned,
		nil,
	)
}

func (w *WinBackend) ReadConfig32(pci PciAddress, offset uint8) (uint32, error) {
	req := configAccess{Bus: pci.Bus, Device: pci.Device, Function: pci.Function, Offset: offset}
	if err := w.ioctl(ioctlReadConfig32, unsafe.Pointer(&req), unsafe.Pointer(&req), uint32(unsafe.Sizeof(req)), uint32(unsafe.Sizeof(req))); err != nil {
		return 0, err
	}
	return req.Value, nil
}

func (w *WinBackend) WriteConfig32(pci PciAddress, offset uint8, value uint32) error {
	req := configAccess{Bus: pci.Bus, Device: pci.Device, Function: pci.Function, Offset: offset, Value: value}
	return w.ioctl(ioctlWriteConfig32, unsafe.Pointer(&req), nil, uint32(unsafe.Sizeof(req)), 0)
}

func (w *WinBackend) MapMmio(pa uint64, length uint32) (uintptr, error) {
	req := mapBar0Request{PhysicalBase: pa, Length: length}
	var reply mapBar0Reply
	if err := w.ioctl(ioctlMapBar0, unsafe.Pointer(&req), unsafe.Pointer(&reply), uint32(unsafe.Sizeof(req)), uint32(unsafe.Sizeof(reply))); err != nil {
		return 0, err
	}
	return reply.Token, nil
}

func (w *WinBackend) UnmapMmio(token uintptr, length uint32) error {
	req := mmioAccess{Token: token, Offset: 0, Value: length}
	return w.ioctl(ioctlUnmapBar0, unsafe.Pointer(&req), nil, uint32(unsafe.Sizeof(req)), 0)
}

func (w *WinBackend) ReadMmio32(token uintptr, offset uint32) (uint32, error) {
	req := mmioAccess{Token: token, Offset: offset}
	if err := w.ioctl(ioctlReadMmio32, unsafe.Pointer(&req), unsafe.Pointer(&req), uint32(unsafe.Sizeof(req)), uint32(unsafe.Sizeof(req))); err != nil {
		return 0, err
	}
	return req.Value, nil
}

func (w *WinBackend) WriteMmio32(token uintptr, offset uint32, value uint32) error {
	req := mmioAccess{Token: token, Offset: offset, Value: value}
	return w.ioctl(ioctlWriteMmio32, unsafe.Pointer(&req), nil, uint32(unsafe.Sizeof(req)), 0)
}

func (w *WinBackend) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (w *WinBackend) Now() time.Time {
	return time.Now()
}
