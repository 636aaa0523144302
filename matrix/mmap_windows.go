//go:build windows

package matrix

import (
	"os"
	"syscall"
	"unsafe"
)

func mmapRW(f *os.File, size int) ([]byte, error) {
	h, err := syscall.CreateFileMapping(syscall.Handle(f.Fd()), nil, syscall.PAGE_READWRITE, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	defer syscall.CloseHandle(h)

	addr, err := syscall.MapViewOfFile(h, syscall.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func munmap(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	return syscall.UnmapViewOfFile(uintptr(unsafe.Pointer(&buf[0])))
}

func msync(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	return syscall.FlushViewOfFile(uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
}
