//go:build windows

package pages

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// reserve sets aside size bytes of address space with VirtualAlloc and commits
// pages on demand.
func reserve(size int) ([]byte, func([]byte) error, func() error, error) {
	base, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE, windows.PAGE_NOACCESS)
	if err != nil {
		return nil, nil, nil, err
	}
	mem := unsafe.Slice((*byte)(unsafe.Pointer(base)), size)
	commit := func(b []byte) error {
		addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
		_, err := windows.VirtualAlloc(addr, uintptr(len(b)), windows.MEM_COMMIT, windows.PAGE_READWRITE)
		return err
	}
	release := func() error {
		return windows.VirtualFree(base, 0, windows.MEM_RELEASE)
	}
	return mem, commit, release, nil
}
