// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build windows

package gstack

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var pageSize = int(func() uint32 {
	var si windows.SystemInfo
	windows.GetSystemInfo(&si)
	return si.PageSize
}())

// hasReliableOvercommit is false on Windows: VirtualAlloc with MEM_RESERVE
// still requires an explicit MEM_COMMIT step per page range, so there is no
// transparent overcommit path and gpools are used by default (matching the
// spec's "gpool_enable: true on platforms without reliable overcommit").
func hasReliableOvercommit() bool { return false }

func mapNoReserve() int { return 0 }

// reserveRegion reserves size bytes with MEM_RESERVE (no physical backing,
// no access) — the Windows analogue of a PROT_NONE mmap.
func reserveRegion(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE, windows.PAGE_NOACCESS)
	if err != nil {
		return nil, newError(OutOfMemory, err.Error())
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// commitRegion commits and makes read-write a sub-range of a reservation,
// mirroring the gstack_win.c MEM_COMMIT + PAGE_READWRITE pattern in
// original_source/.
func commitRegion(region []byte, offset, length int) error {
	if length == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&region[offset]))
	if _, err := windows.VirtualAlloc(addr, uintptr(length), windows.MEM_COMMIT, windows.PAGE_READWRITE); err != nil {
		return newError(OutOfMemory, err.Error())
	}
	return nil
}

// guardRegion reverts a committed range to PAGE_NOACCESS, reinstalling a
// guard gap without decommitting the underlying pages.
func guardRegion(region []byte, offset, length int) error {
	if length == 0 {
		return nil
	}
	var old uint32
	addr := uintptr(unsafe.Pointer(&region[offset]))
	if err := windows.VirtualProtect(addr, uintptr(length), windows.PAGE_NOACCESS, &old); err != nil {
		return newError(OutOfMemory, err.Error())
	}
	return nil
}

// decommitRegion releases the physical pages of region[offset:offset+length]
// back to the OS with MEM_DECOMMIT. The canary/reset distinction the unix
// path makes via MADV_FREE vs MADV_DONTNEED has no Windows equivalent:
// MEM_DECOMMIT always returns the pages, so reset is accepted but ignored.
func decommitRegion(region []byte, offset, length int, _ bool) error {
	if length == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&region[offset]))
	if err := windows.VirtualFree(addr, uintptr(length), windows.MEM_DECOMMIT); err != nil {
		return newError(OutOfMemory, err.Error())
	}
	return nil
}

// hasGuardPages reports that this platform enforces PAGE_NOACCESS faults.
func hasGuardPages() bool { return true }

// releaseRegion returns the whole reservation with MEM_RELEASE.
func releaseRegion(region []byte) error {
	if region == nil {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&region[0]))
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return newError(InvalidState, err.Error())
	}
	return nil
}
