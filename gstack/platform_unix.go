// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build unix

package gstack

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pageSize is read once at init, mirroring how the koka-lang/libmprompt
// original_source reads the OS page size at startup (see util.c).
var pageSize = unix.Getpagesize()

// hasReliableOvercommit reports whether this platform's default memory
// overcommit policy is trustworthy enough to skip gpools, per the spec's
// "OS supports real overcommit" test. Linux defaults to heuristic
// overcommit (mode 0) which is reliable in practice for a no-reserve
// mapping; other unix-family kernels (notably OpenBSD) do not.
func hasReliableOvercommit() bool {
	return runtime.GOOS == "linux"
}

// reserveRegion reserves size bytes of virtual address space with no
// access, matching a fresh mmap(PROT_NONE, MAP_NORESERVE) reservation. This
// is the Go-level equivalent of the gvisor/uffd examples' raw mmap calls in
// the retrieval pack.
func reserveRegion(size int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON|mapNoReserve())
	if err != nil {
		return nil, newError(OutOfMemory, err.Error())
	}
	return b, nil
}

// commitRegion makes region[offset:offset+length] read-write, the
// "commit on demand" step of §4.1.
func commitRegion(region []byte, offset, length int) error {
	if length == 0 {
		return nil
	}
	if err := unix.Mprotect(region[offset:offset+length], unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return newError(OutOfMemory, err.Error())
	}
	return nil
}

// guardRegion makes region[offset:offset+length] inaccessible again,
// installing (or re-installing) a guard gap.
func guardRegion(region []byte, offset, length int) error {
	if length == 0 {
		return nil
	}
	if err := unix.Mprotect(region[offset:offset+length], unix.PROT_NONE); err != nil {
		return newError(OutOfMemory, err.Error())
	}
	return nil
}

// decommitRegion releases the physical pages backing region[offset:offset+length]
// without necessarily removing the mapping, per the cache's canary-skip
// optimization and the "reset_decommits" config knob.
func decommitRegion(region []byte, offset, length int, reset bool) error {
	if length == 0 {
		return nil
	}
	sub := region[offset : offset+length]
	advice := unix.MADV_FREE
	if reset {
		advice = unix.MADV_DONTNEED
	}
	if err := unix.Madvise(sub, advice); err != nil {
		// MADV_FREE is not supported on every unix kernel build; fall back.
		if err2 := unix.Madvise(sub, unix.MADV_DONTNEED); err2 != nil {
			return newError(OutOfMemory, err2.Error())
		}
	}
	if reset {
		return guardRegion(region, offset, length)
	}
	return nil
}

// hasGuardPages reports that this platform enforces PROT_NONE faults, used
// by tests to skip overflow-detection assertions where they'd be moot.
func hasGuardPages() bool { return true }

// releaseRegion returns the entire reservation to the OS.
func releaseRegion(region []byte) error {
	if region == nil {
		return nil
	}
	if err := unix.Munmap(region); err != nil {
		return newError(InvalidState, err.Error())
	}
	return nil
}
