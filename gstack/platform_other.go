// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !unix && !windows

package gstack

// pageSize is a conservative default for platforms with no page-granular
// memory protection API available through this module's dependencies.
var pageSize = 4096

// hasReliableOvercommit is reported true here: without mmap/VirtualAlloc
// there is no commit step to economize on, so the distinction is moot and
// the gpool path is skipped in favor of direct allocation.
func hasReliableOvercommit() bool { return true }

func mapNoReserve() int { return 0 }

// reserveRegion falls back to an ordinary Go heap allocation. There is no
// guard gap on this path — out-of-bounds writes are still caught by Go's
// own slice bounds checks for every access that goes through this package's
// API, but a raw unsafe write past the returned slice is not converted into
// a StackOverflow diagnostic the way it is on unix/windows.
func reserveRegion(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func commitRegion([]byte, int, int) error         { return nil }
func guardRegion([]byte, int, int) error          { return nil }
func decommitRegion([]byte, int, int, bool) error { return nil }
func releaseRegion([]byte) error                  { return nil }

// hasGuardPages reports false: this fallback has no real guard pages, so
// ProbeGuard cannot detect anything here.
func hasGuardPages() bool { return false }
