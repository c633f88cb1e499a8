// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gstack

import (
	"testing"

	"code.hybscloud.com/mprompt/diag"
)

func smallConfig() *Config {
	return DefaultConfig().With(
		WithStackMaxSize(128<<10),
		WithStackGapSize(4<<10),
		WithLogger(diag.Noop()),
	)
}

func TestAllocExtraIsZeroedAndSized(t *testing.T) {
	s, err := Alloc(smallConfig(), 64)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer s.Free(false)

	extra := s.Extra()
	if len(extra) != 64 {
		t.Fatalf("len(Extra) = %d, want 64", len(extra))
	}
	for i, b := range extra {
		if b != 0 {
			t.Fatalf("Extra()[%d] = %d, want 0", i, b)
		}
	}
}

func TestGrowExtendsCommitMonotonically(t *testing.T) {
	s, err := Alloc(smallConfig(), 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer s.Free(false)

	before := s.committed
	if err := s.Grow(before + 1); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if s.committed <= before {
		t.Fatalf("committed did not grow: before=%d after=%d", before, s.committed)
	}
	if err := s.Grow(before); err != nil {
		t.Fatalf("Grow (no-op) returned error: %v", err)
	}
}

func TestGrowBeyondMaxFails(t *testing.T) {
	s, err := Alloc(smallConfig(), 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer s.Free(false)

	if err := s.Grow(s.usableLen + 1); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestSaveRestoreRoundTrips(t *testing.T) {
	s, err := Alloc(smallConfig(), 8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer s.Free(false)

	copy(s.Extra(), []byte("12345678"))
	if err := s.Grow(1024); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	copy(s.region[s.usableOff+s.extraLen:], []byte("live bytes"))

	snap := s.Save()

	s2, err := Alloc(smallConfig(), 8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer s2.Free(false)

	if err := s2.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if string(s2.Extra()) != "12345678" {
		t.Fatalf("Extra = %q", s2.Extra())
	}
	got := s2.region[s2.usableOff+s2.extraLen : s2.usableOff+s2.extraLen+len("live bytes")]
	if string(got) != "live bytes" {
		t.Fatalf("live bytes = %q", got)
	}
}

func TestFreeThenAllocReusesFromCache(t *testing.T) {
	cfg := smallConfig()
	s, err := Alloc(cfg, 4)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	s.Free(false)

	s2, err := Alloc(cfg, 4)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer s2.Free(false)

	for i, b := range s2.Extra() {
		if b != 0 {
			t.Fatalf("reused Extra()[%d] = %d, want 0 (not cleared)", i, b)
		}
	}
}

func TestClearCacheReleasesEverything(t *testing.T) {
	cfg := smallConfig()
	for i := 0; i < 3; i++ {
		s, err := Alloc(cfg, 0)
		if err != nil {
			t.Fatalf("Alloc: %v", err)
		}
		s.Free(false)
	}
	ClearCache()

	b := bucketFor(cfg)
	b.mu.Lock()
	n := len(b.stacks)
	b.mu.Unlock()
	if n != 0 {
		t.Fatalf("cache still holds %d stacks after ClearCache", n)
	}
}

func TestCacheCountIsBounded(t *testing.T) {
	cfg := DefaultConfig().With(
		WithStackMaxSize(128<<10),
		WithStackGapSize(4<<10),
		WithStackCacheCount(1),
		WithLogger(diag.Noop()),
	)
	ClearCache()

	s1, err := Alloc(cfg, 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	s2, err := Alloc(cfg, 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	s1.Free(false)
	s2.Free(false)

	b := bucketFor(cfg)
	b.mu.Lock()
	n := len(b.stacks)
	b.mu.Unlock()
	if n > 1 {
		t.Fatalf("cache holds %d stacks, want at most 1", n)
	}
	ClearCache()
}

func TestProbeGuardDetectsOverflowOnGuardedPlatforms(t *testing.T) {
	s, err := Alloc(smallConfig(), 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer s.Free(false)

	err = s.ProbeGuard(true)
	if !hasGuardPages() {
		t.Skip("no hardware guard pages on this platform; ProbeGuard is a no-op")
	}
	if err == nil {
		t.Fatalf("expected a StackOverflow error writing to the guard gap")
	}
	gerr, ok := err.(*Error)
	if !ok || gerr.Kind != StackOverflow {
		t.Fatalf("err = %v, want *Error{Kind: StackOverflow}", err)
	}
}
