// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gstack

import "testing"

func TestDefaultConfigResolvedInitialCommit(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.resolvedInitialCommit(); got != pageSize {
		t.Fatalf("resolvedInitialCommit() = %d, want %d", got, pageSize)
	}
	cfg.StackInitialCommit = 4096
	if got := cfg.resolvedInitialCommit(); got != 4096 {
		t.Fatalf("resolvedInitialCommit() = %d, want 4096", got)
	}
}

func TestWithOptionsChain(t *testing.T) {
	cfg := DefaultConfig().With(
		WithStackMaxSize(1<<20),
		WithGpoolEnable(true),
		WithStackCacheCount(8),
		WithStackGapSize(8<<10),
	)
	if cfg.StackMaxSize != 1<<20 {
		t.Fatalf("StackMaxSize = %d", cfg.StackMaxSize)
	}
	if !cfg.GpoolEnable {
		t.Fatalf("GpoolEnable = false, want true")
	}
	if cfg.StackCacheCount != 8 {
		t.Fatalf("StackCacheCount = %d", cfg.StackCacheCount)
	}
	if cfg.StackGapSize != 8<<10 {
		t.Fatalf("StackGapSize = %d", cfg.StackGapSize)
	}
}

func TestWithDoesNotMutateOtherConfigs(t *testing.T) {
	base := DefaultConfig()
	derived := DefaultConfig().With(WithStackMaxSize(99))
	if base.StackMaxSize == 99 {
		t.Fatalf("With mutated an unrelated Config")
	}
	_ = derived
}
