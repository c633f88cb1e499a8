// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gstack

import "sync"

// cacheBucket holds freed stacks of one cfg.StackMaxSize, ready for reuse.
// The spec asks for a per-thread cache; Go exposes goroutines, not OS
// threads, as its unit of concurrency, and a parked goroutine can resume on
// any OS thread — so a true per-thread cache would not even mean what it
// means in the C original. This module uses one process-wide, mutex-guarded
// cache instead, still bounded by cfg.StackCacheCount. See DESIGN.md.
type cacheBucket struct {
	mu      sync.Mutex
	stacks  []*Stack
	delayed []*Stack
}

var (
	cacheMu      sync.Mutex
	cacheBuckets = map[int]*cacheBucket{}
)

func bucketFor(cfg *Config) *cacheBucket {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	b := cacheBuckets[cfg.StackMaxSize]
	if b == nil {
		b = &cacheBucket{}
		cacheBuckets[cfg.StackMaxSize] = b
	}
	return b
}

// cacheTake pops a reusable stack sized for cfg, growing its commit window
// to fit extraBytes. Returns nil if the cache is empty.
func cacheTake(cfg *Config, extraBytes int) *Stack {
	b := bucketFor(cfg)
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.stacks) == 0 {
		return nil
	}
	n := len(b.stacks) - 1
	s := b.stacks[n]
	b.stacks[n] = nil
	b.stacks = b.stacks[:n]

	s.extraLen = extraBytes
	if err := s.Grow(extraBytes); err != nil {
		// Reservation is too small for this request; give up on reuse and
		// release it, falling through to a fresh allocation.
		s.releaseToOS()
		return nil
	}
	s.freed = false
	return s
}

// cachePut offers a freed stack to its bucket, respecting
// cfg.StackCacheCount. Returns false if the cache is already full, in which
// case the caller must release the stack to the OS instead.
func cachePut(s *Stack) bool {
	b := bucketFor(s.cfg)
	s.resetForReuse()
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.stacks) >= s.cfg.StackCacheCount {
		return false
	}
	b.stacks = append(b.stacks, s)
	return true
}

// delayedPush parks a stack on its bucket's delayed-free list instead of
// releasing or caching it immediately, per §4.1's delay=true contract.
func delayedPush(s *Stack) {
	b := bucketFor(s.cfg)
	b.mu.Lock()
	b.delayed = append(b.delayed, s)
	b.mu.Unlock()
}

// drainDelayed finishes freeing every stack parked on any bucket's delayed
// list. Called from Alloc before it consults the cache, and from Free
// before it tries to reuse or release its own stack, so delayed stacks
// never accumulate across unrelated Alloc/Free calls.
func drainDelayed() {
	cacheMu.Lock()
	buckets := make([]*cacheBucket, 0, len(cacheBuckets))
	for _, b := range cacheBuckets {
		buckets = append(buckets, b)
	}
	cacheMu.Unlock()

	for _, b := range buckets {
		b.mu.Lock()
		pending := b.delayed
		b.delayed = nil
		b.mu.Unlock()

		for _, s := range pending {
			if cachePut(s) {
				continue
			}
			s.releaseToOS()
		}
	}
}

// CachedCount reports how many stacks are currently parked in cfg's cache
// bucket, for tests asserting the no-leak-on-drop bound (§8 property 7):
// it must never exceed cfg.StackCacheCount.
func CachedCount(cfg *Config) int {
	b := bucketFor(cfg)
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.stacks)
}

// ClearCache drops every cached and delayed stack across all buckets,
// releasing their memory back to the OS. Exposed for callers that want to
// return memory promptly (tests, and long-lived workers between bursts of
// prompt activity).
func ClearCache() {
	drainDelayed()
	cacheMu.Lock()
	buckets := make([]*cacheBucket, 0, len(cacheBuckets))
	for _, b := range cacheBuckets {
		buckets = append(buckets, b)
	}
	cacheMu.Unlock()

	for _, b := range buckets {
		b.mu.Lock()
		stacks := b.stacks
		b.stacks = nil
		b.mu.Unlock()
		for _, s := range stacks {
			s.releaseToOS()
		}
	}
}
