// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gstack

import (
	"fmt"
	"runtime/debug"

	"code.hybscloud.com/mprompt/diag"
)

// Stack is one growable stack: a reservation of cfg.StackMaxSize bytes laid
// out as [ gap | usable | gap ], committed on demand from the low end of
// usable. The first extraBytes of usable are reserved for the caller's own
// record — the prompt package exposes them as Prompt.Extra. The
// *prompt.Prompt struct itself is an ordinary Go heap value and is not
// stored in this region.
//
// This is not the stack a goroutine executes on (Go owns that); it backs
// the prompt record and the buffers a multi-shot resumption saves and
// restores. See SPEC_FULL.md §0.
type Stack struct {
	cfg  *Config
	pool *gpool
	blk  int

	region    []byte
	gapSize   int
	usableOff int
	usableLen int
	extraLen  int
	committed int // bytes committed within usable, from usableOff

	freed bool
}

// Alloc reserves a fresh stack with room for extraBytes of caller-owned
// record storage at its base, per §4.1's "alloc(extra_bytes) → gstack".
func Alloc(cfg *Config, extraBytes int) (*Stack, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	drainDelayed()
	if s := cacheTake(cfg, extraBytes); s != nil {
		return s, nil
	}
	return allocFresh(cfg, extraBytes)
}

func allocFresh(cfg *Config, extraBytes int) (*Stack, error) {
	gap := cfg.StackGapSize
	usable := cfg.StackMaxSize - 2*gap
	if usable <= 0 {
		return nil, newError(InvalidState, "stack_max_size too small for its guard gaps")
	}
	if extraBytes > usable {
		return nil, newError(InvalidState, "extra_bytes exceeds usable stack size")
	}

	var (
		pool   *gpool
		blk    int
		region []byte
		err    error
	)
	if cfg.GpoolEnable && !cfg.StackUseOvercommit {
		pool, blk, region, err = gpoolAlloc(cfg)
	} else {
		region, err = reserveRegion(cfg.StackMaxSize)
	}
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Fatal("gstack: reservation failed", diag.F("err", err.Error()))
		}
		return nil, err
	}

	s := &Stack{
		cfg:       cfg,
		pool:      pool,
		blk:       blk,
		region:    region,
		gapSize:   gap,
		usableOff: gap,
		usableLen: usable,
		extraLen:  extraBytes,
	}

	initial := cfg.resolvedInitialCommit()
	need := extraBytes + initial
	if need > usable {
		need = usable
	}
	if err := commitRegion(region, s.usableOff, need); err != nil {
		s.releaseToOS()
		return nil, err
	}
	s.committed = need
	return s, nil
}

// Extra returns the caller-owned record region requested at Alloc time.
func (s *Stack) Extra() []byte {
	return s.region[s.usableOff : s.usableOff+s.extraLen]
}

// Grow extends the committed window so that at least totalNeeded bytes of
// usable space (including the extra region) are accessible, following the
// "quadratic doubling capped at 1 MiB per fault" rule of §4.1. In the C
// original this runs inside the page-fault handler; here it is called
// explicitly wherever the prompt/handler layers know they need more room
// (e.g. before copying a larger snapshot in), because Go code never derefs
// a raw stack pointer for the fault handler to intercept.
func (s *Stack) Grow(totalNeeded int) error {
	if totalNeeded <= s.committed {
		return nil
	}
	if totalNeeded > s.usableLen {
		if s.cfg.Logger != nil {
			s.cfg.Logger.Fatal("gstack: overflow", diag.F("requested", totalNeeded), diag.F("max", s.usableLen))
		}
		return newError(StackOverflow, "requested size exceeds stack_max_size")
	}
	committed := s.committed
	for committed < totalNeeded {
		growth := committed
		if !s.cfg.StackGrowFast || growth <= 0 {
			growth = pageSize
		}
		if growth > 1<<20 {
			growth = 1 << 20
		}
		if growth > s.usableLen-committed {
			growth = s.usableLen - committed
		}
		committed += growth
	}
	if err := commitRegion(s.region, s.usableOff+s.committed, committed-s.committed); err != nil {
		return err
	}
	s.committed = committed
	return nil
}

// ProbeGuard deliberately writes to a guard gap (the low gap when low is
// true, otherwise the high gap) to exercise overflow detection: on unix and
// windows this is a genuine hardware fault on a PROT_NONE/PAGE_NOACCESS
// page, converted to a recoverable panic by runtime/debug.SetPanicOnFault
// and reported here as a *Error of kind StackOverflow. On the portable
// fallback (no real guard pages) the write silently succeeds and ProbeGuard
// returns nil — see platform_other.go.
func (s *Stack) ProbeGuard(low bool) (err error) {
	prev := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(prev)
	defer func() {
		if r := recover(); r != nil {
			if s.cfg.Logger != nil {
				s.cfg.Logger.Fatal("gstack: stack overflow", diag.F("panic", fmt.Sprint(r)))
			}
			err = newError(StackOverflow, fmt.Sprintf("guard gap fault: %v", r))
		}
	}()
	idx := 0
	if !low {
		idx = len(s.region) - 1
	}
	s.region[idx] = 0xff
	return nil
}

// Snapshot is a saved copy of a stack's extra record and live committed
// bytes, produced by Save and consumed by Restore, for multi-shot
// resumption replay (§4.3 "save a stack region for multi-shot").
type Snapshot struct {
	extra     []byte
	live      []byte
	committed int
}

// Save copies the live bytes into a heap buffer, per §4.1's save contract.
func (s *Stack) Save() *Snapshot {
	extra := append([]byte(nil), s.Extra()...)
	live := append([]byte(nil), s.region[s.usableOff+s.extraLen:s.usableOff+s.committed]...)
	return &Snapshot{extra: extra, live: live, committed: s.committed}
}

// Restore writes a snapshot's bytes back, growing the commit window first
// if needed.
func (s *Stack) Restore(snap *Snapshot) error {
	if err := s.Grow(snap.committed); err != nil {
		return err
	}
	copy(s.Extra(), snap.extra)
	copy(s.region[s.usableOff+s.extraLen:s.usableOff+snap.committed], snap.live)
	s.committed = snap.committed
	return nil
}

// Free releases a stack. delay=true parks it on the delayed-free list
// (drained by the next non-delayed Alloc/Free or by ClearCache), matching
// §4.1's rationale that some unwind mechanisms keep materializing records
// inside the region being freed.
func (s *Stack) Free(delay bool) {
	if s.freed {
		return
	}
	s.freed = true
	if delay {
		delayedPush(s)
		return
	}
	drainDelayed()
	if cachePut(s) {
		return
	}
	s.releaseToOS()
}

func (s *Stack) releaseToOS() {
	if s.pool != nil {
		guardRegion(s.region, 0, len(s.region)) //nolint:errcheck // best-effort on teardown
		s.pool.free(s.blk)
		return
	}
	_ = releaseRegion(s.region)
}

// resetForReuse decommits growth beyond the initial window (unless the
// canary at the initial-commit boundary is still intact) and clears the
// extra region, readying the stack to satisfy a future Alloc from cache.
func (s *Stack) resetForReuse() {
	initial := s.cfg.resolvedInitialCommit()
	boundary := s.extraLen + initial
	if boundary > s.usableLen {
		boundary = s.usableLen
	}
	canaryIntact := s.committed > boundary && s.region[s.usableOff+boundary] == canaryByte
	if !canaryIntact && s.committed > boundary {
		_ = decommitRegion(s.region, s.usableOff+boundary, s.committed-boundary, s.cfg.StackResetDecommits)
		s.committed = boundary
	}
	for i := range s.Extra() {
		s.Extra()[i] = 0
	}
	// Only write the canary where it lies inside a committed page.
	if boundary < s.usableLen && boundary < (s.committed+pageSize-1)/pageSize*pageSize {
		s.region[s.usableOff+boundary] = canaryByte
	}
	s.extraLen = 0
}

// canaryByte marks the initial-commit boundary, per the spec's Open
// Question. This implementation picks "use canary": resetForReuse writes it
// at the boundary (when that byte lies in a committed page), and when a
// stack whose window has grown past the boundary is reset and the byte
// still holds canaryByte, resetForReuse skips the decommit and keeps the
// grown window committed; otherwise everything past the boundary is
// decommitted. See DESIGN.md.
const canaryByte = 0xc5
