// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gstack

import "code.hybscloud.com/mprompt/diag"

// Config holds the tunables from the design's configuration table. The zero
// value is meaningful only through [DefaultConfig], which fills in every
// default. Only StackInitialCommit treats zero as "use the default" (one OS
// page); every other field is used exactly as set, so a zero applied with a
// With* option or by hand is taken literally (a zero StackCacheCount
// disables caching, a zero StackGapSize means no guard gap).
type Config struct {
	// GpoolEnable forces gpool-backed allocation even on platforms with
	// reliable overcommit. Defaults to true on platforms without it.
	GpoolEnable bool

	// GpoolMaxSize is the virtual reservation size per gpool, in bytes.
	GpoolMaxSize int64

	// StackMaxSize is the per-stack virtual reservation, in bytes.
	StackMaxSize int

	// StackExnGuaranteed is the exception-guaranteed commit size from the
	// configuration table. It is stored but not read by this package: no
	// extra bytes are pre-committed when a panic propagates through a stack.
	StackExnGuaranteed int

	// StackInitialCommit is committed eagerly at stack entry.
	StackInitialCommit int

	// StackGapSize is the guard gap at each edge of the usable region.
	StackGapSize int

	// StackCacheCount caps the process-wide cache of freed stacks of this
	// StackMaxSize. Zero or negative disables caching.
	StackCacheCount int

	// StackGrowFast enables quadratic commit growth on a fault.
	StackGrowFast bool

	// StackUseOvercommit prefers the OS-overcommit path to gpools when the
	// platform advertises it.
	StackUseOvercommit bool

	// StackResetDecommits fully decommits on free instead of MADV_FREE-style
	// lazy reclaim.
	StackResetDecommits bool

	// Logger receives diagnostics. Defaults to a stumpy-backed logiface
	// logger writing to os.Stderr; see package diag.
	Logger diag.Sink
}

const (
	defaultGpoolMaxSize        = 256 << 30 // 256 GiB
	defaultStackMaxSize        = 8 << 20   // 8 MiB
	defaultStackExnGuaranteed  = 32 << 10  // 32 KiB
	defaultStackGapSize        = 64 << 10  // 64 KiB
	defaultStackCacheCount     = 4
	defaultStackInitialCommit = 0 // resolved to one OS page at use time
)

// DefaultConfig returns a Config with every field set to the documented
// default. Options (With*) further customize a copy of it.
func DefaultConfig() *Config {
	return &Config{
		GpoolEnable:         !hasReliableOvercommit(),
		GpoolMaxSize:        defaultGpoolMaxSize,
		StackMaxSize:        defaultStackMaxSize,
		StackExnGuaranteed:  defaultStackExnGuaranteed,
		StackInitialCommit:  defaultStackInitialCommit,
		StackGapSize:        defaultStackGapSize,
		StackCacheCount:     defaultStackCacheCount,
		StackGrowFast:       true,
		StackUseOvercommit:  false,
		StackResetDecommits: false,
		Logger:              diag.Default(),
	}
}

// Option customizes a *Config in place and returns it, so options compose:
//
//	cfg := gstack.DefaultConfig().With(
//	    gstack.WithStackMaxSize(16<<20),
//	    gstack.WithGpoolEnable(true),
//	)
type Option func(*Config)

// With applies a sequence of options to c, returning c for chaining.
func (c *Config) With(opts ...Option) *Config {
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithStackMaxSize overrides the per-stack virtual reservation.
func WithStackMaxSize(n int) Option { return func(c *Config) { c.StackMaxSize = n } }

// WithGpoolEnable forces (or forbids) gpool-backed allocation.
func WithGpoolEnable(enable bool) Option { return func(c *Config) { c.GpoolEnable = enable } }

// WithStackCacheCount overrides the process-wide cache cap.
func WithStackCacheCount(n int) Option { return func(c *Config) { c.StackCacheCount = n } }

// WithStackGapSize overrides the guard gap size.
func WithStackGapSize(n int) Option { return func(c *Config) { c.StackGapSize = n } }

// WithLogger overrides the diagnostics sink.
func WithLogger(l diag.Sink) Option { return func(c *Config) { c.Logger = l } }

// resolvedInitialCommit returns the effective initial-commit size, rounding
// a zero value up to one OS page.
func (c *Config) resolvedInitialCommit() int {
	if c.StackInitialCommit > 0 {
		return c.StackInitialCommit
	}
	return pageSize
}
