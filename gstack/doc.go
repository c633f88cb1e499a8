// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package gstack implements the growable-stack allocator described in the
// multi-prompt delimited control design: a reserved virtual range per
// logical stack, on-demand commit, guard gaps that turn overruns into
// faults, a process-wide cache of freed stacks, and a gpool of fixed-size
// slots for platforms without reliable OS overcommit.
//
// In this Go port the execution stack that a [code.hybscloud.com/mprompt/prompt.Prompt]
// runs on is a parked goroutine: the Go runtime already reserves, grows and
// guards goroutine stacks. What a gstack.Stack backs instead is the part of
// the C design that Go code can actually own directly — the "extra bytes"
// region the original spec says embeds the prompt record at the stack's
// base, and the snapshot buffers a multi-shot resumption saves and restores
// on replay. See SPEC_FULL.md §0 for the full rationale.
package gstack
