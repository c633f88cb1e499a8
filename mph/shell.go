// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mph

import "code.hybscloud.com/mprompt/prompt"

// Finally is the Go port's substitute for §3/§4.4's Finally shadow-stack
// frame: release is guaranteed to run exactly once, whether body returns
// normally or panics (including an mph unwindSentinel from a Never/Abort
// dispatch), via an ordinary defer. The spec needs a frame pushed onto a
// thread-local shadow stack because the original's unwind walks that
// stack by hand; Go's own defer/recover already runs release on every
// exit path a stack-walking unwind would, so no separate bookkeeping
// structure is introduced here.
func Finally[L any](local L, release func(L), body func()) {
	defer release(local)
	body()
}

// Under runs body with its effects performed against outerP instead of
// whatever prompt the caller would otherwise have used, the Go port's
// named substitute for §4.4's under(kind, body): the original pushes an
// UNDER frame so a re-entrant perform of the same effect skips the
// current handler and finds the next outer one. Because mph.Perform
// already takes the prompt it suspends across explicitly rather than
// resolving "the current handler" from an implicit, thread-local search,
// a Dispatch body gets that behavior for free by simply performing
// against a different, explicitly named prompt — Under exists only to
// give that pattern a name for code translating directly from the
// original's under(kind, body) call sites.
func Under[R any](outerP *prompt.Prompt, body func(p *prompt.Prompt) R) R {
	return body(outerP)
}

// Mask performs op against the enclosing handler `hide` levels out from
// the nearest one, the Go port's substitute for §4.4's mask(effect,
// from): the original walks its shadow stack with a counter, incrementing
// on every MASK frame for effect it passes and decrementing on every
// Handler frame, so the `from` nearest handlers of effect are hidden from
// a nested perform. This port has no shadow stack to walk — each handler
// level is an explicitly held *prompt.Prompt, not an implicit frame a
// runtime search discovers — so the counter walk is over chain, the
// caller's own chain of enclosing prompts ordered nearest-first, exactly
// the way a Dispatch implementation building nested mph.Handle calls
// already holds its ancestor chain (the same way a recursive function
// holds its own call chain). hide is clamped to chain's last element, so
// "hide more handlers than exist" reaches the outermost one rather than
// panicking — the same saturating behavior a counter walk off the top of
// a shorter shadow stack would have.
func Mask[O Op[O, A], A any](chain []*prompt.Prompt, hide int, op O) A {
	idx := 0
	for idx < hide && idx < len(chain)-1 {
		idx++
	}
	return Perform[O, A](chain[idx], op)
}
