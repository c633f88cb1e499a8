// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mph is the handler shell §4.4 describes: it gives ordinary,
// non-CPS Go code algebraic-effect-style Perform/Handle, built directly on
// package prompt's suspend/resume primitive rather than on closures.
//
// Unlike the teacher library's Handle/Perform (package kont, folded into
// this repo's mpe package as the defunctionalized/CPS-closure-based
// sibling of this shell), mph.Perform takes the *prompt.Prompt it suspends
// across explicitly. That is a deliberate substitution for the dynamic,
// implicit "current handler" scoping the original C library gets for free
// from a real call stack: Go has no portable way to ask "which prompt is
// the calling goroutine parked under", so this package asks the caller to
// say so, the same way context.Context is threaded explicitly instead of
// stored behind the scenes. A useful side effect is that package mph's
// Dispatch implementations are immune to the "effect performed while
// already handling an effect re-enters the same handler" hazard the
// shadow-stack UNDER frame exists to prevent in the original: a Dispatch
// body that wants to perform its own effects does so against a different,
// explicitly-named prompt, so it can never recurse into itself by
// accident. See SPEC_FULL.md §0 and DESIGN.md.
package mph

import (
	"code.hybscloud.com/mprompt/gstack"
	"code.hybscloud.com/mprompt/prompt"
)

// Kind is a handler's resumption strategy for one dispatched operation,
// per §4.4's TAIL_NOOP/TAIL/SCOPED_ONCE/ONCE/MULTI/NEVER/ABORT table.
type Kind int

const (
	// TailNoop resumes immediately with a value the handler already had on
	// hand, performing no other side effect.
	TailNoop Kind = iota
	// Tail resumes immediately after a side effect (e.g. a state write).
	Tail
	// ScopedOnce resumes at most once, within the dynamic extent of this
	// Dispatch call (mechanically identical to Once in this shell, since
	// package prompt's one-shot Resume already enforces "at most once";
	// the distinction is advisory to the handler author).
	ScopedOnce
	// Once resumes at most once, possibly after Dispatch has returned.
	Once
	// Multi resumes the operation's continuation zero or more times,
	// independently, via repeated prompt.Prompt.ResumeMulti calls made by
	// the Dispatch implementation itself. A Multi decision's Value is the
	// already-computed aggregate result; Handle treats it exactly like
	// Abort; see Decision.
	Multi
	// Never discards the continuation without resuming it.
	Never
	// Abort discards the continuation and supplies Value as Handle's
	// final result directly.
	Abort
)

func (k Kind) String() string {
	switch k {
	case TailNoop:
		return "tail_noop"
	case Tail:
		return "tail"
	case ScopedOnce:
		return "scoped_once"
	case Once:
		return "once"
	case Multi:
		return "multi"
	case Never:
		return "never"
	case Abort:
		return "abort"
	default:
		return "invalid"
	}
}

// Operation is an effect operation value, matched by a Handler's Dispatch.
type Operation = prompt.Operation

// Decision is a Handler's answer for one dispatched operation: how to
// resume (or not resume) its continuation.
type Decision struct {
	Kind  Kind
	Value any
}

// Handler dispatches operations performed under a prompt started by
// Handle. Dispatch receives the prompt itself so Multi-kind
// implementations can call ResumeMulti as many times as they need to.
type Handler interface {
	Dispatch(p *prompt.Prompt, op Operation) Decision
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(p *prompt.Prompt, op Operation) Decision

func (f HandlerFunc) Dispatch(p *prompt.Prompt, op Operation) Decision { return f(p, op) }

// Op is the F-bounded marker for a typed effect operation, carried over
// from the teacher library's effect.go unchanged: the self-referencing
// constraint lets Perform infer both the operation's concrete type and its
// result type from a single type argument.
type Op[O Op[O, A], A any] interface {
	OpResult() A
}

// Phantom is an embeddable zero-size type satisfying Op without a manual
// OpResult method; embed Phantom[A] in an operation struct.
type Phantom[A any] struct{}

func (Phantom[A]) OpResult() A { panic("phantom") }

// unwindSentinel is the panic value Perform raises when its continuation
// was discarded (a Never or Abort decision), so it propagates through the
// body's own defers exactly like any other unwind.
type unwindSentinel struct{ op Operation }

// Perform suspends the calling goroutine at op across prompt p and returns
// the value the handler resumes it with. If the handler discards op's
// continuation (Never or Abort), Perform panics with an internal sentinel
// that Handle recovers, so Perform never returns in that case — callers
// write ordinary code and rely on defer for cleanup, exactly as if the
// call had simply thrown.
func Perform[O Op[O, A], A any](p *prompt.Prompt, op O) A {
	v := p.Yield(op)
	if prompt.ResumeShouldUnwind(v) {
		panic(unwindSentinel{op: op})
	}
	return v.(A)
}

// Handle starts body under a fresh prompt and runs h's dispatch loop until
// the body completes, is aborted, or unwinds. extraBytes sizes the
// prompt's gstack-backed record storage, for handlers (like the ones in
// package handlers) that keep small resumable state there instead of in
// Go closures, so ResumeMulti's replay mechanism can see it.
func Handle[R any](cfg *gstack.Config, extraBytes int, body func(p *prompt.Prompt) R, h Handler) R {
	pr, err := prompt.New(cfg, extraBytes, func(p *prompt.Prompt) prompt.Answer {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(unwindSentinel); ok {
					return
				}
				panic(r)
			}
		}()
		return body(p)
	})
	if err != nil {
		panic(err)
	}
	defer pr.Discard(false)

	op, final, yielded := pr.Enter()
	for yielded {
		dec := h.Dispatch(pr, op)
		switch dec.Kind {
		case Multi, Abort:
			// pr is still suspended: its continuation is being discarded,
			// not returned to, so drive it to completion (running its own
			// defers) before the deferred Discard above reclaims its
			// gstack — otherwise the parked goroutine is abandoned.
			pr.ResumeDrop()
			if dec.Value == nil {
				var zero R
				return zero
			}
			return dec.Value.(R)
		case Never:
			op, final, yielded = pr.ResumeDrop()
		default: // TailNoop, Tail, ScopedOnce, Once
			op, final, yielded = pr.Resume(dec.Value)
		}
	}
	if final == nil {
		var zero R
		return zero
	}
	return final.(R)
}

// HandleRouted is Handle generalized to a dynamic router instead of one
// fixed Handler: every operation is dispatched to whatever Handler route
// returns for it, which may differ from one yield to the next. This backs
// package handlers's Rehandle, grounded on original_source's rehandle.c: a
// suspended continuation is not bound to the Handler instance that first
// saw it, and can be resumed under a different one later.
func HandleRouted[R any](cfg *gstack.Config, extraBytes int, body func(p *prompt.Prompt) R, route func(op Operation) Handler) R {
	pr, err := prompt.New(cfg, extraBytes, func(p *prompt.Prompt) prompt.Answer {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(unwindSentinel); ok {
					return
				}
				panic(r)
			}
		}()
		return body(p)
	})
	if err != nil {
		panic(err)
	}
	defer pr.Discard(false)

	op, final, yielded := pr.Enter()
	for yielded {
		dec := route(op).Dispatch(pr, op)
		switch dec.Kind {
		case Multi, Abort:
			pr.ResumeDrop()
			if dec.Value == nil {
				var zero R
				return zero
			}
			return dec.Value.(R)
		case Never:
			op, final, yielded = pr.ResumeDrop()
		default:
			op, final, yielded = pr.Resume(dec.Value)
		}
	}
	if final == nil {
		var zero R
		return zero
	}
	return final.(R)
}
