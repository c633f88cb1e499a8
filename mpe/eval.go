// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpe

import "code.hybscloud.com/mprompt/mph"

// Operation is an effect operation value, matched by a Handler's Dispatch.
type Operation = mph.Operation

// Kind and Decision are shared with package mph: both handler shells
// dispatch the same TAIL_NOOP/TAIL/SCOPED_ONCE/ONCE/MULTI/NEVER/ABORT
// vocabulary from §4.4, whether the suspension underneath is a parked
// goroutine (mph) or a frame chain (mpe).
type Kind = mph.Kind

const (
	TailNoop   = mph.TailNoop
	Tail       = mph.Tail
	ScopedOnce = mph.ScopedOnce
	Once       = mph.Once
	Multi      = mph.Multi
	Never      = mph.Never
	Abort      = mph.Abort
)

type Decision = mph.Decision

// Op is the F-bounded marker for a typed effect operation.
type Op[O Op[O, A], A any] interface {
	OpResult() A
}

// Phantom is an embeddable zero-size type satisfying Op without a manual
// OpResult method.
type Phantom[A any] struct{}

func (Phantom[A]) OpResult() A { panic("phantom") }

// Handler dispatches operations performed inside a Handle'd Expr. resume
// evaluates the rest of the suspended chain with a given answer and
// returns its final, type-erased result; Dispatch may call it zero, one,
// or many times — an Expr's frame chain is persistent data, so calling
// resume twice explores two independent continuations of the same
// suspension, which is how Multi-kind handlers are built on this shell
// (see TestMultiCallsResumeRepeatedly).
type Handler interface {
	Dispatch(op Operation, resume func(answer any) any) Decision
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(op Operation, resume func(any) any) Decision

func (f HandlerFunc) Dispatch(op Operation, resume func(any) any) Decision { return f(op, resume) }

// advance runs the non-effect part of a frame chain to either ReturnFrame
// or an EffectFrame, flattening chainedFrame links along the way and
// folding an EffectFrame's own Next into the returned rest so callers never
// see chainedFrame directly. It never recurses, so Bind/Map/Then chains
// between effects cost no Go stack.
//
// done=true means current holds the final value. Otherwise eff is the
// reached EffectFrame and rest is everything that follows it.
func advance(current Erased, frame Frame) (result Erased, eff *EffectFrame[Erased], rest Frame, done bool) {
	for {
		for {
			cf, ok := frame.(*chainedFrame)
			if !ok {
				break
			}
			if nested, ok := cf.first.(*chainedFrame); ok {
				frame = &chainedFrame{first: nested.first, rest: ChainFrames(nested.rest, cf.rest)}
				continue
			}
			switch f := cf.first.(type) {
			case ReturnFrame:
				frame = cf.rest
			case *BindFrame[Erased, Erased]:
				next := f.F(current)
				current = Erased(next.Value)
				frame = ChainFrames(ChainFrames(next.Frame, f.Next), cf.rest)
			case *MapFrame[Erased, Erased]:
				current = f.F(current)
				frame = ChainFrames(f.Next, cf.rest)
			case *ThenFrame[Erased, Erased]:
				current = Erased(f.Second.Value)
				frame = ChainFrames(ChainFrames(f.Second.Frame, f.Next), cf.rest)
			case *EffectFrame[Erased]:
				return current, f, ChainFrames(f.Next, cf.rest), false
			default:
				if u, ok := f.(interface{ Unwind(Erased) (Erased, Frame) }); ok {
					var next Frame
					current, next = u.Unwind(current)
					frame = ChainFrames(next, cf.rest)
					continue
				}
				panic("mpe: unknown frame type in chain")
			}
			break
		}
		if _, ok := frame.(*chainedFrame); ok {
			continue
		}

		switch f := frame.(type) {
		case ReturnFrame:
			return current, nil, nil, true
		case *BindFrame[Erased, Erased]:
			next := f.F(current)
			current = Erased(next.Value)
			frame = ChainFrames(next.Frame, f.Next)
		case *MapFrame[Erased, Erased]:
			current = f.F(current)
			frame = f.Next
		case *ThenFrame[Erased, Erased]:
			current = Erased(f.Second.Value)
			frame = ChainFrames(f.Second.Frame, f.Next)
		case *EffectFrame[Erased]:
			return current, f, f.Next, false
		default:
			if u, ok := frame.(interface{ Unwind(Erased) (Erased, Frame) }); ok {
				current, frame = u.Unwind(current)
				continue
			}
			panic("mpe: unknown frame type")
		}
	}
}

// evalWithHandler drives current/frame to completion, dispatching every
// EffectFrame it reaches to h. Bind/Map/Then interludes between effects
// are handled iteratively by advance and cost no stack; a dispatch that
// resolves without the handler itself calling resume (TAIL_NOOP, TAIL,
// SCOPED_ONCE, ONCE — the common case, see package handlers's state.go
// and reader.go) loops here instead of recursing, which is what gives
// §8 property 3 (tail-resume stack-neutrality) an O(1)-stack evaluator
// for S1/S2-shaped programs that perform millions of such operations.
// Only a handler that calls resume itself, independently, more than once
// (a MULTI dispatch) grows the Go call
// stack — one frame per independent branch, which is unavoidable since
// each such call is a genuinely separate continuation of the same
// suspension.
func evalWithHandler[R any](current Erased, frame Frame, h Handler) R {
	for {
		cur, ef, rest, done := advance(current, frame)
		if done {
			return cur.(R)
		}

		resume := func(answer any) any {
			return evalWithHandler[R](ef.Resume(answer), rest, h)
		}
		dec := h.Dispatch(ef.Operation, resume)
		switch dec.Kind {
		case Multi, Abort:
			if dec.Value == nil {
				var zero R
				return zero
			}
			return dec.Value.(R)
		case Never:
			var zero R
			return zero
		default:
			current, frame = ef.Resume(dec.Value), rest
		}
	}
}

// Handle evaluates a defunctionalized computation with a Handler, exactly
// as mph.Handle does for goroutine-backed computations.
func Handle[R any](m Expr[R], h Handler) R {
	return evalWithHandler[R](Erased(m.Value), m.Frame, h)
}

// RunPure evaluates a computation known to contain no EffectFrame.
// Panics otherwise.
func RunPure[A any](c Expr[A]) A {
	current, _, _, done := advance(Erased(c.Value), c.Frame)
	if !done {
		panic("mpe: RunPure called on a computation that performs effects")
	}
	return current.(A)
}
