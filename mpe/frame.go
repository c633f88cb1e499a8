// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mpe is the defunctionalized sibling of package mph: instead of
// suspending a real goroutine across a prompt, it represents a suspended
// computation as explicit frame data (an Expr/Frame chain), the way the
// teacher library's own Cont/Expr split works. This is the right shell for
// effectful code that is already written in continuation-passing style —
// most of package handlers's combinators build Expr values rather than
// going through package prompt at all, because a persistent Expr can be
// resumed more than once for free: unlike a parked goroutine, it carries
// no live call-stack state to consume.
//
// Frame, Expr, BindFrame, MapFrame, ThenFrame, ChainFrames and chainedFrame
// are carried over from the teacher library's frame.go/trampoline.go with
// only the package name changed: they are a generic, domain-agnostic
// representation of "what to do next" and the spec's handler shell needs
// exactly this shape.
package mpe

// Erased is a type-erased value flowing through the frame chain.
type Erased = any

// Frame is a defunctionalized continuation frame.
type Frame interface {
	frame()
}

// ReturnFrame signals computation completion.
type ReturnFrame struct{}

func (ReturnFrame) frame() {}

// BindFrame represents monadic bind.
type BindFrame[A, B any] struct {
	F    func(A) Expr[B]
	Next Frame
}

func (f *BindFrame[A, B]) Unwind(current Erased) (Erased, Frame) {
	next := f.F(current.(A))
	return Erased(next.Value), ChainFrames(next.Frame, f.Next)
}

func (*BindFrame[A, B]) frame() {}

// MapFrame represents functor mapping.
type MapFrame[A, B any] struct {
	F    func(A) B
	Next Frame
}

func (f *MapFrame[A, B]) Unwind(current Erased) (Erased, Frame) {
	return Erased(f.F(current.(A))), f.Next
}

func (*MapFrame[A, B]) frame() {}

// ThenFrame represents sequencing with the first result discarded.
type ThenFrame[A, B any] struct {
	Second Expr[B]
	Next   Frame
}

func (f *ThenFrame[A, B]) Unwind(Erased) (Erased, Frame) {
	return Erased(f.Second.Value), ChainFrames(f.Second.Frame, f.Next)
}

func (*ThenFrame[A, B]) frame() {}

// EffectFrame represents a suspended effect operation: op was performed,
// and Resume converts the handler's answer into the value the rest of the
// chain continues with.
type EffectFrame[A any] struct {
	Operation Operation
	Resume    func(A) Erased
	Next      Frame
}

func (*EffectFrame[A]) frame() {}

// Expr is a defunctionalized continuation: either a completed Value (when
// Frame is ReturnFrame) or more work described by Frame.
type Expr[A any] struct {
	Value A
	Frame Frame
}

// ExprReturn creates a completed computation.
func ExprReturn[A any](a A) Expr[A] { return Expr[A]{Value: a, Frame: ReturnFrame{}} }

// ExprSuspend creates a computation suspended at frame.
func ExprSuspend[A any](frame Frame) Expr[A] {
	var zero A
	return Expr[A]{Value: zero, Frame: frame}
}

// ExprPerform creates a computation that performs an effect operation,
// suspending at an EffectFrame. Use Handle to evaluate it.
func ExprPerform[O Op[O, A], A any](op O) Expr[A] {
	var zero A
	return Expr[A]{
		Value: zero,
		Frame: &EffectFrame[Erased]{
			Operation: op,
			Resume:    func(v Erased) Erased { return v },
			Next:      ReturnFrame{},
		},
	}
}

// ExprBind sequences m into f.
func ExprBind[A, B any](m Expr[A], f func(A) Expr[B]) Expr[B] {
	if _, ok := m.Frame.(ReturnFrame); ok {
		return f(m.Value)
	}
	bf := &BindFrame[Erased, Erased]{
		F: func(a Erased) Expr[Erased] {
			r := f(a.(A))
			return Expr[Erased]{Value: Erased(r.Value), Frame: r.Frame}
		},
		Next: ReturnFrame{},
	}
	var zero B
	return Expr[B]{Value: zero, Frame: ChainFrames(m.Frame, bf)}
}

// ExprMap transforms m's eventual result with f.
func ExprMap[A, B any](m Expr[A], f func(A) B) Expr[B] {
	if _, ok := m.Frame.(ReturnFrame); ok {
		return ExprReturn(f(m.Value))
	}
	mf := &MapFrame[Erased, Erased]{
		F:    func(a Erased) Erased { return f(a.(A)) },
		Next: ReturnFrame{},
	}
	var zero B
	return Expr[B]{Value: zero, Frame: ChainFrames(m.Frame, mf)}
}

// ExprThen sequences m before n, discarding m's result.
func ExprThen[A, B any](m Expr[A], n Expr[B]) Expr[B] {
	if _, ok := m.Frame.(ReturnFrame); ok {
		return n
	}
	tf := &ThenFrame[Erased, Erased]{
		Second: Expr[Erased]{Value: Erased(n.Value), Frame: n.Frame},
		Next:   ReturnFrame{},
	}
	var zero B
	return Expr[B]{Value: zero, Frame: ChainFrames(m.Frame, tf)}
}

// ChainFrames links two frame chains, short-circuiting through ReturnFrame
// (the identity element) so composition stays O(1).
func ChainFrames(first, second Frame) Frame {
	if _, ok := first.(ReturnFrame); ok {
		return second
	}
	if _, ok := second.(ReturnFrame); ok {
		return first
	}
	return &chainedFrame{first: first, rest: second}
}

type chainedFrame struct {
	first Frame
	rest  Frame
}

func (*chainedFrame) frame() {}
