// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handlers

import "code.hybscloud.com/mprompt/mpe"

// Either, Throw and RunError are adapted from the teacher library's
// error.go onto package mpe's Expr/Handler shell. SPEC_FULL.md's own
// gstack/prompt layers report failure with plain error values (see
// gstack.Error, which prompt.New passes through): Either here is a separate, opt-in
// convenience for Expr programs that want a typed, catchable failure
// channel alongside an effect handler, the way the teacher's programs do.
//
// Catch (the teacher's nested-handler recovery combinator) is not carried
// over: in this port, recovering from a Throw is just calling RunError
// again around the sub-Expr that might throw and inspecting the Either it
// returns, which is the idiomatic Go equivalent — no separate combinator
// is needed once Either is a first-class return value. See DESIGN.md.

// Either represents a value that is either a Left (error) or a Right
// (success), mirroring the teacher's error.go type of the same name.
type Either[E, A any] struct {
	isRight bool
	left    E
	right   A
}

// Left constructs a failed Either.
func Left[E, A any](e E) Either[E, A] { return Either[E, A]{left: e} }

// Right constructs a successful Either.
func Right[E, A any](a A) Either[E, A] { return Either[E, A]{isRight: true, right: a} }

// IsRight reports whether e holds a success value.
func (e Either[E, A]) IsRight() bool { return e.isRight }

// IsLeft reports whether e holds an error value.
func (e Either[E, A]) IsLeft() bool { return !e.isRight }

// GetRight returns e's success value and true, or the zero value and
// false if e is a Left.
func (e Either[E, A]) GetRight() (A, bool) {
	if !e.isRight {
		var zero A
		return zero, false
	}
	return e.right, true
}

// GetLeft returns e's error value and true, or the zero value and false
// if e is a Right.
func (e Either[E, A]) GetLeft() (E, bool) {
	if e.isRight {
		var zero E
		return zero, false
	}
	return e.left, true
}

// Throw is the effect operation for raising an error of type E, aborting
// the enclosing RunError computation with that error. It is parameterized
// over the answer type A it is performed as, the same way every other Op
// in this module is, even though it never actually produces one.
type Throw[E, A any] struct {
	Err E
	mpe.Phantom[A]
}

// PerformThrow performs Throw[E, A], aborting the innermost enclosing
// RunError[E, A] with err. A never resumes.
func PerformThrow[E, A any](err E) mpe.Expr[A] {
	return mpe.ExprPerform[Throw[E, A], A](Throw[E, A]{Err: err})
}

// RunError runs prog, yielding Right(result) if it completes normally or
// Left(err) if it performs Throw[E, A]{Err: err} anywhere inside.
func RunError[E, A any](prog mpe.Expr[A]) Either[E, A] {
	wrapped := mpe.ExprMap(prog, func(a A) Either[E, A] { return Right[E, A](a) })
	h := mpe.HandlerFunc(func(op mpe.Operation, resume func(any) any) mpe.Decision {
		if t, ok := op.(Throw[E, A]); ok {
			return mpe.Decision{Kind: mpe.Abort, Value: Left[E, A](t.Err)}
		}
		panic("handlers: unhandled error operation")
	})
	return mpe.Handle[Either[E, A]](wrapped, h)
}
