// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package handlers collects the example effect handlers the design's
// testable-property scenarios exercise: state and reader (grounded on the
// teacher library's own state.go/reader.go), and Amb/NQueens/Rehandle
// (grounded on original_source/test/src/amb.c, nqueens.c and rehandle.c).
package handlers

import "code.hybscloud.com/mprompt/mpe"

// Get reads the current state of type S.
type Get[S any] struct{ mpe.Phantom[S] }

// Put replaces the current state.
type Put[S any] struct {
	Value S
	mpe.Phantom[struct{}]
}

// Modify applies F to the current state and returns the new value.
type Modify[S any] struct {
	F func(S) S
	mpe.Phantom[S]
}

// PerformGet performs Get[S].
func PerformGet[S any]() mpe.Expr[S] { return mpe.ExprPerform[Get[S], S](Get[S]{}) }

// PerformPut performs Put[S].
func PerformPut[S any](v S) mpe.Expr[struct{}] {
	return mpe.ExprPerform[Put[S], struct{}](Put[S]{Value: v})
}

// PerformModify performs Modify[S].
func PerformModify[S any](f func(S) S) mpe.Expr[S] {
	return mpe.ExprPerform[Modify[S], S](Modify[S]{F: f})
}

// RunState runs prog with state threaded through Get/Put/Modify, returning
// its result alongside the final state.
func RunState[S, A any](initial S, prog mpe.Expr[A]) (A, S) {
	state := initial
	h := mpe.HandlerFunc(func(op mpe.Operation, resume func(any) any) mpe.Decision {
		switch o := op.(type) {
		case Get[S]:
			return mpe.Decision{Kind: mpe.TailNoop, Value: state}
		case Put[S]:
			state = o.Value
			return mpe.Decision{Kind: mpe.Tail, Value: struct{}{}}
		case Modify[S]:
			state = o.F(state)
			return mpe.Decision{Kind: mpe.Tail, Value: state}
		default:
			panic("handlers: unhandled state operation")
		}
	})
	result := mpe.Handle[A](prog, h)
	return result, state
}

// EvalState runs prog and returns only its result.
func EvalState[S, A any](initial S, prog mpe.Expr[A]) A {
	a, _ := RunState(initial, prog)
	return a
}

// ExecState runs prog and returns only the final state.
func ExecState[S, A any](initial S, prog mpe.Expr[A]) S {
	_, s := RunState(initial, prog)
	return s
}
