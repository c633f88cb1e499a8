// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handlers

import "code.hybscloud.com/mprompt/mpe"

// Writer effect: accumulating output (logging, tracing) alongside a
// computation's result, adapted from the teacher library's writer.go onto
// package mpe's Expr/Handler shell.

// Pair holds two values, carried over unchanged from the teacher's writer.go.
type Pair[A, B any] struct {
	Fst A
	Snd B
}

// Tell is the effect operation for appending output.
type Tell[W any] struct {
	Value W
	mpe.Phantom[struct{}]
}

// PerformTell performs Tell[W].
func PerformTell[W any](w W) mpe.Expr[struct{}] {
	return mpe.ExprPerform[Tell[W], struct{}](Tell[W]{Value: w})
}

// RunWriter runs prog with output accumulated via Tell, returning its
// result alongside everything told.
func RunWriter[W, A any](prog mpe.Expr[A]) (A, []W) {
	var output []W
	h := mpe.HandlerFunc(func(op mpe.Operation, resume func(any) any) mpe.Decision {
		if t, ok := op.(Tell[W]); ok {
			output = append(output, t.Value)
			return mpe.Decision{Kind: mpe.Tail, Value: struct{}{}}
		}
		panic("handlers: unhandled writer operation")
	})
	result := mpe.Handle[A](prog, h)
	return result, output
}

// ExecWriter runs prog and returns only what it told.
func ExecWriter[W, A any](prog mpe.Expr[A]) []W {
	_, output := RunWriter[W, A](prog)
	return output
}
