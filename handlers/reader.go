// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handlers

import "code.hybscloud.com/mprompt/mpe"

// Ask reads a read-only environment value of type E.
type Ask[E any] struct{ mpe.Phantom[E] }

// PerformAsk performs Ask[E].
func PerformAsk[E any]() mpe.Expr[E] { return mpe.ExprPerform[Ask[E], E](Ask[E]{}) }

// RunReader runs prog with env available via Ask.
func RunReader[E, A any](env E, prog mpe.Expr[A]) A {
	h := mpe.HandlerFunc(func(op mpe.Operation, resume func(any) any) mpe.Decision {
		if _, ok := op.(Ask[E]); ok {
			return mpe.Decision{Kind: mpe.TailNoop, Value: env}
		}
		panic("handlers: unhandled reader operation")
	})
	return mpe.Handle[A](prog, h)
}
