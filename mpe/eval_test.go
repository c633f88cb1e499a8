// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpe

import "testing"

type askOp struct{ Phantom[int] }

func TestHandleResumesOnce(t *testing.T) {
	prog := ExprBind(ExprPerform[askOp, int](askOp{}), func(a int) Expr[int] {
		return ExprReturn(a + 1)
	})

	h := HandlerFunc(func(op Operation, resume func(any) any) Decision {
		if _, ok := op.(askOp); !ok {
			t.Fatalf("unexpected op %#v", op)
		}
		return Decision{Kind: Tail, Value: 41}
	})

	if got := Handle[int](prog, h); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestAbortShortCircuits(t *testing.T) {
	prog := ExprBind(ExprPerform[askOp, int](askOp{}), func(a int) Expr[int] {
		return ExprReturn(a * 1000) // never reached
	})

	h := HandlerFunc(func(op Operation, resume func(any) any) Decision {
		return Decision{Kind: Abort, Value: -7}
	})

	if got := Handle[int](prog, h); got != -7 {
		t.Fatalf("got %d, want -7", got)
	}
}

func TestMultiCallsResumeRepeatedly(t *testing.T) {
	prog := ExprBind(ExprPerform[askOp, int](askOp{}), func(a int) Expr[int] {
		return ExprReturn(a * 10)
	})

	h := HandlerFunc(func(op Operation, resume func(any) any) Decision {
		total := 0
		for _, v := range []int{1, 2, 3} {
			total += resume(v).(int)
		}
		return Decision{Kind: Multi, Value: total}
	})

	if got := Handle[int](prog, h); got != 60 {
		t.Fatalf("got %d, want 60", got)
	}
}

func TestRunPureRejectsEffects(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	RunPure[int](ExprPerform[askOp, int](askOp{}))
}

func TestRunPureEvaluatesBindMapThen(t *testing.T) {
	prog := ExprThen(
		ExprMap(ExprReturn(1), func(a int) int { return a + 1 }),
		ExprBind(ExprReturn(10), func(a int) Expr[int] { return ExprReturn(a * 2) }),
	)
	if got := RunPure(prog); got != 20 {
		t.Fatalf("got %d, want 20", got)
	}
}
