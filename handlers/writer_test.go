// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handlers

import (
	"reflect"
	"testing"

	"code.hybscloud.com/mprompt/mpe"
)

func TestRunWriterAccumulatesOutputInOrder(t *testing.T) {
	prog := mpe.ExprBind(PerformTell("a"), func(struct{}) mpe.Expr[int] {
		return mpe.ExprBind(PerformTell("b"), func(struct{}) mpe.Expr[int] {
			return mpe.ExprReturn(42)
		})
	})

	result, output := RunWriter[string, int](prog)
	if result != 42 {
		t.Fatalf("got result %d, want 42", result)
	}
	if !reflect.DeepEqual(output, []string{"a", "b"}) {
		t.Fatalf("got output %v, want [a b]", output)
	}
}

func TestExecWriterReturnsOnlyOutput(t *testing.T) {
	prog := mpe.ExprThen(PerformTell(1), mpe.ExprReturn("done"))
	if got := ExecWriter[int, string](prog); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("got %v, want [1]", got)
	}
}
