// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handlers

import (
	"code.hybscloud.com/mprompt/gstack"
	"code.hybscloud.com/mprompt/prompt"
)

// NQueens solves the n-queens problem by backtracking search written as
// ordinary recursive-looking Go code: Amb chooses each row's column and
// AmbFail prunes a conflicting placement. This is grounded directly on
// original_source/test/src/nqueens.c, which performs exactly this
// amb-per-row, fail-on-conflict search over the C library's prompts —
// the point being that the search logic below never mentions prompts,
// continuations, or replay at all; RunAmb supplies every bit of that.
// It returns one board (column chosen per row) per valid solution.
func NQueens(n int) [][]int {
	cfg := gstack.DefaultConfig()
	return RunAmb(cfg, 0, func(p *prompt.Prompt) []int {
		cols := make([]int, 0, n)
		for row := 0; row < n; row++ {
			col := Amb(p, n)
			if !queensSafe(cols, col) {
				AmbFail(p)
			}
			cols = append(cols, col)
		}
		return append([]int(nil), cols...)
	})
}

func queensSafe(placed []int, col int) bool {
	row := len(placed)
	for r, c := range placed {
		if c == col || absInt(c-col) == row-r {
			return false
		}
	}
	return true
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
