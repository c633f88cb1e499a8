// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handlers

import (
	"sort"
	"testing"

	"code.hybscloud.com/mprompt/gstack"
	"code.hybscloud.com/mprompt/prompt"
)

func TestRunAmbExploresEveryChoice(t *testing.T) {
	cfg := gstack.DefaultConfig()
	results := RunAmb(cfg, 0, func(p *prompt.Prompt) int {
		return Amb(p, 3)
	})
	sort.Ints(results)
	if len(results) != 3 || results[0] != 0 || results[1] != 1 || results[2] != 2 {
		t.Fatalf("got %v, want [0 1 2]", results)
	}
}

func TestRunAmbFailPrunesBranch(t *testing.T) {
	cfg := gstack.DefaultConfig()
	results := RunAmb(cfg, 0, func(p *prompt.Prompt) int {
		n := Amb(p, 4)
		if n%2 != 0 {
			AmbFail(p)
		}
		return n
	})
	sort.Ints(results)
	if len(results) != 2 || results[0] != 0 || results[1] != 2 {
		t.Fatalf("got %v, want [0 2]", results)
	}
}

func TestRunAmbCombinesTwoChoices(t *testing.T) {
	cfg := gstack.DefaultConfig()
	results := RunAmb(cfg, 0, func(p *prompt.Prompt) [2]int {
		a := Amb(p, 2)
		b := Amb(p, 2)
		if a == b {
			AmbFail(p)
		}
		return [2]int{a, b}
	})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %v", len(results), results)
	}
	for _, r := range results {
		if r[0] == r[1] {
			t.Fatalf("unexpected equal pair %v survived AmbFail", r)
		}
	}
}
