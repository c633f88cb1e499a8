// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handlers

import (
	"code.hybscloud.com/mprompt/gstack"
	"code.hybscloud.com/mprompt/mph"
	"code.hybscloud.com/mprompt/prompt"
)

// Choice is the effect an Amb-handled body performs to pick one of N
// alternatives 0..N-1, backtracking over every alternative in turn —
// grounded on original_source/test/src/amb.c's amb(n).
type Choice struct {
	N int
	mph.Phantom[int]
}

// Fail is the effect an Amb-handled body performs to abandon the current
// branch with no answer, grounded on amb.c's fail().
type Fail struct{ mph.Phantom[struct{}] }

// RunAmb runs body under an Amb handler. body is ordinary, non-CPS Go code
// (it may loop, recurse, hold local variables) — each Choice suspends it
// across a prompt, and the handler explores every alternative
// independently via prompt.Prompt.ResumeMulti, which is what makes this
// genuinely multi-shot rather than a single backtracking call stack.
// Choices may nest (a body performing more than one Amb call): drive
// recurses into whatever the replayed continuation yields next, so every
// combination of alternatives across every Choice is explored. Branches
// that perform Fail contribute nothing to the result slice.
//
// Ownership: drive never resumes or discards the prompt pr it is handed —
// that prompt belongs to whoever created it (mph.Handle for the top-level
// call, or the enclosing drive iteration for a forked one), and is the
// one that drops and discards it once drive returns. Each np a Choice
// branch forks via ResumeMulti is this level's own responsibility:
// once it is fully explored (recursed into, if it yielded again) its
// continuation is dropped and its gstack reservation freed before moving
// on to the next alternative, so a search tree the size of NQueens(8)
// never accumulates a parked goroutine and a gstack per node.
// extraBytes sizes the handled prompt's Extra record, for bodies (like
// the Extra-backed S3 scenario in package handlers's tests) that keep
// state there instead of in a captured Go variable, so it forks
// independently per branch the way ResumeMulti's Save/Restore does for
// every other byte of Extra; pass 0 when the body needs no such storage.
func RunAmb[A any](cfg *gstack.Config, extraBytes int, body func(p *prompt.Prompt) A) []A {
	var results []A
	var drive func(pr *prompt.Prompt, op mph.Operation)
	drive = func(pr *prompt.Prompt, op mph.Operation) {
		switch o := op.(type) {
		case Choice:
			for i := 0; i < o.N; i++ {
				np, nextOp, final, yielded, err := pr.ResumeMulti(i)
				if err != nil {
					panic(err)
				}
				if yielded {
					drive(np, nextOp)
					np.ResumeDrop()
				} else if v, ok := final.(A); ok {
					results = append(results, v)
				}
				np.Discard(false)
			}
		case Fail:
			// pr's continuation is simply never resumed further; dropping
			// and discarding it is its owner's job, same as every other
			// leaf drive reaches.
		default:
			panic("handlers: unhandled amb operation")
		}
	}
	h := mph.HandlerFunc(func(p *prompt.Prompt, op mph.Operation) mph.Decision {
		drive(p, op)
		return mph.Decision{Kind: mph.Multi}
	})
	mph.Handle[A](cfg, extraBytes, body, h)
	return results
}

// Amb performs Choice{N: n} and returns the chosen alternative.
func Amb(p *prompt.Prompt, n int) int {
	return mph.Perform[Choice, int](p, Choice{N: n})
}

// AmbFail performs Fail, unwinding the current branch.
func AmbFail(p *prompt.Prompt) {
	mph.Perform[Fail, struct{}](p, Fail{})
}
