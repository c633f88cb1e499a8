// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package handlers

import (
	"code.hybscloud.com/mprompt/gstack"
	"code.hybscloud.com/mprompt/mph"
	"code.hybscloud.com/mprompt/prompt"
)

// Ping is a trivial effect whose answer is tagged with whichever handler
// instance answered it, used to demonstrate rehandling.
type Ping struct{ mph.Phantom[string] }

// PerformPing performs Ping.
func PerformPing(p *prompt.Prompt) string {
	return mph.Perform[Ping, string](p, Ping{})
}

// RunRehandle runs body under a router that answers the first switchAfter
// Ping operations with one Handler instance and every one after that with
// a second, distinct instance — demonstrating that a suspended
// continuation is not bound to the Handler that first saw it and resumes
// correctly under a later, different one. Grounded on
// original_source/test/src/rehandle.c, which resumes a captured
// continuation from inside a freshly re-entered handler rather than the
// one that originally suspended it.
func RunRehandle(cfg *gstack.Config, body func(p *prompt.Prompt) []string, switchAfter int) []string {
	count := 0
	first := mph.HandlerFunc(func(p *prompt.Prompt, op mph.Operation) mph.Decision {
		return mph.Decision{Kind: mph.Tail, Value: "first"}
	})
	second := mph.HandlerFunc(func(p *prompt.Prompt, op mph.Operation) mph.Decision {
		return mph.Decision{Kind: mph.Tail, Value: "second"}
	})
	route := func(op mph.Operation) mph.Handler {
		count++
		if count <= switchAfter {
			return first
		}
		return second
	}
	return mph.HandleRouted[[]string](cfg, 0, body, route)
}
