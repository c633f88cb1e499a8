// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mph

import (
	"testing"

	"code.hybscloud.com/mprompt/diag"
	"code.hybscloud.com/mprompt/gstack"
	"code.hybscloud.com/mprompt/prompt"
)

func testConfig() *gstack.Config {
	return gstack.DefaultConfig().With(
		gstack.WithStackMaxSize(256<<10),
		gstack.WithStackGapSize(4<<10),
		gstack.WithLogger(diag.Noop()),
	)
}

type get struct{ Phantom[int] }
type put struct {
	v int
	Phantom[struct{}]
}

func TestTailResumeStateHandler(t *testing.T) {
	state := 0
	h := HandlerFunc(func(p *prompt.Prompt, op Operation) Decision {
		switch o := op.(type) {
		case get:
			return Decision{Kind: TailNoop, Value: state}
		case put:
			state = o.v
			return Decision{Kind: Tail, Value: struct{}{}}
		default:
			panic("unhandled op")
		}
	})

	result := Handle(testConfig(), 0, func(p *prompt.Prompt) int {
		Perform[put, struct{}](p, put{v: 7})
		return Perform[get, int](p, get{})
	}, h)

	if result != 7 {
		t.Fatalf("result = %d, want 7", result)
	}
}

func TestAbortShortCircuits(t *testing.T) {
	h := HandlerFunc(func(p *prompt.Prompt, op Operation) Decision {
		return Decision{Kind: Abort, Value: -1}
	})

	result := Handle(testConfig(), 0, func(p *prompt.Prompt) int {
		v := Perform[get, int](p, get{})
		return v + 1000 // never reached
	}, h)

	if result != -1 {
		t.Fatalf("result = %d, want -1", result)
	}
}

func TestNeverUnwindsBodyDefers(t *testing.T) {
	cleaned := false
	h := HandlerFunc(func(p *prompt.Prompt, op Operation) Decision {
		return Decision{Kind: Never}
	})

	result := Handle(testConfig(), 0, func(p *prompt.Prompt) int {
		defer func() { cleaned = true }()
		return Perform[get, int](p, get{})
	}, h)

	if !cleaned {
		t.Fatalf("expected body's defer to run on unwind")
	}
	if result != 0 {
		t.Fatalf("result = %d, want 0 (zero value)", result)
	}
}

type choose struct {
	options []int
	Phantom[int]
}

func TestMultiExploresEveryChoice(t *testing.T) {
	h := HandlerFunc(func(p *prompt.Prompt, op Operation) Decision {
		c, ok := op.(choose)
		if !ok {
			panic("unhandled op")
		}
		var total int
		for _, opt := range c.options {
			_, _, final, yielded, err := p.ResumeMulti(opt)
			if err != nil {
				panic(err)
			}
			if !yielded {
				total += final.(int)
			}
		}
		return Decision{Kind: Multi, Value: total}
	})

	result := Handle(testConfig(), 0, func(p *prompt.Prompt) int {
		v := Perform[choose, int](p, choose{options: []int{1, 2, 3}})
		return v * 10
	}, h)

	if result != 60 { // (1+2+3)*10
		t.Fatalf("result = %d, want 60", result)
	}
}
