// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package prompt

import (
	"testing"

	"code.hybscloud.com/mprompt/diag"
	"code.hybscloud.com/mprompt/gstack"
)

func testConfig() *gstack.Config {
	return gstack.DefaultConfig().With(
		gstack.WithStackMaxSize(256<<10),
		gstack.WithStackGapSize(4<<10),
		gstack.WithLogger(diag.Noop()),
	)
}

func TestEnterReturnsFinalAnswer(t *testing.T) {
	p, err := New(testConfig(), 0, func(p *Prompt) Answer {
		return 42
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Discard(false)

	_, final, yielded := p.Enter()
	if yielded {
		t.Fatalf("expected no yield, got one")
	}
	if final != 42 {
		t.Fatalf("final = %v, want 42", final)
	}
	if p.State() != StateDead {
		t.Fatalf("state = %v, want dead", p.State())
	}
}

func TestYieldAndResumeOnce(t *testing.T) {
	p, err := New(testConfig(), 0, func(p *Prompt) Answer {
		v := p.Yield("ask")
		return v.(int) + 1
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Discard(false)

	op, _, yielded := p.Enter()
	if !yielded || op != "ask" {
		t.Fatalf("op=%v yielded=%v, want ask/true", op, yielded)
	}
	if p.State() != StateSuspended {
		t.Fatalf("state = %v, want suspended", p.State())
	}

	_, final, yielded := p.Resume(41)
	if yielded {
		t.Fatalf("expected completion, got another yield")
	}
	if final != 42 {
		t.Fatalf("final = %v, want 42", final)
	}
}

func TestResumeTwicePanics(t *testing.T) {
	p, err := New(testConfig(), 0, func(p *Prompt) Answer {
		p.Yield("ask")
		return nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Discard(false)

	p.Enter()
	p.Resume(1)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic resuming a dead prompt")
		}
	}()
	p.Resume(2)
}

func TestResumeDropUnwinds(t *testing.T) {
	unwound := false
	p, err := New(testConfig(), 0, func(p *Prompt) (ans Answer) {
		defer func() {
			if r := recover(); r != nil {
				unwound = true
				ans = "recovered"
			}
		}()
		v := p.Yield("ask")
		if ResumeShouldUnwind(v) {
			panic("discarded")
		}
		return "resumed normally"
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Discard(false)

	p.Enter()
	_, final, yielded := p.ResumeDrop()
	if yielded {
		t.Fatalf("expected completion after drop")
	}
	if !unwound {
		t.Fatalf("expected body to observe the drop signal and unwind")
	}
	if final != "recovered" {
		t.Fatalf("final = %v, want recovered", final)
	}
}

func TestResumeMultiReplaysTrail(t *testing.T) {
	p, err := New(testConfig(), 0, func(p *Prompt) Answer {
		a := p.Yield("first").(int)
		b := p.Yield("second").(int)
		return a + b
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Discard(false)

	op, _, yielded := p.Enter()
	if !yielded || op != "first" {
		t.Fatalf("op=%v yielded=%v", op, yielded)
	}

	op, _, yielded = p.Resume(1)
	if !yielded || op != "second" {
		t.Fatalf("op=%v yielded=%v, want second/true", op, yielded)
	}
	defer p.Discard(false)

	// Resume the "second" suspension two independent ways, each from a
	// prompt that correctly replayed "first" -> 1.
	np1, _, final1, yielded1, err := p.ResumeMulti(10)
	if err != nil {
		t.Fatalf("ResumeMulti: %v", err)
	}
	defer np1.Discard(false)
	if yielded1 || final1 != 11 {
		t.Fatalf("branch 1: final=%v yielded=%v, want 11/false", final1, yielded1)
	}

	np2, _, final2, yielded2, err := p.ResumeMulti(20)
	if err != nil {
		t.Fatalf("ResumeMulti: %v", err)
	}
	defer np2.Discard(false)
	if yielded2 || final2 != 21 {
		t.Fatalf("branch 2: final=%v yielded=%v, want 21/false", final2, yielded2)
	}
}

func TestExtraRoundTrips(t *testing.T) {
	p, err := New(testConfig(), 16, func(p *Prompt) Answer {
		copy(p.Extra(), []byte("hello record!!!!"))
		p.Yield(nil)
		return string(p.Extra())
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Discard(false)

	p.Enter()
	_, final, _ := p.Resume(nil)
	if final != "hello record!!!!" {
		t.Fatalf("final = %q", final)
	}
}
