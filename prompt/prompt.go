// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package prompt is the control primitive §4.2/§4.3 describe: a way to
// suspend an ordinary, non-continuation-passing-style Go call stack at an
// arbitrary depth and resume it later with a value.
//
// The C original saves and restores CPU register contexts to switch
// between a caller's stack and a prompt's own gstack. Go gives no access to
// a goroutine's register file or stack pointer, so this package substitutes
// the idiomatic equivalent: a prompt's body runs on its own goroutine, and
// control transfers by channel rendezvous instead of a longjmp. A parked
// goroutine receiving on a channel is, operationally, exactly what a
// switched-out gstack is in the original — live stack frames sitting idle
// until something sends them a value.
//
// A consequence of that substitution is that a single parked goroutine can
// only be resumed once: once it receives a value and proceeds, its frames
// mutate forward and there is no way to rewind them. [Prompt.Resume] is
// therefore a one-shot operation, matching ONCE/SCOPED_ONCE handler kinds
// directly. Genuine multi-shot resumption — answering the same suspension
// more than once, independently — is provided by [Prompt.ResumeMulti],
// which replays the body from scratch on a fresh gstack, auto-answering
// every prior yield from a recorded trail before resuming live at the new
// frontier. See SPEC_FULL.md §0 and DESIGN.md for the reasoning.
package prompt

import (
	"encoding/binary"
	"sync/atomic"

	"code.hybscloud.com/mprompt/gstack"
)

// State is a prompt's lifecycle stage, mirroring §4.3's prompt states.
type State int32

const (
	StateFresh State = iota
	StateActive
	StateSuspended
	StateDead
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateActive:
		return "active"
	case StateSuspended:
		return "suspended"
	case StateDead:
		return "dead"
	default:
		return "invalid"
	}
}

// Operation is an effect operation value carried across a prompt boundary.
type Operation any

// Answer is a value sent back across a prompt boundary to resume it.
type Answer any

// Body is the computation run under a prompt. It receives the live *Prompt
// so it can call Yield from anywhere in its call graph.
type Body func(p *Prompt) Answer

type trailEntry struct {
	op     Operation
	answer Answer
}

type yieldMsg struct {
	op   Operation
	done bool
	val  Answer
}

// unwind carries a recovered panic value from the body goroutine back to
// whichever goroutine called Enter/Resume/ResumeMulti, so it re-panics
// there instead of being swallowed at the parked goroutine's boundary.
type unwind struct{ v any }

// dropSignal is the Answer sent by ResumeDrop. Body code written against
// the mph/mpe handler shells never observes it directly — Perform checks
// for it via ResumeShouldUnwind and panics on the body's behalf.
type dropSignal struct{}

// ResumeShouldUnwind reports whether v is the signal sent by ResumeDrop,
// meaning the suspended operation's continuation was discarded and the
// body should unwind rather than continue.
func ResumeShouldUnwind(v Answer) bool {
	_, ok := v.(dropSignal)
	return ok
}

var promptSeq atomic.Uint64

// Prompt is one suspendable, resumable computation with its own gstack.
type Prompt struct {
	id    uint64
	stack *gstack.Stack
	cfg   *gstack.Config
	body  Body

	state atomic.Int32

	toBody   chan Answer
	fromBody chan yieldMsg

	pendingOp Operation
	trail     []trailEntry
	replayIdx int
}

// New allocates a prompt's backing gstack (§4.1's alloc(extra_bytes)) ready
// to Enter. extraBytes sizes the record storage the body can read and
// write via Extra — mph.Handle passes its caller's extraBytes through, and
// package handlers keeps a per-branch counter there (see ExtraInt64).
func New(cfg *gstack.Config, extraBytes int, body Body) (*Prompt, error) {
	st, err := gstack.Alloc(cfg, extraBytes)
	if err != nil {
		return nil, err
	}
	p := &Prompt{
		id:    promptSeq.Add(1),
		stack: st,
		cfg:   cfg,
		body:  body,
	}
	p.state.Store(int32(StateFresh))
	return p, nil
}

// ID identifies a prompt for the lifetime of the process.
func (p *Prompt) ID() uint64 { return p.id }

// State reports the prompt's current lifecycle stage.
func (p *Prompt) State() State { return State(p.state.Load()) }

// Extra exposes the prompt's gstack-backed record storage.
func (p *Prompt) Extra() []byte { return p.stack.Extra() }

// ExtraInt64 reads the first 8 bytes of Extra as a little-endian int64.
// This is the convention package handlers uses for a small per-prompt
// counter that must survive ResumeMulti's fork: because ResumeMulti
// snapshots Extra via gstack.Stack.Save and replays it into the new
// prompt via Restore (see ResumeMulti below), a handler that keeps its
// state here instead of in a captured Go variable gets one independent,
// byte-for-byte copy of that state per branch, for free. Panics if
// Extra is shorter than 8 bytes.
func (p *Prompt) ExtraInt64() int64 {
	return int64(binary.LittleEndian.Uint64(p.Extra()))
}

// SetExtraInt64 writes v into the first 8 bytes of Extra, the
// counterpart to ExtraInt64.
func (p *Prompt) SetExtraInt64(v int64) {
	binary.LittleEndian.PutUint64(p.Extra(), uint64(v))
}

// Enter starts the prompt's body on a fresh goroutine — the stand-in for
// switching onto a fresh OS stack — and blocks until the body either
// yields an operation (yielded=true) or returns its final answer
// (yielded=false). If the body panics, Enter re-panics with the same
// value once the goroutine has unwound.
func (p *Prompt) Enter() (op Operation, final Answer, yielded bool) {
	if p.State() != StateFresh {
		panic("mprompt: Enter called on a non-fresh prompt")
	}
	p.state.Store(int32(StateActive))
	p.toBody = make(chan Answer)
	p.fromBody = make(chan yieldMsg)
	go p.run()
	return p.awaitFromBody()
}

func (p *Prompt) run() {
	defer func() {
		if r := recover(); r != nil {
			p.state.Store(int32(StateDead))
			p.fromBody <- yieldMsg{done: true, val: unwind{r}}
		}
	}()
	result := p.body(p)
	p.state.Store(int32(StateDead))
	p.fromBody <- yieldMsg{done: true, val: result}
}

func (p *Prompt) awaitFromBody() (Operation, Answer, bool) {
	msg := <-p.fromBody
	if msg.done {
		if u, ok := msg.val.(unwind); ok {
			panic(u.v)
		}
		return nil, msg.val, false
	}
	p.pendingOp = msg.op
	p.state.Store(int32(StateSuspended))
	return msg.op, nil, true
}

// Yield suspends the running body at op and returns the Answer it is
// resumed with. It must be called from inside the prompt's own body
// goroutine (directly, or through anything that goroutine calls).
//
// During a [Prompt.ResumeMulti] replay, Yield calls below the recorded
// trail's length return instantly from the trail instead of suspending —
// the body never notices it is being replayed.
func (p *Prompt) Yield(op Operation) Answer {
	if p.replayIdx < len(p.trail) {
		e := p.trail[p.replayIdx]
		p.replayIdx++
		return e.answer
	}
	p.fromBody <- yieldMsg{op: op}
	return <-p.toBody
}

// Resume sends v back into a suspended prompt and blocks until it yields
// again or finishes. Resume consumes the suspension: calling it twice for
// the same yield panics, the one-shot enforcement §4.3 requires of an
// ordinary (non-multi-shot) resumption.
func (p *Prompt) Resume(v Answer) (op Operation, final Answer, yielded bool) {
	if p.State() != StateSuspended {
		panic("mprompt: Resume called on a prompt that is not suspended")
	}
	p.trail = append(p.trail, trailEntry{op: p.pendingOp, answer: v})
	p.state.Store(int32(StateActive))
	p.toBody <- v
	return p.awaitFromBody()
}

// ResumeTail is Resume under another name, for call sites that dispatch a
// TAIL or TAIL_NOOP kind and want that intent documented; mechanically it
// is identical, because the prompt layer cannot tell tail resumption from
// any other one-shot resumption — the distinction only matters to the
// handler shell above it, which may choose not to suspend through a prompt
// for those kinds at all. See package mph.
func (p *Prompt) ResumeTail(v Answer) (Operation, Answer, bool) { return p.Resume(v) }

// ResumeDrop discards the current suspension's continuation: the body is
// resumed with a signal it is expected to unwind on (see
// ResumeShouldUnwind), never producing a normal answer. It backs the NEVER
// and ABORT handler kinds, where the handler has decided the continuation
// will never run.
func (p *Prompt) ResumeDrop() (op Operation, final Answer, yielded bool) {
	return p.Resume(dropSignal{})
}

// ResumeMulti answers the current suspension with v without consuming the
// parked goroutine that suspended it: it saves the gstack's extra record
// and live bytes, starts a fresh prompt from the same body, replays every
// earlier yield from the recorded trail, and resumes live at the new
// frontier with v. The original prompt is left suspended and can still be
// resumed (again via Resume, or again via ResumeMulti) independently.
//
// This only replays effects recorded through Yield, not arbitrary Go
// control flow — it is correct for bodies whose behavior between yields is
// a deterministic function of the answers they have received, which every
// handler in package handlers satisfies by construction.
func (p *Prompt) ResumeMulti(v Answer) (next *Prompt, op Operation, final Answer, yielded bool, err error) {
	if p.State() != StateSuspended {
		panic("mprompt: ResumeMulti called on a prompt that is not suspended")
	}
	snap := p.stack.Save()
	np, err := New(p.cfg, len(p.Extra()), p.body)
	if err != nil {
		return nil, nil, nil, false, err
	}
	if err := np.stack.Restore(snap); err != nil {
		return nil, nil, nil, false, err
	}
	np.trail = append(append([]trailEntry(nil), p.trail...), trailEntry{op: p.pendingOp, answer: v})
	op, final, yielded = np.Enter()
	return np, op, final, yielded, nil
}

// Discard releases a prompt that will never be resumed again, returning
// its gstack to the allocator. Safe to call on a dead or suspended prompt;
// calling it on a suspended prompt abandons the parked goroutine (it will
// block on its channel forever, so callers should prefer ResumeDrop when
// a live body needs to unwind its own defers).
func (p *Prompt) Discard(delay bool) {
	p.stack.Free(delay)
}
