// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gstack

import "errors"

// Kind classifies a gstack failure per the error handling design.
type Kind int

const (
	// OutOfMemory means the OS refused a reservation or commit.
	OutOfMemory Kind = iota
	// StackOverflow means a write landed in a guard gap.
	StackOverflow
	// InvalidState means an API was misused or the OS rejected a release
	// (e.g. a stack_max_size too small for its guard gaps, or extra bytes
	// larger than the usable region). A second Free of the same stack is
	// ignored, not reported.
	InvalidState
)

func (k Kind) String() string {
	switch k {
	case OutOfMemory:
		return "out of memory"
	case StackOverflow:
		return "stack overflow"
	case InvalidState:
		return "invalid state"
	default:
		return "unknown"
	}
}

// Error wraps a [Kind] with a descriptive message. Reservation and commit
// failures are returned as *Error rather than panicking: the caller may
// retry with a smaller request or propagate the failure, per the spec's
// "OutOfMemory surfaced as null with diagnostic" rule translated to Go's
// error idiom.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return "gstack: " + e.Kind.String() + ": " + e.Msg }

// Is supports errors.Is(err, gstack.ErrOutOfMemory) and friends.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	// ErrOutOfMemory is a sentinel matched via errors.Is.
	ErrOutOfMemory = &Error{Kind: OutOfMemory, Msg: "reservation or commit failed"}
	// ErrInvalidState is a sentinel matched via errors.Is.
	ErrInvalidState = &Error{Kind: InvalidState, Msg: "invalid gstack state"}
)

func newError(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// errorsIs wraps errors.Is for use inside this package. It is unexported,
// so other packages check a gstack error kind with errors.Is directly.
func errorsIs(err, target error) bool { return errors.Is(err, target) }
