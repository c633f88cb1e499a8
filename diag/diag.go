// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package diag supplies the "optional callbacks for info output and
// fatal-error reporting" the design's configuration section calls for. The
// teacher library (code.hybscloud.com/kont) never logs; this glue is built
// instead on github.com/joeycumines/logiface fronting
// github.com/joeycumines/stumpy, both drawn from the retrieval pack, in the
// pack's own idiom: a concrete *logiface.Logger[*stumpy.Event] wrapped
// behind a narrow interface so gstack/prompt/mph never import logiface
// types directly.
package diag

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Field is a single structured log field, keyed for AddField.
type Field struct {
	Key   string
	Value any
}

// F is a convenience constructor for a [Field].
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Sink receives diagnostics. Implementations must be safe for concurrent use
// — gstack calls it from any goroutine that happens to hit a reservation
// failure or a stack overflow.
type Sink interface {
	// Info logs a non-fatal diagnostic (e.g. a gpool exhausted, a cache
	// drained).
	Info(msg string, fields ...Field)
	// Fatal logs a failure of the current request (reservation failure,
	// stack overflow, guard-gap fault). It does not abort the process:
	// gstack logs through it and then returns an error to its caller.
	Fatal(msg string, fields ...Field)
}

// logifaceSink adapts a *logiface.Logger[*stumpy.Event] to Sink.
type logifaceSink struct {
	l *logiface.Logger[*stumpy.Event]
}

func (s *logifaceSink) Info(msg string, fields ...Field) {
	b := s.l.Info()
	for _, f := range fields {
		b = b.Any(f.Key, f.Value)
	}
	b.Log(msg)
}

func (s *logifaceSink) Fatal(msg string, fields ...Field) {
	b := s.l.Err()
	for _, f := range fields {
		b = b.Any(f.Key, f.Value)
	}
	b.Log(msg)
}

// New wraps a stumpy-backed logiface logger writing JSON lines to w.
func New(w io.Writer) Sink {
	return &logifaceSink{l: stumpy.L.New(stumpy.L.WithStumpy(stumpy.WithWriter(w)))}
}

// noopSink discards everything; used only where a caller explicitly opts out.
type noopSink struct{}

func (noopSink) Info(string, ...Field)  {}
func (noopSink) Fatal(string, ...Field) {}

// Noop returns a Sink that discards all diagnostics.
func Noop() Sink { return noopSink{} }

// Default returns the process-wide default Sink: stumpy JSON lines on
// stderr, matching the teacher pack's own stumpy.L.New() example usage.
func Default() Sink { return New(os.Stderr) }
