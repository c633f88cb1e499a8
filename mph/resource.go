// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mph

// Bracket and OnError are adapted from the teacher library's resource.go:
// resource-safety combinators built directly on Finally (the defer-based
// substitute for the spec's FINALLY shadow-stack frame) rather than on the
// teacher's Either-returning Cont pipeline, since this shell reports
// failure via ordinary Go panics, not a parallel error monad.

// Bracket acquires a resource, runs use with it, and guarantees release
// runs exactly once before Bracket returns or panics — release runs even
// if use panics, matching the teacher's Bracket.
func Bracket[R, A any](acquire func() R, release func(R), use func(R) A) A {
	var result A
	resource := acquire()
	Finally(resource, release, func() {
		result = use(resource)
	})
	return result
}

// OnError runs body, invoking cleanup with the recovered panic value (and
// then re-panicking with it unchanged) if body panics. If body returns
// normally, cleanup never runs.
func OnError[A any](body func() A, cleanup func(recovered any)) (result A) {
	defer func() {
		if r := recover(); r != nil {
			cleanup(r)
			panic(r)
		}
	}()
	return body()
}
