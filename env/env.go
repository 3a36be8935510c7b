// Package env provides the scope-management operations the evaluator
// performs on a value.Environment: extending it for a Letrec or a
// closure call, and shrinking it again at exit. Grounded on
// eval/environment.go's Get/Set/Define API, generalized from a
// parent-chained map (one allocation per nested scope) to in-place
// slice growth/shrink on a single shared Environment, which is what
// lets a Letrec's bindings and a caller's Set both observe the same
// Location.
package env

import "quill/value"

// Extend appends n fresh bindings (one per name in names, each
// pointing at the corresponding Location in locs) to env and returns
// the result. Both slices must be the same length.
func Extend(e value.Environment, names []string, locs []value.Location) value.Environment {
	out := e
	for i, name := range names {
		out = append(out, value.Binding{Name: name, Loc: locs[i]})
	}
	return out
}

// Shrink removes the last n bindings appended to env, restoring it to
// its state before a matching Extend. Used at Letrec exit, where the
// environment is shared by reference with the enclosing frame and
// must not leak the letrec-local names past the body's evaluation.
func Shrink(e value.Environment, n int) value.Environment {
	return e[:len(e)-n]
}

// NewFrame builds the environment for a fresh closure call: a clone of
// the closure's captured environment (so later mutation of the
// caller's scope is invisible to it) extended with the call's
// argument bindings (pass-by-shared-Location, so Set inside the callee
// is visible to the caller).
func NewFrame(captured value.Environment, params []string, argLocs []value.Location) value.Environment {
	return Extend(captured.Clone(), params, argLocs)
}
