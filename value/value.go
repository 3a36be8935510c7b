// Package value defines Quill's runtime value model: the tagged
// Value union, heap locations, and the ordered, reference-sharing
// Environment that closures capture. Grounded on the teacher's
// types/base.go (Value interface), types/typecode.go (TypeCode), and
// eval/environment.go (variable binding), generalized from MOO's
// map-scoped, non-aliasing environment into the ordered,
// location-aliasing environment the reference-semantics law requires.
package value

import (
	"fmt"

	"quill/ast"
	"quill/diag"
)

// Location is a non-negative index into the heap identifying a cell.
// It is the only handle to a Value that is safe to hold across a
// potential collection point; the heap package guarantees Locations
// are rewritten on compaction, never left dangling.
type Location int

// TypeCode is the dialect-specific integer label returned by the
// ".type" intrinsic.
type TypeCode int

const (
	TypeVoid    TypeCode = 0
	TypeInteger TypeCode = 1
	TypeString  TypeCode = 2
	TypeClosure TypeCode = 3
)

// Value is the tagged union every heap cell holds.
type Value interface {
	Type() TypeCode
	Render() string
}

// Render is the external value-to-string function: total over every
// Value variant, used by the CLI boundary and by conformance tests to
// compare an evaluation's result against an expected rendering.
func Render(v Value) string {
	return v.Render()
}

// Void is the unit value.
type Void struct{}

func (Void) Type() TypeCode { return TypeVoid }
func (Void) Render() string { return "<void>" }

// Integer is a machine-width signed integer.
type Integer struct {
	Val int64
}

func (Integer) Type() TypeCode   { return TypeInteger }
func (i Integer) Render() string { return fmt.Sprintf("%d", i.Val) }

// String is an immutable byte sequence.
type String struct {
	Val string
}

func (String) Type() TypeCode   { return TypeString }
func (s String) Render() string { return s.Val }

// Binding is one (name, Location) pair in an Environment.
type Binding struct {
	Name string
	Loc  Location
}

// Environment is an ordered sequence of bindings. Lookup scans from
// the end (most recently appended) backward, so later bindings shadow
// earlier ones with the same name. Environments are value-copied into
// closures at capture time and aliased by reference between a frame
// and the non-frame layers evaluating within it.
type Environment []Binding

// Lookup returns the Location bound to name, scanning rightmost-first.
func (e Environment) Lookup(name string) (Location, bool) {
	for i := len(e) - 1; i >= 0; i-- {
		if e[i].Name == name {
			return e[i].Loc, true
		}
	}
	return 0, false
}

// Clone returns an independent copy of the binding sequence. The
// Locations themselves are shared with the original; only the slice
// backing array is fresh, which is what gives closures their
// capture-time snapshot semantics (mutations to the *list* after
// capture, i.e. further Letrec/Call extensions, are invisible to the
// closure; mutations *through* a shared Location remain visible).
func (e Environment) Clone() Environment {
	out := make(Environment, len(e))
	copy(out, e)
	return out
}

// Closure pairs a captured environment with the Lambda AST node it
// closes over.
type Closure struct {
	Env Environment
	Fun *ast.Lambda
}

func (Closure) Type() TypeCode { return TypeClosure }
func (c Closure) Render() string {
	return fmt.Sprintf("<closure evaluated at %s>", c.Fun.Position())
}

// ExpectInteger type-checks v as an Integer, raising a runtime
// diagnostic located at loc otherwise.
func ExpectInteger(v Value, loc diag.SourceLocation, context string) (Integer, error) {
	i, ok := v.(Integer)
	if !ok {
		return Integer{}, diag.RuntimeError(loc, "%s requires an Integer", context)
	}
	return i, nil
}

// ExpectClosure type-checks v as a Closure, raising a runtime
// diagnostic located at loc otherwise.
func ExpectClosure(v Value, loc diag.SourceLocation, context string) (Closure, error) {
	c, ok := v.(Closure)
	if !ok {
		return Closure{}, diag.RuntimeError(loc, "%s requires a Closure", context)
	}
	return c, nil
}
