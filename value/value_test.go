package value

import (
	"testing"

	"quill/ast"
	"quill/diag"
)

func TestRenderPerVariant(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"void", Void{}, "<void>"},
		{"integer", Integer{Val: 42}, "42"},
		{"negative integer", Integer{Val: -7}, "-7"},
		{"string", String{Val: "hello"}, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.v); got != tt.want {
				t.Errorf("Render(%v) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestClosureRenderIncludesItsSourceLocation(t *testing.T) {
	lam := &ast.Lambda{Loc: diag.SourceLocation{Line: 3, Column: 5}}
	c := Closure{Fun: lam}
	got := c.Render()
	want := "<closure evaluated at (SourceLocation 3 5)>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEnvironmentLookupIsRightmostFirst(t *testing.T) {
	env := Environment{
		{Name: "x", Loc: 1},
		{Name: "x", Loc: 2},
	}
	loc, ok := env.Lookup("x")
	if !ok || loc != 2 {
		t.Fatalf("Lookup(x) = (%d, %v), want (2, true)", loc, ok)
	}
	if _, ok := env.Lookup("y"); ok {
		t.Fatal("Lookup(y) unexpectedly found")
	}
}

func TestEnvironmentCloneIsIndependentOfFurtherAppends(t *testing.T) {
	base := Environment{{Name: "x", Loc: 1}}
	clone := base.Clone()
	clone = append(clone, Binding{Name: "y", Loc: 2})

	if _, ok := base.Lookup("y"); ok {
		t.Fatal("appending to a clone leaked into the original")
	}
	if loc, ok := clone.Lookup("x"); !ok || loc != 1 {
		t.Fatalf("clone lost its original binding: got (%d, %v)", loc, ok)
	}
}

func TestEnvironmentCloneSharesLocationsNotIdentity(t *testing.T) {
	base := Environment{{Name: "x", Loc: 1}}
	clone := base.Clone()
	// Mutating a Location's stored value is observed through both the
	// original and the clone, because Locations are shared even though
	// the backing binding slices are independent.
	locBase, _ := base.Lookup("x")
	locClone, _ := clone.Lookup("x")
	if locBase != locClone {
		t.Fatalf("clone rebound x to a different Location: %d vs %d", locBase, locClone)
	}
}

func TestExpectIntegerRejectsNonInteger(t *testing.T) {
	if _, err := ExpectInteger(String{Val: "nope"}, diag.None, "test"); err == nil {
		t.Fatal("expected an error for a non-Integer value")
	}
	i, err := ExpectInteger(Integer{Val: 9}, diag.None, "test")
	if err != nil || i.Val != 9 {
		t.Fatalf("ExpectInteger(Integer(9)) = (%v, %v)", i, err)
	}
}

func TestExpectClosureRejectsNonClosure(t *testing.T) {
	if _, err := ExpectClosure(Integer{Val: 1}, diag.None, "test"); err == nil {
		t.Fatal("expected an error for a non-Closure value")
	}
	lam := &ast.Lambda{}
	c, err := ExpectClosure(Closure{Fun: lam}, diag.None, "test")
	if err != nil || c.Fun != lam {
		t.Fatalf("ExpectClosure(Closure) = (%v, %v)", c, err)
	}
}

func TestTypeCodesAreDistinct(t *testing.T) {
	codes := map[TypeCode]bool{
		Void{}.Type():            true,
		Integer{}.Type():         true,
		String{}.Type():          true,
		Closure{}.Type():         true,
	}
	if len(codes) != 4 {
		t.Fatalf("expected 4 distinct type codes, got %d", len(codes))
	}
}
