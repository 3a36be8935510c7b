package interp

import (
	"bytes"
	"strings"
	"testing"

	"quill/builtins"
	"quill/parser"
)

// run parses and executes src against a fresh Machine with a small GC
// interval, so any program that runs more than five steps also
// exercises at least one collection cycle, and returns the rendered
// final value.
func run(t *testing.T, src string) string {
	t.Helper()
	root, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	dispatcher := builtins.New(strings.NewReader(""), &bytes.Buffer{})
	m := New(root, dispatcher, 5)
	if err := m.Execute(); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return renderResult(t, m)
}

func renderResult(t *testing.T, m *Machine) string {
	t.Helper()
	return m.Result().Render()
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{"42", "42"},
		{`"hello"`, "hello"},
		{".void", "<void>"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			// .void has arity 0 and must appear as a call callee.
			src := tt.input
			if strings.HasPrefix(src, ".") {
				src = "(" + src + ")"
			}
			if got := run(t, src); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestArithmeticIntrinsics(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{"(.+ 1 2)", "3"},
		{"(.- 10 3)", "7"},
		{"(.* 4 5)", "20"},
		{"(./ 20 4)", "5"},
		{"(.% 17 5)", "2"},
		{"(.< 1 2)", "1"},
		{"(.< 2 1)", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := run(t, tt.input); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	root, err := parser.Parse("(./ 1 0)")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	m := New(root, builtins.New(strings.NewReader(""), &bytes.Buffer{}), 5)
	if err := m.Execute(); err == nil {
		t.Fatal("expected a division-by-zero error")
	}
}

func TestStringIntrinsics(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{`(.s+ "foo" "bar")`, "foobar"},
		{`(.slen "hello")`, "5"},
		{`(.ssub "hello" 1 3)`, "el"},
		{`(.s< "abc" "abd")`, "1"},
		{`(.i->s 42)`, "42"},
		{`(.s->i "42")`, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := run(t, tt.input); got != tt.expected {
				t.Errorf("run(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIfAndWhile(t *testing.T) {
	if got := run(t, "if 1 10 20"); got != "10" {
		t.Errorf("if true branch = %q, want 10", got)
	}
	if got := run(t, "if 0 10 20"); got != "20" {
		t.Errorf("if false branch = %q, want 20", got)
	}
	src := `letrec ( (i = 0) (acc = 0) )
	  [ while (.< i 5) [ set acc (.+ acc i) set i (.+ i 1) ] (.i->s acc) ]`
	if got := run(t, src); got != "10" {
		t.Errorf("while-accumulated sum = %q, want 10", got)
	}
}

func TestLetrecSelfRecursion(t *testing.T) {
	src := `letrec ( (sum = lambda (n) if (.< n 1) 0 (.+ n (sum (.- n 1)))) ) (sum 100)`
	if got := run(t, src); got != "5050" {
		t.Errorf("recursive sum 100 = %q, want 5050", got)
	}
}

// TestReferenceSemanticsLaw is spec.md's reference-semantics law: let
// p = lambda (v) set v <new>. After letrec (x = <old>) [ (p x) x ],
// the observed value of x equals <new> — arguments are passed by
// shared Location, not copied.
func TestReferenceSemanticsLaw(t *testing.T) {
	src := `letrec ( (x = 1) (p = lambda (v) set v 99) ) [ (p x) x ]`
	if got := run(t, src); got != "99" {
		t.Errorf("reference-semantics law: got %q, want 99", got)
	}
}

// TestLexicalCaptureLaw: a closure created inside a letrec body
// retains the Location bound at capture time; re-entering the letrec
// later cannot alter what was captured, because each call frame
// clones the environment sequence afresh.
func TestLexicalCaptureLaw(t *testing.T) {
	src := `letrec ( (mk = lambda (v) lambda () v) )
	  letrec ( (a = (mk 1)) (b = (mk 2)) )
	    (.+ (a) (b))`
	if got := run(t, src); got != "3" {
		t.Errorf("lexical capture: got %q, want 3", got)
	}
}

func TestQueryAndAccess(t *testing.T) {
	src := `letrec ( (mk = lambda (v) letrec ( (field = v) ) lambda () 0) )
	  letrec ( (rec = (mk 10)) )
	    (.s+ (.i->s @ field rec) (.i->s @ ghost rec))`
	if got := run(t, src); got != "10" {
		t.Errorf("query: got %q, want 10", got)
	}

	src2 := `letrec (
	    (mk = lambda (v) letrec ( (field = v) ) lambda () 0)
	    (setter = lambda (loc val) set loc val)
	  )
	  letrec ( (rec = (mk 10)) )
	    [ (setter & field rec 77) & field rec ]`
	if got := run(t, src2); got != "77" {
		t.Errorf("access/set through aliased call argument: got %q, want 77", got)
	}
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	root, err := parser.Parse("nope")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	m := New(root, builtins.New(strings.NewReader(""), &bytes.Buffer{}), 5)
	if err := m.Execute(); err == nil {
		t.Fatal("expected an undefined-variable error")
	}
}

// TestGCInvariance runs the same garbage-heavy loop under a very tight
// collection cadence and a loose one and requires identical results,
// per spec.md's universal invariant that GC never changes the
// observable final value.
func TestGCInvariance(t *testing.T) {
	src := `letrec ( (i = 0) (acc = 0) )
	  [ while (.< i 500)
	      letrec ( (garbage = (.i->s i)) )
	        [ set acc (.+ acc i) set i (.+ i 1) ]
	    (.i->s acc) ]`

	tight := evalWithInterval(t, src, 3)
	loose := evalWithInterval(t, src, 1000000)
	if tight != loose {
		t.Fatalf("GC cadence changed the result: tight=%q loose=%q", tight, loose)
	}
	if tight != "124750" {
		t.Fatalf("got %q, want 124750", tight)
	}
}

func evalWithInterval(t *testing.T, src string, interval int) string {
	t.Helper()
	root, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	m := New(root, builtins.New(strings.NewReader(""), &bytes.Buffer{}), interval)
	if err := m.Execute(); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return renderResult(t, m)
}

// TestGCBoundsHeap checks that a tight GC cadence keeps the heap from
// growing proportionally to the number of allocations once garbage
// becomes unreachable.
func TestGCBoundsHeap(t *testing.T) {
	src := `letrec ( (i = 0) )
	  [ while (.< i 2000) [ (.i->s i) set i (.+ i 1) ] i ]`
	root, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	m := New(root, builtins.New(strings.NewReader(""), &bytes.Buffer{}), 50)
	if err := m.Execute(); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if m.HeapLen() > 200 {
		t.Errorf("heap grew unbounded: %d live cells after execute", m.HeapLen())
	}
}
