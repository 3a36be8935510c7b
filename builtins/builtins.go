// Package builtins implements the fixed table of intrinsic operations
// a Call may invoke when its callee is an *ast.Intrinsic. Grounded on
// the teacher's builtins/registry.go name-to-function table with
// per-entry arity and operand-type guards, generalized from MOO's
// object/verb builtins to Quill's closed arithmetic/string/reflection
// set and narrowed from a Register(name, fn) API (open for plugins) to
// a fixed literal table, since §4.5 specifies the intrinsic set is
// closed and never extended at runtime.
package builtins

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"quill/diag"
	"quill/value"
)

// Func is the shape of one intrinsic's implementation: it receives its
// already-evaluated, already-arity-checked arguments and the call
// site's location for error reporting.
type Func func(args []value.Value, loc diag.SourceLocation) (value.Value, error)

// entry pairs a Func with the arity the dispatcher enforces before
// calling it, so individual Funcs never re-check len(args).
type entry struct {
	arity int
	fn    Func
}

// Dispatcher holds the intrinsic table plus the I/O streams `.get` and
// `.put` read from and write to.
type Dispatcher struct {
	table map[string]entry
	in    *bufio.Reader
	out   io.Writer
}

// New builds the canonical dispatcher. in/out are typically os.Stdin
// and os.Stdout; tests pass strings.Reader/bytes.Buffer instead.
func New(in io.Reader, out io.Writer) *Dispatcher {
	d := &Dispatcher{
		table: make(map[string]entry),
		in:    bufio.NewReader(in),
		out:   out,
	}
	d.register(".void", 0, d.void_)
	d.register(".+", 2, d.add)
	d.register(".-", 2, d.sub)
	d.register(".*", 2, d.mul)
	d.register("./", 2, d.div)
	d.register(".%", 2, d.mod)
	d.register(".<", 2, d.lt)
	d.register(".slen", 1, d.slen)
	d.register(".ssub", 3, d.ssub)
	d.register(".s+", 2, d.sconcat)
	d.register(".s<", 2, d.slt)
	d.register(".i->s", 1, d.itos)
	d.register(".s->i", 1, d.stoi)
	d.register(".v?", 1, d.isVoid)
	d.register(".i?", 1, d.isInteger)
	d.register(".s?", 1, d.isString)
	d.register(".c?", 1, d.isClosure)
	d.register(".type", 1, d.typeOf)
	d.register(".get", 0, d.get)
	d.register(".put", 1, d.put)
	return d
}

func (d *Dispatcher) register(name string, arity int, fn Func) {
	d.table[name] = entry{arity: arity, fn: fn}
}

// Known reports whether name is a recognized intrinsic.
func (d *Dispatcher) Known(name string) bool {
	_, ok := d.table[name]
	return ok
}

// Call dispatches name with args, raising a runtime diagnostic on
// unknown name, arity mismatch, or an operand-type mismatch surfaced
// by the individual Func.
func (d *Dispatcher) Call(name string, args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	e, ok := d.table[name]
	if !ok {
		return nil, diag.RuntimeError(loc, "unknown intrinsic %q", name)
	}
	if len(args) != e.arity {
		return nil, diag.RuntimeError(loc, "%s expects %d argument(s), got %d", name, e.arity, len(args))
	}
	return e.fn(args, loc)
}

func boolInt(b bool) value.Integer {
	if b {
		return value.Integer{Val: 1}
	}
	return value.Integer{Val: 0}
}

func (d *Dispatcher) void_(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	return value.Void{}, nil
}

func intPair(args []value.Value, loc diag.SourceLocation, op string) (int64, int64, error) {
	a, err := value.ExpectInteger(args[0], loc, op)
	if err != nil {
		return 0, 0, err
	}
	b, err := value.ExpectInteger(args[1], loc, op)
	if err != nil {
		return 0, 0, err
	}
	return a.Val, b.Val, nil
}

func (d *Dispatcher) add(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	a, b, err := intPair(args, loc, ".+")
	if err != nil {
		return nil, err
	}
	return value.Integer{Val: a + b}, nil
}

func (d *Dispatcher) sub(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	a, b, err := intPair(args, loc, ".-")
	if err != nil {
		return nil, err
	}
	return value.Integer{Val: a - b}, nil
}

func (d *Dispatcher) mul(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	a, b, err := intPair(args, loc, ".*")
	if err != nil {
		return nil, err
	}
	return value.Integer{Val: a * b}, nil
}

func (d *Dispatcher) div(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	a, b, err := intPair(args, loc, "./")
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, diag.RuntimeError(loc, "division by zero")
	}
	return value.Integer{Val: a / b}, nil
}

func (d *Dispatcher) mod(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	a, b, err := intPair(args, loc, ".%")
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, diag.RuntimeError(loc, "modulus by zero")
	}
	return value.Integer{Val: a % b}, nil
}

func (d *Dispatcher) lt(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	a, b, err := intPair(args, loc, ".<")
	if err != nil {
		return nil, err
	}
	return boolInt(a < b), nil
}

func expectString(v value.Value, loc diag.SourceLocation, context string) (value.String, error) {
	s, ok := v.(value.String)
	if !ok {
		return value.String{}, diag.RuntimeError(loc, "%s requires a String", context)
	}
	return s, nil
}

func (d *Dispatcher) slen(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	s, err := expectString(args[0], loc, ".slen")
	if err != nil {
		return nil, err
	}
	return value.Integer{Val: int64(len(s.Val))}, nil
}

func (d *Dispatcher) ssub(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	s, err := expectString(args[0], loc, ".ssub")
	if err != nil {
		return nil, err
	}
	lo, err := value.ExpectInteger(args[1], loc, ".ssub")
	if err != nil {
		return nil, err
	}
	hi, err := value.ExpectInteger(args[2], loc, ".ssub")
	if err != nil {
		return nil, err
	}
	if lo.Val < 0 || hi.Val < lo.Val || hi.Val > int64(len(s.Val)) {
		return nil, diag.RuntimeError(loc, ".ssub bounds [%d, %d) out of range for a %d-byte string", lo.Val, hi.Val, len(s.Val))
	}
	return value.String{Val: s.Val[lo.Val:hi.Val]}, nil
}

func (d *Dispatcher) sconcat(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	a, err := expectString(args[0], loc, ".s+")
	if err != nil {
		return nil, err
	}
	b, err := expectString(args[1], loc, ".s+")
	if err != nil {
		return nil, err
	}
	return value.String{Val: a.Val + b.Val}, nil
}

func (d *Dispatcher) slt(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	a, err := expectString(args[0], loc, ".s<")
	if err != nil {
		return nil, err
	}
	b, err := expectString(args[1], loc, ".s<")
	if err != nil {
		return nil, err
	}
	return boolInt(a.Val < b.Val), nil
}

func (d *Dispatcher) itos(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	i, err := value.ExpectInteger(args[0], loc, ".i->s")
	if err != nil {
		return nil, err
	}
	return value.String{Val: strconv.FormatInt(i.Val, 10)}, nil
}

func (d *Dispatcher) stoi(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	s, err := expectString(args[0], loc, ".s->i")
	if err != nil {
		return nil, err
	}
	n, perr := strconv.ParseInt(s.Val, 10, 64)
	if perr != nil {
		return nil, diag.RuntimeError(loc, ".s->i: %q is not a valid integer", s.Val)
	}
	return value.Integer{Val: n}, nil
}

func (d *Dispatcher) isVoid(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	_, ok := args[0].(value.Void)
	return boolInt(ok), nil
}

func (d *Dispatcher) isInteger(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	_, ok := args[0].(value.Integer)
	return boolInt(ok), nil
}

func (d *Dispatcher) isString(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	_, ok := args[0].(value.String)
	return boolInt(ok), nil
}

func (d *Dispatcher) isClosure(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	_, ok := args[0].(value.Closure)
	return boolInt(ok), nil
}

func (d *Dispatcher) typeOf(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	return value.Integer{Val: int64(args[0].Type())}, nil
}

// get reads one whitespace-delimited Integer from the configured input
// stream. Quill's table narrows closure.py's line-oriented, String-
// typed ".getline" to a single Integer read, matching the dialect's
// arithmetic-only I/O surface.
func (d *Dispatcher) get(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	var n int64
	if _, err := fmt.Fscan(d.in, &n); err != nil {
		return nil, diag.RuntimeError(loc, ".get: %v", err)
	}
	return value.Integer{Val: n}, nil
}

// put prints its Integer argument followed by a newline and returns
// Void. Quill's table fixes ".put" at a single Integer operand rather
// than closure.py's variadic, no-newline, any-Value form.
func (d *Dispatcher) put(args []value.Value, loc diag.SourceLocation) (value.Value, error) {
	i, err := value.ExpectInteger(args[0], loc, ".put")
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(d.out, i.Val)
	return value.Void{}, nil
}
