// Package ast defines the immutable expression tree the parser builds
// and the evaluator walks. Every node carries the source location of
// its leading token for error reporting.
package ast

import "quill/diag"

// Node is implemented by every AST node.
type Node interface {
	Position() diag.SourceLocation
}

// Expr is the marker interface for expression nodes. Quill has no
// statements: everything is an expression.
type Expr interface {
	Node
	exprNode()
}

// Integer is an integer literal.
type Integer struct {
	Loc   diag.SourceLocation
	Value int64
}

func (n *Integer) Position() diag.SourceLocation { return n.Loc }
func (n *Integer) exprNode()                     {}

// String is a string literal with escapes already decoded.
type String struct {
	Loc   diag.SourceLocation
	Value string
}

func (n *String) Position() diag.SourceLocation { return n.Loc }
func (n *String) exprNode()                     {}

// Variable is a reference to a lexically bound name.
type Variable struct {
	Loc  diag.SourceLocation
	Name string
}

func (n *Variable) Position() diag.SourceLocation { return n.Loc }
func (n *Variable) exprNode()                     {}

// Intrinsic names a built-in operation. It is only ever valid as the
// immediate callee of a Call node; the parser never produces it
// anywhere else, and the evaluator never allocates a Value for it.
type Intrinsic struct {
	Loc  diag.SourceLocation
	Name string
}

func (n *Intrinsic) Position() diag.SourceLocation { return n.Loc }
func (n *Intrinsic) exprNode()                     {}

// Set rebinds an already-existing variable's heap cell in place.
type Set struct {
	Loc  diag.SourceLocation
	Name string
	Expr Expr
}

func (n *Set) Position() diag.SourceLocation { return n.Loc }
func (n *Set) exprNode()                     {}

// Lambda is a closure literal: a parameter list plus a single body
// expression.
type Lambda struct {
	Loc    diag.SourceLocation
	Params []string
	Body   Expr
}

func (n *Lambda) Position() diag.SourceLocation { return n.Loc }
func (n *Lambda) exprNode()                     {}

// Binding is one (name = expr) pair inside a Letrec.
type Binding struct {
	Name string
	Expr Expr
}

// Letrec introduces simultaneously-recursive bindings visible to every
// binding's own right-hand side, then evaluates a body in their scope.
type Letrec struct {
	Loc      diag.SourceLocation
	Bindings []Binding
	Body     Expr
}

func (n *Letrec) Position() diag.SourceLocation { return n.Loc }
func (n *Letrec) exprNode()                     {}

// If evaluates Cond and continues into Then or Else depending on
// whether the resulting Integer is non-zero.
type If struct {
	Loc  diag.SourceLocation
	Cond Expr
	Then Expr
	Else Expr
}

func (n *If) Position() diag.SourceLocation { return n.Loc }
func (n *If) exprNode()                     {}

// While repeatedly evaluates Body as long as Cond evaluates to a
// non-zero Integer. Its value is always Void.
type While struct {
	Loc  diag.SourceLocation
	Cond Expr
	Body Expr
}

func (n *While) Position() diag.SourceLocation { return n.Loc }
func (n *While) exprNode()                     {}

// Call applies Callee to Args. When Callee is an *Intrinsic, the call
// is dispatched through the builtin table instead of pushing a frame.
type Call struct {
	Loc    diag.SourceLocation
	Callee Expr
	Args   []Expr
}

func (n *Call) Position() diag.SourceLocation { return n.Loc }
func (n *Call) exprNode()                     {}

// Sequence evaluates each Expr in order; its value is the last one's.
// The parser rejects empty sequences.
type Sequence struct {
	Loc   diag.SourceLocation
	Exprs []Expr
}

func (n *Sequence) Position() diag.SourceLocation { return n.Loc }
func (n *Sequence) exprNode()                     {}

// Query (`@ var expr`) evaluates expr to a Closure and asks whether
// var is bound in that closure's captured environment.
type Query struct {
	Loc  diag.SourceLocation
	Name string
	Expr Expr
}

func (n *Query) Position() diag.SourceLocation { return n.Loc }
func (n *Query) exprNode()                     {}

// Access (`& var expr`) evaluates expr to a Closure and yields the
// Location bound to var in its captured environment, aliased rather
// than copied.
type Access struct {
	Loc  diag.SourceLocation
	Name string
	Expr Expr
}

func (n *Access) Position() diag.SourceLocation { return n.Loc }
func (n *Access) exprNode()                     {}
