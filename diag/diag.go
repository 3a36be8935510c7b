// Package diag holds the error-reporting vocabulary shared by the
// lexer, parser, and evaluator: source locations and the single
// Diagnostic error type they all raise.
package diag

import "fmt"

// SourceLocation is a 1-based line/column pair into the original source.
// The zero value renders as "N/A".
type SourceLocation struct {
	Line   int
	Column int
}

// None is the location used when no position information is available.
var None = SourceLocation{}

func (sl SourceLocation) String() string {
	if sl.Line <= 0 || sl.Column <= 0 {
		return "(SourceLocation N/A)"
	}
	return fmt.Sprintf("(SourceLocation %d %d)", sl.Line, sl.Column)
}

// Advance updates the location for having consumed the rune c.
func (sl *SourceLocation) Advance(c rune) {
	if c == '\n' {
		sl.Line++
		sl.Column = 1
	} else {
		sl.Column++
	}
}

// Family names the stage that raised a Diagnostic.
type Family string

const (
	Lexer   Family = "lexer"
	Parser  Family = "parser"
	Runtime Family = "runtime"
)

// Diagnostic is the single error kind every stage of the interpreter
// raises. It carries the stage, the offending location, and a message.
type Diagnostic struct {
	Family   Family
	Location SourceLocation
	Message  string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("[%s error %s] %s", d.Family, d.Location, d.Message)
}

func newf(family Family, loc SourceLocation, format string, args ...any) *Diagnostic {
	return &Diagnostic{Family: family, Location: loc, Message: fmt.Sprintf(format, args...)}
}

// LexError reports a lexical-analysis failure.
func LexError(loc SourceLocation, format string, args ...any) *Diagnostic {
	return newf(Lexer, loc, format, args...)
}

// ParseError reports a syntax failure.
func ParseError(loc SourceLocation, format string, args ...any) *Diagnostic {
	return newf(Parser, loc, format, args...)
}

// RuntimeError reports an evaluation-time failure.
func RuntimeError(loc SourceLocation, format string, args ...any) *Diagnostic {
	return newf(Runtime, loc, format, args...)
}
