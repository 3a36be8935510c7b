// Package parser is a hand-written recursive-descent parser, one
// function per grammar production, producing an *ast.Expr tree from a
// lexer.Lexer token stream. Grounded on the teacher's parser/parser.go
// (a Parser struct holding current/peek tokens with one parseX method
// per MOO statement/expression form) and parser/parser_error.go's
// taxonomy of unexpected-token / incomplete-stream diagnostics,
// narrowed from MOO's full statement grammar to Quill's all-expression
// grammar.
package parser

import (
	"quill/ast"
	"quill/diag"
	"quill/lexer"
)

// Parser turns a token stream into an AST.
type Parser struct {
	lex *lexer.Lexer
	cur lexer.Token
}

// Parse is the package entry point: lex and parse src as a single
// top-level expression, rejecting any trailing tokens.
func Parse(src string) (ast.Expr, error) {
	p := &Parser{lex: lexer.New(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != lexer.EOF {
		return nil, diag.ParseError(p.cur.Loc, "redundant trailing tokens starting with %q", p.cur.Text)
	}
	return expr, nil
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) expect(k lexer.Kind, what string) (lexer.Token, error) {
	if p.cur.Kind != k {
		if p.cur.Kind == lexer.EOF {
			return lexer.Token{}, diag.ParseError(p.cur.Loc, "incomplete token stream: expected %s", what)
		}
		return lexer.Token{}, diag.ParseError(p.cur.Loc, "unexpected token: expected %s", what)
	}
	tok := p.cur
	return tok, p.advance()
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	switch p.cur.Kind {
	case lexer.Integer:
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Integer{Loc: tok.Loc, Value: tok.Int}, nil
	case lexer.String:
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.String{Loc: tok.Loc, Value: tok.Text}, nil
	case lexer.Name:
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Variable{Loc: tok.Loc, Name: tok.Text}, nil
	case lexer.Intrinsic:
		return nil, diag.ParseError(p.cur.Loc, "intrinsic reference %q is only valid as a call callee", p.cur.Text)
	case lexer.LParen:
		return p.parseCall()
	case lexer.LBracket:
		return p.parseSequence()
	case lexer.KwLambda:
		return p.parseLambda()
	case lexer.KwLetrec:
		return p.parseLetrec()
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwSet:
		return p.parseSet()
	case lexer.At:
		return p.parseQuery()
	case lexer.Amp:
		return p.parseAccess()
	case lexer.EOF:
		return nil, diag.ParseError(p.cur.Loc, "incomplete token stream: expected an expression")
	default:
		return nil, diag.ParseError(p.cur.Loc, "unrecognized token %q", p.cur.Text)
	}
}

func (p *Parser) parseCall() (ast.Expr, error) {
	loc := p.cur.Loc
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}

	var callee ast.Expr
	if p.cur.Kind == lexer.Intrinsic {
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		callee = &ast.Intrinsic{Loc: tok.Loc, Name: tok.Text}
	} else {
		c, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		callee = c
	}

	var args []ast.Expr
	for p.cur.Kind != lexer.RParen {
		if p.cur.Kind == lexer.EOF {
			return nil, diag.ParseError(p.cur.Loc, "incomplete token stream: expected ')'")
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &ast.Call{Loc: loc, Callee: callee, Args: args}, nil
}

func (p *Parser) parseSequence() (ast.Expr, error) {
	loc := p.cur.Loc
	if _, err := p.expect(lexer.LBracket, "'['"); err != nil {
		return nil, err
	}
	var exprs []ast.Expr
	for p.cur.Kind != lexer.RBracket {
		if p.cur.Kind == lexer.EOF {
			return nil, diag.ParseError(p.cur.Loc, "incomplete token stream: expected ']'")
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if len(exprs) == 0 {
		return nil, diag.ParseError(loc, "zero-length sequence")
	}
	return &ast.Sequence{Loc: loc, Exprs: exprs}, nil
}

func (p *Parser) parseLambda() (ast.Expr, error) {
	loc := p.cur.Loc
	if err := p.advance(); err != nil { // 'lambda'
		return nil, err
	}
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	var params []string
	for p.cur.Kind != lexer.RParen {
		tok, err := p.expect(lexer.Name, "a parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, tok.Text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{Loc: loc, Params: params, Body: body}, nil
}

func (p *Parser) parseLetrec() (ast.Expr, error) {
	loc := p.cur.Loc
	if err := p.advance(); err != nil { // 'letrec'
		return nil, err
	}
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	var bindings []ast.Binding
	for p.cur.Kind != lexer.RParen {
		if _, err := p.expect(lexer.LParen, "'(' starting a binding"); err != nil {
			return nil, err
		}
		name, err := p.expect(lexer.Name, "a bound name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Equals, "'='"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')' closing a binding"); err != nil {
			return nil, err
		}
		bindings = append(bindings, ast.Binding{Name: name.Text, Expr: value})
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Letrec{Loc: loc, Bindings: bindings, Body: body}, nil
}

func (p *Parser) parseIf() (ast.Expr, error) {
	loc := p.cur.Loc
	if err := p.advance(); err != nil { // 'if'
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.If{Loc: loc, Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) parseWhile() (ast.Expr, error) {
	loc := p.cur.Loc
	if err := p.advance(); err != nil { // 'while'
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.While{Loc: loc, Cond: cond, Body: body}, nil
}

func (p *Parser) parseSet() (ast.Expr, error) {
	loc := p.cur.Loc
	if err := p.advance(); err != nil { // 'set'
		return nil, err
	}
	name, err := p.expect(lexer.Name, "a variable name")
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Set{Loc: loc, Name: name.Text, Expr: expr}, nil
}

func (p *Parser) parseQuery() (ast.Expr, error) {
	loc := p.cur.Loc
	if err := p.advance(); err != nil { // '@'
		return nil, err
	}
	name, err := p.expect(lexer.Name, "a variable name")
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Query{Loc: loc, Name: name.Text, Expr: expr}, nil
}

func (p *Parser) parseAccess() (ast.Expr, error) {
	loc := p.cur.Loc
	if err := p.advance(); err != nil { // '&'
		return nil, err
	}
	name, err := p.expect(lexer.Name, "a variable name")
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Access{Loc: loc, Name: name.Text, Expr: expr}, nil
}
