// Package parser parses Ream source into the syntax tree defined by
// package ast.
package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"deedles.dev/ream/ast"
	"deedles.dev/ream/literal"
	"deedles.dev/ream/scanner"
)

var (
	// ErrFormArity is wrapped by a FormError when a keyword form has
	// the wrong number of operands.
	ErrFormArity = errors.New("wrong number of operands")

	// ErrMalformedTypespec is wrapped by a FormError when a typespec
	// does not follow the typespec grammar.
	ErrMalformedTypespec = errors.New("malformed typespec")

	// ErrMalformedPattern is wrapped by a FormError when a match
	// pattern does not follow the pattern grammar.
	ErrMalformedPattern = errors.New("malformed pattern")

	// ErrNestingTooDeep is wrapped by a FormError when lists or
	// quotations nest more than MaxNesting levels deep.
	ErrNestingTooDeep = errors.New("nesting too deep")
)

// MaxNesting is the deepest that lists and quotations may nest.
const MaxNesting = 1000

// Parse parses a whole program from r.
func Parse(r io.Reader) ([]ast.Expr, error) {
	return ParseScanner(scanner.New(r))
}

// ParseString parses a whole program from src.
func ParseString(src string) ([]ast.Expr, error) {
	return Parse(strings.NewReader(src))
}

// ParseScanner parses a whole program from the tokens produced by s.
func ParseScanner(s *scanner.Scanner) ([]ast.Expr, error) {
	p := parser{s: s}
	return p.Parse()
}

// ParseTypespec parses a single typespec, such as
// (Function (List A) A), from src.
func ParseTypespec(src string) (spec ast.Typespec, err error) {
	p := parser{s: scanner.New(strings.NewReader(src))}
	defer p.catch(&err)

	spec = p.typespec()
	if p.peek() != nil {
		p.raiseUnexpectedToken(p.scan(), nil)
	}
	return spec, nil
}

type parser struct {
	s     *scanner.Scanner
	tok   scanner.Token
	open  []scanner.Token
	depth int
}

func (p *parser) Parse() (exprs []ast.Expr, err error) {
	defer p.catch(&err)

	for p.peek() != nil {
		exprs = append(exprs, p.expr())
	}
	return exprs, nil
}

type raise struct{ err error }

func (p *parser) catch(err *error) {
	switch r := recover().(type) {
	case nil:
	case raise:
		*err = r.err
	default:
		panic(r)
	}
}

func (p *parser) raise(err error) {
	panic(raise{err: err})
}

func (p *parser) raiseUnexpectedEOF() {
	if len(p.open) > 0 {
		open := p.open[len(p.open)-1]
		p.raise(&UnclosedListError{Line: open.Line, Col: open.Col})
	}
	p.raise(io.ErrUnexpectedEOF)
}

func (p *parser) raiseUnexpectedToken(got scanner.Token, ex any) {
	p.raise(&UnexpectedTokenError{
		Line:     got.Line,
		Col:      got.Col,
		Got:      got.Val,
		Expected: ex,
	})
}

func (p *parser) raiseForm(open scanner.Token, form string, err error) {
	p.raise(&FormError{
		Line: open.Line,
		Col:  open.Col,
		Form: form,
		Err:  err,
	})
}

func (p *parser) next() bool {
	if p.s.Scan() {
		return true
	}
	if err := p.s.Err(); err != nil {
		p.raise(err)
	}
	return false
}

func (p *parser) scan() scanner.Token {
	if p.tok.Val != nil {
		tok := p.tok
		p.tok.Val = nil
		return tok
	}

	if !p.next() {
		p.raiseUnexpectedEOF()
		return scanner.Token{}
	}

	return p.s.Token()
}

func (p *parser) unscan(tok scanner.Token) {
	if p.tok.Val != nil {
		panic("unscanned twice")
	}

	p.tok = tok
}

func (p *parser) peek() any {
	if p.tok.Val != nil {
		return p.tok.Val
	}

	if !p.next() {
		return nil
	}

	p.tok = p.s.Token()
	return p.tok.Val
}

func expect[T any](p *parser) (tok scanner.Token, v T) {
	got := p.scan()
	if v, ok := got.Val.(T); ok {
		return got, v
	}

	p.raiseUnexpectedToken(got, *new(T))
	return tok, v
}

func (p *parser) lparen() scanner.Token {
	tok, _ := expect[scanner.Lparen](p)
	p.enter(tok)
	p.open = append(p.open, tok)
	return tok
}

func (p *parser) rparen() {
	expect[scanner.Rparen](p)
	p.open = p.open[:len(p.open)-1]
	p.depth--
}

// enter increases the nesting depth for a construct starting at tok.
// Callers that do not go through lparen must decrement depth
// themselves.
func (p *parser) enter(tok scanner.Token) {
	p.depth++
	if p.depth > MaxNesting {
		p.raiseForm(tok, "expression", fmt.Errorf("%w: more than %v levels", ErrNestingTooDeep, MaxNesting))
	}
}

func (p *parser) atRparen() bool {
	if p.peek() == nil {
		p.raiseUnexpectedEOF()
	}
	return p.peek() == (scanner.Rparen{})
}

// close consumes the closing parenthesis of a keyword form, raising an
// arity error if there is anything else left in it.
func (p *parser) close(open scanner.Token, form string) {
	if !p.atRparen() {
		p.raiseForm(open, form, fmt.Errorf("%w: unexpected %v", ErrFormArity, p.peek()))
	}
	p.rparen()
}

// operand parses one required operand of a keyword form.
func (p *parser) operand(open scanner.Token, form string) ast.Expr {
	if p.atRparen() {
		p.raiseForm(open, form, fmt.Errorf("%w: missing operand", ErrFormArity))
	}
	return p.expr()
}

func (p *parser) ident(open scanner.Token, form string) string {
	if p.atRparen() {
		p.raiseForm(open, form, fmt.Errorf("%w: missing name", ErrFormArity))
	}
	_, ident := expect[scanner.Ident](p)
	return string(ident)
}

func pos(tok scanner.Token) ast.Pos {
	return ast.Pos{Line: tok.Line, Col: tok.Col}
}

func (p *parser) expr() ast.Expr {
	tok := p.scan()
	switch t := tok.Val.(type) {
	case scanner.Ident:
		return &ast.Ident{Pos: pos(tok), Name: string(t)}
	case scanner.Quote:
		p.enter(tok)
		defer func() { p.depth-- }()
		return &ast.Literal{Pos: pos(tok), Val: p.datum(), Quoted: true}
	case scanner.Lparen:
		p.unscan(tok)
		return p.form()
	}

	if d, ok := literal.FromToken(tok.Val); ok {
		return &ast.Literal{Pos: pos(tok), Val: d}
	}

	p.raiseUnexpectedToken(tok, nil)
	return nil
}

func (p *parser) form() ast.Expr {
	open := p.lparen()

	switch head := p.peek().(type) {
	case scanner.Rparen:
		p.rparen()
		return &ast.Literal{Pos: pos(open), Val: &literal.List{}}

	case scanner.Atom:
		switch head {
		case "type":
			p.scan()
			return p.typeAnnotation(open)
		case "doc":
			p.scan()
			return p.docAnnotation(open)
		}

	case scanner.Ident:
		var parse func(scanner.Token) ast.Expr
		switch head {
		case "type-alias":
			parse = p.typeAlias
		case "define-type":
			parse = p.typeDef
		case "let":
			parse = p.let
		case "fn":
			parse = p.fn
		case "lambda":
			parse = p.lambda
		case "seq", "begin":
			parse = p.seq
		case "if":
			parse = p.cond
		case "include":
			parse = p.include
		case "quote":
			parse = p.quote
		case "match":
			parse = p.match
		}
		if parse != nil {
			p.scan()
			return parse(open)
		}
	}

	return p.call(open)
}

func (p *parser) typeAlias(open scanner.Token) ast.Expr {
	name := p.ident(open, "type-alias")
	spec := p.typespec()
	p.close(open, "type-alias")
	return &ast.TypeAlias{Pos: pos(open), Name: name, Type: spec}
}

func (p *parser) typeDef(open scanner.Token) ast.Expr {
	name := p.ident(open, "define-type")
	if p.atRparen() {
		p.raiseForm(open, "define-type", fmt.Errorf("%w: missing typespec", ErrFormArity))
	}
	spec := p.typespec()
	switch spec.(type) {
	case *ast.SumType, *ast.ProductType:
	default:
		p.raiseForm(open, "define-type", fmt.Errorf("%w: algebraic type must be a Sum or a Product", ErrMalformedTypespec))
	}
	p.close(open, "define-type")
	return &ast.TypeDef{Pos: pos(open), Name: name, Type: spec}
}

func (p *parser) typeAnnotation(open scanner.Token) ast.Expr {
	name := p.ident(open, ":type")
	if p.atRparen() {
		p.raiseForm(open, ":type", fmt.Errorf("%w: missing typespec", ErrFormArity))
	}
	spec := p.typespec()
	p.close(open, ":type")
	return &ast.TypeAnnotation{Pos: pos(open), Name: name, Type: spec}
}

func (p *parser) docAnnotation(open scanner.Token) ast.Expr {
	name := p.ident(open, ":doc")
	if p.atRparen() {
		p.raiseForm(open, ":doc", fmt.Errorf("%w: missing doc string", ErrFormArity))
	}
	_, text := expect[scanner.String](p)
	p.close(open, ":doc")
	return &ast.DocAnnotation{Pos: pos(open), Name: name, Text: string(text)}
}

func (p *parser) let(open scanner.Token) ast.Expr {
	name := p.ident(open, "let")
	val := p.operand(open, "let")
	p.close(open, "let")
	return &ast.Let{Pos: pos(open), Name: name, Value: val}
}

func (p *parser) fn(open scanner.Token) ast.Expr {
	name := p.ident(open, "fn")
	params := p.formals(open, "fn")
	body := p.body(open, "fn")
	return &ast.Fn{Pos: pos(open), Name: name, Params: params, Body: body}
}

func (p *parser) lambda(open scanner.Token) ast.Expr {
	params := p.formals(open, "lambda")
	body := p.body(open, "lambda")
	return &ast.Lambda{Pos: pos(open), Params: params, Body: body}
}

func (p *parser) formals(open scanner.Token, form string) ast.Params {
	if p.atRparen() {
		p.raiseForm(open, form, fmt.Errorf("%w: missing formals", ErrFormArity))
	}

	tok := p.scan()
	switch t := tok.Val.(type) {
	case scanner.Ident:
		return ast.Params{Names: []string{string(t)}, Variadic: true}
	case scanner.Lparen:
		p.unscan(tok)
	default:
		p.raiseUnexpectedToken(tok, scanner.Lparen{})
	}

	p.lparen()
	names := []string{}
	for !p.atRparen() {
		_, name := expect[scanner.Ident](p)
		names = append(names, string(name))
	}
	p.rparen()
	return ast.Params{Names: names}
}

// body parses the one or more expressions remaining in a form and
// its closing parenthesis.
func (p *parser) body(open scanner.Token, form string) []ast.Expr {
	if p.atRparen() {
		p.raiseForm(open, form, fmt.Errorf("%w: empty body", ErrFormArity))
	}
	var body []ast.Expr
	for !p.atRparen() {
		body = append(body, p.expr())
	}
	p.rparen()
	return body
}

func (p *parser) seq(open scanner.Token) ast.Expr {
	exprs := []ast.Expr{}
	for !p.atRparen() {
		exprs = append(exprs, p.expr())
	}
	p.rparen()
	return &ast.Seq{Pos: pos(open), Exprs: exprs}
}

func (p *parser) cond(open scanner.Token) ast.Expr {
	test := p.operand(open, "if")
	then := p.operand(open, "if")
	var els ast.Expr
	if !p.atRparen() {
		els = p.expr()
	}
	p.close(open, "if")
	return &ast.If{Pos: pos(open), Test: test, Then: then, Else: els}
}

func (p *parser) include(open scanner.Token) ast.Expr {
	if p.atRparen() {
		p.raiseForm(open, "include", fmt.Errorf("%w: missing path", ErrFormArity))
	}
	var paths []string
	for !p.atRparen() {
		_, path := expect[scanner.String](p)
		paths = append(paths, string(path))
	}
	p.rparen()
	return &ast.Include{Pos: pos(open), Paths: paths}
}

func (p *parser) quote(open scanner.Token) ast.Expr {
	if p.atRparen() {
		p.raiseForm(open, "quote", fmt.Errorf("%w: missing datum", ErrFormArity))
	}
	d := p.datum()
	p.close(open, "quote")
	return &ast.Literal{Pos: pos(open), Val: d, Quoted: true}
}

func (p *parser) call(open scanner.Token) ast.Expr {
	operator := p.expr()
	var operands []ast.Expr
	for !p.atRparen() {
		operands = append(operands, p.expr())
	}
	p.rparen()
	return &ast.Call{Pos: pos(open), Operator: operator, Operands: operands}
}

// UnexpectedTokenError is returned when the parser finds a token that
// does not fit the grammar at that point.
type UnexpectedTokenError struct {
	Line, Col int
	Got       any
	Expected  any
}

func (err *UnexpectedTokenError) Error() string {
	if err.Expected == nil {
		return fmt.Sprintf("unexpected token %q (%[1]T) at %v:%v", err.Got, err.Line, err.Col)
	}
	return fmt.Sprintf("unexpected token %q (%[1]T) at %v:%v, expected %T", err.Got, err.Line, err.Col, err.Expected)
}

// UnclosedListError is returned when the input ends inside of a
// parenthesized list. Line and Col are the position of the opening
// parenthesis.
type UnclosedListError struct {
	Line, Col int
}

func (err *UnclosedListError) Error() string {
	return fmt.Sprintf("unclosed list opened at %v:%v", err.Line, err.Col)
}

func (err *UnclosedListError) Unwrap() error {
	return io.ErrUnexpectedEOF
}

// FormError is returned when a keyword form is malformed. Line and Col
// are the position of the form's opening parenthesis.
type FormError struct {
	Line, Col int
	Form      string
	Err       error
}

func (err *FormError) Error() string {
	return fmt.Sprintf("malformed %v at %v:%v: %v", err.Form, err.Line, err.Col, err.Err)
}

func (err *FormError) Unwrap() error {
	return err.Err
}
