package parser

import (
	"fmt"

	"deedles.dev/ream/ast"
	"deedles.dev/ream/literal"
	"deedles.dev/ream/scanner"
)

func (p *parser) typespec() ast.Typespec {
	tok := p.scan()
	switch t := tok.Val.(type) {
	case scanner.Ident:
		if t == "Bottom" {
			return &ast.BottomType{Pos: pos(tok)}
		}
		return &ast.TypeName{Pos: pos(tok), Name: string(t)}
	case scanner.Lparen:
		p.unscan(tok)
		return p.typeConstructor()
	}

	p.raise(&FormError{
		Line: tok.Line,
		Col:  tok.Col,
		Form: "typespec",
		Err:  fmt.Errorf("%w: unexpected %v", ErrMalformedTypespec, tok),
	})
	return nil
}

func (p *parser) typeConstructor() ast.Typespec {
	open := p.lparen()
	malformed := func(format string, args ...any) {
		p.raiseForm(open, "typespec", fmt.Errorf("%w: "+format, append([]any{ErrMalformedTypespec}, args...)...))
	}

	if p.atRparen() {
		malformed("empty type constructor")
	}
	_, name := expect[scanner.Ident](p)

	var args []ast.Typespec
	var members []ast.Member
	switch name {
	case "Sum", "Product":
		members = p.members(open)
	default:
		for !p.atRparen() {
			args = append(args, p.typespec())
		}
	}
	p.rparen()

	switch name {
	case "Bottom":
		malformed("Bottom takes no arguments")
	case "Tuple":
		return &ast.TupleType{Pos: pos(open), Elems: args}
	case "List":
		if len(args) != 1 {
			malformed("List takes exactly one type, got %v", len(args))
		}
		return &ast.ListType{Pos: pos(open), Elem: args[0]}
	case "Function":
		if len(args) == 0 {
			malformed("Function requires a result type")
		}
		return &ast.FunctionType{Pos: pos(open), Params: args[:len(args)-1], Result: args[len(args)-1]}
	case "Sum":
		return &ast.SumType{Pos: pos(open), Members: members}
	case "Product":
		return &ast.ProductType{Pos: pos(open), Members: members}
	}

	if len(args) == 0 {
		malformed("%v applied to no types", name)
	}
	return &ast.TypeApp{Pos: pos(open), Name: string(name), Args: args}
}

func (p *parser) members(open scanner.Token) []ast.Member {
	var members []ast.Member
	tags := make(map[string]struct{})
	for !p.atRparen() {
		m := p.member()
		if _, ok := tags[m.Tag]; ok {
			p.raiseForm(open, "typespec", fmt.Errorf("%w: duplicate tag :%v", ErrMalformedTypespec, m.Tag))
		}
		tags[m.Tag] = struct{}{}
		members = append(members, m)
	}
	if len(members) < 2 {
		p.raiseForm(open, "typespec", fmt.Errorf("%w: need at least two members, got %v", ErrMalformedTypespec, len(members)))
	}
	return members
}

func (p *parser) member() ast.Member {
	tok := p.scan()
	switch t := tok.Val.(type) {
	case scanner.Atom:
		return ast.Member{Pos: pos(tok), Tag: string(t)}
	case scanner.Lparen:
		p.unscan(tok)
	default:
		p.raiseUnexpectedToken(tok, scanner.Atom(""))
	}

	open := p.lparen()
	_, tag := expect[scanner.Atom](p)
	payload := p.typespec()
	p.rparen()
	return ast.Member{Pos: pos(open), Tag: string(tag), Payload: payload}
}

func (p *parser) match(open scanner.Token) ast.Expr {
	subject := p.operand(open, "match")
	if p.atRparen() {
		p.raiseForm(open, "match", fmt.Errorf("%w: no clauses", ErrFormArity))
	}

	var clauses []ast.Clause
	for !p.atRparen() {
		copen := p.lparen()
		if p.atRparen() {
			p.raiseForm(copen, "match clause", fmt.Errorf("%w: missing pattern", ErrFormArity))
		}
		pat := p.pattern()
		body := p.body(copen, "match clause")
		clauses = append(clauses, ast.Clause{Pattern: pat, Body: body})
	}
	p.rparen()

	return &ast.Match{Pos: pos(open), Subject: subject, Clauses: clauses}
}

func (p *parser) pattern() ast.Pattern {
	tok := p.scan()
	switch t := tok.Val.(type) {
	case scanner.Ident:
		if t == "_" {
			return &ast.WildcardPattern{Pos: pos(tok)}
		}
		return &ast.BindPattern{Pos: pos(tok), Name: string(t)}
	case scanner.Atom:
		return &ast.TagPattern{Pos: pos(tok), Tag: string(t)}
	case scanner.Bool, scanner.Int, scanner.Float, scanner.Char, scanner.String:
		d, _ := literal.FromToken(t)
		return &ast.LiteralPattern{Pos: pos(tok), Val: d}
	case scanner.Lparen:
		p.unscan(tok)
		return p.compoundPattern()
	}

	p.raise(&FormError{
		Line: tok.Line,
		Col:  tok.Col,
		Form: "pattern",
		Err:  fmt.Errorf("%w: unexpected %v", ErrMalformedPattern, tok),
	})
	return nil
}

func (p *parser) compoundPattern() ast.Pattern {
	open := p.lparen()
	if p.atRparen() {
		p.rparen()
		return &ast.NilPattern{Pos: pos(open)}
	}

	tok := p.scan()
	var pat ast.Pattern
	switch t := tok.Val.(type) {
	case scanner.Atom:
		pat = &ast.TagPattern{Pos: pos(open), Tag: string(t), Payload: p.pattern()}

	case scanner.Ident:
		var elems []ast.Pattern
		for !p.atRparen() {
			elems = append(elems, p.pattern())
		}

		switch t {
		case "tuple":
			if len(elems) == 0 {
				p.raiseForm(open, "pattern", fmt.Errorf("%w: empty tuple pattern", ErrMalformedPattern))
			}
			pat = &ast.TuplePattern{Pos: pos(open), Elems: elems}
		case "cons":
			if len(elems) != 2 {
				p.raiseForm(open, "pattern", fmt.Errorf("%w: cons pattern takes two patterns, got %v", ErrMalformedPattern, len(elems)))
			}
			pat = &ast.ConsPattern{Pos: pos(open), Head: elems[0], Tail: elems[1]}
		}
	}
	if pat == nil {
		p.raiseForm(open, "pattern", fmt.Errorf("%w: unexpected %v", ErrMalformedPattern, tok))
	}

	p.close(open, "pattern")
	return pat
}
