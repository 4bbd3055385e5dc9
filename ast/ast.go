// Package ast defines the syntax tree produced by the parser.
package ast

import (
	"fmt"

	"deedles.dev/ream/literal"
)

// Pos is a position in source code.
type Pos struct {
	Line, Col int
}

// Position returns p. It is promoted to every node that embeds a Pos.
func (p Pos) Position() Pos {
	return p
}

func (p Pos) String() string {
	return fmt.Sprintf("%v:%v", p.Line, p.Col)
}

// Expr is an expression. It is one of the pointer types in this
// package whose names do not end in Type or Pattern.
type Expr interface {
	Position() Pos
	expr()
}

type (
	// Ident is a reference to a bound identifier.
	Ident struct {
		Pos
		Name string
	}

	// Literal is a self-evaluating literal or a quotation. Quoted is
	// true for (quote datum) and `datum.
	Literal struct {
		Pos
		Val    literal.Datum
		Quoted bool
	}

	// TypeAlias is (type-alias Name typespec).
	TypeAlias struct {
		Pos
		Name string
		Type Typespec
	}

	// TypeDef is (define-type Name typespec), declaring an algebraic
	// type. Type is always a *SumType or a *ProductType.
	TypeDef struct {
		Pos
		Name string
		Type Typespec
	}

	// TypeAnnotation is (:type name typespec).
	TypeAnnotation struct {
		Pos
		Name string
		Type Typespec
	}

	// DocAnnotation is (:doc name "text").
	DocAnnotation struct {
		Pos
		Name string
		Text string
	}

	// Let is (let name value).
	Let struct {
		Pos
		Name  string
		Value Expr
	}

	// Fn is (fn name formals body...).
	Fn struct {
		Pos
		Name   string
		Params Params
		Body   []Expr
	}

	// Lambda is (lambda formals body...).
	Lambda struct {
		Pos
		Params Params
		Body   []Expr
	}

	// Seq is (seq expr...) or (begin expr...).
	Seq struct {
		Pos
		Exprs []Expr
	}

	// Call is (operator operands...).
	Call struct {
		Pos
		Operator Expr
		Operands []Expr
	}

	// If is (if test then else). Else is nil if it was omitted.
	If struct {
		Pos
		Test, Then, Else Expr
	}

	// Include is (include "path"...).
	Include struct {
		Pos
		Paths []string
	}

	// Match is (match subject (pattern body...)...).
	Match struct {
		Pos
		Subject Expr
		Clauses []Clause
	}
)

func (*Ident) expr()          {}
func (*Literal) expr()        {}
func (*TypeAlias) expr()      {}
func (*TypeDef) expr()        {}
func (*TypeAnnotation) expr() {}
func (*DocAnnotation) expr()  {}
func (*Let) expr()            {}
func (*Fn) expr()             {}
func (*Lambda) expr()         {}
func (*Seq) expr()            {}
func (*Call) expr()           {}
func (*If) expr()             {}
func (*Include) expr()        {}
func (*Match) expr()          {}

// Params are the formals of a fn or lambda. If Variadic is true,
// Names has exactly one element which is bound to the list of all of
// the arguments.
type Params struct {
	Names    []string
	Variadic bool
}

// Clause is a single arm of a match expression.
type Clause struct {
	Pattern Pattern
	Body    []Expr
}
