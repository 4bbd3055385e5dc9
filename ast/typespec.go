package ast

import "deedles.dev/ream/literal"

// Typespec is the syntax of a type. It is one of the pointer types in
// this package whose names end in Type.
type Typespec interface {
	Position() Pos
	typespec()
}

type (
	// TypeName is a bare identifier in a typespec. It names a built-in
	// type, an alias, an algebraic type, or, failing all of those, a
	// type variable.
	TypeName struct {
		Pos
		Name string
	}

	// BottomType is Bottom.
	BottomType struct {
		Pos
	}

	// TupleType is (Tuple t...).
	TupleType struct {
		Pos
		Elems []Typespec
	}

	// ListType is (List t).
	ListType struct {
		Pos
		Elem Typespec
	}

	// FunctionType is (Function params... result).
	FunctionType struct {
		Pos
		Params []Typespec
		Result Typespec
	}

	// SumType is (Sum member member...).
	SumType struct {
		Pos
		Members []Member
	}

	// ProductType is (Product member member...).
	ProductType struct {
		Pos
		Members []Member
	}

	// TypeApp is (Name t...), applying an algebraic type to arguments.
	TypeApp struct {
		Pos
		Name string
		Args []Typespec
	}
)

func (*TypeName) typespec()     {}
func (*BottomType) typespec()   {}
func (*TupleType) typespec()    {}
func (*ListType) typespec()     {}
func (*FunctionType) typespec() {}
func (*SumType) typespec()      {}
func (*ProductType) typespec()  {}
func (*TypeApp) typespec()      {}

// Member is a tagged member of a sum or product. Payload is nil for
// members written as a bare atom.
type Member struct {
	Pos
	Tag     string
	Payload Typespec
}

// Pattern is a match pattern. It is one of the pointer types in this
// package whose names end in Pattern.
type Pattern interface {
	Position() Pos
	pattern()
}

type (
	// WildcardPattern is _.
	WildcardPattern struct {
		Pos
	}

	// BindPattern binds the matched value to Name.
	BindPattern struct {
		Pos
		Name string
	}

	// LiteralPattern matches values equal to Val.
	LiteralPattern struct {
		Pos
		Val literal.Datum
	}

	// TagPattern is :Tag or (:Tag payload).
	TagPattern struct {
		Pos
		Tag     string
		Payload Pattern
	}

	// TuplePattern is (tuple p...).
	TuplePattern struct {
		Pos
		Elems []Pattern
	}

	// ConsPattern is (cons head tail).
	ConsPattern struct {
		Pos
		Head, Tail Pattern
	}

	// NilPattern is (), matching the empty list.
	NilPattern struct {
		Pos
	}
)

func (*WildcardPattern) pattern() {}
func (*BindPattern) pattern()     {}
func (*LiteralPattern) pattern()  {}
func (*TagPattern) pattern()      {}
func (*TuplePattern) pattern()    {}
func (*ConsPattern) pattern()     {}
func (*NilPattern) pattern()      {}
