// Package types defines the semantic types of Ream programs along
// with substitutions, unification, and type schemes.
package types

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Type is a semantic type. It is one of the types defined in this
// package.
type Type interface {
	String() string
	isType()
}

// Bottom is the type with no values. It is the type of an empty seq.
type Bottom struct{}

// Var is a type variable. Hint is the name that the variable was
// written as in a typespec, if any, and is only used for display.
type Var struct {
	ID   int
	Hint string
}

// Con is a named type, possibly applied to arguments. The built-in
// named types have no Def. User-defined algebraic types carry the
// definition that they were declared with.
type Con struct {
	Name string
	Args []Type
	Def  *Def
}

// Tuple is a fixed-length heterogeneous product.
type Tuple struct {
	Elems []Type
}

// List is a homogeneous list.
type List struct {
	Elem Type
}

// Func is a function type. If Variadic is true, Params has exactly
// one element, a List, that collects all of the arguments.
type Func struct {
	Params   []Type
	Result   Type
	Variadic bool
}

// Sum is a tagged union.
type Sum struct {
	Members []Member
}

// Product is a record with tagged fields.
type Product struct {
	Members []Member
}

// Member is a single tag of a Sum or Product. Payload is nil for tags
// that carry no data.
type Member struct {
	Tag     string
	Payload Type
}

var (
	Integer   Type = Con{Name: "Integer"}
	Float     Type = Con{Name: "Float"}
	Boolean   Type = Con{Name: "Boolean"}
	Character Type = Con{Name: "Character"}
	String    Type = Con{Name: "String"}
	Atom      Type = Con{Name: "Atom"}
)

// Builtin returns the built-in named type called name.
func Builtin(name string) (Type, bool) {
	switch name {
	case "Integer":
		return Integer, true
	case "Float":
		return Float, true
	case "Boolean":
		return Boolean, true
	case "Character":
		return Character, true
	case "String":
		return String, true
	case "Atom":
		return Atom, true
	default:
		return nil, false
	}
}

func (Bottom) isType()  {}
func (Var) isType()     {}
func (Con) isType()     {}
func (Tuple) isType()   {}
func (List) isType()    {}
func (Func) isType()    {}
func (Sum) isType()     {}
func (Product) isType() {}

func (Bottom) String() string { return "Bottom" }

func (t Var) String() string {
	if t.Hint != "" {
		return t.Hint
	}
	return "t" + strconv.FormatInt(int64(t.ID), 10)
}

func (t Con) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	return group(t.Name, strs(t.Args)...)
}

func (t Tuple) String() string {
	return group("Tuple", strs(t.Elems)...)
}

func (t List) String() string {
	return group("List", t.Elem.String())
}

func (t Func) String() string {
	return group("Function", append(strs(t.Params), t.Result.String())...)
}

func (t Sum) String() string {
	return group("Sum", lo.Map(t.Members, func(m Member, _ int) string { return m.String() })...)
}

func (t Product) String() string {
	return group("Product", lo.Map(t.Members, func(m Member, _ int) string { return m.String() })...)
}

func (m Member) String() string {
	if m.Payload == nil {
		return ":" + m.Tag
	}
	return group(":"+m.Tag, m.Payload.String())
}

func strs(types []Type) []string {
	return lo.Map(types, func(t Type, _ int) string { return t.String() })
}

func group(head string, parts ...string) string {
	var buf strings.Builder
	buf.WriteByte('(')
	buf.WriteString(head)
	for _, p := range parts {
		buf.WriteByte(' ')
		buf.WriteString(p)
	}
	buf.WriteByte(')')
	return buf.String()
}

// Def is the definition of a user-defined algebraic type. Body is a
// Sum or a Product in terms of Params.
type Def struct {
	Name   string
	Params []Var
	Body   Type
}

// Members returns the members of the definition's body.
func (d *Def) Members() []Member {
	switch body := d.Body.(type) {
	case Sum:
		return body.Members
	case Product:
		return body.Members
	default:
		return nil
	}
}

// IsSum reports whether the definition is a tagged union.
func (d *Def) IsSum() bool {
	_, ok := d.Body.(Sum)
	return ok
}

// Unfold returns the body of the definition with its parameters
// replaced by args.
func (d *Def) Unfold(args []Type) Type {
	s := make(Subst, len(d.Params))
	for i, p := range d.Params {
		if i < len(args) {
			s[p.ID] = args[i]
		}
	}
	return s.Apply(d.Body)
}

// Member returns the member of the definition tagged tag with its
// payload expressed in terms of args.
func (d *Def) Member(tag string, args []Type) (Member, bool) {
	var members []Member
	switch body := d.Unfold(args).(type) {
	case Sum:
		members = body.Members
	case Product:
		members = body.Members
	}

	for _, m := range members {
		if m.Tag == tag {
			return m, true
		}
	}
	return Member{}, false
}
