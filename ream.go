// Package ream implements the runtime of the Ream language: its
// values, environments, built-in functions, and the evaluator.
package ream

import (
	"strconv"
	"strings"
	"unique"

	"deedles.dev/ream/scanner"
	"github.com/samber/lo"
)

// Value is the result of evaluating an expression. It is one of the
// types defined in this package.
type Value interface {
	String() string
	value()
}

// Bool is a Boolean.
type Bool bool

// Int is an Integer.
type Int int64

// Float is a Float.
type Float float64

// Char is a Character.
type Char rune

// Str is a String.
type Str string

// Unit is the value of an if whose test is false and that has no
// alternate.
type Unit struct{}

// Atom is an interned name. Atoms are comparable and are very
// efficient to compare, but slightly less efficient to create at
// runtime or to convert back to a string.
//
// Unquoted atoms that are not the tags of algebraic types and quoted
// identifiers both evaluate to atoms.
type Atom struct {
	h unique.Handle[string]
}

// MakeAtom returns an atom representing the given string. The
// returned atom will be equal to all other atoms returned from this
// function when called with the same string.
func MakeAtom(str string) Atom {
	return Atom{h: unique.Make(str)}
}

// Name gets the string value that the atom was created from.
func (atom Atom) Name() string {
	return atom.h.Value()
}

// SumVal is a value of a tagged union. Payload is nil for tags that
// carry no data.
type SumVal struct {
	Type    string
	Tag     Atom
	Payload Value
}

// ProductVal is a value of a product type or a tuple. Tuples have no
// Type and no Tags.
type ProductVal struct {
	Type   string
	Tags   []Atom
	Fields []Value
}

// Tuple returns a tuple of vals.
func Tuple(vals ...Value) *ProductVal {
	return &ProductVal{Fields: vals}
}

func (Bool) value()        {}
func (Int) value()         {}
func (Float) value()       {}
func (Char) value()        {}
func (Str) value()         {}
func (Unit) value()        {}
func (Atom) value()        {}
func (*SumVal) value()     {}
func (*ProductVal) value() {}

func (v Bool) String() string  { return scanner.Bool(v).String() }
func (v Int) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string { return scanner.Float(v).String() }
func (v Char) String() string  { return scanner.Char(v).String() }
func (v Str) String() string   { return scanner.String(v).String() }
func (Unit) String() string    { return "#<unit>" }
func (v Atom) String() string  { return ":" + v.Name() }

func (v *SumVal) String() string {
	if v.Payload == nil {
		return v.Tag.String()
	}
	return "(" + v.Tag.String() + " " + v.Payload.String() + ")"
}

func (v *ProductVal) String() string {
	var buf strings.Builder
	buf.WriteByte('(')
	if v.Type == "" {
		buf.WriteString("tuple")
	} else {
		buf.WriteString(v.Type)
	}
	for i, f := range v.Fields {
		buf.WriteByte(' ')
		if i < len(v.Tags) {
			buf.WriteString("(" + v.Tags[i].String() + " " + f.String() + ")")
			continue
		}
		buf.WriteString(f.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

// Display returns the text that print writes for v. Strings and
// characters are written as their contents. Everything else is
// written the same way as its String method.
func Display(v Value) string {
	switch v := v.(type) {
	case Str:
		return string(v)
	case Char:
		return string(rune(v))
	default:
		return v.String()
	}
}

// Equal reports whether a and b are structurally equal. Functions
// are only equal to themselves.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case *List:
		b, ok := b.(*List)
		if !ok || a.Len() != b.Len() {
			return false
		}
		for a.Len() > 0 {
			if !Equal(a.Head(), b.Head()) {
				return false
			}
			a, b = a.Tail(), b.Tail()
		}
		return true

	case *SumVal:
		b, ok := b.(*SumVal)
		if !ok || a.Type != b.Type || a.Tag != b.Tag || (a.Payload == nil) != (b.Payload == nil) {
			return false
		}
		return a.Payload == nil || Equal(a.Payload, b.Payload)

	case *ProductVal:
		b, ok := b.(*ProductVal)
		if !ok || a.Type != b.Type || len(a.Fields) != len(b.Fields) {
			return false
		}
		return lo.EveryBy(lo.Range(len(a.Fields)), func(i int) bool {
			return Equal(a.Fields[i], b.Fields[i])
		})

	default:
		return a == b
	}
}
