// Package literal defines the untyped data created by the parser from
// quotations such as `(a b c) or (quote 3).
package literal

import (
	"strings"

	"deedles.dev/ream/scanner"
)

// Datum is a single piece of quoted data. It is one of the types
// defined in this package.
type Datum interface {
	String() string
	datum()
}

// Ident is created from identifiers inside of a quotation.
type Ident string

// Bool is created from boolean literals such as #t or #false.
type Bool bool

// Int is created from integer literal expressions such as 2, -5, or
// 0xFF.
type Int int64

// Float is created from float literal expressions such as 2.0 or
// -1.3.
type Float float64

// Char is created from character literals such as 'a' or '\n'.
type Char rune

// String is created from string literal expressions such as
// "example".
type String string

// Atom is created from atom literal expressions such as :example.
// The colon is not part of the value.
type Atom string

// List is created from list literal expressions such as (a b c). If
// the list is dotted, such as (a b . c), Tail is the datum following
// the dot. Otherwise, Tail is nil.
type List struct {
	Elems []Datum
	Tail  Datum
}

func (Ident) datum()  {}
func (Bool) datum()   {}
func (Int) datum()    {}
func (Float) datum()  {}
func (Char) datum()   {}
func (String) datum() {}
func (Atom) datum()   {}
func (*List) datum()  {}

func (d Ident) String() string  { return string(d) }
func (d Bool) String() string   { return scanner.Bool(d).String() }
func (d Int) String() string    { return scanner.Int(d).String() }
func (d Float) String() string  { return scanner.Float(d).String() }
func (d Char) String() string   { return scanner.Char(d).String() }
func (d String) String() string { return scanner.String(d).String() }
func (d Atom) String() string   { return scanner.Atom(d).String() }

func (d *List) String() string {
	var buf strings.Builder
	buf.WriteByte('(')
	for i, e := range d.Elems {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(e.String())
	}
	if d.Tail != nil {
		buf.WriteString(" . ")
		buf.WriteString(d.Tail.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

// FromToken converts an atom-like token value into the matching
// datum. It returns false if tok is not atom-like, such as for
// parentheses.
func FromToken(tok any) (Datum, bool) {
	switch tok := tok.(type) {
	case scanner.Ident:
		return Ident(tok), true
	case scanner.Bool:
		return Bool(tok), true
	case scanner.Int:
		return Int(tok), true
	case scanner.Float:
		return Float(tok), true
	case scanner.Char:
		return Char(tok), true
	case scanner.String:
		return String(tok), true
	case scanner.Atom:
		return Atom(tok), true
	default:
		return nil, false
	}
}
