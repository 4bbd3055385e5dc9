package scanner

import (
	"strconv"
	"strings"
)

var (
	delims = setOf(
		'(',
		')',
		'"',
		'\'',
		';',
		'`',
	)

	identSymbols = setOf(
		'!', '$', '%', '&', '*', '/', '<', '=', '>', '?', '^', '_', '~', '+', '-',
	)
)

func isDelim(c rune) bool {
	if _, ok := delims[c]; ok {
		return true
	}
	return isSpace(c)
}

func setOf[T comparable](vals ...T) map[T]struct{} {
	m := make(map[T]struct{}, len(vals))
	for _, val := range vals {
		m[val] = struct{}{}
	}
	return m
}

// Token is a Ream parser token. If the token is valid, Val will be
// one of the token types defined in this package.
type Token struct {
	Line, Col int
	Val       any
}

func (t Token) String() string {
	if s, ok := t.Val.(interface{ String() string }); ok {
		return s.String()
	}
	return "<invalid>"
}

// Token value type.
type (
	Lparen struct{}
	Rparen struct{}
	Dot    struct{}
	Quote  struct{}

	Ident  string
	Bool   bool
	Int    int64
	Float  float64
	Char   rune
	String string
	Atom   string
)

func (t Lparen) String() string { return "(" }
func (t Rparen) String() string { return ")" }
func (t Dot) String() string    { return "." }
func (t Quote) String() string  { return "`" }

func (t Ident) String() string { return string(t) }
func (t Atom) String() string  { return ":" + string(t) }
func (t Int) String() string   { return strconv.FormatInt(int64(t), 10) }

func (t Bool) String() string {
	if t {
		return "#t"
	}
	return "#f"
}

func (t Float) String() string {
	str := strconv.FormatFloat(float64(t), 'f', -1, 64)
	if !strings.ContainsRune(str, '.') {
		str += ".0"
	}
	return str
}

func (t Char) String() string {
	return "'" + escape(string(t), '\'') + "'"
}

func (t String) String() string {
	return `"` + escape(string(t), '"') + `"`
}

var escapes = map[rune]rune{
	'\n': 'n',
	'\r': 'r',
	'\t': 't',
	'\\': '\\',
	0:    '0',
}

func escape(str string, q rune) string {
	var buf strings.Builder
	for _, c := range str {
		if c == q {
			buf.WriteByte('\\')
			buf.WriteRune(c)
			continue
		}
		if e, ok := escapes[c]; ok {
			buf.WriteByte('\\')
			buf.WriteRune(e)
			continue
		}
		buf.WriteRune(c)
	}
	return buf.String()
}
