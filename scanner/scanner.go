// Package scanner implements a scanner for Ream tokens.
package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrUnterminatedString = errors.New("unterminated string literal")
	ErrUnterminatedChar   = errors.New("unterminated character literal")
	ErrInvalidEscape      = errors.New("invalid escape sequence")
	ErrInvalidNumber      = errors.New("invalid number literal")
	ErrInvalidBoolean     = errors.New("invalid boolean literal")
)

// Scanner produces Ream parser tokens from an io.Reader.
type Scanner struct {
	r           *bufio.Reader
	line, col   int
	pline, pcol int
	c           rune
	err         error

	buf strings.Builder
	tok Token
}

// New returns a new Scanner which reads from r. The Scanner starts
// before the first token, so the user must call [Scan] at least once
// before accessing tokens.
func New(r io.Reader) *Scanner {
	return &Scanner{
		r:    bufio.NewReader(r),
		line: 1, col: 1,
	}
}

// Tokens returns an iterator over the tokens of src. Unlike [All],
// the returned iterator may be ranged over any number of times, each
// time lexing src from the start. If lexing fails, the final yielded
// pair carries the error.
func Tokens(src string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		s := New(strings.NewReader(src))
		for s.Scan() {
			if !yield(s.Token(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield(Token{Line: s.line, Col: s.col}, err)
		}
	}
}

// Scan advances the scanner to the next token. The current token can
// be retrieved using [Token]. If there are no more tokens, possibly
// because of an error, Scan returns false.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	return s.start()
}

// Token returns the current token. See [Scan].
func (s *Scanner) Token() Token {
	return s.tok
}

// Err returns whatever error caused the scanner to stop, or nil if
// the scanner has not yet stopped or if the scanner stopped because
// it completely drained the underlying io.Reader without any errors.
func (s *Scanner) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}

// All returns a single-use iterator which yields all of the tokens
// from the scanner in turn. If an error is encountered during the
// iteration, [Err] will return it.
func (s *Scanner) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for s.Scan() {
			if !yield(s.Token()) {
				return
			}
		}
	}
}

type raise struct{ err error }

func (s *Scanner) raise(err error) {
	panic(raise{err: err})
}

func (s *Scanner) raiseToken(err error) {
	s.raise(&TokenError{
		Line: s.tok.Line,
		Col:  s.tok.Col,
		Err:  err,
	})
}

func (s *Scanner) raiseUnexpectedRune() {
	s.raise(&UnexpectedRuneError{
		Line: s.pline,
		Col:  s.pcol,
		Rune: s.c,
	})
}

// read reads the next rune into s.c. It returns false at the end of
// the input.
func (s *Scanner) read() bool {
	c, _, err := s.r.ReadRune()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false
		}
		s.raise(err)
	}

	s.c = c
	s.pline, s.pcol = s.line, s.col
	switch c {
	case '\n':
		s.col = 1
		s.line++
	default:
		s.col++
	}
	return true
}

func (s *Scanner) unread() {
	err := s.r.UnreadRune()
	if err != nil {
		panic(err) // If this happens, there's a bug.
	}
	s.line, s.col = s.pline, s.pcol
}

func (s *Scanner) start() (ok bool) {
	defer func() {
		switch r := recover().(type) {
		case nil:
		case raise:
			s.err = r.err
			ok = false
		default:
			panic(r)
		}
	}()

	defer s.buf.Reset()

	if !s.skip() {
		s.err = io.EOF
		return false
	}

	s.tok.Line = s.pline
	s.tok.Col = s.pcol

	switch s.c {
	case '(':
		s.tok.Val = Lparen{}
		return true
	case ')':
		s.tok.Val = Rparen{}
		return true
	case '.':
		s.tok.Val = Dot{}
		return true
	case '`':
		s.tok.Val = Quote{}
		return true
	case '"':
		s.string()
		return true
	case '\'':
		s.char()
		return true
	case ':':
		s.atom()
		return true
	case '#':
		s.bool()
		return true
	case '+', '-':
		s.buf.WriteRune(s.c)
		if s.read() {
			if isDigit(s.c) {
				s.buf.WriteRune(s.c)
				s.number()
				return true
			}
			s.unread()
		}
		s.ident()
		return true
	}

	if isDigit(s.c) {
		s.buf.WriteRune(s.c)
		s.number()
		return true
	}
	if isIdentStart(s.c) {
		s.buf.WriteRune(s.c)
		s.ident()
		return true
	}

	s.raiseUnexpectedRune()
	return false
}

// skip skips whitespace and comments. It returns false if the input
// ran out before the start of another token.
func (s *Scanner) skip() bool {
	for {
		if !s.read() {
			return false
		}

		switch {
		case isSpace(s.c):
		case s.c == ';':
			for s.c != '\n' {
				if !s.read() {
					return false
				}
			}
		default:
			return true
		}
	}
}

// word reads runes into the buffer up to, but not including, the
// next delimiter.
func (s *Scanner) word(valid func(rune) bool) {
	for {
		if !s.read() {
			return
		}
		if isDelim(s.c) {
			s.unread()
			return
		}
		if valid != nil && !valid(s.c) {
			s.raiseUnexpectedRune()
			return
		}
		s.buf.WriteRune(s.c)
	}
}

func (s *Scanner) ident() {
	s.word(isIdentContinue)
	s.tok.Val = Ident(s.buf.String())
}

func (s *Scanner) atom() {
	s.word(isIdentContinue)
	if s.buf.Len() == 0 {
		s.raiseToken(errors.New("empty atom"))
		return
	}
	s.tok.Val = Atom(s.buf.String())
}

func (s *Scanner) bool() {
	s.buf.WriteByte('#')
	s.word(nil)

	switch raw := s.buf.String(); raw {
	case "#t", "#true":
		s.tok.Val = Bool(true)
	case "#f", "#false":
		s.tok.Val = Bool(false)
	default:
		s.raiseToken(fmt.Errorf("%w %q", ErrInvalidBoolean, raw))
	}
}

func (s *Scanner) number() {
	s.word(nil)

	raw := s.buf.String()
	str := strings.ReplaceAll(raw, "_", "")

	var sign string
	if str[0] == '+' || str[0] == '-' {
		sign, str = str[:1], str[1:]
	}

	base := 10
	if len(str) > 1 && str[0] == '0' {
		switch str[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 10 {
			str = str[2:]
		}
	}

	if strings.ContainsRune(str, '.') {
		if base != 10 {
			s.raiseToken(fmt.Errorf("%w %q: floats must be written in decimal", ErrInvalidNumber, raw))
			return
		}
		v, err := strconv.ParseFloat(sign+str, 64)
		if err != nil || !isDigit(rune(str[0])) {
			s.raiseToken(fmt.Errorf("%w %q", ErrInvalidNumber, raw))
			return
		}
		s.tok.Val = Float(v)
		return
	}

	v, err := strconv.ParseInt(sign+str, base, 64)
	if err != nil {
		s.raiseToken(fmt.Errorf("%w %q", ErrInvalidNumber, raw))
		return
	}
	s.tok.Val = Int(v)
}

func (s *Scanner) string() {
	for {
		if !s.read() {
			s.raiseToken(ErrUnterminatedString)
			return
		}

		switch s.c {
		case '\\':
			if !s.read() {
				s.raiseToken(ErrUnterminatedString)
				return
			}
			s.escape('"')
			s.buf.WriteRune(s.c)

		case '"':
			s.tok.Val = String(s.buf.String())
			return

		default:
			s.buf.WriteRune(s.c)
		}
	}
}

func (s *Scanner) char() {
	if !s.read() {
		s.raiseToken(ErrUnterminatedChar)
		return
	}

	var val rune
	switch s.c {
	case '\\':
		if !s.read() {
			s.raiseToken(ErrUnterminatedChar)
			return
		}
		s.escape('\'')
		val = s.c

	case '\'':
		s.raiseToken(errors.New("empty character literal"))
		return

	default:
		val = s.c
	}

	if !s.read() || s.c != '\'' {
		s.raiseToken(ErrUnterminatedChar)
		return
	}

	s.tok.Val = Char(val)
}

func (s *Scanner) escape(q rune) {
	switch s.c {
	case q, '\\':
	case 'n':
		s.c = '\n'
	case 'r':
		s.c = '\r'
	case 't':
		s.c = '\t'
	case '0':
		s.c = 0
	default:
		s.raise(&TokenError{
			Line: s.pline,
			Col:  s.pcol - 1,
			Err:  fmt.Errorf("%w \\%c", ErrInvalidEscape, s.c),
		})
	}
}

func isSpace(c rune) bool {
	return unicode.IsSpace(c)
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c rune) bool {
	if _, ok := identSymbols[c]; ok {
		return true
	}
	return unicode.IsLetter(c)
}

func isIdentContinue(c rune) bool {
	switch c {
	case '.', '@', ':':
		return true
	}
	return isIdentStart(c) || unicode.IsDigit(c) || unicode.IsNumber(c) || unicode.In(c, unicode.Mn, unicode.Mc, unicode.Pc)
}

// UnexpectedRuneError is yielded when an unexpected rune is found
// during the course of scanning.
type UnexpectedRuneError struct {
	Line, Col int
	Rune      rune
}

func (err *UnexpectedRuneError) Error() string {
	return fmt.Sprintf("unexpected rune %q (%v:%v)", err.Rune, err.Line, err.Col)
}

// TokenError is yielded when an unexpected error occurs during the
// scanning of a token. Line and Col are for the beginning of the
// token, not the exact location of the error, except for invalid
// escape sequences, which point at the offending backslash.
type TokenError struct {
	Line, Col int
	Err       error
}

func (err *TokenError) Error() string {
	return fmt.Sprintf("error in token (%v:%v): %v", err.Line, err.Col, err.Err)
}

func (err *TokenError) Unwrap() error {
	return err.Err
}
