package parser

import (
	"io"

	"deedles.dev/ream/literal"
	"deedles.dev/ream/scanner"
)

// Reader reads quoted data, rather than expressions, from a stream of
// tokens.
type Reader struct {
	p parser
}

// NewReader returns a Reader that reads data from the tokens produced
// by s.
func NewReader(s *scanner.Scanner) *Reader {
	return &Reader{p: parser{s: s}}
}

// Read reads the next datum. Any tokens after it are left for the
// next call. At the end of the input, Read returns io.EOF.
func (r *Reader) Read() (d literal.Datum, err error) {
	defer r.p.catch(&err)

	if r.p.peek() == nil {
		return nil, io.EOF
	}
	return r.p.datum(), nil
}

// ReadData reads every datum from src.
func ReadData(src io.Reader) ([]literal.Datum, error) {
	r := NewReader(scanner.New(src))

	var data []literal.Datum
	for {
		d, err := r.Read()
		if err != nil {
			if err == io.EOF {
				return data, nil
			}
			return data, err
		}
		data = append(data, d)
	}
}

func (p *parser) datum() literal.Datum {
	tok := p.scan()
	if d, ok := literal.FromToken(tok.Val); ok {
		return d
	}

	switch tok.Val.(type) {
	case scanner.Lparen:
		p.unscan(tok)
		return p.datumList()
	case scanner.Quote:
		p.enter(tok)
		defer func() { p.depth-- }()
		return &literal.List{Elems: []literal.Datum{literal.Ident("quote"), p.datum()}}
	}

	p.raiseUnexpectedToken(tok, nil)
	return nil
}

func (p *parser) datumList() *literal.List {
	p.lparen()

	list := literal.List{Elems: []literal.Datum{}}
	for !p.atRparen() {
		if p.peek() != (scanner.Dot{}) {
			list.Elems = append(list.Elems, p.datum())
			continue
		}

		dot := p.scan()
		if len(list.Elems) == 0 || p.atRparen() {
			p.raiseUnexpectedToken(dot, nil)
		}

		switch tail := p.datum().(type) {
		case *literal.List:
			list.Elems = append(list.Elems, tail.Elems...)
			list.Tail = tail.Tail
		default:
			list.Tail = tail
		}

		if !p.atRparen() {
			p.raiseUnexpectedToken(p.scan(), scanner.Rparen{})
		}
	}
	p.rparen()

	return &list
}
