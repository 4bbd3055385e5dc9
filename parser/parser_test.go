package parser_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"deedles.dev/ream/ast"
	"deedles.dev/ream/literal"
	"deedles.dev/ream/parser"
)

func parse(t *testing.T, src string) []ast.Expr {
	exprs, err := parser.ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	return exprs
}

func TestParseForms(t *testing.T) {
	src := `
	(type-alias IntPair (Tuple Integer Integer))
	(define-type Option (Sum (:Some A) :None))
	(:type id (Function A A))
	(:doc id "The identity function.")
	(let a 1)
	(fn id (x) x)
	(lambda (x y) y)
	(seq (let b 2) b)
	(begin 1 2)
	(if #t 1 2)
	(include "lib.rm")
	(quote (1 2))
	` + "`sym" + `
	(match a (_ 0))
	(print "hi")
	:None
	()
	`

	ex := []string{
		"*ast.TypeAlias",
		"*ast.TypeDef",
		"*ast.TypeAnnotation",
		"*ast.DocAnnotation",
		"*ast.Let",
		"*ast.Fn",
		"*ast.Lambda",
		"*ast.Seq",
		"*ast.Seq",
		"*ast.If",
		"*ast.Include",
		"*ast.Literal",
		"*ast.Literal",
		"*ast.Match",
		"*ast.Call",
		"*ast.Literal",
		"*ast.Literal",
	}

	exprs := parse(t, src)
	if len(exprs) != len(ex) {
		t.Fatalf("got %v expressions, expected %v", len(exprs), len(ex))
	}
	for i, expr := range exprs {
		if got := fmt.Sprintf("%T", expr); got != ex[i] {
			t.Fatalf("expression %v: %v, expected %v", i, got, ex[i])
		}
	}
}

func TestParseFn(t *testing.T) {
	exprs := parse(t, `(fn fib (n) (print n) (if (<= n 2) 1 (+ (fib (- n 1)) (fib (- n 2)))))`)

	fn, ok := exprs[0].(*ast.Fn)
	if !ok {
		t.Fatalf("%T", exprs[0])
	}
	if fn.Name != "fib" || fn.Params.Variadic || len(fn.Params.Names) != 1 || fn.Params.Names[0] != "n" {
		t.Fatalf("%#v", fn)
	}
	if len(fn.Body) != 2 {
		t.Fatal(len(fn.Body))
	}

	cond, ok := fn.Body[1].(*ast.If)
	if !ok {
		t.Fatalf("%T", fn.Body[1])
	}
	if _, ok := cond.Test.(*ast.Call); !ok {
		t.Fatalf("%T", cond.Test)
	}
	if cond.Else == nil {
		t.Fatal("missing alternate")
	}
}

func TestParseVariadic(t *testing.T) {
	exprs := parse(t, `(lambda args args)`)

	lambda := exprs[0].(*ast.Lambda)
	if !lambda.Params.Variadic || len(lambda.Params.Names) != 1 || lambda.Params.Names[0] != "args" {
		t.Fatalf("%#v", lambda.Params)
	}
}

func TestParseHigherOrderCall(t *testing.T) {
	exprs := parse(t, `((lambda (x) x) 5)`)

	call, ok := exprs[0].(*ast.Call)
	if !ok {
		t.Fatalf("%T", exprs[0])
	}
	if _, ok := call.Operator.(*ast.Lambda); !ok {
		t.Fatalf("%T", call.Operator)
	}
	if lit := call.Operands[0].(*ast.Literal); lit.Val != literal.Int(5) || lit.Quoted {
		t.Fatalf("%#v", lit)
	}
}

func TestParseIfWithoutElse(t *testing.T) {
	exprs := parse(t, `(if (null? xs) 0)`)

	cond := exprs[0].(*ast.If)
	if cond.Else != nil {
		t.Fatalf("%#v", cond.Else)
	}
}

func TestParseMatch(t *testing.T) {
	exprs := parse(t, `(match x ((:Some v) v) (:None 0) ((cons h _) h) (() 1) ((tuple a 2) a))`)

	m := exprs[0].(*ast.Match)
	if len(m.Clauses) != 5 {
		t.Fatal(len(m.Clauses))
	}

	some := m.Clauses[0].Pattern.(*ast.TagPattern)
	if some.Tag != "Some" {
		t.Fatal(some.Tag)
	}
	if b, ok := some.Payload.(*ast.BindPattern); !ok || b.Name != "v" {
		t.Fatalf("%#v", some.Payload)
	}
	if none := m.Clauses[1].Pattern.(*ast.TagPattern); none.Payload != nil {
		t.Fatalf("%#v", none)
	}
	cons := m.Clauses[2].Pattern.(*ast.ConsPattern)
	if _, ok := cons.Tail.(*ast.WildcardPattern); !ok {
		t.Fatalf("%T", cons.Tail)
	}
	if _, ok := m.Clauses[3].Pattern.(*ast.NilPattern); !ok {
		t.Fatalf("%T", m.Clauses[3].Pattern)
	}
	tuple := m.Clauses[4].Pattern.(*ast.TuplePattern)
	if lit := tuple.Elems[1].(*ast.LiteralPattern); lit.Val != literal.Int(2) {
		t.Fatalf("%#v", lit)
	}
}

func TestParseTypespec(t *testing.T) {
	spec, err := parser.ParseTypespec(`(Function (List A) A)`)
	if err != nil {
		t.Fatal(err)
	}

	fn, ok := spec.(*ast.FunctionType)
	if !ok {
		t.Fatalf("%T", spec)
	}
	if len(fn.Params) != 1 {
		t.Fatal(len(fn.Params))
	}
	list, ok := fn.Params[0].(*ast.ListType)
	if !ok {
		t.Fatalf("%T", fn.Params[0])
	}
	if name := list.Elem.(*ast.TypeName); name.Name != "A" {
		t.Fatal(name.Name)
	}
	if name := fn.Result.(*ast.TypeName); name.Name != "A" {
		t.Fatal(name.Name)
	}

	sum, err := parser.ParseTypespec(`(Sum (:Some A) :None)`)
	if err != nil {
		t.Fatal(err)
	}
	members := sum.(*ast.SumType).Members
	if len(members) != 2 || members[0].Tag != "Some" || members[0].Payload == nil || members[1].Tag != "None" || members[1].Payload != nil {
		t.Fatalf("%#v", members)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(error) bool
	}{
		{"Unclosed", "(let a\n  (+ 1 2)", func(err error) bool {
			var uerr *parser.UnclosedListError
			return errors.As(err, &uerr) && uerr.Line == 1 && uerr.Col == 1
		}},
		{"UnexpectedRparen", `1 )`, func(err error) bool {
			var terr *parser.UnexpectedTokenError
			return errors.As(err, &terr)
		}},
		{"LetArity", `(let a)`, is(parser.ErrFormArity)},
		{"LetExtra", `(let a 1 2)`, is(parser.ErrFormArity)},
		{"EmptyBody", `(fn f (x))`, is(parser.ErrFormArity)},
		{"IfArity", `(if #t)`, is(parser.ErrFormArity)},
		{"SingleMemberSum", `(define-type T (Sum :A))`, is(parser.ErrMalformedTypespec)},
		{"DuplicateTag", `(define-type T (Sum :A (:A Integer)))`, is(parser.ErrMalformedTypespec)},
		{"NotAlgebraic", `(define-type T (List Integer))`, is(parser.ErrMalformedTypespec)},
		{"ListArity", `(type-alias T (List A B))`, is(parser.ErrMalformedTypespec)},
		{"BadPattern", `(match x ((foo y) 1))`, is(parser.ErrMalformedPattern)},
		{"NoClauses", `(match x)`, is(parser.ErrFormArity)},
		{"LexError", `(print "abc)`, func(err error) bool {
			return err != nil && strings.Contains(err.Error(), "unterminated string")
		}},
		{"TooDeep", nested(parser.MaxNesting + 1), func(err error) bool {
			var ferr *parser.FormError
			return errors.As(err, &ferr) && errors.Is(err, parser.ErrNestingTooDeep)
		}},
		{"QuoteTooDeep", strings.Repeat("`", parser.MaxNesting+1) + "a", is(parser.ErrNestingTooDeep)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := parser.ParseString(test.input)
			if !test.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func nested(depth int) string {
	return strings.Repeat("(list ", depth) + "1" + strings.Repeat(")", depth)
}

func TestParseNesting(t *testing.T) {
	exprs := parse(t, nested(parser.MaxNesting)+" "+nested(parser.MaxNesting))
	if len(exprs) != 2 {
		t.Fatal(exprs)
	}
}

func is(target error) func(error) bool {
	return func(err error) bool {
		return errors.Is(err, target)
	}
}

func TestReadData(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		output string
	}{
		{"Atoms", `a #t 3 1.5 'c' "s" :k`, `a #t 3 1.5 'c' "s" :k`},
		{"List", `(1 (2 3) ())`, `(1 (2 3) ())`},
		{"Dotted", `(1 2 . 3)`, `(1 2 . 3)`},
		{"DottedList", `(a . (b c))`, `(a b c)`},
		{"NestedQuote", "`x", `(quote x)`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			data, err := parser.ReadData(strings.NewReader(test.input))
			if err != nil {
				t.Fatal(err)
			}
			parts := make([]string, 0, len(data))
			for _, d := range data {
				parts = append(parts, d.String())
			}
			if got := strings.Join(parts, " "); got != test.output {
				t.Fatalf("%v, expected %v", got, test.output)
			}
		})
	}
}

func TestReadDataErrors(t *testing.T) {
	deep := strings.Repeat("(", parser.MaxNesting+1) + strings.Repeat(")", parser.MaxNesting+1)
	for _, input := range []string{`(1 2`, `(. 1)`, `(1 . 2 3)`, `)`, deep} {
		if _, err := parser.ReadData(strings.NewReader(input)); err == nil {
			t.Fatalf("%q: expected an error", input)
		}
	}
}
