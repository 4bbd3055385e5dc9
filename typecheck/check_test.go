package typecheck_test

import (
	"errors"
	"testing"

	"deedles.dev/ream/parser"
	"deedles.dev/ream/typecheck"
	"deedles.dev/ream/types"
)

var builtins = map[string]string{
	"+":             "(Function Integer Integer Integer)",
	"-":             "(Function Integer Integer Integer)",
	"<=":            "(Function Integer Integer Boolean)",
	"car":           "(Function (List A) A)",
	"cons":          "(Function A (List A) (List A))",
	"string-append": "(Function String String String)",
	"list":          "(Function (List A) (List A))",
	"tuple2":        "(Function A B (Tuple A B))",
}

func newChecker(t testing.TB) *typecheck.Checker {
	c := typecheck.New()
	for name, src := range builtins {
		spec, err := parser.ParseTypespec(src)
		if err != nil {
			t.Fatal(err)
		}
		sc, err := c.Resolve(spec)
		if err != nil {
			t.Fatal(err)
		}
		if name == "list" {
			f := sc.Type.(types.Func)
			f.Variadic = true
			sc.Type = f
		}
		c.Define(name, sc)
	}
	return c
}

func check(c *typecheck.Checker, src string) ([]types.Type, error) {
	prog, err := parser.ParseString(src)
	if err != nil {
		return nil, err
	}
	return c.Check(prog)
}

// checkTypes checks src and compares the resulting types against ex.
// An empty string in ex skips the comparison for that expression.
func checkTypes(t *testing.T, src string, ex ...string) {
	ts, err := check(newChecker(t), src)
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != len(ex) {
		t.Fatalf("got %v types, expected %v", len(ts), len(ex))
	}
	for i, typ := range ts {
		if ex[i] != "" && typ.String() != ex[i] {
			t.Fatalf("expression %v: %v, expected %v", i, typ, ex[i])
		}
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ex   []string
	}{
		{
			"Fib",
			`(fn fib (n) (if (<= n 2) 1 (+ (fib (- n 1)) (fib (- n 2))))) (fib 10)`,
			[]string{"(Function Integer Integer)", "Integer"},
		},
		{
			"CarPolymorphism",
			`(car (quote (1 2))) (car (quote ("a" "b"))) (let first car) (first (quote (#t))) (first (quote ('a')))`,
			[]string{"Integer", "String", "(Function (List A) A)", "Boolean", "Character"},
		},
		{
			"SeqScoping",
			`(let x 1) (seq (let x "s") x) x`,
			[]string{"Integer", "String", "Integer"},
		},
		{
			"EmptySeq",
			`(seq)`,
			[]string{"Bottom"},
		},
		{
			"Variadic",
			`(list 1 2 3) ((lambda xs (car xs)) "a" "b")`,
			[]string{"(List Integer)", "String"},
		},
		{
			"IfWithoutElse",
			`(if #f "no")`,
			[]string{"String"},
		},
		{
			"Quoted",
			`(quote (1 . "a")) (quote sym) (quote :tag)`,
			[]string{"(Tuple Integer String)", "Atom", "Atom"},
		},
		{
			"Atoms",
			`:plain`,
			[]string{"Atom"},
		},
		{
			"LetRecursion",
			`(let count (lambda (n) (if (<= n 0) 0 (count (- n 1))))) (count 3)`,
			[]string{"(Function Integer Integer)", "Integer"},
		},
		{
			"HigherOrder",
			`(fn twice (f x) (f (f x))) (twice (lambda (n) (+ n 1)) 2) (twice (lambda (s) (string-append s "!")) "hi")`,
			[]string{"", "Integer", "String"},
		},
		{
			"Declarations",
			`(type-alias Name String) (:doc greet "Greets.") (fn greet (n) (string-append "hi " n)) (:type greet (Function Name Name))`,
			[]string{"Atom", "Atom", "(Function String String)", "Atom"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			checkTypes(t, test.src, test.ex...)
		})
	}
}

func TestAlgebraic(t *testing.T) {
	src := `
	(define-type Option (Sum (:Some A) :None))
	(:Some 5)
	:None
	(fn get-or (o d) (match o ((:Some v) v) (:None d)))
	(get-or (:Some "x") "y")
	(define-type Point (Product (:x Integer) (:y Integer)))
	(:y (Point 1 2))
	(type-alias Pair (Tuple A A))
	(:type swap (Function (Pair B) (Pair B)))
	`

	checkTypes(t, src,
		"Atom",
		"(Option Integer)",
		"(Option A)",
		"",
		"String",
		"Atom",
		"Integer",
		"Atom",
		"Atom",
	)
}

func TestRecursiveType(t *testing.T) {
	src := `
	(define-type Tree (Sum :Leaf (:Node (Tuple Tree Tree))))
	(fn size (t) (match t (:Leaf 0) ((:Node (tuple l r)) (+ 1 (+ (size l) (size r))))))
	(size (:Node (tuple2 :Leaf (:Node (tuple2 :Leaf :Leaf)))))
	(define-type Stack (Sum :Empty (:Push (Tuple A (Stack A)))))
	(:Push (tuple2 1 :Empty))
	`

	checkTypes(t, src,
		"Atom",
		"(Function Tree Integer)",
		"Integer",
		"Atom",
		"(Stack Integer)",
	)
}

func TestCheckErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(*testing.T, error)
	}{
		{"CarMismatch", `(car 5)`, func(t *testing.T, err error) {
			var merr *types.MismatchError
			if !errors.As(err, &merr) {
				t.Fatalf("unexpected error: %v", err)
			}
			if merr.Want.String() != "(List A)" || merr.Got.String() != "Integer" {
				t.Fatal(merr)
			}
			var terr *typecheck.Error
			if !errors.As(err, &terr) || terr.Line != 1 || terr.Col != 6 {
				t.Fatalf("unexpected error: %#v", err)
			}
		}},
		{"Unbound", `(+ x 1)`, func(t *testing.T, err error) {
			var uerr *typecheck.UnboundError
			if !errors.As(err, &uerr) || uerr.Name != "x" {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"Arity", `(+ 1)`, func(t *testing.T, err error) {
			var aerr *typecheck.ArityError
			if !errors.As(err, &aerr) || aerr.Want != 2 || aerr.Got != 1 {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"IfBranches", `(if #t 1 "one")`, func(t *testing.T, err error) {
			var merr *types.MismatchError
			if !errors.As(err, &merr) {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"IfTest", `(if 1 2 3)`, func(t *testing.T, err error) {
			var merr *types.MismatchError
			if !errors.As(err, &merr) || merr.Want.String() != "Boolean" {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"NotAFunction", `(5 1)`, func(t *testing.T, err error) {
			var merr *types.MismatchError
			if !errors.As(err, &merr) || merr.Got.String() != "Integer" {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"Infinite", `(fn f (x) (f f))`, func(t *testing.T, err error) {
			var ierr *types.InfiniteTypeError
			if !errors.As(err, &ierr) {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"AnnotationMismatch", `(:type f (Function Integer Integer)) (fn f (x) (string-append x "a"))`, func(t *testing.T, err error) {
			var aerr *typecheck.AnnotationError
			if !errors.As(err, &aerr) || aerr.Name != "f" {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"AnnotationRigid", `(:type id (Function A A)) (fn id (x) (+ x 1))`, func(t *testing.T, err error) {
			var aerr *typecheck.AnnotationError
			if !errors.As(err, &aerr) {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"AnnotationAfter", `(fn inc (x) (+ x 1)) (:type inc (Function String String))`, func(t *testing.T, err error) {
			var aerr *typecheck.AnnotationError
			if !errors.As(err, &aerr) {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"NonExhaustive", `(define-type Option (Sum (:Some A) :None)) (match (:Some 1) ((:Some x) x))`, func(t *testing.T, err error) {
			var nerr *typecheck.NonExhaustiveError
			if !errors.As(err, &nerr) || len(nerr.Missing) != 1 || nerr.Missing[0] != ":None" {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"NonExhaustiveList", `(match (quote (1 2)) ((cons x _) x))`, func(t *testing.T, err error) {
			var nerr *typecheck.NonExhaustiveError
			if !errors.As(err, &nerr) || len(nerr.Missing) != 1 || nerr.Missing[0] != "()" {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"NonExhaustiveInteger", `(match 3 (1 "one") (2 "two"))`, func(t *testing.T, err error) {
			var nerr *typecheck.NonExhaustiveError
			if !errors.As(err, &nerr) {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"UnknownType", `(:type f (Function (Maybe Integer) Integer))`, func(t *testing.T, err error) {
			var uerr *typecheck.UnknownTypeError
			if !errors.As(err, &uerr) || uerr.Name != "Maybe" {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"UnknownTag", `(define-type Color (Sum :Red :Blue)) (match :Red (:Green 1) (_ 2))`, func(t *testing.T, err error) {
			var uerr *typecheck.UnboundError
			if !errors.As(err, &uerr) || uerr.Name != ":Green" {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"Include", `(include "lib.rm")`, func(t *testing.T, err error) {
			if !errors.Is(err, typecheck.ErrUnexpandedInclude) {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"NestedTypeDef", `(seq (define-type Color (Sum :Red :Blue)) :Red)`, func(t *testing.T, err error) {
			if !errors.Is(err, typecheck.ErrNestedTypeDef) {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"BranchBinding", `(if #t (let q 1) 2) q`, func(t *testing.T, err error) {
			var uerr *typecheck.UnboundError
			if !errors.As(err, &uerr) || uerr.Name != "q" {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
		{"OperandBinding", `(+ (let q 1) q)`, func(t *testing.T, err error) {
			var uerr *typecheck.UnboundError
			if !errors.As(err, &uerr) || uerr.Name != "q" {
				t.Fatalf("unexpected error: %v", err)
			}
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := check(newChecker(t), test.src)
			if err == nil {
				t.Fatal("expected an error")
			}
			test.check(t, err)
		})
	}
}

func TestAnnotations(t *testing.T) {
	c := newChecker(t)
	_, err := check(c, `
	(fn id (x) x)
	(:type id (Function A A))
	(:type inc (Function Integer Integer))
	(:doc inc "Adds one.")
	(fn inc (x) x)
	`)
	if err != nil {
		t.Fatal(err)
	}

	sc, ok := c.Global().Lookup("inc")
	if !ok || sc.String() != "(Function Integer Integer)" {
		t.Fatal(sc)
	}
	sc, ok = c.Global().Lookup("id")
	if !ok || sc.String() != "(Function A A)" {
		t.Fatal(sc)
	}
	if doc, ok := c.Global().Doc("inc"); !ok || doc != "Adds one." {
		t.Fatal(doc)
	}
}

func TestCheckRollback(t *testing.T) {
	c := newChecker(t)
	if _, err := check(c, `(let a 1) (car 5)`); err == nil {
		t.Fatal("expected an error")
	}

	_, err := check(c, `a`)
	var uerr *typecheck.UnboundError
	if !errors.As(err, &uerr) {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := check(c, `(let b 2)`); err != nil {
		t.Fatal(err)
	}
	ts, err := check(c, `(+ b 1)`)
	if err != nil {
		t.Fatal(err)
	}
	if ts[0].String() != "Integer" {
		t.Fatal(ts[0])
	}
}

func TestSnapshot(t *testing.T) {
	c := newChecker(t)
	snap := c.Snapshot()

	for range 2 {
		if _, err := check(c, `(define-type Color (Sum :Red :Blue)) (let a 1)`); err != nil {
			t.Fatal(err)
		}
		if _, ok := c.Tag("Red"); !ok {
			t.Fatal("tag not declared")
		}

		c.Restore(snap)
		if _, ok := c.Global().Lookup("a"); ok {
			t.Fatal("a still bound")
		}
		if _, ok := c.Tag("Red"); ok {
			t.Fatal("tag still declared")
		}
	}

	if _, ok := c.Global().Lookup("car"); !ok {
		t.Fatal("builtin lost")
	}
}

func TestTag(t *testing.T) {
	c := newChecker(t)
	_, err := check(c, `
	(define-type Option (Sum (:Some A) :None))
	(define-type Point (Product (:x Integer) (:y Integer)))
	`)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		tag  string
		name string
		sum  bool
	}{
		{"Some", "Option", true},
		{"None", "Option", true},
		{"y", "Point", false},
	}
	for _, test := range tests {
		def, ok := c.Tag(test.tag)
		if !ok || def.Name != test.name || def.IsSum() != test.sum {
			t.Fatalf("%v: %#v", test.tag, def)
		}
	}

	if _, ok := c.Tag("Other"); ok {
		t.Fatal("unknown tag found")
	}
}
