package types_test

import (
	"errors"
	"testing"

	"deedles.dev/ream/types"
	"github.com/hashicorp/go-set/v3"
)

func TestString(t *testing.T) {
	a := types.Var{ID: 1, Hint: "A"}
	tests := []struct {
		name string
		typ  types.Type
		ex   string
	}{
		{"Builtin", types.Integer, "Integer"},
		{"Var", types.Var{ID: 3}, "t3"},
		{"Function", types.Func{Params: []types.Type{types.List{Elem: a}}, Result: a}, "(Function (List A) A)"},
		{"Tuple", types.Tuple{Elems: []types.Type{types.Integer, types.String}}, "(Tuple Integer String)"},
		{"Sum", types.Sum{Members: []types.Member{{Tag: "Some", Payload: a}, {Tag: "None"}}}, "(Sum (:Some A) :None)"},
		{"Applied", types.Con{Name: "Option", Args: []types.Type{types.Integer}}, "(Option Integer)"},
		{"Bottom", types.Bottom{}, "Bottom"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			if s := test.typ.String(); s != test.ex {
				t.Fatalf("%q, expected %q", s, test.ex)
			}
		})
	}
}

func TestApplyIdempotent(t *testing.T) {
	a, b, c := types.Var{ID: 1}, types.Var{ID: 2}, types.Var{ID: 3}
	s := types.Subst{
		a.ID: types.List{Elem: b},
		b.ID: types.Tuple{Elems: []types.Type{c, types.Integer}},
		c.ID: types.Boolean,
	}

	typ := types.Func{Params: []types.Type{a, b}, Result: c}
	once := s.Apply(typ)
	twice := s.Apply(once)
	if once.String() != twice.String() {
		t.Fatalf("%v != %v", once, twice)
	}
	if ex := "(Function (List (Tuple Boolean Integer)) (Tuple Boolean Integer) Boolean)"; once.String() != ex {
		t.Fatalf("%v, expected %v", once, ex)
	}
}

func TestUnify(t *testing.T) {
	var sup types.Supply
	a, b := sup.Fresh("A"), sup.Fresh("")

	s, err := types.Unify(
		types.Func{Params: []types.Type{types.List{Elem: a}}, Result: a},
		types.Func{Params: []types.Type{types.List{Elem: types.Integer}}, Result: b},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	if r := s.Apply(b); r.String() != "Integer" {
		t.Fatal(r)
	}
}

func TestUnifyMismatch(t *testing.T) {
	var sup types.Supply
	a := sup.Fresh("A")

	_, err := types.Unify(types.List{Elem: a}, types.Integer, nil)
	var merr *types.MismatchError
	if !errors.As(err, &merr) {
		t.Fatalf("unexpected error: %v", err)
	}
	if merr.Want.String() != "(List A)" || merr.Got.String() != "Integer" {
		t.Fatal(merr)
	}
}

func TestUnifyOccurs(t *testing.T) {
	var sup types.Supply
	a := sup.Fresh("")

	_, err := types.Unify(a, types.List{Elem: a}, nil)
	var ierr *types.InfiniteTypeError
	if !errors.As(err, &ierr) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnifyMembers(t *testing.T) {
	ab := types.Sum{Members: []types.Member{{Tag: "A"}, {Tag: "B"}}}
	ac := types.Sum{Members: []types.Member{{Tag: "A"}, {Tag: "C"}}}

	if _, err := types.Unify(ab, ab, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := types.Unify(ab, ac, nil); err == nil {
		t.Fatal("unified sums with different tags")
	}
	if _, err := types.Unify(ab, types.Product{Members: ab.Members}, nil); err == nil {
		t.Fatal("unified a sum with a product")
	}
}

func TestUnifyUnfold(t *testing.T) {
	var sup types.Supply
	p := sup.Fresh("A")
	def := &types.Def{
		Name:   "Option",
		Params: []types.Var{p},
		Body:   types.Sum{Members: []types.Member{{Tag: "Some", Payload: p}, {Tag: "None"}}},
	}

	a := sup.Fresh("")
	named := types.Con{Name: "Option", Args: []types.Type{a}, Def: def}
	structural := types.Sum{Members: []types.Member{{Tag: "Some", Payload: types.String}, {Tag: "None"}}}

	s, err := types.Unify(named, structural, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r := s.Apply(named); r.String() != "(Option String)" {
		t.Fatal(r)
	}
}

func TestUnifyFunc(t *testing.T) {
	f1 := types.Func{Params: []types.Type{types.Integer}, Result: types.Integer}
	f2 := types.Func{Params: []types.Type{types.Integer, types.Integer}, Result: types.Integer}
	if _, err := types.Unify(f1, f2, nil); err == nil {
		t.Fatal("unified functions of different arity")
	}

	v := types.Func{Params: []types.Type{types.List{Elem: types.Integer}}, Result: types.Integer, Variadic: true}
	l := types.Func{Params: []types.Type{types.List{Elem: types.Integer}}, Result: types.Integer}
	if _, err := types.Unify(v, l, nil); err == nil {
		t.Fatal("unified a variadic function with a fixed one")
	}

	if _, err := types.Unify(types.Bottom{}, types.Integer, nil); err == nil {
		t.Fatal("unified Bottom with Integer")
	}
}

func TestGeneralize(t *testing.T) {
	var sup types.Supply
	a, b := sup.Fresh("A"), sup.Fresh("B")
	typ := types.Func{Params: []types.Type{a}, Result: b}

	envFree := set.New[types.Var](1)
	envFree.Insert(b)
	sc := types.Generalize(envFree, typ)
	if len(sc.Vars) != 1 || sc.Vars[0] != a {
		t.Fatal(sc.Vars)
	}

	inst := sc.Instantiate(&sup).(types.Func)
	if inst.Params[0] == types.Type(a) {
		t.Fatal("instantiation did not replace the quantified variable")
	}
	if inst.Result != types.Type(b) {
		t.Fatal("instantiation replaced a free variable")
	}
	if inst.Params[0].String() != "A" {
		t.Fatal(inst.Params[0])
	}
	if free := sc.FreeVars(); free.Size() != 1 || !free.Contains(b) {
		t.Fatal(free)
	}
}
