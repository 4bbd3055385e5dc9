package types

import (
	"github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"
)

// Subst maps type variable IDs to the types that they have been bound
// to.
type Subst map[int]Type

// Apply replaces every bound variable in t. Bindings are followed
// until an unbound variable or a non-variable type is reached, so
// applying a substitution twice gives the same result as applying it
// once.
func (s Subst) Apply(t Type) Type {
	switch t := t.(type) {
	case Var:
		if b, ok := s[t.ID]; ok {
			return s.Apply(b)
		}
		return t
	case Con:
		if len(t.Args) == 0 {
			return t
		}
		return Con{Name: t.Name, Args: s.all(t.Args), Def: t.Def}
	case Tuple:
		return Tuple{Elems: s.all(t.Elems)}
	case List:
		return List{Elem: s.Apply(t.Elem)}
	case Func:
		return Func{Params: s.all(t.Params), Result: s.Apply(t.Result), Variadic: t.Variadic}
	case Sum:
		return Sum{Members: s.members(t.Members)}
	case Product:
		return Product{Members: s.members(t.Members)}
	default:
		return t
	}
}

func (s Subst) all(types []Type) []Type {
	return lo.Map(types, func(t Type, _ int) Type { return s.Apply(t) })
}

func (s Subst) members(members []Member) []Member {
	return lo.Map(members, func(m Member, _ int) Member {
		if m.Payload == nil {
			return m
		}
		return Member{Tag: m.Tag, Payload: s.Apply(m.Payload)}
	})
}

// FreeVars returns the set of type variables that occur in t.
func FreeVars(t Type) *set.Set[Var] {
	vars := set.New[Var](0)
	freeVars(vars, t)
	return vars
}

func freeVars(vars *set.Set[Var], t Type) {
	switch t := t.(type) {
	case Var:
		vars.Insert(t)
	case Con:
		for _, a := range t.Args {
			freeVars(vars, a)
		}
	case Tuple:
		for _, e := range t.Elems {
			freeVars(vars, e)
		}
	case List:
		freeVars(vars, t.Elem)
	case Func:
		for _, p := range t.Params {
			freeVars(vars, p)
		}
		freeVars(vars, t.Result)
	case Sum:
		memberVars(vars, t.Members)
	case Product:
		memberVars(vars, t.Members)
	}
}

func memberVars(vars *set.Set[Var], members []Member) {
	for _, m := range members {
		if m.Payload != nil {
			freeVars(vars, m.Payload)
		}
	}
}

func occurs(v Var, t Type) bool {
	return FreeVars(t).Contains(v)
}
