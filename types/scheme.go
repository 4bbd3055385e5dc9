package types

import (
	"cmp"
	"slices"

	"github.com/hashicorp/go-set/v3"
)

// Scheme is a possibly polymorphic type. Each of Vars is quantified
// and replaced by a fresh variable every time that the scheme is
// instantiated.
type Scheme struct {
	Vars []Var
	Type Type
}

// Mono returns a scheme that quantifies no variables.
func Mono(t Type) *Scheme {
	return &Scheme{Type: t}
}

// Generalize quantifies every variable of t that is not in envFree.
// t should already have had the current substitution applied to it.
func Generalize(envFree *set.Set[Var], t Type) *Scheme {
	var vars []Var
	for _, v := range FreeVars(t).Slice() {
		if envFree == nil || !envFree.Contains(v) {
			vars = append(vars, v)
		}
	}
	slices.SortFunc(vars, func(a, b Var) int { return cmp.Compare(a.ID, b.ID) })
	return &Scheme{Vars: vars, Type: t}
}

// Instantiate returns the scheme's type with every quantified
// variable replaced by a fresh one from sup. The fresh variables keep
// the hints of the ones that they replace.
func (sc *Scheme) Instantiate(sup *Supply) Type {
	if len(sc.Vars) == 0 {
		return sc.Type
	}

	s := make(Subst, len(sc.Vars))
	for _, v := range sc.Vars {
		s[v.ID] = sup.Fresh(v.Hint)
	}
	return s.Apply(sc.Type)
}

// FreeVars returns the variables of the scheme's type that are not
// quantified.
func (sc *Scheme) FreeVars() *set.Set[Var] {
	vars := FreeVars(sc.Type)
	for _, v := range sc.Vars {
		vars.Remove(v)
	}
	return vars
}

func (sc *Scheme) String() string {
	return sc.Type.String()
}

// Supply hands out fresh type variables. The zero value is ready to
// use.
type Supply struct {
	next int
}

// Fresh returns a type variable that has never been returned before
// by this Supply.
func (sup *Supply) Fresh(hint string) Var {
	sup.next++
	return Var{ID: sup.next, Hint: hint}
}
