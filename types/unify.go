package types

import "fmt"

// Unify extends s so that a and b become the same type. a is treated
// as the expected type and b as the actual one when reporting a
// mismatch. If s is nil, a new substitution is allocated.
//
// On failure, s may have been partially extended.
func Unify(a, b Type, s Subst) (Subst, error) {
	if s == nil {
		s = make(Subst)
	}
	return s, unify(s, a, b)
}

func unify(s Subst, a, b Type) error {
	a, b = s.Apply(a), s.Apply(b)

	if av, ok := a.(Var); ok {
		return bind(s, av, b)
	}
	if bv, ok := b.(Var); ok {
		return bind(s, bv, a)
	}

	mismatch := func() error {
		return &MismatchError{Want: a, Got: b}
	}

	switch a := a.(type) {
	case Bottom:
		if _, ok := b.(Bottom); ok {
			return nil
		}

	case Con:
		switch b := b.(type) {
		case Con:
			if a.Name != b.Name || len(a.Args) != len(b.Args) {
				return mismatch()
			}
			return unifyAll(s, a.Args, b.Args)
		case Sum, Product:
			if a.Def != nil {
				return unify(s, a.Def.Unfold(a.Args), b)
			}
		}

	case Tuple:
		if b, ok := b.(Tuple); ok && len(a.Elems) == len(b.Elems) {
			return unifyAll(s, a.Elems, b.Elems)
		}

	case List:
		if b, ok := b.(List); ok {
			return unify(s, a.Elem, b.Elem)
		}

	case Func:
		b, ok := b.(Func)
		if !ok || len(a.Params) != len(b.Params) || a.Variadic != b.Variadic {
			return mismatch()
		}
		if err := unifyAll(s, a.Params, b.Params); err != nil {
			return err
		}
		return unify(s, a.Result, b.Result)

	case Sum:
		switch b := b.(type) {
		case Sum:
			return unifyMembers(s, a.Members, b.Members, mismatch)
		case Con:
			if b.Def != nil {
				return unify(s, a, b.Def.Unfold(b.Args))
			}
		}

	case Product:
		switch b := b.(type) {
		case Product:
			return unifyMembers(s, a.Members, b.Members, mismatch)
		case Con:
			if b.Def != nil {
				return unify(s, a, b.Def.Unfold(b.Args))
			}
		}
	}

	return mismatch()
}

func bind(s Subst, v Var, t Type) error {
	if tv, ok := t.(Var); ok && tv.ID == v.ID {
		return nil
	}
	if occurs(v, t) {
		return &InfiniteTypeError{Var: v, Type: t}
	}
	s[v.ID] = t
	return nil
}

func unifyAll(s Subst, as, bs []Type) error {
	for i := range as {
		if err := unify(s, as[i], bs[i]); err != nil {
			return err
		}
	}
	return nil
}

func unifyMembers(s Subst, as, bs []Member, mismatch func() error) error {
	if len(as) != len(bs) {
		return mismatch()
	}
	for i := range as {
		a, b := as[i], bs[i]
		if a.Tag != b.Tag || (a.Payload == nil) != (b.Payload == nil) {
			return mismatch()
		}
		if a.Payload == nil {
			continue
		}
		if err := unify(s, a.Payload, b.Payload); err != nil {
			return err
		}
	}
	return nil
}

// MismatchError is returned when two types cannot be unified.
type MismatchError struct {
	Want, Got Type
}

func (err *MismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %v, got %v", err.Want, err.Got)
}

// InfiniteTypeError is returned when unification would bind a type
// variable to a type containing that same variable.
type InfiniteTypeError struct {
	Var  Var
	Type Type
}

func (err *InfiniteTypeError) Error() string {
	return fmt.Sprintf("infinite type: %v occurs in %v", err.Var, err.Type)
}
