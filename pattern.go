package ream

import (
	"context"
	"slices"

	"deedles.dev/ream/ast"
	"deedles.dev/xiter"
	"github.com/samber/lo"
)

// matcher checks val against a pattern. If it matches, it returns env
// extended with the pattern's bindings.
type matcher func(env *Env, val Value) (*Env, bool)

func compilePattern(pat ast.Pattern) matcher {
	switch pat := pat.(type) {
	case *ast.WildcardPattern:
		return func(env *Env, val Value) (*Env, bool) { return env, true }
	case *ast.BindPattern:
		return assignMatcher(pat.Name)
	case *ast.LiteralPattern:
		return equalityMatcher(quote(pat.Val))
	case *ast.TagPattern:
		return tagMatcher(pat)
	case *ast.TuplePattern:
		return tupleMatcher(pat)
	case *ast.ConsPattern:
		return consMatcher(pat)
	case *ast.NilPattern:
		return func(env *Env, val Value) (*Env, bool) {
			list, ok := val.(*List)
			return env, ok && list.Len() == 0
		}
	default:
		panic(pat)
	}
}

func equalityMatcher(val Value) matcher {
	return func(env *Env, v Value) (*Env, bool) {
		return env, Equal(val, v)
	}
}

func assignMatcher(name string) matcher {
	return func(env *Env, val Value) (*Env, bool) {
		return env.Let(name, val), true
	}
}

func tagMatcher(pat *ast.TagPattern) matcher {
	tag := MakeAtom(pat.Tag)
	var payload matcher
	if pat.Payload != nil {
		payload = compilePattern(pat.Payload)
	}

	return func(env *Env, val Value) (*Env, bool) {
		s, ok := val.(*SumVal)
		if !ok || s.Tag != tag {
			return env, false
		}
		if payload == nil {
			return env, true
		}
		return payload(env, s.Payload)
	}
}

func tupleMatcher(pat *ast.TuplePattern) matcher {
	matchers := lo.Map(pat.Elems, func(p ast.Pattern, _ int) matcher { return compilePattern(p) })

	return func(env *Env, val Value) (_ *Env, ok bool) {
		p, ok := val.(*ProductVal)
		if !ok || len(p.Fields) != len(matchers) {
			return env, false
		}

		for i, v := range xiter.Enumerate(slices.Values(p.Fields)) {
			env, ok = matchers[i](env, v)
			if !ok {
				return env, false
			}
		}
		return env, true
	}
}

func consMatcher(pat *ast.ConsPattern) matcher {
	head := compilePattern(pat.Head)
	tail := compilePattern(pat.Tail)

	return func(env *Env, val Value) (_ *Env, ok bool) {
		list, ok := val.(*List)
		if !ok || list.Len() == 0 {
			return env, false
		}

		env, ok = head(env, list.Head())
		if !ok {
			return env, false
		}
		return tail(env, list.Tail())
	}
}

func evalMatch(ctx context.Context, env *Env, expr *ast.Match) (Value, *Env, error) {
	subject, _, err := Eval(ctx, env, expr.Subject)
	if err != nil {
		return nil, env, err
	}

	for _, clause := range expr.Clauses {
		cenv, ok := compilePattern(clause.Pattern)(env, subject)
		if !ok {
			continue
		}
		v, _, err := evalBody(ctx, cenv, clause.Body)
		return v, env, err
	}
	return nil, env, fail(expr.Pos, &MatchError{Val: subject})
}
