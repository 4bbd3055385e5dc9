package typecheck

import (
	"deedles.dev/ream/ast"
	"deedles.dev/ream/literal"
	"deedles.dev/ream/types"
	"github.com/hashicorp/go-set/v3"
)

func (c *Checker) match(env *Env, expr *ast.Match) types.Type {
	subject := c.operand(env, expr.Subject)
	result := types.Type(c.fresh())

	patterns := make([]ast.Pattern, 0, len(expr.Clauses))
	for _, clause := range expr.Clauses {
		inner := env.child()
		c.unify(clause.Pattern.Position(), subject, c.pattern(inner, clause.Pattern))
		c.unify(clause.Body[len(clause.Body)-1].Position(), result, c.body(inner, clause.Body))
		patterns = append(patterns, clause.Pattern)
	}

	subject = c.subst.Apply(subject)
	if missing := c.missing(subject, patterns); len(missing) > 0 {
		c.fail(expr.Pos, &NonExhaustiveError{Type: subject, Missing: missing})
	}
	return result
}

// pattern returns the type of values that pat can match, binding the
// names in it in env.
func (c *Checker) pattern(env *Env, pat ast.Pattern) types.Type {
	switch pat := pat.(type) {
	case *ast.WildcardPattern:
		return c.fresh()

	case *ast.BindPattern:
		v := c.fresh()
		env.bind(pat.Name, types.Mono(v))
		return v

	case *ast.LiteralPattern:
		return c.literal(pat.Val)

	case *ast.TagPattern:
		return c.tagPattern(env, pat)

	case *ast.TuplePattern:
		elems := make([]types.Type, 0, len(pat.Elems))
		for _, e := range pat.Elems {
			elems = append(elems, c.pattern(env, e))
		}
		return types.Tuple{Elems: elems}

	case *ast.ConsPattern:
		elem := c.fresh()
		c.unify(pat.Head.Position(), elem, c.pattern(env, pat.Head))
		list := types.List{Elem: elem}
		c.unify(pat.Tail.Position(), list, c.pattern(env, pat.Tail))
		return list

	case *ast.NilPattern:
		return types.List{Elem: c.fresh()}

	default:
		panic(pat)
	}
}

func (c *Checker) tagPattern(env *Env, pat *ast.TagPattern) types.Type {
	def, ok := c.tags[pat.Tag]
	if !ok || !def.IsSum() {
		c.fail(pat.Pos, &UnboundError{Name: ":" + pat.Tag})
	}

	con := c.instance(def)
	m, _ := def.Member(pat.Tag, con.Args)
	switch {
	case m.Payload == nil && pat.Payload != nil:
		c.fail(pat.Pos, &ArityError{Want: 0, Got: 1})
	case m.Payload != nil && pat.Payload == nil:
		c.fail(pat.Pos, &ArityError{Want: 1, Got: 0})
	case m.Payload != nil:
		c.unify(pat.Payload.Position(), m.Payload, c.pattern(env, pat.Payload))
	}
	return con
}

// irrefutable reports whether pat matches every value of its type.
func irrefutable(pat ast.Pattern) bool {
	switch pat := pat.(type) {
	case *ast.WildcardPattern, *ast.BindPattern:
		return true
	case *ast.TuplePattern:
		for _, e := range pat.Elems {
			if !irrefutable(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// missing returns descriptions of the values of type t that none of
// patterns match. It is conservative. Only the top level of each
// pattern is considered, so a case is covered only by a pattern that
// matches all of it.
func (c *Checker) missing(t types.Type, patterns []ast.Pattern) []string {
	for _, pat := range patterns {
		if irrefutable(pat) {
			return nil
		}
	}

	switch t := t.(type) {
	case types.Con:
		if t.Def != nil && t.Def.IsSum() {
			return missingTags(t.Def.Members(), patterns)
		}
		if t.Name == "Boolean" {
			return missingBools(patterns)
		}
	case types.Sum:
		return missingTags(t.Members, patterns)
	case types.List:
		return missingList(patterns)
	}
	return []string{"_"}
}

func missingTags(members []types.Member, patterns []ast.Pattern) []string {
	covered := set.New[string](len(members))
	for _, pat := range patterns {
		tag, ok := pat.(*ast.TagPattern)
		if ok && (tag.Payload == nil || irrefutable(tag.Payload)) {
			covered.Insert(tag.Tag)
		}
	}

	var missing []string
	for _, m := range members {
		if !covered.Contains(m.Tag) {
			missing = append(missing, ":"+m.Tag)
		}
	}
	return missing
}

func missingBools(patterns []ast.Pattern) []string {
	var t, f bool
	for _, pat := range patterns {
		if lit, ok := pat.(*ast.LiteralPattern); ok {
			switch lit.Val {
			case literal.Bool(true):
				t = true
			case literal.Bool(false):
				f = true
			}
		}
	}

	var missing []string
	if !t {
		missing = append(missing, "#t")
	}
	if !f {
		missing = append(missing, "#f")
	}
	return missing
}

func missingList(patterns []ast.Pattern) []string {
	var empty, cons bool
	for _, pat := range patterns {
		switch pat := pat.(type) {
		case *ast.NilPattern:
			empty = true
		case *ast.ConsPattern:
			if irrefutable(pat.Head) && irrefutable(pat.Tail) {
				cons = true
			}
		}
	}

	var missing []string
	if !empty {
		missing = append(missing, "()")
	}
	if !cons {
		missing = append(missing, "(cons _ _)")
	}
	return missing
}
