package typecheck

import (
	"slices"

	"deedles.dev/ream/ast"
	"deedles.dev/ream/types"
)

// typeName is an entry of the type-name table. Aliases are expanded
// wherever they are named. Algebraic types are referred to by name.
type typeName struct {
	def   *types.Def
	alias bool
}

// scope tracks the type variables named in a single declaration.
type scope struct {
	vars map[string]types.Var
}

func newScope(params []types.Var) *scope {
	sc := scope{vars: make(map[string]types.Var, len(params))}
	for _, p := range params {
		sc.vars[p.Hint] = p
	}
	return &sc
}

// Resolve converts a typespec into a type scheme that quantifies
// every type variable named in it.
func (c *Checker) Resolve(spec ast.Typespec) (sc *types.Scheme, err error) {
	defer c.catch(&err)

	t := c.resolve(spec, newScope(nil))
	return types.Generalize(nil, t), nil
}

func (c *Checker) resolve(spec ast.Typespec, sc *scope) types.Type {
	switch spec := spec.(type) {
	case *ast.BottomType:
		return types.Bottom{}

	case *ast.TypeName:
		return c.resolveName(spec, sc)

	case *ast.TupleType:
		return types.Tuple{Elems: c.resolveAll(spec.Elems, sc)}

	case *ast.ListType:
		return types.List{Elem: c.resolve(spec.Elem, sc)}

	case *ast.FunctionType:
		return types.Func{
			Params: c.resolveAll(spec.Params, sc),
			Result: c.resolve(spec.Result, sc),
		}

	case *ast.SumType:
		return types.Sum{Members: c.resolveMembers(spec.Members, sc)}

	case *ast.ProductType:
		return types.Product{Members: c.resolveMembers(spec.Members, sc)}

	case *ast.TypeApp:
		tn, ok := c.names[spec.Name]
		if !ok || len(tn.def.Params) != len(spec.Args) {
			c.fail(spec.Pos, &UnknownTypeError{Name: spec.Name, Args: len(spec.Args)})
		}
		args := c.resolveAll(spec.Args, sc)
		if tn.alias {
			return tn.def.Unfold(args)
		}
		return types.Con{Name: tn.def.Name, Args: args, Def: tn.def}

	default:
		panic(spec)
	}
}

func (c *Checker) resolveName(spec *ast.TypeName, sc *scope) types.Type {
	if t, ok := types.Builtin(spec.Name); ok {
		return t
	}

	if tn, ok := c.names[spec.Name]; ok {
		if len(tn.def.Params) != 0 {
			c.fail(spec.Pos, &UnknownTypeError{Name: spec.Name})
		}
		if tn.alias {
			return tn.def.Body
		}
		return types.Con{Name: tn.def.Name, Def: tn.def}
	}

	v, ok := sc.vars[spec.Name]
	if !ok {
		v = c.sup.Fresh(spec.Name)
		sc.vars[spec.Name] = v
	}
	return v
}

func (c *Checker) resolveAll(specs []ast.Typespec, sc *scope) []types.Type {
	r := make([]types.Type, 0, len(specs))
	for _, spec := range specs {
		r = append(r, c.resolve(spec, sc))
	}
	return r
}

func (c *Checker) resolveMembers(members []ast.Member, sc *scope) []types.Member {
	r := make([]types.Member, 0, len(members))
	for _, m := range members {
		tm := types.Member{Tag: m.Tag}
		if m.Payload != nil {
			tm.Payload = c.resolve(m.Payload, sc)
		}
		r = append(r, tm)
	}
	return r
}

// params returns the names in spec that will become type variables,
// in the order that they first appear. self is treated as a known
// type name.
func (c *Checker) params(spec ast.Typespec, self string) []string {
	var names []string
	var walk func(ast.Typespec)
	walkMembers := func(members []ast.Member) {
		for _, m := range members {
			if m.Payload != nil {
				walk(m.Payload)
			}
		}
	}
	walk = func(spec ast.Typespec) {
		switch spec := spec.(type) {
		case *ast.TypeName:
			if _, ok := types.Builtin(spec.Name); ok {
				return
			}
			if _, ok := c.names[spec.Name]; ok || spec.Name == self {
				return
			}
			if !slices.Contains(names, spec.Name) {
				names = append(names, spec.Name)
			}
		case *ast.TupleType:
			for _, e := range spec.Elems {
				walk(e)
			}
		case *ast.ListType:
			walk(spec.Elem)
		case *ast.FunctionType:
			for _, p := range spec.Params {
				walk(p)
			}
			walk(spec.Result)
		case *ast.SumType:
			walkMembers(spec.Members)
		case *ast.ProductType:
			walkMembers(spec.Members)
		case *ast.TypeApp:
			for _, a := range spec.Args {
				walk(a)
			}
		}
	}
	walk(spec)
	return names
}

// declareType registers a type alias or an algebraic type named name.
func (c *Checker) declareType(name string, spec ast.Typespec, alias bool) *types.Def {
	self := name
	if alias {
		self = ""
	}
	names := c.params(spec, self)
	def := types.Def{Name: name, Params: make([]types.Var, 0, len(names))}
	for _, n := range names {
		def.Params = append(def.Params, c.sup.Fresh(n))
	}

	sc := newScope(def.Params)
	if alias {
		def.Body = c.resolve(spec, sc)
		c.names[name] = typeName{def: &def, alias: true}
		return &def
	}

	c.names[name] = typeName{def: &def}
	def.Body = c.resolve(spec, sc)
	for _, m := range def.Members() {
		c.tags[m.Tag] = &def
	}
	return &def
}

// instance returns a fresh instance of the algebraic type def.
func (c *Checker) instance(def *types.Def) types.Con {
	args := make([]types.Type, 0, len(def.Params))
	for _, p := range def.Params {
		args = append(args, c.sup.Fresh(p.Hint))
	}
	return types.Con{Name: def.Name, Args: args, Def: def}
}
