// Package typecheck infers and checks the types of Ream programs
// using Hindley-Milner inference extended with algebraic types.
package typecheck

import (
	"io"
	"log/slog"
	"maps"

	"deedles.dev/ream/ast"
	"deedles.dev/ream/literal"
	"deedles.dev/ream/types"
)

// Checker checks programs against a persistent global frame. Each
// call to Check sees the bindings and types declared by the previous
// successful calls.
type Checker struct {
	log   *slog.Logger
	sup   types.Supply
	subst types.Subst

	global *Env
	names  map[string]typeName
	tags   map[string]*types.Def
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger that the checker reports inferred types
// to at debug level.
func WithLogger(log *slog.Logger) Option {
	return func(c *Checker) {
		c.log = log
	}
}

// New returns a Checker with an empty global frame.
func New(opts ...Option) *Checker {
	c := Checker{
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		subst:  make(types.Subst),
		global: NewEnv(nil),
		names:  make(map[string]typeName),
		tags:   make(map[string]*types.Def),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Global returns the checker's global frame.
func (c *Checker) Global() *Env {
	return c.global
}

// Define binds name to sc in the global frame.
func (c *Checker) Define(name string, sc *types.Scheme) {
	c.global.bind(name, sc)
}

// Tag returns the algebraic type that declares tag.
func (c *Checker) Tag(tag string) (*types.Def, bool) {
	def, ok := c.tags[tag]
	return def, ok
}

// Check checks every expression of prog in the global frame and
// returns their types. If any expression fails to check, none of the
// bindings or types declared by prog are kept.
func (c *Checker) Check(prog []ast.Expr) (ts []types.Type, err error) {
	snap := c.Snapshot()
	defer func() {
		if err != nil {
			c.Restore(snap)
		}
	}()
	defer c.catch(&err)

	ts = make([]types.Type, 0, len(prog))
	for _, expr := range prog {
		ts = append(ts, c.infer(c.global, expr))
	}
	for i, t := range ts {
		ts[i] = c.subst.Apply(t)
		c.log.Debug("checked", "pos", prog[i].Position(), "type", ts[i])
	}
	return ts, nil
}

// Infer infers the type of a single expression in env.
func (c *Checker) Infer(expr ast.Expr, env *Env) (t types.Type, err error) {
	defer c.catch(&err)

	return c.subst.Apply(c.infer(env, expr)), nil
}

// Snapshot is a saved copy of a checker's global declarations.
type Snapshot struct {
	vars  map[string]binding
	names map[string]typeName
	tags  map[string]*types.Def
}

// Snapshot saves the global frame and the type-name and tag tables
// so that a later call to Restore can discard everything declared in
// the meantime.
func (c *Checker) Snapshot() Snapshot {
	return Snapshot{
		vars:  maps.Clone(c.global.vars),
		names: maps.Clone(c.names),
		tags:  maps.Clone(c.tags),
	}
}

// Restore returns the global declarations to the state saved in snap.
func (c *Checker) Restore(snap Snapshot) {
	c.global.vars = maps.Clone(snap.vars)
	c.names = maps.Clone(snap.names)
	c.tags = maps.Clone(snap.tags)
}

type raise struct{ err error }

func (c *Checker) catch(err *error) {
	switch r := recover().(type) {
	case nil:
	case raise:
		*err = r.err
	default:
		panic(r)
	}
}

func (c *Checker) fail(pos ast.Pos, err error) {
	panic(raise{err: &Error{Line: pos.Line, Col: pos.Col, Err: err}})
}

func (c *Checker) unify(pos ast.Pos, want, got types.Type) {
	if _, err := types.Unify(want, got, c.subst); err != nil {
		c.fail(pos, err)
	}
}

func (c *Checker) fresh() types.Var {
	return c.sup.Fresh("")
}

func (c *Checker) generalize(env *Env, t types.Type) *types.Scheme {
	t = c.subst.Apply(t)
	return types.Generalize(env.freeVars(c.subst), t)
}

func (c *Checker) infer(env *Env, expr ast.Expr) types.Type {
	switch expr := expr.(type) {
	case *ast.Ident:
		b, ok := env.lookup(expr.Name)
		if !ok {
			c.fail(expr.Pos, &UnboundError{Name: expr.Name})
		}
		return b.scheme.Instantiate(&c.sup)

	case *ast.Literal:
		if expr.Quoted {
			return c.datum(expr.Pos, expr.Val)
		}
		return c.literal(expr.Val)

	case *ast.TypeAlias:
		c.declareType(expr.Name, expr.Type, true)
		return types.Atom

	case *ast.TypeDef:
		if env != c.global {
			c.fail(expr.Pos, ErrNestedTypeDef)
		}
		c.typeDef(env, expr)
		return types.Atom

	case *ast.TypeAnnotation:
		c.annotate(env, expr)
		return types.Atom

	case *ast.DocAnnotation:
		b := env.local(expr.Name)
		b.doc = expr.Text
		env.vars[expr.Name] = b
		return types.Atom

	case *ast.Let:
		return c.let(env, expr)

	case *ast.Fn:
		return c.fn(env, expr)

	case *ast.Lambda:
		return c.lambda(env, expr.Params, expr.Body)

	case *ast.Seq:
		return c.body(env.child(), expr.Exprs)

	case *ast.Call:
		return c.call(env, expr)

	case *ast.If:
		c.unify(expr.Test.Position(), types.Boolean, c.operand(env, expr.Test))
		then := c.operand(env, expr.Then)
		if expr.Else == nil {
			return then
		}
		c.unify(expr.Else.Position(), then, c.operand(env, expr.Else))
		return then

	case *ast.Match:
		return c.match(env, expr)

	case *ast.Include:
		c.fail(expr.Pos, ErrUnexpandedInclude)
		return nil

	default:
		panic(expr)
	}
}

// operand infers the type of an expression that is not in statement
// position. Names that it binds are not visible after it.
func (c *Checker) operand(env *Env, expr ast.Expr) types.Type {
	return c.infer(env.child(), expr)
}

// body infers each of exprs in order in env and returns the type of
// the last one.
func (c *Checker) body(env *Env, exprs []ast.Expr) types.Type {
	var t types.Type = types.Bottom{}
	for _, expr := range exprs {
		t = c.infer(env, expr)
	}
	return t
}

func (c *Checker) literal(d literal.Datum) types.Type {
	switch d := d.(type) {
	case literal.Bool:
		return types.Boolean
	case literal.Int:
		return types.Integer
	case literal.Float:
		return types.Float
	case literal.Char:
		return types.Character
	case literal.String:
		return types.String
	case literal.Atom:
		return c.atom(string(d))
	case *literal.List:
		return types.List{Elem: c.fresh()}
	default:
		return types.Atom
	}
}

// atom returns the type of an unquoted atom. Tags of algebraic types
// act as values, constructors, or accessors. Any other atom is just
// an Atom.
func (c *Checker) atom(tag string) types.Type {
	def, ok := c.tags[tag]
	if !ok {
		return types.Atom
	}

	con := c.instance(def)
	m, _ := def.Member(tag, con.Args)
	if !def.IsSum() {
		payload := m.Payload
		if payload == nil {
			payload = types.Atom
		}
		return types.Func{Params: []types.Type{con}, Result: payload}
	}
	if m.Payload == nil {
		return con
	}
	return types.Func{Params: []types.Type{m.Payload}, Result: con}
}

// datum returns the type of quoted data.
func (c *Checker) datum(pos ast.Pos, d literal.Datum) types.Type {
	list, ok := d.(*literal.List)
	if !ok {
		switch d.(type) {
		case literal.Ident, literal.Atom:
			return types.Atom
		}
		return c.literal(d)
	}

	if list.Tail != nil {
		elems := make([]types.Type, 0, len(list.Elems)+1)
		for _, e := range list.Elems {
			elems = append(elems, c.datum(pos, e))
		}
		return types.Tuple{Elems: append(elems, c.datum(pos, list.Tail))}
	}

	elem := types.Type(c.fresh())
	for _, e := range list.Elems {
		c.unify(pos, elem, c.datum(pos, e))
	}
	return types.List{Elem: elem}
}

func (c *Checker) typeDef(env *Env, expr *ast.TypeDef) {
	def := c.declareType(expr.Name, expr.Type, false)
	if def.IsSum() {
		return
	}

	con := types.Con{Name: def.Name, Args: make([]types.Type, 0, len(def.Params)), Def: def}
	for _, p := range def.Params {
		con.Args = append(con.Args, p)
	}
	fields := make([]types.Type, 0, len(def.Members()))
	for _, m := range def.Members() {
		if m.Payload == nil {
			fields = append(fields, types.Atom)
			continue
		}
		fields = append(fields, m.Payload)
	}
	env.bind(def.Name, types.Generalize(nil, types.Func{Params: fields, Result: con}))
}

func (c *Checker) annotate(env *Env, expr *ast.TypeAnnotation) {
	t := c.resolve(expr.Type, newScope(nil))
	declared := types.Generalize(nil, t)

	b := env.local(expr.Name)
	b.declared = declared
	if b.scheme != nil {
		c.enforce(expr.Pos, expr.Name, declared, b.scheme.Instantiate(&c.sup))
		b.scheme = declared
	}
	env.vars[expr.Name] = b
}

// enforce checks that t agrees with the declared scheme. The declared
// type variables are rigid. They may only be unified with distinct
// type variables.
func (c *Checker) enforce(pos ast.Pos, name string, declared *types.Scheme, t types.Type) {
	rigid := make([]types.Var, 0, len(declared.Vars))
	s := make(types.Subst, len(declared.Vars))
	for _, v := range declared.Vars {
		r := c.sup.Fresh(v.Hint)
		rigid = append(rigid, r)
		s[v.ID] = r
	}
	want := s.Apply(declared.Type)

	if _, err := types.Unify(want, t, c.subst); err != nil {
		c.fail(pos, &AnnotationError{Name: name, Declared: declared.Type, Inferred: c.subst.Apply(t), Err: err})
	}

	seen := make(map[int]struct{}, len(rigid))
	for _, r := range rigid {
		v, ok := c.subst.Apply(r).(types.Var)
		_, dup := seen[v.ID]
		if !ok || dup {
			c.fail(pos, &AnnotationError{Name: name, Declared: declared.Type, Inferred: c.subst.Apply(t)})
		}
		seen[v.ID] = struct{}{}
	}
}

func (c *Checker) let(env *Env, expr *ast.Let) types.Type {
	var t types.Type
	if lambda, ok := expr.Value.(*ast.Lambda); ok {
		self := c.fresh()
		inner := env.child()
		inner.bind(expr.Name, types.Mono(self))
		t = c.lambda(inner, lambda.Params, lambda.Body)
		c.unify(expr.Pos, self, t)
	} else {
		t = c.operand(env, expr.Value)
	}

	c.define(env, expr.Pos, expr.Name, t)
	return c.subst.Apply(t)
}

func (c *Checker) fn(env *Env, expr *ast.Fn) types.Type {
	self := c.fresh()
	inner := env.child()
	inner.bind(expr.Name, types.Mono(self))
	t := c.lambda(inner, expr.Params, expr.Body)
	c.unify(expr.Pos, self, t)

	c.define(env, expr.Pos, expr.Name, t)
	return c.subst.Apply(t)
}

// define generalizes t and binds it to name in env, first checking it
// against any annotation for name in the same frame.
func (c *Checker) define(env *Env, pos ast.Pos, name string, t types.Type) {
	b := env.local(name)
	if b.declared != nil {
		c.enforce(pos, name, b.declared, t)
		env.bind(name, b.declared)
		return
	}
	env.bind(name, c.generalize(env, t))
}

func (c *Checker) lambda(env *Env, params ast.Params, body []ast.Expr) types.Type {
	inner := env.child()

	if params.Variadic {
		rest := types.List{Elem: c.fresh()}
		inner.bind(params.Names[0], types.Mono(rest))
		return types.Func{Params: []types.Type{rest}, Result: c.body(inner, body), Variadic: true}
	}

	pts := make([]types.Type, 0, len(params.Names))
	for _, name := range params.Names {
		v := c.fresh()
		inner.bind(name, types.Mono(v))
		pts = append(pts, v)
	}
	return types.Func{Params: pts, Result: c.body(inner, body)}
}

func (c *Checker) call(env *Env, expr *ast.Call) types.Type {
	ot := c.subst.Apply(c.operand(env, expr.Operator))

	var f types.Func
	switch ot := ot.(type) {
	case types.Func:
		f = ot
	case types.Var:
		f = types.Func{Params: make([]types.Type, 0, len(expr.Operands)), Result: c.fresh()}
		for range expr.Operands {
			f.Params = append(f.Params, c.fresh())
		}
		c.unify(expr.Operator.Position(), ot, f)
	default:
		want := types.Func{Params: make([]types.Type, 0, len(expr.Operands)), Result: c.fresh()}
		for range expr.Operands {
			want.Params = append(want.Params, c.fresh())
		}
		c.fail(expr.Operator.Position(), &types.MismatchError{Want: want, Got: ot})
	}

	if f.Variadic {
		elem := c.fresh()
		c.unify(expr.Operator.Position(), f.Params[0], types.List{Elem: elem})
		for _, operand := range expr.Operands {
			c.unify(operand.Position(), elem, c.operand(env, operand))
		}
		return f.Result
	}

	if len(f.Params) != len(expr.Operands) {
		c.fail(expr.Pos, &ArityError{Want: len(f.Params), Got: len(expr.Operands)})
	}
	for i, operand := range expr.Operands {
		c.unify(operand.Position(), f.Params[i], c.operand(env, operand))
	}
	return f.Result
}
