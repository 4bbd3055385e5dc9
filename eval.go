package ream

import (
	"context"
	"errors"
	"slices"

	"deedles.dev/ream/ast"
	"deedles.dev/ream/literal"
	"deedles.dev/ream/typecheck"
	"github.com/samber/lo"
)

// Eval evaluates expr in env. It returns the value of expr and the
// environment that the expressions following expr should be evaluated
// in. The returned environment differs from env only if expr bound a
// name.
//
// Errors are always *EvalErrors.
func Eval(ctx context.Context, env *Env, expr ast.Expr) (Value, *Env, error) {
	switch expr := expr.(type) {
	case *ast.Ident:
		v, ok := env.Lookup(expr.Name)
		if !ok {
			return nil, env, fail(expr.Pos, &NameError{Ident: expr.Name})
		}
		return v, env, nil

	case *ast.Literal:
		if expr.Quoted {
			return quote(expr.Val), env, nil
		}
		return evalLiteral(env, expr.Val), env, nil

	case *ast.TypeAlias:
		return MakeAtom(expr.Name), env, nil

	case *ast.TypeDef:
		return MakeAtom(expr.Name), defineType(env, expr), nil

	case *ast.TypeAnnotation:
		return MakeAtom(expr.Name), env, nil

	case *ast.DocAnnotation:
		return MakeAtom(expr.Name), env, nil

	case *ast.Let:
		if lambda, ok := expr.Value.(*ast.Lambda); ok {
			c, env := define(env, "", lambda.Params, lambda.Body, expr.Name)
			return c, env, nil
		}
		v, _, err := Eval(ctx, env, expr.Value)
		if err != nil {
			return nil, env, err
		}
		return v, env.Let(expr.Name, v), nil

	case *ast.Fn:
		c, env := define(env, expr.Name, expr.Params, expr.Body, expr.Name)
		return c, env, nil

	case *ast.Lambda:
		return &Closure{Params: expr.Params, Body: expr.Body, env: env}, env, nil

	case *ast.Seq:
		v, _, err := evalBody(ctx, env, expr.Exprs)
		return v, env, err

	case *ast.Call:
		return evalCall(ctx, env, expr)

	case *ast.If:
		test, _, err := Eval(ctx, env, expr.Test)
		if err != nil {
			return nil, env, err
		}
		b, ok := test.(Bool)
		if !ok {
			return nil, env, fail(expr.Test.Position(), NewTypeError(test))
		}

		switch {
		case bool(b):
			v, _, err := Eval(ctx, env, expr.Then)
			return v, env, err
		case expr.Else != nil:
			v, _, err := Eval(ctx, env, expr.Else)
			return v, env, err
		default:
			return Unit{}, env, nil
		}

	case *ast.Match:
		return evalMatch(ctx, env, expr)

	case *ast.Include:
		return nil, env, fail(expr.Pos, typecheck.ErrUnexpandedInclude)

	default:
		panic(expr)
	}
}

// define creates a closure that is bound to bind in the environment
// that it captures, allowing it to call itself.
func define(env *Env, name string, params ast.Params, body []ast.Expr, bind string) (*Closure, *Env) {
	env, fill := env.slot(bind)
	c := Closure{Name: name, Params: params, Body: body, env: env}
	fill(&c)
	return &c, env
}

// evalBody evaluates exprs in order, threading the environment
// through them, and returns the value of the last one.
func evalBody(ctx context.Context, env *Env, exprs []ast.Expr) (v Value, _ *Env, err error) {
	v = Unit{}
	for _, expr := range exprs {
		v, env, err = Eval(ctx, env, expr)
		if err != nil {
			return nil, env, err
		}
	}
	return v, env, nil
}

func evalCall(ctx context.Context, env *Env, expr *ast.Call) (Value, *Env, error) {
	f, _, err := Eval(ctx, env, expr.Operator)
	if err != nil {
		return nil, env, err
	}

	args := make([]Value, 0, len(expr.Operands))
	for _, operand := range expr.Operands {
		arg, _, err := Eval(ctx, env, operand)
		if err != nil {
			return nil, env, err
		}
		args = append(args, arg)
	}

	v, err := Apply(ctx, env, f, args)
	if err != nil {
		return nil, env, fail(expr.Pos, err)
	}
	return v, env, nil
}

func fail(pos ast.Pos, err error) error {
	var eerr *EvalError
	if errors.As(err, &eerr) {
		return err
	}
	return &EvalError{Line: pos.Line, Col: pos.Col, Err: err}
}

func evalLiteral(env *Env, d literal.Datum) Value {
	switch d := d.(type) {
	case literal.Atom:
		if v, ok := env.tag(string(d)); ok {
			return v
		}
		return MakeAtom(string(d))
	case *literal.List:
		return (*List)(nil)
	default:
		return quote(d)
	}
}

// quote converts quoted data into a value without evaluating it.
func quote(d literal.Datum) Value {
	switch d := d.(type) {
	case literal.Ident:
		return MakeAtom(string(d))
	case literal.Atom:
		return MakeAtom(string(d))
	case literal.Bool:
		return Bool(d)
	case literal.Int:
		return Int(d)
	case literal.Float:
		return Float(d)
	case literal.Char:
		return Char(d)
	case literal.String:
		return Str(d)
	case *literal.List:
		elems := lo.Map(d.Elems, func(e literal.Datum, _ int) Value { return quote(e) })
		if d.Tail != nil {
			return Tuple(append(elems, quote(d.Tail))...)
		}
		return ListOf(elems...)
	default:
		panic(d)
	}
}

// defineType binds the tags of an algebraic type in the returned
// environment. Tags of sums become values or constructors. Tags of
// products become accessors, and the product's positional constructor
// is bound to its name.
func defineType(env *Env, expr *ast.TypeDef) *Env {
	var members []ast.Member
	var sum bool
	switch spec := expr.Type.(type) {
	case *ast.SumType:
		members, sum = spec.Members, true
	case *ast.ProductType:
		members = spec.Members
	}

	name := expr.Name
	tags := lo.Map(members, func(m ast.Member, _ int) Atom { return MakeAtom(m.Tag) })
	for i, m := range members {
		tag := tags[i]
		switch {
		case sum && m.Payload == nil:
			env = env.letTag(m.Tag, &SumVal{Type: name, Tag: tag})

		case sum:
			env = env.letTag(m.Tag, &Builtin{
				Name:  tag.String(),
				Arity: 1,
				Func: func(ctx context.Context, args []Value) (Value, error) {
					return &SumVal{Type: name, Tag: tag, Payload: args[0]}, nil
				},
			})

		default:
			env = env.letTag(m.Tag, &Builtin{
				Name:  tag.String(),
				Arity: 1,
				Func: func(ctx context.Context, args []Value) (Value, error) {
					p, err := arg[*ProductVal](args, 0)
					if err != nil {
						return nil, err
					}
					if p.Type != name || i >= len(p.Fields) {
						return nil, NewTypeError(p)
					}
					return p.Fields[i], nil
				},
			})
		}
	}
	env.rt.log.Debug("defined type", "name", name, "tags", len(tags))

	if sum {
		return env
	}
	return env.Let(name, &Builtin{
		Name:  name,
		Arity: len(members),
		Func: func(ctx context.Context, args []Value) (Value, error) {
			return &ProductVal{Type: name, Tags: tags, Fields: slices.Clone(args)}, nil
		},
	})
}
