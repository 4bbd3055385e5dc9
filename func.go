package ream

import (
	"context"
	"slices"

	"deedles.dev/ream/ast"
	"deedles.dev/xiter"
)

// Closure is a function defined with fn or lambda along with the
// environment that it was defined in.
type Closure struct {
	Name   string
	Params ast.Params
	Body   []ast.Expr
	env    *Env
}

func (*Closure) value() {}

func (c *Closure) String() string {
	if c.Name == "" {
		return "#<lambda>"
	}
	return "#<fn " + c.Name + ">"
}

// BuiltinFunc is the implementation of a Builtin. args has already
// been checked against the Builtin's arity.
type BuiltinFunc func(ctx context.Context, args []Value) (Value, error)

// Builtin is a function implemented in Go, such as +, or a
// constructor or accessor of an algebraic type.
type Builtin struct {
	Name string

	// Arity is the number of arguments that the function takes, or
	// -1 if it takes any number of them.
	Arity int

	// Type is the typespec source of the function's type, such as
	// (Function Integer Integer Integer). Constructors and accessors
	// have no Type.
	Type string

	Func BuiltinFunc
}

func (*Builtin) value() {}

func (b *Builtin) String() string {
	return "#<builtin " + b.Name + ">"
}

// Apply calls f with args. env is the environment of the caller and
// is used only to track the call depth.
func Apply(ctx context.Context, env *Env, f Value, args []Value) (Value, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	switch f := f.(type) {
	case *Builtin:
		if f.Arity >= 0 && len(args) != f.Arity {
			return nil, &ArgumentNumError{Num: len(args), Expected: f.Arity}
		}
		return f.Func(ctx, args)

	case *Closure:
		if env.depth >= env.rt.maxDepth {
			return nil, ErrStackOverflow
		}

		fenv := *f.env
		fenv.depth = env.depth + 1
		if f.Params.Variadic {
			fenv = *fenv.Let(f.Params.Names[0], ListOf(args...))
		} else {
			if len(args) != len(f.Params.Names) {
				return nil, &ArgumentNumError{Num: len(args), Expected: len(f.Params.Names)}
			}
			for i, arg := range xiter.Enumerate(slices.Values(args)) {
				fenv = *fenv.Let(f.Params.Names[i], arg)
			}
		}

		v, _, err := evalBody(ctx, &fenv, f.Body)
		return v, err

	default:
		return nil, &NotCallableError{Val: f}
	}
}
