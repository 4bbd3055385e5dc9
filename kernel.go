package ream

import (
	"context"
	"errors"
)

// ErrEmptyList is returned by car and cdr when given the empty list.
var ErrEmptyList = errors.New("empty list")

// kernel contains the core built-in functions.
var kernel = []*Builtin{
	binary("+", intOp, func(a, b Int) (Value, error) { return a + b, nil }),
	binary("-", intOp, func(a, b Int) (Value, error) { return a - b, nil }),
	binary("*", intOp, func(a, b Int) (Value, error) { return a * b, nil }),
	binary("/", intOp, func(a, b Int) (Value, error) {
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return a / b, nil
	}),
	binary("%", intOp, func(a, b Int) (Value, error) {
		if b == 0 {
			return nil, ErrDivisionByZero
		}
		return a % b, nil
	}),
	binary("<", intCmp, func(a, b Int) (Value, error) { return Bool(a < b), nil }),
	binary("<=", intCmp, func(a, b Int) (Value, error) { return Bool(a <= b), nil }),
	binary(">", intCmp, func(a, b Int) (Value, error) { return Bool(a > b), nil }),
	binary(">=", intCmp, func(a, b Int) (Value, error) { return Bool(a >= b), nil }),

	binary("+.", floatOp, func(a, b Float) (Value, error) { return a + b, nil }),
	binary("-.", floatOp, func(a, b Float) (Value, error) { return a - b, nil }),
	binary("*.", floatOp, func(a, b Float) (Value, error) { return a * b, nil }),
	binary("/.", floatOp, func(a, b Float) (Value, error) { return a / b, nil }),
	binary("<.", "(Function Float Float Boolean)", func(a, b Float) (Value, error) { return Bool(a < b), nil }),

	binary("=", "(Function A A Boolean)", func(a, b Value) (Value, error) { return Bool(Equal(a, b)), nil }),
	unary("not", "(Function Boolean Boolean)", func(a Bool) (Value, error) { return !a, nil }),
	binary("and", boolOp, func(a, b Bool) (Value, error) { return a && b, nil }),
	binary("or", boolOp, func(a, b Bool) (Value, error) { return a || b, nil }),

	binary("cons", "(Function A (List A) (List A))", func(a Value, list *List) (Value, error) {
		return list.Push(a), nil
	}),
	unary("car", "(Function (List A) A)", func(list *List) (Value, error) {
		if list.Len() == 0 {
			return nil, ErrEmptyList
		}
		return list.Head(), nil
	}),
	unary("cdr", "(Function (List A) (List A))", func(list *List) (Value, error) {
		if list.Len() == 0 {
			return nil, ErrEmptyList
		}
		return list.Tail(), nil
	}),
	unary("null?", "(Function (List A) Boolean)", func(list *List) (Value, error) {
		return Bool(list.Len() == 0), nil
	}),
	{
		Name:  "list",
		Arity: -1,
		Type:  "(Function (List A) (List A))",
		Func: func(ctx context.Context, args []Value) (Value, error) {
			return ListOf(args...), nil
		},
	},
	unary("length", "(Function (List A) Integer)", func(list *List) (Value, error) {
		return Int(list.Len()), nil
	}),
	binary("append", "(Function (List A) (List A) (List A))", func(a, b *List) (Value, error) {
		return a.Append(b), nil
	}),

	binary("tuple2", "(Function A B (Tuple A B))", func(a, b Value) (Value, error) {
		return Tuple(a, b), nil
	}),
	unary("fst", "(Function (Tuple A B) A)", func(t *ProductVal) (Value, error) { return field(t, 0) }),
	unary("snd", "(Function (Tuple A B) B)", func(t *ProductVal) (Value, error) { return field(t, 1) }),
}

const (
	intOp   = "(Function Integer Integer Integer)"
	intCmp  = "(Function Integer Integer Boolean)"
	floatOp = "(Function Float Float Float)"
	boolOp  = "(Function Boolean Boolean Boolean)"
)

func unary[A Value](name, typ string, f func(A) (Value, error)) *Builtin {
	return &Builtin{
		Name:  name,
		Arity: 1,
		Type:  typ,
		Func: func(ctx context.Context, args []Value) (Value, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			return f(a)
		},
	}
}

func binary[A, B Value](name, typ string, f func(A, B) (Value, error)) *Builtin {
	return &Builtin{
		Name:  name,
		Arity: 2,
		Type:  typ,
		Func: func(ctx context.Context, args []Value) (Value, error) {
			a, err := arg[A](args, 0)
			if err != nil {
				return nil, err
			}
			b, err := arg[B](args, 1)
			if err != nil {
				return nil, err
			}
			return f(a, b)
		},
	}
}

func field(t *ProductVal, i int) (Value, error) {
	if t.Type != "" || i >= len(t.Fields) {
		return nil, NewTypeError(t)
	}
	return t.Fields[i], nil
}
