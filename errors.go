package ream

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrDivisionByZero is returned by / and % when their second
	// argument is zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrStackOverflow is returned when calls nest deeper than the
	// runtime's maximum depth.
	ErrStackOverflow = errors.New("stack overflow")
)

// EvalError is an error that happened while evaluating the expression
// at Line and Col. Err is one of the other error types in this
// package, a sentinel error, or the error of a canceled context.
type EvalError struct {
	Line, Col int
	Err       error
}

func (err *EvalError) Error() string {
	return fmt.Sprintf("runtime error at %v:%v: %v", err.Line, err.Col, err.Err)
}

func (err *EvalError) Unwrap() error {
	return err.Err
}

// ArgumentNumError is returned when a function is called with the
// wrong number of arguments. If the function has a specific number of
// arguments that it expects, Expected will be >= 0.
type ArgumentNumError struct {
	Num      int
	Expected int
}

func (err *ArgumentNumError) Error() string {
	if err.Expected < 0 {
		return fmt.Sprintf("incorrect number of arguments %v", err.Num)
	}
	return fmt.Sprintf("incorrect number of arguments %v, expected %v", err.Num, err.Expected)
}

// TypeError is returned by builtins that are given values of the
// wrong type. This can only happen when evaluating code that has not
// been type checked. Val is the value that is of the wrong type. If
// there is information about types that were expected, the Expected
// field will contain it.
type TypeError struct {
	Val      Value
	Expected []reflect.Type
}

// NewTypeError is a convience function that creates a new TypeError.
func NewTypeError(val Value, expected ...reflect.Type) *TypeError {
	return &TypeError{
		Val:      val,
		Expected: expected,
	}
}

func (err *TypeError) Error() string {
	if len(err.Expected) == 0 {
		return fmt.Sprintf("incorrect type %T", err.Val)
	}
	return fmt.Sprintf("incorrect type %T, expected one of %v", err.Val, err.Expected)
}

// NameError is returned when an identifier was accessed but is not
// bound in the scope.
type NameError struct {
	Ident string
}

func (err *NameError) Error() string {
	return fmt.Sprintf("%q is not bound", err.Ident)
}

// NotCallableError is returned when a value that is not a function
// is called.
type NotCallableError struct {
	Val Value
}

func (err *NotCallableError) Error() string {
	return fmt.Sprintf("%v is not a function", err.Val)
}

// MatchError is returned when none of the clauses of a match match
// its subject.
type MatchError struct {
	Val Value
}

func (err *MatchError) Error() string {
	return fmt.Sprintf("no clause matched %v", err.Val)
}

// arg returns args[i] as a T or a TypeError.
func arg[T Value](args []Value, i int) (T, error) {
	v, ok := args[i].(T)
	if !ok {
		return v, NewTypeError(args[i], reflect.TypeFor[T]())
	}
	return v, nil
}
