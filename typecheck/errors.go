package typecheck

import (
	"errors"
	"fmt"
	"strings"

	"deedles.dev/ream/types"
)

// ErrUnexpandedInclude is returned when an include form reaches the
// checker. Includes must be expanded by a parser.Loader first.
var ErrUnexpandedInclude = errors.New("include was not expanded")

// ErrNestedTypeDef is returned when a define-type appears anywhere
// other than the top level of a program.
var ErrNestedTypeDef = errors.New("define-type is only allowed at the top level")

// Error is a type error at a position in the source. Err is one of
// the other error types in this package or a *types.MismatchError or
// *types.InfiniteTypeError.
type Error struct {
	Line, Col int
	Err       error
}

func (err *Error) Error() string {
	return fmt.Sprintf("type error at %v:%v: %v", err.Line, err.Col, err.Err)
}

func (err *Error) Unwrap() error {
	return err.Err
}

// UnboundError is returned when an identifier or a tag is used but
// never bound.
type UnboundError struct {
	Name string
}

func (err *UnboundError) Error() string {
	return fmt.Sprintf("%q is not bound", err.Name)
}

// ArityError is returned when a function or a tag is applied to the
// wrong number of arguments.
type ArityError struct {
	Want, Got int
}

func (err *ArityError) Error() string {
	return fmt.Sprintf("wrong number of arguments %v, expected %v", err.Got, err.Want)
}

// AnnotationError is returned when a definition does not agree with
// its (:type ...) annotation. Err is the underlying unification
// error, if any. If it is nil, the definition was less general than
// its annotation.
type AnnotationError struct {
	Name     string
	Declared types.Type
	Inferred types.Type
	Err      error
}

func (err *AnnotationError) Error() string {
	if err.Err == nil {
		return fmt.Sprintf("%v declared as %v, but inferred as the less general %v", err.Name, err.Declared, err.Inferred)
	}
	return fmt.Sprintf("%v declared as %v, but inferred as %v: %v", err.Name, err.Declared, err.Inferred, err.Err)
}

func (err *AnnotationError) Unwrap() error {
	return err.Err
}

// NonExhaustiveError is returned when the clauses of a match do not
// cover every possible value of its subject.
type NonExhaustiveError struct {
	Type    types.Type
	Missing []string
}

func (err *NonExhaustiveError) Error() string {
	return fmt.Sprintf("match on %v is not exhaustive, missing %v", err.Type, strings.Join(err.Missing, ", "))
}

// UnknownTypeError is returned when a typespec refers to a type that
// does not exist or applies one to the wrong number of arguments.
type UnknownTypeError struct {
	Name string
	Args int
}

func (err *UnknownTypeError) Error() string {
	if err.Args == 0 {
		return fmt.Sprintf("no type named %q without arguments", err.Name)
	}
	return fmt.Sprintf("no type named %q taking %v arguments", err.Name, err.Args)
}
