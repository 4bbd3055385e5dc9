package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"deedles.dev/ream/ast"
	"deedles.dev/xsync"
	"github.com/hashicorp/go-set/v3"
)

var (
	// ErrIncludeNotFound is wrapped by an IncludeError when an
	// included file does not exist.
	ErrIncludeNotFound = errors.New("included file not found")

	// ErrIncludeCycle is wrapped by an IncludeError when a file
	// includes itself, directly or indirectly.
	ErrIncludeCycle = errors.New("include cycle")
)

// Loader resolves (include ...) forms by reading, parsing, and
// splicing in the named files. Paths are resolved relative to the
// directory of the including file inside of FS.
//
// A Loader caches parsed files, so files that are included more than
// once are only read and parsed once.
type Loader struct {
	FS fs.FS

	cache xsync.Map[string, []ast.Expr]
}

// Load parses the file at name and expands its includes.
func (l *Loader) Load(name string) ([]ast.Expr, error) {
	e := expander{l: l, active: set.New[string](0)}
	return e.file(path.Clean(name), ast.Pos{})
}

// Expand replaces the includes in exprs with the contents of the
// files they name. from is the path of the file that exprs were
// parsed from, or the empty string if they did not come from FS.
//
// Includes in statement positions, i.e. at the top level and in the
// bodies of seq, fn, lambda, and match clauses, are spliced directly
// into the surrounding list. Includes anywhere else are replaced by a
// seq of the included expressions.
func (l *Loader) Expand(from string, exprs []ast.Expr) ([]ast.Expr, error) {
	e := expander{l: l, active: set.New[string](0)}
	if from != "" {
		from = path.Clean(from)
		e.active.Insert(from)
	}
	return e.list(from, exprs)
}

func (l *Loader) read(name string) ([]ast.Expr, error) {
	if exprs, ok := l.cache.Load(name); ok {
		return exprs, nil
	}

	if l.FS == nil {
		return nil, ErrIncludeNotFound
	}
	data, err := fs.ReadFile(l.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrIncludeNotFound, err)
		}
		return nil, err
	}

	exprs, err := ParseString(string(data))
	if err != nil {
		return nil, err
	}
	l.cache.Store(name, exprs)
	return exprs, nil
}

type expander struct {
	l      *Loader
	active *set.Set[string]
}

func (e *expander) file(name string, at ast.Pos) ([]ast.Expr, error) {
	if e.active.Contains(name) {
		return nil, &IncludeError{Path: name, Line: at.Line, Col: at.Col, Err: ErrIncludeCycle}
	}

	exprs, err := e.l.read(name)
	if err != nil {
		return nil, &IncludeError{Path: name, Line: at.Line, Col: at.Col, Err: err}
	}

	e.active.Insert(name)
	defer e.active.Remove(name)

	return e.list(name, exprs)
}

func resolve(from, name string) string {
	name = strings.TrimPrefix(name, "/")
	if from == "" {
		return path.Clean(name)
	}
	return path.Join(path.Dir(from), name)
}

func (e *expander) list(from string, exprs []ast.Expr) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(exprs))
	for _, expr := range exprs {
		inc, ok := expr.(*ast.Include)
		if !ok {
			expr, err := e.expr(from, expr)
			if err != nil {
				return nil, err
			}
			out = append(out, expr)
			continue
		}

		for _, name := range inc.Paths {
			included, err := e.file(resolve(from, name), inc.Pos)
			if err != nil {
				return nil, err
			}
			out = append(out, included...)
		}
	}
	return out, nil
}

func (e *expander) expr(from string, expr ast.Expr) (ast.Expr, error) {
	var err error
	each := func(x ast.Expr) ast.Expr {
		if err != nil || x == nil {
			return x
		}
		x, err = e.expr(from, x)
		return x
	}
	body := func(xs []ast.Expr) []ast.Expr {
		if err != nil {
			return xs
		}
		xs, err = e.list(from, xs)
		return xs
	}

	switch x := expr.(type) {
	case *ast.Include:
		return &ast.Seq{Pos: x.Pos, Exprs: body([]ast.Expr{x})}, err
	case *ast.Let:
		return &ast.Let{Pos: x.Pos, Name: x.Name, Value: each(x.Value)}, err
	case *ast.Fn:
		return &ast.Fn{Pos: x.Pos, Name: x.Name, Params: x.Params, Body: body(x.Body)}, err
	case *ast.Lambda:
		return &ast.Lambda{Pos: x.Pos, Params: x.Params, Body: body(x.Body)}, err
	case *ast.Seq:
		return &ast.Seq{Pos: x.Pos, Exprs: body(x.Exprs)}, err
	case *ast.Call:
		operator := each(x.Operator)
		operands := make([]ast.Expr, 0, len(x.Operands))
		for _, operand := range x.Operands {
			operands = append(operands, each(operand))
		}
		return &ast.Call{Pos: x.Pos, Operator: operator, Operands: operands}, err
	case *ast.If:
		return &ast.If{Pos: x.Pos, Test: each(x.Test), Then: each(x.Then), Else: each(x.Else)}, err
	case *ast.Match:
		clauses := make([]ast.Clause, 0, len(x.Clauses))
		for _, c := range x.Clauses {
			clauses = append(clauses, ast.Clause{Pattern: c.Pattern, Body: body(c.Body)})
		}
		return &ast.Match{Pos: x.Pos, Subject: each(x.Subject), Clauses: clauses}, err
	default:
		return expr, nil
	}
}

// IncludeError is returned when an included file cannot be loaded.
// Line and Col are the position of the include form, or zero for the
// root file of a [Loader.Load].
type IncludeError struct {
	Path      string
	Line, Col int
	Err       error
}

func (err *IncludeError) Error() string {
	if err.Line == 0 {
		return fmt.Sprintf("load %q: %v", err.Path, err.Err)
	}
	return fmt.Sprintf("include %q at %v:%v: %v", err.Path, err.Line, err.Col, err.Err)
}

func (err *IncludeError) Unwrap() error {
	return err.Err
}
