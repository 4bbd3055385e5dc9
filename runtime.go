package ream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"deedles.dev/ream/ast"
	"deedles.dev/ream/parser"
	"deedles.dev/ream/typecheck"
	"deedles.dev/ream/types"
)

// DefaultMaxDepth is the call depth at which a runtime reports
// ErrStackOverflow unless configured otherwise.
const DefaultMaxDepth = 10000

// ErrNoFS is returned when loading a file with a runtime that was
// created without a file system.
var ErrNoFS = errors.New("runtime has no file system")

type runtimeKey struct{}

// Runtime holds the state of a Ream session: the top-level
// environment and the type checker that has seen the same
// declarations. Each successful call to Exec or Run continues from
// the top-level environment left by the previous one, so a Runtime
// can back a REPL.
//
// A Runtime must not be used by more than one goroutine at a time.
type Runtime struct {
	out      io.Writer
	log      *slog.Logger
	maxDepth int
	loader   *parser.Loader
	checker  *typecheck.Checker
	top      *Env
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithOutput sets the writer that print writes to. The default is
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(rt *Runtime) { rt.out = w }
}

// WithLogger sets the logger that stage timings are reported to. The
// default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(rt *Runtime) { rt.log = log }
}

// WithMaxDepth sets the maximum call depth.
func WithMaxDepth(depth int) Option {
	return func(rt *Runtime) { rt.maxDepth = depth }
}

// WithFS sets the file system that files and includes are loaded
// from. Without one, includes are left unexpanded and fail to check.
func WithFS(fsys fs.FS) Option {
	return func(rt *Runtime) { rt.loader = &parser.Loader{FS: fsys} }
}

// New returns a runtime with the builtins defined.
func New(opts ...Option) *Runtime {
	rt := Runtime{
		out:      os.Stdout,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&rt)
	}
	rt.checker = typecheck.New(typecheck.WithLogger(rt.log))
	rt.top = &Env{rt: &rt}

	for _, b := range slices.Concat(kernel, std) {
		rt.define(b)
	}

	return &rt
}

func (rt *Runtime) define(b *Builtin) {
	spec, err := parser.ParseTypespec(b.Type)
	if err != nil {
		panic(fmt.Errorf("type of builtin %q: %w", b.Name, err))
	}
	sc, err := rt.checker.Resolve(spec)
	if err != nil {
		panic(fmt.Errorf("type of builtin %q: %w", b.Name, err))
	}
	if b.Arity < 0 {
		f := sc.Type.(types.Func)
		f.Variadic = true
		sc.Type = f
	}

	rt.checker.Define(b.Name, sc)
	rt.top = rt.top.Let(b.Name, b)
}

// GetRuntime returns the runtime that ctx belongs to, or nil if there
// is none.
func GetRuntime(ctx context.Context) *Runtime {
	r, _ := ctx.Value(runtimeKey{}).(*Runtime)
	return r
}

// Context returns a child of ctx that carries rt.
func (rt *Runtime) Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

// Env returns the current top-level environment of rt.
func (rt *Runtime) Env() *Env {
	return rt.top
}

// Checker returns the type checker that holds the types of rt's
// globals.
func (rt *Runtime) Checker() *typecheck.Checker {
	return rt.checker
}

// Parse parses src and, if rt has a file system, expands its
// includes relative to the root of it.
func (rt *Runtime) Parse(src string) ([]ast.Expr, error) {
	defer rt.stage("parse", time.Now())

	prog, err := parser.Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	if rt.loader == nil {
		return prog, nil
	}
	return rt.loader.Expand("", prog)
}

// Load parses the file at name in rt's file system and expands its
// includes.
func (rt *Runtime) Load(name string) ([]ast.Expr, error) {
	defer rt.stage("load", time.Now())

	if rt.loader == nil {
		return nil, ErrNoFS
	}
	return rt.loader.Load(name)
}

// Check type checks prog against the globals of rt.
func (rt *Runtime) Check(prog []ast.Expr) ([]types.Type, error) {
	defer rt.stage("check", time.Now())

	return rt.checker.Check(prog)
}

// Exec evaluates prog in the top-level environment and returns the
// value of the last expression. It does not type check prog. If
// evaluation fails, none of the bindings made by prog are kept.
func (rt *Runtime) Exec(ctx context.Context, prog []ast.Expr) (Value, error) {
	defer rt.stage("exec", time.Now())

	v, env, err := evalBody(rt.Context(ctx), rt.top, prog)
	if err != nil {
		return nil, err
	}
	rt.top = env
	return v, nil
}

// Run parses, checks, and evaluates src.
func (rt *Runtime) Run(ctx context.Context, src string) (Value, error) {
	prog, err := rt.Parse(src)
	if err != nil {
		return nil, err
	}
	return rt.run(ctx, prog)
}

// RunFile loads, checks, and evaluates the file at name.
func (rt *Runtime) RunFile(ctx context.Context, name string) (Value, error) {
	prog, err := rt.Load(name)
	if err != nil {
		return nil, err
	}
	return rt.run(ctx, prog)
}

func (rt *Runtime) run(ctx context.Context, prog []ast.Expr) (Value, error) {
	snap := rt.checker.Snapshot()
	_, err := rt.Check(prog)
	if err != nil {
		return nil, err
	}

	v, err := rt.Exec(ctx, prog)
	if err != nil {
		rt.checker.Restore(snap)
		return nil, err
	}
	return v, nil
}

func (rt *Runtime) stage(name string, start time.Time) {
	rt.log.Debug("stage done", "stage", name, "duration", time.Since(start))
}
