package typecheck

import (
	"iter"

	"deedles.dev/ream/types"
	"github.com/hashicorp/go-set/v3"
)

// Env is a frame of the type environment. Lookups that miss in a
// frame continue in its parent. Binding in a frame never affects its
// parent.
type Env struct {
	parent *Env
	vars   map[string]binding
}

type binding struct {
	scheme   *types.Scheme
	declared *types.Scheme
	doc      string
}

// NewEnv returns a new frame whose parent is parent, which may be
// nil.
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: make(map[string]binding)}
}

func (env *Env) child() *Env {
	return NewEnv(env)
}

func (env *Env) lookup(name string) (binding, bool) {
	for cur := env; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok && b.scheme != nil {
			return b, true
		}
	}
	return binding{}, false
}

func (env *Env) local(name string) binding {
	return env.vars[name]
}

func (env *Env) bind(name string, sc *types.Scheme) {
	b := env.vars[name]
	b.scheme = sc
	env.vars[name] = b
}

// Lookup returns the type scheme bound to name in env or its
// ancestors.
func (env *Env) Lookup(name string) (*types.Scheme, bool) {
	b, ok := env.lookup(name)
	return b.scheme, ok
}

// Doc returns the documentation attached to name with a (:doc ...)
// form.
func (env *Env) Doc(name string) (string, bool) {
	for cur := env; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok && b.doc != "" {
			return b.doc, true
		}
	}
	return "", false
}

// All yields the names bound in env, but not its ancestors, along
// with their type schemes.
func (env *Env) All() iter.Seq2[string, *types.Scheme] {
	return func(yield func(string, *types.Scheme) bool) {
		for name, b := range env.vars {
			if b.scheme == nil {
				continue
			}
			if !yield(name, b.scheme) {
				return
			}
		}
	}
}

// freeVars returns the type variables free in any of the bindings
// visible from env after applying s.
func (env *Env) freeVars(s types.Subst) *set.Set[types.Var] {
	vars := set.New[types.Var](0)
	for cur := env; cur != nil; cur = cur.parent {
		for _, b := range cur.vars {
			if b.scheme == nil {
				continue
			}
			free := types.FreeVars(s.Apply(b.scheme.Type))
			for _, v := range b.scheme.Vars {
				free.Remove(v)
			}
			vars.InsertSet(free)
		}
	}
	return vars
}
