package ream

import (
	"iter"
)

// Env is a lexical environment. Bindings are kept in an immutable
// linked list so that closures can capture the environment that they
// were created in without copying it. Binding a name never changes
// what an existing Env, or a closure that captured it, sees.
type Env struct {
	rt     *Runtime
	locals *localList
	depth  int
}

// Runtime returns the runtime that env belongs to.
func (env *Env) Runtime() *Runtime {
	return env.rt
}

// Let returns a new environment with name bound to val.
func (env Env) Let(name string, val Value) *Env {
	env.locals = env.locals.Push(name, val)
	return &env
}

// slot binds name to a placeholder and returns a function that fills
// it in. It allows a closure to capture an environment containing
// itself.
func (env Env) slot(name string) (*Env, func(Value)) {
	env.locals = env.locals.Push(name, nil)
	node := env.locals
	return &env, func(val Value) { node.val = val }
}

// Lookup returns the value bound to name.
func (env *Env) Lookup(name string) (Value, bool) {
	for id, val := range env.locals.All() {
		if id == name {
			return val, val != nil
		}
	}
	return nil, false
}

// tag returns the value that the atom literal :tag evaluates to if
// tag belongs to an algebraic type.
func (env *Env) tag(tag string) (Value, bool) {
	return env.Lookup(":" + tag)
}

// letTag binds the value of the atom literal :tag. Identifiers can
// not start with a colon, so tags share the list with ordinary
// bindings.
func (env *Env) letTag(tag string, val Value) *Env {
	return env.Let(":"+tag, val)
}

type localList struct {
	name string
	val  Value
	next *localList
}

func (ll *localList) Push(name string, val Value) *localList {
	return &localList{
		name: name,
		val:  val,
		next: ll,
	}
}

func (ll *localList) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for ll != nil {
			if !yield(ll.name, ll.val) {
				return
			}
			ll = ll.next
		}
	}
}
