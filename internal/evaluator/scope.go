package evaluator

import (
	"sort"

	"github.com/funvibe/jswalk/internal/config"
)

type ScopeKind int

const (
	GlobalScope ScopeKind = iota
	FunctionScope
	BlockScope
)

type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclLet
	DeclConst
)

func (k DeclKind) String() string {
	switch k {
	case DeclLet:
		return "let"
	case DeclConst:
		return "const"
	}
	return "var"
}

func declKindOf(s string) (DeclKind, bool) {
	switch s {
	case "var":
		return DeclVar, true
	case "let":
		return DeclLet, true
	case "const":
		return DeclConst, true
	}
	return DeclVar, false
}

type Binding struct {
	Value Object
	Kind  DeclKind
}

// Scope is one level of the lexical scope chain. Function scopes also
// carry the invocation receiver and, for generators and async functions,
// the coroutine that await and yield suspend.
type Scope struct {
	kind    ScopeKind
	store   map[string]*Binding
	outer   *Scope
	globals *Globals

	this    Object
	hasThis bool
	co      *coroutine
}

func NewGlobalScope(g *Globals) *Scope {
	if g == nil {
		g = NewGlobals(config.AssignLoose)
	}
	return &Scope{
		kind:    GlobalScope,
		store:   make(map[string]*Binding),
		globals: g,
		this:    Undefined,
		hasThis: true,
	}
}

func NewEnclosedScope(outer *Scope, kind ScopeKind) *Scope {
	return &Scope{
		kind:    kind,
		store:   make(map[string]*Binding),
		outer:   outer,
		globals: outer.globals,
	}
}

func (s *Scope) Kind() ScopeKind { return s.kind }
func (s *Scope) Outer() *Scope   { return s.outer }

// Declare creates a binding. var walks to the nearest function (or
// global) scope and replaces an earlier var; let and const bind here and
// refuse a name this scope already holds.
func (s *Scope) Declare(kind DeclKind, name string, val Object) error {
	target := s
	if kind == DeclVar {
		target = s.functionScope()
	}
	if b, ok := target.store[name]; ok && (kind != DeclVar || b.Kind != DeclVar) {
		return &RedeclarationError{Name: name}
	}
	target.store[name] = &Binding{Value: val, Kind: kind}
	return nil
}

// Hoist pre-declares a var name as undefined unless it already exists.
func (s *Scope) Hoist(name string) {
	target := s.functionScope()
	if _, ok := target.store[name]; !ok {
		target.store[name] = &Binding{Value: Undefined, Kind: DeclVar}
	}
}

// Get resolves name through the chain, then the global namespace.
func (s *Scope) Get(name string) (Object, error) {
	if b, ok := s.Lookup(name); ok {
		return b.Value, nil
	}
	if v, ok := s.globals.Get(name); ok {
		return v, nil
	}
	return nil, &NameResolutionError{Name: name}
}

// Set updates the nearest binding for name. An undeclared name either
// fails or becomes a var in the root scope, depending on the assign mode.
func (s *Scope) Set(name string, val Object) error {
	if b, ok := s.Lookup(name); ok {
		if b.Kind == DeclConst {
			return &ReassignConstError{Name: name}
		}
		b.Value = val
		return nil
	}
	if s.globals.Has(name) {
		s.globals.Set(name, val)
		return nil
	}
	if s.globals.Mode == config.AssignStrict {
		return &NameResolutionError{Name: name}
	}
	s.root().store[name] = &Binding{Value: val, Kind: DeclVar}
	return nil
}

// Lookup finds the binding for name in this chain, ignoring globals.
func (s *Scope) Lookup(name string) (*Binding, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if b, ok := sc.store[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// Receiver returns `this` for code running in this scope. Arrow function
// scopes define none, so they see the receiver of the enclosing code.
func (s *Scope) Receiver() Object {
	for sc := s; sc != nil; sc = sc.outer {
		if sc.hasThis {
			return sc.this
		}
	}
	return Undefined
}

func (s *Scope) setReceiver(this Object) {
	s.this = this
	s.hasThis = true
}

// coroutine returns the suspension context of the nearest function scope.
func (s *Scope) coroutine() *coroutine {
	return s.functionScope().co
}

func (s *Scope) functionScope() *Scope {
	sc := s
	for sc.kind == BlockScope && sc.outer != nil {
		sc = sc.outer
	}
	return sc
}

func (s *Scope) root() *Scope {
	sc := s
	for sc.outer != nil {
		sc = sc.outer
	}
	return sc
}

// Globals is the host namespace consulted after the scope chain. It
// outlives individual programs run by the same evaluator.
type Globals struct {
	Mode  config.AssignMode
	store map[string]Object
}

func NewGlobals(mode config.AssignMode) *Globals {
	return &Globals{Mode: mode, store: make(map[string]Object)}
}

func (g *Globals) Get(name string) (Object, bool) {
	v, ok := g.store[name]
	return v, ok
}

func (g *Globals) Set(name string, val Object) { g.store[name] = val }

func (g *Globals) Has(name string) bool {
	_, ok := g.store[name]
	return ok
}

func (g *Globals) Names() []string {
	names := make([]string, 0, len(g.store))
	for n := range g.store {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
