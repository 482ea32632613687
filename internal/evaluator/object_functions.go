package evaluator

import (
	"github.com/funvibe/jswalk/internal/ast"
)

// Function is a guest closure: its definition plus the scope it was
// created in. Nothing about it changes after creation except the
// properties hosts or guest code attach to it.
type Function struct {
	Name       string
	Params     []string
	Body       ast.Node
	Expression bool // concise arrow body
	Env        *Scope

	IsArrow     bool
	IsAsync     bool
	IsGenerator bool

	// SelfBind is set for named function expressions, whose name is
	// visible inside their own body.
	SelfBind bool

	props *Record
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	kind := "Function"
	switch {
	case f.IsAsync && f.IsGenerator:
		kind = "AsyncGeneratorFunction"
	case f.IsAsync:
		kind = "AsyncFunction"
	case f.IsGenerator:
		kind = "GeneratorFunction"
	}
	if f.Name == "" {
		return "[" + kind + " (anonymous)]"
	}
	return "[" + kind + ": " + f.Name + "]"
}

func (f *Function) constructible() bool {
	return !f.IsArrow && !f.IsAsync && !f.IsGenerator
}

// BuiltinFunction is a host-implemented callable. this is undefined for
// plain calls.
type BuiltinFunction func(e *Evaluator, this Object, args []Object) (Object, error)

type Builtin struct {
	Name string
	Fn   BuiltinFunction
	// Construct handles `new`; nil means the builtin is not a constructor.
	Construct func(e *Evaluator, args []Object) (Object, error)

	props *Record
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "[Function: " + b.Name + "]" }

func isCallable(o Object) bool {
	switch o.(type) {
	case *Function, *Builtin:
		return true
	}
	return false
}

func arg(args []Object, i int) Object {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}
