package evaluator

import (
	"github.com/funvibe/jswalk/internal/ast"
)

// newFunction closes node over scope. name overrides the node's own id
// for anonymous expressions bound to a name.
func (e *Evaluator) newFunction(node ast.FunctionNode, name string, scope *Scope) (*Function, error) {
	def := node.Func()
	fn := &Function{
		Name:        name,
		Body:        def.Body,
		Expression:  def.IsExpression,
		Env:         scope,
		IsAsync:     def.Async,
		IsGenerator: def.Generator,
	}
	switch node.(type) {
	case *ast.ArrowFunctionExpression:
		fn.IsArrow = true
	case *ast.FunctionExpression:
		if def.ID != nil {
			fn.Name = def.ID.Name
			fn.SelfBind = true
		}
	}
	if fn.IsAsync && fn.IsGenerator {
		return nil, &UnsupportedSyntaxError{Kind: "AsyncGenerator", Loc: def.Loc}
	}
	for _, p := range def.Params {
		id, ok := p.(*ast.Identifier)
		if !ok {
			return nil, unsupported(p)
		}
		fn.Params = append(fn.Params, id.Name)
	}
	return fn, nil
}

// callFunction invokes any callable with an explicit receiver.
func (e *Evaluator) callFunction(callee Object, this Object, args []Object) (Object, error) {
	switch fn := callee.(type) {
	case *Function:
		return e.invoke(fn, this, args)
	case *Builtin:
		if err := e.enterCall(); err != nil {
			return nil, err
		}
		defer e.exitCall()
		res, err := fn.Fn(e, this, args)
		if err != nil {
			return nil, err
		}
		return unwrapSignal(res), nil
	}
	return nil, typeErrorf("%s is not a function", typeOf(callee))
}

// CallFunction is callFunction for hosts: no receiver, and no event loop
// turn.
func (e *Evaluator) CallFunction(callee Object, args ...Object) (Object, error) {
	return e.callFunction(callee, Undefined, args)
}

func (e *Evaluator) enterCall() error {
	e.callDepth++
	if e.maxCallDepth > 0 && e.callDepth > e.maxCallDepth {
		e.callDepth--
		return ErrCallDepthExceeded
	}
	return nil
}

func (e *Evaluator) exitCall() { e.callDepth-- }

// invoke binds a fresh function scope and then follows the protocol for
// the function's kind: plain functions run to completion, generators
// return a suspended handle, async functions return a promise after the
// body's first synchronous step.
func (e *Evaluator) invoke(fn *Function, this Object, args []Object) (Object, error) {
	if err := e.enterCall(); err != nil {
		return nil, err
	}
	defer e.exitCall()

	scope := NewEnclosedScope(fn.Env, FunctionScope)
	if !fn.IsArrow {
		scope.setReceiver(this)
	}
	if fn.SelfBind {
		_ = scope.Declare(DeclVar, fn.Name, fn)
	}
	for i, name := range fn.Params {
		_ = scope.Declare(DeclVar, name, arg(args, i))
	}

	switch {
	case fn.IsGenerator:
		return e.newGenerator(fn, scope), nil
	case fn.IsAsync:
		return e.startAsync(fn, scope)
	}
	return e.runBody(fn, scope)
}

// runBody evaluates the function body directly in its function scope and
// unwraps the return signal.
func (e *Evaluator) runBody(fn *Function, scope *Scope) (Object, error) {
	if fn.Expression {
		return e.Eval(fn.Body, scope)
	}
	block, ok := fn.Body.(*ast.BlockStatement)
	if !ok {
		return nil, unsupported(fn.Body)
	}
	res, err := e.evalStatements(block.Body, scope)
	if err != nil {
		return nil, err
	}
	if rv, ok := res.(*ReturnValue); ok {
		return rv.Value, nil
	}
	return Undefined, nil
}

// construct implements `new`.
func (e *Evaluator) construct(callee Object, args []Object) (Object, error) {
	switch fn := callee.(type) {
	case *Function:
		if !fn.constructible() {
			return nil, typeErrorf("%s is not a constructor", functionLabel(fn.Name))
		}
		proto := e.objectProto
		if p, err := e.getProperty(fn, "prototype"); err == nil {
			if rec, ok := p.(*Record); ok {
				proto = rec
			}
		}
		obj := NewRecord(proto)
		res, err := e.invoke(fn, obj, args)
		if err != nil {
			return nil, err
		}
		switch res.(type) {
		case *Record, *Array, *Function, *Builtin, *Promise, *Generator:
			return res, nil
		}
		return obj, nil
	case *Builtin:
		if fn.Construct == nil {
			return nil, typeErrorf("%s is not a constructor", fn.Name)
		}
		if err := e.enterCall(); err != nil {
			return nil, err
		}
		defer e.exitCall()
		return fn.Construct(e, args)
	}
	return nil, typeErrorf("%s is not a constructor", typeOf(callee))
}

func functionLabel(name string) string {
	if name == "" {
		return "anonymous"
	}
	return name
}

// functionProps returns the property record of a callable, creating it on
// first use.
func (e *Evaluator) functionProps(callee Object) *Record {
	switch fn := callee.(type) {
	case *Function:
		if fn.props == nil {
			fn.props = NewRecord(e.functionProto)
			if fn.constructible() {
				proto := NewRecord(e.objectProto)
				proto.Set("constructor", fn)
				fn.props.Set("prototype", proto)
			}
		}
		return fn.props
	case *Builtin:
		if fn.props == nil {
			fn.props = NewRecord(e.functionProto)
		}
		return fn.props
	}
	return nil
}
