package evaluator

import (
	"github.com/funvibe/jswalk/internal/ast"
)

// evalCallExpression invokes the callee. A member callee supplies its
// object as the receiver; any other callee is called without one.
func (e *Evaluator) evalCallExpression(node *ast.CallExpression, scope *Scope) (Object, error) {
	var (
		callee Object
		this   Object = Undefined
	)
	if m, ok := node.Callee.(*ast.MemberExpression); ok {
		obj, key, err := e.memberTarget(m, scope)
		if err != nil {
			return nil, err
		}
		if callee, err = e.getProperty(obj, key); err != nil {
			return nil, err
		}
		this = obj
	} else {
		var err error
		if callee, err = e.Eval(node.Callee, scope); err != nil {
			return nil, err
		}
	}

	args, err := e.evalArguments(node.Arguments, scope)
	if err != nil {
		return nil, err
	}
	if !isCallable(callee) {
		return nil, &TypeError{Msg: calleeLabel(node.Callee) + " is not a function", Loc: node.Loc}
	}
	res, err := e.callFunction(callee, this, args)
	if err != nil {
		return nil, err
	}
	return unwrapSignal(res), nil
}

func (e *Evaluator) evalNewExpression(node *ast.NewExpression, scope *Scope) (Object, error) {
	callee, err := e.Eval(node.Callee, scope)
	if err != nil {
		return nil, err
	}
	args, err := e.evalArguments(node.Arguments, scope)
	if err != nil {
		return nil, err
	}
	return e.construct(callee, args)
}

func (e *Evaluator) evalArguments(exprs []ast.Expression, scope *Scope) ([]Object, error) {
	args := make([]Object, 0, len(exprs))
	for _, a := range exprs {
		v, err := e.Eval(a, scope)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// calleeLabel renders a callee for error messages: f, obj.method, obj[...].
func calleeLabel(node ast.Expression) string {
	switch n := node.(type) {
	case *ast.Identifier:
		return n.Name
	case *ast.ThisExpression:
		return "this"
	case *ast.MemberExpression:
		if id, ok := n.Property.(*ast.Identifier); ok && !n.Computed {
			return calleeLabel(n.Object) + "." + id.Name
		}
		return calleeLabel(n.Object) + "[...]"
	}
	return "expression"
}
