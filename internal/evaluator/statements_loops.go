package evaluator

import (
	"github.com/funvibe/jswalk/internal/ast"
)

// loopControl interprets a body result. stop is set for break and return;
// the returned object is what the loop itself yields.
func loopControl(res Object) (out Object, stop bool) {
	switch res.(type) {
	case *BreakSignal:
		return Undefined, true
	case *ReturnValue:
		return res, true
	}
	return nil, false
}

func (e *Evaluator) evalWhileStatement(node *ast.WhileStatement, scope *Scope) (Object, error) {
	loopScope := NewEnclosedScope(scope, BlockScope)
	for {
		test, err := e.Eval(node.Test, loopScope)
		if err != nil {
			return nil, err
		}
		if !isTruthy(test) {
			return Undefined, nil
		}
		res, err := e.Eval(node.Body, loopScope)
		if err != nil {
			return nil, err
		}
		if out, stop := loopControl(res); stop {
			return out, nil
		}
	}
}

func (e *Evaluator) evalDoWhileStatement(node *ast.DoWhileStatement, scope *Scope) (Object, error) {
	loopScope := NewEnclosedScope(scope, BlockScope)
	for {
		res, err := e.Eval(node.Body, loopScope)
		if err != nil {
			return nil, err
		}
		if out, stop := loopControl(res); stop {
			return out, nil
		}
		test, err := e.Eval(node.Test, loopScope)
		if err != nil {
			return nil, err
		}
		if !isTruthy(test) {
			return Undefined, nil
		}
	}
}

func (e *Evaluator) evalForStatement(node *ast.ForStatement, scope *Scope) (Object, error) {
	loopScope := NewEnclosedScope(scope, BlockScope)
	if node.Init != nil {
		if _, err := e.Eval(node.Init, loopScope); err != nil {
			return nil, err
		}
	}
	for {
		if node.Test != nil {
			test, err := e.Eval(node.Test, loopScope)
			if err != nil {
				return nil, err
			}
			if !isTruthy(test) {
				return Undefined, nil
			}
		}
		res, err := e.Eval(node.Body, loopScope)
		if err != nil {
			return nil, err
		}
		if out, stop := loopControl(res); stop {
			return out, nil
		}
		if node.Update != nil {
			if _, err := e.Eval(node.Update, loopScope); err != nil {
				return nil, err
			}
		}
	}
}
