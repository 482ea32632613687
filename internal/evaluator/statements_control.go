package evaluator

import (
	"github.com/funvibe/jswalk/internal/ast"
)

// evalSwitchStatement compares the discriminant against each case test in
// order with strict equality, falls back to the default clause, and then
// runs consequents from the selected clause onward until a break.
func (e *Evaluator) evalSwitchStatement(node *ast.SwitchStatement, scope *Scope) (Object, error) {
	switchScope := NewEnclosedScope(scope, BlockScope)
	disc, err := e.Eval(node.Discriminant, switchScope)
	if err != nil {
		return nil, err
	}

	start := -1
	for i, c := range node.Cases {
		if c.Test == nil {
			continue
		}
		v, err := e.Eval(c.Test, switchScope)
		if err != nil {
			return nil, err
		}
		if strictEquals(disc, v) {
			start = i
			break
		}
	}
	if start < 0 {
		for i, c := range node.Cases {
			if c.Test == nil {
				start = i
				break
			}
		}
	}
	if start < 0 {
		return Undefined, nil
	}

	for _, c := range node.Cases[start:] {
		for _, stmt := range c.Consequent {
			res, err := e.Eval(stmt, switchScope)
			if err != nil {
				return nil, err
			}
			switch res.(type) {
			case *BreakSignal:
				return Undefined, nil
			case *ContinueSignal, *ReturnValue:
				return res, nil
			}
		}
	}
	return Undefined, nil
}

// evalTryStatement runs the block, hands a catchable failure to the
// handler, then always runs the finalizer. A signal from the finalizer
// replaces whatever the block or handler produced, including an error.
func (e *Evaluator) evalTryStatement(node *ast.TryStatement, scope *Scope) (Object, error) {
	res, err := e.Eval(node.Block, scope)

	if err != nil && node.Handler != nil && catchable(err) {
		catchScope := NewEnclosedScope(scope, BlockScope)
		res, err = e.evalCatchClause(node.Handler, e.errorValue(err), catchScope)
	}

	if node.Finalizer != nil {
		fres, ferr := e.Eval(node.Finalizer, scope)
		if ferr != nil {
			return nil, ferr
		}
		if isSignal(fres) && (err == nil || catchable(err)) {
			return fres, nil
		}
	}
	return res, err
}

func (e *Evaluator) evalCatchClause(clause *ast.CatchClause, caught Object, scope *Scope) (Object, error) {
	if clause.Param != nil {
		id, ok := clause.Param.(*ast.Identifier)
		if !ok {
			return nil, unsupported(clause.Param)
		}
		if err := scope.Declare(DeclLet, id.Name, caught); err != nil {
			return nil, err
		}
	}
	return e.Eval(clause.Body, scope)
}
