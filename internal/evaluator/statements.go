package evaluator

import (
	"github.com/funvibe/jswalk/internal/ast"
)

func (e *Evaluator) evalProgram(program *ast.Program, scope *Scope) (Object, error) {
	res, err := e.evalStatements(program.Body, scope)
	if err != nil {
		return nil, err
	}
	return unwrapSignal(res), nil
}

func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement, scope *Scope) (Object, error) {
	return e.evalStatements(block.Body, NewEnclosedScope(scope, BlockScope))
}

// evalStatements runs a statement list in two passes. The first binds
// function declarations and pre-declares var names, so both are visible
// before any statement runs; the second executes the rest in order and
// stops at the first signal.
func (e *Evaluator) evalStatements(stmts []ast.Statement, scope *Scope) (Object, error) {
	if err := e.hoistDeclarations(stmts, scope); err != nil {
		return nil, err
	}

	var result Object = Undefined
	for _, stmt := range stmts {
		if _, ok := stmt.(*ast.FunctionDeclaration); ok {
			continue
		}
		res, err := e.Eval(stmt, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(res) {
			return res, nil
		}
		result = res
	}
	return result, nil
}

func (e *Evaluator) hoistDeclarations(stmts []ast.Statement, scope *Scope) error {
	for _, stmt := range stmts {
		switch stmt := stmt.(type) {
		case *ast.FunctionDeclaration:
			if err := e.declareFunction(stmt, scope); err != nil {
				return err
			}
		case *ast.VariableDeclaration:
			if stmt.DeclKind != ast.DeclVar {
				continue
			}
			for _, d := range stmt.Declarations {
				if id, ok := d.ID.(*ast.Identifier); ok {
					scope.Hoist(id.Name)
				}
			}
		}
	}
	return nil
}

func (e *Evaluator) declareFunction(node *ast.FunctionDeclaration, scope *Scope) error {
	if node.ID == nil {
		return &UnsupportedSyntaxError{Kind: node.Kind(), Loc: node.Loc, Reason: "missing function name"}
	}
	fn, err := e.newFunction(node, node.ID.Name, scope)
	if err != nil {
		return err
	}
	return scope.Declare(DeclVar, node.ID.Name, fn)
}

func (e *Evaluator) evalVariableDeclaration(node *ast.VariableDeclaration, scope *Scope) (Object, error) {
	kind, ok := declKindOf(node.DeclKind)
	if !ok {
		return nil, &UnsupportedSyntaxError{Kind: node.DeclKind + " declaration", Loc: node.Loc}
	}
	for _, d := range node.Declarations {
		id, ok := d.ID.(*ast.Identifier)
		if !ok {
			return nil, unsupported(d.ID)
		}
		if d.Init == nil {
			if kind == DeclVar {
				// Already hoisted; a bare var must not reset it.
				scope.Hoist(id.Name)
				continue
			}
			if kind == DeclConst {
				return nil, &UnsupportedSyntaxError{Kind: node.Kind(), Loc: d.Loc, Reason: "missing initializer in const declaration"}
			}
			if err := scope.Declare(kind, id.Name, Undefined); err != nil {
				return nil, err
			}
			continue
		}
		val, err := e.evalNamed(d.Init, id.Name, scope)
		if err != nil {
			return nil, err
		}
		if err := scope.Declare(kind, id.Name, val); err != nil {
			return nil, err
		}
	}
	return Undefined, nil
}

func (e *Evaluator) evalReturnStatement(node *ast.ReturnStatement, scope *Scope) (Object, error) {
	if node.Argument == nil {
		return &ReturnValue{Value: Undefined}, nil
	}
	val, err := e.Eval(node.Argument, scope)
	if err != nil {
		return nil, err
	}
	return &ReturnValue{Value: val}, nil
}

func (e *Evaluator) evalIfStatement(node *ast.IfStatement, scope *Scope) (Object, error) {
	test, err := e.Eval(node.Test, scope)
	if err != nil {
		return nil, err
	}
	branch := node.Consequent
	if !isTruthy(test) {
		branch = node.Alternate
	}
	if branch == nil {
		return Undefined, nil
	}
	return e.Eval(branch, NewEnclosedScope(scope, BlockScope))
}

func (e *Evaluator) evalThrowStatement(node *ast.ThrowStatement, scope *Scope) (Object, error) {
	val, err := e.Eval(node.Argument, scope)
	if err != nil {
		return nil, err
	}
	return nil, &ThrowError{Value: val}
}
