package evaluator

import (
	"strings"

	"github.com/funvibe/jswalk/internal/ast"
)

func (e *Evaluator) evalLiteral(node *ast.Literal) (Object, error) {
	if node.Regex != nil {
		return nil, &UnsupportedSyntaxError{Kind: "RegExpLiteral", Loc: node.Loc}
	}
	switch v := node.Value.(type) {
	case nil:
		return Null, nil
	case bool:
		return nativeBool(v), nil
	case float64:
		return &Number{Value: v}, nil
	case string:
		return &String{Value: v}, nil
	}
	return nil, unsupported(node)
}

func (e *Evaluator) evalArrayExpression(node *ast.ArrayExpression, scope *Scope) (Object, error) {
	elems := make([]Object, len(node.Elements))
	for i, el := range node.Elements {
		if el == nil {
			elems[i] = Undefined
			continue
		}
		v, err := e.Eval(el, scope)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return NewArray(elems...), nil
}

func (e *Evaluator) evalObjectExpression(node *ast.ObjectExpression, scope *Scope) (Object, error) {
	rec := NewRecord(e.objectProto)
	for _, prop := range node.Properties {
		key, err := e.propertyName(prop, scope)
		if err != nil {
			return nil, err
		}
		val, err := e.evalNamed(prop.Value, key, scope)
		if err != nil {
			return nil, err
		}
		switch prop.PropKind {
		case ast.PropGet:
			rec.DefineGetter(key, val)
		case ast.PropSet:
			rec.DefineSetter(key, val)
		default:
			rec.Set(key, val)
		}
	}
	return rec, nil
}

// propertyName resolves a literal key. Computed keys are evaluated.
func (e *Evaluator) propertyName(prop *ast.Property, scope *Scope) (string, error) {
	if prop.Computed {
		k, err := e.Eval(prop.Key, scope)
		if err != nil {
			return "", err
		}
		return toPropertyKey(k), nil
	}
	switch k := prop.Key.(type) {
	case *ast.Identifier:
		return k.Name, nil
	case *ast.Literal:
		v, err := e.evalLiteral(k)
		if err != nil {
			return "", err
		}
		return toPropertyKey(v), nil
	}
	return "", unsupported(prop.Key)
}

func (e *Evaluator) evalTemplateLiteral(node *ast.TemplateLiteral, scope *Scope) (Object, error) {
	var b strings.Builder
	for i, q := range node.Quasis {
		b.WriteString(q.Cooked)
		if i < len(node.Expressions) {
			v, err := e.Eval(node.Expressions[i], scope)
			if err != nil {
				return nil, err
			}
			b.WriteString(toString(v))
		}
	}
	return &String{Value: b.String()}, nil
}

func (e *Evaluator) evalSequenceExpression(node *ast.SequenceExpression, scope *Scope) (Object, error) {
	var last Object = Undefined
	for _, expr := range node.Expressions {
		v, err := e.Eval(expr, scope)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (e *Evaluator) evalConditionalExpression(node *ast.ConditionalExpression, scope *Scope) (Object, error) {
	test, err := e.Eval(node.Test, scope)
	if err != nil {
		return nil, err
	}
	if isTruthy(test) {
		return e.Eval(node.Consequent, scope)
	}
	return e.Eval(node.Alternate, scope)
}

// evalNamed evaluates expr, giving an anonymous function or arrow the
// name it is being bound to.
func (e *Evaluator) evalNamed(expr ast.Expression, name string, scope *Scope) (Object, error) {
	switch fn := expr.(type) {
	case *ast.FunctionExpression:
		if fn.ID == nil {
			if err := e.step(); err != nil {
				return nil, err
			}
			return e.newFunction(fn, name, scope)
		}
	case *ast.ArrowFunctionExpression:
		if err := e.step(); err != nil {
			return nil, err
		}
		return e.newFunction(fn, name, scope)
	}
	return e.Eval(expr, scope)
}
