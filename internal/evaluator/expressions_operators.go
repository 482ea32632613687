package evaluator

import (
	"errors"
	"math"

	"github.com/funvibe/jswalk/internal/ast"
)

func (e *Evaluator) evalBinaryExpression(node *ast.BinaryExpression, scope *Scope) (Object, error) {
	left, err := e.Eval(node.Left, scope)
	if err != nil {
		return nil, err
	}
	right, err := e.Eval(node.Right, scope)
	if err != nil {
		return nil, err
	}
	res, err := e.binaryOp(node.Operator, left, right)
	if err != nil {
		if use, ok := err.(*UnsupportedSyntaxError); ok {
			use.Loc = node.Loc
		}
		return nil, err
	}
	return res, nil
}

// binaryOp applies a binary or compound-assignment operator with host
// (ECMAScript) semantics.
func (e *Evaluator) binaryOp(op string, left, right Object) (Object, error) {
	switch op {
	case "+":
		lp, rp := toPrimitive(left), toPrimitive(right)
		_, ls := lp.(*String)
		_, rs := rp.(*String)
		if ls || rs {
			return &String{Value: toString(lp) + toString(rp)}, nil
		}
		return &Number{Value: toNumber(lp) + toNumber(rp)}, nil
	case "-":
		return &Number{Value: toNumber(left) - toNumber(right)}, nil
	case "*":
		return &Number{Value: toNumber(left) * toNumber(right)}, nil
	case "/":
		return &Number{Value: toNumber(left) / toNumber(right)}, nil
	case "%":
		return &Number{Value: math.Mod(toNumber(left), toNumber(right))}, nil
	case "**":
		return &Number{Value: math.Pow(toNumber(left), toNumber(right))}, nil

	case "==":
		return nativeBool(looseEquals(left, right)), nil
	case "!=":
		return nativeBool(!looseEquals(left, right)), nil
	case "===":
		return nativeBool(strictEquals(left, right)), nil
	case "!==":
		return nativeBool(!strictEquals(left, right)), nil

	case "<":
		return nativeBool(lessThan(left, right, false)), nil
	case ">":
		return nativeBool(lessThan(right, left, false)), nil
	case "<=":
		return nativeBool(lessThan(left, right, true)), nil
	case ">=":
		return nativeBool(lessThan(right, left, true)), nil

	case "&":
		return &Number{Value: float64(toInt32(left) & toInt32(right))}, nil
	case "|":
		return &Number{Value: float64(toInt32(left) | toInt32(right))}, nil
	case "^":
		return &Number{Value: float64(toInt32(left) ^ toInt32(right))}, nil
	case "<<":
		return &Number{Value: float64(toInt32(left) << (toUint32(right) & 31))}, nil
	case ">>":
		return &Number{Value: float64(toInt32(left) >> (toUint32(right) & 31))}, nil
	case ">>>":
		return &Number{Value: float64(toUint32(left) >> (toUint32(right) & 31))}, nil

	case "instanceof":
		return e.instanceOf(left, right)
	case "in":
		if isPrimitive(right) {
			return nil, typeErrorf("cannot use 'in' operator to search for '%s' in %s", toString(left), toString(right))
		}
		return nativeBool(e.hasProperty(right, toPropertyKey(left))), nil
	}
	return nil, &UnsupportedSyntaxError{Kind: "BinaryOperator", Reason: op}
}

// lessThan reports a < b, or a <= b with orEqual. NaN operands compare
// false either way.
func lessThan(a, b Object, orEqual bool) bool {
	pa, pb := toPrimitive(a), toPrimitive(b)
	sa, aStr := pa.(*String)
	sb, bStr := pb.(*String)
	if aStr && bStr {
		if orEqual {
			return !(sb.Value < sa.Value)
		}
		return sa.Value < sb.Value
	}
	na, nb := toNumber(pa), toNumber(pb)
	if math.IsNaN(na) || math.IsNaN(nb) {
		return false
	}
	if orEqual {
		return !(nb < na)
	}
	return na < nb
}

func (e *Evaluator) instanceOf(left, right Object) (Object, error) {
	if !isCallable(right) {
		return nil, typeErrorf("right-hand side of 'instanceof' is not callable")
	}
	protoVal, err := e.getProperty(right, "prototype")
	if err != nil {
		return nil, err
	}
	proto, ok := protoVal.(*Record)
	if !ok || isPrimitive(left) {
		return False, nil
	}
	for p := e.protoOf(left); p != nil; p = p.Proto {
		if p == proto {
			return True, nil
		}
	}
	return False, nil
}

func (e *Evaluator) evalLogicalExpression(node *ast.LogicalExpression, scope *Scope) (Object, error) {
	left, err := e.Eval(node.Left, scope)
	if err != nil {
		return nil, err
	}
	switch node.Operator {
	case "&&":
		if !isTruthy(left) {
			return left, nil
		}
	case "||":
		if isTruthy(left) {
			return left, nil
		}
	case "??":
		if !isNullish(left) {
			return left, nil
		}
	default:
		return nil, &UnsupportedSyntaxError{Kind: "LogicalOperator", Loc: node.Loc, Reason: node.Operator}
	}
	return e.Eval(node.Right, scope)
}

func (e *Evaluator) evalUnaryExpression(node *ast.UnaryExpression, scope *Scope) (Object, error) {
	switch node.Operator {
	case "typeof":
		if id, ok := node.Argument.(*ast.Identifier); ok {
			v, err := scope.Get(id.Name)
			var nre *NameResolutionError
			if errors.As(err, &nre) {
				return &String{Value: "undefined"}, nil
			}
			if err != nil {
				return nil, err
			}
			return &String{Value: typeOf(v)}, nil
		}
	case "delete":
		return e.evalDelete(node.Argument, scope)
	}

	v, err := e.Eval(node.Argument, scope)
	if err != nil {
		return nil, err
	}
	switch node.Operator {
	case "typeof":
		return &String{Value: typeOf(v)}, nil
	case "!":
		return nativeBool(!isTruthy(v)), nil
	case "-":
		return &Number{Value: -toNumber(v)}, nil
	case "+":
		return &Number{Value: toNumber(v)}, nil
	case "~":
		return &Number{Value: float64(^toInt32(v))}, nil
	case "void":
		return Undefined, nil
	}
	return nil, &UnsupportedSyntaxError{Kind: "UnaryOperator", Loc: node.Loc, Reason: node.Operator}
}

func (e *Evaluator) evalDelete(target ast.Expression, scope *Scope) (Object, error) {
	switch t := target.(type) {
	case *ast.MemberExpression:
		obj, key, err := e.memberTarget(t, scope)
		if err != nil {
			return nil, err
		}
		ok, err := e.deleteProperty(obj, key)
		if err != nil {
			return nil, err
		}
		return nativeBool(ok), nil
	case *ast.Identifier:
		return False, nil
	}
	if _, err := e.Eval(target, scope); err != nil {
		return nil, err
	}
	return True, nil
}

func (e *Evaluator) evalUpdateExpression(node *ast.UpdateExpression, scope *Scope) (Object, error) {
	delta := 1.0
	if node.Operator == "--" {
		delta = -1
	} else if node.Operator != "++" {
		return nil, &UnsupportedSyntaxError{Kind: "UpdateOperator", Loc: node.Loc, Reason: node.Operator}
	}

	var (
		old   float64
		write func(Object) error
	)
	switch t := node.Argument.(type) {
	case *ast.Identifier:
		v, err := scope.Get(t.Name)
		if err != nil {
			return nil, err
		}
		old = toNumber(v)
		write = func(nv Object) error { return scope.Set(t.Name, nv) }
	case *ast.MemberExpression:
		obj, key, err := e.memberTarget(t, scope)
		if err != nil {
			return nil, err
		}
		v, err := e.getProperty(obj, key)
		if err != nil {
			return nil, err
		}
		old = toNumber(v)
		write = func(nv Object) error { return e.setProperty(obj, key, nv) }
	default:
		return nil, unsupported(node.Argument)
	}

	updated := &Number{Value: old + delta}
	if err := write(updated); err != nil {
		return nil, err
	}
	if node.Prefix {
		return updated, nil
	}
	return &Number{Value: old}, nil
}
