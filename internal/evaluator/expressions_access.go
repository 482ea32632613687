package evaluator

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf16"

	"github.com/funvibe/jswalk/internal/ast"
	"github.com/funvibe/jswalk/internal/config"
)

func (e *Evaluator) evalMemberExpression(node *ast.MemberExpression, scope *Scope) (Object, error) {
	obj, key, err := e.memberTarget(node, scope)
	if err != nil {
		return nil, err
	}
	return e.getProperty(obj, key)
}

// memberTarget evaluates the object and the key of a member expression.
func (e *Evaluator) memberTarget(node *ast.MemberExpression, scope *Scope) (Object, string, error) {
	obj, err := e.Eval(node.Object, scope)
	if err != nil {
		return nil, "", err
	}
	if node.Computed {
		k, err := e.Eval(node.Property, scope)
		if err != nil {
			return nil, "", err
		}
		return obj, toPropertyKey(k), nil
	}
	id, ok := node.Property.(*ast.Identifier)
	if !ok {
		return nil, "", unsupported(node.Property)
	}
	return obj, id.Name, nil
}

// protoOf returns the record consulted after an object's own properties.
func (e *Evaluator) protoOf(o Object) *Record {
	switch o := o.(type) {
	case *Record:
		return o.Proto
	case *Array:
		return e.arrayProto
	case *Function, *Builtin:
		return e.functionProto
	case *Promise:
		return e.promiseProto
	case *Generator:
		return e.generatorProto
	}
	return nil
}

// getProperty reads key from obj, running getters with obj as receiver.
func (e *Evaluator) getProperty(obj Object, key string) (Object, error) {
	switch o := obj.(type) {
	case *Record:
		p, ok := o.Lookup(key)
		if !ok {
			return Undefined, nil
		}
		return e.readSlot(p, obj)
	case *Array:
		if key == "length" {
			return &Number{Value: float64(len(o.Elements))}, nil
		}
		if i, ok := arrayIndex(key); ok {
			return unwrapSignal(o.at(i)), nil
		}
	case *String:
		units := utf16.Encode([]rune(o.Value))
		if key == "length" {
			return &Number{Value: float64(len(units))}, nil
		}
		if i, ok := arrayIndex(key); ok {
			if i >= len(units) {
				return Undefined, nil
			}
			return &String{Value: string(utf16.Decode(units[i : i+1]))}, nil
		}
		return e.lookupProto(e.stringProto, key, obj)
	case *Function:
		switch key {
		case "name":
			return &String{Value: o.Name}, nil
		case "length":
			return &Number{Value: float64(len(o.Params))}, nil
		}
		return e.lookupProto(e.functionProps(o), key, obj)
	case *Builtin:
		if key == "name" {
			return &String{Value: o.Name}, nil
		}
		return e.lookupProto(e.functionProps(o), key, obj)
	}
	if isNullish(obj) {
		return nil, typeErrorf("cannot read properties of %s (reading '%s')", obj.Inspect(), key)
	}
	return e.lookupProto(e.protoOf(obj), key, obj)
}

func (e *Evaluator) lookupProto(rec *Record, key string, receiver Object) (Object, error) {
	if rec == nil {
		return Undefined, nil
	}
	p, ok := rec.Lookup(key)
	if !ok {
		return Undefined, nil
	}
	return e.readSlot(p, receiver)
}

func (e *Evaluator) readSlot(p *Property, receiver Object) (Object, error) {
	if p.isAccessor() {
		if p.Getter == nil {
			return Undefined, nil
		}
		return e.callFunction(p.Getter, receiver, nil)
	}
	if p.Value == nil {
		return Undefined, nil
	}
	return unwrapSignal(p.Value), nil
}

// setProperty writes key on obj. An accessor found anywhere on the
// prototype chain intercepts the write.
func (e *Evaluator) setProperty(obj Object, key string, val Object) error {
	switch o := obj.(type) {
	case *Record:
		return e.setRecordProperty(o, obj, key, val)
	case *Array:
		if key == "length" {
			n, err := e.arrayLength(toNumber(val))
			if err != nil {
				return err
			}
			o.setLength(n)
			return nil
		}
		if i, ok := arrayIndex(key); ok {
			if i >= len(o.Elements) {
				if _, err := e.arrayLength(float64(i) + 1); err != nil {
					return err
				}
			}
			o.setAt(i, val)
		}
		return nil
	case *Function, *Builtin:
		if key == "name" || key == "length" {
			return nil
		}
		return e.setRecordProperty(e.functionProps(o), obj, key, val)
	}
	if isNullish(obj) {
		return typeErrorf("cannot set properties of %s (setting '%s')", obj.Inspect(), key)
	}
	return nil
}

// arrayLength validates a requested array length. Lengths past
// 2^32-1 are invalid; lengths past the configured bound are refused
// because arrays are stored densely.
func (e *Evaluator) arrayLength(n float64) (int, error) {
	if n < 0 || n != math.Trunc(n) || n > config.MaxArrayLength {
		return 0, &ThrowError{Value: e.NewError(config.RangeErrorName, "Invalid array length")}
	}
	if n > float64(e.maxArrayLen) {
		return 0, &ThrowError{Value: e.NewError(config.RangeErrorName,
			fmt.Sprintf("array length %d exceeds the limit of %d", int64(n), e.maxArrayLen))}
	}
	return int(n), nil
}

func (e *Evaluator) setRecordProperty(rec *Record, receiver Object, key string, val Object) error {
	if p, ok := rec.Lookup(key); ok && p.isAccessor() {
		if p.Setter == nil {
			return nil
		}
		_, err := e.callFunction(p.Setter, receiver, []Object{val})
		return err
	}
	rec.Set(key, val)
	return nil
}

func (e *Evaluator) deleteProperty(obj Object, key string) (bool, error) {
	switch o := obj.(type) {
	case *Record:
		return o.Delete(key), nil
	case *Array:
		if i, ok := arrayIndex(key); ok && i < len(o.Elements) {
			o.Elements[i] = Undefined
		}
		return key != "length", nil
	case *Function, *Builtin:
		return e.functionProps(o).Delete(key), nil
	}
	if isNullish(obj) {
		return false, typeErrorf("cannot convert %s to object", obj.Inspect())
	}
	return true, nil
}

func (e *Evaluator) hasProperty(obj Object, key string) bool {
	switch o := obj.(type) {
	case *Record:
		_, ok := o.Lookup(key)
		return ok
	case *Array:
		if key == "length" {
			return true
		}
		if i, ok := arrayIndex(key); ok {
			return i < len(o.Elements)
		}
	case *Function, *Builtin:
		if key == "name" || key == "length" {
			return true
		}
		_, ok := e.functionProps(o).Lookup(key)
		return ok
	}
	if proto := e.protoOf(obj); proto != nil {
		_, ok := proto.Lookup(key)
		return ok
	}
	return false
}

// evalAssignmentExpression handles plain and compound assignment to names
// and member expressions. The right-hand side is evaluated once, before
// the current value is read.
func (e *Evaluator) evalAssignmentExpression(node *ast.AssignmentExpression, scope *Scope) (Object, error) {
	op := strings.TrimSuffix(node.Operator, "=")
	compound := node.Operator != "="
	if compound && !isCompoundOperator(op) {
		return nil, &UnsupportedSyntaxError{Kind: "AssignmentOperator", Loc: node.Loc, Reason: node.Operator}
	}

	switch target := node.Left.(type) {
	case *ast.Identifier:
		right, err := e.evalNamed(node.Right, target.Name, scope)
		if err != nil {
			return nil, err
		}
		if compound {
			left, err := scope.Get(target.Name)
			if err != nil {
				return nil, err
			}
			if right, err = e.binaryOp(op, left, right); err != nil {
				return nil, err
			}
		}
		if err := scope.Set(target.Name, right); err != nil {
			return nil, err
		}
		return right, nil

	case *ast.MemberExpression:
		obj, key, err := e.memberTarget(target, scope)
		if err != nil {
			return nil, err
		}
		right, err := e.Eval(node.Right, scope)
		if err != nil {
			return nil, err
		}
		if compound {
			left, err := e.getProperty(obj, key)
			if err != nil {
				return nil, err
			}
			if right, err = e.binaryOp(op, left, right); err != nil {
				return nil, err
			}
		}
		if err := e.setProperty(obj, key, right); err != nil {
			return nil, err
		}
		return right, nil
	}
	return nil, unsupported(node.Left)
}

func isCompoundOperator(op string) bool {
	switch op {
	case "+", "-", "*", "/", "%", "**", "<<", ">>", ">>>", "&", "|", "^":
		return true
	}
	return false
}
