package jswalk

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/funvibe/jswalk/internal/evaluator"
)

var (
	objectType = reflect.TypeOf((*evaluator.Object)(nil)).Elem()
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// Marshaller handles conversion between Go and guest values.
type Marshaller struct {
	eval *evaluator.Evaluator
}

func NewMarshaller(e *evaluator.Evaluator) *Marshaller {
	return &Marshaller{eval: e}
}

// ToValue converts a Go value to a guest Object. Structs and maps become
// records, slices become arrays and functions become callable builtins.
func (m *Marshaller) ToValue(val any) (evaluator.Object, error) {
	if val == nil {
		return evaluator.Null, nil
	}
	if obj, ok := val.(evaluator.Object); ok {
		return obj, nil
	}
	if err, ok := val.(error); ok {
		return m.eval.NewError("Error", err.Error()), nil
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &evaluator.Number{Value: float64(v.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &evaluator.Number{Value: float64(v.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return &evaluator.Number{Value: v.Float()}, nil
	case reflect.Bool:
		return &evaluator.Boolean{Value: v.Bool()}, nil
	case reflect.String:
		return &evaluator.String{Value: v.String()}, nil
	case reflect.Slice, reflect.Array:
		return m.sliceToArray(v)
	case reflect.Map:
		return m.mapToRecord(v)
	case reflect.Struct:
		return m.structToRecord(v)
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return evaluator.Null, nil
		}
		return m.ToValue(v.Elem().Interface())
	case reflect.Func:
		if v.IsNil() {
			return evaluator.Null, nil
		}
		return m.funcToBuiltin(v), nil
	}
	return nil, fmt.Errorf("unsupported Go type %s", v.Type())
}

// FromValue converts a guest Object to a Go value. targetType is
// optional; when given, the result is converted to it where possible.
// Callables, promises and generators are returned as Objects.
func (m *Marshaller) FromValue(obj evaluator.Object, targetType reflect.Type) (any, error) {
	if obj == nil {
		return nil, nil
	}
	if targetType != nil && targetType == objectType {
		return obj, nil
	}

	switch o := obj.(type) {
	case *evaluator.Number:
		if targetType != nil {
			switch targetType.Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
				reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				if o.Value != math.Trunc(o.Value) || math.IsInf(o.Value, 0) {
					return nil, fmt.Errorf("cannot convert %v to %s", o.Value, targetType)
				}
				return reflect.ValueOf(o.Value).Convert(targetType).Interface(), nil
			case reflect.Float32:
				return float32(o.Value), nil
			}
		}
		return o.Value, nil
	case *evaluator.String:
		return o.Value, nil
	case *evaluator.Boolean:
		return o.Value, nil
	case *evaluator.Array:
		return m.arrayToSlice(o, targetType)
	case *evaluator.Record:
		if targetType != nil && targetType.Kind() == reflect.Struct {
			return m.recordToStruct(o, targetType)
		}
		return m.recordToMap(o)
	}
	if obj == evaluator.Undefined || obj == evaluator.Null {
		return nil, nil
	}
	return obj, nil
}

func (m *Marshaller) sliceToArray(v reflect.Value) (*evaluator.Array, error) {
	elements := make([]evaluator.Object, v.Len())
	for i := 0; i < v.Len(); i++ {
		val, err := m.ToValue(v.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		elements[i] = val
	}
	return evaluator.NewArray(elements...), nil
}

// mapToRecord copies a map into a record with keys in sorted order.
func (m *Marshaller) mapToRecord(v reflect.Value) (*evaluator.Record, error) {
	if v.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("map key type %s is not a string", v.Type().Key())
	}
	keys := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	rec := m.eval.NewObject()
	for _, k := range keys {
		val, err := m.ToValue(v.MapIndex(reflect.ValueOf(k).Convert(v.Type().Key())).Interface())
		if err != nil {
			return nil, fmt.Errorf("map value %q: %w", k, err)
		}
		rec.Set(k, val)
	}
	return rec, nil
}

func (m *Marshaller) structToRecord(v reflect.Value) (*evaluator.Record, error) {
	rec := m.eval.NewObject()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		val, err := m.ToValue(v.Field(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		rec.Set(field.Name, val)
	}
	return rec, nil
}

func (m *Marshaller) arrayToSlice(a *evaluator.Array, targetType reflect.Type) (any, error) {
	elemType := reflect.TypeOf((*any)(nil)).Elem()
	if targetType != nil && targetType.Kind() == reflect.Slice {
		elemType = targetType.Elem()
	}

	slice := reflect.MakeSlice(reflect.SliceOf(elemType), 0, len(a.Elements))
	for i, el := range a.Elements {
		val, err := m.FromValue(el, elemType)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		rv, err := assignable(val, elemType)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		slice = reflect.Append(slice, rv)
	}
	return slice.Interface(), nil
}

func (m *Marshaller) recordToMap(r *evaluator.Record) (map[string]any, error) {
	result := make(map[string]any, r.Len())
	for _, k := range r.Keys() {
		v, err := m.eval.GetProperty(r, k)
		if err != nil {
			return nil, err
		}
		val, err := m.FromValue(v, nil)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		result[k] = val
	}
	return result, nil
}

// recordToStruct fills exported fields whose names match record keys.
func (m *Marshaller) recordToStruct(r *evaluator.Record, targetType reflect.Type) (any, error) {
	out := reflect.New(targetType).Elem()
	for i := 0; i < targetType.NumField(); i++ {
		field := targetType.Field(i)
		if !field.IsExported() {
			continue
		}
		if _, ok := r.Lookup(field.Name); !ok {
			continue
		}
		v, err := m.eval.GetProperty(r, field.Name)
		if err != nil {
			return nil, err
		}
		val, err := m.FromValue(v, field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		rv, err := assignable(val, field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		out.Field(i).Set(rv)
	}
	return out.Interface(), nil
}

func assignable(val any, t reflect.Type) (reflect.Value, error) {
	if val == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(val)
	switch {
	case rv.Type().AssignableTo(t):
		return rv, nil
	case rv.Type().ConvertibleTo(t):
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", rv.Type(), t)
}

// funcToBuiltin wraps a Go function. Arguments are converted to the
// parameter types; a trailing non-nil error result becomes a guest
// exception.
func (m *Marshaller) funcToBuiltin(fn reflect.Value) *evaluator.Builtin {
	fnType := fn.Type()
	name := fnType.String()
	return &evaluator.Builtin{
		Name: name,
		Fn: func(e *evaluator.Evaluator, _ evaluator.Object, args []evaluator.Object) (evaluator.Object, error) {
			numIn := fnType.NumIn()
			isVariadic := fnType.IsVariadic()

			n := len(args)
			if !isVariadic {
				n = numIn
			} else if n < numIn-1 {
				n = numIn - 1
			}

			goArgs := make([]reflect.Value, n)
			for i := 0; i < n; i++ {
				var targetType reflect.Type
				if isVariadic && i >= numIn-1 {
					targetType = fnType.In(numIn - 1).Elem()
				} else {
					targetType = fnType.In(i)
				}
				var argObj evaluator.Object = evaluator.Undefined
				if i < len(args) {
					argObj = args[i]
				}
				val, err := m.FromValue(argObj, targetType)
				if err != nil {
					return nil, &evaluator.TypeError{Msg: fmt.Sprintf("argument %d: %v", i, err)}
				}
				rv, err := assignable(val, targetType)
				if err != nil {
					return nil, &evaluator.TypeError{Msg: fmt.Sprintf("argument %d: %v", i, err)}
				}
				goArgs[i] = rv
			}

			results := fn.Call(goArgs)
			if k := len(results); k > 0 && fnType.Out(k-1) == errorType {
				if err, _ := results[k-1].Interface().(error); err != nil {
					var thrown *evaluator.ThrowError
					if errors.As(err, &thrown) {
						return nil, thrown
					}
					return nil, &evaluator.ThrowError{Value: e.NewError("Error", err.Error())}
				}
				results = results[:k-1]
			}

			switch len(results) {
			case 0:
				return evaluator.Undefined, nil
			case 1:
				return m.ToValue(results[0].Interface())
			}
			elements := make([]evaluator.Object, len(results))
			for i, res := range results {
				val, err := m.ToValue(res.Interface())
				if err != nil {
					return nil, err
				}
				elements[i] = val
			}
			return evaluator.NewArray(elements...), nil
		},
	}
}
