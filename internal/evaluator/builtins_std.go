package evaluator

import (
	"math"
	"strings"
	"unicode/utf16"
)

var functionMethods = []method{
	{"call", func(e *Evaluator, this Object, args []Object) (Object, error) {
		if !isCallable(this) {
			return nil, typeErrorf("Function.prototype.call called on %s", typeOf(this))
		}
		var rest []Object
		if len(args) > 1 {
			rest = args[1:]
		}
		return e.callFunction(this, arg(args, 0), rest)
	}},
	{"apply", func(e *Evaluator, this Object, args []Object) (Object, error) {
		if !isCallable(this) {
			return nil, typeErrorf("Function.prototype.apply called on %s", typeOf(this))
		}
		var rest []Object
		switch list := arg(args, 1).(type) {
		case *Array:
			rest = list.Elements
		case *undefinedValue, *nullValue:
		default:
			return nil, typeErrorf("argument list must be an array")
		}
		return e.callFunction(this, arg(args, 0), rest)
	}},
	{"bind", func(e *Evaluator, this Object, args []Object) (Object, error) {
		target := this
		if !isCallable(target) {
			return nil, typeErrorf("bind called on %s", typeOf(target))
		}
		boundThis := arg(args, 0)
		var bound []Object
		if len(args) > 1 {
			bound = append(bound, args[1:]...)
		}
		name, _ := e.getProperty(target, "name")
		return &Builtin{
			Name: "bound " + toString(name),
			Fn: func(e *Evaluator, _ Object, args []Object) (Object, error) {
				all := append(append([]Object{}, bound...), args...)
				return e.callFunction(target, boundThis, all)
			},
		}, nil
	}},
}

func thisArray(this Object, name string) (*Array, error) {
	a, ok := this.(*Array)
	if !ok {
		return nil, typeErrorf("Array.prototype.%s called on %s", name, typeOf(this))
	}
	return a, nil
}

// relIndex resolves a possibly negative slice bound against n.
func relIndex(v Object, n, def int) int {
	if v == Undefined {
		return def
	}
	f := toNumber(v)
	if math.IsNaN(f) {
		return 0
	}
	i := int(math.Trunc(f))
	if f < 0 {
		i = n + i
		if i < 0 {
			i = 0
		}
	}
	if i > n {
		i = n
	}
	return i
}

// eachElement calls fn(element, index, array) for every element and hands
// each result to visit. visit returning false stops the walk.
func (e *Evaluator) eachElement(a *Array, fn Object, visit func(i int, el, res Object) bool) error {
	if !isCallable(fn) {
		return typeErrorf("%s is not a function", inspect(fn))
	}
	for i := 0; i < len(a.Elements); i++ {
		el := a.at(i)
		res, err := e.callFunction(fn, Undefined, []Object{el, &Number{Value: float64(i)}, a})
		if err != nil {
			return err
		}
		if !visit(i, el, res) {
			return nil
		}
	}
	return nil
}

var arrayMethods = []method{
	{"push", func(e *Evaluator, this Object, args []Object) (Object, error) {
		a, err := thisArray(this, "push")
		if err != nil {
			return nil, err
		}
		a.Elements = append(a.Elements, args...)
		return &Number{Value: float64(len(a.Elements))}, nil
	}},
	{"pop", func(e *Evaluator, this Object, _ []Object) (Object, error) {
		a, err := thisArray(this, "pop")
		if err != nil {
			return nil, err
		}
		if len(a.Elements) == 0 {
			return Undefined, nil
		}
		last := a.at(len(a.Elements) - 1)
		a.Elements = a.Elements[:len(a.Elements)-1]
		return last, nil
	}},
	{"shift", func(e *Evaluator, this Object, _ []Object) (Object, error) {
		a, err := thisArray(this, "shift")
		if err != nil {
			return nil, err
		}
		if len(a.Elements) == 0 {
			return Undefined, nil
		}
		first := a.at(0)
		a.Elements = append(a.Elements[:0:0], a.Elements[1:]...)
		return first, nil
	}},
	{"join", func(e *Evaluator, this Object, args []Object) (Object, error) {
		a, err := thisArray(this, "join")
		if err != nil {
			return nil, err
		}
		sep := ","
		if s := arg(args, 0); s != Undefined {
			sep = toString(s)
		}
		parts := make([]string, len(a.Elements))
		for i := range a.Elements {
			if el := a.at(i); !isNullish(el) {
				parts[i] = toString(el)
			}
		}
		return &String{Value: strings.Join(parts, sep)}, nil
	}},
	{"indexOf", func(e *Evaluator, this Object, args []Object) (Object, error) {
		a, err := thisArray(this, "indexOf")
		if err != nil {
			return nil, err
		}
		needle := arg(args, 0)
		for i := range a.Elements {
			if strictEquals(a.at(i), needle) {
				return &Number{Value: float64(i)}, nil
			}
		}
		return &Number{Value: -1}, nil
	}},
	{"includes", func(e *Evaluator, this Object, args []Object) (Object, error) {
		a, err := thisArray(this, "includes")
		if err != nil {
			return nil, err
		}
		needle := arg(args, 0)
		nn, nanNeedle := needle.(*Number)
		for i := range a.Elements {
			el := a.at(i)
			if strictEquals(el, needle) {
				return True, nil
			}
			if n, ok := el.(*Number); ok && nanNeedle && math.IsNaN(n.Value) && math.IsNaN(nn.Value) {
				return True, nil
			}
		}
		return False, nil
	}},
	{"slice", func(e *Evaluator, this Object, args []Object) (Object, error) {
		a, err := thisArray(this, "slice")
		if err != nil {
			return nil, err
		}
		n := len(a.Elements)
		from, to := relIndex(arg(args, 0), n, 0), relIndex(arg(args, 1), n, n)
		if to < from {
			to = from
		}
		return NewArray(append([]Object{}, a.Elements[from:to]...)...), nil
	}},
	{"map", func(e *Evaluator, this Object, args []Object) (Object, error) {
		a, err := thisArray(this, "map")
		if err != nil {
			return nil, err
		}
		out := make([]Object, 0, len(a.Elements))
		err = e.eachElement(a, arg(args, 0), func(_ int, _, res Object) bool {
			out = append(out, res)
			return true
		})
		if err != nil {
			return nil, err
		}
		return NewArray(out...), nil
	}},
	{"filter", func(e *Evaluator, this Object, args []Object) (Object, error) {
		a, err := thisArray(this, "filter")
		if err != nil {
			return nil, err
		}
		var out []Object
		err = e.eachElement(a, arg(args, 0), func(_ int, el, res Object) bool {
			if isTruthy(res) {
				out = append(out, el)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		return NewArray(out...), nil
	}},
	{"forEach", func(e *Evaluator, this Object, args []Object) (Object, error) {
		a, err := thisArray(this, "forEach")
		if err != nil {
			return nil, err
		}
		if err := e.eachElement(a, arg(args, 0), func(int, Object, Object) bool { return true }); err != nil {
			return nil, err
		}
		return Undefined, nil
	}},
	{"reduce", func(e *Evaluator, this Object, args []Object) (Object, error) {
		a, err := thisArray(this, "reduce")
		if err != nil {
			return nil, err
		}
		fn := arg(args, 0)
		if !isCallable(fn) {
			return nil, typeErrorf("%s is not a function", inspect(fn))
		}
		start := 0
		var acc Object
		if len(args) > 1 {
			acc = args[1]
		} else {
			if len(a.Elements) == 0 {
				return nil, typeErrorf("reduce of empty array with no initial value")
			}
			acc, start = a.at(0), 1
		}
		for i := start; i < len(a.Elements); i++ {
			if acc, err = e.callFunction(fn, Undefined, []Object{acc, a.at(i), &Number{Value: float64(i)}, a}); err != nil {
				return nil, err
			}
		}
		return acc, nil
	}},
}

func (e *Evaluator) arrayConstructor() *Builtin {
	build := func(e *Evaluator, args []Object) (Object, error) {
		if len(args) == 1 {
			if n, ok := args[0].(*Number); ok {
				size, err := e.arrayLength(n.Value)
				if err != nil {
					return nil, err
				}
				a := NewArray()
				a.setLength(size)
				return a, nil
			}
		}
		return NewArray(append([]Object{}, args...)...), nil
	}
	b := &Builtin{
		Name:      "Array",
		Fn:        func(e *Evaluator, _ Object, args []Object) (Object, error) { return build(e, args) },
		Construct: build,
	}
	props := e.functionProps(b)
	props.Set("prototype", e.arrayProto)
	props.Set("isArray", &Builtin{Name: "isArray", Fn: func(e *Evaluator, _ Object, args []Object) (Object, error) {
		_, ok := arg(args, 0).(*Array)
		return nativeBool(ok), nil
	}})
	return b
}

func thisString(this Object) string {
	if s, ok := this.(*String); ok {
		return s.Value
	}
	return toString(this)
}

var stringMethods = []method{
	{"toUpperCase", func(e *Evaluator, this Object, _ []Object) (Object, error) {
		return &String{Value: strings.ToUpper(thisString(this))}, nil
	}},
	{"toLowerCase", func(e *Evaluator, this Object, _ []Object) (Object, error) {
		return &String{Value: strings.ToLower(thisString(this))}, nil
	}},
	{"trim", func(e *Evaluator, this Object, _ []Object) (Object, error) {
		return &String{Value: strings.TrimSpace(thisString(this))}, nil
	}},
	{"includes", func(e *Evaluator, this Object, args []Object) (Object, error) {
		return nativeBool(strings.Contains(thisString(this), toString(arg(args, 0)))), nil
	}},
	{"startsWith", func(e *Evaluator, this Object, args []Object) (Object, error) {
		return nativeBool(strings.HasPrefix(thisString(this), toString(arg(args, 0)))), nil
	}},
	{"endsWith", func(e *Evaluator, this Object, args []Object) (Object, error) {
		return nativeBool(strings.HasSuffix(thisString(this), toString(arg(args, 0)))), nil
	}},
	{"indexOf", func(e *Evaluator, this Object, args []Object) (Object, error) {
		s := thisString(this)
		i := strings.Index(s, toString(arg(args, 0)))
		if i < 0 {
			return &Number{Value: -1}, nil
		}
		return &Number{Value: float64(len(utf16.Encode([]rune(s[:i]))))}, nil
	}},
	{"slice", func(e *Evaluator, this Object, args []Object) (Object, error) {
		units := utf16.Encode([]rune(thisString(this)))
		n := len(units)
		from, to := relIndex(arg(args, 0), n, 0), relIndex(arg(args, 1), n, n)
		if to < from {
			to = from
		}
		return &String{Value: string(utf16.Decode(units[from:to]))}, nil
	}},
	{"split", func(e *Evaluator, this Object, args []Object) (Object, error) {
		s := thisString(this)
		if arg(args, 0) == Undefined {
			return NewArray(&String{Value: s}), nil
		}
		parts := strings.Split(s, toString(arg(args, 0)))
		out := make([]Object, len(parts))
		for i, p := range parts {
			out[i] = &String{Value: p}
		}
		return NewArray(out...), nil
	}},
}
