package evaluator

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/funvibe/jswalk/internal/config"
)

// setupIntrinsics builds the prototype records shared by every value of a
// kind. They live as long as the evaluator.
func (e *Evaluator) setupIntrinsics() {
	e.objectProto = NewRecord(nil)
	e.functionProto = NewRecord(e.objectProto)
	e.arrayProto = NewRecord(e.objectProto)
	e.stringProto = NewRecord(e.objectProto)
	e.promiseProto = NewRecord(e.objectProto)
	e.generatorProto = NewRecord(e.objectProto)

	base := NewRecord(e.objectProto)
	base.Class = "Error"
	base.Set("name", &String{Value: config.ErrorName})
	base.Set("message", &String{Value: ""})
	e.errorProtos = map[string]*Record{config.ErrorName: base}
	for _, name := range []string{
		config.TypeErrorName,
		config.RangeErrorName,
		config.ReferenceErrorName,
		config.SyntaxErrorName,
	} {
		proto := NewRecord(base)
		proto.Set("name", &String{Value: name})
		e.errorProtos[name] = proto
	}

	defineMethods(e.objectProto, objectMethods)
	defineMethods(e.functionProto, functionMethods)
	defineMethods(e.arrayProto, arrayMethods)
	defineMethods(e.stringProto, stringMethods)
	defineMethods(e.promiseProto, promiseMethods)
	defineMethods(e.generatorProto, generatorMethods)
}

type method struct {
	name string
	fn   BuiltinFunction
}

func defineMethods(rec *Record, methods []method) {
	for _, m := range methods {
		rec.Set(m.name, &Builtin{Name: m.name, Fn: m.fn})
	}
}

// installGlobals registers the host namespace.
func (e *Evaluator) installGlobals() {
	g := e.Globals
	g.Set("undefined", Undefined)
	g.Set("NaN", &Number{Value: math.NaN()})
	g.Set("Infinity", &Number{Value: math.Inf(1)})

	console := NewRecord(e.objectProto)
	for _, m := range []method{
		{"log", consoleWriter(func(e *Evaluator) io.Writer { return e.Out })},
		{"info", consoleWriter(func(e *Evaluator) io.Writer { return e.Out })},
		{"debug", consoleWriter(func(e *Evaluator) io.Writer { return e.Out })},
		{"warn", consoleWriter(func(e *Evaluator) io.Writer { return e.ErrOut })},
		{"error", consoleWriter(func(e *Evaluator) io.Writer { return e.ErrOut })},
	} {
		console.Set(m.name, &Builtin{Name: m.name, Fn: m.fn})
	}
	g.Set(config.ConsoleName, console)

	g.Set(config.SetTimeoutName, &Builtin{Name: config.SetTimeoutName, Fn: builtinSetTimeout})
	g.Set("clearTimeout", &Builtin{Name: "clearTimeout", Fn: builtinClearTimeout})
	g.Set(config.QueueMicrotaskName, &Builtin{Name: config.QueueMicrotaskName, Fn: builtinQueueMicrotask})

	for name, proto := range e.errorProtos {
		g.Set(name, e.errorConstructor(name, proto))
	}

	g.Set(config.PromiseName, e.promiseConstructor())
	g.Set("Object", e.objectConstructor())
	g.Set("Array", e.arrayConstructor())
	g.Set("Math", e.mathObject())
}

// NewError builds an error record of the named kind.
func (e *Evaluator) NewError(name, msg string) *Record {
	proto, ok := e.errorProtos[name]
	if !ok {
		proto = e.errorProtos[config.ErrorName]
	}
	rec := NewRecord(proto)
	rec.Set("message", &String{Value: msg})
	return rec
}

func (e *Evaluator) errorConstructor(name string, proto *Record) *Builtin {
	build := func(e *Evaluator, args []Object) (Object, error) {
		msg := ""
		if m := arg(args, 0); m != Undefined {
			msg = toString(m)
		}
		return e.NewError(name, msg), nil
	}
	b := &Builtin{
		Name:      name,
		Fn:        func(e *Evaluator, _ Object, args []Object) (Object, error) { return build(e, args) },
		Construct: build,
	}
	e.functionProps(b).Set("prototype", proto)
	proto.Set("constructor", b)
	return b
}

func consoleWriter(out func(*Evaluator) io.Writer) BuiltinFunction {
	return func(e *Evaluator, _ Object, args []Object) (Object, error) {
		if _, err := fmt.Fprintln(out(e), formatConsole(args)); err != nil {
			return nil, typeErrorf("console: %v", err)
		}
		return Undefined, nil
	}
}

func builtinSetTimeout(e *Evaluator, _ Object, args []Object) (Object, error) {
	fn := arg(args, 0)
	if !isCallable(fn) {
		return nil, typeErrorf("setTimeout callback must be a function")
	}
	ms := toNumber(arg(args, 1))
	if math.IsNaN(ms) || ms < 0 {
		ms = 0
	}
	var extra []Object
	if len(args) > 2 {
		extra = append(extra, args[2:]...)
	}
	id := e.Loop.SetTimeout(time.Duration(ms*float64(time.Millisecond)), func() error {
		return e.runGuestTask("timer", fn, extra)
	})
	return &Number{Value: float64(id)}, nil
}

func builtinClearTimeout(e *Evaluator, _ Object, args []Object) (Object, error) {
	if n, ok := arg(args, 0).(*Number); ok && n.Value > 0 {
		e.Loop.ClearTimeout(uint64(n.Value))
	}
	return Undefined, nil
}

func builtinQueueMicrotask(e *Evaluator, _ Object, args []Object) (Object, error) {
	fn := arg(args, 0)
	if !isCallable(fn) {
		return nil, typeErrorf("queueMicrotask callback must be a function")
	}
	e.Loop.Enqueue(func() error {
		return e.runGuestTask("microtask", fn, nil)
	})
	return Undefined, nil
}

var objectMethods = []method{
	{"hasOwnProperty", func(e *Evaluator, this Object, args []Object) (Object, error) {
		key := toPropertyKey(arg(args, 0))
		switch o := this.(type) {
		case *Record:
			_, ok := o.Own(key)
			return nativeBool(ok), nil
		case *Array:
			i, ok := arrayIndex(key)
			return nativeBool(key == "length" || (ok && i < len(o.Elements))), nil
		}
		return False, nil
	}},
	{"toString", func(e *Evaluator, this Object, _ []Object) (Object, error) {
		return &String{Value: toString(this)}, nil
	}},
}

func (e *Evaluator) objectConstructor() *Builtin {
	b := &Builtin{
		Name: "Object",
		Fn: func(e *Evaluator, _ Object, args []Object) (Object, error) {
			if v := arg(args, 0); !isPrimitive(v) {
				return v, nil
			}
			return NewRecord(e.objectProto), nil
		},
		Construct: func(e *Evaluator, args []Object) (Object, error) {
			return NewRecord(e.objectProto), nil
		},
	}
	props := e.functionProps(b)
	props.Set("prototype", e.objectProto)
	defineMethods(props, []method{
		{"keys", func(e *Evaluator, _ Object, args []Object) (Object, error) {
			return e.ownEntries(arg(args, 0), func(k string, _ Object) Object { return &String{Value: k} })
		}},
		{"values", func(e *Evaluator, _ Object, args []Object) (Object, error) {
			return e.ownEntries(arg(args, 0), func(_ string, v Object) Object { return v })
		}},
		{"entries", func(e *Evaluator, _ Object, args []Object) (Object, error) {
			return e.ownEntries(arg(args, 0), func(k string, v Object) Object {
				return NewArray(&String{Value: k}, v)
			})
		}},
		{"assign", func(e *Evaluator, _ Object, args []Object) (Object, error) {
			target := arg(args, 0)
			if isNullish(target) {
				return nil, typeErrorf("cannot convert %s to object", target.Inspect())
			}
			for _, src := range args[1:] {
				rec, ok := src.(*Record)
				if !ok {
					continue
				}
				for _, k := range rec.Keys() {
					v, err := e.getProperty(rec, k)
					if err != nil {
						return nil, err
					}
					if err := e.setProperty(target, k, v); err != nil {
						return nil, err
					}
				}
			}
			return target, nil
		}},
	})
	return b
}

func (e *Evaluator) ownEntries(obj Object, pick func(string, Object) Object) (Object, error) {
	var out []Object
	switch o := obj.(type) {
	case *Record:
		for _, k := range o.Keys() {
			v, err := e.getProperty(o, k)
			if err != nil {
				return nil, err
			}
			out = append(out, pick(k, v))
		}
	case *Array:
		for i := range o.Elements {
			out = append(out, pick(formatNumber(float64(i)), o.at(i)))
		}
	default:
		if isNullish(obj) {
			return nil, typeErrorf("cannot convert %s to object", obj.Inspect())
		}
	}
	return NewArray(out...), nil
}

func (e *Evaluator) mathObject() *Record {
	m := NewRecord(e.objectProto)
	m.Set("PI", &Number{Value: math.Pi})
	m.Set("E", &Number{Value: math.E})
	unary := func(name string, f func(float64) float64) method {
		return method{name, func(e *Evaluator, _ Object, args []Object) (Object, error) {
			return &Number{Value: f(toNumber(arg(args, 0)))}, nil
		}}
	}
	defineMethods(m, []method{
		unary("abs", math.Abs),
		unary("floor", math.Floor),
		unary("ceil", math.Ceil),
		unary("trunc", math.Trunc),
		unary("sqrt", math.Sqrt),
		unary("round", func(f float64) float64 { return math.Floor(f + 0.5) }),
		{"max", func(e *Evaluator, _ Object, args []Object) (Object, error) {
			res := math.Inf(-1)
			for _, a := range args {
				n := toNumber(a)
				if math.IsNaN(n) {
					return &Number{Value: n}, nil
				}
				res = math.Max(res, n)
			}
			return &Number{Value: res}, nil
		}},
		{"min", func(e *Evaluator, _ Object, args []Object) (Object, error) {
			res := math.Inf(1)
			for _, a := range args {
				n := toNumber(a)
				if math.IsNaN(n) {
					return &Number{Value: n}, nil
				}
				res = math.Min(res, n)
			}
			return &Number{Value: res}, nil
		}},
		{"pow", func(e *Evaluator, _ Object, args []Object) (Object, error) {
			return &Number{Value: math.Pow(toNumber(arg(args, 0)), toNumber(arg(args, 1)))}, nil
		}},
	})
	return m
}
