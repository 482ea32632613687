package evaluator

import (
	"github.com/funvibe/jswalk/internal/config"
)

func thisPromise(this Object, name string) (*Promise, error) {
	p, ok := this.(*Promise)
	if !ok {
		return nil, typeErrorf("Promise.prototype.%s called on %s", name, typeOf(this))
	}
	return p, nil
}

var promiseMethods = []method{
	{"then", func(e *Evaluator, this Object, args []Object) (Object, error) {
		p, err := thisPromise(this, "then")
		if err != nil {
			return nil, err
		}
		return e.then(p, arg(args, 0), arg(args, 1)), nil
	}},
	{"catch", func(e *Evaluator, this Object, args []Object) (Object, error) {
		p, err := thisPromise(this, "catch")
		if err != nil {
			return nil, err
		}
		return e.then(p, Undefined, arg(args, 0)), nil
	}},
	{"finally", func(e *Evaluator, this Object, args []Object) (Object, error) {
		p, err := thisPromise(this, "finally")
		if err != nil {
			return nil, err
		}
		fn := arg(args, 0)
		derived := e.NewPromise()
		e.subscribe(p, func(state PromiseState, val Object) error {
			if isCallable(fn) {
				if _, err := e.callFunction(fn, Undefined, nil); err != nil {
					if !catchable(err) {
						return err
					}
					e.rejectPromise(derived, e.errorValue(err))
					return nil
				}
			}
			e.settle(derived, state, val)
			return nil
		})
		return derived, nil
	}},
}

var generatorMethods = []method{
	{"next", func(e *Evaluator, this Object, args []Object) (Object, error) {
		g, ok := this.(*Generator)
		if !ok {
			return nil, typeErrorf("next method called on incompatible %s", typeOf(this))
		}
		return e.GeneratorNext(g, arg(args, 0))
	}},
}

// resolvingFunctions returns the resolve and reject callbacks handed to a
// promise executor. Only the first call of either has an effect.
func (e *Evaluator) resolvingFunctions(p *Promise) (resolve, reject *Builtin) {
	settled := false
	resolve = &Builtin{Name: "resolve", Fn: func(e *Evaluator, _ Object, args []Object) (Object, error) {
		if !settled {
			settled = true
			e.resolvePromise(p, arg(args, 0))
		}
		return Undefined, nil
	}}
	reject = &Builtin{Name: "reject", Fn: func(e *Evaluator, _ Object, args []Object) (Object, error) {
		if !settled {
			settled = true
			e.rejectPromise(p, arg(args, 0))
		}
		return Undefined, nil
	}}
	return resolve, reject
}

func (e *Evaluator) promiseConstructor() *Builtin {
	b := &Builtin{
		Name: config.PromiseName,
		Fn: func(e *Evaluator, _ Object, _ []Object) (Object, error) {
			return nil, typeErrorf("Promise constructor cannot be invoked without 'new'")
		},
		Construct: func(e *Evaluator, args []Object) (Object, error) {
			executor := arg(args, 0)
			if !isCallable(executor) {
				return nil, typeErrorf("Promise resolver %s is not a function", inspect(executor))
			}
			p := e.NewPromise()
			resolve, reject := e.resolvingFunctions(p)
			if _, err := e.callFunction(executor, Undefined, []Object{resolve, reject}); err != nil {
				if !catchable(err) {
					return nil, err
				}
				_, _ = reject.Fn(e, Undefined, []Object{e.errorValue(err)})
			}
			return p, nil
		},
	}
	props := e.functionProps(b)
	props.Set("prototype", e.promiseProto)
	e.promiseProto.Set("constructor", b)
	defineMethods(props, []method{
		{"resolve", func(e *Evaluator, _ Object, args []Object) (Object, error) {
			if p, ok := arg(args, 0).(*Promise); ok {
				return p, nil
			}
			p := e.NewPromise()
			e.resolvePromise(p, arg(args, 0))
			return p, nil
		}},
		{"reject", func(e *Evaluator, _ Object, args []Object) (Object, error) {
			p := e.NewPromise()
			e.rejectPromise(p, arg(args, 0))
			return p, nil
		}},
		{"all", func(e *Evaluator, _ Object, args []Object) (Object, error) {
			list, ok := arg(args, 0).(*Array)
			if !ok {
				return nil, typeErrorf("Promise.all expects an array")
			}
			return e.promiseAll(list.Elements), nil
		}},
	})
	return b
}

// promiseAll fulfills with every input's value in order, or rejects with
// the first rejection.
func (e *Evaluator) promiseAll(items []Object) *Promise {
	all := e.NewPromise()
	results := make([]Object, len(items))
	remaining := len(items)
	if remaining == 0 {
		e.resolvePromise(all, NewArray())
		return all
	}
	for i, item := range items {
		p, ok := item.(*Promise)
		if !ok {
			p = e.NewPromise()
			e.resolvePromise(p, item)
		}
		e.subscribe(p, func(state PromiseState, val Object) error {
			if state == PromiseRejected {
				e.rejectPromise(all, val)
				return nil
			}
			results[i] = val
			remaining--
			if remaining == 0 {
				e.resolvePromise(all, NewArray(results...))
			}
			return nil
		})
	}
	return all
}
