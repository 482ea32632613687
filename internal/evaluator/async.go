package evaluator

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/funvibe/jswalk/internal/ast"
)

// newGenerator wraps a bound invocation scope in a suspended handle. The
// body does not start until the first next().
func (e *Evaluator) newGenerator(fn *Function, scope *Scope) *Generator {
	co := e.newCoroutine(generatorBody, func() (Object, error) {
		return e.runBody(fn, scope)
	})
	scope.co = co
	return &Generator{ID: co.id, Name: fn.Name, co: co}
}

// GeneratorNext advances g with input and returns an iteration result
// record { value, done }. Once the body has finished, every further call
// returns { value: undefined, done: true }.
func (e *Evaluator) GeneratorNext(g *Generator, input Object) (Object, error) {
	if g.done {
		return e.iterResult(Undefined, true), nil
	}
	v, done, err := g.co.resume(input, nil)
	if err != nil {
		g.done = true
		return nil, err
	}
	if done {
		g.done = true
	}
	return e.iterResult(v, done), nil
}

func (e *Evaluator) iterResult(v Object, done bool) *Record {
	rec := NewRecord(e.objectProto)
	rec.Set("value", v)
	rec.Set("done", nativeBool(done))
	return rec
}

// startAsync runs the body up to its first await and returns the promise
// that settles with the body's result.
func (e *Evaluator) startAsync(fn *Function, scope *Scope) (Object, error) {
	p := e.NewPromise()
	co := e.newCoroutine(asyncBody, func() (Object, error) {
		return e.runBody(fn, scope)
	})
	scope.co = co
	log.Debug("async start", "fn", functionLabel(fn.Name), "promise", p.ID)
	if err := e.asyncStep(co, p, Undefined, nil); err != nil {
		return nil, err
	}
	return p, nil
}

// asyncStep resumes co once. A suspension on a promise continues when it
// settles; any other awaited value continues on the next microtask with
// that value. Only uncatchable failures are returned; guest errors reject
// the promise.
func (e *Evaluator) asyncStep(co *coroutine, p *Promise, input Object, inErr error) error {
	v, done, err := co.resume(input, inErr)
	if err != nil {
		if !catchable(err) {
			return err
		}
		e.rejectPromise(p, e.errorValue(err))
		return nil
	}
	if done {
		e.resolvePromise(p, v)
		return nil
	}
	log.Debug("async await", "promise", p.ID, "awaiting", v.Type())
	if awaited, ok := v.(*Promise); ok {
		e.subscribe(awaited, func(state PromiseState, val Object) error {
			if state == PromiseRejected {
				return e.asyncStep(co, p, nil, &ThrowError{Value: val})
			}
			return e.asyncStep(co, p, val, nil)
		})
		return nil
	}
	e.Loop.Enqueue(func() error {
		return e.asyncStep(co, p, v, nil)
	})
	return nil
}

func (e *Evaluator) evalAwaitExpression(node *ast.AwaitExpression, scope *Scope) (Object, error) {
	co := scope.coroutine()
	if co == nil || co.kind != asyncBody {
		return nil, &UnsupportedSyntaxError{Kind: node.Kind(), Loc: node.Loc, Reason: "outside async function"}
	}
	v, err := e.Eval(node.Argument, scope)
	if err != nil {
		return nil, err
	}
	return co.suspend(v)
}

func (e *Evaluator) evalYieldExpression(node *ast.YieldExpression, scope *Scope) (Object, error) {
	if node.Delegate {
		return nil, &UnsupportedSyntaxError{Kind: "YieldDelegate", Loc: node.Loc}
	}
	co := scope.coroutine()
	if co == nil || co.kind != generatorBody {
		return nil, &UnsupportedSyntaxError{Kind: node.Kind(), Loc: node.Loc, Reason: "outside generator function"}
	}
	var v Object = Undefined
	if node.Argument != nil {
		var err error
		if v, err = e.Eval(node.Argument, scope); err != nil {
			return nil, err
		}
	}
	return co.suspend(v)
}

// NewPromise returns a pending promise.
func (e *Evaluator) NewPromise() *Promise {
	return &Promise{ID: uuid.NewString(), State: PromisePending}
}

// resolvePromise fulfills p with v, or adopts v's eventual state when v is
// itself a promise.
func (e *Evaluator) resolvePromise(p *Promise, v Object) {
	if p.State != PromisePending {
		return
	}
	if q, ok := v.(*Promise); ok {
		if q == p {
			e.rejectPromise(p, e.NewError("TypeError", "chaining cycle detected for promise"))
			return
		}
		e.subscribe(q, func(state PromiseState, val Object) error {
			e.settle(p, state, val)
			return nil
		})
		return
	}
	e.settle(p, PromiseFulfilled, v)
}

func (e *Evaluator) rejectPromise(p *Promise, reason Object) {
	e.settle(p, PromiseRejected, reason)
}

func (e *Evaluator) settle(p *Promise, state PromiseState, v Object) {
	if p.State != PromisePending {
		return
	}
	p.State, p.Value = state, v
	log.Debug("promise settled", "promise", p.ID, "state", state)
	reactions := p.reactions
	p.reactions = nil
	for _, r := range reactions {
		e.queueReaction(p, r)
	}
	if state == PromiseRejected && len(reactions) == 0 {
		e.rejected = append(e.rejected, p)
	}
}

// subscribe attaches a reaction. It runs as a microtask after p settles,
// or on the next microtask when p already has.
func (e *Evaluator) subscribe(p *Promise, r promiseReaction) {
	p.handled = true
	if p.State == PromisePending {
		p.reactions = append(p.reactions, r)
		return
	}
	e.queueReaction(p, r)
}

func (e *Evaluator) queueReaction(p *Promise, r promiseReaction) {
	e.Loop.Enqueue(func() error {
		return r(p.State, p.Value)
	})
}

// then implements promise.then: the derived promise follows the handler's
// result, or p's own outcome when the handler is missing.
func (e *Evaluator) then(p *Promise, onFulfilled, onRejected Object) *Promise {
	derived := e.NewPromise()
	e.subscribe(p, func(state PromiseState, val Object) error {
		handler := onFulfilled
		if state == PromiseRejected {
			handler = onRejected
		}
		if !isCallable(handler) {
			if state == PromiseRejected {
				e.rejectPromise(derived, val)
			} else {
				e.resolvePromise(derived, val)
			}
			return nil
		}
		res, err := e.callFunction(handler, Undefined, []Object{val})
		if err != nil {
			if !catchable(err) {
				return err
			}
			e.rejectPromise(derived, e.errorValue(err))
			return nil
		}
		e.resolvePromise(derived, res)
		return nil
	})
	return derived
}

// runGuestTask runs a host-scheduled guest callback. Guest failures are
// reported and swallowed so the loop keeps running.
func (e *Evaluator) runGuestTask(label string, fn Object, args []Object) error {
	_, err := e.callFunction(fn, Undefined, args)
	if err == nil {
		return nil
	}
	if !catchable(err) {
		return err
	}
	var te *ThrowError
	reason := err.Error()
	if errors.As(err, &te) {
		reason = inspectThrown(te.Value)
	}
	log.Error("uncaught exception in "+label, "error", reason)
	return nil
}
