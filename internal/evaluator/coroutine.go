package evaluator

import (
	"iter"

	"github.com/google/uuid"
)

type coroutineKind int

const (
	generatorBody coroutineKind = iota
	asyncBody
)

// coroutine runs a function body as a pull iterator so it can suspend at
// yield or await and later continue from the same point. Each resume
// hands the body an input value or an error to raise at the suspension
// point.
type coroutine struct {
	id   string
	kind coroutineKind
	body func() (Object, error)

	next  func() (Object, bool)
	stopF func()
	yield func(Object) bool

	input   Object
	inErr   error
	result  Object
	err     error
	running bool
	done    bool
	owner   *Evaluator
	// run is the program that started the body.
	run uint64
}

func (e *Evaluator) newCoroutine(kind coroutineKind, body func() (Object, error)) *coroutine {
	return &coroutine{id: uuid.NewString(), kind: kind, body: body, owner: e, run: e.run}
}

// resume runs the body until it suspends or finishes. done reports
// completion; value is then the body's result.
func (co *coroutine) resume(input Object, inErr error) (value Object, done bool, err error) {
	if co.done {
		return Undefined, true, nil
	}
	if co.running {
		return nil, false, typeErrorf("generator is already running")
	}
	if co.next == nil {
		co.next, co.stopF = iter.Pull(func(yield func(Object) bool) {
			co.yield = yield
			co.result, co.err = co.body()
		})
		co.owner.coroutines[co] = struct{}{}
	}
	co.input, co.inErr = input, inErr
	co.running = true
	v, ok := co.next()
	co.running = false
	if ok {
		return v, false, nil
	}
	co.done = true
	delete(co.owner.coroutines, co)
	if co.err != nil {
		return nil, true, co.err
	}
	return co.result, true, nil
}

// suspend is called from inside the body. It hands v to the resumer and
// returns what the next resume supplies.
func (co *coroutine) suspend(v Object) (Object, error) {
	if !co.yield(v) {
		return nil, errCoroutineStopped
	}
	in, err := co.input, co.inErr
	co.input, co.inErr = nil, nil
	if in == nil {
		in = Undefined
	}
	return in, err
}

func (co *coroutine) stop() {
	if co.stopF != nil {
		co.stopF()
	}
	co.done = true
}
