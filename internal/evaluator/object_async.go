package evaluator

type PromiseState int

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

func (s PromiseState) String() string {
	switch s {
	case PromiseFulfilled:
		return "fulfilled"
	case PromiseRejected:
		return "rejected"
	}
	return "pending"
}

// promiseReaction runs as a microtask once the promise settles.
type promiseReaction func(state PromiseState, value Object) error

type Promise struct {
	ID    string
	State PromiseState
	Value Object

	reactions []promiseReaction
	handled   bool
}

func (p *Promise) Type() ObjectType { return PROMISE_OBJ }
func (p *Promise) Inspect() string {
	switch p.State {
	case PromiseFulfilled:
		return "Promise { " + inspectNested(p.Value) + " }"
	case PromiseRejected:
		return "Promise { <rejected> " + inspectNested(p.Value) + " }"
	}
	return "Promise { <pending> }"
}

// Generator is the handle returned by calling a generator function.
type Generator struct {
	ID   string
	Name string

	co   *coroutine
	done bool
}

func (g *Generator) Type() ObjectType { return GENERATOR_OBJ }
func (g *Generator) Inspect() string  { return "Object [Generator] {}" }

// Done reports whether the body has completed.
func (g *Generator) Done() bool { return g.done }
