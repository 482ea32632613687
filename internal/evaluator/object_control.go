package evaluator

// ReturnValue carries a function's result out through enclosing blocks and
// loops.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// BreakSignal terminates the innermost loop or switch.
type BreakSignal struct{}

func (bs *BreakSignal) Type() ObjectType { return BREAK_SIGNAL_OBJ }
func (bs *BreakSignal) Inspect() string  { return "break" }

// ContinueSignal skips to the next iteration of the innermost loop.
type ContinueSignal struct{}

func (cs *ContinueSignal) Type() ObjectType { return CONTINUE_SIGNAL_OBJ }
func (cs *ContinueSignal) Inspect() string  { return "continue" }

var (
	breakSignal    = &BreakSignal{}
	continueSignal = &ContinueSignal{}
)

func isSignal(o Object) bool {
	switch o.(type) {
	case *ReturnValue, *BreakSignal, *ContinueSignal:
		return true
	}
	return false
}

// unwrapSignal strips a ReturnValue wrapper; other signals have no value
// and yield undefined.
func unwrapSignal(o Object) Object {
	switch o := o.(type) {
	case *ReturnValue:
		return o.Value
	case *BreakSignal, *ContinueSignal:
		return Undefined
	}
	return o
}
