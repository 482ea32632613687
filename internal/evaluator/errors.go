package evaluator

import (
	"errors"
	"fmt"

	"github.com/funvibe/jswalk/internal/ast"
	"github.com/funvibe/jswalk/internal/config"
)

// Uncatchable failures. Guest try/catch never intercepts these.
var (
	ErrMaxStepsExceeded  = errors.New("maximum evaluation steps exceeded")
	ErrCallDepthExceeded = errors.New("maximum call depth exceeded")

	errCoroutineStopped = errors.New("coroutine stopped")
)

type NameResolutionError struct {
	Name string
	Loc  ast.Loc
}

func (e *NameResolutionError) Error() string {
	return fmt.Sprintf("%s is not defined", e.Name)
}

type ReassignConstError struct {
	Name string
	Loc  ast.Loc
}

func (e *ReassignConstError) Error() string {
	return fmt.Sprintf("assignment to constant variable '%s'", e.Name)
}

type RedeclarationError struct {
	Name string
	Loc  ast.Loc
}

func (e *RedeclarationError) Error() string {
	return fmt.Sprintf("identifier '%s' has already been declared", e.Name)
}

type UnsupportedSyntaxError struct {
	Kind   string
	Loc    ast.Loc
	Reason string
}

func (e *UnsupportedSyntaxError) Error() string {
	msg := fmt.Sprintf("unsupported syntax %s at %d:%d", e.Kind, e.Loc.Start, e.Loc.End)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func unsupported(node ast.Node) *UnsupportedSyntaxError {
	if node == nil {
		return &UnsupportedSyntaxError{Kind: "<missing>", Reason: "node is absent"}
	}
	return &UnsupportedSyntaxError{Kind: node.Kind(), Loc: node.Location()}
}

// TypeError covers operations applied to values of the wrong shape, such
// as calling a non-function or reading a property of undefined.
type TypeError struct {
	Msg string
	Loc ast.Loc
}

func (e *TypeError) Error() string { return e.Msg }

func typeErrorf(format string, a ...any) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, a...)}
}

// ThrowError carries a guest value raised with `throw`, a rejected await
// or a failing host callback.
type ThrowError struct {
	Value Object
}

func (e *ThrowError) Error() string {
	return "uncaught " + inspectThrown(e.Value)
}

func catchable(err error) bool {
	return !errors.Is(err, ErrMaxStepsExceeded) &&
		!errors.Is(err, ErrCallDepthExceeded) &&
		!errors.Is(err, errCoroutineStopped)
}

// locate fills in a missing source range on errors raised below node.
func locate(err error, node ast.Node) {
	loc := node.Location()
	switch err := err.(type) {
	case *NameResolutionError:
		if err.Loc == (ast.Loc{}) {
			err.Loc = loc
		}
	case *ReassignConstError:
		if err.Loc == (ast.Loc{}) {
			err.Loc = loc
		}
	case *RedeclarationError:
		if err.Loc == (ast.Loc{}) {
			err.Loc = loc
		}
	case *TypeError:
		if err.Loc == (ast.Loc{}) {
			err.Loc = loc
		}
	}
}

// errorValue converts a catchable error into the value a catch clause or
// promise rejection observes.
func (e *Evaluator) errorValue(err error) Object {
	var te *ThrowError
	if errors.As(err, &te) {
		return te.Value
	}
	var (
		nre *NameResolutionError
		rde *RedeclarationError
		use *UnsupportedSyntaxError
	)
	switch {
	case errors.As(err, &nre):
		return e.NewError(config.ReferenceErrorName, err.Error())
	case errors.As(err, &rde), errors.As(err, &use):
		return e.NewError(config.SyntaxErrorName, err.Error())
	}
	return e.NewError(config.TypeErrorName, err.Error())
}

func inspectThrown(v Object) string {
	if r, ok := v.(*Record); ok && r.isError() {
		return errorSummary(r)
	}
	return inspect(v)
}
