// Package jswalk embeds the interpreter in Go programs: run syntax trees,
// expose Go values to guest code and call guest functions back.
package jswalk

import (
	"fmt"
	"sync"

	"github.com/funvibe/jswalk/internal/ast"
	"github.com/funvibe/jswalk/internal/config"
	"github.com/funvibe/jswalk/internal/evaluator"
	"github.com/funvibe/jswalk/internal/pipeline"
)

// Option configures an Interpreter.
type Option = evaluator.Option

var (
	WithWriter         = evaluator.WithWriter
	WithErrWriter      = evaluator.WithErrWriter
	WithMaxSteps       = evaluator.WithMaxSteps
	WithMaxCallDepth   = evaluator.WithMaxCallDepth
	WithMaxArrayLength = evaluator.WithMaxArrayLength
	WithAssignMode     = evaluator.WithAssignMode
	WithConfig         = evaluator.WithConfig
)

// Interpreter wraps an evaluator and provides a high-level embedding API.
// It is safe for concurrent use; calls are serialized.
type Interpreter struct {
	mu         sync.Mutex
	eval       *evaluator.Evaluator
	marshaller *Marshaller
	exports    evaluator.Object
}

func New(opts ...Option) *Interpreter {
	e := evaluator.New(opts...)
	return &Interpreter{
		eval:       e,
		marshaller: NewMarshaller(e),
		exports:    evaluator.Undefined,
	}
}

// Marshaller returns the converter bound to this interpreter.
func (i *Interpreter) Marshaller() *Marshaller { return i.marshaller }

// Run evaluates program, drains pending work and returns module.exports.
func (i *Interpreter) Run(program *ast.Program) (evaluator.Object, error) {
	ctx := &pipeline.PipelineContext{FilePath: "<program>", Program: program}
	return i.run(ctx)
}

// RunJSON decodes an ESTree JSON document and runs it.
func (i *Interpreter) RunJSON(data []byte) (evaluator.Object, error) {
	return i.run(pipeline.NewPipelineContext("<json>", data, config.FormatJSON))
}

// RunYAML decodes an ESTree YAML document and runs it.
func (i *Interpreter) RunYAML(data []byte) (evaluator.Object, error) {
	return i.run(pipeline.NewPipelineContext("<yaml>", data, config.FormatYAML))
}

// RunTree runs an already decoded generic tree, as produced by
// encoding/json into map[string]any or structpb.Struct.AsMap.
func (i *Interpreter) RunTree(tree map[string]any) (evaluator.Object, error) {
	return i.run(&pipeline.PipelineContext{FilePath: "<tree>", Tree: tree})
}

func (i *Interpreter) run(ctx *pipeline.PipelineContext) (evaluator.Object, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	p := pipeline.New(
		&pipeline.DecodeProcessor{},
		&evaluator.EvaluatorProcessor{Evaluator: i.eval},
	)
	ctx = p.Run(ctx)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("jswalk: %w", err)
	}
	exports, ok := ctx.Result.(evaluator.Object)
	if !ok {
		return nil, fmt.Errorf("jswalk: program produced no exports")
	}
	i.exports = exports
	return exports, nil
}

// Exports returns module.exports of the last successful run.
func (i *Interpreter) Exports() evaluator.Object {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.exports
}

// Export converts a guest value to a Go value.
func (i *Interpreter) Export(obj evaluator.Object) (any, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.marshaller.FromValue(obj, nil)
}

// Bind makes a Go value visible to guest code as a global. Functions
// become callable; their trailing error result, when non-nil, is thrown.
func (i *Interpreter) Bind(name string, val any) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	obj, err := i.marshaller.ToValue(val)
	if err != nil {
		return fmt.Errorf("jswalk: bind %s: %w", name, err)
	}
	if b, ok := obj.(*evaluator.Builtin); ok {
		b.Name = name
	}
	i.eval.Globals.Set(name, obj)
	return nil
}

// Get reads a global and converts it to a Go value.
func (i *Interpreter) Get(name string) (any, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	obj, ok := i.eval.Globals.Get(name)
	if !ok {
		return nil, fmt.Errorf("jswalk: global %q not found", name)
	}
	return i.marshaller.FromValue(obj, nil)
}

// Call invokes a guest callable with Go arguments. Pending continuations
// it schedules run only on the next Settle.
func (i *Interpreter) Call(fn evaluator.Object, args ...any) (evaluator.Object, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	guestArgs := make([]evaluator.Object, len(args))
	for n, a := range args {
		obj, err := i.marshaller.ToValue(a)
		if err != nil {
			return nil, fmt.Errorf("jswalk: argument %d: %w", n, err)
		}
		guestArgs[n] = obj
	}
	res, err := i.eval.CallFunction(fn, guestArgs...)
	if err != nil {
		return nil, fmt.Errorf("jswalk: call: %w", err)
	}
	return res, nil
}

// CallExport calls the member name of the last run's module.exports.
func (i *Interpreter) CallExport(name string, args ...any) (evaluator.Object, error) {
	i.mu.Lock()
	fn, err := i.eval.GetProperty(i.exports, name)
	i.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("jswalk: export %s: %w", name, err)
	}
	return i.Call(fn, args...)
}

// Globals lists the names in the host namespace, sorted.
func (i *Interpreter) Globals() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.eval.Globals.Names()
}

// Steps reports how many nodes the last run evaluated.
func (i *Interpreter) Steps() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.eval.Steps()
}

// Settle runs queued microtasks and timers until none remain.
func (i *Interpreter) Settle() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.eval.Settle(); err != nil {
		return fmt.Errorf("jswalk: settle: %w", err)
	}
	return nil
}

// Close stops suspended generators and async functions.
func (i *Interpreter) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.eval.Close()
}
