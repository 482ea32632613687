package evaluator

import (
	"fmt"

	"github.com/funvibe/jswalk/internal/pipeline"
)

// EvaluatorProcessor runs the decoded program and stores module.exports in
// ctx.Result.
type EvaluatorProcessor struct {
	// Evaluator is reused across runs; a fresh one is made when nil.
	Evaluator *Evaluator
}

func (ep *EvaluatorProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	eval := ep.Evaluator
	if eval == nil {
		eval = New()
		defer eval.Close()
	}

	exports, err := eval.RunProgram(ctx.Program)
	if err != nil {
		name := ctx.FilePath
		if name == "" {
			name = "<stdin>"
		}
		ctx.Errors = append(ctx.Errors, fmt.Errorf("%s: %w", name, err))
		return ctx
	}
	ctx.Result = exports
	return ctx
}
