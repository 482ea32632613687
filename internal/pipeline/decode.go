package pipeline

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/funvibe/jswalk/internal/ast"
	"github.com/funvibe/jswalk/internal/config"
)

// DecodeProcessor turns the raw tree into an *ast.Program.
type DecodeProcessor struct{}

func (dp *DecodeProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Program != nil || len(ctx.Errors) > 0 {
		return ctx
	}
	var (
		prog *ast.Program
		err  error
	)
	switch {
	case ctx.Tree != nil:
		prog, err = ast.Decode(ctx.Tree)
	case ctx.Format == config.FormatYAML:
		prog, err = ast.LoadYAML(ctx.Source)
	case ctx.Format == config.FormatJSON || ctx.Format == "":
		prog, err = ast.LoadJSON(ctx.Source)
	default:
		err = fmt.Errorf("unknown tree format %q", ctx.Format)
	}
	if err != nil {
		ctx.Errors = append(ctx.Errors, fmt.Errorf("%s: %w", sourceName(ctx), err))
		return ctx
	}
	log.Debug("decoded program", "file", sourceName(ctx), "statements", len(prog.Body))
	ctx.Program = prog
	return ctx
}

func sourceName(ctx *PipelineContext) string {
	if ctx.FilePath == "" {
		return "<stdin>"
	}
	return ctx.FilePath
}
