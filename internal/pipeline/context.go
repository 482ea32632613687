package pipeline

import (
	"github.com/funvibe/jswalk/internal/ast"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries a program through decoding and evaluation.
type PipelineContext struct {
	// FilePath names the source for diagnostics; "<stdin>" when empty.
	FilePath string
	// Source holds the raw syntax tree document.
	Source []byte
	// Format is config.FormatJSON or config.FormatYAML.
	Format string
	// Tree is an already decoded generic tree, used instead of Source.
	Tree map[string]any

	Program *ast.Program
	// Result is the value of module.exports after evaluation.
	Result any
	Errors []error
}

func NewPipelineContext(path string, source []byte, format string) *PipelineContext {
	return &PipelineContext{FilePath: path, Source: source, Format: format}
}

// Err returns the first recorded error.
func (c *PipelineContext) Err() error {
	if len(c.Errors) == 0 {
		return nil
	}
	return c.Errors[0]
}
