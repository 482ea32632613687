package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Pipeline runs stages in order over one shared context.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage. Stages see errors recorded by earlier ones
// and decide for themselves whether to skip.
func (p *Pipeline) Run(ctx *PipelineContext) *PipelineContext {
	for _, stage := range p.processors {
		start := time.Now()
		before := len(ctx.Errors)
		ctx = stage.Process(ctx)
		log.Debug("stage done",
			"stage", fmt.Sprintf("%T", stage),
			"file", sourceName(ctx),
			"elapsed", time.Since(start),
			"errors", len(ctx.Errors)-before)
	}
	return ctx
}
