package evaluator

import (
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/funvibe/jswalk/internal/ast"
	"github.com/funvibe/jswalk/internal/config"
	"github.com/funvibe/jswalk/internal/eventloop"
)

type Evaluator struct {
	Out    io.Writer
	ErrOut io.Writer

	// Globals is the host namespace shared by every program this
	// evaluator runs.
	Globals *Globals
	// Loop schedules promise reactions, async continuations and timers.
	Loop *eventloop.Loop

	run          uint64
	steps        int
	maxSteps     int
	callDepth    int
	maxCallDepth int
	maxArrayLen  int

	objectProto    *Record
	functionProto  *Record
	arrayProto     *Record
	stringProto    *Record
	promiseProto   *Record
	generatorProto *Record
	errorProtos    map[string]*Record

	// coroutines holds every generator or async body that has started
	// and not yet finished.
	coroutines map[*coroutine]struct{}
	// rejected collects promises rejected with no reaction attached.
	rejected []*Promise
}

type Option func(*Evaluator)

func WithWriter(w io.Writer) Option {
	return func(e *Evaluator) { e.Out = w }
}

func WithErrWriter(w io.Writer) Option {
	return func(e *Evaluator) { e.ErrOut = w }
}

// WithMaxSteps bounds evaluated nodes per program. Zero means unlimited.
func WithMaxSteps(n int) Option {
	return func(e *Evaluator) { e.maxSteps = n }
}

func WithMaxCallDepth(n int) Option {
	return func(e *Evaluator) { e.maxCallDepth = n }
}

// WithMaxArrayLength bounds array growth. It is capped at
// config.MaxArrayLength.
func WithMaxArrayLength(n int) Option {
	return func(e *Evaluator) {
		if n > 0 && int64(n) <= config.MaxArrayLength {
			e.maxArrayLen = n
		}
	}
}

func WithAssignMode(m config.AssignMode) Option {
	return func(e *Evaluator) { e.Globals.Mode = m }
}

func WithConfig(cfg *config.Config) Option {
	return func(e *Evaluator) {
		if cfg == nil {
			return
		}
		e.Globals.Mode = cfg.AssignMode
		e.maxSteps = cfg.MaxSteps
		if cfg.MaxCallDepth > 0 {
			e.maxCallDepth = cfg.MaxCallDepth
		}
		WithMaxArrayLength(cfg.MaxArrayLength)(e)
	}
}

func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		Out:          os.Stdout,
		ErrOut:       os.Stderr,
		Globals:      NewGlobals(config.AssignLoose),
		Loop:         eventloop.New(),
		maxCallDepth: config.DefaultMaxCallDepth,
		maxArrayLen:  config.DefaultMaxArrayLength,
		coroutines:   make(map[*coroutine]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.setupIntrinsics()
	e.installGlobals()
	return e
}

// Steps returns the number of nodes evaluated since the last program
// started.
func (e *Evaluator) Steps() int { return e.steps }

// NewRootScope prepares a root scope holding the export container.
func (e *Evaluator) NewRootScope() *Scope {
	scope := NewGlobalScope(e.Globals)
	module := NewRecord(e.objectProto)
	module.Set(config.ExportField, NewRecord(e.objectProto))
	_ = scope.Declare(DeclConst, config.ExportContainer, module)
	return scope
}

// NewObject returns an empty record with the standard object prototype.
func (e *Evaluator) NewObject() *Record { return NewRecord(e.objectProto) }

// GetProperty reads key from obj the way guest member access does.
func (e *Evaluator) GetProperty(obj Object, key string) (Object, error) {
	return e.getProperty(obj, key)
}

// Exports reads module.exports from a root scope.
func (e *Evaluator) Exports(scope *Scope) (Object, error) {
	module, err := scope.Get(config.ExportContainer)
	if err != nil {
		return nil, err
	}
	return e.getProperty(module, config.ExportField)
}

// RunProgram evaluates program in a fresh root scope, runs the event loop
// until it is idle and returns module.exports. When the program fails, the
// work it left queued and the coroutines it started are discarded.
func (e *Evaluator) RunProgram(program *ast.Program) (Object, error) {
	e.run++
	e.steps = 0
	scope := e.NewRootScope()
	if _, err := e.Eval(program, scope); err != nil {
		e.abandon(e.run)
		return nil, err
	}
	if err := e.Settle(); err != nil {
		e.abandon(e.run)
		return nil, err
	}
	return e.Exports(scope)
}

// abandon stops the coroutines started by run and empties the loop.
func (e *Evaluator) abandon(run uint64) {
	for co := range e.coroutines {
		if co.run == run {
			co.stop()
			delete(e.coroutines, co)
		}
	}
	e.Loop.Reset()
	e.rejected = e.rejected[:0]
	log.Debug("discarded failed program", "run", run)
}

// Settle runs queued microtasks and timers to completion. A failing task
// discards whatever is still queued.
func (e *Evaluator) Settle() error {
	err := e.Loop.Run()
	if err != nil {
		e.Loop.Reset()
	}
	e.reportUnhandled()
	return err
}

// Close stops every suspended generator or async body so their
// goroutines exit. The evaluator must not be used afterwards.
func (e *Evaluator) Close() {
	for co := range e.coroutines {
		co.stop()
	}
	clear(e.coroutines)
}

func (e *Evaluator) Eval(node ast.Node, scope *Scope) (Object, error) {
	if node == nil {
		return Undefined, nil
	}
	if err := e.step(); err != nil {
		return nil, err
	}
	obj, err := e.evalCore(node, scope)
	if err != nil {
		locate(err, node)
	}
	return obj, err
}

// step counts one evaluated node against the budget.
func (e *Evaluator) step() error {
	e.steps++
	if e.maxSteps > 0 && e.steps > e.maxSteps {
		return ErrMaxStepsExceeded
	}
	return nil
}

func (e *Evaluator) evalCore(node ast.Node, scope *Scope) (Object, error) {
	switch node := node.(type) {
	// Statements
	case *ast.Program:
		return e.evalProgram(node, scope)
	case *ast.ExpressionStatement:
		return e.Eval(node.Expression, scope)
	case *ast.EmptyStatement:
		return Undefined, nil
	case *ast.BlockStatement:
		return e.evalBlockStatement(node, scope)
	case *ast.VariableDeclaration:
		return e.evalVariableDeclaration(node, scope)
	case *ast.FunctionDeclaration:
		return Undefined, e.declareFunction(node, scope)
	case *ast.ReturnStatement:
		return e.evalReturnStatement(node, scope)
	case *ast.IfStatement:
		return e.evalIfStatement(node, scope)
	case *ast.SwitchStatement:
		return e.evalSwitchStatement(node, scope)
	case *ast.WhileStatement:
		return e.evalWhileStatement(node, scope)
	case *ast.DoWhileStatement:
		return e.evalDoWhileStatement(node, scope)
	case *ast.ForStatement:
		return e.evalForStatement(node, scope)
	case *ast.BreakStatement:
		if node.Label != nil {
			return nil, &UnsupportedSyntaxError{Kind: "LabeledBreak", Loc: node.Loc}
		}
		return breakSignal, nil
	case *ast.ContinueStatement:
		if node.Label != nil {
			return nil, &UnsupportedSyntaxError{Kind: "LabeledContinue", Loc: node.Loc}
		}
		return continueSignal, nil
	case *ast.ThrowStatement:
		return e.evalThrowStatement(node, scope)
	case *ast.TryStatement:
		return e.evalTryStatement(node, scope)

	// Expressions
	case *ast.Identifier:
		return scope.Get(node.Name)
	case *ast.Literal:
		return e.evalLiteral(node)
	case *ast.ThisExpression:
		return scope.Receiver(), nil
	case *ast.ArrayExpression:
		return e.evalArrayExpression(node, scope)
	case *ast.ObjectExpression:
		return e.evalObjectExpression(node, scope)
	case *ast.TemplateLiteral:
		return e.evalTemplateLiteral(node, scope)
	case *ast.FunctionExpression:
		return e.newFunction(node, "", scope)
	case *ast.ArrowFunctionExpression:
		return e.newFunction(node, "", scope)
	case *ast.UnaryExpression:
		return e.evalUnaryExpression(node, scope)
	case *ast.UpdateExpression:
		return e.evalUpdateExpression(node, scope)
	case *ast.BinaryExpression:
		return e.evalBinaryExpression(node, scope)
	case *ast.LogicalExpression:
		return e.evalLogicalExpression(node, scope)
	case *ast.AssignmentExpression:
		return e.evalAssignmentExpression(node, scope)
	case *ast.ConditionalExpression:
		return e.evalConditionalExpression(node, scope)
	case *ast.MemberExpression:
		return e.evalMemberExpression(node, scope)
	case *ast.CallExpression:
		return e.evalCallExpression(node, scope)
	case *ast.NewExpression:
		return e.evalNewExpression(node, scope)
	case *ast.SequenceExpression:
		return e.evalSequenceExpression(node, scope)
	case *ast.AwaitExpression:
		return e.evalAwaitExpression(node, scope)
	case *ast.YieldExpression:
		return e.evalYieldExpression(node, scope)
	}
	return nil, unsupported(node)
}

func (e *Evaluator) reportUnhandled() {
	for _, p := range e.rejected {
		if !p.handled {
			log.Warn("unhandled promise rejection", "promise", p.ID, "reason", inspectThrown(p.Value))
		}
	}
	e.rejected = e.rejected[:0]
}
