package ast

// Loc is the source range of a node as reported by the front end that
// produced the tree. Offsets are opaque to the evaluator and only used
// in diagnostics.
type Loc struct {
	Start int
	End   int
}

func (l Loc) Location() Loc { return l }

// Node is the base interface for all tree nodes.
type Node interface {
	Kind() string
	Location() Loc
}

// Statement is a Node that can appear in a statement list.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root of every decoded tree.
type Program struct {
	Loc
	SourceType string
	Body       []Statement
}

func (p *Program) Kind() string { return "Program" }

// Unknown stands in for any node kind the decoder does not model.
// The evaluator rejects it with an unsupported-syntax failure.
type Unknown struct {
	Loc
	Type string
}

func (u *Unknown) Kind() string    { return u.Type }
func (u *Unknown) statementNode()  {}
func (u *Unknown) expressionNode() {}

type ExpressionStatement struct {
	Loc
	Expression Expression
	Directive  string
}

func (es *ExpressionStatement) Kind() string   { return "ExpressionStatement" }
func (es *ExpressionStatement) statementNode() {}

type EmptyStatement struct {
	Loc
}

func (es *EmptyStatement) Kind() string   { return "EmptyStatement" }
func (es *EmptyStatement) statementNode() {}

type BlockStatement struct {
	Loc
	Body []Statement
}

func (bs *BlockStatement) Kind() string   { return "BlockStatement" }
func (bs *BlockStatement) statementNode() {}

// Declaration kinds.
const (
	DeclVar   = "var"
	DeclLet   = "let"
	DeclConst = "const"
)

type VariableDeclaration struct {
	Loc
	DeclKind     string // var, let or const
	Declarations []*VariableDeclarator
}

func (vd *VariableDeclaration) Kind() string   { return "VariableDeclaration" }
func (vd *VariableDeclaration) statementNode() {}

// VariableDeclarator binds one target. Only *Identifier targets are
// evaluated; other patterns decode to *Unknown.
type VariableDeclarator struct {
	Loc
	ID   Node
	Init Expression // nil when absent
}

func (vd *VariableDeclarator) Kind() string { return "VariableDeclarator" }

type ReturnStatement struct {
	Loc
	Argument Expression // nil for a bare return
}

func (rs *ReturnStatement) Kind() string   { return "ReturnStatement" }
func (rs *ReturnStatement) statementNode() {}

type IfStatement struct {
	Loc
	Test       Expression
	Consequent Statement
	Alternate  Statement // nil when absent
}

func (is *IfStatement) Kind() string   { return "IfStatement" }
func (is *IfStatement) statementNode() {}

type SwitchStatement struct {
	Loc
	Discriminant Expression
	Cases        []*SwitchCase
}

func (ss *SwitchStatement) Kind() string   { return "SwitchStatement" }
func (ss *SwitchStatement) statementNode() {}

// SwitchCase with a nil Test is the default clause.
type SwitchCase struct {
	Loc
	Test       Expression
	Consequent []Statement
}

func (sc *SwitchCase) Kind() string { return "SwitchCase" }

type WhileStatement struct {
	Loc
	Test Expression
	Body Statement
}

func (ws *WhileStatement) Kind() string   { return "WhileStatement" }
func (ws *WhileStatement) statementNode() {}

type DoWhileStatement struct {
	Loc
	Body Statement
	Test Expression
}

func (dw *DoWhileStatement) Kind() string   { return "DoWhileStatement" }
func (dw *DoWhileStatement) statementNode() {}

// ForStatement.Init is a *VariableDeclaration, an Expression or nil.
type ForStatement struct {
	Loc
	Init   Node
	Test   Expression
	Update Expression
	Body   Statement
}

func (fs *ForStatement) Kind() string   { return "ForStatement" }
func (fs *ForStatement) statementNode() {}

type BreakStatement struct {
	Loc
	Label *Identifier
}

func (bs *BreakStatement) Kind() string   { return "BreakStatement" }
func (bs *BreakStatement) statementNode() {}

type ContinueStatement struct {
	Loc
	Label *Identifier
}

func (cs *ContinueStatement) Kind() string   { return "ContinueStatement" }
func (cs *ContinueStatement) statementNode() {}

type ThrowStatement struct {
	Loc
	Argument Expression
}

func (ts *ThrowStatement) Kind() string   { return "ThrowStatement" }
func (ts *ThrowStatement) statementNode() {}

type TryStatement struct {
	Loc
	Block     *BlockStatement
	Handler   *CatchClause    // nil when absent
	Finalizer *BlockStatement // nil when absent
}

func (ts *TryStatement) Kind() string   { return "TryStatement" }
func (ts *TryStatement) statementNode() {}

// CatchClause.Param is nil for `catch { }`.
type CatchClause struct {
	Loc
	Param Node
	Body  *BlockStatement
}

func (cc *CatchClause) Kind() string { return "CatchClause" }
