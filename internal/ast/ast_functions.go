package ast

// Function is the shape shared by declarations, expressions and arrows.
// Body is a *BlockStatement, or an Expression when IsExpression is set
// (concise arrow bodies).
type Function struct {
	Loc
	ID           *Identifier
	Params       []Node
	Body         Node
	Generator    bool
	Async        bool
	IsExpression bool
}

func (f *Function) Func() *Function { return f }

// FunctionNode is implemented by every node that creates a callable.
type FunctionNode interface {
	Node
	Func() *Function
}

type FunctionDeclaration struct {
	Function
}

func (fd *FunctionDeclaration) Kind() string   { return "FunctionDeclaration" }
func (fd *FunctionDeclaration) statementNode() {}

type FunctionExpression struct {
	Function
}

func (fe *FunctionExpression) Kind() string    { return "FunctionExpression" }
func (fe *FunctionExpression) expressionNode() {}

type ArrowFunctionExpression struct {
	Function
}

func (af *ArrowFunctionExpression) Kind() string    { return "ArrowFunctionExpression" }
func (af *ArrowFunctionExpression) expressionNode() {}
