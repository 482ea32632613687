package ast

type Identifier struct {
	Loc
	Name string
}

func (i *Identifier) Kind() string    { return "Identifier" }
func (i *Identifier) expressionNode() {}

// Literal.Value holds nil (null), bool, float64 or string.
type Literal struct {
	Loc
	Value any
	Raw   string
	Regex *RegexLiteral
}

type RegexLiteral struct {
	Pattern string
	Flags   string
}

func (l *Literal) Kind() string    { return "Literal" }
func (l *Literal) expressionNode() {}

type ThisExpression struct {
	Loc
}

func (te *ThisExpression) Kind() string    { return "ThisExpression" }
func (te *ThisExpression) expressionNode() {}

// ArrayExpression elements may be nil for holes.
type ArrayExpression struct {
	Loc
	Elements []Expression
}

func (ae *ArrayExpression) Kind() string    { return "ArrayExpression" }
func (ae *ArrayExpression) expressionNode() {}

type ObjectExpression struct {
	Loc
	Properties []*Property
}

func (oe *ObjectExpression) Kind() string    { return "ObjectExpression" }
func (oe *ObjectExpression) expressionNode() {}

// Property kinds.
const (
	PropInit = "init"
	PropGet  = "get"
	PropSet  = "set"
)

type Property struct {
	Loc
	Key       Expression
	Value     Expression
	PropKind  string
	Computed  bool
	Method    bool
	Shorthand bool
}

func (p *Property) Kind() string { return "Property" }

type TemplateLiteral struct {
	Loc
	Quasis      []*TemplateElement
	Expressions []Expression
}

func (tl *TemplateLiteral) Kind() string    { return "TemplateLiteral" }
func (tl *TemplateLiteral) expressionNode() {}

type TemplateElement struct {
	Loc
	Cooked string
	Raw    string
	Tail   bool
}

func (te *TemplateElement) Kind() string { return "TemplateElement" }

type UnaryExpression struct {
	Loc
	Operator string
	Prefix   bool
	Argument Expression
}

func (ue *UnaryExpression) Kind() string    { return "UnaryExpression" }
func (ue *UnaryExpression) expressionNode() {}

type UpdateExpression struct {
	Loc
	Operator string
	Prefix   bool
	Argument Expression
}

func (ue *UpdateExpression) Kind() string    { return "UpdateExpression" }
func (ue *UpdateExpression) expressionNode() {}

type BinaryExpression struct {
	Loc
	Operator string
	Left     Expression
	Right    Expression
}

func (be *BinaryExpression) Kind() string    { return "BinaryExpression" }
func (be *BinaryExpression) expressionNode() {}

type LogicalExpression struct {
	Loc
	Operator string
	Left     Expression
	Right    Expression
}

func (le *LogicalExpression) Kind() string    { return "LogicalExpression" }
func (le *LogicalExpression) expressionNode() {}

// AssignmentExpression.Left is an *Identifier or a *MemberExpression;
// anything else decodes to *Unknown.
type AssignmentExpression struct {
	Loc
	Operator string
	Left     Node
	Right    Expression
}

func (ae *AssignmentExpression) Kind() string    { return "AssignmentExpression" }
func (ae *AssignmentExpression) expressionNode() {}

type ConditionalExpression struct {
	Loc
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

func (ce *ConditionalExpression) Kind() string    { return "ConditionalExpression" }
func (ce *ConditionalExpression) expressionNode() {}

type MemberExpression struct {
	Loc
	Object   Expression
	Property Expression
	Computed bool
}

func (me *MemberExpression) Kind() string    { return "MemberExpression" }
func (me *MemberExpression) expressionNode() {}

type CallExpression struct {
	Loc
	Callee    Expression
	Arguments []Expression
}

func (ce *CallExpression) Kind() string    { return "CallExpression" }
func (ce *CallExpression) expressionNode() {}

type NewExpression struct {
	Loc
	Callee    Expression
	Arguments []Expression
}

func (ne *NewExpression) Kind() string    { return "NewExpression" }
func (ne *NewExpression) expressionNode() {}

type SequenceExpression struct {
	Loc
	Expressions []Expression
}

func (se *SequenceExpression) Kind() string    { return "SequenceExpression" }
func (se *SequenceExpression) expressionNode() {}

type AwaitExpression struct {
	Loc
	Argument Expression
}

func (ae *AwaitExpression) Kind() string    { return "AwaitExpression" }
func (ae *AwaitExpression) expressionNode() {}

type YieldExpression struct {
	Loc
	Argument Expression // nil for a bare yield
	Delegate bool
}

func (ye *YieldExpression) Kind() string    { return "YieldExpression" }
func (ye *YieldExpression) expressionNode() {}
