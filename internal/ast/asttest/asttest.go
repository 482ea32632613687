// Package asttest builds trees by hand for evaluator tests.
package asttest

import "github.com/funvibe/jswalk/internal/ast"

func Program(body ...ast.Statement) *ast.Program {
	return &ast.Program{SourceType: "script", Body: body}
}

func Expr(e ast.Expression) *ast.ExpressionStatement {
	return &ast.ExpressionStatement{Expression: e}
}

func Block(body ...ast.Statement) *ast.BlockStatement {
	return &ast.BlockStatement{Body: body}
}

func decl(kind, name string, init ast.Expression) *ast.VariableDeclaration {
	return &ast.VariableDeclaration{
		DeclKind:     kind,
		Declarations: []*ast.VariableDeclarator{{ID: Ident(name), Init: init}},
	}
}

// Var, Let and Const declare a single name; init may be nil.
func Var(name string, init ast.Expression) *ast.VariableDeclaration {
	return decl(ast.DeclVar, name, init)
}

func Let(name string, init ast.Expression) *ast.VariableDeclaration {
	return decl(ast.DeclLet, name, init)
}

func Const(name string, init ast.Expression) *ast.VariableDeclaration {
	return decl(ast.DeclConst, name, init)
}

func fn(name string, params []string, body ast.Node) ast.Function {
	f := ast.Function{Body: body}
	if name != "" {
		f.ID = Ident(name)
	}
	for _, p := range params {
		f.Params = append(f.Params, Ident(p))
	}
	if _, ok := body.(ast.Expression); ok {
		f.IsExpression = true
	}
	return f
}

func Func(name string, params []string, body ...ast.Statement) *ast.FunctionDeclaration {
	return &ast.FunctionDeclaration{Function: fn(name, params, Block(body...))}
}

func AsyncFunc(name string, params []string, body ...ast.Statement) *ast.FunctionDeclaration {
	d := Func(name, params, body...)
	d.Async = true
	return d
}

func GenFunc(name string, params []string, body ...ast.Statement) *ast.FunctionDeclaration {
	d := Func(name, params, body...)
	d.Generator = true
	return d
}

// FuncExpr builds a function expression; name may be empty.
func FuncExpr(name string, params []string, body ...ast.Statement) *ast.FunctionExpression {
	return &ast.FunctionExpression{Function: fn(name, params, Block(body...))}
}

func AsyncFuncExpr(name string, params []string, body ...ast.Statement) *ast.FunctionExpression {
	e := FuncExpr(name, params, body...)
	e.Async = true
	return e
}

// Arrow builds an arrow function with a block body.
func Arrow(params []string, body ...ast.Statement) *ast.ArrowFunctionExpression {
	return &ast.ArrowFunctionExpression{Function: fn("", params, Block(body...))}
}

// ArrowExpr builds an arrow function with a concise body.
func ArrowExpr(params []string, body ast.Expression) *ast.ArrowFunctionExpression {
	return &ast.ArrowFunctionExpression{Function: fn("", params, body)}
}

func AsyncArrow(params []string, body ...ast.Statement) *ast.ArrowFunctionExpression {
	a := Arrow(params, body...)
	a.Async = true
	return a
}

func Return(arg ast.Expression) *ast.ReturnStatement {
	return &ast.ReturnStatement{Argument: arg}
}

func If(test ast.Expression, cons, alt ast.Statement) *ast.IfStatement {
	return &ast.IfStatement{Test: test, Consequent: cons, Alternate: alt}
}

func While(test ast.Expression, body ...ast.Statement) *ast.WhileStatement {
	return &ast.WhileStatement{Test: test, Body: Block(body...)}
}

func DoWhile(test ast.Expression, body ...ast.Statement) *ast.DoWhileStatement {
	return &ast.DoWhileStatement{Test: test, Body: Block(body...)}
}

// For builds a for statement; init may be a declaration, an expression or nil.
func For(init ast.Node, test, update ast.Expression, body ...ast.Statement) *ast.ForStatement {
	return &ast.ForStatement{Init: init, Test: test, Update: update, Body: Block(body...)}
}

func Break() *ast.BreakStatement       { return &ast.BreakStatement{} }
func Continue() *ast.ContinueStatement { return &ast.ContinueStatement{} }

func Throw(arg ast.Expression) *ast.ThrowStatement {
	return &ast.ThrowStatement{Argument: arg}
}

// Try builds a try statement. A nil handler omits the catch clause and an
// empty param produces `catch { }`.
func Try(block *ast.BlockStatement, param string, handler, finalizer *ast.BlockStatement) *ast.TryStatement {
	t := &ast.TryStatement{Block: block, Finalizer: finalizer}
	if handler != nil {
		t.Handler = &ast.CatchClause{Body: handler}
		if param != "" {
			t.Handler.Param = Ident(param)
		}
	}
	return t
}

func Switch(disc ast.Expression, cases ...*ast.SwitchCase) *ast.SwitchStatement {
	return &ast.SwitchStatement{Discriminant: disc, Cases: cases}
}

func Case(test ast.Expression, body ...ast.Statement) *ast.SwitchCase {
	return &ast.SwitchCase{Test: test, Consequent: body}
}

func Default(body ...ast.Statement) *ast.SwitchCase {
	return &ast.SwitchCase{Consequent: body}
}

func Ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func Num(v float64) *ast.Literal { return &ast.Literal{Value: v} }

func Str(v string) *ast.Literal { return &ast.Literal{Value: v} }

func Bool(v bool) *ast.Literal { return &ast.Literal{Value: v} }

func NullLit() *ast.Literal { return &ast.Literal{Raw: "null"} }

func This() *ast.ThisExpression { return &ast.ThisExpression{} }

func Arr(elems ...ast.Expression) *ast.ArrayExpression {
	return &ast.ArrayExpression{Elements: elems}
}

func Obj(props ...*ast.Property) *ast.ObjectExpression {
	return &ast.ObjectExpression{Properties: props}
}

func Prop(key string, value ast.Expression) *ast.Property {
	return &ast.Property{Key: Ident(key), Value: value, PropKind: ast.PropInit}
}

func ComputedProp(key, value ast.Expression) *ast.Property {
	return &ast.Property{Key: key, Value: value, PropKind: ast.PropInit, Computed: true}
}

func Getter(key string, body ...ast.Statement) *ast.Property {
	return &ast.Property{Key: Ident(key), Value: FuncExpr("", nil, body...), PropKind: ast.PropGet}
}

func Setter(key, param string, body ...ast.Statement) *ast.Property {
	return &ast.Property{Key: Ident(key), Value: FuncExpr("", []string{param}, body...), PropKind: ast.PropSet}
}

func Method(key string, params []string, body ...ast.Statement) *ast.Property {
	return &ast.Property{Key: Ident(key), Value: FuncExpr("", params, body...), PropKind: ast.PropInit, Method: true}
}

// Template interleaves literal chunks and expressions; len(quasis) must
// be len(exprs)+1.
func Template(quasis []string, exprs ...ast.Expression) *ast.TemplateLiteral {
	t := &ast.TemplateLiteral{Expressions: exprs}
	for i, q := range quasis {
		t.Quasis = append(t.Quasis, &ast.TemplateElement{Cooked: q, Raw: q, Tail: i == len(quasis)-1})
	}
	return t
}

func Unary(op string, arg ast.Expression) *ast.UnaryExpression {
	return &ast.UnaryExpression{Operator: op, Prefix: true, Argument: arg}
}

func Update(op string, prefix bool, arg ast.Expression) *ast.UpdateExpression {
	return &ast.UpdateExpression{Operator: op, Prefix: prefix, Argument: arg}
}

func Bin(op string, left, right ast.Expression) *ast.BinaryExpression {
	return &ast.BinaryExpression{Operator: op, Left: left, Right: right}
}

func Logical(op string, left, right ast.Expression) *ast.LogicalExpression {
	return &ast.LogicalExpression{Operator: op, Left: left, Right: right}
}

func Assign(op string, target ast.Node, value ast.Expression) *ast.AssignmentExpression {
	return &ast.AssignmentExpression{Operator: op, Left: target, Right: value}
}

func Cond(test, cons, alt ast.Expression) *ast.ConditionalExpression {
	return &ast.ConditionalExpression{Test: test, Consequent: cons, Alternate: alt}
}

// Member builds obj.name.
func Member(obj ast.Expression, name string) *ast.MemberExpression {
	return &ast.MemberExpression{Object: obj, Property: Ident(name)}
}

// Index builds obj[key].
func Index(obj, key ast.Expression) *ast.MemberExpression {
	return &ast.MemberExpression{Object: obj, Property: key, Computed: true}
}

// Path builds a dotted member chain such as console.log.
func Path(root string, names ...string) ast.Expression {
	var e ast.Expression = Ident(root)
	for _, n := range names {
		e = Member(e, n)
	}
	return e
}

func Call(callee ast.Expression, args ...ast.Expression) *ast.CallExpression {
	return &ast.CallExpression{Callee: callee, Arguments: args}
}

func NewExpr(callee ast.Expression, args ...ast.Expression) *ast.NewExpression {
	return &ast.NewExpression{Callee: callee, Arguments: args}
}

func Seq(exprs ...ast.Expression) *ast.SequenceExpression {
	return &ast.SequenceExpression{Expressions: exprs}
}

func Await(arg ast.Expression) *ast.AwaitExpression {
	return &ast.AwaitExpression{Argument: arg}
}

func Yield(arg ast.Expression) *ast.YieldExpression {
	return &ast.YieldExpression{Argument: arg}
}

// Log builds console.log(args...) as a statement.
func Log(args ...ast.Expression) *ast.ExpressionStatement {
	return Expr(Call(Path("console", "log"), args...))
}

// Export builds module.exports = value.
func Export(value ast.Expression) *ast.ExpressionStatement {
	return Expr(Assign("=", Path("module", "exports"), value))
}
