package evaluator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/jswalk/internal/ast"
	. "github.com/funvibe/jswalk/internal/ast/asttest"
	"github.com/funvibe/jswalk/internal/config"
)

type runResult struct {
	exports Object
	out     []string
	err     error
}

func run(t *testing.T, body []ast.Statement, opts ...Option) runResult {
	t.Helper()
	var out bytes.Buffer
	e := New(append([]Option{WithWriter(&out), WithErrWriter(&out)}, opts...)...)
	t.Cleanup(e.Close)
	exports, err := e.RunProgram(Program(body...))
	return runResult{exports: exports, out: lines(out.String()), err: err}
}

func lines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func stmts(s ...ast.Statement) []ast.Statement { return s }

func TestEvalExports(t *testing.T) {
	tests := []struct {
		name string
		body []ast.Statement
		want string
	}{
		{
			"call with arguments",
			stmts(
				Func("f", []string{"a", "b"}, Return(Bin("+", Ident("a"), Ident("b")))),
				Export(Call(Ident("f"), Num(2), Num(3))),
			),
			"5",
		},
		{
			"template literal",
			stmts(
				Const("name", Str("Tom")),
				Export(Template([]string{"hello ", ""}, Ident("name"))),
			),
			"'hello Tom'",
		},
		{
			"function hoisted above its use",
			stmts(
				Export(Call(Ident("g"))),
				Func("g", nil, Return(Num(1))),
			),
			"1",
		},
		{
			"var hoisted as undefined",
			stmts(
				Export(Unary("typeof", Ident("x"))),
				Var("x", Num(1)),
			),
			"'undefined'",
		},
		{
			"let in block shadows outer",
			stmts(
				Let("x", Num(1)),
				Block(Let("x", Num(2))),
				Export(Ident("x")),
			),
			"1",
		},
		{
			"var in block writes function scope",
			stmts(
				Block(Var("x", Num(2))),
				Export(Ident("x")),
			),
			"2",
		},
		{
			"closures share a binding",
			stmts(
				Let("n", Num(0)),
				Const("inc", ArrowExpr(nil, Update("++", false, Ident("n")))),
				Expr(Call(Ident("inc"))),
				Expr(Call(Ident("inc"))),
				Export(Ident("n")),
			),
			"2",
		},
		{
			"untouched exports",
			nil,
			"{}",
		},
		{
			"continue and break in for",
			stmts(
				Let("s", Num(0)),
				For(Let("i", Num(0)), Bin("<", Ident("i"), Num(10)), Update("++", false, Ident("i")),
					If(Bin("===", Bin("%", Ident("i"), Num(2)), Num(0)), Continue(), nil),
					If(Bin(">", Ident("i"), Num(7)), Break(), nil),
					Expr(Assign("+=", Ident("s"), Ident("i"))),
				),
				Export(Ident("s")),
			),
			"16",
		},
		{
			"return from nested loops",
			stmts(
				Func("find", nil,
					For(Let("i", Num(0)), Bin("<", Ident("i"), Num(5)), Update("++", false, Ident("i")),
						While(Bool(true),
							If(Bin("===", Ident("i"), Num(3)), Return(Ident("i")), nil),
							Break(),
						),
					),
					Return(Num(-1)),
				),
				Export(Call(Ident("find"))),
			),
			"3",
		},
		{
			"do-while runs once",
			stmts(
				Let("n", Num(0)),
				DoWhile(Bool(false), Expr(Update("++", false, Ident("n")))),
				Export(Ident("n")),
			),
			"1",
		},
		{
			"switch falls through until break",
			stmts(
				Let("r", Str("")),
				Switch(Num(2),
					Case(Num(1), Expr(Assign("+=", Ident("r"), Str("a")))),
					Case(Num(2), Expr(Assign("+=", Ident("r"), Str("b")))),
					Case(Num(3), Expr(Assign("+=", Ident("r"), Str("c"))), Break()),
					Default(Expr(Assign("+=", Ident("r"), Str("d")))),
				),
				Export(Ident("r")),
			),
			"'bc'",
		},
		{
			"switch default",
			stmts(
				Let("r", Str("")),
				Switch(Str("z"),
					Case(Str("a"), Expr(Assign("=", Ident("r"), Str("a"))), Break()),
					Default(Expr(Assign("=", Ident("r"), Str("d")))),
				),
				Export(Ident("r")),
			),
			"'d'",
		},
		{
			"block case gets its own scope",
			stmts(
				Let("r", Str("")),
				Switch(Num(1),
					Case(Num(1), Let("x", Str("bare "))),
					Case(Num(2), Block(
						Let("x", Str("block ")),
						Expr(Assign("+=", Ident("r"), Ident("x"))),
					)),
					Default(Expr(Assign("+=", Ident("r"), Ident("x")))),
				),
				Export(Ident("r")),
			),
			"'block bare '",
		},
		{
			"numeric keys past the index range are not elements",
			stmts(
				Const("a", Arr()),
				Expr(Assign("=", Index(Ident("a"), Num(4294967295)), Num(1))),
				Export(Arr(Member(Ident("a"), "length"), Index(Ident("a"), Num(4294967295)))),
			),
			"[ 0, undefined ]",
		},
		{
			"oversized array write is a catchable RangeError",
			stmts(
				Const("a", Arr()),
				Let("r", Str("")),
				Try(
					Block(Expr(Assign("=", Index(Ident("a"), Num(4294967294)), Num(1)))),
					"e", Block(Expr(Assign("=", Ident("r"), Member(Ident("e"), "name")))),
					nil,
				),
				Export(Arr(Ident("r"), Member(Ident("a"), "length"))),
			),
			"[ 'RangeError', 0 ]",
		},
		{
			"try catch finally",
			stmts(
				Let("r", Str("")),
				Try(
					Block(Throw(NewExpr(Ident("Error"), Str("boom")))),
					"e", Block(Expr(Assign("=", Ident("r"), Path("e", "message")))),
					Block(Expr(Assign("+=", Ident("r"), Str("!")))),
				),
				Export(Ident("r")),
			),
			"'boom!'",
		},
		{
			"host failure caught as TypeError",
			stmts(
				Let("r", NullLit()),
				Try(
					Block(Expr(Call(Ident("undefined")))),
					"e", Block(Expr(Assign("=", Ident("r"), Path("e", "name")))),
					nil,
				),
				Export(Ident("r")),
			),
			"'TypeError'",
		},
		{
			"unresolved name caught as ReferenceError",
			stmts(
				Let("r", NullLit()),
				Try(
					Block(Expr(Ident("nope"))),
					"e", Block(Expr(Assign("=", Ident("r"), Path("e", "name")))),
					nil,
				),
				Export(Ident("r")),
			),
			"'ReferenceError'",
		},
		{
			"return in finally wins",
			stmts(
				Func("f", nil,
					Try(Block(Return(Num(1))), "", nil, Block(Return(Num(2)))),
				),
				Export(Call(Ident("f"))),
			),
			"2",
		},
		{
			"getter and setter",
			stmts(
				Const("o", Obj(
					Prop("_v", Num(1)),
					Getter("v", Return(Bin("*", Member(This(), "_v"), Num(10)))),
					Setter("v", "x", Expr(Assign("=", Member(This(), "_v"), Ident("x")))),
				)),
				Expr(Assign("=", Member(Ident("o"), "v"), Num(4))),
				Export(Member(Ident("o"), "v")),
			),
			"40",
		},
		{
			"method receiver",
			stmts(
				Const("o", Obj(
					Prop("n", Num(7)),
					Method("get", nil, Return(Member(This(), "n"))),
				)),
				Export(Call(Member(Ident("o"), "get"))),
			),
			"7",
		},
		{
			"arrow captures receiver",
			stmts(
				Const("o", Obj(
					Prop("n", Num(3)),
					Method("get", nil, Return(Call(ArrowExpr(nil, Member(This(), "n"))))),
				)),
				Export(Call(Member(Ident("o"), "get"))),
			),
			"3",
		},
		{
			"named function expression recursion",
			stmts(
				Const("fact", FuncExpr("f", []string{"n"},
					If(Bin("<=", Ident("n"), Num(1)), Return(Num(1)), nil),
					Return(Bin("*", Ident("n"), Call(Ident("f"), Bin("-", Ident("n"), Num(1))))),
				)),
				Export(Call(Ident("fact"), Num(5))),
			),
			"120",
		},
		{
			"constructor with prototype method",
			stmts(
				Func("P", []string{"x"}, Expr(Assign("=", Member(This(), "x"), Ident("x")))),
				Expr(Assign("=", Path("P", "prototype", "double"),
					FuncExpr("", nil, Return(Bin("*", Member(This(), "x"), Num(2)))))),
				Const("p", NewExpr(Ident("P"), Num(21))),
				Export(Arr(
					Call(Member(Ident("p"), "double")),
					Bin("instanceof", Ident("p"), Ident("P")),
				)),
			),
			"[ 42, true ]",
		},
		{
			"member compound assignment",
			stmts(
				Const("o", Obj(Prop("a", Obj(Prop("b", Num(1)))))),
				Expr(Assign("<<=", Path("o", "a", "b"), Num(3))),
				Expr(Assign("+=", Path("o", "a", "b"), Num(1))),
				Export(Path("o", "a", "b")),
			),
			"9",
		},
		{
			"array helpers",
			stmts(
				Const("a", Arr(Num(1), Num(2), Num(3))),
				Expr(Call(Member(Ident("a"), "push"), Num(4))),
				Export(Call(
					Member(Call(Member(Ident("a"), "map"), ArrowExpr([]string{"x"}, Bin("*", Ident("x"), Ident("x")))), "join"),
					Str("-"),
				)),
			),
			"'1-4-9-16'",
		},
		{
			"delete and in",
			stmts(
				Const("o", Obj(Prop("a", Num(1)), Prop("b", Num(2)))),
				Expr(Unary("delete", Member(Ident("o"), "a"))),
				Export(Arr(Bin("in", Str("a"), Ident("o")), Bin("in", Str("b"), Ident("o")))),
			),
			"[ false, true ]",
		},
		{
			"logical short circuit",
			stmts(
				Export(Arr(
					Logical("||", Num(0), Str("x")),
					Logical("&&", Num(0), Call(Ident("nope"))),
					Logical("??", NullLit(), Num(5)),
				)),
			),
			"[ 'x', 0, 5 ]",
		},
		{
			"conditional and sequence",
			stmts(
				Let("i", Num(0)),
				Export(Arr(
					Cond(Bin(">", Num(2), Num(1)), Str("yes"), Str("no")),
					Seq(Assign("=", Ident("i"), Num(4)), Bin("*", Ident("i"), Num(2))),
				)),
			),
			"[ 'yes', 8 ]",
		},
		{
			"computed property key",
			stmts(
				Const("k", Str("a")),
				Export(Obj(ComputedProp(Bin("+", Ident("k"), Str("b")), Num(1)))),
			),
			"{ ab: 1 }",
		},
		{
			"loose assignment creates global binding",
			stmts(
				Func("set", nil, Expr(Assign("=", Ident("z"), Num(3)))),
				Expr(Call(Ident("set"))),
				Export(Ident("z")),
			),
			"3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.body)
			if res.err != nil {
				t.Fatalf("unexpected error: %v", res.err)
			}
			if got := inspect(res.exports); got != tt.want {
				t.Errorf("exports = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  []ast.Statement
		opts  []Option
		check func(error) bool
		msg   string
	}{
		{
			"const reassignment",
			stmts(Const("c", Num(1)), Expr(Assign("=", Ident("c"), Num(2)))),
			nil,
			func(err error) bool { var e *ReassignConstError; return errors.As(err, &e) },
			"assignment to constant variable 'c'",
		},
		{
			"let redeclaration",
			stmts(Let("a", Num(1)), Let("a", Num(2))),
			nil,
			func(err error) bool { var e *RedeclarationError; return errors.As(err, &e) },
			"identifier 'a' has already been declared",
		},
		{
			"unresolved name",
			stmts(Export(Ident("missing"))),
			nil,
			func(err error) bool { var e *NameResolutionError; return errors.As(err, &e) },
			"missing is not defined",
		},
		{
			"strict assignment to undeclared name",
			stmts(Expr(Assign("=", Ident("z"), Num(1)))),
			[]Option{WithAssignMode(config.AssignStrict)},
			func(err error) bool { var e *NameResolutionError; return errors.As(err, &e) },
			"z is not defined",
		},
		{
			"unknown node kind",
			stmts(&ast.Unknown{Loc: ast.Loc{Start: 3, End: 9}, Type: "WithStatement"}),
			nil,
			func(err error) bool { var e *UnsupportedSyntaxError; return errors.As(err, &e) },
			"unsupported syntax WithStatement at 3:9",
		},
		{
			"uncaught throw",
			stmts(Throw(NewExpr(Ident("Error"), Str("boom")))),
			nil,
			func(err error) bool { var e *ThrowError; return errors.As(err, &e) },
			"uncaught Error: boom",
		},
		{
			"calling a non-function",
			stmts(Const("o", Obj()), Expr(Call(Member(Ident("o"), "run")))),
			nil,
			func(err error) bool { var e *TypeError; return errors.As(err, &e) },
			"o.run is not a function",
		},
		{
			"reading a property of undefined",
			stmts(Expr(Path("undefined", "x"))),
			nil,
			func(err error) bool { var e *TypeError; return errors.As(err, &e) },
			"cannot read properties of undefined (reading 'x')",
		},
		{
			"step budget",
			stmts(While(Bool(true))),
			[]Option{WithMaxSteps(1000)},
			func(err error) bool { return errors.Is(err, ErrMaxStepsExceeded) },
			ErrMaxStepsExceeded.Error(),
		},
		{
			"step budget is not catchable",
			stmts(Try(Block(While(Bool(true))), "e", Block(), nil)),
			[]Option{WithMaxSteps(1000)},
			func(err error) bool { return errors.Is(err, ErrMaxStepsExceeded) },
			ErrMaxStepsExceeded.Error(),
		},
		{
			"call depth",
			stmts(
				Func("r", nil, Return(Call(Ident("r")))),
				Expr(Call(Ident("r"))),
			),
			[]Option{WithMaxCallDepth(50)},
			func(err error) bool { return errors.Is(err, ErrCallDepthExceeded) },
			ErrCallDepthExceeded.Error(),
		},
		{
			"let in bare switch cases shares one scope",
			stmts(Switch(Num(1),
				Case(Num(1), Let("y", Num(1))),
				Case(Num(2), Let("y", Num(2))),
			)),
			nil,
			func(err error) bool { var e *RedeclarationError; return errors.As(err, &e) },
			"identifier 'y' has already been declared",
		},
		{
			"array length above 2^32-1",
			stmts(Const("a", Arr()), Expr(Assign("=", Member(Ident("a"), "length"), Num(1e12)))),
			nil,
			func(err error) bool { var e *ThrowError; return errors.As(err, &e) },
			"uncaught RangeError: Invalid array length",
		},
		{
			"fractional array length",
			stmts(Expr(NewExpr(Ident("Array"), Num(1.5)))),
			nil,
			func(err error) bool { var e *ThrowError; return errors.As(err, &e) },
			"uncaught RangeError: Invalid array length",
		},
		{
			"array growth past the configured limit",
			stmts(Const("a", Arr()), Expr(Assign("=", Index(Ident("a"), Num(8)), Num(1)))),
			[]Option{WithMaxArrayLength(8)},
			func(err error) bool { var e *ThrowError; return errors.As(err, &e) },
			"uncaught RangeError: array length 9 exceeds the limit of 8",
		},
		{
			"step budget counts named function values",
			stmts(Let("f", ArrowExpr(nil, Num(1)))),
			[]Option{WithMaxSteps(2)},
			func(err error) bool { return errors.Is(err, ErrMaxStepsExceeded) },
			ErrMaxStepsExceeded.Error(),
		},
		{
			"yield outside generator",
			stmts(Expr(Yield(Num(1)))),
			nil,
			func(err error) bool { var e *UnsupportedSyntaxError; return errors.As(err, &e) },
			"unsupported syntax YieldExpression at 0:0 (outside generator function)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, tt.body, tt.opts...)
			if res.err == nil {
				t.Fatalf("expected error, got exports %s", inspect(res.exports))
			}
			if !tt.check(res.err) {
				t.Errorf("unexpected error type %T: %v", res.err, res.err)
			}
			if res.err.Error() != tt.msg {
				t.Errorf("error = %q, want %q", res.err.Error(), tt.msg)
			}
		})
	}
}

func TestConsoleOutput(t *testing.T) {
	res := run(t, stmts(
		Log(Str("plain"), Num(1), Bool(true)),
		Log(Str("%s is %d years"), Str("Tom"), Num(42)),
		Log(Obj(Prop("a", Num(1)), Prop("b", Arr(Str("x"))))),
		Log(NewExpr(Ident("TypeError"), Str("bad"))),
	))
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	want := []string{
		"plain 1 true",
		"Tom is 42 years",
		"{ a: 1, b: [ 'x' ] }",
		"TypeError: bad",
	}
	if diff := cmp.Diff(want, res.out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}
