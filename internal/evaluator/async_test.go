package evaluator

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	. "github.com/funvibe/jswalk/internal/ast/asttest"
)

func TestAsyncOrdering(t *testing.T) {
	res := run(t, stmts(
		AsyncFunc("g", nil, Log(Str("middle"))),
		AsyncFunc("f", nil,
			Log(Str("start")),
			Expr(Await(Call(Ident("g")))),
			Log(Str("end")),
		),
		Expr(Call(Ident("f"))),
		Log(Str("out")),
	))
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	want := []string{"start", "middle", "out", "end"}
	if diff := cmp.Diff(want, res.out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestAwaitPlainValueDefersContinuation(t *testing.T) {
	res := run(t, stmts(
		AsyncFunc("f", nil,
			Const("v", Await(Num(7))),
			Log(Str("got"), Ident("v")),
		),
		Expr(Call(Ident("f"))),
		Expr(Call(Ident("queueMicrotask"), ArrowExpr(nil, Call(Path("console", "log"), Str("task"))))),
		Log(Str("sync")),
	))
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	want := []string{"sync", "got 7", "task"}
	if diff := cmp.Diff(want, res.out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestAsyncResultAndRejection(t *testing.T) {
	res := run(t, stmts(
		AsyncFunc("ok", []string{"x"}, Return(Bin("*", Ident("x"), Num(2)))),
		AsyncFunc("fail", nil, Throw(NewExpr(Ident("Error"), Str("nope")))),
		Const("later", AsyncFuncExpr("later", nil, Return(Str("later")))),
		AsyncFunc("main", nil,
			Log(Str("ok"), Await(Call(Ident("ok"), Num(21)))),
			Log(Await(Call(Ident("later")))),
			Try(
				Block(Expr(Await(Call(Ident("fail"))))),
				"e", Block(Log(Str("caught"), Path("e", "message"))),
				nil,
			),
		),
		Expr(Call(Ident("main"))),
	))
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	want := []string{"ok 42", "later", "caught nope"}
	if diff := cmp.Diff(want, res.out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestPromiseChaining(t *testing.T) {
	res := run(t, stmts(
		Const("p", NewExpr(Ident("Promise"), Arrow([]string{"resolve"},
			Expr(Call(Ident("setTimeout"), ArrowExpr(nil, Call(Ident("resolve"), Num(1))), Num(10))),
		))),
		Expr(Call(Member(
			Call(Member(Ident("p"), "then"), ArrowExpr([]string{"v"}, Bin("+", Ident("v"), Num(1)))),
			"then"),
			ArrowExpr([]string{"v"}, Call(Path("console", "log"), Str("then"), Ident("v"))),
		)),
		Expr(Call(Member(
			Call(Path("Promise", "reject"), NewExpr(Ident("Error"), Str("x"))),
			"catch"),
			ArrowExpr([]string{"e"}, Call(Path("console", "log"), Str("catch"), Path("e", "message"))),
		)),
		Log(Str("sync")),
	))
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	want := []string{"sync", "catch x", "then 2"}
	if diff := cmp.Diff(want, res.out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestTimersRunAfterMicrotasks(t *testing.T) {
	res := run(t, stmts(
		Expr(Call(Ident("setTimeout"), ArrowExpr(nil, Call(Path("console", "log"), Str("t20"))), Num(20))),
		Expr(Call(Ident("setTimeout"), ArrowExpr(nil, Call(Path("console", "log"), Str("t10"))), Num(10))),
		Expr(Call(Ident("queueMicrotask"), ArrowExpr(nil, Call(Path("console", "log"), Str("micro"))))),
		Log(Str("sync")),
	))
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	want := []string{"sync", "micro", "t10", "t20"}
	if diff := cmp.Diff(want, res.out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestGeneratorProtocol(t *testing.T) {
	res := run(t, stmts(
		Let("runs", Num(0)),
		GenFunc("g", nil,
			Expr(Update("++", false, Ident("runs"))),
			Const("x", Yield(Num(1))),
			Expr(Yield(Bin("+", Ident("x"), Num(1)))),
			Return(Str("done")),
		),
		Const("it", Call(Ident("g"))),
		Const("before", Ident("runs")),
		Const("a", Call(Member(Ident("it"), "next"))),
		Const("b", Call(Member(Ident("it"), "next"), Num(5))),
		Const("c", Call(Member(Ident("it"), "next"))),
		Const("d", Call(Member(Ident("it"), "next"))),
		Export(Arr(
			Ident("before"),
			Member(Ident("a"), "value"),
			Member(Ident("b"), "value"),
			Ident("c"),
			Ident("d"),
			Ident("runs"),
		)),
	))
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	want := "[ 0, 1, 6, { value: 'done', done: true }, { value: undefined, done: true }, 1 ]"
	if got := inspect(res.exports); got != want {
		t.Errorf("exports = %s\nwant      %s", got, want)
	}
}

func TestGeneratorErrorFinishesIt(t *testing.T) {
	res := run(t, stmts(
		GenFunc("g", nil, Throw(Str("bad"))),
		Const("it", Call(Ident("g"))),
		Let("r", Str("")),
		Try(
			Block(Expr(Call(Member(Ident("it"), "next")))),
			"e", Block(Expr(Assign("=", Ident("r"), Ident("e")))),
			nil,
		),
		Export(Arr(Ident("r"), Call(Member(Ident("it"), "next")))),
	))
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	want := "[ 'bad', { value: undefined, done: true } ]"
	if got := inspect(res.exports); got != want {
		t.Errorf("exports = %s, want %s", got, want)
	}
}

func TestCloseStopsSuspendedCoroutines(t *testing.T) {
	e := New(WithWriter(&bytes.Buffer{}))
	exports, err := e.RunProgram(Program(
		GenFunc("g", nil, Expr(Yield(Num(1))), Expr(Yield(Num(2)))),
		Const("it", Call(Ident("g"))),
		Expr(Call(Member(Ident("it"), "next"))),
		Export(Ident("it")),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := exports.(*Generator); !ok {
		t.Fatalf("exports = %s, want a generator", inspect(exports))
	}
	if len(e.coroutines) != 1 {
		t.Fatalf("suspended coroutines = %d, want 1", len(e.coroutines))
	}
	e.Close()
	if len(e.coroutines) != 0 {
		t.Errorf("coroutines left after Close: %d", len(e.coroutines))
	}
}

func TestHostCallDoesNotDrain(t *testing.T) {
	var out bytes.Buffer
	e := New(WithWriter(&out))
	defer e.Close()
	exports, err := e.RunProgram(Program(
		Export(AsyncArrow(nil,
			Log(Str("before")),
			Expr(Await(NullLit())),
			Log(Str("after")),
		)),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := e.CallFunction(exports)
	if err != nil {
		t.Fatalf("CallFunction: %v", err)
	}
	if diff := cmp.Diff([]string{"before"}, lines(out.String())); diff != "" {
		t.Errorf("before Settle (-want +got):\n%s", diff)
	}
	if err := e.Settle(); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if diff := cmp.Diff([]string{"before", "after"}, lines(out.String())); diff != "" {
		t.Errorf("after Settle (-want +got):\n%s", diff)
	}
	if got := p.(*Promise).State; got != PromiseFulfilled {
		t.Errorf("promise state = %s, want fulfilled", got)
	}
}

func TestFailedProgramDropsQueuedWork(t *testing.T) {
	var out bytes.Buffer
	e := New(WithWriter(&out))
	defer e.Close()

	_, err := e.RunProgram(Program(
		GenFunc("g", nil, Expr(Yield(Num(1))), Expr(Yield(Num(2)))),
		Const("it", Call(Ident("g"))),
		Expr(Call(Member(Ident("it"), "next"))),
		Expr(Call(Ident("setTimeout"), ArrowExpr(nil, Call(Path("console", "log"), Str("stale timer"))), Num(0))),
		Expr(Call(Ident("queueMicrotask"), ArrowExpr(nil, Call(Path("console", "log"), Str("stale task"))))),
		Throw(NewExpr(Ident("Error"), Str("first run fails"))),
	))
	if err == nil {
		t.Fatal("expected the first program to fail")
	}
	if n := e.Loop.Pending(); n != 0 {
		t.Errorf("pending after failure = %d, want 0", n)
	}
	if n := len(e.coroutines); n != 0 {
		t.Errorf("coroutines after failure = %d, want 0", n)
	}

	if _, err := e.RunProgram(Program(Log(Str("second run")))); err != nil {
		t.Fatalf("second program: %v", err)
	}
	if diff := cmp.Diff([]string{"second run"}, lines(out.String())); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestFailedProgramKeepsEarlierCoroutines(t *testing.T) {
	e := New(WithWriter(&bytes.Buffer{}))
	defer e.Close()

	exports, err := e.RunProgram(Program(
		GenFunc("g", nil, Expr(Yield(Num(1))), Expr(Yield(Num(2)))),
		Const("it", Call(Ident("g"))),
		Expr(Call(Member(Ident("it"), "next"))),
		Export(Ident("it")),
	))
	if err != nil {
		t.Fatalf("first program: %v", err)
	}
	if _, err := e.RunProgram(Program(Throw(Str("boom")))); err == nil {
		t.Fatal("expected the second program to fail")
	}
	if len(e.coroutines) != 1 {
		t.Fatalf("coroutines = %d, want the first program's generator", len(e.coroutines))
	}
	res, err := e.GeneratorNext(exports.(*Generator), Undefined)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if got := inspect(res); got != "{ value: 2, done: false }" {
		t.Errorf("resumed = %s, want { value: 2, done: false }", got)
	}
}
