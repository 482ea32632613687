package ast_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/funvibe/jswalk/internal/ast"
	. "github.com/funvibe/jswalk/internal/ast/asttest"
)

const letAndAdd = `{
  "type": "Program",
  "sourceType": "script",
  "body": [
    {"type": "VariableDeclaration", "kind": "let", "declarations": [
      {"type": "VariableDeclarator",
       "id": {"type": "Identifier", "name": "x"},
       "init": {"type": "Literal", "value": 1, "raw": "1"}}
    ]},
    {"type": "ExpressionStatement", "expression":
      {"type": "AssignmentExpression", "operator": "=",
       "left": {"type": "Identifier", "name": "x"},
       "right": {"type": "BinaryExpression", "operator": "+",
         "left": {"type": "Identifier", "name": "x"},
         "right": {"type": "Literal", "value": 2, "raw": "2"}}}}
  ]
}`

func letAndAddTree() *ast.Program {
	one, two := Num(1), Num(2)
	one.Raw, two.Raw = "1", "2"
	return Program(
		Let("x", one),
		Expr(Assign("=", Ident("x"), Bin("+", Ident("x"), two))),
	)
}

func TestLoadJSON(t *testing.T) {
	prog, err := ast.LoadJSON([]byte(letAndAdd))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if diff := cmp.Diff(letAndAddTree(), prog); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	src := `
type: Program
sourceType: script
body:
  - type: VariableDeclaration
    kind: let
    declarations:
      - type: VariableDeclarator
        id: {type: Identifier, name: x}
        init: {type: Literal, value: 1, raw: "1"}
  - type: ExpressionStatement
    expression:
      type: AssignmentExpression
      operator: "="
      left: {type: Identifier, name: x}
      right:
        type: BinaryExpression
        operator: "+"
        left: {type: Identifier, name: x}
        right: {type: Literal, value: 2, raw: "2"}
`
	prog, err := ast.LoadYAML([]byte(src))
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if diff := cmp.Diff(letAndAddTree(), prog); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestFromStruct(t *testing.T) {
	var m map[string]any
	if err := json.Unmarshal([]byte(letAndAdd), &m); err != nil {
		t.Fatal(err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	prog, err := ast.FromStruct(s)
	if err != nil {
		t.Fatalf("FromStruct: %v", err)
	}
	if diff := cmp.Diff(letAndAddTree(), prog); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeUnknownKinds(t *testing.T) {
	src := `{"type": "Program", "body": [
	  {"type": "ClassDeclaration", "start": 0, "end": 12},
	  {"type": "ExpressionStatement", "expression":
	    {"type": "ObjectExpression", "properties": [
	      {"type": "SpreadElement", "start": 3, "end": 7}]}},
	  {"type": "ExpressionStatement", "expression":
	    {"type": "Literal", "value": null, "raw": "1n", "bigint": "1"}}
	]}`
	prog, err := ast.LoadJSON([]byte(src))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	tests := []struct {
		got  ast.Node
		kind string
		loc  ast.Loc
	}{
		{prog.Body[0], "ClassDeclaration", ast.Loc{Start: 0, End: 12}},
		{prog.Body[1].(*ast.ExpressionStatement).Expression, "SpreadElement", ast.Loc{Start: 3, End: 7}},
		{prog.Body[2].(*ast.ExpressionStatement).Expression, "BigIntLiteral", ast.Loc{}},
	}
	for _, tt := range tests {
		u, ok := tt.got.(*ast.Unknown)
		if !ok {
			t.Errorf("expected *ast.Unknown for %s, got %T", tt.kind, tt.got)
			continue
		}
		if u.Kind() != tt.kind || u.Location() != tt.loc {
			t.Errorf("got %s at %v, want %s at %v", u.Kind(), u.Location(), tt.kind, tt.loc)
		}
	}
}

func TestDecodeFunctions(t *testing.T) {
	src := `{"type": "Program", "body": [
	  {"type": "ExpressionStatement", "expression":
	    {"type": "ArrowFunctionExpression", "async": true, "params": [{"type": "Identifier", "name": "a"}],
	     "body": {"type": "Identifier", "name": "a"}}},
	  {"type": "FunctionDeclaration", "generator": true, "id": {"type": "Identifier", "name": "g"},
	   "params": [], "body": {"type": "BlockStatement", "body": []}}
	]}`
	prog, err := ast.LoadJSON([]byte(src))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	arrow, ok := prog.Body[0].(*ast.ExpressionStatement).Expression.(*ast.ArrowFunctionExpression)
	if !ok {
		t.Fatalf("expected arrow, got %T", prog.Body[0].(*ast.ExpressionStatement).Expression)
	}
	if !arrow.Async || !arrow.IsExpression || len(arrow.Params) != 1 {
		t.Errorf("unexpected arrow shape: %+v", arrow.Function)
	}
	gen, ok := prog.Body[1].(*ast.FunctionDeclaration)
	if !ok || !gen.Generator || gen.ID.Name != "g" {
		t.Errorf("unexpected generator declaration: %#v", prog.Body[1])
	}
}

func TestDecodeErrors(t *testing.T) {
	stmt := func(src string) string { return `{"type": "Program", "body": [` + src + `]}` }
	expr := func(src string) string { return stmt(`{"type": "ExpressionStatement", "expression": ` + src + `}`) }

	tests := []struct {
		name string
		src  string
		path string
	}{
		{"not a program", `{"type": "BlockStatement", "body": []}`, "$"},
		{"body not a list", `{"type": "Program", "body": {}}`, "$.body"},
		{"missing type", `{"type": "Program", "body": [{"name": "x"}]}`, "$.body[0]"},
		{"expression in statement slot", `{"type": "Program", "body": [{"type": "Identifier", "name": "x"}]}`, "$.body[0]"},
		{"statement without expression", stmt(`{"type": "ExpressionStatement"}`), "$.body[0].expression"},
		{"member without object", expr(`{"type": "MemberExpression", "property": {"type": "Identifier", "name": "p"}}`), "$.body[0].expression.object"},
		{"member without property", expr(`{"type": "MemberExpression", "object": {"type": "Identifier", "name": "o"}}`), "$.body[0].expression.property"},
		{"assignment without left", expr(`{"type": "AssignmentExpression", "operator": "=", "right": {"type": "Literal", "value": 1}}`), "$.body[0].expression.left"},
		{"assignment without right", expr(`{"type": "AssignmentExpression", "operator": "=", "left": {"type": "Identifier", "name": "x"}}`), "$.body[0].expression.right"},
		{"call without callee", expr(`{"type": "CallExpression", "arguments": []}`), "$.body[0].expression.callee"},
		{"new without callee", expr(`{"type": "NewExpression", "arguments": []}`), "$.body[0].expression.callee"},
		{"unary without argument", expr(`{"type": "UnaryExpression", "operator": "!", "prefix": true}`), "$.body[0].expression.argument"},
		{"update without argument", expr(`{"type": "UpdateExpression", "operator": "++", "prefix": true}`), "$.body[0].expression.argument"},
		{"binary without right", expr(`{"type": "BinaryExpression", "operator": "+", "left": {"type": "Literal", "value": 1}}`), "$.body[0].expression.right"},
		{"logical without left", expr(`{"type": "LogicalExpression", "operator": "&&", "right": {"type": "Literal", "value": 1}}`), "$.body[0].expression.left"},
		{"conditional without alternate", expr(`{"type": "ConditionalExpression", "test": {"type": "Literal", "value": true}, "consequent": {"type": "Literal", "value": 1}}`), "$.body[0].expression.alternate"},
		{"await without argument", expr(`{"type": "AwaitExpression"}`), "$.body[0].expression.argument"},
		{"property without value", expr(`{"type": "ObjectExpression", "properties": [{"type": "Property", "key": {"type": "Identifier", "name": "a"}}]}`), "$.body[0].expression.properties[0].value"},
		{"if without test", stmt(`{"type": "IfStatement", "consequent": {"type": "EmptyStatement"}}`), "$.body[0].test"},
		{"if without consequent", stmt(`{"type": "IfStatement", "test": {"type": "Literal", "value": true}}`), "$.body[0].consequent"},
		{"while without body", stmt(`{"type": "WhileStatement", "test": {"type": "Literal", "value": false}}`), "$.body[0].body"},
		{"do-while without test", stmt(`{"type": "DoWhileStatement", "body": {"type": "EmptyStatement"}}`), "$.body[0].test"},
		{"for without body", stmt(`{"type": "ForStatement"}`), "$.body[0].body"},
		{"switch without discriminant", stmt(`{"type": "SwitchStatement", "cases": []}`), "$.body[0].discriminant"},
		{"throw without argument", stmt(`{"type": "ThrowStatement"}`), "$.body[0].argument"},
		{"try without block", stmt(`{"type": "TryStatement", "finalizer": {"type": "BlockStatement", "body": []}}`), "$.body[0].block"},
		{"catch without body", stmt(`{"type": "TryStatement", "block": {"type": "BlockStatement", "body": []}, "handler": {"type": "CatchClause"}}`), "$.body[0].handler.body"},
		{"declarator without id", stmt(`{"type": "VariableDeclaration", "kind": "let", "declarations": [{"type": "VariableDeclarator"}]}`), "$.body[0].declarations[0].id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ast.LoadJSON([]byte(tt.src))
			var de *ast.DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected DecodeError, got %v", err)
			}
			if de.Path != tt.path {
				t.Errorf("path = %q, want %q", de.Path, tt.path)
			}
		})
	}
}
