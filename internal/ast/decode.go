package ast

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

// DecodeError reports a tree that is not shaped like an ESTree document.
type DecodeError struct {
	Path string
	Msg  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Path, e.Msg)
}

// LoadJSON decodes an ESTree document serialized as JSON.
func LoadJSON(data []byte) (*Program, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse json tree: %w", err)
	}
	return Decode(root)
}

// LoadYAML decodes an ESTree document serialized as YAML.
func LoadYAML(data []byte) (*Program, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse yaml tree: %w", err)
	}
	return Decode(root)
}

// FromStruct decodes a tree carried in a protobuf Struct.
func FromStruct(s *structpb.Struct) (*Program, error) {
	if s == nil {
		return nil, &DecodeError{Path: "$", Msg: "empty tree"}
	}
	return Decode(s.AsMap())
}

// Decode converts a generic map representation of a Program into typed
// nodes. Node kinds outside the supported subset become *Unknown so that
// evaluation, not decoding, reports them.
func Decode(root map[string]any) (*Program, error) {
	if root == nil {
		return nil, &DecodeError{Path: "$", Msg: "empty tree"}
	}
	if typ, _ := root["type"].(string); typ != "Program" {
		return nil, &DecodeError{Path: "$", Msg: fmt.Sprintf("expected Program, got %q", typ)}
	}
	d := &decoder{}
	body, err := d.stmts(root["body"], "$.body")
	if err != nil {
		return nil, err
	}
	sourceType, _ := root["sourceType"].(string)
	return &Program{Loc: loc(root), SourceType: sourceType, Body: body}, nil
}

type decoder struct{}

func (d *decoder) node(v any, path string) (Node, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &DecodeError{Path: path, Msg: fmt.Sprintf("expected node, got %T", v)}
	}
	typ, _ := m["type"].(string)
	if typ == "" {
		return nil, &DecodeError{Path: path, Msg: "missing node type"}
	}
	l := loc(m)

	switch typ {
	case "ExpressionStatement":
		expr, err := d.requiredExpr(m, "expression", path)
		if err != nil {
			return nil, err
		}
		dir, _ := m["directive"].(string)
		return &ExpressionStatement{Loc: l, Expression: expr, Directive: dir}, nil

	case "EmptyStatement":
		return &EmptyStatement{Loc: l}, nil

	case "BlockStatement":
		body, err := d.stmts(m["body"], path+".body")
		if err != nil {
			return nil, err
		}
		return &BlockStatement{Loc: l, Body: body}, nil

	case "VariableDeclaration":
		kind, _ := m["kind"].(string)
		list, err := d.list(m["declarations"], path+".declarations")
		if err != nil {
			return nil, err
		}
		decl := &VariableDeclaration{Loc: l, DeclKind: kind}
		for i, item := range list {
			p := fmt.Sprintf("%s.declarations[%d]", path, i)
			dm, ok := item.(map[string]any)
			if !ok {
				return nil, &DecodeError{Path: p, Msg: "expected VariableDeclarator"}
			}
			id, err := d.requiredNode(dm, "id", p)
			if err != nil {
				return nil, err
			}
			init, err := d.expr(dm["init"], p+".init")
			if err != nil {
				return nil, err
			}
			decl.Declarations = append(decl.Declarations, &VariableDeclarator{Loc: loc(dm), ID: id, Init: init})
		}
		return decl, nil

	case "FunctionDeclaration", "FunctionExpression", "ArrowFunctionExpression":
		fn, err := d.function(m, path)
		if err != nil {
			return nil, err
		}
		fn.Loc = l
		switch typ {
		case "FunctionDeclaration":
			return &FunctionDeclaration{Function: *fn}, nil
		case "FunctionExpression":
			return &FunctionExpression{Function: *fn}, nil
		}
		return &ArrowFunctionExpression{Function: *fn}, nil

	case "ReturnStatement":
		arg, err := d.expr(m["argument"], path+".argument")
		if err != nil {
			return nil, err
		}
		return &ReturnStatement{Loc: l, Argument: arg}, nil

	case "IfStatement":
		test, err := d.requiredExpr(m, "test", path)
		if err != nil {
			return nil, err
		}
		cons, err := d.requiredStmt(m, "consequent", path)
		if err != nil {
			return nil, err
		}
		alt, err := d.stmt(m["alternate"], path+".alternate")
		if err != nil {
			return nil, err
		}
		return &IfStatement{Loc: l, Test: test, Consequent: cons, Alternate: alt}, nil

	case "SwitchStatement":
		disc, err := d.requiredExpr(m, "discriminant", path)
		if err != nil {
			return nil, err
		}
		list, err := d.list(m["cases"], path+".cases")
		if err != nil {
			return nil, err
		}
		sw := &SwitchStatement{Loc: l, Discriminant: disc}
		for i, item := range list {
			p := fmt.Sprintf("%s.cases[%d]", path, i)
			cm, ok := item.(map[string]any)
			if !ok {
				return nil, &DecodeError{Path: p, Msg: "expected SwitchCase"}
			}
			test, err := d.expr(cm["test"], p+".test")
			if err != nil {
				return nil, err
			}
			body, err := d.stmts(cm["consequent"], p+".consequent")
			if err != nil {
				return nil, err
			}
			sw.Cases = append(sw.Cases, &SwitchCase{Loc: loc(cm), Test: test, Consequent: body})
		}
		return sw, nil

	case "WhileStatement", "DoWhileStatement":
		test, err := d.requiredExpr(m, "test", path)
		if err != nil {
			return nil, err
		}
		body, err := d.requiredStmt(m, "body", path)
		if err != nil {
			return nil, err
		}
		if typ == "WhileStatement" {
			return &WhileStatement{Loc: l, Test: test, Body: body}, nil
		}
		return &DoWhileStatement{Loc: l, Body: body, Test: test}, nil

	case "ForStatement":
		init, err := d.node(m["init"], path+".init")
		if err != nil {
			return nil, err
		}
		test, err := d.expr(m["test"], path+".test")
		if err != nil {
			return nil, err
		}
		update, err := d.expr(m["update"], path+".update")
		if err != nil {
			return nil, err
		}
		body, err := d.requiredStmt(m, "body", path)
		if err != nil {
			return nil, err
		}
		return &ForStatement{Loc: l, Init: init, Test: test, Update: update, Body: body}, nil

	case "BreakStatement", "ContinueStatement":
		label, err := d.ident(m["label"], path+".label")
		if err != nil {
			return nil, err
		}
		if typ == "BreakStatement" {
			return &BreakStatement{Loc: l, Label: label}, nil
		}
		return &ContinueStatement{Loc: l, Label: label}, nil

	case "ThrowStatement":
		arg, err := d.requiredExpr(m, "argument", path)
		if err != nil {
			return nil, err
		}
		return &ThrowStatement{Loc: l, Argument: arg}, nil

	case "TryStatement":
		if m["block"] == nil {
			return nil, missing(path, "block")
		}
		block, err := d.block(m["block"], path+".block")
		if err != nil {
			return nil, err
		}
		final, err := d.block(m["finalizer"], path+".finalizer")
		if err != nil {
			return nil, err
		}
		try := &TryStatement{Loc: l, Block: block, Finalizer: final}
		if hm, ok := m["handler"].(map[string]any); ok {
			param, err := d.node(hm["param"], path+".handler.param")
			if err != nil {
				return nil, err
			}
			if hm["body"] == nil {
				return nil, missing(path+".handler", "body")
			}
			body, err := d.block(hm["body"], path+".handler.body")
			if err != nil {
				return nil, err
			}
			try.Handler = &CatchClause{Loc: loc(hm), Param: param, Body: body}
		}
		return try, nil

	case "Identifier":
		name, _ := m["name"].(string)
		return &Identifier{Loc: l, Name: name}, nil

	case "Literal":
		lit := &Literal{Loc: l}
		lit.Raw, _ = m["raw"].(string)
		if rm, ok := m["regex"].(map[string]any); ok {
			lit.Regex = &RegexLiteral{}
			lit.Regex.Pattern, _ = rm["pattern"].(string)
			lit.Regex.Flags, _ = rm["flags"].(string)
			return lit, nil
		}
		if _, ok := m["bigint"]; ok {
			return &Unknown{Loc: l, Type: "BigIntLiteral"}, nil
		}
		switch val := m["value"].(type) {
		case nil, bool, string:
			lit.Value = val
		default:
			n, ok := number(val)
			if !ok {
				return nil, &DecodeError{Path: path + ".value", Msg: fmt.Sprintf("unexpected literal %T", val)}
			}
			lit.Value = n
		}
		return lit, nil

	case "ThisExpression":
		return &ThisExpression{Loc: l}, nil

	case "ArrayExpression":
		elems, err := d.exprs(m["elements"], path+".elements")
		if err != nil {
			return nil, err
		}
		return &ArrayExpression{Loc: l, Elements: elems}, nil

	case "ObjectExpression":
		list, err := d.list(m["properties"], path+".properties")
		if err != nil {
			return nil, err
		}
		obj := &ObjectExpression{Loc: l}
		for i, item := range list {
			p := fmt.Sprintf("%s.properties[%d]", path, i)
			pm, ok := item.(map[string]any)
			if !ok {
				return nil, &DecodeError{Path: p, Msg: "expected Property"}
			}
			if pt, _ := pm["type"].(string); pt != "Property" {
				return &Unknown{Loc: loc(pm), Type: pt}, nil
			}
			prop, err := d.property(pm, p)
			if err != nil {
				return nil, err
			}
			obj.Properties = append(obj.Properties, prop)
		}
		return obj, nil

	case "TemplateLiteral":
		exprs, err := d.exprs(m["expressions"], path+".expressions")
		if err != nil {
			return nil, err
		}
		list, err := d.list(m["quasis"], path+".quasis")
		if err != nil {
			return nil, err
		}
		tl := &TemplateLiteral{Loc: l, Expressions: exprs}
		for i, item := range list {
			qm, ok := item.(map[string]any)
			if !ok {
				return nil, &DecodeError{Path: fmt.Sprintf("%s.quasis[%d]", path, i), Msg: "expected TemplateElement"}
			}
			el := &TemplateElement{Loc: loc(qm)}
			el.Tail, _ = qm["tail"].(bool)
			if vm, ok := qm["value"].(map[string]any); ok {
				el.Cooked, _ = vm["cooked"].(string)
				el.Raw, _ = vm["raw"].(string)
			}
			tl.Quasis = append(tl.Quasis, el)
		}
		return tl, nil

	case "UnaryExpression", "UpdateExpression":
		op, _ := m["operator"].(string)
		prefix, _ := m["prefix"].(bool)
		arg, err := d.requiredExpr(m, "argument", path)
		if err != nil {
			return nil, err
		}
		if typ == "UnaryExpression" {
			return &UnaryExpression{Loc: l, Operator: op, Prefix: prefix, Argument: arg}, nil
		}
		return &UpdateExpression{Loc: l, Operator: op, Prefix: prefix, Argument: arg}, nil

	case "BinaryExpression", "LogicalExpression":
		op, _ := m["operator"].(string)
		left, err := d.requiredExpr(m, "left", path)
		if err != nil {
			return nil, err
		}
		right, err := d.requiredExpr(m, "right", path)
		if err != nil {
			return nil, err
		}
		if typ == "BinaryExpression" {
			return &BinaryExpression{Loc: l, Operator: op, Left: left, Right: right}, nil
		}
		return &LogicalExpression{Loc: l, Operator: op, Left: left, Right: right}, nil

	case "AssignmentExpression":
		op, _ := m["operator"].(string)
		left, err := d.requiredNode(m, "left", path)
		if err != nil {
			return nil, err
		}
		right, err := d.requiredExpr(m, "right", path)
		if err != nil {
			return nil, err
		}
		return &AssignmentExpression{Loc: l, Operator: op, Left: left, Right: right}, nil

	case "ConditionalExpression":
		test, err := d.requiredExpr(m, "test", path)
		if err != nil {
			return nil, err
		}
		cons, err := d.requiredExpr(m, "consequent", path)
		if err != nil {
			return nil, err
		}
		alt, err := d.requiredExpr(m, "alternate", path)
		if err != nil {
			return nil, err
		}
		return &ConditionalExpression{Loc: l, Test: test, Consequent: cons, Alternate: alt}, nil

	case "MemberExpression":
		if opt, _ := m["optional"].(bool); opt {
			return &Unknown{Loc: l, Type: "OptionalMemberExpression"}, nil
		}
		obj, err := d.requiredExpr(m, "object", path)
		if err != nil {
			return nil, err
		}
		prop, err := d.requiredExpr(m, "property", path)
		if err != nil {
			return nil, err
		}
		computed, _ := m["computed"].(bool)
		return &MemberExpression{Loc: l, Object: obj, Property: prop, Computed: computed}, nil

	case "CallExpression", "NewExpression":
		if opt, _ := m["optional"].(bool); opt {
			return &Unknown{Loc: l, Type: "OptionalCallExpression"}, nil
		}
		callee, err := d.requiredExpr(m, "callee", path)
		if err != nil {
			return nil, err
		}
		args, err := d.exprs(m["arguments"], path+".arguments")
		if err != nil {
			return nil, err
		}
		if typ == "CallExpression" {
			return &CallExpression{Loc: l, Callee: callee, Arguments: args}, nil
		}
		return &NewExpression{Loc: l, Callee: callee, Arguments: args}, nil

	case "SequenceExpression":
		exprs, err := d.exprs(m["expressions"], path+".expressions")
		if err != nil {
			return nil, err
		}
		return &SequenceExpression{Loc: l, Expressions: exprs}, nil

	case "AwaitExpression":
		arg, err := d.requiredExpr(m, "argument", path)
		if err != nil {
			return nil, err
		}
		return &AwaitExpression{Loc: l, Argument: arg}, nil

	case "YieldExpression":
		arg, err := d.expr(m["argument"], path+".argument")
		if err != nil {
			return nil, err
		}
		delegate, _ := m["delegate"].(bool)
		return &YieldExpression{Loc: l, Argument: arg, Delegate: delegate}, nil
	}

	return &Unknown{Loc: l, Type: typ}, nil
}

func (d *decoder) function(m map[string]any, path string) (*Function, error) {
	id, err := d.ident(m["id"], path+".id")
	if err != nil {
		return nil, err
	}
	list, err := d.list(m["params"], path+".params")
	if err != nil {
		return nil, err
	}
	fn := &Function{ID: id}
	fn.Generator, _ = m["generator"].(bool)
	fn.Async, _ = m["async"].(bool)
	for i, item := range list {
		p, err := d.node(item, fmt.Sprintf("%s.params[%d]", path, i))
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, p)
	}
	body, err := d.node(m["body"], path+".body")
	if err != nil {
		return nil, err
	}
	switch b := body.(type) {
	case *BlockStatement:
		fn.Body = b
	case Expression:
		fn.Body = b
		fn.IsExpression = true
	default:
		return nil, &DecodeError{Path: path + ".body", Msg: "missing function body"}
	}
	return fn, nil
}

func (d *decoder) property(m map[string]any, path string) (*Property, error) {
	key, err := d.requiredExpr(m, "key", path)
	if err != nil {
		return nil, err
	}
	val, err := d.requiredExpr(m, "value", path)
	if err != nil {
		return nil, err
	}
	prop := &Property{Loc: loc(m), Key: key, Value: val}
	prop.PropKind, _ = m["kind"].(string)
	if prop.PropKind == "" {
		prop.PropKind = PropInit
	}
	prop.Computed, _ = m["computed"].(bool)
	prop.Method, _ = m["method"].(bool)
	prop.Shorthand, _ = m["shorthand"].(bool)
	return prop, nil
}

// requiredExpr, requiredStmt and requiredNode decode a child that the
// evaluator cannot do without.
func (d *decoder) requiredExpr(m map[string]any, field, path string) (Expression, error) {
	if m[field] == nil {
		return nil, missing(path, field)
	}
	return d.expr(m[field], path+"."+field)
}

func (d *decoder) requiredStmt(m map[string]any, field, path string) (Statement, error) {
	if m[field] == nil {
		return nil, missing(path, field)
	}
	return d.stmt(m[field], path+"."+field)
}

func (d *decoder) requiredNode(m map[string]any, field, path string) (Node, error) {
	if m[field] == nil {
		return nil, missing(path, field)
	}
	return d.node(m[field], path+"."+field)
}

func missing(path, field string) *DecodeError {
	return &DecodeError{Path: path + "." + field, Msg: "missing " + field}
}

func (d *decoder) stmt(v any, path string) (Statement, error) {
	n, err := d.node(v, path)
	if err != nil || n == nil {
		return nil, err
	}
	s, ok := n.(Statement)
	if !ok {
		return nil, &DecodeError{Path: path, Msg: n.Kind() + " is not a statement"}
	}
	return s, nil
}

func (d *decoder) expr(v any, path string) (Expression, error) {
	n, err := d.node(v, path)
	if err != nil || n == nil {
		return nil, err
	}
	e, ok := n.(Expression)
	if !ok {
		return nil, &DecodeError{Path: path, Msg: n.Kind() + " is not an expression"}
	}
	return e, nil
}

func (d *decoder) block(v any, path string) (*BlockStatement, error) {
	n, err := d.node(v, path)
	if err != nil || n == nil {
		return nil, err
	}
	b, ok := n.(*BlockStatement)
	if !ok {
		return nil, &DecodeError{Path: path, Msg: "expected BlockStatement, got " + n.Kind()}
	}
	return b, nil
}

func (d *decoder) ident(v any, path string) (*Identifier, error) {
	n, err := d.node(v, path)
	if err != nil || n == nil {
		return nil, err
	}
	id, ok := n.(*Identifier)
	if !ok {
		return nil, &DecodeError{Path: path, Msg: "expected Identifier, got " + n.Kind()}
	}
	return id, nil
}

func (d *decoder) stmts(v any, path string) ([]Statement, error) {
	list, err := d.list(v, path)
	if err != nil {
		return nil, err
	}
	out := make([]Statement, 0, len(list))
	for i, item := range list {
		s, err := d.stmt(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, &DecodeError{Path: fmt.Sprintf("%s[%d]", path, i), Msg: "null statement"}
		}
		out = append(out, s)
	}
	return out, nil
}

// exprs keeps nil entries; array holes decode to nil.
func (d *decoder) exprs(v any, path string) ([]Expression, error) {
	list, err := d.list(v, path)
	if err != nil {
		return nil, err
	}
	out := make([]Expression, 0, len(list))
	for i, item := range list {
		e, err := d.expr(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *decoder) list(v any, path string) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &DecodeError{Path: path, Msg: fmt.Sprintf("expected list, got %T", v)}
	}
	return list, nil
}

func loc(m map[string]any) Loc {
	start, _ := number(m["start"])
	end, _ := number(m["end"])
	return Loc{Start: int(start), End: int(end)}
}

// number normalizes the numeric types produced by the JSON, YAML and
// protobuf decoders.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	return 0, false
}
