package yamlhost

import (
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/sirkon/trylower/internal/tir"
)

// env maps names visible at a point of a body to their types.
type env struct {
	parent *env
	names  map[string]tir.Type
}

func (e *env) child() *env {
	return &env{parent: e, names: map[string]tir.Type{}}
}

func (e *env) bind(name string, typ tir.Type) {
	e.names[name] = typ
}

func (e *env) lookup(name string) tir.Type {
	for cur := e; cur != nil; cur = cur.parent {
		if typ, ok := cur.names[name]; ok {
			return typ
		}
	}

	return tir.NoType
}

func (p *parser) function(n *yaml.Node) (*tir.Func, error) {
	fields, err := p.fields(n, "name", "ok", "err", "params", "body")
	if err != nil {
		return nil, err
	}

	fn := &tir.Func{Span: p.span(n)}
	nameNode, ok := fields["name"]
	if !ok {
		return nil, p.errorf(n, "function without a name")
	}
	if fn.Name, err = p.scalar(nameNode, "function name"); err != nil {
		return nil, err
	}

	errNode, ok := fields["err"]
	if !ok {
		return nil, p.errorf(n, "function %s: err type is required", fn.Name)
	}
	errType, err := p.scalar(errNode, "err type")
	if err != nil {
		return nil, err
	}
	fn.Err = tir.Type(errType)

	fn.Ok = tir.Unit
	if okNode, has := fields["ok"]; has {
		okType, err := p.scalar(okNode, "ok type")
		if err != nil {
			return nil, err
		}
		fn.Ok = tir.Type(okType)
	}

	scope := &env{names: map[string]tir.Type{}}
	if params, has := fields["params"]; has {
		var decl map[string]string
		if err := params.Decode(&decl); err != nil {
			return nil, p.errorf(params, "function %s params: %s", fn.Name, err)
		}
		for name, typ := range decl {
			scope.bind(name, tir.Type(typ))
		}
	}

	bodyNode, has := fields["body"]
	if !has {
		fn.Body = &tir.Block{Span: fn.Span}
		return fn, nil
	}
	if fn.Body, err = p.block(bodyNode, scope, false); err != nil {
		return nil, err
	}

	return fn, nil
}

// block parses a statement list. Statements of a try scope are annotated
// differently: a fallible call bound there has its success type.
func (p *parser) block(n *yaml.Node, outer *env, tryScope bool) (*tir.Block, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, p.errorf(n, "statement list expected")
	}

	scope := outer.child()
	res := &tir.Block{
		Span:  p.span(n),
		Stmts: make([]tir.Stmt, 0, len(n.Content)),
	}
	for _, item := range n.Content {
		s, err := p.stmt(item, scope, tryScope)
		if err != nil {
			return nil, err
		}
		res.Stmts = append(res.Stmts, s)
	}

	return res, nil
}

func (p *parser) optBlock(fields map[string]*yaml.Node, key string, outer *env, tryScope bool) (*tir.Block, error) {
	n, ok := fields[key]
	if !ok {
		return nil, nil
	}

	return p.block(n, outer, tryScope)
}

func (p *parser) stmt(n *yaml.Node, scope *env, tryScope bool) (tir.Stmt, error) {
	fields, err := p.fields(n, "let", "value", "expr", "throw", "block", "if", "then", "else", "try")
	if err != nil {
		return nil, err
	}
	span := p.span(n)

	switch {
	case fields["let"] != nil:
		if err := p.only(n, fields, "let", "value"); err != nil {
			return nil, err
		}
		name, err := p.scalar(fields["let"], "let name")
		if err != nil {
			return nil, err
		}
		valueNode, ok := fields["value"]
		if !ok {
			return nil, p.errorf(n, "let %s without a value", name)
		}
		value, err := p.expr(valueNode, scope)
		if err != nil {
			return nil, err
		}
		scope.bind(name, p.bindingType(value, tryScope))
		return &tir.Let{Span: span, Name: name, Value: value}, nil

	case fields["expr"] != nil:
		if err := p.only(n, fields, "expr"); err != nil {
			return nil, err
		}
		x, err := p.expr(fields["expr"], scope)
		if err != nil {
			return nil, err
		}
		return &tir.ExprStmt{Span: span, X: x}, nil

	case fields["throw"] != nil:
		if err := p.only(n, fields, "throw"); err != nil {
			return nil, err
		}
		value, err := p.expr(fields["throw"], scope)
		if err != nil {
			return nil, err
		}
		return &tir.Throw{Span: span, Value: value}, nil

	case fields["block"] != nil:
		if err := p.only(n, fields, "block"); err != nil {
			return nil, err
		}
		body, err := p.block(fields["block"], scope, false)
		if err != nil {
			return nil, err
		}
		return &tir.BlockStmt{Span: span, Body: body}, nil

	case fields["if"] != nil:
		if err := p.only(n, fields, "if", "then", "else"); err != nil {
			return nil, err
		}
		cond, err := p.expr(fields["if"], scope)
		if err != nil {
			return nil, err
		}
		if fields["then"] == nil {
			return nil, p.errorf(n, "if without then")
		}
		then, err := p.block(fields["then"], scope, false)
		if err != nil {
			return nil, err
		}
		els, err := p.optBlock(fields, "else", scope, false)
		if err != nil {
			return nil, err
		}
		return &tir.If{Span: span, Cond: cond, Then: then, Else: els}, nil

	case fields["try"] != nil:
		if err := p.only(n, fields, "try"); err != nil {
			return nil, err
		}
		tc, err := p.try(fields["try"], scope)
		if err != nil {
			return nil, err
		}
		return &tir.ExprStmt{Span: span, X: tc}, nil

	default:
		return nil, p.errorf(n, "unknown statement")
	}
}

// only checks that a statement mapping holds no keys of other statement
// kinds.
func (p *parser) only(n *yaml.Node, fields map[string]*yaml.Node, keys ...string) error {
	for key := range fields {
		if !slices.Contains(keys, key) {
			return p.errorf(n, "%s cannot be used with %s", key, keys[0])
		}
	}

	return nil
}

// bindingType returns the type a let binds its name to.
func (p *parser) bindingType(value tir.Expr, tryScope bool) tir.Type {
	if tryScope {
		if ok, _, fallible := p.types.FailureOf(value); fallible {
			return ok
		}
	}

	return p.types.TypeOf(value)
}

func (p *parser) expr(n *yaml.Node, scope *env) (tir.Expr, error) {
	if n.Kind == yaml.ScalarNode {
		return p.ident(n, n.Value, scope), nil
	}

	fields, err := p.fields(n, "ident", "lit", "type", "call", "args", "try")
	if err != nil {
		return nil, err
	}

	switch {
	case fields["ident"] != nil:
		if err := p.only(n, fields, "ident"); err != nil {
			return nil, err
		}
		name, err := p.scalar(fields["ident"], "identifier")
		if err != nil {
			return nil, err
		}
		return p.ident(n, name, scope), nil

	case fields["lit"] != nil:
		if err := p.only(n, fields, "lit", "type"); err != nil {
			return nil, err
		}
		value, err := p.scalar(fields["lit"], "literal")
		if err != nil {
			return nil, err
		}
		lit := &tir.Lit{Span: p.span(n), Value: value}
		if typeNode, ok := fields["type"]; ok {
			typ, err := p.scalar(typeNode, "literal type")
			if err != nil {
				return nil, err
			}
			lit.Type = tir.Type(typ)
		}
		return lit, nil

	case fields["call"] != nil:
		if err := p.only(n, fields, "call", "args"); err != nil {
			return nil, err
		}
		name, err := p.scalar(fields["call"], "function name")
		if err != nil {
			return nil, err
		}
		call := &tir.Call{Span: p.span(n), Fun: name}
		if argsNode, ok := fields["args"]; ok {
			if argsNode.Kind != yaml.SequenceNode {
				return nil, p.errorf(argsNode, "args must be a list")
			}
			for _, a := range argsNode.Content {
				arg, err := p.expr(a, scope)
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, arg)
			}
		}
		return call, nil

	case fields["try"] != nil:
		if err := p.only(n, fields, "try"); err != nil {
			return nil, err
		}
		return p.try(fields["try"], scope)

	default:
		return nil, p.errorf(n, "unknown expression")
	}
}

func (p *parser) ident(n *yaml.Node, name string, scope *env) *tir.Ident {
	res := &tir.Ident{Span: p.span(n), Name: name}
	if typ := scope.lookup(name); typ.Known() {
		p.types.SetType(res, typ)
	}

	return res
}

func (p *parser) try(n *yaml.Node, scope *env) (*tir.TryCatch, error) {
	fields, err := p.fields(n, "type", "do", "catch")
	if err != nil {
		return nil, err
	}

	tc := &tir.TryCatch{Span: p.span(n), Success: tir.Unit}
	if typeNode, ok := fields["type"]; ok {
		typ, err := p.scalar(typeNode, "try type")
		if err != nil {
			return nil, err
		}
		tc.Success = tir.Type(typ)
	}

	if doNode, ok := fields["do"]; ok {
		if tc.Try, err = p.block(doNode, scope, true); err != nil {
			return nil, err
		}
	} else {
		tc.Try = &tir.Block{Span: tc.Span}
	}

	catchNode, ok := fields["catch"]
	if !ok {
		return tc, nil
	}
	if catchNode.Kind != yaml.SequenceNode {
		return nil, p.errorf(catchNode, "catch must be a list")
	}
	for _, c := range catchNode.Content {
		clause, err := p.catch(c, scope)
		if err != nil {
			return nil, err
		}
		tc.Catches = append(tc.Catches, clause)
	}

	return tc, nil
}

func (p *parser) catch(n *yaml.Node, outer *env) (*tir.CatchClause, error) {
	fields, err := p.fields(n, "error", "as", "do")
	if err != nil {
		return nil, err
	}

	errNode, ok := fields["error"]
	if !ok {
		return nil, p.errorf(n, "catch clause without an error type")
	}
	pattern, err := p.scalar(errNode, "error type")
	if err != nil {
		return nil, err
	}

	clause := &tir.CatchClause{
		Span:    p.span(n),
		Pattern: tir.Type(pattern),
	}

	scope := outer.child()
	if asNode, ok := fields["as"]; ok {
		if clause.Binding, err = p.scalar(asNode, "binding"); err != nil {
			return nil, err
		}
		scope.bind(clause.Binding, clause.Pattern)
	}

	if doNode, ok := fields["do"]; ok {
		if clause.Body, err = p.block(doNode, scope, false); err != nil {
			return nil, err
		}
	} else {
		clause.Body = &tir.Block{Span: clause.Span}
	}

	return clause, nil
}
