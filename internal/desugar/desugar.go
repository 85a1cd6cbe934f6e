// Package desugar rewrites a validated try/catch construct into a
// continuation chain built from binds, result matches and early returns.
//
// For statements S_0..S_n of a try scope the chain is built front to back:
//
//   - a plain S_i binds its value and continues with S_{i+1};
//   - a fallible S_i producing E matches on its result: the Ok arm binds the
//     value and continues, the Err arm runs the clause registered for E and
//     its outcome is the outcome of the whole construct;
//   - the empty remainder evaluates to the last bound value.
//
// Calls hoisted out of a statement are chained the same way right before it,
// and the statement refers to their temporaries.
//
// Only the handler matching the first failing statement ever runs, and the
// statements after it are never reached.
package desugar

import (
	"fmt"

	"github.com/sirkon/trylower/internal/flow"
	"github.com/sirkon/trylower/internal/handlers"
	"github.com/sirkon/trylower/internal/tir"
)

// Mode selects how a construct hands over its outcome.
type Mode int

const (
	_ Mode = iota

	// Direct constructs evaluate to their success value, a throw terminates
	// the enclosing function with the thrown error.
	Direct

	// Result constructs evaluate to Ok(value) or Err(thrown). They are used
	// when the construct is itself a fallible statement of an enclosing try
	// scope, so the enclosing chain dispatches the failure.
	Result
)

func (m Mode) String() string {
	switch m {
	case Direct:
		return "direct"
	case Result:
		return "result"
	default:
		return fmt.Sprintf("mode-invalid(%d)", m)
	}
}

// Lowerer is what the chain needs from the surrounding pass.
type Lowerer interface {
	// Expr returns the lowered form of an expression of the construct. Nested
	// constructs in it are already lowered when the chain is built.
	Expr(x tir.Expr) tir.Expr

	// Fresh returns a new temporary name unique within the function.
	Fresh() string
}

// Construct emits the lowered form of the annotated construct. The table
// must cover every fallible statement of ann.
func Construct(ann *flow.Annotated, table *handlers.Table, mode Mode, lw Lowerer) tir.Expr {
	c := &chain{
		ann:   ann,
		table: table,
		mode:  mode,
		lw:    lw,
		temps: map[tir.Expr]string{},
	}

	return c.steps(0, nil)
}

// ResultOf returns the outcome type of a lowered construct: it either
// succeeds with the construct's success type or fails with the function's
// error type.
func ResultOf(tc *tir.TryCatch, outer tir.Type) tir.Type {
	return tir.ResultType(tc.Success, outer)
}

type chain struct {
	ann   *flow.Annotated
	table *handlers.Table
	mode  Mode
	lw    Lowerer

	// temps maps hoisted sites to the temporaries holding their values.
	temps map[tir.Expr]string
}

func (c *chain) steps(i int, last tir.Expr) tir.Expr {
	if i == len(c.ann.Steps) {
		if last == nil {
			last = unit(c.ann.Construct.Try.Span)
		}
		return wrap(c.mode, last)
	}

	return c.sites(i, 0)
}

// sites chains the hoisted sites of step i starting from the j-th one, then
// the step itself.
func (c *chain) sites(i, j int) tir.Expr {
	s := c.ann.Steps[i]
	if j == len(s.Sites) {
		return c.step(i)
	}

	site := s.Sites[j]
	value := c.value(site.Expr)
	name := c.lw.Fresh()
	c.temps[site.Expr] = name

	return c.link(spanOf(site.Expr), name, value, site.Kind, site.Err, func() tir.Expr {
		return c.sites(i, j+1)
	})
}

func (c *chain) step(i int) tir.Expr {
	s := c.ann.Steps[i]
	span := spanOf(s.Stmt)

	name := s.Name
	if name == "" {
		name = c.lw.Fresh()
	}

	var value tir.Expr
	if s.Value != nil {
		value = c.value(s.Value)
	} else {
		value = c.compound(s.Stmt, Direct)
	}
	ref := &tir.Ident{Span: span, Name: name}

	return c.link(span, name, value, s.Kind, s.Err, func() tir.Expr {
		return c.steps(i+1, ref)
	})
}

// link binds value to name and continues with rest. A fallible value is
// matched and its failure goes to the clause registered for errType.
func (c *chain) link(span tir.Span, name string, value tir.Expr, kind flow.Kind, errType tir.Type, rest func() tir.Expr) tir.Expr {
	if kind != flow.Fallible {
		return &tir.Bind{
			Span:  span,
			Name:  name,
			Value: value,
			Body:  rest(),
		}
	}

	clause, ok := c.table.Lookup(errType)
	if !ok {
		panic(fmt.Errorf("desugar: no clause for %s in a validated construct", errType))
	}

	return &tir.Match{
		Span:    span,
		Subject: value,
		OkName:  name,
		OnOk:    rest(),
		ErrName: binding(clause),
		OnErr:   c.block(clause.Body, c.mode),
	}
}

// value lowers an expression of the try scope, hoisted sites are replaced
// with their temporaries.
func (c *chain) value(x tir.Expr) tir.Expr {
	if name, ok := c.temps[x]; ok {
		return &tir.Ident{Span: spanOf(x), Name: name}
	}

	call, ok := x.(*tir.Call)
	if !ok || !c.hoists(call) {
		return c.lw.Expr(x)
	}

	args := make([]tir.Expr, len(call.Args))
	for i, arg := range call.Args {
		args[i] = c.value(arg)
	}

	return &tir.Call{Span: call.Span, Fun: call.Fun, Args: args}
}

func (c *chain) hoists(call *tir.Call) bool {
	for _, arg := range call.Args {
		if _, ok := c.temps[arg]; ok {
			return true
		}
		if v, ok := arg.(*tir.Call); ok && c.hoists(v) {
			return true
		}
	}

	return false
}

// block lowers a statement list into a single expression.
func (c *chain) block(b *tir.Block, mode Mode) tir.Expr {
	if b == nil {
		return wrap(mode, unit(tir.Span{}))
	}

	return c.stmts(b.Span, b.Stmts, mode)
}

func (c *chain) stmts(span tir.Span, stmts []tir.Stmt, mode Mode) tir.Expr {
	if len(stmts) == 0 {
		return wrap(mode, unit(span))
	}

	rest := stmts[1:]
	last := len(rest) == 0
	restSpan := span
	if !last {
		restSpan = tir.Span{From: rest[0].Pos(), To: span.To}
	}

	switch v := stmts[0].(type) {
	case *tir.Throw:
		return c.throw(v, mode)

	case *tir.Let:
		value := c.lw.Expr(v.Value)
		var body tir.Expr
		if last {
			body = wrap(mode, &tir.Ident{Span: v.Span, Name: v.Name})
		} else {
			body = c.stmts(restSpan, rest, mode)
		}
		return &tir.Bind{Span: v.Span, Name: v.Name, Value: value, Body: body}

	case *tir.ExprStmt:
		value := c.lw.Expr(v.X)
		if last {
			return wrap(mode, value)
		}
		return &tir.Bind{Span: v.Span, Name: c.lw.Fresh(), Value: value, Body: c.stmts(restSpan, rest, mode)}

	case *tir.BlockStmt, *tir.If:
		if last {
			return c.compound(v, mode)
		}
		if mode == Direct || !throws(v) {
			return &tir.Bind{
				Span:  spanOf(v),
				Name:  c.lw.Fresh(),
				Value: c.compound(v, Direct),
				Body:  c.stmts(restSpan, rest, mode),
			}
		}

		// A throw inside must skip the rest of the block, so the compound is
		// lowered as a result and its failure is forwarded.
		name := c.lw.Fresh()
		errName := c.lw.Fresh()
		return &tir.Match{
			Span:    spanOf(v),
			Subject: c.compound(v, Result),
			OkName:  name,
			OnOk:    c.stmts(restSpan, rest, mode),
			ErrName: errName,
			OnErr:   &tir.ErrValue{Span: spanOf(v), X: &tir.Ident{Span: spanOf(v), Name: errName}},
		}

	default:
		panic(fmt.Errorf("desugar: unhandled statement %T", v))
	}
}

func (c *chain) compound(s tir.Stmt, mode Mode) tir.Expr {
	switch v := s.(type) {
	case *tir.BlockStmt:
		return c.block(v.Body, mode)
	case *tir.If:
		var elseExpr tir.Expr
		if v.Else != nil {
			elseExpr = c.block(v.Else, mode)
		} else {
			elseExpr = wrap(mode, unit(v.Span))
		}
		return &tir.Cond{
			Span: v.Span,
			Cond: c.value(v.Cond),
			Then: c.block(v.Then, mode),
			Else: elseExpr,
		}
	case *tir.Throw:
		return c.throw(v, mode)
	default:
		panic(fmt.Errorf("desugar: %T is not a compound statement", s))
	}
}

func (c *chain) throw(th *tir.Throw, mode Mode) tir.Expr {
	failure := &tir.ErrValue{Span: th.Span, X: c.lw.Expr(th.Value)}
	if mode == Result {
		return failure
	}

	return &tir.Return{Span: th.Span, Value: failure}
}

func wrap(mode Mode, x tir.Expr) tir.Expr {
	if mode == Result {
		return &tir.OkValue{Span: tir.Span{From: x.Pos(), To: x.End()}, X: x}
	}

	return x
}

func unit(span tir.Span) tir.Expr {
	return &tir.Lit{Span: span, Value: "()", Type: tir.Unit}
}

func binding(c *tir.CatchClause) string {
	if c.Binding == "" {
		return "_"
	}

	return c.Binding
}

func throws(s tir.Stmt) bool {
	return len(tir.ThrowsOf(&tir.Block{Stmts: []tir.Stmt{s}})) > 0
}

func spanOf(n tir.Node) tir.Span {
	return tir.Span{From: n.Pos(), To: n.End()}
}
