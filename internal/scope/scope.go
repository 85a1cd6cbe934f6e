// Package scope validates where throws may appear and what types catch
// clauses evaluate to.
//
// Every try/catch construct owns two kinds of regions: its try scope, where
// throws are illegal, and its clause bodies, where throws raise the enclosing
// function's error. Nested constructs own their regions, they never inherit
// the outer ones.
package scope

import (
	"go/token"

	"github.com/sirkon/trylower/internal/flow"
	"github.com/sirkon/trylower/internal/report"
	"github.com/sirkon/trylower/internal/tir"
	"github.com/sirkon/trylower/internal/tryrules"
)

// Types is the part of the host type system the validator relies on.
type Types interface {
	// TypeOf returns the static type of the expression or tir.NoType.
	TypeOf(x tir.Expr) tir.Type

	// Assignable reports whether a value of type from can be used where to
	// is expected.
	Assignable(from, to tir.Type) bool
}

// Validate checks throws and value types of the construct annotated by ann.
// outer is the enclosing function's error type. It returns false if any
// diagnostic was reported.
func Validate(ann *flow.Annotated, outer tir.Type, types Types, rp *report.Phased) bool {
	tc := ann.Construct
	ok := true

	for _, th := range tir.ThrowsOf(tc.Try) {
		rp.Report(tryrules.InvalidThrowContext(), th.Pos())
		ok = false
	}

	for _, c := range tc.Catches {
		for _, th := range tir.ThrowsOf(c.Body) {
			found := types.TypeOf(th.Value)
			if !found.Known() || found == outer {
				continue
			}

			rp.Report(tryrules.ThrowTypeMismatch(), th.Pos(), string(outer), string(found))
			ok = false
		}

		for _, term := range terminals(c.Body, types) {
			if !term.typ.Known() || types.Assignable(term.typ, tc.Success) {
				continue
			}

			rp.Report(tryrules.HandlerReturnMismatch(), term.pos, string(tc.Success), string(term.typ))
			ok = false
		}
	}

	for _, term := range tryTerminals(ann, types) {
		if !term.typ.Known() || types.Assignable(term.typ, tc.Success) {
			continue
		}

		rp.Report(tryrules.TryResultMismatch(), term.pos, string(tc.Success), string(term.typ))
		ok = false
	}

	return ok
}

// Stray reports throws of block that are outside of any catch clause, like
// throws placed directly in a function body, and returns them.
func Stray(block *tir.Block, rp *report.Phased) []*tir.Throw {
	res := tir.ThrowsOf(block)
	for _, th := range res {
		rp.Report(tryrules.InvalidThrowContext(), th.Pos())
	}

	return res
}

type terminal struct {
	typ tir.Type
	pos token.Pos
}

// tryTerminals returns the value of the last evaluated statement of the try
// scope. A fallible statement contributes its success type.
func tryTerminals(ann *flow.Annotated, types Types) []terminal {
	if n := len(ann.Steps); n > 0 {
		last := ann.Steps[n-1]
		if last.Kind == flow.Fallible {
			return []terminal{{typ: last.Ok, pos: last.Stmt.Pos()}}
		}
	}

	return terminals(ann.Construct.Try, types)
}

// terminals lists values a block can evaluate to. Throwing paths produce no
// value and are skipped.
func terminals(b *tir.Block, types Types) []terminal {
	if b == nil || len(b.Stmts) == 0 {
		var pos token.Pos
		if b != nil {
			pos = b.Pos()
		}
		return []terminal{{typ: tir.Unit, pos: pos}}
	}

	switch v := b.Stmts[len(b.Stmts)-1].(type) {
	case *tir.Let:
		return []terminal{{typ: typeOf(v.Value, types), pos: v.Pos()}}
	case *tir.ExprStmt:
		return []terminal{{typ: typeOf(v.X, types), pos: v.Pos()}}
	case *tir.Throw:
		return nil
	case *tir.BlockStmt:
		return terminals(v.Body, types)
	case *tir.If:
		res := terminals(v.Then, types)
		if v.Else == nil {
			return append(res, terminal{typ: tir.Unit, pos: v.Pos()})
		}
		return append(res, terminals(v.Else, types)...)
	default:
		return nil
	}
}

func typeOf(x tir.Expr, types Types) tir.Type {
	if tc, ok := x.(*tir.TryCatch); ok {
		return tc.Success
	}

	return types.TypeOf(x)
}
