// Package flow annotates the statements of a try scope with the error type
// each of them can fail with.
package flow

import (
	"fmt"
	"go/token"

	"github.com/sirkon/trylower/internal/report"
	"github.com/sirkon/trylower/internal/tir"
	"github.com/sirkon/trylower/internal/tryrules"
)

// Types answers the single question the analyzer asks the host: can this
// expression fail, and with what.
type Types interface {
	// FailureOf returns the success and error types of a result-producing
	// expression. fallible is false for plain expressions. A fallible
	// expression with an unknown error type returns tir.NoType as err.
	FailureOf(x tir.Expr) (ok, err tir.Type, fallible bool)
}

// Kind tells whether a statement can fail.
type Kind int

const (
	_ Kind = iota
	Plain
	Fallible
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Fallible:
		return "fallible"
	default:
		return fmt.Sprintf("kind-invalid(%d)", k)
	}
}

// Step is an annotated try scope statement.
type Step struct {
	Stmt tir.Stmt

	// Name is the name a Let binds, empty for other statements.
	Name string

	// Value is the expression a Let or an expression statement evaluates.
	// It is nil for compound statements.
	Value tir.Expr

	Kind Kind

	// Err is the error type of a fallible statement.
	Err tir.Type

	// Ok is the success type of a fallible statement.
	Ok tir.Type

	// Sites are subexpressions of Value (or of the condition of an if) that
	// are evaluated ahead of the statement, in evaluation order.
	Sites []Site
}

// Site is a subexpression hoisted out of a statement. Fallible call
// arguments are sites, so are the plain calls evaluated before them.
type Site struct {
	Expr tir.Expr
	Kind Kind
	Err  tir.Type
	Ok   tir.Type
}

// Annotated is the result of the analysis of one construct.
type Annotated struct {
	Construct *tir.TryCatch
	Steps     []Step
}

// Required returns distinct error types produced by the try scope, in the
// order of their first occurrence.
func (a *Annotated) Required() []tir.Type {
	var res []tir.Type
	seen := map[tir.Type]bool{}
	a.failures(func(_ tir.Node, errType tir.Type) bool {
		if !seen[errType] {
			seen[errType] = true
			res = append(res, errType)
		}
		return true
	})

	return res
}

// Producer returns the first statement or hoisted call failing with the
// given error type.
func (a *Annotated) Producer(errType tir.Type) (tir.Node, bool) {
	var res tir.Node
	a.failures(func(n tir.Node, e tir.Type) bool {
		if e != errType {
			return true
		}
		res = n
		return false
	})

	return res, res != nil
}

// failures visits failure points in evaluation order until f returns false.
func (a *Annotated) failures(f func(n tir.Node, errType tir.Type) bool) {
	for _, s := range a.Steps {
		for _, site := range s.Sites {
			if site.Kind == Fallible && !f(site.Expr, site.Err) {
				return
			}
		}
		if s.Kind == Fallible && !f(s.Stmt, s.Err) {
			return
		}
	}
}

// Analyze annotates the try scope of tc. outer is the enclosing function's
// error type, it is what a nested construct fails with when one of its
// handlers throws.
//
// Fallible calls nested in arguments of a statement, or in the condition of
// an if, are hoisted into sites of the statement. A fallible call inside a
// branch or a nested block cannot be dispatched by the chain and is
// reported.
//
// It returns false if some fallible statement or site has no static error
// type, or a branch holds a fallible call. All statements are still
// annotated in this case, so every such site gets its own diagnostic.
func Analyze(tc *tir.TryCatch, outer tir.Type, types Types, rp *report.Phased) (*Annotated, bool) {
	a := &analyzer{
		outer: outer,
		types: types,
		rp:    rp,
		ok:    true,
	}
	res := &Annotated{Construct: tc}

	for _, stmt := range tc.Try.Stmts {
		step := Step{
			Stmt: stmt,
			Kind: Plain,
		}

		switch v := stmt.(type) {
		case *tir.Let:
			step.Name = v.Name
			step.Value = v.Value
		case *tir.ExprStmt:
			step.Value = v.X
		case *tir.If:
			step.Sites = a.sites(v.Cond, false)
			a.branch(v.Then)
			a.branch(v.Else)
			res.Steps = append(res.Steps, step)
			continue
		case *tir.BlockStmt:
			a.branch(v.Body)
			res.Steps = append(res.Steps, step)
			continue
		case *tir.Throw:
			// Throws are validated by the scope checker.
			res.Steps = append(res.Steps, step)
			continue
		default:
			panic(fmt.Errorf("flow: unhandled statement %T", stmt))
		}

		step.Sites = a.sites(step.Value, true)
		step.Kind, step.Ok, step.Err = a.failure(step.Value)
		if step.Kind == Fallible && !step.Err.Known() {
			a.unresolved(stmt.Pos())
		}

		res.Steps = append(res.Steps, step)
	}

	return res, a.ok
}

type analyzer struct {
	outer tir.Type
	types Types
	rp    *report.Phased
	ok    bool
}

// failure tells how x can fail on its own, nested arguments aside.
func (a *analyzer) failure(x tir.Expr) (kind Kind, ok, err tir.Type) {
	if nested, isTry := x.(*tir.TryCatch); isTry {
		if nested.CanThrow() {
			return Fallible, nested.Success, a.outer
		}
		return Plain, tir.NoType, tir.NoType
	}

	ok, err, fallible := a.types.FailureOf(x)
	if !fallible {
		return Plain, tir.NoType, tir.NoType
	}

	return Fallible, ok, err
}

func (a *analyzer) unresolved(pos token.Pos) {
	a.rp.Report(tryrules.UnresolvedErrorType(), pos)
	a.ok = false
}

// sites collects hoisted subexpressions of x. The root itself becomes a site
// only when it is not the statement's own value. A call argument evaluated
// before a fallible one is hoisted as well, so hoisting never reorders
// evaluation.
func (a *analyzer) sites(x tir.Expr, root bool) []Site {
	var res []Site

	switch v := x.(type) {
	case *tir.Call:
		args := make([][]Site, len(v.Args))
		lastFallible := -1
		for i, arg := range v.Args {
			args[i] = a.sites(arg, false)
			if hasFallible(args[i]) {
				lastFallible = i
			}
		}

		for i, arg := range v.Args {
			res = append(res, args[i]...)
			if i >= lastFallible || hoisted(args[i], arg) {
				continue
			}
			switch arg.(type) {
			case *tir.Call, *tir.TryCatch:
				res = append(res, Site{Expr: arg, Kind: Plain})
			}
		}
	case *tir.TryCatch:
		// Sites of a nested construct belong to its own chain.
	default:
		return nil
	}

	if root {
		return res
	}

	kind, ok, err := a.failure(x)
	if kind != Fallible {
		return res
	}
	if !err.Known() {
		a.unresolved(x.Pos())
	}

	return append(res, Site{
		Expr: x,
		Kind: Fallible,
		Err:  err,
		Ok:   ok,
	})
}

// branch reports fallible calls and throwing constructs inside a block that
// the chain cannot reach.
func (a *analyzer) branch(b *tir.Block) {
	if b == nil {
		return
	}

	tir.Inspect(b, func(n tir.Node) bool {
		x, isExpr := n.(tir.Expr)
		if !isExpr {
			return true
		}

		kind, _, err := a.failure(x)
		if kind == Fallible {
			a.rp.Report(tryrules.FallibleInBranch(), x.Pos(), err.String())
			a.ok = false
		}

		_, isTry := x.(*tir.TryCatch)
		return !isTry
	})
}

func hasFallible(sites []Site) bool {
	for _, s := range sites {
		if s.Kind == Fallible {
			return true
		}
	}

	return false
}

func hoisted(sites []Site, x tir.Expr) bool {
	return len(sites) > 0 && sites[len(sites)-1].Expr == x
}

// Chained returns nested constructs of tc whose failure continues the chain
// of tc: throwing constructs standing as statement values, as call arguments
// of such values, or in the condition of an if. They must be lowered into
// result values.
func Chained(tc *tir.TryCatch) []*tir.TryCatch {
	var res []*tir.TryCatch
	var walk func(x tir.Expr)
	walk = func(x tir.Expr) {
		switch v := x.(type) {
		case *tir.TryCatch:
			if v.CanThrow() {
				res = append(res, v)
			}
		case *tir.Call:
			for _, arg := range v.Args {
				walk(arg)
			}
		}
	}

	for _, stmt := range tc.Try.Stmts {
		switch v := stmt.(type) {
		case *tir.Let:
			walk(v.Value)
		case *tir.ExprStmt:
			walk(v.X)
		case *tir.If:
			walk(v.Cond)
		}
	}

	return res
}
