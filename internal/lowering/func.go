package lowering

import (
	"fmt"
	"go/token"
	"log/slog"

	"github.com/sirkon/trylower/internal/desugar"
	"github.com/sirkon/trylower/internal/flow"
	"github.com/sirkon/trylower/internal/handlers"
	"github.com/sirkon/trylower/internal/report"
	"github.com/sirkon/trylower/internal/scope"
	"github.com/sirkon/trylower/internal/tir"
)

// funcLowerer holds per function state. It is never shared between workers.
type funcLowerer struct {
	e     *Engine
	fn    *tir.Func
	batch *report.Batch

	done  map[*tir.TryCatch]tir.Expr
	stray map[*tir.Throw]struct{}
	temps int
}

func newFuncLowerer(e *Engine, fn *tir.Func, batch *report.Batch) *funcLowerer {
	return &funcLowerer{
		e:     e,
		fn:    fn,
		batch: batch,
		done:  map[*tir.TryCatch]tir.Expr{},
		stray: map[*tir.Throw]struct{}{},
	}
}

func (l *funcLowerer) run() *tir.Func {
	for _, th := range scope.Stray(l.fn.Body, l.batch.Phase(report.PhaseScope)) {
		l.stray[th] = struct{}{}
	}

	return &tir.Func{
		Span: l.fn.Span,
		Name: l.fn.Name,
		Ok:   l.fn.Ok,
		Err:  l.fn.Err,
		Body: l.block(l.fn.Body),
	}
}

// Fresh returns a new temporary name unique within the function.
func (l *funcLowerer) Fresh() string {
	name := fmt.Sprintf("$t%d", l.temps)
	l.temps++
	return name
}

// Expr rewrites an expression outside of any chain. Constructs are replaced
// with their lowered form.
func (l *funcLowerer) Expr(x tir.Expr) tir.Expr {
	switch v := x.(type) {
	case nil:
		return nil
	case *tir.TryCatch:
		if res, ok := l.done[v]; ok {
			return res
		}
		return l.construct(v, desugar.Direct)
	case *tir.Call:
		res := &tir.Call{
			Span: v.Span,
			Fun:  v.Fun,
			Args: make([]tir.Expr, len(v.Args)),
		}
		for i, a := range v.Args {
			res.Args[i] = l.Expr(a)
		}
		return res
	case *tir.Ident:
		res := *v
		return &res
	case *tir.Lit:
		res := *v
		return &res
	case *tir.Invalid:
		res := *v
		return &res
	default:
		panic(fmt.Errorf("lower expression: unhandled node %T", x))
	}
}

// block rewrites statements at the function level, outside of constructs.
func (l *funcLowerer) block(b *tir.Block) *tir.Block {
	if b == nil {
		return nil
	}

	res := &tir.Block{
		Span:  b.Span,
		Stmts: make([]tir.Stmt, len(b.Stmts)),
	}
	for i, s := range b.Stmts {
		res.Stmts[i] = l.stmt(s)
	}

	return res
}

func (l *funcLowerer) stmt(s tir.Stmt) tir.Stmt {
	switch v := s.(type) {
	case *tir.Let:
		return &tir.Let{
			Span:  v.Span,
			Name:  v.Name,
			Value: l.Expr(v.Value),
		}
	case *tir.ExprStmt:
		return &tir.ExprStmt{
			Span: v.Span,
			X:    l.Expr(v.X),
		}
	case *tir.If:
		return &tir.If{
			Span: v.Span,
			Cond: l.Expr(v.Cond),
			Then: l.block(v.Then),
			Else: l.block(v.Else),
		}
	case *tir.BlockStmt:
		return &tir.BlockStmt{
			Span: v.Span,
			Body: l.block(v.Body),
		}
	case *tir.Throw:
		if _, ok := l.stray[v]; !ok {
			panic(fmt.Errorf("lower statement: throw at %d was not checked", v.Pos()))
		}
		return &tir.ExprStmt{
			Span: v.Span,
			X: &tir.Invalid{
				Span:   v.Span,
				Reason: "throw outside of a catch clause",
			},
		}
	default:
		panic(fmt.Errorf("lower statement: unhandled node %T", s))
	}
}

// construct lowers nested constructs of tc first, then tc itself.
func (l *funcLowerer) construct(tc *tir.TryCatch, mode desugar.Mode) tir.Expr {
	l.nested(tc)

	before := l.batch.Fatals()
	ann, flowOK := flow.Analyze(tc, l.fn.Err, l.e.types, l.batch.Phase(report.PhaseFlow))
	table, _ := handlers.Build(tc.Catches, l.batch.Phase(report.PhaseTable))
	if flowOK {
		// Coverage over a partially resolved chain would only repeat the
		// unresolved type diagnostics.
		handlers.CheckExhaustive(ann, table, l.e.unreachable, l.batch.Phase(report.PhaseCover))
	}
	scope.Validate(ann, l.fn.Err, l.e.types, l.batch.Phase(report.PhaseScope))

	if rejected := l.batch.Fatals() - before; rejected > 0 {
		l.e.log.Debug(
			"construct rejected",
			slog.String("func", l.fn.Name),
			l.at(tc.Pos()),
			slog.Int("fatal", rejected),
		)
		res := &tir.Invalid{
			Span:   tc.Span,
			Reason: "try/catch rejected",
		}
		l.done[tc] = res
		return res
	}

	res := desugar.Construct(ann, table, mode, l)
	l.done[tc] = res
	l.e.log.Debug(
		"construct lowered",
		slog.String("func", l.fn.Name),
		l.at(tc.Pos()),
		slog.String("mode", mode.String()),
		slog.Int("handlers", table.Len()),
	)

	return res
}

// nested lowers constructs found inside tc. A throwing construct whose
// failure continues the chain of tc is lowered into a result value, any other
// one stands on its own.
func (l *funcLowerer) nested(tc *tir.TryCatch) {
	chained := map[*tir.TryCatch]bool{}
	for _, inner := range flow.Chained(tc) {
		chained[inner] = true
	}

	lower := func(n tir.Node) {
		tir.Inspect(n, func(n tir.Node) bool {
			inner, ok := n.(*tir.TryCatch)
			if !ok {
				return true
			}

			mode := desugar.Direct
			if chained[inner] {
				mode = desugar.Result
			}
			l.construct(inner, mode)
			return false
		})
	}

	lower(tc.Try)
	for _, c := range tc.Catches {
		lower(c.Body)
	}
}

// at is the log attribute for a source position. It is empty without a file
// set.
func (l *funcLowerer) at(pos token.Pos) slog.Attr {
	if l.e.fset == nil {
		return slog.Attr{}
	}

	return slog.String("pos", l.e.fset.Position(pos).String())
}
