package lowering

import (
	"fmt"
	"go/token"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sirkon/trylower/internal/flow"
	"github.com/sirkon/trylower/internal/report"
	"github.com/sirkon/trylower/internal/scope"
	"github.com/sirkon/trylower/internal/tir"
	"github.com/sirkon/trylower/internal/tryrules"
)

// Types is the host type system as seen by the whole pipeline.
type Types interface {
	flow.Types
	scope.Types
}

// Engine lowers functions against one snapshot of host types.
type Engine struct {
	types       Types
	unreachable tryrules.Severity
	workers     int
	log         *slog.Logger
	fset        *token.FileSet
}

// Option configures an [Engine].
type Option func(*Engine)

// WithUnreachable sets the severity of unreachable handler diagnostics.
func WithUnreachable(sev tryrules.Severity) Option {
	return func(e *Engine) {
		e.unreachable = sev
	}
}

// WithWorkers bounds the number of functions lowered at once. Zero or less
// means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithLogger sets the logger for pass tracing.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithFileSet resolves positions in trace logs.
func WithFileSet(fset *token.FileSet) Option {
	return func(e *Engine) {
		e.fset = fset
	}
}

// New is [Engine] constructor.
func New(types Types, opts ...Option) *Engine {
	e := &Engine{
		types:       types,
		unreachable: tryrules.UnreachableHandler().Severity(),
		log:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}

	return e
}

// Output is the result of lowering a set of functions.
type Output struct {
	// Funcs are the lowered functions, in input order.
	Funcs []*tir.Func

	// Reports holds diagnostics of all functions, grouped by function in
	// input order.
	Reports *report.Engine
}

// Failed reports whether any construct was rejected.
func (o *Output) Failed() bool {
	return o.Reports.Failed()
}

// LowerFunc lowers every construct of fn and returns the rewritten function.
// fn itself is left untouched.
func (e *Engine) LowerFunc(fn *tir.Func, batch *report.Batch) *tir.Func {
	l := newFuncLowerer(e, fn, batch)
	return l.run()
}

// LowerUnit lowers all functions in parallel. An error is only returned for
// an internal failure of the pass, diagnostics are in the output.
func (e *Engine) LowerUnit(funcs []*tir.Func) (*Output, error) {
	lowered := make([]*tir.Func, len(funcs))
	batches := make([]*report.Batch, len(funcs))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, fn := range funcs {
		g.Go(func() error {
			batch := report.NewBatch(fn.Name)
			res, err := e.lowerFuncSafe(fn, batch)
			if err != nil {
				return fmt.Errorf("lower function %s: %w", fn.Name, err)
			}

			lowered[i] = res
			batches[i] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Output{
		Funcs:   lowered,
		Reports: &report.Engine{},
	}
	for _, b := range batches {
		out.Reports.Merge(b)
	}

	e.log.Info(
		"unit lowered",
		slog.Int("functions", len(funcs)),
		slog.Int("diagnostics", len(out.Reports.Reports())),
		slog.Bool("failed", out.Failed()),
	)

	return out, nil
}

func (e *Engine) lowerFuncSafe(fn *tir.Func, batch *report.Batch) (res *tir.Func, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if rerr, ok := r.(error); ok {
			err = fmt.Errorf("internal failure: %w", rerr)
			return
		}
		err = fmt.Errorf("internal failure: %v", r)
	}()

	return e.LowerFunc(fn, batch), nil
}
