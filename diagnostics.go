package main

import (
	"fmt"
	"go/token"
	"io"
	"strings"

	"github.com/sirkon/trylower/internal/report"
	"github.com/sirkon/trylower/internal/spans"
	"github.com/sirkon/trylower/internal/tir"
)

// diagnosticGroup holds reports that belong to the same innermost construct
// or function.
type diagnosticGroup struct {
	node    tir.Node
	fn      string
	reports []report.Report
}

// printDiagnostics prints reports grouped by the innermost try/catch
// construct or function they point into, in the order of their first report.
//
//	unit.yaml:13:11: try/catch in f
//	  unit.yaml:17:15: error: E-MISSING-HANDLER(ErrorC): Every error type produced in a try scope needs a catch clause.
func printDiagnostics(w io.Writer, fset *token.FileSet, funcs []*tir.Func, reports []report.Report) error {
	if len(reports) == 0 {
		return nil
	}

	idx := spans.Build(funcs)
	var groups []*diagnosticGroup
	byNode := map[tir.Node]*diagnosticGroup{}
	var loose *diagnosticGroup
	for _, rep := range reports {
		node := idx.At(rep.Pos)

		var g *diagnosticGroup
		switch {
		case node != nil:
			g = byNode[node]
			if g == nil {
				g = &diagnosticGroup{node: node, fn: rep.Func}
				byNode[node] = g
				groups = append(groups, g)
			}
		case loose != nil:
			g = loose
		default:
			loose = &diagnosticGroup{fn: rep.Func}
			groups = append(groups, loose)
			g = loose
		}

		g.reports = append(g.reports, rep)
	}

	var b strings.Builder
	for _, g := range groups {
		b.WriteString(g.header(fset))
		for _, rep := range g.reports {
			for _, line := range strings.SplitAfter(report.Format(fset, rep), "\n") {
				if line == "" {
					continue
				}
				b.WriteString("  ")
				b.WriteString(line)
			}
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("print diagnostics: %w", err)
	}

	return nil
}

func (g *diagnosticGroup) header(fset *token.FileSet) string {
	switch v := g.node.(type) {
	case *tir.TryCatch:
		return fmt.Sprintf("%s: try/catch in %s\n", fset.Position(v.Pos()), g.fn)
	case *tir.Func:
		return fmt.Sprintf("%s: function %s\n", fset.Position(v.Pos()), v.Name)
	default:
		return "without position\n"
	}
}
