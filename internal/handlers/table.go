package handlers

import (
	"go/token"

	"github.com/sirkon/trylower/internal/report"
	"github.com/sirkon/trylower/internal/tir"
	"github.com/sirkon/trylower/internal/tryrules"
)

// Table maps an error type to the one clause handling it.
type Table struct {
	clauses map[tir.Type]*tir.CatchClause
	order   []tir.Type
}

// Build inserts clauses keyed by their pattern. A repeated pattern is
// reported at the later clause, the first declaration is kept.
// It returns false if any duplicate was found.
func Build(clauses []*tir.CatchClause, rp *report.Phased) (*Table, bool) {
	t := &Table{
		clauses: make(map[tir.Type]*tir.CatchClause, len(clauses)),
	}

	ok := true
	for _, c := range clauses {
		first, exists := t.clauses[c.Pattern]
		if exists {
			rp.ReportRelated(
				tryrules.DuplicateHandler(),
				c.Pos(),
				[]token.Pos{first.Pos()},
				string(c.Pattern),
			)
			ok = false
			continue
		}

		t.clauses[c.Pattern] = c
		t.order = append(t.order, c.Pattern)
	}

	return t, ok
}

// Lookup returns the clause handling the error type.
func (t *Table) Lookup(errType tir.Type) (*tir.CatchClause, bool) {
	c, ok := t.clauses[errType]
	return c, ok
}

// Types returns handled error types in declaration order.
func (t *Table) Types() []tir.Type {
	res := make([]tir.Type, len(t.order))
	copy(res, t.order)
	return res
}

// Len returns the number of handled error types.
func (t *Table) Len() int {
	return len(t.order)
}
