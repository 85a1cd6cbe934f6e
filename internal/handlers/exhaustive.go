package handlers

import (
	"github.com/sirkon/trylower/internal/flow"
	"github.com/sirkon/trylower/internal/report"
	"github.com/sirkon/trylower/internal/tir"
	"github.com/sirkon/trylower/internal/tryrules"
)

// CheckExhaustive cross-validates error types flowing out of the try scope
// against the table.
//
//   - A produced type without a clause is reported at its first producer.
//   - A clause nobody can reach is reported at the clause with the given
//     severity.
//
// Statements sharing an error type share one clause. The function returns
// false if a fatal diagnostic was reported.
func CheckExhaustive(ann *flow.Annotated, t *Table, unreachable tryrules.Severity, rp *report.Phased) bool {
	ok := true

	required := ann.Required()
	produced := make(map[tir.Type]bool, len(required))
	for _, errType := range required {
		produced[errType] = true
		if _, handled := t.Lookup(errType); handled {
			continue
		}

		at, _ := ann.Producer(errType)
		rp.Report(tryrules.MissingHandler(), at.Pos(), string(errType))
		ok = false
	}

	for _, errType := range t.Types() {
		if produced[errType] {
			continue
		}

		c, _ := t.Lookup(errType)
		rp.ReportSeverity(tryrules.UnreachableHandler(), unreachable, c.Pos(), string(errType))
		if unreachable.Fatal() {
			ok = false
		}
	}

	return ok
}
