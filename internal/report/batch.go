package report

import (
	"go/token"

	"github.com/sirkon/trylower/internal/tryrules"
)

// Batch collects diagnostics of a single function. It is owned by one worker
// and is not safe for concurrent use.
type Batch struct {
	fn      string
	reports []Report
	fatals  int
}

// NewBatch creates a batch for the function named fn.
func NewBatch(fn string) *Batch {
	return &Batch{fn: fn}
}

// Report adds a new record to the batch.
func (b *Batch) Report(rep Report) {
	rep = normalize(rep)
	if rep.Func == "" {
		rep.Func = b.fn
	}

	b.reports = append(b.reports, rep)
	if rep.Fatal() {
		b.fatals++
	}
}

// Fatals returns the number of fatal records collected so far. Comparing the
// value before and after a stage tells whether the stage failed.
func (b *Batch) Fatals() int {
	return b.fatals
}

// Reports returns a snapshot of the records.
func (b *Batch) Reports() []Report {
	out := make([]Report, len(b.reports))
	copy(out, b.reports)
	return out
}

// Phase returns a reporter that sets the given phase for all reports produced
// through it.
func (b *Batch) Phase(p Phase) *Phased {
	return &Phased{parent: b, phase: p}
}

// Phased binds a sink to a fixed phase.
type Phased struct {
	parent Sink
	phase  Phase
}

// Report records a rule violation at pos with the rule's default severity.
func (rp *Phased) Report(rule tryrules.Rule, pos token.Pos, args ...string) {
	rp.parent.Report(Report{
		Phase: rp.phase,
		Rule:  rule,
		Pos:   pos,
		Args:  args,
	})
}

// ReportRelated records a rule violation pointing to other locations as well.
func (rp *Phased) ReportRelated(rule tryrules.Rule, pos token.Pos, related []token.Pos, args ...string) {
	rp.parent.Report(Report{
		Phase:   rp.phase,
		Rule:    rule,
		Pos:     pos,
		Related: related,
		Args:    args,
	})
}

// ReportSeverity records a rule violation with an overridden severity.
func (rp *Phased) ReportSeverity(rule tryrules.Rule, sev tryrules.Severity, pos token.Pos, args ...string) {
	rp.parent.Report(Report{
		Phase:    rp.phase,
		Rule:     rule,
		Severity: sev,
		Pos:      pos,
		Args:     args,
	})
}
