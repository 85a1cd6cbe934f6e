package report

import (
	"fmt"
	"go/token"
	"io"
	"strings"
	"sync"

	"github.com/sirkon/trylower/internal/tryrules"
)

// Sink accepts diagnostics.
type Sink interface {
	Report(rep Report)
}

// Report represents a single diagnostic entry.
type Report struct {
	Phase    Phase
	Rule     tryrules.Rule
	Severity tryrules.Severity
	Func     string
	Pos      token.Pos
	Related  []token.Pos
	Args     []string
	Message  string
}

// Code renders the host-facing code with its arguments.
//
//	E-MISSING-HANDLER(ErrorC)
//	E-THROW-TYPE-MISMATCH(ErrorA, ErrorB)
//	E-INVALID-THROW-CONTEXT
func (r Report) Code() string {
	if len(r.Args) == 0 {
		return r.Rule.String()
	}

	return r.Rule.String() + "(" + strings.Join(r.Args, ", ") + ")"
}

// Fatal reports whether the diagnostic blocks lowering.
func (r Report) Fatal() bool {
	return r.Severity.Fatal()
}

// Phase marks the lowering stage where a report was generated.
type Phase int

const (
	_          Phase = iota
	PhaseFlow        // error-flow annotation
	PhaseTable       // handler table construction
	PhaseCover       // exhaustiveness
	PhaseScope       // throw scope and handler types
)

func (p Phase) String() string {
	switch p {
	case PhaseFlow:
		return "flow"
	case PhaseTable:
		return "table"
	case PhaseCover:
		return "cover"
	case PhaseScope:
		return "scope"
	default:
		return fmt.Sprintf("unknown-phase(%d)", p)
	}
}

// Engine collects diagnostics from any number of goroutines.
type Engine struct {
	mu      sync.Mutex
	reports []Report
	fatals  int
}

// Report adds a new record to the engine.
func (e *Engine) Report(rep Report) {
	rep = normalize(rep)

	e.mu.Lock()
	e.reports = append(e.reports, rep)
	if rep.Fatal() {
		e.fatals++
	}
	e.mu.Unlock()
}

// Merge appends all records of the batch, keeping their order.
func (e *Engine) Merge(b *Batch) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reports = append(e.reports, b.reports...)
	e.fatals += b.fatals
}

// Reports returns a snapshot of all collected records.
func (e *Engine) Reports() []Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Report, len(e.reports))
	copy(out, e.reports)
	return out
}

// Failed reports whether any fatal diagnostic was collected.
func (e *Engine) Failed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fatals > 0
}

// PrintSummary prints all collected reports in a compact, human-readable form.
func (e *Engine) PrintSummary(w io.Writer, fset *token.FileSet) error {
	for _, rep := range e.Reports() {
		if _, err := io.WriteString(w, Format(fset, rep)); err != nil {
			return fmt.Errorf("print diagnostics summary: %w", err)
		}
	}

	return nil
}

// Format renders a single report with its related locations, one per line.
//
//	unit.yaml:12:9: error: E-DUPLICATE-HANDLER(ErrorB): An error type can be caught by only one clause of a construct.
//	    unit.yaml:9:9: related location
func Format(fset *token.FileSet, rep Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s: %s\n", position(fset, rep.Pos), rep.Severity, rep.Code(), rep.Message)
	for _, pos := range rep.Related {
		fmt.Fprintf(&b, "    %s: related location\n", position(fset, pos))
	}

	return b.String()
}

func position(fset *token.FileSet, pos token.Pos) string {
	if fset == nil || !pos.IsValid() {
		return "-"
	}

	return fset.Position(pos).String()
}

func normalize(rep Report) Report {
	if rep.Severity == 0 {
		rep.Severity = rep.Rule.Severity()
	}
	if rep.Message == "" {
		rep.Message = rep.Rule.Description()
	}

	return rep
}
