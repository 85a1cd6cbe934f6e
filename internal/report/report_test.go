package report

import (
	"go/token"
	"strings"
	"sync"
	"testing"

	"github.com/sirkon/trylower/internal/tryrules"
)

func TestBatch_ReportPhases(t *testing.T) {
	tests := []struct {
		name     string
		phase    Phase
		rule     tryrules.Rule
		args     []string
		code     string
		severity tryrules.Severity
	}{
		{
			name:     "flow unresolved",
			phase:    PhaseFlow,
			rule:     tryrules.UnresolvedErrorType(),
			code:     "E-UNRESOLVED-ERROR-TYPE",
			severity: tryrules.SeverityError,
		},
		{
			name:     "table duplicate",
			phase:    PhaseTable,
			rule:     tryrules.DuplicateHandler(),
			args:     []string{"ErrorB"},
			code:     "E-DUPLICATE-HANDLER(ErrorB)",
			severity: tryrules.SeverityError,
		},
		{
			name:     "cover unreachable",
			phase:    PhaseCover,
			rule:     tryrules.UnreachableHandler(),
			args:     []string{"ErrorD"},
			code:     "W-UNREACHABLE-HANDLER(ErrorD)",
			severity: tryrules.SeverityWarning,
		},
		{
			name:     "scope throw mismatch",
			phase:    PhaseScope,
			rule:     tryrules.ThrowTypeMismatch(),
			args:     []string{"ErrorA", "ErrorB"},
			code:     "E-THROW-TYPE-MISMATCH(ErrorA, ErrorB)",
			severity: tryrules.SeverityError,
		},
	}

	b := NewBatch("f")
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.Phase(tt.phase).Report(tt.rule, token.Pos(i+1), tt.args...)
		})
	}

	reps := b.Reports()
	if len(reps) != len(tests) {
		t.Fatalf("expected %d reports, got %d", len(tests), len(reps))
	}
	if b.Fatals() != 3 {
		t.Errorf("expected 3 fatal reports, got %d", b.Fatals())
	}

	for i, rep := range reps {
		want := tests[i]
		if rep.Phase != want.phase {
			t.Errorf("[%s] phase mismatch: got %v, want %v", want.name, rep.Phase, want.phase)
		}
		if rep.Code() != want.code {
			t.Errorf("[%s] code mismatch: got %s, want %s", want.name, rep.Code(), want.code)
		}
		if rep.Severity != want.severity {
			t.Errorf("[%s] severity mismatch: got %s, want %s", want.name, rep.Severity, want.severity)
		}
		if rep.Message != want.rule.Description() {
			t.Errorf("[%s] message mismatch: got %q", want.name, rep.Message)
		}
		if rep.Func != "f" {
			t.Errorf("[%s] function mismatch: got %q", want.name, rep.Func)
		}
	}
}

func TestBatch_SeverityOverride(t *testing.T) {
	b := NewBatch("f")
	b.Phase(PhaseCover).ReportSeverity(tryrules.UnreachableHandler(), tryrules.SeverityError, token.NoPos, "ErrorD")

	if b.Fatals() != 1 {
		t.Fatalf("escalated warning must be fatal, got %d fatals", b.Fatals())
	}
}

func TestEngine_MergeKeepsOrder(t *testing.T) {
	var e Engine

	first := NewBatch("first")
	first.Phase(PhaseCover).Report(tryrules.MissingHandler(), token.NoPos, "ErrorC")
	second := NewBatch("second")
	second.Phase(PhaseCover).Report(tryrules.UnreachableHandler(), token.NoPos, "ErrorD")

	e.Merge(first)
	e.Merge(second)

	reps := e.Reports()
	if len(reps) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reps))
	}
	if reps[0].Func != "first" || reps[1].Func != "second" {
		t.Errorf("unexpected order: %s, %s", reps[0].Func, reps[1].Func)
	}
	if !e.Failed() {
		t.Error("engine must be failed after merging a fatal report")
	}
}

func TestEngine_ConcurrencySafety(t *testing.T) {
	const n = 500
	var (
		e  Engine
		wg sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e.Report(Report{
				Phase: PhaseScope,
				Rule:  tryrules.InvalidThrowContext(),
				Pos:   token.Pos(i),
			})
		}(i)
	}
	wg.Wait()

	reps := e.Reports()
	if len(reps) != n {
		t.Fatalf("expected %d reports, got %d", n, len(reps))
	}
	reps[0].Message = "changed"
	reps2 := e.Reports()
	if reps2[0].Message == "changed" {
		t.Fatalf("Reports() returned shared slice, expected copy")
	}
}

func TestFormat(t *testing.T) {
	fset := token.NewFileSet()
	file := fset.AddFile("unit.yaml", -1, 100)
	file.SetLinesForContent([]byte(strings.Repeat("123456789\n", 10)))

	rep := normalize(Report{
		Rule:    tryrules.DuplicateHandler(),
		Pos:     file.Pos(22),
		Related: []token.Pos{file.Pos(2)},
		Args:    []string{"ErrorB"},
	})

	want := "unit.yaml:3:3: error: E-DUPLICATE-HANDLER(ErrorB): An error type can be caught by only one clause of a construct.\n" +
		"    unit.yaml:1:3: related location\n"
	if got := Format(fset, rep); got != want {
		t.Errorf("format mismatch:\ngot  %q\nwant %q", got, want)
	}
}

func TestEngine_PrintSummary(t *testing.T) {
	fset := token.NewFileSet()
	file := fset.AddFile("unit.yaml", -1, 100)
	file.SetLinesForContent([]byte(strings.Repeat("123456789\n", 10)))

	var e Engine
	first := NewBatch("f")
	first.Phase(PhaseCover).Report(tryrules.MissingHandler(), file.Pos(12), "ErrorC")
	second := NewBatch("g")
	second.Phase(PhaseFlow).Report(tryrules.FallibleInBranch(), file.Pos(31), "ErrorB")
	e.Merge(first)
	e.Merge(second)

	var b strings.Builder
	if err := e.PrintSummary(&b, fset); err != nil {
		t.Fatalf("print summary: %s", err)
	}

	want := "unit.yaml:2:3: error: E-MISSING-HANDLER(ErrorC): Every error type produced in a try scope needs a catch clause.\n" +
		"unit.yaml:4:2: error: E-FALLIBLE-IN-BRANCH(ErrorB): " + tryrules.FallibleInBranch().Description() + "\n"
	if got := b.String(); got != want {
		t.Errorf("summary mismatch:\ngot  %q\nwant %q", got, want)
	}
}
