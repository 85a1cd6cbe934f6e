package flow

import (
	"go/token"
	"reflect"
	"testing"

	"github.com/sirkon/trylower/internal/report"
	"github.com/sirkon/trylower/internal/tir"
	"github.com/sirkon/trylower/internal/tryrules"
)

type signature struct {
	ok, err tir.Type
}

// callTypes treats every call listed as fallible.
type callTypes map[string]signature

func (c callTypes) FailureOf(x tir.Expr) (ok, err tir.Type, fallible bool) {
	call, isCall := x.(*tir.Call)
	if !isCall {
		return tir.NoType, tir.NoType, false
	}
	sig, found := c[call.Fun]
	if !found {
		return tir.NoType, tir.NoType, false
	}

	return sig.ok, sig.err, true
}

func call(pos int, name string) *tir.Call {
	return &tir.Call{Span: tir.Span{From: token.Pos(pos), To: token.Pos(pos + 1)}, Fun: name}
}

func withArgs(c *tir.Call, args ...tir.Expr) *tir.Call {
	c.Args = args
	return c
}

func TestAnalyze(t *testing.T) {
	types := callTypes{
		"read":   {ok: "Bytes", err: "IOError"},
		"parse":  {ok: "Doc", err: "ParseError"},
		"reread": {ok: "Bytes", err: "IOError"},
	}

	throwing := &tir.TryCatch{
		Try:     &tir.Block{},
		Success: "Doc",
		Catches: []*tir.CatchClause{{
			Pattern: "IOError",
			Body: &tir.Block{Stmts: []tir.Stmt{
				&tir.Throw{Value: call(90, "AppError::new")},
			}},
		}},
	}
	silent := &tir.TryCatch{
		Try:     &tir.Block{},
		Success: "Doc",
		Catches: []*tir.CatchClause{{
			Pattern: "IOError",
			Body:    &tir.Block{Stmts: []tir.Stmt{&tir.ExprStmt{X: call(95, "default_doc")}}},
		}},
	}

	tc := &tir.TryCatch{
		Success: "Doc",
		Try: &tir.Block{Stmts: []tir.Stmt{
			&tir.Let{Name: "data", Value: call(10, "read")},
			&tir.ExprStmt{X: call(20, "log")},
			&tir.Let{Name: "doc", Value: call(30, "parse")},
			&tir.ExprStmt{X: call(40, "reread")},
			&tir.Let{Name: "inner", Value: throwing},
			&tir.ExprStmt{X: silent},
		}},
	}

	b := report.NewBatch("f")
	ann, ok := Analyze(tc, "AppError", types, b.Phase(report.PhaseFlow))
	if !ok {
		t.Fatalf("unexpected failure: %v", b.Reports())
	}

	type got struct {
		name string
		kind Kind
		err  tir.Type
		ok   tir.Type
	}
	want := []got{
		{"data", Fallible, "IOError", "Bytes"},
		{"", Plain, "", ""},
		{"doc", Fallible, "ParseError", "Doc"},
		{"", Fallible, "IOError", "Bytes"},
		{"inner", Fallible, "AppError", "Doc"},
		{"", Plain, "", ""},
	}
	if len(ann.Steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(ann.Steps))
	}
	for i, s := range ann.Steps {
		g := got{s.Name, s.Kind, s.Err, s.Ok}
		if g != want[i] {
			t.Errorf("step %d: got %+v, want %+v", i, g, want[i])
		}
	}

	required := ann.Required()
	if !reflect.DeepEqual(required, []tir.Type{"IOError", "ParseError", "AppError"}) {
		t.Errorf("unexpected required set %v", required)
	}

	stmt, found := ann.Producer("IOError")
	if !found || stmt != tc.Try.Stmts[0] {
		t.Errorf("the first read must be the producer of IOError")
	}
	if _, found := ann.Producer("Nope"); found {
		t.Errorf("no producer expected for an unknown type")
	}
}

func TestAnalyzeUnresolved(t *testing.T) {
	types := callTypes{
		"mystery": {ok: "R", err: tir.NoType},
		"other":   {ok: "R", err: tir.NoType},
	}
	tc := &tir.TryCatch{
		Success: "R",
		Try: &tir.Block{Stmts: []tir.Stmt{
			&tir.ExprStmt{Span: tir.Span{From: 5}, X: call(5, "mystery")},
			&tir.ExprStmt{Span: tir.Span{From: 7}, X: call(7, "other")},
			&tir.ExprStmt{Span: tir.Span{From: 9}, X: withArgs(call(9, "log"), call(11, "mystery"))},
		}},
	}

	b := report.NewBatch("f")
	if _, ok := Analyze(tc, "E", types, b.Phase(report.PhaseFlow)); ok {
		t.Fatal("analysis must fail for unresolved error types")
	}

	reps := b.Reports()
	if len(reps) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reps))
	}
	for i, pos := range []token.Pos{5, 7, 11} {
		if reps[i].Rule != tryrules.UnresolvedErrorType() || reps[i].Pos != pos {
			t.Errorf("report %d: got %s at %d", i, reps[i].Code(), reps[i].Pos)
		}
	}
}

func TestAnalyzeHoistedSites(t *testing.T) {
	types := callTypes{
		"read":   {ok: "Bytes", err: "IOError"},
		"parse":  {ok: "Doc", err: "ParseError"},
		"reread": {ok: "Bytes", err: "IOError"},
	}

	early := call(12, "stamp")
	read := call(16, "read")
	parse := withArgs(call(14, "parse"), read)
	late := call(18, "stamp")
	cond := call(22, "parse")
	tc := &tir.TryCatch{
		Success: "Doc",
		Try: &tir.Block{Stmts: []tir.Stmt{
			&tir.Let{Span: tir.Span{From: 10}, Name: "doc", Value: withArgs(call(10, "merge"), early, parse, late)},
			&tir.If{
				Span: tir.Span{From: 20},
				Cond: withArgs(call(20, "valid"), cond),
				Then: &tir.Block{Stmts: []tir.Stmt{&tir.ExprStmt{X: call(24, "log")}}},
			},
			&tir.ExprStmt{Span: tir.Span{From: 30}, X: call(30, "reread")},
		}},
	}

	b := report.NewBatch("f")
	ann, ok := Analyze(tc, "AppError", types, b.Phase(report.PhaseFlow))
	if !ok {
		t.Fatalf("unexpected failure: %v", b.Reports())
	}

	want := [][]Site{
		{
			{Expr: early, Kind: Plain},
			{Expr: read, Kind: Fallible, Err: "IOError", Ok: "Bytes"},
			{Expr: parse, Kind: Fallible, Err: "ParseError", Ok: "Doc"},
		},
		{
			{Expr: cond, Kind: Fallible, Err: "ParseError", Ok: "Doc"},
		},
		nil,
	}
	var got [][]Site
	for _, s := range ann.Steps {
		got = append(got, s.Sites)
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("unexpected sites: got %+v, want %+v", got, want)
	}
	if ann.Steps[0].Kind != Plain || ann.Steps[2].Kind != Fallible {
		t.Errorf("unexpected step kinds %s, %s", ann.Steps[0].Kind, ann.Steps[2].Kind)
	}

	required := ann.Required()
	if !reflect.DeepEqual(required, []tir.Type{"IOError", "ParseError"}) {
		t.Errorf("unexpected required set %v", required)
	}
	if at, _ := ann.Producer("IOError"); at != read {
		t.Errorf("the nested read must be the producer of IOError, got %v", at)
	}
	if at, _ := ann.Producer("ParseError"); at != parse {
		t.Errorf("the nested parse must be the producer of ParseError, got %v", at)
	}
}

func TestAnalyzeFallibleInBranch(t *testing.T) {
	types := callTypes{
		"read":   {ok: "Bytes", err: "IOError"},
		"parse":  {ok: "Doc", err: "ParseError"},
		"reread": {ok: "Bytes", err: "IOError"},
	}

	throwing := &tir.TryCatch{
		Span:    tir.Span{From: 40, To: 41},
		Try:     &tir.Block{Stmts: []tir.Stmt{&tir.ExprStmt{X: call(42, "read")}}},
		Success: "Doc",
		Catches: []*tir.CatchClause{{
			Pattern: "IOError",
			Body: &tir.Block{Stmts: []tir.Stmt{
				&tir.Throw{Value: call(44, "AppError::new")},
			}},
		}},
	}
	tc := &tir.TryCatch{
		Success: "Doc",
		Try: &tir.Block{Stmts: []tir.Stmt{
			&tir.If{
				Span: tir.Span{From: 10},
				Cond: &tir.Ident{Name: "ready"},
				Then: &tir.Block{Stmts: []tir.Stmt{&tir.ExprStmt{X: call(20, "read")}}},
				Else: &tir.Block{Stmts: []tir.Stmt{&tir.ExprStmt{X: withArgs(call(28, "log"), call(30, "parse"))}}},
			},
			&tir.BlockStmt{
				Span: tir.Span{From: 35},
				Body: &tir.Block{Stmts: []tir.Stmt{&tir.Let{Name: "doc", Value: throwing}}},
			},
			&tir.ExprStmt{Span: tir.Span{From: 50}, X: call(50, "reread")},
		}},
	}

	b := report.NewBatch("f")
	ann, ok := Analyze(tc, "AppError", types, b.Phase(report.PhaseFlow))
	if ok {
		t.Fatal("analysis must fail for fallible calls in branches")
	}

	type record struct {
		code string
		pos  token.Pos
	}
	want := []record{
		{"E-FALLIBLE-IN-BRANCH(IOError)", 20},
		{"E-FALLIBLE-IN-BRANCH(ParseError)", 30},
		{"E-FALLIBLE-IN-BRANCH(AppError)", 40},
	}
	var got []record
	for _, rep := range b.Reports() {
		got = append(got, record{rep.Code(), rep.Pos})
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("unexpected reports: got %v, want %v", got, want)
	}

	if required := ann.Required(); !reflect.DeepEqual(required, []tir.Type{"IOError"}) {
		t.Errorf("unexpected required set %v", required)
	}
}

func TestChained(t *testing.T) {
	throwing := func() *tir.TryCatch {
		return &tir.TryCatch{
			Try:     &tir.Block{},
			Success: "R",
			Catches: []*tir.CatchClause{{
				Pattern: "E",
				Body:    &tir.Block{Stmts: []tir.Stmt{&tir.Throw{Value: &tir.Ident{Name: "e"}}}},
			}},
		}
	}
	silent := &tir.TryCatch{Try: &tir.Block{}, Success: "R"}

	asValue := throwing()
	asArg := throwing()
	inCond := throwing()
	inBranch := throwing()
	tc := &tir.TryCatch{
		Success: "R",
		Try: &tir.Block{Stmts: []tir.Stmt{
			&tir.Let{Name: "a", Value: asValue},
			&tir.ExprStmt{X: withArgs(call(1, "use"), silent, asArg)},
			&tir.If{
				Cond: withArgs(call(2, "check"), inCond),
				Then: &tir.Block{Stmts: []tir.Stmt{&tir.ExprStmt{X: inBranch}}},
			},
		}},
	}

	got := Chained(tc)
	want := []*tir.TryCatch{asValue, asArg, inCond}
	if len(got) != len(want) {
		t.Fatalf("expected %d chained constructs, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chained construct %d is not the expected one", i)
		}
	}
}
