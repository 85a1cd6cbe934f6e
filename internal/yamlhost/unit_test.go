package yamlhost

import (
	"go/token"
	"strings"
	"testing"

	"github.com/sirkon/trylower/internal/tir"
)

const scenarioUnit = `calls:
  some_operation: {ok: R, err: ErrorB}
  op_lost: {ok: R, err: "?"}
  "ErrorA::new": {type: ErrorA}
  log: {}
assignable:
  - [Never, R]
functions:
  - name: f
    ok: R
    err: ErrorA
    body:
      - try:
          type: R
          do:
            - let: x
              value: {call: some_operation}
            - expr: x
          catch:
            - error: ErrorB
              as: e
              do:
                - throw: {call: "ErrorA::new", args: [e, {lit: '"boom"', type: String}]}
  - name: g
    err: ErrorA
    params: {n: Int}
    body:
      - if: n
        then:
          - expr: {call: log}
      - let: y
        value: {call: some_operation}
      - expr: y
`

func TestParse(t *testing.T) {
	fset := token.NewFileSet()
	unit, err := Parse(fset, "unit.yaml", []byte(scenarioUnit))
	if err != nil {
		t.Fatal(err)
	}

	if len(unit.Funcs) != 2 {
		t.Fatalf("got %d functions, want 2", len(unit.Funcs))
	}

	want := `func f() Result<R, ErrorA> {
  try {
    let x = some_operation()
    x
  } catch (e: ErrorB) {
    throw ErrorA::new(e, "boom")
  }
}
`
	if got := tir.Sprint(unit.Funcs[0]); got != want {
		t.Errorf("unexpected tree:\n%s\nwant:\n%s", got, want)
	}

	want = `func g() Result<(), ErrorA> {
  if n {
    log()
  }
  let y = some_operation()
  y
}
`
	if got := tir.Sprint(unit.Funcs[1]); got != want {
		t.Errorf("unexpected tree:\n%s\nwant:\n%s", got, want)
	}

	t.Run("types", func(t *testing.T) {
		f := unit.Funcs[0]
		tc := f.Body.Stmts[0].(*tir.ExprStmt).X.(*tir.TryCatch)
		x := tc.Try.Stmts[1].(*tir.ExprStmt).X
		if got := unit.Types.TypeOf(x); got != "R" {
			t.Errorf("x in a try scope is %s, want R", got)
		}

		throw := tc.Catches[0].Body.Stmts[0].(*tir.Throw)
		e := throw.Value.(*tir.Call).Args[0]
		if got := unit.Types.TypeOf(e); got != "ErrorB" {
			t.Errorf("catch binding is %s, want ErrorB", got)
		}
		if got := unit.Types.TypeOf(throw.Value); got != "ErrorA" {
			t.Errorf("thrown value is %s, want ErrorA", got)
		}

		g := unit.Funcs[1]
		n := g.Body.Stmts[0].(*tir.If).Cond
		if got := unit.Types.TypeOf(n); got != "Int" {
			t.Errorf("parameter is %s, want Int", got)
		}
		y := g.Body.Stmts[2].(*tir.ExprStmt).X
		if got := unit.Types.TypeOf(y); got != "Result<R, ErrorB>" {
			t.Errorf("y outside of a try scope is %s, want Result<R, ErrorB>", got)
		}

		if sig, ok := unit.Types.Signature("op_lost"); !ok || !sig.Fallible || sig.Err.Known() {
			t.Errorf("op_lost must be fallible with unresolved error type, got %+v", sig)
		}
		if sig, ok := unit.Types.Signature("log"); !ok || sig.Fallible || sig.Ok != tir.Unit {
			t.Errorf("log must be plain unit call, got %+v", sig)
		}
		if !unit.Types.Assignable("Never", "R") {
			t.Error("Never must be assignable to R")
		}
	})

	t.Run("positions", func(t *testing.T) {
		f, g := unit.Funcs[0], unit.Funcs[1]
		tc := f.Body.Stmts[0].(*tir.ExprStmt).X.(*tir.TryCatch)

		checks := []struct {
			name string
			pos  token.Pos
			line int
		}{
			{name: "function", pos: f.Pos(), line: 9},
			{name: "try", pos: tc.Pos(), line: 14},
			{name: "catch", pos: tc.Catches[0].Pos(), line: 20},
			{name: "throw", pos: tc.Catches[0].Body.Stmts[0].Pos(), line: 23},
			{name: "second function", pos: g.Pos(), line: 24},
		}
		for _, c := range checks {
			if got := fset.Position(c.pos).Line; got != c.line {
				t.Errorf("%s is at line %d, want %d", c.name, got, c.line)
			}
		}

		if !(f.Pos() < tc.Pos() && tc.End() <= f.End() && f.End() < g.Pos()) {
			t.Errorf("spans are not nested: f=[%d, %d] try=[%d, %d] g=%d", f.Pos(), f.End(), tc.Pos(), tc.End(), g.Pos())
		}
		if got := fset.Position(f.End()).Line; got != 23 {
			t.Errorf("function ends at line %d, want 23", got)
		}
	})
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "invalid yaml",
			data: "functions: [",
			want: "decode unit",
		},
		{
			name: "unknown top level key",
			data: "types: {}\n",
			want: `unexpected key "types"`,
		},
		{
			name: "functions not a list",
			data: "functions: {}\n",
			want: "functions must be a list",
		},
		{
			name: "plain call with err",
			data: "calls:\n  f: {type: R, err: E}\n",
			want: "type is for plain calls",
		},
		{
			name: "fallible call without err",
			data: "calls:\n  f: {ok: R}\n",
			want: "ok without err",
		},
		{
			name: "function without error type",
			data: "functions:\n  - name: f\n",
			want: "err type is required",
		},
		{
			name: "let without value",
			data: "functions:\n  - name: f\n    err: E\n    body:\n      - let: x\n",
			want: "let x without a value",
		},
		{
			name: "mixed statement",
			data: "functions:\n  - name: f\n    err: E\n    body:\n      - expr: x\n        throw: y\n",
			want: "cannot be used with",
		},
		{
			name: "unknown expression",
			data: "functions:\n  - name: f\n    err: E\n    body:\n      - expr: {type: R}\n",
			want: "unknown expression",
		},
		{
			name: "catch without type",
			data: "functions:\n  - name: f\n    err: E\n    body:\n      - try:\n          catch:\n            - as: e\n",
			want: "catch clause without an error type",
		},
		{
			name: "bad assignable pair",
			data: "assignable:\n  - [A]\n",
			want: "[from, to] pair expected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(token.NewFileSet(), "bad.yaml", []byte(tt.data))
			if err == nil {
				t.Fatal("error expected")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
