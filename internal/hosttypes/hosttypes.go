// Package hosttypes is an in-memory implementation of the type queries the
// lowering engine makes against the host compiler.
//
// A Table is filled while the host front end builds the tree and is treated
// as an immutable snapshot afterwards: lowering workers only read it, so no
// locking is involved.
package hosttypes

import (
	"github.com/sirkon/trylower/internal/tir"
)

// Signature describes what a call site evaluates to.
type Signature struct {
	// Ok is the success type of a fallible call or the type of a plain one.
	Ok tir.Type

	// Err is the error type of a fallible call. tir.NoType for a fallible
	// call means the host failed to resolve it.
	Err tir.Type

	Fallible bool
}

// Table keeps call signatures, expression types and assignability facts.
type Table struct {
	calls  map[string]Signature
	exprs  map[tir.Expr]tir.Type
	assign map[[2]tir.Type]bool
}

// New is [Table] constructor.
func New() *Table {
	return &Table{
		calls:  make(map[string]Signature),
		exprs:  make(map[tir.Expr]tir.Type),
		assign: make(map[[2]tir.Type]bool),
	}
}

// --- Building -------------------------------------------------------------------------------------------------------

// DeclareCall registers the signature of the named function.
func (t *Table) DeclareCall(name string, sig Signature) {
	t.calls[name] = sig
}

// Fallible registers a result-producing function.
func (t *Table) Fallible(name string, ok, err tir.Type) {
	t.DeclareCall(name, Signature{Ok: ok, Err: err, Fallible: true})
}

// Plain registers a function that cannot fail.
func (t *Table) Plain(name string, typ tir.Type) {
	t.DeclareCall(name, Signature{Ok: typ})
}

// SetType records the static type of an expression, like the type of an
// identifier at its use site.
func (t *Table) SetType(x tir.Expr, typ tir.Type) {
	t.exprs[x] = typ
}

// AllowAssign records that values of type from can be used where to is
// expected.
func (t *Table) AllowAssign(from, to tir.Type) {
	t.assign[[2]tir.Type{from, to}] = true
}

// --- Queries --------------------------------------------------------------------------------------------------------

// Signature returns the registered signature of the named function.
func (t *Table) Signature(name string) (Signature, bool) {
	sig, ok := t.calls[name]
	return sig, ok
}

// FailureOf returns success and error types of a result-producing call.
func (t *Table) FailureOf(x tir.Expr) (ok, err tir.Type, fallible bool) {
	call, isCall := x.(*tir.Call)
	if !isCall {
		return tir.NoType, tir.NoType, false
	}

	sig, known := t.calls[call.Fun]
	if !known || !sig.Fallible {
		return tir.NoType, tir.NoType, false
	}

	return sig.Ok, sig.Err, true
}

// TypeOf returns the static type of the expression, tir.NoType if unknown.
func (t *Table) TypeOf(x tir.Expr) tir.Type {
	if typ, ok := t.exprs[x]; ok {
		return typ
	}

	switch v := x.(type) {
	case *tir.Lit:
		return v.Type
	case *tir.TryCatch:
		return v.Success
	case *tir.Call:
		sig, ok := t.calls[v.Fun]
		if !ok {
			return tir.NoType
		}
		if sig.Fallible {
			if !sig.Err.Known() {
				return tir.NoType
			}
			return tir.ResultType(sig.Ok, sig.Err)
		}
		return sig.Ok
	default:
		return tir.NoType
	}
}

// Assignable reports exact identity or a recorded assignability fact.
func (t *Table) Assignable(from, to tir.Type) bool {
	if from == to {
		return true
	}

	return t.assign[[2]tir.Type{from, to}]
}
