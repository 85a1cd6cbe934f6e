package tir

import (
	"fmt"
	"go/token"
)

// Node is the base interface implemented by all tree nodes.
type Node interface {
	Pos() token.Pos
	End() token.Pos
	isNode()
}

// Stmt marks nodes that can appear in a block.
type Stmt interface {
	Node
	isStmt()
}

// Expr marks nodes that evaluate to a value.
type Expr interface {
	Node
	isExpr()
}

// Span is a [From, To] source range. Embedded into every node.
type Span struct {
	From token.Pos
	To   token.Pos
}

// Pos returns the start of the span.
func (s Span) Pos() token.Pos { return s.From }

// End returns the end of the span.
func (s Span) End() token.Pos { return s.To }

// Type is a nominal type identifier supplied by the host type system.
// Two types are the same type iff their identifiers are equal, there is no
// structural or subtype relation at this level.
type Type string

const (
	// NoType means the host could not tell the type.
	NoType Type = ""

	// Unit is the type of an empty block.
	Unit Type = "()"
)

// Known reports whether the type was resolved by the host.
func (t Type) Known() bool {
	return t != NoType
}

func (t Type) String() string {
	if t == NoType {
		return "<unknown>"
	}

	return string(t)
}

// ResultType renders the result type of something that succeeds with ok and
// fails with err.
//
//	ResultType("R", "ErrorA") // "Result<R, ErrorA>"
func ResultType(ok, err Type) Type {
	return Type(fmt.Sprintf("Result<%s, %s>", ok, err))
}
