package tir

// Func is a function body handed over by the host together with its declared
// result signature Result<Ok, Err>.
type Func struct {
	Span
	Name string
	Ok   Type
	Err  Type
	Body *Block
}

// Result returns the declared result type of the function.
func (f *Func) Result() Type {
	return ResultType(f.Ok, f.Err)
}

// Block is an ordered statement list. Its value is the value of the last
// statement, an empty block evaluates to unit.
type Block struct {
	Span
	Stmts []Stmt
}

// Let binds the value of an expression to a name.
//
//	let x = some_operation() // Name: "x", Value: <Call>(some_operation)
type Let struct {
	Span
	Name  string
	Value Expr
}

// ExprStmt is an expression evaluated as a statement.
type ExprStmt struct {
	Span
	X Expr
}

// If is a conditional statement. Else may be nil.
type If struct {
	Span
	Cond Expr
	Then *Block
	Else *Block
}

// Throw raises a new error value of the enclosing function's error type.
// Only legal inside a catch clause body.
//
//	throw ErrorA::new("something went wrong") // Value: <Call>(ErrorA::new)
type Throw struct {
	Span
	Value Expr
}

// BlockStmt is a nested block used as a statement.
type BlockStmt struct {
	Span
	Body *Block
}

func (*Func) isNode()      {}
func (*Block) isNode()     {}
func (*Let) isNode()       {}
func (*Let) isStmt()       {}
func (*ExprStmt) isNode()  {}
func (*ExprStmt) isStmt()  {}
func (*If) isNode()        {}
func (*If) isStmt()        {}
func (*Throw) isNode()     {}
func (*Throw) isStmt()     {}
func (*BlockStmt) isNode() {}
func (*BlockStmt) isStmt() {}
