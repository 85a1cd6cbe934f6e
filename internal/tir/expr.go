package tir

// Ident references a bound name.
type Ident struct {
	Span
	Name string
}

// Lit is a literal carrying its host type.
type Lit struct {
	Span
	Value string
	Type  Type
}

// Call is a call site. Whether it is result-producing is decided by the host.
type Call struct {
	Span
	Fun  string
	Args []Expr
}

// TryCatch is one try/catch construct.
//
//	try { … } catch (e: ErrorB) { … } catch (ErrorC) { … }
//
// Success is the type the try block evaluates to when nothing fails.
type TryCatch struct {
	Span
	Try     *Block
	Catches []*CatchClause
	Success Type
}

// CatchClause handles exactly one error type. Binding names the caught value
// inside Body only and may be empty.
type CatchClause struct {
	Span
	Pattern Type
	Binding string
	Body    *Block
}

func (*Ident) isNode()       {}
func (*Ident) isExpr()       {}
func (*Lit) isNode()         {}
func (*Lit) isExpr()         {}
func (*Call) isNode()        {}
func (*Call) isExpr()        {}
func (*TryCatch) isNode()    {}
func (*TryCatch) isExpr()    {}
func (*CatchClause) isNode() {}
