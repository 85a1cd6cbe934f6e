package tir

// Bind evaluates Value, binds it to Name and evaluates to Body.
//
//	let x = f(); rest // Name: "x", Value: <Call>(f), Body: <rest>
type Bind struct {
	Span
	Name  string
	Value Expr
	Body  Expr
}

// Match dispatches on a result value.
//
//	match subject {
//	    Ok(OkName)   => OnOk,
//	    Err(ErrName) => OnErr,
//	}
type Match struct {
	Span
	Subject Expr
	OkName  string
	OnOk    Expr
	ErrName string
	OnErr   Expr
}

// Cond is a conditional expression. Else is never nil in lowered output.
type Cond struct {
	Span
	Cond Expr
	Then Expr
	Else Expr
}

// Return terminates the enclosing function with Value.
type Return struct {
	Span
	Value Expr
}

// OkValue wraps a success value into a result.
type OkValue struct {
	Span
	X Expr
}

// ErrValue wraps a failure value into a result.
type ErrValue struct {
	Span
	X Expr
}

// Invalid replaces a subtree that failed validation. Downstream passes must
// treat it as already diagnosed.
type Invalid struct {
	Span
	Reason string
}

func (*Bind) isNode()     {}
func (*Bind) isExpr()     {}
func (*Match) isNode()    {}
func (*Match) isExpr()    {}
func (*Cond) isNode()     {}
func (*Cond) isExpr()     {}
func (*Return) isNode()   {}
func (*Return) isExpr()   {}
func (*OkValue) isNode()  {}
func (*OkValue) isExpr()  {}
func (*ErrValue) isNode() {}
func (*ErrValue) isExpr() {}
func (*Invalid) isNode()  {}
func (*Invalid) isExpr()  {}
