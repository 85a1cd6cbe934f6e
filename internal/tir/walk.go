package tir

import "fmt"

// Inspect traverses the tree rooted at n in depth-first order. It calls f(n)
// and descends into the children of n when f returns true. Nil children are
// skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || isNilNode(n) {
		return
	}
	if !f(n) {
		return
	}

	switch v := n.(type) {
	case *Func:
		Inspect(v.Body, f)
	case *Block:
		for _, s := range v.Stmts {
			Inspect(s, f)
		}
	case *Let:
		Inspect(v.Value, f)
	case *ExprStmt:
		Inspect(v.X, f)
	case *If:
		Inspect(v.Cond, f)
		Inspect(v.Then, f)
		Inspect(v.Else, f)
	case *Throw:
		Inspect(v.Value, f)
	case *BlockStmt:
		Inspect(v.Body, f)
	case *Call:
		for _, a := range v.Args {
			Inspect(a, f)
		}
	case *TryCatch:
		Inspect(v.Try, f)
		for _, c := range v.Catches {
			Inspect(c, f)
		}
	case *CatchClause:
		Inspect(v.Body, f)
	case *Bind:
		Inspect(v.Value, f)
		Inspect(v.Body, f)
	case *Match:
		Inspect(v.Subject, f)
		Inspect(v.OnOk, f)
		Inspect(v.OnErr, f)
	case *Cond:
		Inspect(v.Cond, f)
		Inspect(v.Then, f)
		Inspect(v.Else, f)
	case *Return:
		Inspect(v.Value, f)
	case *OkValue:
		Inspect(v.X, f)
	case *ErrValue:
		Inspect(v.X, f)
	case *Ident, *Lit, *Invalid:
	default:
		panic(fmt.Errorf("inspect: unhandled node %T", n))
	}
}

// isNilNode catches typed nil pointers stored in interfaces, like a nil
// *Block in If.Else.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Block:
		return v == nil
	case *Func:
		return v == nil
	case *CatchClause:
		return v == nil
	case *TryCatch:
		return v == nil
	default:
		return false
	}
}

// ThrowsOf collects throws that belong to the throw scope of block: nested
// try/catch constructs own their throws and are not entered.
func ThrowsOf(block *Block) []*Throw {
	var res []*Throw
	Inspect(block, func(n Node) bool {
		switch v := n.(type) {
		case *TryCatch:
			return false
		case *Throw:
			res = append(res, v)
		}
		return true
	})

	return res
}

// CanThrow reports whether any handler of tc contains a throw in its own
// throw scope.
func (tc *TryCatch) CanThrow() bool {
	for _, c := range tc.Catches {
		if len(ThrowsOf(c.Body)) > 0 {
			return true
		}
	}

	return false
}
