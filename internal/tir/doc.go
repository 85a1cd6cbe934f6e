// Package tir defines the tree the lowering engine consumes and produces.
//
// Input nodes mirror what a host parser hands over for a function body that
// uses structured error handling:
//
//	try {
//	    let x = some_operation()
//	    x
//	} catch (e: ErrorB) {
//	    throw ErrorA::new("something went wrong")
//	}
//
// is a [TryCatch] with one [Let] and one [ExprStmt] in its try scope and one
// [CatchClause] whose body holds a [Throw].
//
// Output nodes ([Bind], [Match], [Cond], [Return], [OkValue], [ErrValue])
// only use ordinary binding, result matching and early termination. A
// construct that failed validation is replaced with [Invalid] so downstream
// passes do not cascade.
package tir
