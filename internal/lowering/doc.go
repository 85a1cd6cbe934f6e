// Package lowering runs the try/catch lowering pipeline over function bodies.
//
// For every construct, innermost first:
//
//	flow.Analyze → handlers.Build → handlers.CheckExhaustive → scope.Validate → desugar.Construct
//
// A construct with a fatal diagnostic is replaced with an [tir.Invalid]
// placeholder, its siblings and enclosing constructs are still lowered.
// Diagnostics never stop the pass: they are batched per function and merged
// in function order.
//
// Functions are independent and are lowered in parallel. Workers share only
// the host type table, which must not change during a pass.
package lowering
