// Package handlers maps error types to the catch clauses of a single
// try/catch construct and checks the mapping against what the try scope
// actually produces.
//
// A table is built fresh for every construct and is never shared.
package handlers
