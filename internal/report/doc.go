// Package report collects diagnostics produced while lowering try/catch
// constructs.
//
// Diagnostics are batched per function: a worker lowering one function owns a
// [Batch] and reports through phase-bound [Phased] reporters. Batches are
// merged into an [Engine] once the function is done, so the final list does
// not depend on worker scheduling.
package report
