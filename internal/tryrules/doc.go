// Package tryrules defines the stable diagnostic codes reported by the
// try/catch lowering engine.
//
// Codes are host-facing identifiers. An error code starts with "E-", an
// advisory one with "W-":
//
//	tryrules.MissingHandler().String()      → "E-MISSING-HANDLER"
//	tryrules.MissingHandler().Description() → "Every error type produced in a try scope needs a catch clause."
//
// Each rule belongs to the analysis stage that detects it (see [Category])
// and carries a default [Severity]. Severity of an advisory rule may be
// raised by configuration, never lowered for an error rule.
//
// Rule identifiers are stable. Never renumber or rename existing codes, add
// new ones at the end.
package tryrules
