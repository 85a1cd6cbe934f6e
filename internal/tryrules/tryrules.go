package tryrules

import (
	"encoding"
	"fmt"
)

// Rule represents a diagnostic code.
type Rule int

const (
	ruleInvalid Rule = iota

	RuleMissingHandler
	RuleDuplicateHandler
	RuleInvalidThrowContext
	RuleThrowTypeMismatch
	RuleHandlerReturnMismatch
	RuleUnresolvedErrorType
	RuleUnreachableHandler
	RuleTryResultMismatch
	RuleFallibleInBranch
)

// String returns the canonical code of the rule.
func (r Rule) String() string {
	switch r {
	case RuleMissingHandler:
		return "E-MISSING-HANDLER"
	case RuleDuplicateHandler:
		return "E-DUPLICATE-HANDLER"
	case RuleInvalidThrowContext:
		return "E-INVALID-THROW-CONTEXT"
	case RuleThrowTypeMismatch:
		return "E-THROW-TYPE-MISMATCH"
	case RuleHandlerReturnMismatch:
		return "E-HANDLER-RETURN-MISMATCH"
	case RuleUnresolvedErrorType:
		return "E-UNRESOLVED-ERROR-TYPE"
	case RuleUnreachableHandler:
		return "W-UNREACHABLE-HANDLER"
	case RuleTryResultMismatch:
		return "E-TRY-RESULT-MISMATCH"
	case RuleFallibleInBranch:
		return "E-FALLIBLE-IN-BRANCH"
	default:
		return fmt.Sprintf("rule-unknown(%d)", r)
	}
}

// Description returns the human-readable explanation of the rule.
func (r Rule) Description() string {
	switch r {
	case RuleMissingHandler:
		return "Every error type produced in a try scope needs a catch clause."
	case RuleDuplicateHandler:
		return "An error type can be caught by only one clause of a construct."
	case RuleInvalidThrowContext:
		return "Throw is only allowed inside a catch clause body."
	case RuleThrowTypeMismatch:
		return "Thrown value must have the function's declared error type."
	case RuleHandlerReturnMismatch:
		return "Catch clause value must be assignable to the try block's success type."
	case RuleUnresolvedErrorType:
		return "Fallible statement has no static error type."
	case RuleUnreachableHandler:
		return "Catch clause handles an error type no statement of the try scope produces."
	case RuleTryResultMismatch:
		return "Try block value must be assignable to its success type."
	case RuleFallibleInBranch:
		return "Fallible call inside a branch or a nested block of a try scope must be bound by a try scope statement first."
	default:
		return fmt.Sprintf("unknown-rule(%d)", r)
	}
}

// Category returns the analysis stage the rule belongs to.
func (r Rule) Category() Category {
	switch r {
	case RuleUnresolvedErrorType, RuleFallibleInBranch:
		return CategoryStructural
	case RuleDuplicateHandler:
		return CategoryTable
	case RuleMissingHandler, RuleUnreachableHandler:
		return CategoryCoverage
	case RuleInvalidThrowContext, RuleThrowTypeMismatch, RuleHandlerReturnMismatch, RuleTryResultMismatch:
		return CategoryScopeType
	default:
		return categoryInvalid
	}
}

// Severity returns the default severity of the rule.
func (r Rule) Severity() Severity {
	if r == RuleUnreachableHandler {
		return SeverityWarning
	}

	return SeverityError
}

// Canonical constructors.

func MissingHandler() Rule        { return RuleMissingHandler }
func DuplicateHandler() Rule      { return RuleDuplicateHandler }
func InvalidThrowContext() Rule   { return RuleInvalidThrowContext }
func ThrowTypeMismatch() Rule     { return RuleThrowTypeMismatch }
func HandlerReturnMismatch() Rule { return RuleHandlerReturnMismatch }
func UnresolvedErrorType() Rule   { return RuleUnresolvedErrorType }
func UnreachableHandler() Rule    { return RuleUnreachableHandler }
func TryResultMismatch() Rule     { return RuleTryResultMismatch }
func FallibleInBranch() Rule      { return RuleFallibleInBranch }

// Category groups rules by the component that detects them.
type Category int

const (
	categoryInvalid Category = iota
	CategoryStructural
	CategoryTable
	CategoryCoverage
	CategoryScopeType
)

func (c Category) String() string {
	switch c {
	case CategoryStructural:
		return "structural"
	case CategoryTable:
		return "table"
	case CategoryCoverage:
		return "coverage"
	case CategoryScopeType:
		return "scope-type"
	default:
		return fmt.Sprintf("unknown-category(%d)", c)
	}
}

// Severity tells whether a diagnostic blocks lowering of its construct.
type Severity int

const (
	_ Severity = iota
	SeverityWarning
	SeverityError
)

// Fatal reports whether the severity blocks lowering.
func (s Severity) Fatal() bool {
	return s == SeverityError
}

func (s Severity) String() string {
	v, err := s.MarshalText()
	if err != nil {
		return fmt.Sprintf("severity-invalid(%d)", s)
	}

	return string(v)
}

var (
	_ encoding.TextUnmarshaler = (*Severity)(nil)
	_ encoding.TextMarshaler   = Severity(0)
)

func (s *Severity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "warning":
		*s = SeverityWarning
		return nil
	case "error":
		*s = SeverityError
		return nil
	default:
		return fmt.Errorf("unknown severity %q", b)
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	switch s {
	case SeverityWarning:
		return []byte("warning"), nil
	case SeverityError:
		return []byte("error"), nil
	default:
		return nil, fmt.Errorf("cannot marshal invalid Severity(%d)", s)
	}
}
