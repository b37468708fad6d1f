package schema

import (
	"errors"
	"fmt"
	"strings"
)

// RuleKind classifies a validation rule violation.
type RuleKind string

const (
	// RuleCoercion means a scalar value could not be normalized to its
	// declared type and no default policy applied.
	RuleCoercion RuleKind = "coercion"

	// RuleRequired means a non-defaultable field was absent or had the
	// wrong type.
	RuleRequired RuleKind = "required"

	// RuleCrossField means a refinement over the fully-coerced record
	// failed (e.g. a verified flag without its value field).
	RuleCrossField RuleKind = "cross-field"

	// RuleUnknownField means an import record carried a key that is
	// neither canonical nor custom-namespaced.
	RuleUnknownField RuleKind = "unknown-field"

	// RuleSizeLimit means a single record exceeded the serialized row
	// size ceiling.
	RuleSizeLimit RuleKind = "size-limit"

	// RuleBatch means a batch-level invariant failed (length out of
	// range, duplicate username).
	RuleBatch RuleKind = "batch"
)

// Violation is a single failed validation rule. Field is empty for
// record-wide and batch-wide rules.
type Violation struct {
	Field   string
	Kind    RuleKind
	Message string
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationError aggregates every rule violated by one record or one
// batch, so a human correcting the source data sees all problems in a
// single pass instead of one per retry.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return e.Violations[0].String()
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("%d rules violated: %s", len(e.Violations), strings.Join(msgs, "; "))
}

// Has reports whether any violation is of the given kind.
func (e *ValidationError) Has(kind RuleKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field string, kind RuleKind, format string, args ...any) {
	e.Violations = append(e.Violations, Violation{
		Field:   field,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

// orNil returns the error if it holds at least one violation.
func (e *ValidationError) orNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
