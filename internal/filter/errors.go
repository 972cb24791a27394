package filter

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownColumn is wrapped by ConfigurationError.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrKindMismatch marks a criterion placed on a column it cannot apply to.
	ErrKindMismatch = errors.New("criterion does not apply to column kind")
	// ErrUnsupportedCriterion marks a criterion with an unknown variant.
	ErrUnsupportedCriterion = errors.New("unsupported criterion")
)

// ConfigurationError reports a criterion referencing a column that is not
// in the snapshot. The criterion is skipped.
type ConfigurationError struct {
	Column string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("filter on %q skipped: %v", e.Column, ErrUnknownColumn)
}

func (e *ConfigurationError) Unwrap() error { return ErrUnknownColumn }

// EvaluationError reports a criterion that could not be applied to its
// column. The criterion is treated as absent.
type EvaluationError struct {
	Column string
	Reason string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("filter on %q ignored: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("filter on %q ignored: %s: %v", e.Column, e.Reason, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
