package utils

import "fmt"

// ValidationError represents an error occurring during data validation.
type ValidationError struct {
	Message string
}

// Error returns the error message string.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError with a specific message.
func NewValidationError(message string) error {
	return &ValidationError{
		Message: message,
	}
}

// NewValidationErrorf creates a new ValidationError with a formatted message.
func NewValidationErrorf(format string, args ...interface{}) error {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
	}
}

// InvariantKind identifies which chronological-data invariant was violated.
type InvariantKind int

const (
	// NonChronological means dates are not strictly increasing.
	NonChronological InvariantKind = iota
	// DuplicateDates means the same calendar date appears more than once.
	DuplicateDates
	// ColumnMismatch means the inference feature set does not match the
	// column set the model was trained on.
	ColumnMismatch
)

func (k InvariantKind) String() string {
	switch k {
	case NonChronological:
		return "non_chronological"
	case DuplicateDates:
		return "duplicate_dates"
	case ColumnMismatch:
		return "column_mismatch"
	default:
		return "unknown"
	}
}

// InvariantError signals a violated data invariant. These are fatal: they
// indicate an upstream pipeline bug and must never be silently corrected.
type InvariantError struct {
	Kind    InvariantKind
	Message string
}

// Error returns the error message string.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation (%s): %s", e.Kind, e.Message)
}

// NewInvariantErrorf creates an InvariantError of the given kind with a
// formatted message.
func NewInvariantErrorf(kind InvariantKind, format string, args ...interface{}) error {
	return &InvariantError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}
