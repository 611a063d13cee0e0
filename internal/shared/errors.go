package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Backend and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRegimentNotFound   = fmt.Errorf("regiment not found")
	ErrPieceNotFound      = fmt.Errorf("practice piece not found")
	ErrNoActivePiece      = fmt.Errorf("no active practice piece")
	ErrSubscriptionClosed = fmt.Errorf("subscription closed")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidPayload  = fmt.Errorf("invalid payload")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// ValidationError reports a single field that failed validation.
//
// It unwraps to [ErrInvalidInput] so callers can match with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a [ValidationError] for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// FailureKind separates failures the user can fix from failures of the backend.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureValidation
	FailureBackend
)

func (k FailureKind) String() string {
	switch k {
	case FailureValidation:
		return "validation"
	case FailureBackend:
		return "backend"
	default:
		return "none"
	}
}

// Classify maps err onto a [FailureKind].
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrMissingArgument):
		return FailureValidation
	default:
		return FailureBackend
	}
}

// Failure is the single result type views render for a failed operation.
type Failure struct {
	Kind FailureKind
	Op   string
	Err  error
}

// NewFailure wraps err for op. It returns nil when err is nil.
func NewFailure(op string, err error) *Failure {
	if err == nil {
		return nil
	}
	return &Failure{Kind: Classify(err), Op: op, Err: err}
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", f.Op, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
