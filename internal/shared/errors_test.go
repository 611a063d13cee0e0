package shared

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("name", "must not be empty")

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("expected validation error to unwrap to ErrInvalidInput")
	}
	if !strings.Contains(err.Error(), "name must not be empty") {
		t.Errorf("unexpected message: %s", err.Error())
	}

	var target *ValidationError
	wrapped := fmt.Errorf("create regiment: %w", err)
	if !errors.As(wrapped, &target) || target.Field != "name" {
		t.Errorf("expected errors.As to find field name, got %+v", target)
	}
}

func TestClassify(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want FailureKind
	}{
		{name: "nil", err: nil, want: FailureNone},
		{name: "validation", err: NewValidationError("date", "is required"), want: FailureValidation},
		{name: "wrapped invalid argument", err: fmt.Errorf("flag: %w", ErrInvalidArgument), want: FailureValidation},
		{name: "missing argument", err: ErrMissingArgument, want: FailureValidation},
		{name: "api", err: fmt.Errorf("%w: status 500", ErrAPIRequest), want: FailureBackend},
		{name: "unknown", err: errors.New("disk on fire"), want: FailureBackend},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFailure(t *testing.T) {
	if NewFailure("load regiments", nil) != nil {
		t.Error("expected nil failure for nil error")
	}

	f := NewFailure("load regiments", ErrServiceUnavailable)
	if f.Kind != FailureBackend {
		t.Errorf("expected backend kind, got %v", f.Kind)
	}
	if !errors.Is(f, ErrServiceUnavailable) {
		t.Error("expected failure to unwrap to cause")
	}
	if !strings.Contains(f.Error(), "load regiments failed (backend)") {
		t.Errorf("unexpected message: %s", f.Error())
	}
}
