package solver

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSolverError_ErrorIncludesContext(t *testing.T) {
	err := NewFatalError("switch type lookup failed", nil).
		WithCode(ErrCodeUnknownPlant).
		WithPlant("Acme Steel").
		WithYear(2025)

	msg := err.Error()
	if !strings.Contains(msg, "fatal") {
		t.Errorf("Expected class in message, got %q", msg)
	}
	if !strings.Contains(msg, "plant=Acme Steel") || !strings.Contains(msg, "year=2025") {
		t.Errorf("Expected plant and year context, got %q", msg)
	}
}

func TestSolverError_Unwrap(t *testing.T) {
	cause := errors.New("no schedule")
	err := NewFatalError("lookup failed", cause)
	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the wrapped cause")
	}
}

func TestSolverError_IsMatchesClassAndCode(t *testing.T) {
	err := NewValidationError("bad input", nil).WithCode(ErrCodeValidation)
	target := &SolverError{Class: ErrorClassValidation, Code: ErrCodeValidation}
	if !errors.Is(err, target) {
		t.Error("Expected errors.Is match on class and code")
	}

	other := &SolverError{Class: ErrorClassFatal, Code: ErrCodeValidation}
	if errors.Is(err, other) {
		t.Error("Expected class mismatch to fail errors.Is")
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(NewFatalError("boom", nil)) {
		t.Error("Expected fatal error to report fatal")
	}
	if IsFatal(NewNotFoundError("missing", nil)) {
		t.Error("Expected not-found error not to report fatal")
	}
	if IsFatal(errors.New("plain")) {
		t.Error("Expected plain error not to report fatal")
	}
}

func TestIsFatal_Wrapped(t *testing.T) {
	err := fmt.Errorf("run aborted: %w", NewFatalError("boom", nil))
	if !IsFatal(err) {
		t.Error("Expected wrapped fatal error to report fatal")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NewNotFoundError("missing", nil)) {
		t.Error("Expected not-found error to report not found")
	}
	if IsNotFound(NewFatalError("boom", nil)) {
		t.Error("Expected fatal error not to report not found")
	}
}
