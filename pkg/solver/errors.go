package solver

import (
	"errors"
	"fmt"
)

// ErrorClass classifies a solver error for abort/continue handling.
type ErrorClass string

const (
	// ErrorClassFatal indicates a precondition failure that must abort the
	// whole scenario run: downstream years depend on every plant having a
	// defined technology, so substituting a default would silently corrupt
	// the rest of the simulation.
	ErrorClassFatal ErrorClass = "fatal"

	// ErrorClassNotFound indicates a missing lookup (plant, schedule, table
	// entry) that callers may be able to absorb.
	ErrorClassNotFound ErrorClass = "not_found"

	// ErrorClassValidation indicates invalid configuration or inputs detected
	// before the run starts.
	ErrorClassValidation ErrorClass = "validation"
)

// SolverError carries the full context of a failure: its class, a stable
// code, and the plant and year being evaluated when it occurred.
//
// nolint:revive // SolverError is intentionally named to distinguish from standard errors
type SolverError struct {
	Class   ErrorClass `json:"class"`
	Code    string     `json:"code,omitempty"`
	Message string     `json:"message"`
	Plant   string     `json:"plant,omitempty"`
	Year    int        `json:"year,omitempty"`
	Err     error      `json:"-"`
}

// Error implements the error interface.
func (e *SolverError) Error() string {
	ctx := ""
	if e.Plant != "" && e.Year != 0 {
		ctx = fmt.Sprintf(" (plant=%s, year=%d)", e.Plant, e.Year)
	} else if e.Plant != "" {
		ctx = fmt.Sprintf(" (plant=%s)", e.Plant)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s%s: %s", e.Class, e.Message, ctx, e.Err.Error())
	}
	return fmt.Sprintf("[%s] %s%s", e.Class, e.Message, ctx)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *SolverError) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *SolverError) Is(target error) bool {
	t, ok := target.(*SolverError)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// NewFatalError creates an error that aborts the scenario run.
func NewFatalError(message string, err error) *SolverError {
	return &SolverError{Class: ErrorClassFatal, Message: message, Err: err}
}

// NewNotFoundError creates a lookup-miss error.
func NewNotFoundError(message string, err error) *SolverError {
	return &SolverError{Class: ErrorClassNotFound, Message: message, Err: err}
}

// NewValidationError creates an invalid-input error.
func NewValidationError(message string, err error) *SolverError {
	return &SolverError{Class: ErrorClassValidation, Message: message, Err: err}
}

// WithCode adds a stable error code.
func (e *SolverError) WithCode(code string) *SolverError {
	e.Code = code
	return e
}

// WithPlant adds plant context.
func (e *SolverError) WithPlant(plant string) *SolverError {
	e.Plant = plant
	return e
}

// WithYear adds year context.
func (e *SolverError) WithYear(year int) *SolverError {
	e.Year = year
	return e
}

// IsFatal reports whether err is classified as fatal.
func IsFatal(err error) bool {
	var e *SolverError
	if errors.As(err, &e) {
		return e.Class == ErrorClassFatal
	}
	return false
}

// IsNotFound reports whether err is classified as a lookup miss.
func IsNotFound(err error) bool {
	var e *SolverError
	if errors.As(err, &e) {
		return e.Class == ErrorClassNotFound
	}
	return false
}

// Common error codes.
const (
	ErrCodeMissingTech       = "MISSING_START_TECH"
	ErrCodeRankingUnresolved = "RANKING_UNRESOLVED"
	ErrCodeUnknownPlant      = "UNKNOWN_PLANT"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodePolicyEvaluation  = "POLICY_EVALUATION_FAILED"
	ErrCodeScheduleInvariant = "SCHEDULE_INVARIANT"
)
