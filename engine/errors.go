/*
errors.go - Centralized error types for the engine

PURPOSE:
  All engine error types in one place. Compliance violations are NOT
  errors (see types.go); errors here cover the two lower tiers:

  1. Input validation - malformed records rejected at the boundary
  2. Missing references - dangling shift codes, unknown employees

  The engine itself is permissive about both: a malformed clock string
  contributes zero minutes, and a dangling reference is skipped, so one
  bad record never aborts a batch. These errors exist for callers that
  want to surface problems instead of silently absorbing them.

USAGE:
  if errors.Is(err, engine.ErrUnknownShiftCode) { ... }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidClock is returned when an HH:MM string cannot be parsed.
	ErrInvalidClock = errors.New("invalid clock value")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrUnknownShiftCode is returned when an entry references a shift
	// template that was not supplied.
	ErrUnknownShiftCode = errors.New("unknown shift code")

	// ErrUnknownEmployee is returned when an entry references an employee
	// that was not supplied.
	ErrUnknownEmployee = errors.New("unknown employee")

	// ErrResolverRequired is returned when an operation needs a holiday
	// resolver and none was injected.
	ErrResolverRequired = errors.New("holiday resolver required")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError tags a validation failure with the offending field, for the
// boundary layer that first accepts records.
type FieldError struct {
	Field   string
	Value   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s (got %q)", e.Field, e.Message, e.Value)
}

// UnknownShiftCodeError reports a dangling template reference.
type UnknownShiftCodeError struct {
	EmployeeID string
	Day        Date
	ShiftCode  string
}

func (e *UnknownShiftCodeError) Error() string {
	return fmt.Sprintf("entry %s/%s references unknown shift code %q",
		e.EmployeeID, e.Day, e.ShiftCode)
}

func (e *UnknownShiftCodeError) Unwrap() error { return ErrUnknownShiftCode }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe) ||
		errors.Is(err, ErrInvalidClock) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing reference.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownShiftCode) ||
		errors.Is(err, ErrUnknownEmployee)
}
