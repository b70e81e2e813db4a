package models

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyEnrolled indicates the animal already has a feeder program.
	ErrAlreadyEnrolled = errors.New("animal already enrolled in a feeder program")
	// ErrAmbiguousBreeding indicates several open records could own an outcome.
	ErrAmbiguousBreeding = errors.New("more than one open breeding record matches")
	// ErrOverlappingBreeding indicates the dam already has an open record for the same window.
	ErrOverlappingBreeding = errors.New("dam already has an open breeding record for this window")
	// ErrInvalidTransition indicates a breeding status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid breeding status transition")
	// ErrNotEligible indicates the animal cannot take part in the requested operation.
	ErrNotEligible = errors.New("animal not eligible")
)

// ValidationError rejects a command whose input is incomplete or breaks a
// domain rule. Nothing is written when it is returned.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidBecause builds a ValidationError wrapping a sentinel.
func InvalidBecause(field string, cause error) error {
	return &ValidationError{Field: field, Reason: cause.Error(), Err: cause}
}

// ReferenceError reports a command that names a record that does not exist.
type ReferenceError struct {
	Kind string
	ID   string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Missing builds a ReferenceError.
func Missing(kind, id string) error {
	return &ReferenceError{Kind: kind, ID: id}
}

// IntegrityViolation describes a broken internal invariant found in state.
type IntegrityViolation struct {
	Entity string
	ID     string
	Detail string
}

func (e *IntegrityViolation) Error() string {
	return fmt.Sprintf("integrity violation on %s %s: %s", e.Entity, e.ID, e.Detail)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsReference reports whether err is, or wraps, a ReferenceError.
func IsReference(err error) bool {
	var target *ReferenceError
	return errors.As(err, &target)
}
