// Package shared contains common domain types, errors and the event mediator
// contract used across all domain packages. This package has zero external
// dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// ErrNotFound marks an absent record. Repositories and the aggregator
	// report absence as a nil result; this kind exists for callers that need
	// to promote absence into an error at the boundary.
	ErrNotFound = errors.New("entity not found")

	// ErrAccessDenied is returned when a role policy evaluates to false.
	ErrAccessDenied = errors.New("access denied")

	// ErrUnsupportedInteraction is returned for interaction types that have
	// no registered strategy.
	ErrUnsupportedInteraction = errors.New("unsupported interaction")

	// ErrNotAllowed is returned when an interaction precondition fails.
	ErrNotAllowed = errors.New("interaction not allowed")

	// ErrStorageFault wraps failures of the underlying store.
	ErrStorageFault = errors.New("storage fault")

	ErrInvalidInput = errors.New("invalid input")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "interaction", "profile", "postgres"
	Op      string // Operation that failed, e.g., "Toggle", "FindByUser"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// StorageFault wraps a store failure so callers can match it with
// errors.Is(err, ErrStorageFault) while keeping the driver error reachable.
// A nil err yields nil.
func StorageFault(domain, op string, err error) error {
	if err == nil {
		return nil
	}
	return WrapError(domain, op, ErrStorageFault, "storage operation failed", err)
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAccessDenied checks if the error is an authorization denial.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsUnsupportedInteraction checks if the interaction type was unknown.
func IsUnsupportedInteraction(err error) bool {
	return errors.Is(err, ErrUnsupportedInteraction)
}

// IsNotAllowed checks if an interaction precondition failed.
func IsNotAllowed(err error) bool {
	return errors.Is(err, ErrNotAllowed)
}

// IsStorageFault checks if the error came from the storage layer.
func IsStorageFault(err error) bool {
	return errors.Is(err, ErrStorageFault)
}
