// Package apperr holds the error taxonomy shared by the services and the CLI.
// Callers classify failures with errors.Is / errors.As.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrValidation marks input rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrPermissionDenied marks an action the actor's role or ownership does not allow.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrConflict marks a uniqueness or referential conflict.
	ErrConflict = errors.New("conflict")
	// ErrAuthentication is the single, generic login failure.
	ErrAuthentication = errors.New("invalid email or password")
)

// PermissionError carries the reason shown to the user.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string { return e.Reason }

func (e *PermissionError) Unwrap() error { return ErrPermissionDenied }

// Denied builds a PermissionError.
func Denied(format string, args ...any) error {
	return &PermissionError{Reason: fmt.Sprintf(format, args...)}
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// AssociationError refuses an account deletion while rows still reference it.
type AssociationError struct {
	ClientsCount   int64
	ContractsCount int64
	EventsCount    int64
}

func (e *AssociationError) Error() string {
	return fmt.Sprintf("account is still referenced by %d client(s), %d contract(s), %d event(s); reassign them first",
		e.ClientsCount, e.ContractsCount, e.EventsCount)
}

func (e *AssociationError) Unwrap() error { return ErrConflict }

// Any reports whether at least one row references the account.
func (e *AssociationError) Any() bool {
	return e.ClientsCount > 0 || e.ContractsCount > 0 || e.EventsCount > 0
}

// Expected reports whether err is one of the failures a user can act on,
// as opposed to a backend fault.
func Expected(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAuthentication)
}
