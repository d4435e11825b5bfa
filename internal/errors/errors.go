// Package errors holds the sentinel errors shared by every bounded context.
//
// Use cases wrap one of these sentinels, repositories translate driver errors
// into them, and the HTTP layer maps them to status codes. Nothing outside the
// HTTP layer should know about status codes.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized means the caller is not authenticated.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the caller is authenticated but the access gate denied it.
	ErrForbidden = errors.New("forbidden")
	// ErrLocked means the account is locked after repeated failed logins.
	ErrLocked = errors.New("locked")
	// ErrUnavailable means a required dependency is missing, typically the
	// field encryption key.
	ErrUnavailable = errors.New("unavailable")
)

// New creates a package-level sentinel for a bounded context.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Is is errors.Is, re-exported so callers need only this package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
