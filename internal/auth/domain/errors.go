package domain

import (
	"github.com/allisson/carevault/internal/errors"
)

// Authentication errors.
var (
	// ErrUserNotFound indicates a user with the specified ID or email was not found.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrUserInactive indicates the account exists but has been disabled.
	ErrUserInactive = errors.Wrap(errors.ErrForbidden, "user is inactive")

	// ErrUserLocked indicates too many failed login attempts.
	ErrUserLocked = errors.Wrap(errors.ErrLocked, "user is locked")

	// ErrInvalidToken indicates a missing, malformed, expired or forged session token.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid session token")
)
