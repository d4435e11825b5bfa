// Package service provides password hashing and session token services for
// user authentication.
package service

import (
	"time"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	authDomain "github.com/allisson/carevault/internal/auth/domain"
)

// PasswordService hashes and verifies user passwords.
type PasswordService interface {
	// HashPassword hashes a plain text password using Argon2id.
	HashPassword(plainPassword string) (string, error)

	// ComparePassword reports whether plainPassword matches hashedPassword.
	// It runs in constant time with respect to the password.
	ComparePassword(plainPassword, hashedPassword string) bool
}

// TokenService issues and verifies signed session tokens.
type TokenService interface {
	// IssueToken signs a token carrying the user's id and role.
	IssueToken(user *authDomain.User) (token string, expiresAt time.Time, err error)

	// ParseToken verifies a token and returns the actor it was issued to.
	ParseToken(token string) (accessDomain.Actor, error)
}
