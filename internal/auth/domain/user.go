// Package domain defines the registered users who log in to the portal and
// the session issued to them.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
)

// User is a login account. Profile PII lives in a separate encrypted record
// owned by the user; only the normalized login email is kept here.
type User struct {
	ID             uuid.UUID
	Email          string
	PasswordHash   string
	Role           accessDomain.Role
	IsActive       bool
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLocked reports whether the account is locked at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Actor returns the principal the access gate sees for this user.
func (u *User) Actor() accessDomain.Actor {
	return accessDomain.Actor{ID: u.ID, Role: u.Role}
}

// NormalizeEmail lowercases and trims an email for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}
