// Package usecase implements user registration, login and session
// authentication.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	authDomain "github.com/allisson/carevault/internal/auth/domain"
	transportDomain "github.com/allisson/carevault/internal/transport/domain"
)

// UserRepository persists login accounts.
type UserRepository interface {
	Create(ctx context.Context, user *authDomain.User) error
	Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)
	GetByEmail(ctx context.Context, email string) (*authDomain.User, error)
	// UpdateLockState sets the failed attempt counter and lock expiry.
	UpdateLockState(ctx context.Context, userID uuid.UUID, failedAttempts int, lockedUntil *time.Time) error
}

// AuditRecorder is the subset of the audit sink login depends on.
type AuditRecorder interface {
	Record(ctx context.Context, record *auditDomain.AuditRecord) error
}

// ReplayGuard rejects stale credential payloads.
type ReplayGuard interface {
	Check(ts time.Time) error
}

// CreateUserInput contains the parameters for registering a user.
type CreateUserInput struct {
	Email    string
	Password string
	Role     accessDomain.Role
}

// UserUseCase manages login accounts.
type UserUseCase interface {
	// Create validates and registers a new user.
	Create(ctx context.Context, input *CreateUserInput) (*authDomain.User, error)

	// Unlock clears the lockout state of a user.
	Unlock(ctx context.Context, userID uuid.UUID) error
}

// LoginUseCase verifies credentials and session tokens.
type LoginUseCase interface {
	// Login verifies decrypted credentials and issues a session token.
	// Every attempt is audited.
	Login(ctx context.Context, credentials *transportDomain.Credentials) (*authDomain.Session, error)

	// Authenticate resolves a session token to the current actor.
	Authenticate(ctx context.Context, token string) (accessDomain.Actor, error)
}
