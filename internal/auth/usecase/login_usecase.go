package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	authDomain "github.com/allisson/carevault/internal/auth/domain"
	authService "github.com/allisson/carevault/internal/auth/service"
	transportDomain "github.com/allisson/carevault/internal/transport/domain"
)

// LockoutPolicy controls account lockout after repeated failures.
type LockoutPolicy struct {
	MaxAttempts int
	Duration    time.Duration
}

type loginUseCase struct {
	repo      UserRepository
	passwords authService.PasswordService
	tokens    authService.TokenService
	replay    ReplayGuard
	audit     AuditRecorder
	lockout   LockoutPolicy
	now       func() time.Time
}

// Login checks, in order: replay window, account existence, active flag,
// lockout and password. Unknown emails and wrong passwords return the same
// error.
func (l *loginUseCase) Login(
	ctx context.Context,
	credentials *transportDomain.Credentials,
) (*authDomain.Session, error) {
	if err := l.replay.Check(credentials.IssuedAt()); err != nil {
		return nil, l.fail(ctx, nil, "replay_detected", err)
	}

	user, err := l.repo.GetByEmail(ctx, authDomain.NormalizeEmail(credentials.Email))
	if err != nil {
		if errors.Is(err, authDomain.ErrUserNotFound) {
			return nil, l.fail(ctx, nil, "unknown_user", authDomain.ErrInvalidCredentials)
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, l.fail(ctx, user, "inactive", authDomain.ErrUserInactive)
	}

	now := l.now().UTC()
	if user.IsLocked(now) {
		return nil, l.fail(ctx, user, "locked", authDomain.ErrUserLocked)
	}

	if !l.passwords.ComparePassword(credentials.Password, user.PasswordHash) {
		return nil, l.registerFailure(ctx, user, now)
	}

	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		if err := l.repo.UpdateLockState(ctx, user.ID, 0, nil); err != nil {
			return nil, err
		}
	}

	token, expiresAt, err := l.tokens.IssueToken(user)
	if err != nil {
		return nil, err
	}

	if err := l.audit.Record(ctx, loginRecord(user, true, "", "")); err != nil {
		return nil, err
	}

	return &authDomain.Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// registerFailure counts a wrong password and locks the account once the
// policy limit is reached.
func (l *loginUseCase) registerFailure(ctx context.Context, user *authDomain.User, now time.Time) error {
	attempts := user.FailedAttempts + 1
	var lockedUntil *time.Time
	result := authDomain.ErrInvalidCredentials
	reason := "invalid_password"

	if l.lockout.MaxAttempts > 0 && attempts >= l.lockout.MaxAttempts {
		until := now.Add(l.lockout.Duration)
		lockedUntil = &until
		attempts = 0
		result = authDomain.ErrUserLocked
		reason = "locked_now"
	}

	if err := l.repo.UpdateLockState(ctx, user.ID, attempts, lockedUntil); err != nil {
		return err
	}
	return l.fail(ctx, user, reason, result)
}

// fail audits a rejected attempt and returns cause. An audit failure replaces
// cause so the caller sees a server error rather than a quiet rejection.
func (l *loginUseCase) fail(ctx context.Context, user *authDomain.User, reason string, cause error) error {
	if err := l.audit.Record(ctx, loginRecord(user, false, reason, cause.Error())); err != nil {
		return err
	}
	return cause
}

func loginRecord(user *authDomain.User, success bool, reason, message string) *auditDomain.AuditRecord {
	record := &auditDomain.AuditRecord{
		ActorRole:    "anonymous",
		Action:       auditDomain.ActionLogin,
		Resource:     string(accessDomain.ResourceUser),
		Success:      success,
		ErrorMessage: message,
	}
	if reason != "" {
		record.Details = map[string]any{"reason": reason}
	}
	if user != nil {
		record.ActorID = user.ID
		record.ActorRole = string(user.Role)
		record.ResourceID = user.ID.String()
	}
	return record
}

// Authenticate reloads the user so that deactivation and role changes take
// effect before the token expires.
func (l *loginUseCase) Authenticate(ctx context.Context, token string) (accessDomain.Actor, error) {
	claimed, err := l.tokens.ParseToken(token)
	if err != nil {
		return accessDomain.Actor{}, err
	}

	user, err := l.repo.Get(ctx, claimed.ID)
	if err != nil {
		if errors.Is(err, authDomain.ErrUserNotFound) {
			return accessDomain.Actor{}, authDomain.ErrInvalidToken
		}
		return accessDomain.Actor{}, fmt.Errorf("failed to load session user: %w", err)
	}
	if !user.IsActive {
		return accessDomain.Actor{}, authDomain.ErrUserInactive
	}

	return user.Actor(), nil
}

// NewLoginUseCase creates a new LoginUseCase. now may be nil to use time.Now.
func NewLoginUseCase(
	repo UserRepository,
	passwords authService.PasswordService,
	tokens authService.TokenService,
	replay ReplayGuard,
	audit AuditRecorder,
	lockout LockoutPolicy,
	now func() time.Time,
) LoginUseCase {
	if now == nil {
		now = time.Now
	}
	return &loginUseCase{
		repo:      repo,
		passwords: passwords,
		tokens:    tokens,
		replay:    replay,
		audit:     audit,
		lockout:   lockout,
		now:       now,
	}
}
