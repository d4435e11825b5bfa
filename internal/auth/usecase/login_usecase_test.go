package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	authDomain "github.com/allisson/carevault/internal/auth/domain"
	transportDomain "github.com/allisson/carevault/internal/transport/domain"
	transportService "github.com/allisson/carevault/internal/transport/service"
)

// mockUserRepository is a mock implementation of UserRepository for testing.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

func (m *mockUserRepository) UpdateLockState(
	ctx context.Context,
	userID uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
) error {
	return m.Called(ctx, userID, failedAttempts, lockedUntil).Error(0)
}

// mockPasswordService is a mock implementation of PasswordService for testing.
type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) HashPassword(plainPassword string) (string, error) {
	args := m.Called(plainPassword)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) ComparePassword(plainPassword, hashedPassword string) bool {
	return m.Called(plainPassword, hashedPassword).Bool(0)
}

// mockTokenService is a mock implementation of TokenService for testing.
type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) IssueToken(user *authDomain.User) (string, time.Time, error) {
	args := m.Called(user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockTokenService) ParseToken(token string) (accessDomain.Actor, error) {
	args := m.Called(token)
	return args.Get(0).(accessDomain.Actor), args.Error(1)
}

// mockAuditRecorder is a mock implementation of AuditRecorder for testing.
type mockAuditRecorder struct {
	mock.Mock
}

func (m *mockAuditRecorder) Record(ctx context.Context, record *auditDomain.AuditRecord) error {
	return m.Called(ctx, record).Error(0)
}

type loginFixture struct {
	repo      *mockUserRepository
	passwords *mockPasswordService
	tokens    *mockTokenService
	audit     *mockAuditRecorder
	now       time.Time
	useCase   LoginUseCase
}

func newLoginFixture(t *testing.T) *loginFixture {
	f := &loginFixture{
		repo:      &mockUserRepository{},
		passwords: &mockPasswordService{},
		tokens:    &mockTokenService{},
		audit:     &mockAuditRecorder{},
		now:       time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.useCase = NewLoginUseCase(
		f.repo,
		f.passwords,
		f.tokens,
		transportService.NewReplayGuard(5*time.Minute, clock),
		f.audit,
		LockoutPolicy{MaxAttempts: 3, Duration: 15 * time.Minute},
		clock,
	)
	t.Cleanup(func() {
		f.repo.AssertExpectations(t)
		f.passwords.AssertExpectations(t)
		f.tokens.AssertExpectations(t)
		f.audit.AssertExpectations(t)
	})
	return f
}

func (f *loginFixture) credentials(password string) *transportDomain.Credentials {
	return &transportDomain.Credentials{
		Email:     " Jane@Example.com",
		Password:  password,
		Timestamp: f.now.Add(-30 * time.Second).UnixMilli(),
	}
}

func (f *loginFixture) expectAudit(success bool, reason string) {
	f.audit.On("Record", mock.Anything, mock.MatchedBy(func(r *auditDomain.AuditRecord) bool {
		if r.Action != auditDomain.ActionLogin || r.Success != success {
			return false
		}
		if reason == "" {
			return r.Details == nil
		}
		return r.Details["reason"] == reason
	})).Return(nil).Once()
}

func testUser() *authDomain.User {
	return &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        "jane@example.com",
		PasswordHash: "$argon2id$hash",
		Role:         accessDomain.RoleClinician,
		IsActive:     true,
	}
}

func TestLoginUseCase_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_IssuesToken", func(t *testing.T) {
		f := newLoginFixture(t)
		user := testUser()
		expiresAt := f.now.Add(time.Hour)

		f.repo.On("GetByEmail", ctx, "jane@example.com").Return(user, nil).Once()
		f.passwords.On("ComparePassword", "correct", user.PasswordHash).Return(true).Once()
		f.tokens.On("IssueToken", user).Return("jwt-token", expiresAt, nil).Once()
		f.expectAudit(true, "")

		session, err := f.useCase.Login(ctx, f.credentials("correct"))
		require.NoError(t, err)
		assert.Equal(t, "jwt-token", session.Token)
		assert.Equal(t, expiresAt, session.ExpiresAt)
		assert.Equal(t, user, session.User)
	})

	t.Run("Success_ResetsFailedAttempts", func(t *testing.T) {
		f := newLoginFixture(t)
		user := testUser()
		user.FailedAttempts = 2

		f.repo.On("GetByEmail", ctx, "jane@example.com").Return(user, nil).Once()
		f.passwords.On("ComparePassword", "correct", user.PasswordHash).Return(true).Once()
		f.repo.On("UpdateLockState", ctx, user.ID, 0, (*time.Time)(nil)).Return(nil).Once()
		f.tokens.On("IssueToken", user).Return("jwt-token", f.now, nil).Once()
		f.expectAudit(true, "")

		_, err := f.useCase.Login(ctx, f.credentials("correct"))
		require.NoError(t, err)
	})

	t.Run("Error_ReplayedPayload", func(t *testing.T) {
		f := newLoginFixture(t)
		creds := f.credentials("correct")
		creds.Timestamp = f.now.Add(-10 * time.Minute).UnixMilli()
		f.expectAudit(false, "replay_detected")

		_, err := f.useCase.Login(ctx, creds)
		assert.ErrorIs(t, err, transportDomain.ErrReplayDetected)
	})

	t.Run("Error_UnknownEmail", func(t *testing.T) {
		f := newLoginFixture(t)
		f.repo.On("GetByEmail", ctx, "jane@example.com").Return(nil, authDomain.ErrUserNotFound).Once()
		f.expectAudit(false, "unknown_user")

		_, err := f.useCase.Login(ctx, f.credentials("correct"))
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
	})

	t.Run("Error_WrongPasswordCountsAttempt", func(t *testing.T) {
		f := newLoginFixture(t)
		user := testUser()

		f.repo.On("GetByEmail", ctx, "jane@example.com").Return(user, nil).Once()
		f.passwords.On("ComparePassword", "wrong", user.PasswordHash).Return(false).Once()
		f.repo.On("UpdateLockState", ctx, user.ID, 1, (*time.Time)(nil)).Return(nil).Once()
		f.expectAudit(false, "invalid_password")

		_, err := f.useCase.Login(ctx, f.credentials("wrong"))
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
	})

	t.Run("Error_LocksAtMaxAttempts", func(t *testing.T) {
		f := newLoginFixture(t)
		user := testUser()
		user.FailedAttempts = 2
		until := f.now.Add(15 * time.Minute)

		f.repo.On("GetByEmail", ctx, "jane@example.com").Return(user, nil).Once()
		f.passwords.On("ComparePassword", "wrong", user.PasswordHash).Return(false).Once()
		f.repo.On("UpdateLockState", ctx, user.ID, 0, &until).Return(nil).Once()
		f.expectAudit(false, "locked_now")

		_, err := f.useCase.Login(ctx, f.credentials("wrong"))
		assert.ErrorIs(t, err, authDomain.ErrUserLocked)
	})

	t.Run("Error_LockedSkipsPasswordCheck", func(t *testing.T) {
		f := newLoginFixture(t)
		user := testUser()
		until := f.now.Add(time.Minute)
		user.LockedUntil = &until

		f.repo.On("GetByEmail", ctx, "jane@example.com").Return(user, nil).Once()
		f.expectAudit(false, "locked")

		_, err := f.useCase.Login(ctx, f.credentials("correct"))
		assert.ErrorIs(t, err, authDomain.ErrUserLocked)
	})

	t.Run("Error_Inactive", func(t *testing.T) {
		f := newLoginFixture(t)
		user := testUser()
		user.IsActive = false

		f.repo.On("GetByEmail", ctx, "jane@example.com").Return(user, nil).Once()
		f.expectAudit(false, "inactive")

		_, err := f.useCase.Login(ctx, f.credentials("correct"))
		assert.ErrorIs(t, err, authDomain.ErrUserInactive)
	})

	t.Run("Error_AuditFailureBlocksSession", func(t *testing.T) {
		f := newLoginFixture(t)
		user := testUser()
		auditErr := errors.Join(auditDomain.ErrAuditWrite, errors.New("db down"))

		f.repo.On("GetByEmail", ctx, "jane@example.com").Return(user, nil).Once()
		f.passwords.On("ComparePassword", "correct", user.PasswordHash).Return(true).Once()
		f.tokens.On("IssueToken", user).Return("jwt-token", f.now, nil).Once()
		f.audit.On("Record", mock.Anything, mock.Anything).Return(auditErr).Once()

		session, err := f.useCase.Login(ctx, f.credentials("correct"))
		assert.Nil(t, session)
		assert.ErrorIs(t, err, auditDomain.ErrAuditWrite)
	})
}

func TestLoginUseCase_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_UsesCurrentRole", func(t *testing.T) {
		f := newLoginFixture(t)
		user := testUser()
		user.Role = accessDomain.RoleAdmin

		f.tokens.On("ParseToken", "jwt").
			Return(accessDomain.Actor{ID: user.ID, Role: accessDomain.RoleClinician}, nil).Once()
		f.repo.On("Get", ctx, user.ID).Return(user, nil).Once()

		actor, err := f.useCase.Authenticate(ctx, "jwt")
		require.NoError(t, err)
		assert.Equal(t, accessDomain.RoleAdmin, actor.Role)
	})

	t.Run("Error_InvalidToken", func(t *testing.T) {
		f := newLoginFixture(t)
		f.tokens.On("ParseToken", "bad").Return(accessDomain.Actor{}, authDomain.ErrInvalidToken).Once()

		_, err := f.useCase.Authenticate(ctx, "bad")
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Error_DeletedUser", func(t *testing.T) {
		f := newLoginFixture(t)
		id := uuid.Must(uuid.NewV7())
		f.tokens.On("ParseToken", "jwt").Return(accessDomain.Actor{ID: id, Role: accessDomain.RolePatient}, nil).Once()
		f.repo.On("Get", ctx, id).Return(nil, authDomain.ErrUserNotFound).Once()

		_, err := f.useCase.Authenticate(ctx, "jwt")
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Error_Inactive", func(t *testing.T) {
		f := newLoginFixture(t)
		user := testUser()
		user.IsActive = false
		f.tokens.On("ParseToken", "jwt").Return(user.Actor(), nil).Once()
		f.repo.On("Get", ctx, user.ID).Return(user, nil).Once()

		_, err := f.useCase.Authenticate(ctx, "jwt")
		assert.ErrorIs(t, err, authDomain.ErrUserInactive)
	})
}
