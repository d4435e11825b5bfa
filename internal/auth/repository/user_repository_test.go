package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	authDomain "github.com/allisson/carevault/internal/auth/domain"
	apperrors "github.com/allisson/carevault/internal/errors"
	"github.com/allisson/carevault/internal/testutil"
)

var userFields = []string{
	"id", "email", "password_hash", "role", "is_active",
	"failed_attempts", "locked_until", "created_at", "updated_at",
}

func newUser() *authDomain.User {
	now := time.Now().UTC().Truncate(time.Second)
	return &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        "jane@example.com",
		PasswordHash: "$argon2id$hash",
		Role:         accessDomain.RoleClinician,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPostgreSQLUserRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLUserRepository(db)
		u := newUser()

		mock.ExpectExec(testutil.Query("INSERT INTO users")).
			WithArgs(u.ID, u.Email, u.PasswordHash, "clinician", true, 0, nil, u.CreatedAt, u.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), u))
	})

	t.Run("Error_DuplicateEmail", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLUserRepository(db)

		mock.ExpectExec(testutil.Query("INSERT INTO users")).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(context.Background(), newUser())
		assert.ErrorIs(t, err, authDomain.ErrUserAlreadyExists)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("Error_Database", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLUserRepository(db)

		mock.ExpectExec(testutil.Query("INSERT INTO users")).WillReturnError(errors.New("connection reset"))

		err := repo.Create(context.Background(), newUser())
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestPostgreSQLUserRepository_Get(t *testing.T) {
	t.Run("Success_WithLock", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLUserRepository(db)
		u := newUser()
		until := u.CreatedAt.Add(15 * time.Minute)

		mock.ExpectQuery(testutil.Query("FROM users WHERE id = $1")).
			WithArgs(u.ID).
			WillReturnRows(sqlmock.NewRows(userFields).AddRow(
				u.ID.String(), u.Email, u.PasswordHash, "clinician", true, 2, until, u.CreatedAt, u.UpdatedAt,
			))

		got, err := repo.Get(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, accessDomain.RoleClinician, got.Role)
		assert.Equal(t, 2, got.FailedAttempts)
		require.NotNil(t, got.LockedUntil)
		assert.Equal(t, until, *got.LockedUntil)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLUserRepository(db)

		mock.ExpectQuery(testutil.Query("FROM users WHERE id = $1")).
			WillReturnRows(sqlmock.NewRows(userFields))

		_, err := repo.Get(context.Background(), uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, authDomain.ErrUserNotFound)
	})
}

func TestPostgreSQLUserRepository_GetByEmail(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLUserRepository(db)
	u := newUser()

	mock.ExpectQuery(testutil.Query("FROM users WHERE email = $1")).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userFields).AddRow(
			u.ID.String(), u.Email, u.PasswordHash, "patient", false, 0, nil, u.CreatedAt, u.UpdatedAt,
		))

	got, err := repo.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, accessDomain.RolePatient, got.Role)
	assert.False(t, got.IsActive)
	assert.Nil(t, got.LockedUntil)
}

func TestPostgreSQLUserRepository_UpdateLockState(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLUserRepository(db)
		id := uuid.Must(uuid.NewV7())
		until := time.Now().UTC().Add(time.Minute)

		mock.ExpectExec(testutil.Query("UPDATE users")).
			WithArgs(0, &until, sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateLockState(context.Background(), id, 0, &until))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLUserRepository(db)

		mock.ExpectExec(testutil.Query("UPDATE users")).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateLockState(context.Background(), uuid.Must(uuid.NewV7()), 0, nil)
		assert.ErrorIs(t, err, authDomain.ErrUserNotFound)
	})
}

func TestPostgreSQLUserRepository_GetActor(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLUserRepository(db)
	u := newUser()

	mock.ExpectQuery(testutil.Query("FROM users WHERE id = $1")).
		WithArgs(u.ID).
		WillReturnRows(sqlmock.NewRows(userFields).AddRow(
			u.ID.String(), u.Email, u.PasswordHash, "admin", true, 0, nil, u.CreatedAt, u.UpdatedAt,
		))

	actor, err := repo.GetActor(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, accessDomain.Actor{ID: u.ID, Role: accessDomain.RoleAdmin}, *actor)
}

func TestMySQLUserRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewMySQLUserRepository(db)
		u := newUser()
		id, err := u.ID.MarshalBinary()
		require.NoError(t, err)

		mock.ExpectExec(testutil.Query("INSERT INTO users")).
			WithArgs(id, u.Email, u.PasswordHash, "clinician", true, 0, nil, u.CreatedAt, u.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), u))
	})

	t.Run("Error_DuplicateEmail", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewMySQLUserRepository(db)

		mock.ExpectExec(testutil.Query("INSERT INTO users")).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

		err := repo.Create(context.Background(), newUser())
		assert.ErrorIs(t, err, authDomain.ErrUserAlreadyExists)
	})
}

func TestMySQLUserRepository_GetByEmail(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewMySQLUserRepository(db)
		u := newUser()
		id, err := u.ID.MarshalBinary()
		require.NoError(t, err)

		mock.ExpectQuery(testutil.Query("FROM users WHERE email = ?")).
			WithArgs(u.Email).
			WillReturnRows(sqlmock.NewRows(userFields).AddRow(
				id, u.Email, u.PasswordHash, "clinician", true, 1, nil, u.CreatedAt, u.UpdatedAt,
			))

		got, err := repo.GetByEmail(context.Background(), u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, 1, got.FailedAttempts)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewMySQLUserRepository(db)

		mock.ExpectQuery(testutil.Query("FROM users WHERE email = ?")).
			WillReturnRows(sqlmock.NewRows(userFields))

		_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, authDomain.ErrUserNotFound)
	})
}

func TestMySQLUserRepository_UpdateLockState(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewMySQLUserRepository(db)
	userID := uuid.Must(uuid.NewV7())
	id, err := userID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectExec(testutil.Query("UPDATE users")).
		WithArgs(3, nil, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLockState(context.Background(), userID, 3, nil))
}
