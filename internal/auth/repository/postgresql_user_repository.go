// Package repository implements persistence for login accounts.
//
// PostgreSQL uses native UUID types, MySQL uses BINARY(16) types.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	authDomain "github.com/allisson/carevault/internal/auth/domain"
	"github.com/allisson/carevault/internal/database"
	apperrors "github.com/allisson/carevault/internal/errors"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

const userColumns = `id, email, password_hash, role, is_active, failed_attempts, locked_until, created_at, updated_at`

// PostgreSQLUserRepository implements User persistence for PostgreSQL.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new user. A duplicate email returns ErrUserAlreadyExists.
func (p *PostgreSQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO users (` + userColumns + `) 
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.IsActive,
		user.FailedAttempts,
		user.LockedUntil,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return authDomain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Get retrieves a user by ID.
func (p *PostgreSQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUser(querier.QueryRowContext(ctx, query, userID), func(dst *uuid.UUID) any { return dst })
}

// GetByEmail retrieves a user by normalized email.
func (p *PostgreSQLUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	return scanUser(querier.QueryRowContext(ctx, query, email), func(dst *uuid.UUID) any { return dst })
}

// UpdateLockState sets the failed attempt counter and lock expiry.
func (p *PostgreSQLUserRepository) UpdateLockState(
	ctx context.Context,
	userID uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE users 
			  SET failed_attempts = $1, 
			  	  locked_until = $2,
				  updated_at = $3
			  WHERE id = $4`

	result, err := querier.ExecContext(ctx, query, failedAttempts, lockedUntil, time.Now().UTC(), userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user lock state")
	}
	return checkUserAffected(result)
}

// GetActor returns the access principal for a user.
func (p *PostgreSQLUserRepository) GetActor(ctx context.Context, userID uuid.UUID) (*accessDomain.Actor, error) {
	return actorOf(p.Get(ctx, userID))
}

// NewPostgreSQLUserRepository creates a new PostgreSQL User repository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}

// scanUser scans one users row. idDest adapts the id destination to the
// driver's uuid representation.
func scanUser(row *sql.Row, idDest func(*uuid.UUID) any) (*authDomain.User, error) {
	var (
		user        authDomain.User
		role        string
		lockedUntil sql.NullTime
	)

	err := row.Scan(
		idDest(&user.ID),
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.IsActive,
		&user.FailedAttempts,
		&lockedUntil,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	user.Role = accessDomain.Role(role)
	if lockedUntil.Valid {
		t := lockedUntil.Time
		user.LockedUntil = &t
	}
	return &user, nil
}

func actorOf(user *authDomain.User, err error) (*accessDomain.Actor, error) {
	if err != nil {
		return nil, err
	}
	actor := user.Actor()
	return &actor, nil
}

func checkUserAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return authDomain.ErrUserNotFound
	}
	return nil
}
