package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	authDomain "github.com/allisson/carevault/internal/auth/domain"
	"github.com/allisson/carevault/internal/database"
	apperrors "github.com/allisson/carevault/internal/errors"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// MySQLUserRepository implements User persistence for MySQL.
type MySQLUserRepository struct {
	db *sql.DB
}

// Create inserts a new user. A duplicate email returns ErrUserAlreadyExists.
func (m *MySQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO users (` + userColumns + `) 
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return authDomain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Get retrieves a user by ID.
func (m *MySQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	return m.scan(querier.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by normalized email.
func (m *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	return m.scan(querier.QueryRowContext(ctx, query, email))
}

// UpdateLockState sets the failed attempt counter and lock expiry.
func (m *MySQLUserRepository) UpdateLockState(
	ctx context.Context,
	userID uuid.UUID,
	failedAttempts int,
	lockedUntil *time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `UPDATE users 
			  SET failed_attempts = ?, 
			  	  locked_until = ?,
				  updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, failedAttempts, lockedUntil, time.Now().UTC(), id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user lock state")
	}
	return checkUserAffected(result)
}

// GetActor returns the access principal for a user.
func (m *MySQLUserRepository) GetActor(ctx context.Context, userID uuid.UUID) (*accessDomain.Actor, error) {
	return actorOf(m.Get(ctx, userID))
}

func (m *MySQLUserRepository) scan(row *sql.Row) (*authDomain.User, error) {
	var idBytes []byte
	user, err := scanUser(row, func(*uuid.UUID) any { return &idBytes })
	if err != nil {
		return nil, err
	}
	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}
	return user, nil
}

// NewMySQLUserRepository creates a new MySQL User repository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}
