package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	authDomain "github.com/allisson/carevault/internal/auth/domain"
	authService "github.com/allisson/carevault/internal/auth/service"
	customValidation "github.com/allisson/carevault/internal/validation"
)

// passwordPolicy is applied to every new password.
var passwordPolicy = customValidation.PasswordStrength{
	MinLength:      12,
	RequireUpper:   true,
	RequireLower:   true,
	RequireNumber:  true,
	RequireSpecial: true,
}

type userUseCase struct {
	repo      UserRepository
	passwords authService.PasswordService
}

// Create hashes the password before anything is stored.
func (u *userUseCase) Create(ctx context.Context, input *CreateUserInput) (*authDomain.User, error) {
	email := authDomain.NormalizeEmail(input.Email)

	err := validation.Errors{
		"email":    validation.Validate(email, validation.Required, customValidation.Email),
		"password": validation.Validate(input.Password, validation.Required, passwordPolicy),
		"role": validation.Validate(string(input.Role), validation.Required, validation.In(
			string(accessDomain.RoleAdmin),
			string(accessDomain.RoleClinician),
			string(accessDomain.RolePatient),
		)),
	}.Filter()
	if err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	hashed, err := u.passwords.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        email,
		PasswordHash: hashed,
		Role:         input.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userUseCase) Unlock(ctx context.Context, userID uuid.UUID) error {
	return u.repo.UpdateLockState(ctx, userID, 0, nil)
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(repo UserRepository, passwords authService.PasswordService) UserUseCase {
	return &userUseCase{
		repo:      repo,
		passwords: passwords,
	}
}
