package app

import (
	"database/sql"
	"fmt"

	accessUseCase "github.com/allisson/carevault/internal/access/usecase"
	authHTTP "github.com/allisson/carevault/internal/auth/http"
	authRepository "github.com/allisson/carevault/internal/auth/repository"
	authService "github.com/allisson/carevault/internal/auth/service"
	authUseCase "github.com/allisson/carevault/internal/auth/usecase"
)

// userStore is what the user repositories provide: account persistence and
// the actor lookups of the care team use case.
type userStore interface {
	authUseCase.UserRepository
	accessUseCase.ActorDirectory
}

type authComponents struct {
	userRepository  lazy[userStore]
	passwordService lazy[authService.PasswordService]
	tokenService    lazy[authService.TokenService]
	loginUseCase    lazy[authUseCase.LoginUseCase]
	userUseCase     lazy[authUseCase.UserUseCase]
	handler         lazy[*authHTTP.AuthHandler]
}

// UserRepository returns the login account repository.
func (c *Container) UserRepository() (userStore, error) {
	return c.auth.userRepository.get(func() (userStore, error) {
		return byDriver(c, "user repository",
			func(db *sql.DB) userStore { return authRepository.NewPostgreSQLUserRepository(db) },
			func(db *sql.DB) userStore { return authRepository.NewMySQLUserRepository(db) },
		)
	})
}

// PasswordService returns the password hashing service.
func (c *Container) PasswordService() authService.PasswordService {
	svc, _ := c.auth.passwordService.get(func() (authService.PasswordService, error) {
		return authService.NewPasswordService(), nil
	})
	return svc
}

// TokenService returns the session token service.
func (c *Container) TokenService() (authService.TokenService, error) {
	return c.auth.tokenService.get(func() (authService.TokenService, error) {
		svc, err := authService.NewTokenService(
			c.config.AuthTokenSecret,
			c.config.AuthTokenIssuer,
			c.config.AuthTokenExpiration,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create token service: %w", err)
		}
		return svc, nil
	})
}

// LoginUseCase returns the login use case wrapped with metrics.
func (c *Container) LoginUseCase() (authUseCase.LoginUseCase, error) {
	return c.auth.loginUseCase.get(func() (authUseCase.LoginUseCase, error) {
		repo, err := c.UserRepository()
		if err != nil {
			return nil, err
		}
		tokens, err := c.TokenService()
		if err != nil {
			return nil, err
		}
		sink, err := c.AuditSink()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		useCase := authUseCase.NewLoginUseCase(
			repo,
			c.PasswordService(),
			tokens,
			c.ReplayGuard(),
			sink,
			authUseCase.LockoutPolicy{
				MaxAttempts: c.config.LockoutMaxAttempts,
				Duration:    c.config.LockoutDuration,
			},
			nil,
		)
		return authUseCase.NewLoginUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// UserUseCase returns the user administration use case wrapped with metrics.
func (c *Container) UserUseCase() (authUseCase.UserUseCase, error) {
	return c.auth.userUseCase.get(func() (authUseCase.UserUseCase, error) {
		repo, err := c.UserRepository()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}
		useCase := authUseCase.NewUserUseCase(repo, c.PasswordService())
		return authUseCase.NewUserUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// AuthHandler returns the auth HTTP handler.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	return c.auth.handler.get(func() (*authHTTP.AuthHandler, error) {
		login, err := c.LoginUseCase()
		if err != nil {
			return nil, err
		}
		users, err := c.UserUseCase()
		if err != nil {
			return nil, err
		}
		return authHTTP.NewAuthHandler(login, users, c.config.TransportEncryptionEnabled, c.Logger()), nil
	})
}
