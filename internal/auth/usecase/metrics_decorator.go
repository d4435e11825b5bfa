package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	authDomain "github.com/allisson/carevault/internal/auth/domain"
	"github.com/allisson/carevault/internal/metrics"
	transportDomain "github.com/allisson/carevault/internal/transport/domain"
)

// loginUseCaseWithMetrics decorates LoginUseCase with metrics instrumentation.
type loginUseCaseWithMetrics struct {
	next    LoginUseCase
	metrics metrics.BusinessMetrics
}

// NewLoginUseCaseWithMetrics wraps a LoginUseCase with metrics recording.
func NewLoginUseCaseWithMetrics(useCase LoginUseCase, m metrics.BusinessMetrics) LoginUseCase {
	return &loginUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Login records metrics for login attempts.
func (l *loginUseCaseWithMetrics) Login(
	ctx context.Context,
	credentials *transportDomain.Credentials,
) (*authDomain.Session, error) {
	start := time.Now()
	session, err := l.next.Login(ctx, credentials)

	metrics.Observe(ctx, l.metrics, "auth", "login", start, err)

	return session, err
}

// Authenticate records metrics for session token checks.
func (l *loginUseCaseWithMetrics) Authenticate(ctx context.Context, token string) (accessDomain.Actor, error) {
	start := time.Now()
	actor, err := l.next.Authenticate(ctx, token)

	metrics.Observe(ctx, l.metrics, "auth", "authenticate", start, err)

	return actor, err
}

// userUseCaseWithMetrics decorates UserUseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UserUseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UserUseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UserUseCase, m metrics.BusinessMetrics) UserUseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for user registration.
func (u *userUseCaseWithMetrics) Create(ctx context.Context, input *CreateUserInput) (*authDomain.User, error) {
	start := time.Now()
	user, err := u.next.Create(ctx, input)

	metrics.Observe(ctx, u.metrics, "auth", "user_create", start, err)

	return user, err
}

// Unlock records metrics for user unlock operations.
func (u *userUseCaseWithMetrics) Unlock(ctx context.Context, userID uuid.UUID) error {
	start := time.Now()
	err := u.next.Unlock(ctx, userID)

	metrics.Observe(ctx, u.metrics, "auth", "user_unlock", start, err)

	return err
}
