// Package mocks provides mock implementations of the auth use case interfaces for testing.
package mocks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	authDomain "github.com/allisson/carevault/internal/auth/domain"
	authUseCase "github.com/allisson/carevault/internal/auth/usecase"
	transportDomain "github.com/allisson/carevault/internal/transport/domain"
)

// MockLoginUseCase is a mock implementation of LoginUseCase.
type MockLoginUseCase struct {
	mock.Mock
}

// NewMockLoginUseCase creates a mock that asserts its expectations on cleanup.
func NewMockLoginUseCase(t *testing.T) *MockLoginUseCase {
	m := &MockLoginUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Login mocks the Login method.
func (m *MockLoginUseCase) Login(
	ctx context.Context,
	credentials *transportDomain.Credentials,
) (*authDomain.Session, error) {
	args := m.Called(ctx, credentials)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Session), args.Error(1)
}

// Authenticate mocks the Authenticate method.
func (m *MockLoginUseCase) Authenticate(ctx context.Context, token string) (accessDomain.Actor, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(accessDomain.Actor), args.Error(1)
}

// MockUserUseCase is a mock implementation of UserUseCase.
type MockUserUseCase struct {
	mock.Mock
}

// NewMockUserUseCase creates a mock that asserts its expectations on cleanup.
func NewMockUserUseCase(t *testing.T) *MockUserUseCase {
	m := &MockUserUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create mocks the Create method.
func (m *MockUserUseCase) Create(ctx context.Context, input *authUseCase.CreateUserInput) (*authDomain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// Unlock mocks the Unlock method.
func (m *MockUserUseCase) Unlock(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}
