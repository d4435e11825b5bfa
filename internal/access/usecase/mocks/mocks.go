// Package mocks provides mock implementations of the access use case interfaces for testing.
package mocks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	accessUseCase "github.com/allisson/carevault/internal/access/usecase"
	auditDomain "github.com/allisson/carevault/internal/audit/domain"
)

func register(t *testing.T, m interface {
	Test(mock.TestingT)
	AssertExpectations(mock.TestingT) bool
}) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// MockOwnershipResolver is a mock implementation of OwnershipResolver.
type MockOwnershipResolver struct {
	mock.Mock
}

// NewMockOwnershipResolver creates a mock that asserts its expectations on cleanup.
func NewMockOwnershipResolver(t *testing.T) *MockOwnershipResolver {
	m := &MockOwnershipResolver{}
	register(t, m)
	return m
}

// ResolveOwner mocks the ResolveOwner method.
func (m *MockOwnershipResolver) ResolveOwner(
	ctx context.Context,
	resourceType accessDomain.ResourceType,
	resourceID uuid.UUID,
) (uuid.UUID, error) {
	args := m.Called(ctx, resourceType, resourceID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockCareTeamRepository is a mock implementation of CareTeamRepository.
type MockCareTeamRepository struct {
	mock.Mock
}

// NewMockCareTeamRepository creates a mock that asserts its expectations on cleanup.
func NewMockCareTeamRepository(t *testing.T) *MockCareTeamRepository {
	m := &MockCareTeamRepository{}
	register(t, m)
	return m
}

// IsAssigned mocks the IsAssigned method.
func (m *MockCareTeamRepository) IsAssigned(ctx context.Context, patientID, clinicianID uuid.UUID) (bool, error) {
	args := m.Called(ctx, patientID, clinicianID)
	return args.Bool(0), args.Error(1)
}

// Assign mocks the Assign method.
func (m *MockCareTeamRepository) Assign(ctx context.Context, assignment *accessDomain.CareTeamAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

// Remove mocks the Remove method.
func (m *MockCareTeamRepository) Remove(ctx context.Context, patientID, clinicianID uuid.UUID) error {
	args := m.Called(ctx, patientID, clinicianID)
	return args.Error(0)
}

// ListByPatient mocks the ListByPatient method.
func (m *MockCareTeamRepository) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
) ([]*accessDomain.CareTeamAssignment, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*accessDomain.CareTeamAssignment), args.Error(1)
}

// MockActorDirectory is a mock implementation of ActorDirectory.
type MockActorDirectory struct {
	mock.Mock
}

// NewMockActorDirectory creates a mock that asserts its expectations on cleanup.
func NewMockActorDirectory(t *testing.T) *MockActorDirectory {
	m := &MockActorDirectory{}
	register(t, m)
	return m
}

// GetActor mocks the GetActor method.
func (m *MockActorDirectory) GetActor(ctx context.Context, userID uuid.UUID) (*accessDomain.Actor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.Actor), args.Error(1)
}

// MockAuditRecorder is a mock implementation of AuditRecorder.
type MockAuditRecorder struct {
	mock.Mock
}

// NewMockAuditRecorder creates a mock that asserts its expectations on cleanup.
func NewMockAuditRecorder(t *testing.T) *MockAuditRecorder {
	m := &MockAuditRecorder{}
	register(t, m)
	return m
}

// Record mocks the Record method.
func (m *MockAuditRecorder) Record(ctx context.Context, record *auditDomain.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockGate is a mock implementation of Gate.
type MockGate struct {
	mock.Mock
}

// NewMockGate creates a mock that asserts its expectations on cleanup.
func NewMockGate(t *testing.T) *MockGate {
	m := &MockGate{}
	register(t, m)
	return m
}

// Authorize mocks the Authorize method.
func (m *MockGate) Authorize(ctx context.Context, req accessUseCase.AccessRequest) (*accessUseCase.Grant, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessUseCase.Grant), args.Error(1)
}

// MockCareTeamUseCase is a mock implementation of CareTeamUseCase.
type MockCareTeamUseCase struct {
	mock.Mock
}

// NewMockCareTeamUseCase creates a mock that asserts its expectations on cleanup.
func NewMockCareTeamUseCase(t *testing.T) *MockCareTeamUseCase {
	m := &MockCareTeamUseCase{}
	register(t, m)
	return m
}

// Assign mocks the Assign method.
func (m *MockCareTeamUseCase) Assign(
	ctx context.Context,
	admin accessDomain.Actor,
	patientID, clinicianID uuid.UUID,
) error {
	args := m.Called(ctx, admin, patientID, clinicianID)
	return args.Error(0)
}

// Remove mocks the Remove method.
func (m *MockCareTeamUseCase) Remove(
	ctx context.Context,
	admin accessDomain.Actor,
	patientID, clinicianID uuid.UUID,
) error {
	args := m.Called(ctx, admin, patientID, clinicianID)
	return args.Error(0)
}

// List mocks the List method.
func (m *MockCareTeamUseCase) List(
	ctx context.Context,
	patientID uuid.UUID,
) ([]*accessDomain.CareTeamAssignment, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*accessDomain.CareTeamAssignment), args.Error(1)
}
