// Package mocks provides mock implementations of the PII use case interfaces for testing.
package mocks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	piiDomain "github.com/allisson/carevault/internal/pii/domain"
	piiUseCase "github.com/allisson/carevault/internal/pii/usecase"
)

func register(t *testing.T, m interface {
	Test(mock.TestingT)
	AssertExpectations(mock.TestingT) bool
}) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// MockRecordRepository is a mock implementation of RecordRepository.
type MockRecordRepository struct {
	mock.Mock
}

// NewMockRecordRepository creates a mock that asserts its expectations on cleanup.
func NewMockRecordRepository(t *testing.T) *MockRecordRepository {
	m := &MockRecordRepository{}
	register(t, m)
	return m
}

// Create mocks the Create method.
func (m *MockRecordRepository) Create(ctx context.Context, record *piiDomain.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockRecordRepository) Get(ctx context.Context, kind piiDomain.Kind, id uuid.UUID) (*piiDomain.Record, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*piiDomain.Record), args.Error(1)
}

// UpdateFields mocks the UpdateFields method.
func (m *MockRecordRepository) UpdateFields(ctx context.Context, record *piiDomain.Record, names []string) error {
	args := m.Called(ctx, record, names)
	return args.Error(0)
}

// LookupExists mocks the LookupExists method.
func (m *MockRecordRepository) LookupExists(
	ctx context.Context,
	kind piiDomain.Kind,
	field, value string,
	excludeID uuid.UUID,
) (bool, error) {
	args := m.Called(ctx, kind, field, value, excludeID)
	return args.Bool(0), args.Error(1)
}

// ListLegacyFields mocks the ListLegacyFields method.
func (m *MockRecordRepository) ListLegacyFields(ctx context.Context, limit int) ([]*piiDomain.LegacyField, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*piiDomain.LegacyField), args.Error(1)
}

// MigrateLegacyField mocks the MigrateLegacyField method.
func (m *MockRecordRepository) MigrateLegacyField(
	ctx context.Context,
	recordID uuid.UUID,
	name string,
	encrypted []byte,
	lookup *string,
) error {
	args := m.Called(ctx, recordID, name, encrypted, lookup)
	return args.Error(0)
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

// MockRecordUseCase is a mock implementation of RecordUseCase.
type MockRecordUseCase struct {
	mock.Mock
}

// NewMockRecordUseCase creates a mock that asserts its expectations on cleanup.
func NewMockRecordUseCase(t *testing.T) *MockRecordUseCase {
	m := &MockRecordUseCase{}
	register(t, m)
	return m
}

func safeRecord(args mock.Arguments) (*piiDomain.SafeRecord, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*piiDomain.SafeRecord), args.Error(1)
}

// Create mocks the Create method.
func (m *MockRecordUseCase) Create(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	ownerID uuid.UUID,
	fields map[string]string,
) (*piiDomain.SafeRecord, error) {
	return safeRecord(m.Called(ctx, actor, kind, ownerID, fields))
}

// Update mocks the Update method.
func (m *MockRecordUseCase) Update(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	id uuid.UUID,
	fields map[string]string,
) (*piiDomain.SafeRecord, error) {
	return safeRecord(m.Called(ctx, actor, kind, id, fields))
}

// View mocks the View method.
func (m *MockRecordUseCase) View(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	id uuid.UUID,
	level piiDomain.MaskingLevel,
) (*piiDomain.SafeRecord, error) {
	return safeRecord(m.Called(ctx, actor, kind, id, level))
}

// Reveal mocks the Reveal method.
func (m *MockRecordUseCase) Reveal(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	id uuid.UUID,
	fields []string,
) (*piiDomain.SafeRecord, error) {
	return safeRecord(m.Called(ctx, actor, kind, id, fields))
}

// RevealBatch mocks the RevealBatch method.
func (m *MockRecordUseCase) RevealBatch(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	ids []uuid.UUID,
	fields []string,
) ([]*piiUseCase.RevealResult, error) {
	args := m.Called(ctx, actor, kind, ids, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*piiUseCase.RevealResult), args.Error(1)
}

// MockLegacyEncryptionUseCase is a mock implementation of LegacyEncryptionUseCase.
type MockLegacyEncryptionUseCase struct {
	mock.Mock
}

// NewMockLegacyEncryptionUseCase creates a mock that asserts its expectations on cleanup.
func NewMockLegacyEncryptionUseCase(t *testing.T) *MockLegacyEncryptionUseCase {
	m := &MockLegacyEncryptionUseCase{}
	register(t, m)
	return m
}

// EncryptLegacyFields mocks the EncryptLegacyFields method.
func (m *MockLegacyEncryptionUseCase) EncryptLegacyFields(ctx context.Context, batchSize int) (int, error) {
	args := m.Called(ctx, batchSize)
	return args.Int(0), args.Error(1)
}
