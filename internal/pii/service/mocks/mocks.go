// Package mocks provides mock implementations of the PII service interfaces for testing.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	accessUseCase "github.com/allisson/carevault/internal/access/usecase"
	piiDomain "github.com/allisson/carevault/internal/pii/domain"
)

// MockOrchestrator is a mock implementation of Orchestrator.
type MockOrchestrator struct {
	mock.Mock
}

// NewMockOrchestrator creates a mock that asserts its expectations on cleanup.
func NewMockOrchestrator(t *testing.T) *MockOrchestrator {
	m := &MockOrchestrator{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// PrepareForStorage mocks the PrepareForStorage method.
func (m *MockOrchestrator) PrepareForStorage(
	kind piiDomain.Kind,
	fields map[string]string,
) (*piiDomain.StoragePlan, error) {
	args := m.Called(kind, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*piiDomain.StoragePlan), args.Error(1)
}

// PrepareForResponse mocks the PrepareForResponse method.
func (m *MockOrchestrator) PrepareForResponse(
	ctx context.Context,
	grant *accessUseCase.Grant,
	record *piiDomain.Record,
	level piiDomain.MaskingLevel,
	which []string,
) (*piiDomain.SafeRecord, error) {
	args := m.Called(ctx, grant, record, level, which)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*piiDomain.SafeRecord), args.Error(1)
}

// DecryptFields mocks the DecryptFields method.
func (m *MockOrchestrator) DecryptFields(
	ctx context.Context,
	grant *accessUseCase.Grant,
	record *piiDomain.Record,
	which []string,
) (map[string]string, error) {
	args := m.Called(ctx, grant, record, which)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

// ValidatePII mocks the ValidatePII method.
func (m *MockOrchestrator) ValidatePII(kind piiDomain.Kind, fields map[string]string) piiDomain.ValidationResult {
	args := m.Called(kind, fields)
	return args.Get(0).(piiDomain.ValidationResult)
}
