// Package mocks provides mock implementations of the audit service interfaces for testing.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/carevault/internal/audit/domain"
)

// MockSigner is a mock implementation of Signer.
type MockSigner struct {
	mock.Mock
}

// NewMockSigner creates a mock that asserts its expectations on cleanup.
func NewMockSigner(t *testing.T) *MockSigner {
	m := &MockSigner{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Sign mocks the Sign method.
func (m *MockSigner) Sign(record *auditDomain.AuditRecord) ([]byte, error) {
	args := m.Called(record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Verify mocks the Verify method.
func (m *MockSigner) Verify(record *auditDomain.AuditRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

// MockMirror is a mock implementation of Mirror.
type MockMirror struct {
	mock.Mock
}

// NewMockMirror creates a mock that asserts its expectations on cleanup.
func NewMockMirror(t *testing.T) *MockMirror {
	m := &MockMirror{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Mirror mocks the Mirror method.
func (m *MockMirror) Mirror(ctx context.Context, record *auditDomain.AuditRecord, persisted bool) error {
	args := m.Called(ctx, record, persisted)
	return args.Error(0)
}
