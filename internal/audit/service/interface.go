// Package service provides signing and mirroring for audit records.
package service

import (
	"context"

	auditDomain "github.com/allisson/carevault/internal/audit/domain"
)

// Signer produces and checks tamper-evident signatures for audit records.
type Signer interface {
	// Sign returns the record signature, or nil when no signing key is configured.
	Sign(record *auditDomain.AuditRecord) ([]byte, error)

	// Verify returns ErrSignatureInvalid if the record signature does not match.
	Verify(record *auditDomain.AuditRecord) error
}

// Mirror copies audit records to a secondary stream for operational visibility.
type Mirror interface {
	Mirror(ctx context.Context, record *auditDomain.AuditRecord, persisted bool) error
}
