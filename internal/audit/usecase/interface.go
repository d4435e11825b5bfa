// Package usecase implements the append-only audit trail for PII access.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/carevault/internal/audit/domain"
)

// AuditRepository is the primary audit store. It has no update or delete operations.
type AuditRepository interface {
	Create(ctx context.Context, record *auditDomain.AuditRecord) error
	List(
		ctx context.Context,
		offset, limit int,
		filter auditDomain.ListFilter,
	) ([]*auditDomain.AuditRecord, error)
}

// Sink records audit entries and exposes the trail to administrators.
type Sink interface {
	// Record signs and appends the entry to the primary store, then mirrors it
	// to the structured log stream. A primary store failure is returned wrapped
	// in ErrAuditWrite; a mirror failure is only logged.
	Record(ctx context.Context, record *auditDomain.AuditRecord) error
	List(
		ctx context.Context,
		offset, limit int,
		filter auditDomain.ListFilter,
	) ([]*auditDomain.AuditRecord, error)
	// Verify checks the signatures of every record created in [from, to].
	Verify(ctx context.Context, from, to time.Time) (*auditDomain.VerificationReport, error)
}
