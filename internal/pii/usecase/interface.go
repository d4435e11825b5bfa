// Package usecase implements the PII record operations. Every path that
// returns plaintext runs authorize, then audit, then decrypt.
package usecase

import (
	"context"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	piiDomain "github.com/allisson/carevault/internal/pii/domain"
)

// RecordRepository persists PII records and their fields.
type RecordRepository interface {
	Create(ctx context.Context, record *piiDomain.Record) error
	Get(ctx context.Context, kind piiDomain.Kind, id uuid.UUID) (*piiDomain.Record, error)
	// UpdateFields replaces the stored values of names with those held by record.
	UpdateFields(ctx context.Context, record *piiDomain.Record, names []string) error
	// LookupExists reports whether another record of kind has value as the
	// clear lookup copy of field.
	LookupExists(ctx context.Context, kind piiDomain.Kind, field, value string, excludeID uuid.UUID) (bool, error)
	ListLegacyFields(ctx context.Context, limit int) ([]*piiDomain.LegacyField, error)
	// MigrateLegacyField stores the encrypted blob and lookup copy of a legacy
	// field and clears its plaintext. A nil encrypted or lookup leaves the column unchanged.
	MigrateLegacyField(ctx context.Context, recordID uuid.UUID, name string, encrypted []byte, lookup *string) error
}

// AuditRecorder is the subset of the audit sink the record use case depends on.
type AuditRecorder interface {
	Record(ctx context.Context, record *auditDomain.AuditRecord) error
}

// RevealResult is the outcome for one record of a batch reveal.
type RevealResult struct {
	RecordID uuid.UUID
	Record   *piiDomain.SafeRecord
	Err      error
}

// RecordUseCase defines the PII record operations.
type RecordUseCase interface {
	// Create validates, authorizes, encrypts and stores a new record for ownerID.
	Create(
		ctx context.Context,
		actor accessDomain.Actor,
		kind piiDomain.Kind,
		ownerID uuid.UUID,
		fields map[string]string,
	) (*piiDomain.SafeRecord, error)

	// Update replaces the given fields of an existing record.
	Update(
		ctx context.Context,
		actor accessDomain.Actor,
		kind piiDomain.Kind,
		id uuid.UUID,
		fields map[string]string,
	) (*piiDomain.SafeRecord, error)

	// View returns a masked projection. MaskNone is refused; use Reveal.
	View(
		ctx context.Context,
		actor accessDomain.Actor,
		kind piiDomain.Kind,
		id uuid.UUID,
		level piiDomain.MaskingLevel,
	) (*piiDomain.SafeRecord, error)

	// Reveal decrypts the requested fields, or every sensitive field when fields is empty.
	Reveal(
		ctx context.Context,
		actor accessDomain.Actor,
		kind piiDomain.Kind,
		id uuid.UUID,
		fields []string,
	) (*piiDomain.SafeRecord, error)

	// RevealBatch reveals several records. A denied or missing record is
	// reported in its result; audit and configuration failures abort the batch.
	RevealBatch(
		ctx context.Context,
		actor accessDomain.Actor,
		kind piiDomain.Kind,
		ids []uuid.UUID,
		fields []string,
	) ([]*RevealResult, error)
}

// LegacyEncryptionUseCase encrypts plaintext columns written before field
// encryption was introduced.
type LegacyEncryptionUseCase interface {
	// EncryptLegacyFields migrates legacy values batch by batch and returns how many were migrated.
	EncryptLegacyFields(ctx context.Context, batchSize int) (int, error)
}
