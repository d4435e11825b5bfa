// Package service provides the PII orchestrator: field classification, the
// storage split, masking, grant-checked batch decryption and validation.
package service

import (
	"context"

	accessUseCase "github.com/allisson/carevault/internal/access/usecase"
	piiDomain "github.com/allisson/carevault/internal/pii/domain"
)

// Orchestrator turns domain field maps into stored records and stored records
// into safe projections.
type Orchestrator interface {
	// PrepareForStorage encrypts the sensitive fields and splits off the clear
	// ones. A single encryption failure fails the whole call.
	PrepareForStorage(kind piiDomain.Kind, fields map[string]string) (*piiDomain.StoragePlan, error)

	// PrepareForResponse projects record at the given masking level. Partial and
	// unmasked projections decrypt, so they require a grant covering the record.
	// An empty which selects every field of the kind.
	PrepareForResponse(
		ctx context.Context,
		grant *accessUseCase.Grant,
		record *piiDomain.Record,
		level piiDomain.MaskingLevel,
		which []string,
	) (*piiDomain.SafeRecord, error)

	// DecryptFields decrypts the requested fields concurrently. A field that
	// fails to decrypt is reported as piiDomain.DecryptionFailed and the batch
	// continues. Fields with neither ciphertext nor legacy plaintext are omitted.
	DecryptFields(
		ctx context.Context,
		grant *accessUseCase.Grant,
		record *piiDomain.Record,
		which []string,
	) (map[string]string, error)

	// ValidatePII checks the provided values before encryption.
	ValidatePII(kind piiDomain.Kind, fields map[string]string) piiDomain.ValidationResult
}
