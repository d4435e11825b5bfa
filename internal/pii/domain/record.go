package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/carevault/internal/crypto/domain"
)

const (
	// Redacted replaces every sensitive value in a fully masked projection.
	Redacted = "[REDACTED]"

	// DecryptionFailed replaces a field that could not be decrypted in a batch.
	DecryptionFailed = "[Decryption Failed]"
)

// MaskingLevel controls how much of each sensitive value a projection shows.
type MaskingLevel string

const (
	MaskNone    MaskingLevel = "none"
	MaskPartial MaskingLevel = "partial"
	MaskFull    MaskingLevel = "full"
)

// ParseMaskingLevel defaults an empty string to full masking.
func ParseMaskingLevel(s string) (MaskingLevel, error) {
	switch MaskingLevel(s) {
	case "":
		return MaskFull, nil
	case MaskNone, MaskPartial, MaskFull:
		return MaskingLevel(s), nil
	default:
		return "", ErrInvalidMaskingLevel
	}
}

// Record is a stored PII record. Values are never held in plaintext here
// except for clear lookup copies and legacy rows written before encryption
// was introduced.
type Record struct {
	ID          uuid.UUID
	Kind        Kind
	OwnerID     uuid.UUID
	Encrypted   map[string]cryptoDomain.StoredBlob
	Legacy      map[string]string
	Passthrough map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewRecord returns an empty record with initialized maps.
func NewRecord(id uuid.UUID, kind Kind, ownerID uuid.UUID) *Record {
	return &Record{
		ID:          id,
		Kind:        kind,
		OwnerID:     ownerID,
		Encrypted:   make(map[string]cryptoDomain.StoredBlob),
		Legacy:      make(map[string]string),
		Passthrough: make(map[string]string),
	}
}

// HasCiphertext reports whether field has a non-empty encrypted blob.
func (r *Record) HasCiphertext(field string) bool {
	blob, ok := r.Encrypted[field]
	return ok && !blob.IsZero()
}

// StoragePlan is the output of splitting a set of fields for persistence.
type StoragePlan struct {
	Encrypted   map[string]*cryptoDomain.EncryptedField
	Passthrough map[string]string
}

// Apply copies the plan into r, replacing any previous value of the planned
// fields. A planned encrypted field clears its legacy plaintext.
func (p *StoragePlan) Apply(r *Record) error {
	for name, field := range p.Encrypted {
		blob, err := field.Blob()
		if err != nil {
			return err
		}
		r.Encrypted[name] = blob
		delete(r.Legacy, name)
	}
	for name, value := range p.Passthrough {
		r.Passthrough[name] = value
	}
	return nil
}

// Fields returns the names touched by the plan.
func (p *StoragePlan) Fields() []string {
	seen := make(map[string]struct{}, len(p.Encrypted)+len(p.Passthrough))
	names := make([]string, 0, len(p.Encrypted)+len(p.Passthrough))
	for name := range p.Encrypted {
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for name := range p.Passthrough {
		if _, ok := seen[name]; !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// SafeRecord is the outward-facing projection of a record.
type SafeRecord struct {
	ID               uuid.UUID
	Kind             Kind
	OwnerID          uuid.UUID
	Masking          MaskingLevel
	Fields           map[string]string
	HasEncryptedData map[string]bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FailedFields returns the names of fields that carry the decryption failure sentinel.
func (s *SafeRecord) FailedFields() []string {
	var failed []string
	for name, value := range s.Fields {
		if value == DecryptionFailed {
			failed = append(failed, name)
		}
	}
	slices.Sort(failed)
	return failed
}

// FieldError is one rejected value.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of validating PII before encryption.
type ValidationResult struct {
	IsValid bool
	Errors  []FieldError
}

// LegacyField is a plaintext value written before field encryption existed.
type LegacyField struct {
	RecordID uuid.UUID
	Kind     Kind
	Name     string
	Value    string
}
