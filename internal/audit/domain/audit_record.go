// Package domain defines the audit trail entities for PII access.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action names the operation an audit record describes.
type Action string

const (
	// ActionPIIRead is a disclosure of decrypted fields.
	ActionPIIRead Action = "pii.read"
	// ActionPIIMaskedRead is a partially masked projection of a record.
	ActionPIIMaskedRead Action = "pii.read_masked"
	// ActionPIIWrite is an encryption and store of fields.
	ActionPIIWrite Action = "pii.write"
	// ActionPIIDecryptFailure reports fields that failed to decrypt during a disclosure.
	ActionPIIDecryptFailure Action = "pii.decrypt_failure"
	// ActionCareTeamChange is an assignment or removal of a clinician.
	ActionCareTeamChange Action = "care_team.change"
	// ActionLogin is a credential verification attempt.
	ActionLogin Action = "auth.login"
	// ActionTransportDecrypt is a failed transport envelope decryption.
	ActionTransportDecrypt Action = "transport.decrypt"
)

// RequestMetadata describes the request that caused an audit record.
type RequestMetadata struct {
	RequestID string `json:"request_id,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Method    string `json:"method,omitempty"`
	Path      string `json:"path,omitempty"`
}

// IsZero reports whether no metadata was captured.
func (m RequestMetadata) IsZero() bool {
	return m == RequestMetadata{}
}

// AuditRecord is one append-only entry of the PII access trail. Records are
// written for granted and denied attempts alike and are never updated or
// deleted by the application.
type AuditRecord struct {
	ID              uuid.UUID
	ActorID         uuid.UUID
	ActorRole       string
	Action          Action
	Resource        string
	ResourceID      string
	Success         bool
	ErrorMessage    string
	RequestMetadata RequestMetadata
	Details         map[string]any
	CreatedAt       time.Time
	Signature       []byte
}

// IsSigned reports whether the record carries a signature.
func (r *AuditRecord) IsSigned() bool {
	return len(r.Signature) > 0
}

// ListFilter narrows audit record listings. Zero values mean no filter.
type ListFilter struct {
	ActorID    *uuid.UUID
	ResourceID string
	Action     Action
	From       *time.Time
	To         *time.Time
}

// VerificationReport summarizes a signature verification run.
type VerificationReport struct {
	TotalChecked  int64
	SignedCount   int64
	UnsignedCount int64
	ValidCount    int64
	InvalidCount  int64
	InvalidIDs    []uuid.UUID
}
