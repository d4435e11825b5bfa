// Package usecase implements the access gate that must approve every PII
// disclosure, and administration of the care team relationships it consults.
package usecase

import (
	"context"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	auditDomain "github.com/allisson/carevault/internal/audit/domain"
)

// OwnershipResolver finds the user that owns a resource.
type OwnershipResolver interface {
	ResolveOwner(
		ctx context.Context,
		resourceType accessDomain.ResourceType,
		resourceID uuid.UUID,
	) (uuid.UUID, error)
}

// CareTeamRepository persists clinician to patient assignments.
type CareTeamRepository interface {
	IsAssigned(ctx context.Context, patientID, clinicianID uuid.UUID) (bool, error)
	Assign(ctx context.Context, assignment *accessDomain.CareTeamAssignment) error
	Remove(ctx context.Context, patientID, clinicianID uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*accessDomain.CareTeamAssignment, error)
}

// ActorDirectory looks up the role of a registered user.
type ActorDirectory interface {
	GetActor(ctx context.Context, userID uuid.UUID) (*accessDomain.Actor, error)
}

// AuditRecorder is the subset of the audit sink the gate depends on.
type AuditRecorder interface {
	Record(ctx context.Context, record *auditDomain.AuditRecord) error
}

// AccessRequest describes one attempt to touch a resource.
type AccessRequest struct {
	Actor        accessDomain.Actor
	ResourceType accessDomain.ResourceType
	ResourceID   uuid.UUID
	Action       auditDomain.Action
	// KnownOwner skips the ownership lookup when the caller already loaded the resource.
	KnownOwner *uuid.UUID
	// Fields lists the field names the caller intends to disclose, for the audit trail.
	Fields []string
}

// Gate authorizes access to PII. Every call writes exactly one audit record
// before returning, whatever the outcome.
type Gate interface {
	Authorize(ctx context.Context, req AccessRequest) (*Grant, error)
}

// CareTeamUseCase manages care team assignments.
type CareTeamUseCase interface {
	Assign(ctx context.Context, admin accessDomain.Actor, patientID, clinicianID uuid.UUID) error
	Remove(ctx context.Context, admin accessDomain.Actor, patientID, clinicianID uuid.UUID) error
	List(ctx context.Context, patientID uuid.UUID) ([]*accessDomain.CareTeamAssignment, error)
}
