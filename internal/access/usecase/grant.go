package usecase

import (
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	auditDomain "github.com/allisson/carevault/internal/audit/domain"
)

// Grant is proof that the gate approved a request and its audit record was
// written. Its fields are unexported so only the gate can issue one.
type Grant struct {
	actor        accessDomain.Actor
	resourceType accessDomain.ResourceType
	resourceID   uuid.UUID
	action       auditDomain.Action
	reason       accessDomain.Reason
	auditID      uuid.UUID
	issuedAt     time.Time
}

// Actor returns the actor the grant was issued to.
func (g *Grant) Actor() accessDomain.Actor { return g.actor }

// ResourceID returns the resource the grant covers.
func (g *Grant) ResourceID() uuid.UUID { return g.resourceID }

// Reason returns the rule that granted access.
func (g *Grant) Reason() accessDomain.Reason { return g.reason }

// AuditID returns the ID of the audit record written for the decision.
func (g *Grant) AuditID() uuid.UUID { return g.auditID }

// IssuedAt returns when the grant was issued.
func (g *Grant) IssuedAt() time.Time { return g.issuedAt }

// Covers returns ErrInvalidGrant unless the grant was issued by the gate for
// the given resource.
func (g *Grant) Covers(resourceType accessDomain.ResourceType, resourceID uuid.UUID) error {
	if g == nil || g.auditID == uuid.Nil || g.actor.IsZero() {
		return accessDomain.ErrInvalidGrant
	}
	if g.resourceType != resourceType || g.resourceID != resourceID {
		return accessDomain.ErrInvalidGrant
	}
	return nil
}
