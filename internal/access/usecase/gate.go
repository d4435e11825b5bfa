package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	apperrors "github.com/allisson/carevault/internal/errors"
)

type gate struct {
	owners   OwnershipResolver
	careTeam CareTeamRepository
	audit    AuditRecorder
}

// NewGate creates the access gate.
func NewGate(owners OwnershipResolver, careTeam CareTeamRepository, audit AuditRecorder) Gate {
	return &gate{
		owners:   owners,
		careTeam: careTeam,
		audit:    audit,
	}
}

// Authorize decides, records, then returns. Rules are checked in order and the
// first match wins: self, elevated role, care team relationship, deny.
func (g *gate) Authorize(ctx context.Context, req AccessRequest) (*Grant, error) {
	decision, decideErr := g.decide(ctx, req)

	record := &auditDomain.AuditRecord{
		ID:         uuid.Must(uuid.NewV7()),
		ActorID:    req.Actor.ID,
		ActorRole:  string(req.Actor.Role),
		Action:     req.Action,
		Resource:   string(req.ResourceType),
		ResourceID: req.ResourceID.String(),
		Success:    decision.Granted,
		Details:    map[string]any{"reason": string(decision.Reason)},
		CreatedAt:  time.Now().UTC(),
	}
	if len(req.Fields) > 0 {
		record.Details["fields"] = req.Fields
	}

	switch {
	case decideErr != nil:
		record.ErrorMessage = decideErr.Error()
	case !decision.Granted:
		record.ErrorMessage = accessDomain.ErrAuthorizationDenied.Error()
	}

	if err := g.audit.Record(ctx, record); err != nil {
		return nil, err
	}

	if decideErr != nil {
		return nil, decideErr
	}
	if !decision.Granted {
		return nil, accessDomain.ErrAuthorizationDenied
	}

	return &Grant{
		actor:        req.Actor,
		resourceType: req.ResourceType,
		resourceID:   req.ResourceID,
		action:       req.Action,
		reason:       decision.Reason,
		auditID:      record.ID,
		issuedAt:     record.CreatedAt,
	}, nil
}

func (g *gate) decide(ctx context.Context, req AccessRequest) (accessDomain.AccessDecision, error) {
	deny := func(reason accessDomain.Reason) accessDomain.AccessDecision {
		return accessDomain.AccessDecision{Granted: false, Reason: reason}
	}

	if req.Actor.IsZero() {
		return deny(accessDomain.ReasonUnauthenticated), accessDomain.ErrUnauthenticated
	}
	if _, err := accessDomain.ParseResourceType(string(req.ResourceType)); err != nil {
		return deny(accessDomain.ReasonLookupFailed), err
	}

	var owner uuid.UUID
	if req.KnownOwner != nil {
		owner = *req.KnownOwner
	} else {
		resolved, err := g.owners.ResolveOwner(ctx, req.ResourceType, req.ResourceID)
		if err != nil {
			return deny(accessDomain.ReasonLookupFailed), apperrors.Wrap(err, "failed to resolve resource owner")
		}
		owner = resolved
	}

	if owner == req.Actor.ID {
		return accessDomain.AccessDecision{Granted: true, Reason: accessDomain.ReasonSelf}, nil
	}

	if req.Actor.Role.IsElevated() {
		return accessDomain.AccessDecision{Granted: true, Reason: accessDomain.ReasonElevatedRole}, nil
	}

	if req.Actor.Role == accessDomain.RoleClinician && req.ResourceType == accessDomain.ResourcePatient {
		assigned, err := g.careTeam.IsAssigned(ctx, owner, req.Actor.ID)
		if err != nil {
			return deny(accessDomain.ReasonLookupFailed), apperrors.Wrap(err, "failed to check care team")
		}
		if assigned {
			return accessDomain.AccessDecision{Granted: true, Reason: accessDomain.ReasonCareTeam}, nil
		}
	}

	return deny(accessDomain.ReasonNoRelationship), nil
}
