// Package domain defines actors, roles and access decisions for PII authorization.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the coarse permission tier of an actor.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleClinician Role = "clinician"
	RolePatient   Role = "patient"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleClinician, RolePatient:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// IsElevated reports whether the role may access any resource.
func (r Role) IsElevated() bool {
	return r == RoleAdmin
}

// Actor is the authenticated principal performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// IsZero reports whether the actor is unauthenticated.
func (a Actor) IsZero() bool {
	return a.ID == uuid.Nil
}

// ResourceType names the kind of record being accessed.
type ResourceType string

const (
	// ResourceUser is a user's own profile record.
	ResourceUser ResourceType = "user"
	// ResourcePatient is a patient's medical record.
	ResourcePatient ResourceType = "patient"
)

// ParseResourceType validates a resource type name.
func ParseResourceType(s string) (ResourceType, error) {
	switch t := ResourceType(s); t {
	case ResourceUser, ResourcePatient:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownResourceType, s)
	}
}

// Reason explains an access decision. It is recorded in the audit trail.
type Reason string

const (
	ReasonSelf            Reason = "self"
	ReasonElevatedRole    Reason = "elevated_role"
	ReasonCareTeam        Reason = "care_team"
	ReasonNoRelationship  Reason = "no_relationship"
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonLookupFailed    Reason = "lookup_failed"
)

// AccessDecision is the outcome of one authorization check. It is never
// persisted on its own; it is reflected into exactly one audit record.
type AccessDecision struct {
	Granted bool
	Reason  Reason
}

// CareTeamAssignment links a clinician to a patient they treat.
type CareTeamAssignment struct {
	PatientID   uuid.UUID
	ClinicianID uuid.UUID
	AssignedBy  uuid.UUID
	CreatedAt   time.Time
}
