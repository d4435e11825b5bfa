package domain

import (
	"github.com/allisson/carevault/internal/errors"
)

var (
	// ErrAuthorizationDenied indicates the access gate refused the request.
	ErrAuthorizationDenied = errors.Wrap(errors.ErrForbidden, "authorization denied")

	// ErrInvalidGrant indicates a missing grant or one issued for another resource.
	ErrInvalidGrant = errors.Wrap(errors.ErrForbidden, "invalid access grant")

	// ErrUnauthenticated indicates the request carries no actor.
	ErrUnauthenticated = errors.Wrap(errors.ErrUnauthorized, "authentication required")

	// ErrInvalidRole indicates an unknown role name.
	ErrInvalidRole = errors.Wrap(errors.ErrInvalidInput, "invalid role")

	// ErrUnknownResourceType indicates an unknown resource type.
	ErrUnknownResourceType = errors.Wrap(errors.ErrInvalidInput, "unknown resource type")

	// ErrResourceNotFound indicates the resource whose owner was requested does not exist.
	ErrResourceNotFound = errors.Wrap(errors.ErrNotFound, "resource not found")

	// ErrNotClinician indicates a care team assignment for a user who is not a clinician.
	ErrNotClinician = errors.Wrap(errors.ErrInvalidInput, "user is not a clinician")

	// ErrAssignmentNotFound indicates the care team assignment does not exist.
	ErrAssignmentNotFound = errors.Wrap(errors.ErrNotFound, "care team assignment not found")
)
