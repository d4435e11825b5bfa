package domain

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/carevault/internal/errors"
)

func TestParseRole(t *testing.T) {
	for _, name := range []string{"admin", "clinician", "patient"} {
		role, err := ParseRole(name)
		require.NoError(t, err)
		assert.Equal(t, Role(name), role)
	}

	_, err := ParseRole("root")
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRole_IsElevated(t *testing.T) {
	assert.True(t, RoleAdmin.IsElevated())
	assert.False(t, RoleClinician.IsElevated())
	assert.False(t, RolePatient.IsElevated())
}

func TestParseResourceType(t *testing.T) {
	rt, err := ParseResourceType("patient")
	require.NoError(t, err)
	assert.Equal(t, ResourcePatient, rt)

	_, err = ParseResourceType("invoice")
	assert.ErrorIs(t, err, ErrUnknownResourceType)
}

func TestActorContext(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)

	_, ok = ActorFromContext(WithActor(context.Background(), Actor{}))
	assert.False(t, ok)

	actor := Actor{ID: uuid.Must(uuid.NewV7()), Role: RoleClinician}
	got, ok := ActorFromContext(WithActor(context.Background(), actor))
	assert.True(t, ok)
	assert.Equal(t, actor, got)
}

func TestErrorMapping(t *testing.T) {
	assert.ErrorIs(t, ErrAuthorizationDenied, apperrors.ErrForbidden)
	assert.ErrorIs(t, ErrInvalidGrant, apperrors.ErrForbidden)
	assert.ErrorIs(t, ErrUnauthenticated, apperrors.ErrUnauthorized)
}
