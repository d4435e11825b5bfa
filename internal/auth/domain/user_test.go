package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
)

func TestUser_IsLocked(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	tests := []struct {
		name        string
		lockedUntil *time.Time
		expected    bool
	}{
		{"never_locked", nil, false},
		{"lock_active", &future, true},
		{"lock_expired", &past, false},
		{"lock_ends_now", &now, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{LockedUntil: tt.lockedUntil}
			assert.Equal(t, tt.expected, u.IsLocked(now))
		})
	}
}

func TestUser_Actor(t *testing.T) {
	id := uuid.Must(uuid.NewV7())
	u := &User{ID: id, Role: accessDomain.RoleClinician}
	assert.Equal(t, accessDomain.Actor{ID: id, Role: accessDomain.RoleClinician}, u.Actor())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
}
