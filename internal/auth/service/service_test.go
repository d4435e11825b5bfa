package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	authDomain "github.com/allisson/carevault/internal/auth/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestPasswordService(t *testing.T) {
	service := NewPasswordService()

	t.Run("Success_HashAndCompare", func(t *testing.T) {
		hashed, err := service.HashPassword("S3cure!password")
		require.NoError(t, err)
		assert.Contains(t, hashed, "$argon2id$")
		assert.NotContains(t, hashed, "S3cure!password")

		assert.True(t, service.ComparePassword("S3cure!password", hashed))
		assert.False(t, service.ComparePassword("wrong", hashed))
	})

	t.Run("Error_MalformedHash", func(t *testing.T) {
		assert.False(t, service.ComparePassword("anything", "not-a-phc-hash"))
	})
}

func TestTokenService(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	user := &authDomain.User{ID: uuid.Must(uuid.NewV7()), Role: accessDomain.RoleClinician}

	t.Run("Success_RoundTrip", func(t *testing.T) {
		service, err := NewTokenService(testSecret, "carevault", time.Hour, clock)
		require.NoError(t, err)

		token, expiresAt, err := service.IssueToken(user)
		require.NoError(t, err)
		assert.Equal(t, now.Add(time.Hour), expiresAt)

		actor, err := service.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.Actor(), actor)
	})

	t.Run("Error_Expired", func(t *testing.T) {
		issuer, err := NewTokenService(testSecret, "carevault", time.Minute, clock)
		require.NoError(t, err)
		token, _, err := issuer.IssueToken(user)
		require.NoError(t, err)

		later, err := NewTokenService(testSecret, "carevault", time.Minute, func() time.Time {
			return now.Add(2 * time.Minute)
		})
		require.NoError(t, err)

		_, err = later.ParseToken(token)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Error_WrongSecret", func(t *testing.T) {
		issuer, err := NewTokenService(testSecret, "carevault", time.Hour, clock)
		require.NoError(t, err)
		token, _, err := issuer.IssueToken(user)
		require.NoError(t, err)

		other, err := NewTokenService(strings.Repeat("x", 32), "carevault", time.Hour, clock)
		require.NoError(t, err)

		_, err = other.ParseToken(token)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Error_WrongIssuer", func(t *testing.T) {
		issuer, err := NewTokenService(testSecret, "someone-else", time.Hour, clock)
		require.NoError(t, err)
		token, _, err := issuer.IssueToken(user)
		require.NoError(t, err)

		service, err := NewTokenService(testSecret, "carevault", time.Hour, clock)
		require.NoError(t, err)

		_, err = service.ParseToken(token)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Error_NoneAlgorithm", func(t *testing.T) {
		service, err := NewTokenService(testSecret, "carevault", time.Hour, clock)
		require.NoError(t, err)

		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "carevault",
				Subject:   user.ID.String(),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
			Role: "admin",
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.ParseToken(unsigned)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Error_WeakSecret", func(t *testing.T) {
		_, err := NewTokenService("short", "carevault", time.Hour, nil)
		assert.ErrorIs(t, err, ErrWeakTokenSecret)
	})
}
