package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	authDomain "github.com/allisson/carevault/internal/auth/domain"
	apperrors "github.com/allisson/carevault/internal/errors"
)

// minSecretLength is the shortest HMAC secret accepted for signing tokens.
const minSecretLength = 32

// ErrWeakTokenSecret indicates the configured signing secret is too short.
var ErrWeakTokenSecret = errors.New("auth token secret must be at least 32 bytes")

// Claims are the JWT claims of a session token.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// tokenService implements TokenService with HS256-signed JWTs.
type tokenService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	now        func() time.Time
}

// IssueToken signs a token whose subject is the user id.
func (t *tokenService) IssueToken(user *authDomain.User) (string, time.Time, error) {
	now := t.now().UTC()
	expiresAt := now.Add(t.expiration)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.Must(uuid.NewV7()).String(),
			Issuer:    t.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: string(user.Role),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, "failed to sign session token")
	}
	return signed, expiresAt, nil
}

// ParseToken accepts only HS256 tokens from the configured issuer.
func (t *tokenService) ParseToken(token string) (accessDomain.Actor, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return accessDomain.Actor{}, authDomain.ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return accessDomain.Actor{}, authDomain.ErrInvalidToken
	}
	role, err := accessDomain.ParseRole(claims.Role)
	if err != nil {
		return accessDomain.Actor{}, authDomain.ErrInvalidToken
	}

	return accessDomain.Actor{ID: id, Role: role}, nil
}

// NewTokenService creates a TokenService. now may be nil to use time.Now.
func NewTokenService(secret, issuer string, expiration time.Duration, now func() time.Time) (TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, ErrWeakTokenSecret
	}
	if now == nil {
		now = time.Now
	}
	return &tokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		expiration: expiration,
		now:        now,
	}, nil
}
