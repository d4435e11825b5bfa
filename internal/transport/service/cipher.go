package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/carevault/internal/crypto/domain"
	cryptoService "github.com/allisson/carevault/internal/crypto/service"
	apperrors "github.com/allisson/carevault/internal/errors"
	transportDomain "github.com/allisson/carevault/internal/transport/domain"
)

// sessionCipher holds no key material between calls; every operation derives
// its key and zeroes it before returning.
type sessionCipher struct {
	fallbacks []transportDomain.Candidate
	now       Clock
}

// NewCipher creates a transport cipher. fallbacks are tried after today's and
// yesterday's seeds. A nil clock uses time.Now.
func NewCipher(fallbacks []transportDomain.Candidate, now Clock) (Cipher, error) {
	if len(fallbacks) > transportDomain.MaxFallbackSeeds {
		return nil, fmt.Errorf(
			"%w: at most %d seeds",
			transportDomain.ErrInvalidFallbackSeeds,
			transportDomain.MaxFallbackSeeds,
		)
	}
	if now == nil {
		now = time.Now
	}
	return &sessionCipher{
		fallbacks: append([]transportDomain.Candidate(nil), fallbacks...),
		now:       now,
	}, nil
}

// SessionSeed returns the date-based seed for day and clientContext.
func SessionSeed(day time.Time, clientContext string) string {
	sum := sha256.Sum256([]byte(clientContext))
	return day.UTC().Format(time.DateOnly) + ":" + hex.EncodeToString(sum[:])[:transportDomain.ContextHashLength]
}

// candidates lists the seeds in the order they are tried.
func (s *sessionCipher) candidates(clientContext string) []transportDomain.Candidate {
	now := s.now().UTC()
	list := make([]transportDomain.Candidate, 0, 2+len(s.fallbacks))
	list = append(list,
		transportDomain.Candidate{Name: "today", Seed: SessionSeed(now, clientContext)},
		transportDomain.Candidate{Name: "yesterday", Seed: SessionSeed(now.AddDate(0, 0, -1), clientContext)},
	)
	return append(list, s.fallbacks...)
}

func deriveKey(seed string, salt []byte) []byte {
	return pbkdf2.Key([]byte(seed), salt, transportDomain.KDFIterations, transportDomain.KeySize, sha256.New)
}

// EncryptPayload always uses today's seed.
func (s *sessionCipher) EncryptPayload(data any, clientContext string) (*transportDomain.Payload, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal transport payload")
	}
	defer cryptoDomain.Zero(plaintext)

	salt := make([]byte, transportDomain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate salt")
	}

	key := deriveKey(SessionSeed(s.now(), clientContext), salt)
	defer cryptoDomain.Zero(key)

	aead, err := cryptoService.NewAESGCM(key)
	if err != nil {
		return nil, err
	}

	sealed, iv, err := aead.Encrypt(plaintext, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt transport payload")
	}

	return &transportDomain.Payload{
		EncryptedData: base64.StdEncoding.EncodeToString(sealed),
		IV:            base64.StdEncoding.EncodeToString(iv),
		Salt:          base64.StdEncoding.EncodeToString(salt),
	}, nil
}

// DecryptPayload returns ErrTransportDecryption for malformed payloads and
// when every candidate fails, so callers cannot tell the cases apart.
func (s *sessionCipher) DecryptPayload(payload *transportDomain.Payload, clientContext string) ([]byte, error) {
	if !payload.Complete() {
		return nil, transportDomain.ErrTransportDecryption
	}

	sealed, err := base64.StdEncoding.DecodeString(payload.EncryptedData)
	if err != nil {
		return nil, transportDomain.ErrTransportDecryption
	}
	iv, err := base64.StdEncoding.DecodeString(payload.IV)
	if err != nil || len(iv) != transportDomain.IVSize {
		return nil, transportDomain.ErrTransportDecryption
	}
	salt, err := base64.StdEncoding.DecodeString(payload.Salt)
	if err != nil || len(salt) == 0 {
		return nil, transportDomain.ErrTransportDecryption
	}

	for _, candidate := range s.candidates(clientContext) {
		if plaintext, ok := tryCandidate(candidate.Seed, salt, iv, sealed); ok {
			return plaintext, nil
		}
	}
	return nil, transportDomain.ErrTransportDecryption
}

func tryCandidate(seed string, salt, iv, sealed []byte) ([]byte, bool) {
	key := deriveKey(seed, salt)
	defer cryptoDomain.Zero(key)

	aead, err := cryptoService.NewAESGCM(key)
	if err != nil {
		return nil, false
	}
	plaintext, err := aead.Decrypt(sealed, iv, nil)
	if err != nil {
		return nil, false
	}
	return plaintext, true
}

// DecryptInto reports undecodable plaintext as invalid input.
func (s *sessionCipher) DecryptInto(payload *transportDomain.Payload, clientContext string, v any) error {
	plaintext, err := s.DecryptPayload(payload, clientContext)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(plaintext)

	if err := json.Unmarshal(plaintext, v); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "decrypted payload is not valid JSON")
	}
	return nil
}
