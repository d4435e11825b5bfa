// Package domain defines the transport encryption envelope, session seeds and
// the credential payload carried inside an envelope on login.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/carevault/internal/validation"
)

const (
	// KDFIterations is the PBKDF2-SHA256 iteration count applied to a session seed.
	KDFIterations = 100_000
	// KeySize is the derived session key size (AES-256).
	KeySize = 32
	// SaltSize is the random salt generated per encryption call.
	SaltSize = 16
	// IVSize is the AES-GCM nonce size.
	IVSize = 12
	// ContextHashLength is how many hex characters of the client context hash enter the seed.
	ContextHashLength = 16
	// MaxFallbackSeeds bounds the candidate list tried after the date-based seeds.
	MaxFallbackSeeds = 8
	// DefaultReplayWindow is the maximum skew accepted for credential timestamps.
	DefaultReplayWindow = 5 * time.Minute
)

// Payload is one transport-encrypted message. Every field is standard base64;
// EncryptedData carries the ciphertext with the GCM tag appended.
type Payload struct {
	EncryptedData string `json:"encryptedData"`
	IV            string `json:"iv"`
	Salt          string `json:"salt"`
}

// Complete reports whether every part is present.
func (p *Payload) Complete() bool {
	return p != nil && p.EncryptedData != "" && p.IV != "" && p.Salt != ""
}

// Validate checks that every part is present and base64 encoded.
func (p *Payload) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.EncryptedData, validation.Required, customValidation.Base64),
		validation.Field(&p.IV, validation.Required, customValidation.Base64),
		validation.Field(&p.Salt, validation.Required, customValidation.Base64),
	)
}

// Envelope is the request and response body wrapping a Payload.
type Envelope struct {
	EncryptedPayload *Payload `json:"encryptedPayload"`
}

// ParseEnvelope inspects a body. ok is false when the body does not have the
// envelope shape, which callers treat as legacy plaintext. A body that has the
// key but an incomplete or non-base64 payload returns ErrInvalidEnvelope.
func ParseEnvelope(body []byte) (payload *Payload, ok bool, err error) {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false, nil
	}

	var shape map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &shape); err != nil {
		return nil, false, nil
	}
	raw, found := shape["encryptedPayload"]
	if !found {
		return nil, false, nil
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil || p.Validate() != nil {
		return nil, true, ErrInvalidEnvelope
	}
	return &p, true, nil
}
