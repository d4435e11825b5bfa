// Package service implements the transport cipher that encrypts whole request
// and response bodies under a session key derived per call.
//
// The session seed is the UTC calendar day joined with a truncated SHA-256 of
// the client context (the User-Agent). Anyone who knows both can recompute it,
// so transport encryption keeps plaintext out of intermediaries and logs but
// does not authenticate the client. Login still depends on the password and
// the replay window.
package service

import (
	"time"

	transportDomain "github.com/allisson/carevault/internal/transport/domain"
)

// Cipher encrypts and decrypts transport payloads.
type Cipher interface {
	// EncryptPayload JSON-encodes data and encrypts it under today's session key.
	EncryptPayload(data any, clientContext string) (*transportDomain.Payload, error)

	// DecryptPayload tries every session key candidate in order and returns the
	// plaintext of the first that opens the payload.
	DecryptPayload(payload *transportDomain.Payload, clientContext string) ([]byte, error)

	// DecryptInto decrypts payload and JSON-decodes the plaintext into v.
	DecryptInto(payload *transportDomain.Payload, clientContext string, v any) error
}

// Clock returns the current time. Tests replace it to move across day boundaries.
type Clock func() time.Time
