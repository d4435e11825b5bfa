package domain

import (
	"github.com/allisson/carevault/internal/errors"
)

var (
	// ErrTransportDecryption means no session key candidate opened the payload.
	// It never says which candidate was tried or why each failed.
	ErrTransportDecryption = errors.Wrap(errors.ErrUnauthorized, "transport payload could not be decrypted")

	// ErrReplayDetected means the embedded timestamp is outside the accepted window.
	ErrReplayDetected = errors.Wrap(errors.ErrUnauthorized, "transport payload timestamp outside accepted window")

	// ErrInvalidFallbackSeeds means the fallback seed configuration could not be parsed.
	ErrInvalidFallbackSeeds = errors.Wrap(errors.ErrInvalidInput, "invalid transport fallback seeds")

	// ErrInvalidEnvelope means a body claimed the envelope shape but its payload is incomplete.
	ErrInvalidEnvelope = errors.Wrap(errors.ErrInvalidInput, "invalid encrypted payload")
)
