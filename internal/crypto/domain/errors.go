package domain

import (
	"github.com/allisson/carevault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors so the
// HTTP layer can map them to status codes without knowing about cryptography.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidKeyEncoding indicates ENCRYPTION_KEY is not valid base64.
	ErrInvalidKeyEncoding = errors.Wrap(errors.ErrInvalidInput, "invalid encryption key encoding")

	// ErrMasterKeyNotLoaded indicates no encryption key was configured. Every code
	// path touching PII fails with this error (HTTP 503) instead of degrading.
	ErrMasterKeyNotLoaded = errors.Wrap(errors.ErrUnavailable, "encryption key not loaded")

	// ErrMasterKeyNotSerializable is returned when something tries to marshal the master key.
	ErrMasterKeyNotSerializable = errors.New("encryption key must not be serialized")

	// ErrEmptyPlaintext indicates an attempt to encrypt an empty value.
	ErrEmptyPlaintext = errors.Wrap(errors.ErrInvalidInput, "plaintext must not be empty")

	// ErrDecryptionFailed indicates a decryption operation failed.
	//
	// This covers a wrong key, a tag that does not verify, malformed IV or tag
	// lengths, and stored blobs that cannot be parsed. The specific cause is not
	// disclosed to callers.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrMalformedBlob indicates a stored field could not be parsed into ciphertext, IV and tag.
	ErrMalformedBlob = errors.Wrap(ErrDecryptionFailed, "malformed stored field")
)
