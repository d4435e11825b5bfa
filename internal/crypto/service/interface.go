// Package service provides the cryptographic services behind field-level encryption:
// AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305), the field cipher that owns the
// master key, and KMS access for unwrapping a wrapped encryption key.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/carevault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext||tag and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext||tag using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)

	// NonceSize is the nonce length in bytes.
	NonceSize() int

	// Overhead is the tag length in bytes.
	Overhead() int
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// FieldCipher encrypts and decrypts single field values with the master key.
type FieldCipher interface {
	// EncryptField encrypts a non-empty plaintext with a fresh random IV.
	EncryptField(plaintext string) (*cryptoDomain.EncryptedField, error)

	// DecryptField verifies the tag and returns the plaintext.
	DecryptField(field *cryptoDomain.EncryptedField) (string, error)

	// DecryptBlob normalizes a stored blob of any shape and decrypts it.
	DecryptBlob(blob cryptoDomain.StoredBlob) (string, error)

	// Ready reports whether a master key is loaded.
	Ready() bool
}

// KMSKeeper is the subset of *secrets.Keeper used to wrap and unwrap the encryption key.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
