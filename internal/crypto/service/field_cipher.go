package service

import (
	"fmt"

	cryptoDomain "github.com/allisson/carevault/internal/crypto/domain"
)

// fieldCipher is the only holder of an AEAD keyed with the master key.
type fieldCipher struct {
	aead AEAD
}

// NewFieldCipher builds the field cipher from the master key.
//
// A nil master key is not an error here: the returned cipher fails every call
// with ErrMasterKeyNotLoaded, so PII endpoints answer 503 while the rest of the
// service keeps running.
func NewFieldCipher(
	masterKey *cryptoDomain.MasterKey,
	alg cryptoDomain.Algorithm,
	manager AEADManager,
) (FieldCipher, error) {
	if masterKey == nil {
		return &fieldCipher{}, nil
	}

	var aead AEAD
	err := masterKey.WithKey(func(key []byte) error {
		var err error
		aead, err = manager.CreateCipher(key, alg)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create field cipher: %w", err)
	}

	if aead.NonceSize() != cryptoDomain.IVSize || aead.Overhead() != cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	return &fieldCipher{aead: aead}, nil
}

func (f *fieldCipher) Ready() bool {
	return f.aead != nil
}

// EncryptField encrypts plaintext and splits the tag off the sealed output.
func (f *fieldCipher) EncryptField(plaintext string) (*cryptoDomain.EncryptedField, error) {
	if f.aead == nil {
		return nil, cryptoDomain.ErrMasterKeyNotLoaded
	}
	if plaintext == "" {
		return nil, cryptoDomain.ErrEmptyPlaintext
	}

	sealed, iv, err := f.aead.Encrypt([]byte(plaintext), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt field: %w", err)
	}

	n := len(sealed) - f.aead.Overhead()
	return &cryptoDomain.EncryptedField{
		Ciphertext: sealed[:n:n],
		IV:         iv,
		AuthTag:    sealed[n:],
	}, nil
}

// DecryptField recombines ciphertext and tag and opens them. Any failure is
// reported as ErrDecryptionFailed without detail.
func (f *fieldCipher) DecryptField(field *cryptoDomain.EncryptedField) (string, error) {
	if f.aead == nil {
		return "", cryptoDomain.ErrMasterKeyNotLoaded
	}
	if err := field.Validate(); err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(field.Ciphertext)+len(field.AuthTag))
	sealed = append(sealed, field.Ciphertext...)
	sealed = append(sealed, field.AuthTag...)

	plaintext, err := f.aead.Decrypt(sealed, field.IV, nil)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}
	defer cryptoDomain.Zero(plaintext)

	return string(plaintext), nil
}

// DecryptBlob parses a stored blob of any shape and decrypts it.
func (f *fieldCipher) DecryptBlob(blob cryptoDomain.StoredBlob) (string, error) {
	if f.aead == nil {
		return "", cryptoDomain.ErrMasterKeyNotLoaded
	}
	field, err := cryptoDomain.ParseStoredBlob(blob)
	if err != nil {
		return "", err
	}
	return f.DecryptField(field)
}
