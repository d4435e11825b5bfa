package domain

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// EncryptedField is the result of encrypting one plaintext value.
//
// The three parts always travel together. The tag is kept separate from the
// ciphertext (not appended) so the at-rest representation stays
// {encryptedData, iv, tag}. Ciphertext length equals the plaintext length.
type EncryptedField struct {
	Ciphertext []byte
	IV         []byte
	AuthTag    []byte
}

// Validate checks the IV and tag lengths before any decryption is attempted.
func (f *EncryptedField) Validate() error {
	if f == nil {
		return ErrMalformedBlob
	}
	if len(f.IV) != IVSize {
		return fmt.Errorf("%w: iv must be %d bytes, got %d", ErrMalformedBlob, IVSize, len(f.IV))
	}
	if len(f.AuthTag) != TagSize {
		return fmt.Errorf("%w: tag must be %d bytes, got %d", ErrMalformedBlob, TagSize, len(f.AuthTag))
	}
	if len(f.Ciphertext) == 0 {
		return fmt.Errorf("%w: empty ciphertext", ErrMalformedBlob)
	}
	return nil
}

// storedField is the JSON document persisted for each encrypted field.
type storedField struct {
	EncryptedData string `json:"encryptedData"`
	IV            string `json:"iv"`
	Tag           string `json:"tag"`
}

// MarshalBlob encodes the field as the canonical at-rest document with
// hex-encoded parts.
func (f *EncryptedField) MarshalBlob() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(storedField{
		EncryptedData: hex.EncodeToString(f.Ciphertext),
		IV:            hex.EncodeToString(f.IV),
		Tag:           hex.EncodeToString(f.AuthTag),
	})
}

// Blob returns the canonical binary StoredBlob for this field.
func (f *EncryptedField) Blob() (StoredBlob, error) {
	b, err := f.MarshalBlob()
	if err != nil {
		return StoredBlob{}, err
	}
	return BinaryBlob(b), nil
}
