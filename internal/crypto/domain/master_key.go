package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const redacted = "[REDACTED]"

// MasterKey is the process-wide field encryption key.
//
// It is loaded once at startup and never changes afterwards. The key bytes are
// unexported: the field cipher reads them once through WithKey when it builds
// its AEAD, and other components only get purpose-bound subkeys via DeriveKey.
// The key refuses JSON serialization and redacts itself in logs.
type MasterKey struct {
	key []byte
}

// NewMasterKey copies key into a new MasterKey. The key must be exactly 32 bytes.
func NewMasterKey(key []byte) (*MasterKey, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &MasterKey{key: k}, nil
}

// ParseMasterKey decodes a base64-encoded 32-byte key. The decoded buffer is zeroed
// after it has been copied into the MasterKey.
func ParseMasterKey(encoded string) (*MasterKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, ErrMasterKeyNotLoaded
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}
	defer Zero(raw)

	return NewMasterKey(raw)
}

// WithKey calls fn with the raw key bytes. fn must not retain the slice.
func (m *MasterKey) WithKey(fn func(key []byte) error) error {
	if m == nil || len(m.key) == 0 {
		return ErrMasterKeyNotLoaded
	}
	return fn(m.key)
}

// DeriveKey derives a 32-byte subkey bound to info using HKDF-SHA256.
// The caller owns the returned slice and should Zero it after use.
func (m *MasterKey) DeriveKey(info string) ([]byte, error) {
	if m == nil || len(m.key) == 0 {
		return nil, ErrMasterKeyNotLoaded
	}

	out := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, m.key, nil, []byte(info)), out); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return out, nil
}

// Close zeroes the key material. The MasterKey is unusable afterwards.
func (m *MasterKey) Close() {
	if m == nil {
		return
	}
	Zero(m.key)
	m.key = nil
}

// String implements fmt.Stringer without exposing key material.
func (m *MasterKey) String() string {
	return "MasterKey(" + redacted + ")"
}

// LogValue implements slog.LogValuer without exposing key material.
func (m *MasterKey) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// MarshalJSON always fails so the key can never end up in a serialized payload.
func (m *MasterKey) MarshalJSON() ([]byte, error) {
	return nil, ErrMasterKeyNotSerializable
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
