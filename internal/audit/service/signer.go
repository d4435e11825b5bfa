package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"

	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	cryptoDomain "github.com/allisson/carevault/internal/crypto/domain"
)

// signingKeyInfo binds the HKDF-derived key to audit signing so it never equals
// any key used for encryption. Versioned for future algorithm changes.
const signingKeyInfo = "audit-record-signing-v1"

type hmacSigner struct {
	key []byte
}

// NewHMACSigner derives an HMAC-SHA256 signing key from the master key.
// A nil master key yields a signer that leaves records unsigned.
func NewHMACSigner(masterKey *cryptoDomain.MasterKey) (Signer, error) {
	if masterKey == nil {
		return &hmacSigner{}, nil
	}
	key, err := masterKey.DeriveKey(signingKeyInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to derive audit signing key: %w", err)
	}
	return &hmacSigner{key: key}, nil
}

// Sign computes HMAC-SHA256 over the canonical encoding of the record.
func (s *hmacSigner) Sign(record *auditDomain.AuditRecord) ([]byte, error) {
	if len(s.key) == 0 {
		return nil, nil
	}

	canonical, err := canonicalize(record)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize audit record: %w", err)
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify recomputes the signature and compares in constant time.
func (s *hmacSigner) Verify(record *auditDomain.AuditRecord) error {
	if len(s.key) == 0 || !record.IsSigned() {
		return auditDomain.ErrSignatureInvalid
	}

	expected, err := s.Sign(record)
	if err != nil {
		return err
	}
	if !hmac.Equal(record.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}

// canonicalize encodes every signed field with length prefixes so that no two
// distinct records share an encoding.
func canonicalize(r *auditDomain.AuditRecord) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, r.ID[:]...)
	buf = append(buf, r.ActorID[:]...)
	buf = appendLengthPrefixed(buf, []byte(r.ActorRole))
	buf = appendLengthPrefixed(buf, []byte(r.Action))
	buf = appendLengthPrefixed(buf, []byte(r.Resource))
	buf = appendLengthPrefixed(buf, []byte(r.ResourceID))
	if r.Success {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = appendLengthPrefixed(buf, []byte(r.ErrorMessage))

	md, err := json.Marshal(r.RequestMetadata)
	if err != nil {
		return nil, err
	}
	buf = appendLengthPrefixed(buf, md)

	// json.Marshal sorts map keys, so details encode deterministically.
	var details []byte
	if r.Details != nil {
		if details, err = json.Marshal(r.Details); err != nil {
			return nil, err
		}
	}
	buf = appendLengthPrefixed(buf, details)

	buf = binary.BigEndian.AppendUint64(buf, uint64(r.CreatedAt.UnixMicro()))

	return buf, nil
}

func appendLengthPrefixed(buf, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}
