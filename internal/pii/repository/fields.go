// Package repository implements PII record persistence for PostgreSQL and MySQL.
//
// A record is one pii_records row plus one pii_fields row per field. A field
// row can carry the encrypted blob (binary column, or the text column written
// by older releases), a legacy plaintext value awaiting encryption, and the
// clear lookup copy.
package repository

import (
	"database/sql"
	"encoding/json"
	"slices"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	cryptoDomain "github.com/allisson/carevault/internal/crypto/domain"
	apperrors "github.com/allisson/carevault/internal/errors"
	piiDomain "github.com/allisson/carevault/internal/pii/domain"
)

// fieldRow is the column set of one pii_fields row.
type fieldRow struct {
	name          string
	encrypted     any
	encryptedText any
	legacy        sql.NullString
	lookup        sql.NullString
}

// apply decodes the row into record. The binary column wins over the text one.
func (f *fieldRow) apply(record *piiDomain.Record) error {
	for _, raw := range []any{f.encrypted, f.encryptedText} {
		blob, ok, err := cryptoDomain.StoredBlobFromValue(raw)
		if err != nil {
			return apperrors.Wrapf(err, "field %s", f.name)
		}
		if ok {
			record.Encrypted[f.name] = blob
			break
		}
	}
	if f.legacy.Valid {
		record.Legacy[f.name] = f.legacy.String
	}
	if f.lookup.Valid {
		record.Passthrough[f.name] = f.lookup.String
	}
	return nil
}

// fieldValues returns the encrypted, legacy and lookup column values for name.
// Absent values are untyped nil so drivers write NULL.
func fieldValues(record *piiDomain.Record, name string) (encrypted, legacy, lookup any, err error) {
	if blob, ok := record.Encrypted[name]; ok && !blob.IsZero() {
		b, err := blobBytes(blob)
		if err != nil {
			return nil, nil, nil, err
		}
		encrypted = b
	}
	if v, ok := record.Legacy[name]; ok {
		legacy = v
	}
	if v, ok := record.Passthrough[name]; ok {
		lookup = v
	}
	return encrypted, legacy, lookup, nil
}

// blobBytes serializes any blob shape into the bytes stored in the binary column.
func blobBytes(blob cryptoDomain.StoredBlob) ([]byte, error) {
	switch blob.Shape {
	case cryptoDomain.BlobBinary:
		return blob.Binary, nil
	case cryptoDomain.BlobText:
		return []byte(blob.Text), nil
	case cryptoDomain.BlobParsed:
		b, err := json.Marshal(blob.Parsed)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal stored field")
		}
		return b, nil
	default:
		return nil, cryptoDomain.ErrMalformedBlob
	}
}

// fieldNames returns every field present in record, sorted.
func fieldNames(record *piiDomain.Record) []string {
	seen := make(map[string]struct{})
	for name := range record.Encrypted {
		seen[name] = struct{}{}
	}
	for name := range record.Legacy {
		seen[name] = struct{}{}
	}
	for name := range record.Passthrough {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func kindFor(resourceType accessDomain.ResourceType) piiDomain.Kind {
	if resourceType == accessDomain.ResourcePatient {
		return piiDomain.KindPatient
	}
	return piiDomain.KindUser
}

func checkRowsAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return piiDomain.ErrRecordNotFound
	}
	return nil
}
