package repository

import (
	"context"
	"database/sql"
	"errors"
	"slices"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	"github.com/allisson/carevault/internal/database"
	apperrors "github.com/allisson/carevault/internal/errors"
	piiDomain "github.com/allisson/carevault/internal/pii/domain"
)

// MySQLRecordRepository implements PII record persistence for MySQL. UUIDs are
// stored as BINARY(16).
type MySQLRecordRepository struct {
	db *sql.DB
}

// Create inserts the record row and one row per field.
func (m *MySQLRecordRepository) Create(ctx context.Context, record *piiDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}
	owner, err := record.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner id")
	}

	query := `INSERT INTO pii_records (id, kind, owner_id, created_at, updated_at) 
			  VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, string(record.Kind), owner, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create pii record")
	}

	return m.upsertFields(ctx, record, id, fieldNames(record))
}

// Get loads a record of kind with all of its fields.
func (m *MySQLRecordRepository) Get(
	ctx context.Context,
	kind piiDomain.Kind,
	id uuid.UUID,
) (*piiDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal record id")
	}

	query := `SELECT owner_id, created_at, updated_at FROM pii_records WHERE id = ? AND kind = ?`

	record := piiDomain.NewRecord(id, kind, uuid.Nil)
	var owner []byte
	err = querier.QueryRowContext(ctx, query, idBytes, string(kind)).Scan(
		&owner,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, piiDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get pii record")
	}
	if err := record.OwnerID.UnmarshalBinary(owner); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal owner id")
	}

	fieldsQuery := `SELECT name, encrypted, encrypted_text, legacy_plaintext, lookup_value 
					FROM pii_fields WHERE record_id = ? ORDER BY name`

	rows, err := querier.QueryContext(ctx, fieldsQuery, idBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get pii fields")
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var f fieldRow
		if err := rows.Scan(&f.name, &f.encrypted, &f.encryptedText, &f.legacy, &f.lookup); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan pii field")
		}
		if err := f.apply(record); err != nil {
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate pii fields")
	}
	return record, nil
}

// UpdateFields writes names and bumps updated_at.
func (m *MySQLRecordRepository) UpdateFields(
	ctx context.Context,
	record *piiDomain.Record,
	names []string,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}

	query := `UPDATE pii_records SET updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, record.UpdatedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update pii record")
	}
	if err := checkRowsAffected(result); err != nil {
		return err
	}

	sorted := slices.Clone(names)
	slices.Sort(sorted)
	return m.upsertFields(ctx, record, id, sorted)
}

func (m *MySQLRecordRepository) upsertFields(
	ctx context.Context,
	record *piiDomain.Record,
	id []byte,
	names []string,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO pii_fields (record_id, name, encrypted, encrypted_text, legacy_plaintext, lookup_value) 
			  VALUES (?, ?, ?, NULL, ?, ?) 
			  ON DUPLICATE KEY UPDATE 
			  encrypted = VALUES(encrypted), 
			  encrypted_text = NULL, 
			  legacy_plaintext = VALUES(legacy_plaintext), 
			  lookup_value = VALUES(lookup_value)`

	for _, name := range names {
		encrypted, legacy, lookup, err := fieldValues(record, name)
		if err != nil {
			return err
		}
		if _, err := querier.ExecContext(ctx, query, id, name, encrypted, legacy, lookup); err != nil {
			return apperrors.Wrapf(err, "failed to store pii field %s", name)
		}
	}
	return nil
}

// LookupExists reports whether another record of kind holds value as the lookup copy of field.
func (m *MySQLRecordRepository) LookupExists(
	ctx context.Context,
	kind piiDomain.Kind,
	field, value string,
	excludeID uuid.UUID,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	exclude, err := excludeID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal record id")
	}

	query := `SELECT EXISTS(SELECT 1 FROM pii_fields f JOIN pii_records r ON r.id = f.record_id 
			  WHERE r.kind = ? AND f.name = ? AND f.lookup_value = ? AND f.record_id <> ?)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, string(kind), field, value, exclude).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check lookup value")
	}
	return exists, nil
}

// ListLegacyFields returns up to limit fields that still hold plaintext.
func (m *MySQLRecordRepository) ListLegacyFields(
	ctx context.Context,
	limit int,
) ([]*piiDomain.LegacyField, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT f.record_id, r.kind, f.name, f.legacy_plaintext 
			  FROM pii_fields f JOIN pii_records r ON r.id = f.record_id 
			  WHERE f.legacy_plaintext IS NOT NULL 
			  ORDER BY f.record_id, f.name 
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list legacy fields")
	}
	defer func() {
		_ = rows.Close()
	}()

	fields := make([]*piiDomain.LegacyField, 0)
	for rows.Next() {
		var f piiDomain.LegacyField
		var recordID []byte
		var kind string
		if err := rows.Scan(&recordID, &kind, &f.Name, &f.Value); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan legacy field")
		}
		if err := f.RecordID.UnmarshalBinary(recordID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal record id")
		}
		f.Kind = piiDomain.Kind(kind)
		fields = append(fields, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate legacy fields")
	}
	return fields, nil
}

// MigrateLegacyField stores the encrypted form of a legacy field and clears its plaintext.
func (m *MySQLRecordRepository) MigrateLegacyField(
	ctx context.Context,
	recordID uuid.UUID,
	name string,
	encrypted []byte,
	lookup *string,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := recordID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}

	query := `UPDATE pii_fields SET 
			  encrypted = COALESCE(?, encrypted), 
			  lookup_value = COALESCE(?, lookup_value), 
			  legacy_plaintext = NULL 
			  WHERE record_id = ? AND name = ?`

	var enc any
	if encrypted != nil {
		enc = encrypted
	}

	result, err := querier.ExecContext(ctx, query, enc, lookup, id, name)
	if err != nil {
		return apperrors.Wrapf(err, "failed to migrate legacy field %s", name)
	}
	return checkRowsAffected(result)
}

// ResolveOwner returns the owner of a record. It backs the access gate's ownership lookups.
func (m *MySQLRecordRepository) ResolveOwner(
	ctx context.Context,
	resourceType accessDomain.ResourceType,
	resourceID uuid.UUID,
) (uuid.UUID, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := resourceID.MarshalBinary()
	if err != nil {
		return uuid.Nil, apperrors.Wrap(err, "failed to marshal record id")
	}

	query := `SELECT owner_id FROM pii_records WHERE id = ? AND kind = ?`

	var owner []byte
	err = querier.QueryRowContext(ctx, query, id, string(kindFor(resourceType))).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, piiDomain.ErrRecordNotFound
		}
		return uuid.Nil, apperrors.Wrap(err, "failed to resolve record owner")
	}

	var ownerID uuid.UUID
	if err := ownerID.UnmarshalBinary(owner); err != nil {
		return uuid.Nil, apperrors.Wrap(err, "failed to unmarshal owner id")
	}
	return ownerID, nil
}

// NewMySQLRecordRepository creates a new MySQL PII record repository.
func NewMySQLRecordRepository(db *sql.DB) *MySQLRecordRepository {
	return &MySQLRecordRepository{db: db}
}
