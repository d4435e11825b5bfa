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

// PostgreSQLRecordRepository implements PII record persistence for PostgreSQL.
type PostgreSQLRecordRepository struct {
	db *sql.DB
}

// Create inserts the record row and one row per field.
func (p *PostgreSQLRecordRepository) Create(ctx context.Context, record *piiDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO pii_records (id, kind, owner_id, created_at, updated_at) 
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		string(record.Kind),
		record.OwnerID,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create pii record")
	}

	return p.upsertFields(ctx, record, fieldNames(record))
}

// Get loads a record of kind with all of its fields.
func (p *PostgreSQLRecordRepository) Get(
	ctx context.Context,
	kind piiDomain.Kind,
	id uuid.UUID,
) (*piiDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, kind, owner_id, created_at, updated_at FROM pii_records WHERE id = $1 AND kind = $2`

	var recordKind string
	record := piiDomain.NewRecord(uuid.Nil, kind, uuid.Nil)
	err := querier.QueryRowContext(ctx, query, id, string(kind)).Scan(
		&record.ID,
		&recordKind,
		&record.OwnerID,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, piiDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get pii record")
	}
	record.Kind = piiDomain.Kind(recordKind)

	fieldsQuery := `SELECT name, encrypted, encrypted_text, legacy_plaintext, lookup_value 
					FROM pii_fields WHERE record_id = $1 ORDER BY name`

	rows, err := querier.QueryContext(ctx, fieldsQuery, id)
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
func (p *PostgreSQLRecordRepository) UpdateFields(
	ctx context.Context,
	record *piiDomain.Record,
	names []string,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE pii_records SET updated_at = $1 WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, record.UpdatedAt, record.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update pii record")
	}
	if err := checkRowsAffected(result); err != nil {
		return err
	}

	sorted := slices.Clone(names)
	slices.Sort(sorted)
	return p.upsertFields(ctx, record, sorted)
}

func (p *PostgreSQLRecordRepository) upsertFields(
	ctx context.Context,
	record *piiDomain.Record,
	names []string,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO pii_fields (record_id, name, encrypted, encrypted_text, legacy_plaintext, lookup_value) 
			  VALUES ($1, $2, $3, NULL, $4, $5) 
			  ON CONFLICT (record_id, name) DO UPDATE SET 
			  encrypted = EXCLUDED.encrypted, 
			  encrypted_text = NULL, 
			  legacy_plaintext = EXCLUDED.legacy_plaintext, 
			  lookup_value = EXCLUDED.lookup_value`

	for _, name := range names {
		encrypted, legacy, lookup, err := fieldValues(record, name)
		if err != nil {
			return err
		}
		if _, err := querier.ExecContext(ctx, query, record.ID, name, encrypted, legacy, lookup); err != nil {
			return apperrors.Wrapf(err, "failed to store pii field %s", name)
		}
	}
	return nil
}

// LookupExists reports whether another record of kind holds value as the lookup copy of field.
func (p *PostgreSQLRecordRepository) LookupExists(
	ctx context.Context,
	kind piiDomain.Kind,
	field, value string,
	excludeID uuid.UUID,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS(SELECT 1 FROM pii_fields f JOIN pii_records r ON r.id = f.record_id 
			  WHERE r.kind = $1 AND f.name = $2 AND f.lookup_value = $3 AND f.record_id <> $4)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, string(kind), field, value, excludeID).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check lookup value")
	}
	return exists, nil
}

// ListLegacyFields returns up to limit fields that still hold plaintext.
func (p *PostgreSQLRecordRepository) ListLegacyFields(
	ctx context.Context,
	limit int,
) ([]*piiDomain.LegacyField, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT f.record_id, r.kind, f.name, f.legacy_plaintext 
			  FROM pii_fields f JOIN pii_records r ON r.id = f.record_id 
			  WHERE f.legacy_plaintext IS NOT NULL 
			  ORDER BY f.record_id, f.name 
			  LIMIT $1`

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
		var kind string
		if err := rows.Scan(&f.RecordID, &kind, &f.Name, &f.Value); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan legacy field")
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
func (p *PostgreSQLRecordRepository) MigrateLegacyField(
	ctx context.Context,
	recordID uuid.UUID,
	name string,
	encrypted []byte,
	lookup *string,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE pii_fields SET 
			  encrypted = COALESCE($1, encrypted), 
			  lookup_value = COALESCE($2, lookup_value), 
			  legacy_plaintext = NULL 
			  WHERE record_id = $3 AND name = $4`

	var enc any
	if encrypted != nil {
		enc = encrypted
	}

	result, err := querier.ExecContext(ctx, query, enc, lookup, recordID, name)
	if err != nil {
		return apperrors.Wrapf(err, "failed to migrate legacy field %s", name)
	}
	return checkRowsAffected(result)
}

// ResolveOwner returns the owner of a record. It backs the access gate's ownership lookups.
func (p *PostgreSQLRecordRepository) ResolveOwner(
	ctx context.Context,
	resourceType accessDomain.ResourceType,
	resourceID uuid.UUID,
) (uuid.UUID, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT owner_id FROM pii_records WHERE id = $1 AND kind = $2`

	var owner uuid.UUID
	err := querier.QueryRowContext(ctx, query, resourceID, string(kindFor(resourceType))).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, piiDomain.ErrRecordNotFound
		}
		return uuid.Nil, apperrors.Wrap(err, "failed to resolve record owner")
	}
	return owner, nil
}

// NewPostgreSQLRecordRepository creates a new PostgreSQL PII record repository.
func NewPostgreSQLRecordRepository(db *sql.DB) *PostgreSQLRecordRepository {
	return &PostgreSQLRecordRepository{db: db}
}
