package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	"github.com/allisson/carevault/internal/database"
	apperrors "github.com/allisson/carevault/internal/errors"
)

// MySQLAuditRepository implements AuditRecord persistence for MySQL. UUIDs are
// stored as BINARY(16).
type MySQLAuditRepository struct {
	db *sql.DB
}

// Create appends an audit record.
func (m *MySQLAuditRepository) Create(ctx context.Context, record *auditDomain.AuditRecord) error {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit record id")
	}
	actorID, err := record.ActorID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal actor id")
	}

	metadataJSON, detailsJSON, err := marshalRecordJSON(record)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_records (id, actor_id, actor_role, action, resource, resource_id, 
			  success, error_message, request_metadata, details, signature, created_at) 
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		actorID,
		record.ActorRole,
		string(record.Action),
		record.Resource,
		record.ResourceID,
		record.Success,
		record.ErrorMessage,
		metadataJSON,
		detailsJSON,
		record.Signature,
		record.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit record")
	}
	return nil
}

// List returns audit records newest first.
func (m *MySQLAuditRepository) List(
	ctx context.Context,
	offset, limit int,
	filter auditDomain.ListFilter,
) ([]*auditDomain.AuditRecord, error) {
	querier := database.GetTx(ctx, m.db)

	where, args, err := buildWhere(filter, mysqlPlaceholder, func(v any) (any, error) {
		return v.(uuid.UUID).MarshalBinary()
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal actor id")
	}

	query := `SELECT id, actor_id, actor_role, action, resource, resource_id, success, 
			  error_message, request_metadata, details, signature, created_at 
			  FROM audit_records` + where + ` 
			  ORDER BY created_at DESC, id DESC 
			  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*auditDomain.AuditRecord, 0)
	for rows.Next() {
		var record auditDomain.AuditRecord
		var id, actorID []byte
		var action string
		var metadataJSON, detailsJSON []byte

		err := rows.Scan(
			&id,
			&actorID,
			&record.ActorRole,
			&action,
			&record.Resource,
			&record.ResourceID,
			&record.Success,
			&record.ErrorMessage,
			&metadataJSON,
			&detailsJSON,
			&record.Signature,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit record")
		}

		if err := record.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit record id")
		}
		if err := record.ActorID.UnmarshalBinary(actorID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal actor id")
		}

		record.Action = auditDomain.Action(action)
		record.CreatedAt = record.CreatedAt.UTC()
		if err := unmarshalRecordJSON(&record, metadataJSON, detailsJSON); err != nil {
			return nil, err
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit records")
	}

	return records, nil
}

// NewMySQLAuditRepository creates a new MySQL audit repository.
func NewMySQLAuditRepository(db *sql.DB) *MySQLAuditRepository {
	return &MySQLAuditRepository{db: db}
}
