package repository

import (
	"context"
	"database/sql"
	"fmt"

	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	"github.com/allisson/carevault/internal/database"
	apperrors "github.com/allisson/carevault/internal/errors"
)

// PostgreSQLAuditRepository implements AuditRecord persistence for PostgreSQL.
type PostgreSQLAuditRepository struct {
	db *sql.DB
}

// Create appends an audit record.
func (p *PostgreSQLAuditRepository) Create(ctx context.Context, record *auditDomain.AuditRecord) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, detailsJSON, err := marshalRecordJSON(record)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_records (id, actor_id, actor_role, action, resource, resource_id, 
			  success, error_message, request_metadata, details, signature, created_at) 
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.ActorID,
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
func (p *PostgreSQLAuditRepository) List(
	ctx context.Context,
	offset, limit int,
	filter auditDomain.ListFilter,
) ([]*auditDomain.AuditRecord, error) {
	querier := database.GetTx(ctx, p.db)

	where, args, err := buildWhere(filter, postgresPlaceholder, func(v any) (any, error) { return v, nil })
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, actor_id, actor_role, action, resource, resource_id, success, 
			  error_message, request_metadata, details, signature, created_at 
			  FROM audit_records%s 
			  ORDER BY created_at DESC, id DESC 
			  LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
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
		var action string
		var metadataJSON, detailsJSON []byte

		err := rows.Scan(
			&record.ID,
			&record.ActorID,
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

// NewPostgreSQLAuditRepository creates a new PostgreSQL audit repository.
func NewPostgreSQLAuditRepository(db *sql.DB) *PostgreSQLAuditRepository {
	return &PostgreSQLAuditRepository{db: db}
}
