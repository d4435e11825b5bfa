// Package repository implements append-only audit record persistence for
// PostgreSQL and MySQL. Neither repository exposes update or delete.
package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	apperrors "github.com/allisson/carevault/internal/errors"
)

// placeholderFunc returns the bind placeholder for the n-th argument (1-based).
type placeholderFunc func(n int) string

func postgresPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func mysqlPlaceholder(int) string { return "?" }

// buildWhere renders the filter as a WHERE clause. encodeID converts the actor
// ID into the driver representation of the dialect.
func buildWhere(
	filter auditDomain.ListFilter,
	placeholder placeholderFunc,
	encodeID func(any) (any, error),
) (string, []any, error) {
	conditions := make([]string, 0, 5)
	args := make([]any, 0, 5)

	add := func(expr string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(expr, placeholder(len(args))))
	}

	if filter.ActorID != nil {
		id, err := encodeID(*filter.ActorID)
		if err != nil {
			return "", nil, err
		}
		add("actor_id = %s", id)
	}
	if filter.ResourceID != "" {
		add("resource_id = %s", filter.ResourceID)
	}
	if filter.Action != "" {
		add("action = %s", string(filter.Action))
	}
	if filter.From != nil {
		add("created_at >= %s", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= %s", *filter.To)
	}

	if len(conditions) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

func marshalRecordJSON(record *auditDomain.AuditRecord) (metadata, details []byte, err error) {
	metadata, err = json.Marshal(record.RequestMetadata)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal audit request metadata")
	}
	// nil details are stored as NULL
	if record.Details != nil {
		details, err = json.Marshal(record.Details)
		if err != nil {
			return nil, nil, apperrors.Wrap(err, "failed to marshal audit details")
		}
	}
	return metadata, details, nil
}

func unmarshalRecordJSON(record *auditDomain.AuditRecord, metadata, details []byte) error {
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &record.RequestMetadata); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal audit request metadata")
		}
	}
	if details != nil {
		if err := json.Unmarshal(details, &record.Details); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal audit details")
		}
	}
	return nil
}
