// Package repository implements care team persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	"github.com/allisson/carevault/internal/database"
	apperrors "github.com/allisson/carevault/internal/errors"
)

// PostgreSQLCareTeamRepository implements CareTeamAssignment persistence for PostgreSQL.
type PostgreSQLCareTeamRepository struct {
	db *sql.DB
}

// IsAssigned reports whether the clinician is on the patient's care team.
func (p *PostgreSQLCareTeamRepository) IsAssigned(
	ctx context.Context,
	patientID, clinicianID uuid.UUID,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS(SELECT 1 FROM care_team_assignments WHERE patient_id = $1 AND clinician_id = $2)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, patientID, clinicianID).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check care team assignment")
	}
	return exists, nil
}

// Assign inserts an assignment. Assigning twice is a conflict.
func (p *PostgreSQLCareTeamRepository) Assign(
	ctx context.Context,
	assignment *accessDomain.CareTeamAssignment,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO care_team_assignments (patient_id, clinician_id, assigned_by, created_at) 
			  VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(
		ctx,
		query,
		assignment.PatientID,
		assignment.ClinicianID,
		assignment.AssignedBy,
		assignment.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.Wrap(apperrors.ErrConflict, "clinician already assigned")
		}
		return apperrors.Wrap(err, "failed to assign clinician")
	}
	return nil
}

// Remove deletes an assignment.
func (p *PostgreSQLCareTeamRepository) Remove(ctx context.Context, patientID, clinicianID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM care_team_assignments WHERE patient_id = $1 AND clinician_id = $2`

	result, err := querier.ExecContext(ctx, query, patientID, clinicianID)
	if err != nil {
		return apperrors.Wrap(err, "failed to remove clinician")
	}
	return checkRowsAffected(result)
}

// ListByPatient returns the patient's care team, oldest assignment first.
func (p *PostgreSQLCareTeamRepository) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
) ([]*accessDomain.CareTeamAssignment, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT patient_id, clinician_id, assigned_by, created_at 
			  FROM care_team_assignments 
			  WHERE patient_id = $1 
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list care team")
	}
	defer func() {
		_ = rows.Close()
	}()

	assignments := make([]*accessDomain.CareTeamAssignment, 0)
	for rows.Next() {
		var a accessDomain.CareTeamAssignment
		if err := rows.Scan(&a.PatientID, &a.ClinicianID, &a.AssignedBy, &a.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan care team assignment")
		}
		assignments = append(assignments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate care team")
	}
	return assignments, nil
}

func checkRowsAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return accessDomain.ErrAssignmentNotFound
	}
	return nil
}

// NewPostgreSQLCareTeamRepository creates a new PostgreSQL care team repository.
func NewPostgreSQLCareTeamRepository(db *sql.DB) *PostgreSQLCareTeamRepository {
	return &PostgreSQLCareTeamRepository{db: db}
}
