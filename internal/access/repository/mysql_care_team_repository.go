package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	"github.com/allisson/carevault/internal/database"
	apperrors "github.com/allisson/carevault/internal/errors"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// MySQLCareTeamRepository implements CareTeamAssignment persistence for MySQL.
type MySQLCareTeamRepository struct {
	db *sql.DB
}

// IsAssigned reports whether the clinician is on the patient's care team.
func (m *MySQLCareTeamRepository) IsAssigned(
	ctx context.Context,
	patientID, clinicianID uuid.UUID,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	pid, cid, err := marshalPair(patientID, clinicianID)
	if err != nil {
		return false, err
	}

	query := `SELECT EXISTS(SELECT 1 FROM care_team_assignments WHERE patient_id = ? AND clinician_id = ?)`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, pid, cid).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check care team assignment")
	}
	return exists, nil
}

// Assign inserts an assignment. Assigning twice is a conflict.
func (m *MySQLCareTeamRepository) Assign(
	ctx context.Context,
	assignment *accessDomain.CareTeamAssignment,
) error {
	querier := database.GetTx(ctx, m.db)

	pid, cid, err := marshalPair(assignment.PatientID, assignment.ClinicianID)
	if err != nil {
		return err
	}
	assignedBy, err := assignment.AssignedBy.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal assigned_by")
	}

	query := `INSERT INTO care_team_assignments (patient_id, clinician_id, assigned_by, created_at) 
			  VALUES (?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, pid, cid, assignedBy, assignment.CreatedAt)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return apperrors.Wrap(apperrors.ErrConflict, "clinician already assigned")
		}
		return apperrors.Wrap(err, "failed to assign clinician")
	}
	return nil
}

// Remove deletes an assignment.
func (m *MySQLCareTeamRepository) Remove(ctx context.Context, patientID, clinicianID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	pid, cid, err := marshalPair(patientID, clinicianID)
	if err != nil {
		return err
	}

	query := `DELETE FROM care_team_assignments WHERE patient_id = ? AND clinician_id = ?`

	result, err := querier.ExecContext(ctx, query, pid, cid)
	if err != nil {
		return apperrors.Wrap(err, "failed to remove clinician")
	}
	return checkRowsAffected(result)
}

// ListByPatient returns the patient's care team, oldest assignment first.
func (m *MySQLCareTeamRepository) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
) ([]*accessDomain.CareTeamAssignment, error) {
	querier := database.GetTx(ctx, m.db)

	pid, err := patientID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal patient id")
	}

	query := `SELECT patient_id, clinician_id, assigned_by, created_at 
			  FROM care_team_assignments 
			  WHERE patient_id = ? 
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, pid)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list care team")
	}
	defer func() {
		_ = rows.Close()
	}()

	assignments := make([]*accessDomain.CareTeamAssignment, 0)
	for rows.Next() {
		var a accessDomain.CareTeamAssignment
		var patient, clinician, assignedBy []byte
		if err := rows.Scan(&patient, &clinician, &assignedBy, &a.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan care team assignment")
		}
		if err := a.PatientID.UnmarshalBinary(patient); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal patient id")
		}
		if err := a.ClinicianID.UnmarshalBinary(clinician); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal clinician id")
		}
		if err := a.AssignedBy.UnmarshalBinary(assignedBy); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal assigned_by")
		}
		assignments = append(assignments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate care team")
	}
	return assignments, nil
}

func marshalPair(patientID, clinicianID uuid.UUID) ([]byte, []byte, error) {
	pid, err := patientID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal patient id")
	}
	cid, err := clinicianID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal clinician id")
	}
	return pid, cid, nil
}

// NewMySQLCareTeamRepository creates a new MySQL care team repository.
func NewMySQLCareTeamRepository(db *sql.DB) *MySQLCareTeamRepository {
	return &MySQLCareTeamRepository{db: db}
}
