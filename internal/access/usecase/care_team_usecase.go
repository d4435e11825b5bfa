package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	"github.com/allisson/carevault/internal/database"
	apperrors "github.com/allisson/carevault/internal/errors"
)

type careTeamUseCase struct {
	txManager database.TxManager
	repo      CareTeamRepository
	directory ActorDirectory
	audit     AuditRecorder
}

// NewCareTeamUseCase creates the care team use case.
func NewCareTeamUseCase(
	txManager database.TxManager,
	repo CareTeamRepository,
	directory ActorDirectory,
	audit AuditRecorder,
) CareTeamUseCase {
	return &careTeamUseCase{
		txManager: txManager,
		repo:      repo,
		directory: directory,
		audit:     audit,
	}
}

// Assign links a clinician to a patient. The change and its audit record are
// committed in one transaction.
func (c *careTeamUseCase) Assign(
	ctx context.Context,
	admin accessDomain.Actor,
	patientID, clinicianID uuid.UUID,
) error {
	if !admin.Role.IsElevated() {
		return accessDomain.ErrAuthorizationDenied
	}

	patient, err := c.directory.GetActor(ctx, patientID)
	if err != nil {
		return err
	}
	if patient.Role != accessDomain.RolePatient {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "user is not a patient")
	}

	clinician, err := c.directory.GetActor(ctx, clinicianID)
	if err != nil {
		return err
	}
	if clinician.Role != accessDomain.RoleClinician {
		return accessDomain.ErrNotClinician
	}

	return c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		err := c.repo.Assign(txCtx, &accessDomain.CareTeamAssignment{
			PatientID:   patientID,
			ClinicianID: clinicianID,
			AssignedBy:  admin.ID,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		return c.recordChange(txCtx, admin, patientID, clinicianID, "assign")
	})
}

// Remove unlinks a clinician from a patient.
func (c *careTeamUseCase) Remove(
	ctx context.Context,
	admin accessDomain.Actor,
	patientID, clinicianID uuid.UUID,
) error {
	if !admin.Role.IsElevated() {
		return accessDomain.ErrAuthorizationDenied
	}

	return c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := c.repo.Remove(txCtx, patientID, clinicianID); err != nil {
			return err
		}
		return c.recordChange(txCtx, admin, patientID, clinicianID, "remove")
	})
}

// List returns the clinicians assigned to a patient.
func (c *careTeamUseCase) List(
	ctx context.Context,
	patientID uuid.UUID,
) ([]*accessDomain.CareTeamAssignment, error) {
	assignments, err := c.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list care team")
	}
	return assignments, nil
}

func (c *careTeamUseCase) recordChange(
	ctx context.Context,
	admin accessDomain.Actor,
	patientID, clinicianID uuid.UUID,
	operation string,
) error {
	return c.audit.Record(ctx, &auditDomain.AuditRecord{
		ActorID:    admin.ID,
		ActorRole:  string(admin.Role),
		Action:     auditDomain.ActionCareTeamChange,
		Resource:   string(accessDomain.ResourcePatient),
		ResourceID: patientID.String(),
		Success:    true,
		Details: map[string]any{
			"operation":    operation,
			"clinician_id": clinicianID.String(),
		},
	})
}
