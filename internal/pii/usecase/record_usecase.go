package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	accessUseCase "github.com/allisson/carevault/internal/access/usecase"
	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	cryptoDomain "github.com/allisson/carevault/internal/crypto/domain"
	"github.com/allisson/carevault/internal/database"
	apperrors "github.com/allisson/carevault/internal/errors"
	piiDomain "github.com/allisson/carevault/internal/pii/domain"
	piiService "github.com/allisson/carevault/internal/pii/service"
)

// MaxBatchSize bounds the records of one batch reveal.
const MaxBatchSize = 50

type recordUseCase struct {
	txManager    database.TxManager
	repo         RecordRepository
	gate         accessUseCase.Gate
	orchestrator piiService.Orchestrator
	audit        AuditRecorder
}

// NewRecordUseCase creates the PII record use case.
func NewRecordUseCase(
	txManager database.TxManager,
	repo RecordRepository,
	gate accessUseCase.Gate,
	orchestrator piiService.Orchestrator,
	audit AuditRecorder,
) RecordUseCase {
	return &recordUseCase{
		txManager:    txManager,
		repo:         repo,
		gate:         gate,
		orchestrator: orchestrator,
		audit:        audit,
	}
}

func (r *recordUseCase) Create(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	ownerID uuid.UUID,
	fields map[string]string,
) (*piiDomain.SafeRecord, error) {
	if _, err := piiDomain.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if err := r.validate(kind, fields, true); err != nil {
		return nil, err
	}

	id := uuid.Must(uuid.NewV7())
	_, err := r.gate.Authorize(ctx, accessUseCase.AccessRequest{
		Actor:        actor,
		ResourceType: kind.ResourceType(),
		ResourceID:   id,
		Action:       auditDomain.ActionPIIWrite,
		KnownOwner:   &ownerID,
		Fields:       fieldNames(fields),
	})
	if err != nil {
		return nil, err
	}

	plan, err := r.orchestrator.PrepareForStorage(kind, fields)
	if err != nil {
		return nil, err
	}
	if err := r.checkLookups(ctx, kind, plan, uuid.Nil); err != nil {
		return nil, err
	}

	record := piiDomain.NewRecord(id, kind, ownerID)
	if err := plan.Apply(record); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	if err := r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return r.repo.Create(txCtx, record)
	}); err != nil {
		return nil, err
	}

	return r.orchestrator.PrepareForResponse(ctx, nil, record, piiDomain.MaskFull, nil)
}

func (r *recordUseCase) Update(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	id uuid.UUID,
	fields map[string]string,
) (*piiDomain.SafeRecord, error) {
	if _, err := piiDomain.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, apperrors.Wrap(piiDomain.ErrValidation, "no fields to update")
	}
	if err := r.validate(kind, fields, false); err != nil {
		return nil, err
	}

	grant, err := r.gate.Authorize(ctx, accessUseCase.AccessRequest{
		Actor:        actor,
		ResourceType: kind.ResourceType(),
		ResourceID:   id,
		Action:       auditDomain.ActionPIIWrite,
		Fields:       fieldNames(fields),
	})
	if err != nil {
		return nil, err
	}

	record, err := r.getGranted(ctx, actor, grant, kind, id, auditDomain.ActionPIIWrite)
	if err != nil {
		return nil, err
	}

	plan, err := r.orchestrator.PrepareForStorage(kind, fields)
	if err != nil {
		return nil, err
	}
	if err := r.checkLookups(ctx, kind, plan, id); err != nil {
		return nil, err
	}
	if err := plan.Apply(record); err != nil {
		return nil, err
	}
	record.UpdatedAt = time.Now().UTC()

	if err := r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return r.repo.UpdateFields(txCtx, record, plan.Fields())
	}); err != nil {
		return nil, err
	}

	return r.orchestrator.PrepareForResponse(ctx, nil, record, piiDomain.MaskFull, nil)
}

func (r *recordUseCase) View(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	id uuid.UUID,
	level piiDomain.MaskingLevel,
) (*piiDomain.SafeRecord, error) {
	if _, err := piiDomain.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if level == piiDomain.MaskNone {
		return nil, piiDomain.ErrUnmaskedView
	}
	if _, err := piiDomain.ParseMaskingLevel(string(level)); err != nil {
		return nil, err
	}

	grant, err := r.gate.Authorize(ctx, accessUseCase.AccessRequest{
		Actor:        actor,
		ResourceType: kind.ResourceType(),
		ResourceID:   id,
		Action:       auditDomain.ActionPIIMaskedRead,
	})
	if err != nil {
		return nil, err
	}

	record, err := r.getGranted(ctx, actor, grant, kind, id, auditDomain.ActionPIIMaskedRead)
	if err != nil {
		return nil, err
	}

	return r.orchestrator.PrepareForResponse(ctx, grant, record, level, nil)
}

func (r *recordUseCase) Reveal(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	id uuid.UUID,
	fields []string,
) (*piiDomain.SafeRecord, error) {
	which, err := revealFields(kind, fields)
	if err != nil {
		return nil, err
	}

	grant, err := r.gate.Authorize(ctx, accessUseCase.AccessRequest{
		Actor:        actor,
		ResourceType: kind.ResourceType(),
		ResourceID:   id,
		Action:       auditDomain.ActionPIIRead,
		Fields:       which,
	})
	if err != nil {
		return nil, err
	}

	record, err := r.getGranted(ctx, actor, grant, kind, id, auditDomain.ActionPIIRead)
	if err != nil {
		return nil, err
	}

	safe, err := r.orchestrator.PrepareForResponse(ctx, grant, record, piiDomain.MaskNone, which)
	if err != nil {
		return nil, err
	}

	if failed := safe.FailedFields(); len(failed) > 0 {
		if err := r.audit.Record(ctx, &auditDomain.AuditRecord{
			ActorID:      actor.ID,
			ActorRole:    string(actor.Role),
			Action:       auditDomain.ActionPIIDecryptFailure,
			Resource:     string(kind.ResourceType()),
			ResourceID:   id.String(),
			Success:      false,
			ErrorMessage: cryptoDomain.ErrDecryptionFailed.Error(),
			Details: map[string]any{
				"fields":   failed,
				"grant_id": grant.AuditID().String(),
			},
		}); err != nil {
			return nil, err
		}
	}

	return safe, nil
}

// getGranted loads the record a grant was issued for. A record gone since the
// grant was audited gets its own failure entry referencing that grant.
func (r *recordUseCase) getGranted(
	ctx context.Context,
	actor accessDomain.Actor,
	grant *accessUseCase.Grant,
	kind piiDomain.Kind,
	id uuid.UUID,
	action auditDomain.Action,
) (*piiDomain.Record, error) {
	record, err := r.repo.Get(ctx, kind, id)
	if err == nil {
		return record, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if auditErr := r.audit.Record(ctx, &auditDomain.AuditRecord{
		ActorID:      actor.ID,
		ActorRole:    string(actor.Role),
		Action:       action,
		Resource:     string(kind.ResourceType()),
		ResourceID:   id.String(),
		Success:      false,
		ErrorMessage: piiDomain.ErrRecordNotFound.Error(),
		Details: map[string]any{
			"grant_id": grant.AuditID().String(),
		},
	}); auditErr != nil {
		return nil, auditErr
	}
	return nil, err
}

func (r *recordUseCase) RevealBatch(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	ids []uuid.UUID,
	fields []string,
) ([]*RevealResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "no records requested")
	}
	if len(ids) > MaxBatchSize {
		return nil, apperrors.Wrapf(piiDomain.ErrBatchTooLarge, "at most %d", MaxBatchSize)
	}
	if _, err := revealFields(kind, fields); err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	results := make([]*RevealResult, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		safe, err := r.Reveal(ctx, actor, kind, id, fields)
		if err != nil && isFatal(err) {
			return nil, err
		}
		results = append(results, &RevealResult{RecordID: id, Record: safe, Err: err})
	}
	return results, nil
}

// isFatal reports errors that must fail the whole batch.
func isFatal(err error) bool {
	return apperrors.Is(err, auditDomain.ErrAuditWrite) ||
		apperrors.Is(err, cryptoDomain.ErrMasterKeyNotLoaded) ||
		apperrors.Is(err, context.Canceled) ||
		apperrors.Is(err, context.DeadlineExceeded)
}

func (r *recordUseCase) validate(kind piiDomain.Kind, fields map[string]string, create bool) error {
	var problems []string

	if create {
		for _, name := range piiDomain.MissingRequired(kind, fields) {
			problems = append(problems, name+": is required")
		}
	}

	result := r.orchestrator.ValidatePII(kind, fields)
	for _, e := range result.Errors {
		problems = append(problems, e.Field+": "+e.Message)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", piiDomain.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// checkLookups rejects a clear lookup copy already used by another record.
func (r *recordUseCase) checkLookups(
	ctx context.Context,
	kind piiDomain.Kind,
	plan *piiDomain.StoragePlan,
	excludeID uuid.UUID,
) error {
	for _, name := range plan.Fields() {
		spec, err := piiDomain.Spec(kind, name)
		if err != nil {
			return err
		}
		if spec.Policy != piiDomain.StoreBoth {
			continue
		}
		exists, err := r.repo.LookupExists(ctx, kind, name, plan.Passthrough[name], excludeID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Wrap(piiDomain.ErrLookupValueTaken, name)
		}
	}
	return nil
}

// revealFields defaults to every sensitive field and rejects names that are
// not encrypted at rest.
func revealFields(kind piiDomain.Kind, fields []string) ([]string, error) {
	if _, err := piiDomain.ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return piiDomain.SensitiveFields(kind), nil
	}

	which := slices.Clone(fields)
	slices.Sort(which)
	which = slices.Compact(which)
	for _, name := range which {
		spec, err := piiDomain.Spec(kind, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, name)
		}
		if !spec.Sensitive() {
			return nil, fmt.Errorf("%w: %s is not encrypted", piiDomain.ErrUnknownField, name)
		}
	}
	return which, nil
}

func fieldNames(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
