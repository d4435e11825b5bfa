package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	"github.com/allisson/carevault/internal/metrics"
	piiDomain "github.com/allisson/carevault/internal/pii/domain"
)

// recordUseCaseWithMetrics decorates RecordUseCase with metrics instrumentation.
type recordUseCaseWithMetrics struct {
	next    RecordUseCase
	metrics metrics.BusinessMetrics
}

// NewRecordUseCaseWithMetrics wraps a RecordUseCase with metrics recording.
func NewRecordUseCaseWithMetrics(useCase RecordUseCase, m metrics.BusinessMetrics) RecordUseCase {
	return &recordUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *recordUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	metrics.Observe(ctx, r.metrics, "pii", operation, start, err)
}

// Create records metrics for record creation.
func (r *recordUseCaseWithMetrics) Create(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	ownerID uuid.UUID,
	fields map[string]string,
) (*piiDomain.SafeRecord, error) {
	start := time.Now()
	safe, err := r.next.Create(ctx, actor, kind, ownerID, fields)
	r.record(ctx, "record_create", start, err)
	return safe, err
}

// Update records metrics for record updates.
func (r *recordUseCaseWithMetrics) Update(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	id uuid.UUID,
	fields map[string]string,
) (*piiDomain.SafeRecord, error) {
	start := time.Now()
	safe, err := r.next.Update(ctx, actor, kind, id, fields)
	r.record(ctx, "record_update", start, err)
	return safe, err
}

// View records metrics for masked views.
func (r *recordUseCaseWithMetrics) View(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	id uuid.UUID,
	level piiDomain.MaskingLevel,
) (*piiDomain.SafeRecord, error) {
	start := time.Now()
	safe, err := r.next.View(ctx, actor, kind, id, level)
	r.record(ctx, "record_view", start, err)
	return safe, err
}

// Reveal records metrics for reveals.
func (r *recordUseCaseWithMetrics) Reveal(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	id uuid.UUID,
	fields []string,
) (*piiDomain.SafeRecord, error) {
	start := time.Now()
	safe, err := r.next.Reveal(ctx, actor, kind, id, fields)
	r.record(ctx, "record_reveal", start, err)
	return safe, err
}

// RevealBatch records metrics for batch reveals.
func (r *recordUseCaseWithMetrics) RevealBatch(
	ctx context.Context,
	actor accessDomain.Actor,
	kind piiDomain.Kind,
	ids []uuid.UUID,
	fields []string,
) ([]*RevealResult, error) {
	start := time.Now()
	results, err := r.next.RevealBatch(ctx, actor, kind, ids, fields)
	r.record(ctx, "record_reveal_batch", start, err)
	return results, err
}
