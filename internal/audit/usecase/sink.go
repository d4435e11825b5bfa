package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	auditService "github.com/allisson/carevault/internal/audit/service"
	apperrors "github.com/allisson/carevault/internal/errors"
)

// verifyBatchSize is the page size used when scanning records for verification.
const verifyBatchSize = 500

type sink struct {
	repo   AuditRepository
	signer auditService.Signer
	mirror auditService.Mirror
	logger *slog.Logger
}

// NewSink creates the audit sink. mirror may be nil to disable the log stream.
func NewSink(
	repo AuditRepository,
	signer auditService.Signer,
	mirror auditService.Mirror,
	logger *slog.Logger,
) Sink {
	return &sink{
		repo:   repo,
		signer: signer,
		mirror: mirror,
		logger: logger,
	}
}

func (s *sink) Record(ctx context.Context, record *auditDomain.AuditRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.Must(uuid.NewV7())
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	// Both stores keep microseconds; truncating before signing keeps signatures stable.
	record.CreatedAt = record.CreatedAt.UTC().Truncate(time.Microsecond)
	if record.RequestMetadata.IsZero() {
		if md, ok := auditDomain.RequestMetadataFromContext(ctx); ok {
			record.RequestMetadata = md
		}
	}

	err := s.append(ctx, record)
	s.mirrorRecord(ctx, record, err == nil)
	return err
}

func (s *sink) append(ctx context.Context, record *auditDomain.AuditRecord) error {
	signature, err := s.signer.Sign(record)
	if err != nil {
		return fmt.Errorf("%w: %w", auditDomain.ErrAuditWrite, err)
	}
	record.Signature = signature

	// A client disconnect must not drop the record of what it already saw.
	if err := s.repo.Create(context.WithoutCancel(ctx), record); err != nil {
		return fmt.Errorf("%w: %w", auditDomain.ErrAuditWrite, err)
	}
	return nil
}

func (s *sink) mirrorRecord(ctx context.Context, record *auditDomain.AuditRecord, persisted bool) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Mirror(context.WithoutCancel(ctx), record, persisted); err != nil {
		s.logger.Error("failed to mirror audit record",
			slog.String("audit_id", record.ID.String()),
			slog.Any("error", err),
		)
	}
}

func (s *sink) List(
	ctx context.Context,
	offset, limit int,
	filter auditDomain.ListFilter,
) ([]*auditDomain.AuditRecord, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, auditDomain.ErrInvalidTimeRange
	}

	records, err := s.repo.List(ctx, offset, limit, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit records")
	}
	return records, nil
}

func (s *sink) Verify(ctx context.Context, from, to time.Time) (*auditDomain.VerificationReport, error) {
	if from.After(to) {
		return nil, auditDomain.ErrInvalidTimeRange
	}

	report := &auditDomain.VerificationReport{InvalidIDs: make([]uuid.UUID, 0)}
	filter := auditDomain.ListFilter{From: &from, To: &to}

	for offset := 0; ; offset += verifyBatchSize {
		records, err := s.repo.List(ctx, offset, verifyBatchSize, filter)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit records")
		}

		for _, record := range records {
			report.TotalChecked++
			if !record.IsSigned() {
				report.UnsignedCount++
				continue
			}
			report.SignedCount++
			if err := s.signer.Verify(record); err != nil {
				report.InvalidCount++
				report.InvalidIDs = append(report.InvalidIDs, record.ID)
				continue
			}
			report.ValidCount++
		}

		if len(records) < verifyBatchSize {
			break
		}
	}

	return report, nil
}
