package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/carevault/internal/database"
	piiDomain "github.com/allisson/carevault/internal/pii/domain"
	piiService "github.com/allisson/carevault/internal/pii/service"
)

// DefaultLegacyBatchSize is used when EncryptLegacyFields gets a non-positive batch size.
const DefaultLegacyBatchSize = 100

type legacyEncryptionUseCase struct {
	txManager    database.TxManager
	repo         RecordRepository
	orchestrator piiService.Orchestrator
	logger       *slog.Logger
}

// NewLegacyEncryptionUseCase creates the legacy field migration use case.
func NewLegacyEncryptionUseCase(
	txManager database.TxManager,
	repo RecordRepository,
	orchestrator piiService.Orchestrator,
	logger *slog.Logger,
) LegacyEncryptionUseCase {
	return &legacyEncryptionUseCase{
		txManager:    txManager,
		repo:         repo,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// EncryptLegacyFields commits one transaction per batch so a failure keeps the
// batches already migrated.
func (l *legacyEncryptionUseCase) EncryptLegacyFields(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultLegacyBatchSize
	}

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		var migrated int
		err := l.txManager.WithTx(ctx, func(txCtx context.Context) error {
			fields, err := l.repo.ListLegacyFields(txCtx, batchSize)
			if err != nil {
				return err
			}
			for _, field := range fields {
				if err := l.migrate(txCtx, field); err != nil {
					return err
				}
			}
			migrated = len(fields)
			return nil
		})
		if err != nil {
			return total, err
		}

		total += migrated
		if migrated > 0 {
			l.logger.Info("legacy fields encrypted",
				slog.Int("batch", migrated),
				slog.Int("total", total))
		}
		if migrated < batchSize {
			return total, nil
		}
	}
}

func (l *legacyEncryptionUseCase) migrate(ctx context.Context, field *piiDomain.LegacyField) error {
	// Empty legacy values carry nothing to encrypt; clearing them is enough.
	if field.Value == "" {
		return l.repo.MigrateLegacyField(ctx, field.RecordID, field.Name, nil, nil)
	}

	plan, err := l.orchestrator.PrepareForStorage(field.Kind, map[string]string{field.Name: field.Value})
	if err != nil {
		return fmt.Errorf("failed to encrypt legacy field %s of record %s: %w", field.Name, field.RecordID, err)
	}

	var encrypted []byte
	if enc, ok := plan.Encrypted[field.Name]; ok {
		if encrypted, err = enc.MarshalBlob(); err != nil {
			return err
		}
	}

	var lookup *string
	if value, ok := plan.Passthrough[field.Name]; ok {
		lookup = &value
	}

	return l.repo.MigrateLegacyField(ctx, field.RecordID, field.Name, encrypted, lookup)
}
