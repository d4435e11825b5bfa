package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	piiUseCase "github.com/allisson/carevault/internal/pii/usecase"
)

// RunEncryptLegacyFields encrypts PII columns that still hold plaintext written
// before field encryption was enabled. It processes batchSize fields per
// transaction until none are left and is safe to rerun.
//
// Requirements: ENCRYPTION_KEY must be configured.
func RunEncryptLegacyFields(
	ctx context.Context,
	useCase piiUseCase.LegacyEncryptionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	batchSize int,
) error {
	if batchSize < 1 {
		return fmt.Errorf("batch size must be at least 1")
	}

	logger.Info("encrypting legacy plaintext fields", slog.Int("batch_size", batchSize))

	migrated, err := useCase.EncryptLegacyFields(ctx, batchSize)
	if err != nil {
		_, _ = fmt.Fprintf(writer, "Encrypted %d field(s) before failing\n", migrated)
		return fmt.Errorf("failed to encrypt legacy fields: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Encrypted %d legacy field(s)\n", migrated)
	logger.Info("legacy field encryption completed", slog.Int("migrated", migrated))
	return nil
}
