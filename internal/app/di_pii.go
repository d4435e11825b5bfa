package app

import (
	"database/sql"

	accessUseCase "github.com/allisson/carevault/internal/access/usecase"
	piiHTTP "github.com/allisson/carevault/internal/pii/http"
	piiRepository "github.com/allisson/carevault/internal/pii/repository"
	piiService "github.com/allisson/carevault/internal/pii/service"
	piiUseCase "github.com/allisson/carevault/internal/pii/usecase"
)

// recordStore is what the PII repositories provide: record persistence and the
// ownership lookups of the access gate.
type recordStore interface {
	piiUseCase.RecordRepository
	accessUseCase.OwnershipResolver
}

type piiComponents struct {
	repository    lazy[recordStore]
	orchestrator  lazy[piiService.Orchestrator]
	recordUseCase lazy[piiUseCase.RecordUseCase]
	legacyUseCase lazy[piiUseCase.LegacyEncryptionUseCase]
	handler       lazy[*piiHTTP.RecordHandler]
}

// RecordRepository returns the PII record repository.
func (c *Container) RecordRepository() (recordStore, error) {
	return c.pii.repository.get(func() (recordStore, error) {
		return byDriver(c, "pii record repository",
			func(db *sql.DB) recordStore { return piiRepository.NewPostgreSQLRecordRepository(db) },
			func(db *sql.DB) recordStore { return piiRepository.NewMySQLRecordRepository(db) },
		)
	})
}

// Orchestrator returns the PII orchestrator.
func (c *Container) Orchestrator() (piiService.Orchestrator, error) {
	return c.pii.orchestrator.get(func() (piiService.Orchestrator, error) {
		cipher, err := c.FieldCipher()
		if err != nil {
			return nil, err
		}
		return piiService.NewOrchestrator(cipher, c.config.PIIDecryptConcurrency), nil
	})
}

// RecordUseCase returns the PII record use case wrapped with metrics.
func (c *Container) RecordUseCase() (piiUseCase.RecordUseCase, error) {
	return c.pii.recordUseCase.get(func() (piiUseCase.RecordUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, err
		}
		repo, err := c.RecordRepository()
		if err != nil {
			return nil, err
		}
		gate, err := c.AccessGate()
		if err != nil {
			return nil, err
		}
		orchestrator, err := c.Orchestrator()
		if err != nil {
			return nil, err
		}
		sink, err := c.AuditSink()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		useCase := piiUseCase.NewRecordUseCase(txManager, repo, gate, orchestrator, sink)
		return piiUseCase.NewRecordUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// LegacyEncryptionUseCase returns the legacy plaintext migration use case.
func (c *Container) LegacyEncryptionUseCase() (piiUseCase.LegacyEncryptionUseCase, error) {
	return c.pii.legacyUseCase.get(func() (piiUseCase.LegacyEncryptionUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, err
		}
		repo, err := c.RecordRepository()
		if err != nil {
			return nil, err
		}
		orchestrator, err := c.Orchestrator()
		if err != nil {
			return nil, err
		}
		return piiUseCase.NewLegacyEncryptionUseCase(txManager, repo, orchestrator, c.Logger()), nil
	})
}

// RecordHandler returns the PII record HTTP handler.
func (c *Container) RecordHandler() (*piiHTTP.RecordHandler, error) {
	return c.pii.handler.get(func() (*piiHTTP.RecordHandler, error) {
		useCase, err := c.RecordUseCase()
		if err != nil {
			return nil, err
		}
		return piiHTTP.NewRecordHandler(useCase, c.Logger()), nil
	})
}
