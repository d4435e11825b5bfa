package app

import (
	"database/sql"

	auditHTTP "github.com/allisson/carevault/internal/audit/http"
	auditRepository "github.com/allisson/carevault/internal/audit/repository"
	auditService "github.com/allisson/carevault/internal/audit/service"
	auditUseCase "github.com/allisson/carevault/internal/audit/usecase"
)

type auditComponents struct {
	repository lazy[auditUseCase.AuditRepository]
	signer     lazy[auditService.Signer]
	sink       lazy[auditUseCase.Sink]
	handler    lazy[*auditHTTP.AuditHandler]
}

// AuditRepository returns the audit record repository.
func (c *Container) AuditRepository() (auditUseCase.AuditRepository, error) {
	return c.audit.repository.get(func() (auditUseCase.AuditRepository, error) {
		return byDriver(c, "audit repository",
			func(db *sql.DB) auditUseCase.AuditRepository { return auditRepository.NewPostgreSQLAuditRepository(db) },
			func(db *sql.DB) auditUseCase.AuditRepository { return auditRepository.NewMySQLAuditRepository(db) },
		)
	})
}

// AuditSigner returns the audit record signer keyed from the master key.
func (c *Container) AuditSigner() (auditService.Signer, error) {
	return c.audit.signer.get(func() (auditService.Signer, error) {
		key, err := c.MasterKey()
		if err != nil {
			return nil, err
		}
		return auditService.NewHMACSigner(key)
	})
}

// AuditSink returns the audit sink that every component records through.
func (c *Container) AuditSink() (auditUseCase.Sink, error) {
	return c.audit.sink.get(func() (auditUseCase.Sink, error) {
		repo, err := c.AuditRepository()
		if err != nil {
			return nil, err
		}
		signer, err := c.AuditSigner()
		if err != nil {
			return nil, err
		}
		logger := c.Logger()
		return auditUseCase.NewSink(repo, signer, auditService.NewSlogMirror(logger.Handler()), logger), nil
	})
}

// AuditHandler returns the audit HTTP handler.
func (c *Container) AuditHandler() (*auditHTTP.AuditHandler, error) {
	return c.audit.handler.get(func() (*auditHTTP.AuditHandler, error) {
		sink, err := c.AuditSink()
		if err != nil {
			return nil, err
		}
		return auditHTTP.NewAuditHandler(sink, c.Logger()), nil
	})
}
