package app

import (
	"database/sql"

	accessHTTP "github.com/allisson/carevault/internal/access/http"
	accessRepository "github.com/allisson/carevault/internal/access/repository"
	accessUseCase "github.com/allisson/carevault/internal/access/usecase"
)

type accessComponents struct {
	careTeamRepository lazy[accessUseCase.CareTeamRepository]
	gate               lazy[accessUseCase.Gate]
	careTeamUseCase    lazy[accessUseCase.CareTeamUseCase]
	careTeamHandler    lazy[*accessHTTP.CareTeamHandler]
}

// CareTeamRepository returns the care team assignment repository.
func (c *Container) CareTeamRepository() (accessUseCase.CareTeamRepository, error) {
	return c.access.careTeamRepository.get(func() (accessUseCase.CareTeamRepository, error) {
		return byDriver(c, "care team repository",
			func(db *sql.DB) accessUseCase.CareTeamRepository {
				return accessRepository.NewPostgreSQLCareTeamRepository(db)
			},
			func(db *sql.DB) accessUseCase.CareTeamRepository {
				return accessRepository.NewMySQLCareTeamRepository(db)
			},
		)
	})
}

// AccessGate returns the gate that authorizes and audits every PII access.
func (c *Container) AccessGate() (accessUseCase.Gate, error) {
	return c.access.gate.get(func() (accessUseCase.Gate, error) {
		owners, err := c.RecordRepository()
		if err != nil {
			return nil, err
		}
		careTeam, err := c.CareTeamRepository()
		if err != nil {
			return nil, err
		}
		sink, err := c.AuditSink()
		if err != nil {
			return nil, err
		}
		return accessUseCase.NewGate(owners, careTeam, sink), nil
	})
}

// CareTeamUseCase returns the care team administration use case.
func (c *Container) CareTeamUseCase() (accessUseCase.CareTeamUseCase, error) {
	return c.access.careTeamUseCase.get(func() (accessUseCase.CareTeamUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, err
		}
		repo, err := c.CareTeamRepository()
		if err != nil {
			return nil, err
		}
		directory, err := c.UserRepository()
		if err != nil {
			return nil, err
		}
		sink, err := c.AuditSink()
		if err != nil {
			return nil, err
		}
		return accessUseCase.NewCareTeamUseCase(txManager, repo, directory, sink), nil
	})
}

// CareTeamHandler returns the care team HTTP handler.
func (c *Container) CareTeamHandler() (*accessHTTP.CareTeamHandler, error) {
	return c.access.careTeamHandler.get(func() (*accessHTTP.CareTeamHandler, error) {
		useCase, err := c.CareTeamUseCase()
		if err != nil {
			return nil, err
		}
		return accessHTTP.NewCareTeamHandler(useCase, c.Logger()), nil
	})
}
