// Package http provides the API server, its router and the metrics server.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	accessHTTP "github.com/allisson/carevault/internal/access/http"
	auditHTTP "github.com/allisson/carevault/internal/audit/http"
	authHTTP "github.com/allisson/carevault/internal/auth/http"
	authUseCase "github.com/allisson/carevault/internal/auth/usecase"
	"github.com/allisson/carevault/internal/config"
	"github.com/allisson/carevault/internal/metrics"
	piiHTTP "github.com/allisson/carevault/internal/pii/http"
	transportHTTP "github.com/allisson/carevault/internal/transport/http"
	transportService "github.com/allisson/carevault/internal/transport/service"
)

// readinessTimeout bounds the database ping of the readiness check.
const readinessTimeout = 2 * time.Second

// Server represents the API HTTP server.
type Server struct {
	db        *sql.DB
	keyLoaded func() bool
	server    *http.Server
	router    *gin.Engine
	logger    *slog.Logger
}

// RouterDeps collects everything SetupRouter mounts.
type RouterDeps struct {
	Config *config.Config

	AuthHandler     *authHTTP.AuthHandler
	RecordHandler   *piiHTTP.RecordHandler
	CareTeamHandler *accessHTTP.CareTeamHandler
	AuditHandler    *auditHTTP.AuditHandler
	LoginUseCase    authUseCase.LoginUseCase

	// TransportCipher is nil when transport encryption is disabled.
	TransportCipher transportService.Cipher
	TransportAudit  transportHTTP.AuditRecorder

	BusinessMetrics metrics.BusinessMetrics
	// MetricsProvider is nil when metrics are disabled.
	MetricsProvider *metrics.Provider

	// KeyLoaded reports whether the field encryption key is available.
	KeyLoaded func() bool
}

// NewServer creates a new HTTP server. The router is installed by SetupRouter.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger.With(slog.String("listener", "api")),
		server: newHTTPServer(host, port, nil, 10*time.Second),
	}
}

// SetupRouter builds the gin engine with all API routes. The background
// goroutines of the rate limiters stop when ctx is done.
func (s *Server) SetupRouter(ctx context.Context, deps RouterDeps) {
	cfg := deps.Config
	s.keyLoaded = deps.KeyLoaded

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))
	router.Use(RequestMetadataMiddleware())

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if deps.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(deps.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if deps.TransportCipher != nil {
		v1.Use(transportHTTP.EnvelopeMiddleware(
			deps.TransportCipher,
			deps.TransportAudit,
			deps.BusinessMetrics,
			s.logger,
		))
	}

	login := []gin.HandlerFunc{}
	if cfg.RateLimitLoginEnabled {
		login = append(login, authHTTP.LoginRateLimitMiddleware(
			ctx,
			cfg.RateLimitLoginRequestsPerSec,
			cfg.RateLimitLoginBurst,
			s.logger,
		))
	}
	login = append(login, deps.AuthHandler.LoginHandler)
	v1.POST("/auth/login", login...)

	authed := v1.Group("")
	authed.Use(authHTTP.AuthenticationMiddleware(deps.LoginUseCase, s.logger))
	if cfg.RateLimitEnabled {
		authed.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	adminOnly := accessHTTP.RequireRole(s.logger, accessDomain.RoleAdmin)
	staff := accessHTTP.RequireRole(s.logger, accessDomain.RoleAdmin, accessDomain.RoleClinician)

	// Routes returning PII values, masked or not.
	piiOut := []gin.HandlerFunc{}
	if deps.TransportCipher != nil {
		piiOut = append(piiOut, transportHTTP.RequireEncryptedResponse(s.logger))
	}
	withPIIOut := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(slices.Clone(piiOut), h)
	}

	records := authed.Group("/records/:type", RequireKeyMiddleware(deps.KeyLoaded, s.logger))
	{
		records.POST("", deps.RecordHandler.CreateHandler)
		records.POST("/reveal-batch", withPIIOut(deps.RecordHandler.RevealBatchHandler)...)
		records.GET("/:id", withPIIOut(deps.RecordHandler.GetHandler)...)
		records.PATCH("/:id", deps.RecordHandler.UpdateHandler)
		records.POST("/:id/reveal", withPIIOut(deps.RecordHandler.RevealHandler)...)
	}

	careTeam := authed.Group("/patients/:id/care-team")
	{
		careTeam.GET("", staff, deps.CareTeamHandler.ListHandler)
		careTeam.PUT("/:clinicianID", adminOnly, deps.CareTeamHandler.AssignHandler)
		careTeam.DELETE("/:clinicianID", adminOnly, deps.CareTeamHandler.RemoveHandler)
	}

	auditRecords := authed.Group("/audit-records", adminOnly)
	{
		auditRecords.GET("", deps.AuditHandler.ListHandler)
		auditRecords.POST("/verify", deps.AuditHandler.VerifyHandler)
	}

	users := authed.Group("/users", adminOnly)
	{
		users.POST("", deps.AuthHandler.CreateUserHandler)
		users.POST("/:id/unlock", deps.AuthHandler.UnlockUserHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start blocks serving the router installed by SetupRouter.
func (s *Server) Start(_ context.Context) error {
	s.server.Handler = s.router

	return listen(s.server, s.logger)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers and the field
// encryption key is loaded.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{
		"database":       "ok",
		"encryption_key": "loaded",
	}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness: database ping failed", slog.Any("error", err))
			components["database"] = "error"
			ready = false
		}
	}

	if s.keyLoaded == nil || !s.keyLoaded() {
		components["encryption_key"] = "missing"
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
