// Package http provides the administrator HTTP API for the audit trail.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	"github.com/allisson/carevault/internal/audit/http/dto"
	auditUseCase "github.com/allisson/carevault/internal/audit/usecase"
	"github.com/allisson/carevault/internal/httputil"
)

// AuditHandler handles HTTP requests for audit record operations.
type AuditHandler struct {
	sink   auditUseCase.Sink
	logger *slog.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(sink auditUseCase.Sink, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		sink:   sink,
		logger: logger,
	}
}

// ListHandler lists audit records newest first.
// GET /v1/audit-records?offset=0&limit=50&actor_id=...&resource_id=...&action=pii.read&created_at_from=...&created_at_to=...
func (h *AuditHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter := auditDomain.ListFilter{
		ResourceID: c.Query("resource_id"),
		Action:     auditDomain.Action(c.Query("action")),
	}

	if filter.ActorID, err = httputil.ParseUUIDQuery(c, "actor_id"); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if filter.From, err = httputil.ParseTimeQuery(c, "created_at_from"); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if filter.To, err = httputil.ParseTimeQuery(c, "created_at_to"); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	records, err := h.sink.List(c.Request.Context(), offset, limit, filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditRecordsToListResponse(records))
}

// VerifyHandler verifies the signatures of records in a time range. The range
// defaults to the last 24 hours.
// POST /v1/audit-records/verify?created_at_from=...&created_at_to=...
func (h *AuditHandler) VerifyHandler(c *gin.Context) {
	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)

	if parsed, err := httputil.ParseTimeQuery(c, "created_at_from"); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	} else if parsed != nil {
		from = *parsed
	}
	if parsed, err := httputil.ParseTimeQuery(c, "created_at_to"); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	} else if parsed != nil {
		to = *parsed
	}

	report, err := h.sink.Verify(c.Request.Context(), from, to)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVerificationReportToResponse(report))
}
