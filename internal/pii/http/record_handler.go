// Package http provides the records API. Handlers resolve the actor from the
// request context and delegate every PII decision to the record use case.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	apperrors "github.com/allisson/carevault/internal/errors"
	"github.com/allisson/carevault/internal/httputil"
	piiDomain "github.com/allisson/carevault/internal/pii/domain"
	"github.com/allisson/carevault/internal/pii/http/dto"
	piiUseCase "github.com/allisson/carevault/internal/pii/usecase"
	customValidation "github.com/allisson/carevault/internal/validation"
)

// RecordHandler handles the records API.
type RecordHandler struct {
	useCase piiUseCase.RecordUseCase
	logger  *slog.Logger
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(useCase piiUseCase.RecordUseCase, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// CreateHandler stores a new record.
// POST /v1/records/:type
func (h *RecordHandler) CreateHandler(c *gin.Context) {
	actor, kind, ok := h.actorAndKind(c)
	if !ok {
		return
	}

	var req dto.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid owner id"), h.logger)
		return
	}

	record, err := h.useCase.Create(c.Request.Context(), actor, kind, ownerID, req.Fields)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRecordToResponse(record))
}

// UpdateHandler replaces fields of an existing record.
// PATCH /v1/records/:type/:id
func (h *RecordHandler) UpdateHandler(c *gin.Context) {
	actor, kind, ok := h.actorAndKind(c)
	if !ok {
		return
	}
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	var req dto.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	record, err := h.useCase.Update(c.Request.Context(), actor, kind, id, req.Fields)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordToResponse(record))
}

// GetHandler returns a masked view of a record.
// GET /v1/records/:type/:id?masking=full|partial
func (h *RecordHandler) GetHandler(c *gin.Context) {
	actor, kind, ok := h.actorAndKind(c)
	if !ok {
		return
	}
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	level, err := piiDomain.ParseMaskingLevel(c.Query("masking"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	record, err := h.useCase.View(c.Request.Context(), actor, kind, id, level)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordToResponse(record))
}

// RevealHandler decrypts fields of a record. An empty body reveals every sensitive field.
// POST /v1/records/:type/:id/reveal
func (h *RecordHandler) RevealHandler(c *gin.Context) {
	actor, kind, ok := h.actorAndKind(c)
	if !ok {
		return
	}
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	var req dto.RevealRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.HandleValidationErrorGin(c, err, h.logger)
			return
		}
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	record, err := h.useCase.Reveal(c.Request.Context(), actor, kind, id, req.Fields)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.MapRecordToResponse(record))
}

// RevealBatchHandler decrypts fields of several records.
// POST /v1/records/:type/reveal-batch
func (h *RecordHandler) RevealBatchHandler(c *gin.Context) {
	actor, kind, ok := h.actorAndKind(c)
	if !ok {
		return
	}

	var req dto.RevealBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid record id: %s", raw), h.logger)
			return
		}
		ids = append(ids, id)
	}

	results, err := h.useCase.RevealBatch(c.Request.Context(), actor, kind, ids, req.Fields)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.MapRevealResultsToResponse(results))
}

func (h *RecordHandler) actorAndKind(c *gin.Context) (accessDomain.Actor, piiDomain.Kind, bool) {
	actor, ok := accessDomain.ActorFromContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return accessDomain.Actor{}, "", false
	}

	kind, err := piiDomain.ParseKind(c.Param("type"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return accessDomain.Actor{}, "", false
	}

	return actor, kind, true
}

func (h *RecordHandler) recordID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid record id"), h.logger)
		return uuid.Nil, false
	}
	return id, true
}
