package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	"github.com/allisson/carevault/internal/access/http/dto"
	accessUseCase "github.com/allisson/carevault/internal/access/usecase"
	apperrors "github.com/allisson/carevault/internal/errors"
	"github.com/allisson/carevault/internal/httputil"
)

// CareTeamHandler handles care team administration.
type CareTeamHandler struct {
	useCase accessUseCase.CareTeamUseCase
	logger  *slog.Logger
}

// NewCareTeamHandler creates a new care team handler.
func NewCareTeamHandler(useCase accessUseCase.CareTeamUseCase, logger *slog.Logger) *CareTeamHandler {
	return &CareTeamHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// AssignHandler assigns a clinician to a patient.
// PUT /v1/patients/:id/care-team/:clinicianID
func (h *CareTeamHandler) AssignHandler(c *gin.Context) {
	admin, patientID, clinicianID, ok := h.parse(c)
	if !ok {
		return
	}

	if err := h.useCase.Assign(c.Request.Context(), admin, patientID, clinicianID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveHandler removes a clinician from a patient's care team.
// DELETE /v1/patients/:id/care-team/:clinicianID
func (h *CareTeamHandler) RemoveHandler(c *gin.Context) {
	admin, patientID, clinicianID, ok := h.parse(c)
	if !ok {
		return
	}

	if err := h.useCase.Remove(c.Request.Context(), admin, patientID, clinicianID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListHandler lists a patient's care team.
// GET /v1/patients/:id/care-team
func (h *CareTeamHandler) ListHandler(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid patient id"), h.logger)
		return
	}

	assignments, err := h.useCase.List(c.Request.Context(), patientID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAssignmentsToListResponse(assignments))
}

func (h *CareTeamHandler) parse(c *gin.Context) (accessDomain.Actor, uuid.UUID, uuid.UUID, bool) {
	admin, ok := accessDomain.ActorFromContext(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return accessDomain.Actor{}, uuid.Nil, uuid.Nil, false
	}

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid patient id"), h.logger)
		return accessDomain.Actor{}, uuid.Nil, uuid.Nil, false
	}

	clinicianID, err := uuid.Parse(c.Param("clinicianID"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid clinician id"), h.logger)
		return accessDomain.Actor{}, uuid.Nil, uuid.Nil, false
	}

	return admin, patientID, clinicianID, true
}
