package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	"github.com/allisson/carevault/internal/access/http/dto"
	"github.com/allisson/carevault/internal/access/usecase/mocks"
	apperrors "github.com/allisson/carevault/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRouter mounts the care team routes behind a stub that injects actor.
func newRouter(handler *CareTeamHandler, actor *accessDomain.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if actor != nil {
			c.Request = c.Request.WithContext(accessDomain.WithActor(c.Request.Context(), *actor))
		}
		c.Next()
	})
	admin := router.Group("/v1/patients/:id/care-team", RequireRole(discardLogger(), accessDomain.RoleAdmin))
	admin.GET("", handler.ListHandler)
	admin.PUT("/:clinicianID", handler.AssignHandler)
	admin.DELETE("/:clinicianID", handler.RemoveHandler)
	return router
}

func TestCareTeamHandler(t *testing.T) {
	admin := &accessDomain.Actor{ID: uuid.Must(uuid.NewV7()), Role: accessDomain.RoleAdmin}
	patientID := uuid.Must(uuid.NewV7())
	clinicianID := uuid.Must(uuid.NewV7())
	path := "/v1/patients/" + patientID.String() + "/care-team/" + clinicianID.String()

	t.Run("Success_Assign", func(t *testing.T) {
		uc := mocks.NewMockCareTeamUseCase(t)
		uc.On("Assign", mock.Anything, *admin, patientID, clinicianID).Return(nil).Once()

		w := httptest.NewRecorder()
		newRouter(NewCareTeamHandler(uc, discardLogger()), admin).
			ServeHTTP(w, httptest.NewRequest(http.MethodPut, path, nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Error_AssignConflict", func(t *testing.T) {
		uc := mocks.NewMockCareTeamUseCase(t)
		uc.On("Assign", mock.Anything, *admin, patientID, clinicianID).Return(apperrors.ErrConflict).Once()

		w := httptest.NewRecorder()
		newRouter(NewCareTeamHandler(uc, discardLogger()), admin).
			ServeHTTP(w, httptest.NewRequest(http.MethodPut, path, nil))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Success_Remove", func(t *testing.T) {
		uc := mocks.NewMockCareTeamUseCase(t)
		uc.On("Remove", mock.Anything, *admin, patientID, clinicianID).Return(nil).Once()

		w := httptest.NewRecorder()
		newRouter(NewCareTeamHandler(uc, discardLogger()), admin).
			ServeHTTP(w, httptest.NewRequest(http.MethodDelete, path, nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Success_List", func(t *testing.T) {
		uc := mocks.NewMockCareTeamUseCase(t)
		uc.On("List", mock.Anything, patientID).Return([]*accessDomain.CareTeamAssignment{{
			PatientID:   patientID,
			ClinicianID: clinicianID,
			AssignedBy:  admin.ID,
			CreatedAt:   time.Now().UTC(),
		}}, nil).Once()

		w := httptest.NewRecorder()
		newRouter(NewCareTeamHandler(uc, discardLogger()), admin).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/patients/"+patientID.String()+"/care-team", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListCareTeamResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 1)
		assert.Equal(t, clinicianID.String(), response.Data[0].ClinicianID)
	})

	t.Run("Error_InvalidClinicianID", func(t *testing.T) {
		uc := mocks.NewMockCareTeamUseCase(t)

		w := httptest.NewRecorder()
		newRouter(NewCareTeamHandler(uc, discardLogger()), admin).
			ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/v1/patients/"+patientID.String()+"/care-team/x", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_NonAdminForbidden", func(t *testing.T) {
		uc := mocks.NewMockCareTeamUseCase(t)
		clinician := &accessDomain.Actor{ID: clinicianID, Role: accessDomain.RoleClinician}

		w := httptest.NewRecorder()
		newRouter(NewCareTeamHandler(uc, discardLogger()), clinician).
			ServeHTTP(w, httptest.NewRequest(http.MethodPut, path, nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Error_Unauthenticated", func(t *testing.T) {
		uc := mocks.NewMockCareTeamUseCase(t)

		w := httptest.NewRecorder()
		newRouter(NewCareTeamHandler(uc, discardLogger()), nil).
			ServeHTTP(w, httptest.NewRequest(http.MethodPut, path, nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
