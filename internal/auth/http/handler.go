// Package http provides the login and user administration endpoints and the
// session authentication middleware.
package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	"github.com/allisson/carevault/internal/auth/http/dto"
	authUseCase "github.com/allisson/carevault/internal/auth/usecase"
	"github.com/allisson/carevault/internal/httputil"
	transportHTTP "github.com/allisson/carevault/internal/transport/http"
	customValidation "github.com/allisson/carevault/internal/validation"
)

// errEncryptionRequired is returned when a plaintext login arrives while
// encrypted login is enforced.
var errEncryptionRequired = errors.New("login credentials must be transport encrypted")

// AuthHandler handles login and user administration.
type AuthHandler struct {
	loginUseCase      authUseCase.LoginUseCase
	userUseCase       authUseCase.UserUseCase
	requireEncryption bool
	logger            *slog.Logger
}

// NewAuthHandler creates a new auth handler. With requireEncryption set, login
// bodies that did not arrive in a transport envelope are rejected.
func NewAuthHandler(
	loginUseCase authUseCase.LoginUseCase,
	userUseCase authUseCase.UserUseCase,
	requireEncryption bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		loginUseCase:      loginUseCase,
		userUseCase:       userUseCase,
		requireEncryption: requireEncryption,
		logger:            logger,
	}
}

// LoginHandler verifies credentials and issues a session token.
// POST /v1/auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	if h.requireEncryption && !transportHTTP.IsEncrypted(c) {
		httputil.HandleBadRequestGin(c, errEncryptionRequired, h.logger)
		return
	}

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	session, err := h.loginUseCase.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.MapSessionToLoginResponse(session))
}

// CreateUserHandler registers a login account.
// POST /v1/users
func (h *AuthHandler) CreateUserHandler(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.Create(c.Request.Context(), &authUseCase.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     accessDomain.Role(req.Role),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserToResponse(user))
}

// UnlockUserHandler clears a user's lockout.
// POST /v1/users/:id/unlock
func (h *AuthHandler) UnlockUserHandler(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid user id"), h.logger)
		return
	}

	if err := h.userUseCase.Unlock(c.Request.Context(), userID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
