package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	authUseCase "github.com/allisson/carevault/internal/auth/usecase"
	apperrors "github.com/allisson/carevault/internal/errors"
	"github.com/allisson/carevault/internal/httputil"
)

const bearerPrefix = "bearer "

// AuthenticationMiddleware resolves the Bearer session token in the
// Authorization header and stores the actor in the request context.
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Invalid or expired token → 401 Unauthorized
//   - Inactive user → 403 Forbidden
//   - Other errors → 500 Internal Server Error
func AuthenticationMiddleware(loginUseCase authUseCase.LoginUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if token == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		actor, err := loginUseCase.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(accessDomain.WithActor(c.Request.Context(), actor))

		logger.Debug("authentication successful",
			slog.String("actor_id", actor.ID.String()),
			slog.String("role", string(actor.Role)))

		c.Next()
	}
}
