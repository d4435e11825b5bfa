// Package http provides the care team HTTP API and role-based route guards.
package http

import (
	"log/slog"
	"slices"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	apperrors "github.com/allisson/carevault/internal/errors"
	"github.com/allisson/carevault/internal/httputil"
)

// RequireRole lets the request through only when the authenticated actor has
// one of roles. It must run after the authentication middleware.
//
// Route-level role checks guard administrative endpoints only. Access to PII
// is always decided by the access gate, which also audits the decision.
func RequireRole(logger *slog.Logger, roles ...accessDomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := accessDomain.ActorFromContext(c.Request.Context())
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !slices.Contains(roles, actor.Role) {
			logger.Debug("role check failed",
				slog.String("actor_id", actor.ID.String()),
				slog.String("role", string(actor.Role)))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
