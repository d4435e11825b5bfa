package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	cryptoDomain "github.com/allisson/carevault/internal/crypto/domain"
	"github.com/allisson/carevault/internal/httputil"
)

// CustomLoggerMiddleware logs every request with its request id. Query strings
// are left out because they may carry identifiers.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		attrs := []any{
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("http request", attrs...)
		case status >= 400:
			logger.Warn("http request", attrs...)
		default:
			logger.Info("http request", attrs...)
		}
	}
}

// RequestMetadataMiddleware stores the request metadata audit records carry.
// It must run after the requestid middleware.
func RequestMetadataMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		md := auditDomain.RequestMetadata{
			RequestID: requestid.Get(c),
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
		}
		c.Request = c.Request.WithContext(auditDomain.WithRequestMetadata(c.Request.Context(), md))
		c.Next()
	}
}

// RequireKeyMiddleware answers 503 while no field encryption key is loaded.
// It runs before the access gate, so a refused request leaves no audit record.
func RequireKeyMiddleware(keyLoaded func() bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyLoaded != nil && !keyLoaded() {
			httputil.HandleErrorGin(c, cryptoDomain.ErrMasterKeyNotLoaded, logger)
			c.Abort()
			return
		}
		c.Next()
	}
}
