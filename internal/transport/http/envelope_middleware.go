// Package http provides the gin middleware that unwraps encrypted request
// envelopes and encrypts the responses sent back to those clients.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	auditDomain "github.com/allisson/carevault/internal/audit/domain"
	"github.com/allisson/carevault/internal/httputil"
	"github.com/allisson/carevault/internal/metrics"
	transportDomain "github.com/allisson/carevault/internal/transport/domain"
	transportService "github.com/allisson/carevault/internal/transport/service"
)

const (
	// ClientContextHeader overrides User-Agent as the client context.
	ClientContextHeader = "X-Client-Context"

	// maxBodySize bounds how much of a request body is buffered for inspection.
	maxBodySize = 1 << 20

	encryptedRequestKey = "transport.encrypted"
	clientContextKey    = "transport.client_context"
	metricsDomain       = "transport"
)

// AuditRecorder records failed envelope decryptions.
type AuditRecorder interface {
	Record(ctx context.Context, record *auditDomain.AuditRecord) error
}

// ClientContext returns the string the session seed is bound to.
func ClientContext(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(ClientContextHeader)); v != "" {
		return v
	}
	return r.UserAgent()
}

// IsEncrypted reports whether the current request arrived in an envelope.
func IsEncrypted(c *gin.Context) bool {
	return c.GetBool(encryptedRequestKey)
}

// EnvelopeMiddleware replaces an enveloped request body with its plaintext.
// The JSON response is encrypted with the same client context when the
// request was enveloped or carried ClientContextHeader, with or without a
// body. Bodies without the envelope shape are processed as legacy plaintext
// and logged as a warning.
func EnvelopeMiddleware(
	cipher transportService.Cipher,
	audit AuditRecorder,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientContext := ClientContext(c.Request)
		encryptResponse := optedIn(c.Request)

		if c.Request.Body != nil && c.Request.ContentLength != 0 {
			enveloped, ok := unwrapRequest(c, cipher, audit, businessMetrics, logger, clientContext)
			if !ok {
				return
			}
			if enveloped {
				c.Set(encryptedRequestKey, true)
				encryptResponse = true
			}
		}

		if !encryptResponse {
			c.Next()
			return
		}

		c.Set(clientContextKey, clientContext)

		writer := &bufferedWriter{ResponseWriter: c.Writer, status: http.StatusOK}
		c.Writer = writer

		c.Next()

		c.Writer = writer.ResponseWriter
		writer.flush(c, cipher, businessMetrics, logger)
	}
}

// optedIn reports whether the client asked for encrypted responses without
// necessarily sending a body, as a bodiless reveal or GET does.
func optedIn(r *http.Request) bool {
	return strings.TrimSpace(r.Header.Get(ClientContextHeader)) != ""
}

// unwrapRequest replaces the request body with its plaintext. ok is false when
// the request has already been rejected.
func unwrapRequest(
	c *gin.Context,
	cipher transportService.Cipher,
	audit AuditRecorder,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
	clientContext string,
) (enveloped, ok bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize+1))
	_ = c.Request.Body.Close()
	if err != nil {
		httputil.HandleBadRequestGin(c, err, logger)
		c.Abort()
		return false, false
	}
	if len(body) > maxBodySize {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, httputil.ErrorResponse{
			Error:   "payload_too_large",
			Message: "Request body is too large",
		})
		return false, false
	}

	payload, isEnvelope, err := transportDomain.ParseEnvelope(body)
	if err != nil {
		httputil.HandleErrorGin(c, err, logger)
		c.Abort()
		return false, false
	}
	if !isEnvelope {
		if len(bytes.TrimSpace(body)) > 0 {
			logger.Warn("legacy plaintext request body",
				slog.String("method", c.Request.Method),
				slog.String("path", c.FullPath()),
			)
		}
		setBody(c, body)
		return false, true
	}

	start := time.Now()
	plaintext, err := cipher.DecryptPayload(payload, clientContext)
	metrics.Observe(c.Request.Context(), businessMetrics, metricsDomain, "payload_decrypt", start, err)
	if err != nil {
		recordFailure(c, audit, logger)
		httputil.HandleErrorGin(c, err, logger)
		c.Abort()
		return false, false
	}

	setBody(c, plaintext)
	return true, true
}

// RequireEncryptedResponse rejects requests whose response would leave the
// server in plaintext. It must run after EnvelopeMiddleware and guards the
// routes that return PII.
func RequireEncryptedResponse(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(clientContextKey) == "" {
			logger.Warn("plaintext response refused",
				slog.String("method", c.Request.Method),
				slog.String("path", c.FullPath()),
			)
			c.AbortWithStatusJSON(http.StatusBadRequest, httputil.ErrorResponse{
				Error:   "transport_encryption_required",
				Message: "Send an encrypted envelope or the " + ClientContextHeader + " header",
			})
			return
		}
		c.Next()
	}
}

func setBody(c *gin.Context, body []byte) {
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	c.Request.ContentLength = int64(len(body))
}

// recordFailure audits a failed decryption. The request is rejected whether or
// not the audit write succeeds.
func recordFailure(c *gin.Context, audit AuditRecorder, logger *slog.Logger) {
	if audit == nil {
		return
	}

	record := &auditDomain.AuditRecord{
		ActorRole:    "anonymous",
		Action:       auditDomain.ActionTransportDecrypt,
		Resource:     "transport",
		ResourceID:   c.FullPath(),
		Success:      false,
		ErrorMessage: transportDomain.ErrTransportDecryption.Error(),
	}
	if actor, ok := accessDomain.ActorFromContext(c.Request.Context()); ok {
		record.ActorID = actor.ID
		record.ActorRole = string(actor.Role)
	}

	if err := audit.Record(c.Request.Context(), record); err != nil {
		logger.Error("failed to audit transport decryption failure", slog.Any("error", err))
	}
}

// bufferedWriter holds the response until the handler chain finishes so it
// can be encrypted as a whole.
type bufferedWriter struct {
	gin.ResponseWriter
	body   bytes.Buffer
	status int
}

func (w *bufferedWriter) WriteHeader(code int) {
	w.status = code
}

func (w *bufferedWriter) WriteHeaderNow() {}

func (w *bufferedWriter) Write(data []byte) (int, error) {
	return w.body.Write(data)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

func (w *bufferedWriter) Status() int {
	return w.status
}

func (w *bufferedWriter) Size() int {
	return w.body.Len()
}

func (w *bufferedWriter) Written() bool {
	return w.body.Len() > 0
}

// flush writes the buffered response. JSON bodies are wrapped in an envelope;
// anything else is passed through unchanged.
func (w *bufferedWriter) flush(
	c *gin.Context,
	cipher transportService.Cipher,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) {
	out := w.ResponseWriter
	body := w.body.Bytes()

	if len(body) == 0 || !strings.HasPrefix(out.Header().Get("Content-Type"), "application/json") {
		out.WriteHeader(w.status)
		_, _ = out.Write(body)
		return
	}

	ctx := c.Request.Context()
	payload, err := cipher.EncryptPayload(json.RawMessage(body), c.GetString(clientContextKey))
	businessMetrics.RecordOperation(ctx, metricsDomain, "payload_encrypt", metrics.Status(err))
	if err != nil {
		logger.Error("failed to encrypt response payload", slog.Any("error", err))
		out.Header().Set("Content-Type", "application/json; charset=utf-8")
		out.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(out).Encode(httputil.ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	encoded, err := json.Marshal(transportDomain.Envelope{EncryptedPayload: payload})
	if err != nil {
		logger.Error("failed to marshal response envelope", slog.Any("error", err))
		out.WriteHeader(http.StatusInternalServerError)
		return
	}

	out.Header().Del("Content-Length")
	out.WriteHeader(w.status)
	_, _ = out.Write(encoded)
}
