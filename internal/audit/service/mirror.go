package service

import (
	"context"
	"log/slog"
	"time"

	auditDomain "github.com/allisson/carevault/internal/audit/domain"
)

type slogMirror struct {
	handler slog.Handler
}

// NewSlogMirror writes audit records as structured log entries through handler.
// The handler is called directly so write errors surface to the sink.
func NewSlogMirror(handler slog.Handler) Mirror {
	return &slogMirror{handler: handler}
}

// Mirror emits one "audit" entry. persisted reports whether the primary store accepted it.
func (m *slogMirror) Mirror(ctx context.Context, r *auditDomain.AuditRecord, persisted bool) error {
	level := slog.LevelInfo
	if !r.Success || !persisted {
		level = slog.LevelWarn
	}
	if !m.handler.Enabled(ctx, level) {
		return nil
	}

	rec := slog.NewRecord(time.Now(), level, "audit", 0)
	rec.AddAttrs(
		slog.String("audit_id", r.ID.String()),
		slog.String("actor_id", r.ActorID.String()),
		slog.String("actor_role", r.ActorRole),
		slog.String("action", string(r.Action)),
		slog.String("resource", r.Resource),
		slog.String("resource_id", r.ResourceID),
		slog.Bool("success", r.Success),
		slog.Bool("persisted", persisted),
		slog.String("request_id", r.RequestMetadata.RequestID),
		slog.String("ip_address", r.RequestMetadata.IPAddress),
	)
	if r.ErrorMessage != "" {
		rec.AddAttrs(slog.String("error_message", r.ErrorMessage))
	}

	return m.handler.Handle(ctx, rec)
}
