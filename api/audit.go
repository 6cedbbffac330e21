package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// AuditEvent identifies the type of security-relevant action being logged.
type AuditEvent string

const (
	AuditLoginSuccess           AuditEvent = "login_success"
	AuditLoginFailure           AuditEvent = "login_failure"
	AuditLoginRateLimited       AuditEvent = "login_rate_limited"
	AuditLogout                 AuditEvent = "logout"
	AuditPasswordResetRequested AuditEvent = "password_reset_requested"
	AuditUserCreated            AuditEvent = "user_created"
	AuditUserUpdated            AuditEvent = "user_updated"
	AuditUserDeleted            AuditEvent = "user_deleted"
)

// auditLogger wraps slog.Logger for structured security audit logging.
type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With("component", "audit"),
	}
}

// log writes a structured audit log entry. Entries never carry credentials
// or hashes; emails appear only where the caller passes them explicitly.
func (al *auditLogger) log(event AuditEvent, r *http.Request, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("event_id", uuid.NewString()),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	baseAttrs = append(baseAttrs, attrs...)
	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)
}

// logUser is a convenience for events about a specific user record.
func (al *auditLogger) logUser(event AuditEvent, r *http.Request, userID int, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.Int("user_id", userID),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}
