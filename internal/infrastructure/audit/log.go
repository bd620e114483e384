package audit

import (
	"context"
	"log/slog"

	"github.com/caseworks/evidence-intake/internal/core/ports"
)

// LogSink writes audit events to the structured log. Used when no audit
// database is configured, so the trail is still observable.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Append(_ context.Context, event ports.AuditEvent) error {
	s.logger.Info("audit_event",
		"document_id", event.DocumentID,
		"case_id", event.CaseID,
		"action", event.Action,
		"detail", event.Detail,
		"actor", event.Actor,
		"occurred_at", event.OccurredAt,
	)
	return nil
}
