// Package audit persists the append-only trail of lifecycle transitions and
// corrections. Persistence of this trail is the one durable concern of the
// system; the document registry itself stays in memory.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/caseworks/evidence-intake/internal/core/ports"
)

type PostgresSink struct {
	db *sql.DB
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS audit_events (
    id          BIGSERIAL PRIMARY KEY,
    document_id TEXT NOT NULL,
    case_id     TEXT NOT NULL,
    action      TEXT NOT NULL,
    detail      TEXT NOT NULL DEFAULT '',
    actor       TEXT NOT NULL DEFAULT '',
    occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_events_document ON audit_events (document_id, occurred_at)
`)
	if err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

func (s *PostgresSink) Append(ctx context.Context, event ports.AuditEvent) error {
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO audit_events (document_id, case_id, action, detail, actor, occurred_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, event.DocumentID, event.CaseID, event.Action, event.Detail, event.Actor, occurredAt)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}
