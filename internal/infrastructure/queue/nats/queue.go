// Package nats carries document-ingested events from the intake API to the
// processing worker.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/caseworks/evidence-intake/internal/infrastructure/resilience"
)

type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

type Options struct {
	ConnectTimeout     time.Duration
	ReconnectWait      time.Duration
	MaxReconnects      int
	ResilienceExecutor *resilience.Executor
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	executor := options.ResilienceExecutor
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}

	conn, err := nats.Connect(
		url,
		nats.Name("evidence-intake"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	return &Queue{conn: conn, subject: subject, executor: executor}, nil
}

func (q *Queue) PublishDocumentIngested(ctx context.Context, documentID string) error {
	return q.executor.Execute(ctx, "nats_publish", func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, []byte(documentID)); err != nil {
			return fmt.Errorf("publish to %s: %w", q.subject, err)
		}
		return nil
	}, publishClassifier)
}

func publishClassifier(err error) resilience.ErrorClassification {
	return resilience.ErrorClassification{Retryable: isConnectionError(err), RecordFailure: true}
}

func isConnectionError(err error) bool {
	switch {
	case err == nats.ErrConnectionClosed, err == nats.ErrConnectionDraining, err == nats.ErrTimeout:
		return true
	default:
		return false
	}
}

// SubscribeDocumentIngested consumes ingestion events until ctx ends. Handler
// errors are logged and the message is dropped; a reprocess request re-queues
// the document explicitly.
func (q *Queue) SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, "evidence-workers", func(msg *nats.Msg) {
		documentID := string(msg.Data)
		if err := handler(ctx, documentID); err != nil {
			slog.Error("document_handler_failed", "document_id", documentID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", q.subject, err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		slog.Warn("nats_drain_failed", "error", err)
	}
	return nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}
