package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caseworks/evidence-intake/internal/bootstrap"
	"github.com/caseworks/evidence-intake/internal/config"
	"github.com/caseworks/evidence-intake/internal/observability/logging"
	"github.com/caseworks/evidence-intake/internal/observability/metrics"
)

const serviceName = "evidence-worker"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	app.ProcessUC.SetRuleResultObserver(workerMetrics.ObserveRuleResult)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		workerMetrics.StartDocument()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument(finalOutcome(processCtx, app, documentID, processErr), time.Since(start))
		return processErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

// finalOutcome labels the metrics sample with where the document landed.
func finalOutcome(ctx context.Context, app *bootstrap.App, documentID string, processErr error) string {
	if processErr != nil {
		return "error"
	}
	doc, err := app.Repo.Get(ctx, documentID)
	if err != nil {
		return "unknown"
	}
	return string(doc.Status)
}
