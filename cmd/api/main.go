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

	httpadapter "github.com/caseworks/evidence-intake/internal/adapters/http"
	"github.com/caseworks/evidence-intake/internal/bootstrap"
	"github.com/caseworks/evidence-intake/internal/config"
	"github.com/caseworks/evidence-intake/internal/observability/logging"
	"github.com/caseworks/evidence-intake/internal/observability/metrics"
)

const serviceName = "evidence-api"

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

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	router := httpadapter.NewRouter(app.SubmitUC, app.QueryUC, app.ReviewUC, app.Reports, httpMetrics, cfg.PIIAccessToken).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_error", "error", err)
	}
}
