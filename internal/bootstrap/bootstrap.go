package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/caseworks/evidence-intake/internal/config"
	"github.com/caseworks/evidence-intake/internal/core/ports"
	"github.com/caseworks/evidence-intake/internal/core/usecase"
	"github.com/caseworks/evidence-intake/internal/core/validation"
	"github.com/caseworks/evidence-intake/internal/export"
	"github.com/caseworks/evidence-intake/internal/infrastructure/audit"
	"github.com/caseworks/evidence-intake/internal/infrastructure/caseref"
	"github.com/caseworks/evidence-intake/internal/infrastructure/extractor/docintel"
	"github.com/caseworks/evidence-intake/internal/infrastructure/pagecount"
	"github.com/caseworks/evidence-intake/internal/infrastructure/queue/nats"
	"github.com/caseworks/evidence-intake/internal/infrastructure/repository/memory"
	"github.com/caseworks/evidence-intake/internal/infrastructure/resilience"
	"github.com/caseworks/evidence-intake/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	Engine    *validation.Engine
	Reports   *export.Service
	SubmitUC  ports.DocumentIntake
	ProcessUC *usecase.ProcessDocumentUseCase
	ReviewUC  ports.DocumentReviewer
	QueryUC   ports.DocumentReader

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	repo := memory.NewStore()

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init blob storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}
	closeQueue := queue.Close

	var auditSink ports.AuditSink
	closeDB := func() {}
	if cfg.AuditPostgresDSN != "" {
		db, err := audit.OpenDB(cfg.AuditPostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open audit db: %w", err)
		}
		sink := audit.NewPostgresSink(db)
		if err := sink.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure audit schema: %w", err)
		}
		auditSink = sink
		closeDB = func() { _ = db.Close() }
	} else {
		auditSink = audit.NewLogSink(slog.Default())
	}

	engine := validation.NewEngine()
	if cfg.RulesFilePath != "" {
		loaded, err := validation.LoadRulesFile(engine, cfg.RulesFilePath)
		if err != nil {
			return nil, fmt.Errorf("load rules file: %w", err)
		}
		slog.Info("custom_rules_loaded", "count", loaded, "path", cfg.RulesFilePath)
	}

	extractor := docintel.New(cfg.DocIntelURL, docintel.Options{
		Timeout:            time.Duration(cfg.DocIntelTimeoutSeconds) * time.Second,
		RequestsPerSecond:  cfg.DocIntelRPS,
		ResilienceExecutor: executor,
	})

	pages := pagecount.New()
	refs := caseref.None{}

	submitUC := usecase.NewSubmitDocumentUseCase(repo, storage, queue, pages, auditSink)
	processUC := usecase.NewProcessDocumentUseCase(repo, storage, extractor, refs, engine, auditSink, cfg.ConfidenceThreshold)
	reviewUC := usecase.NewReviewUseCase(repo, queue, auditSink, cfg.BulkLimit)
	queryUC := usecase.NewDocumentQueryUseCase(repo)
	reports := export.NewService(repo, slog.Default())

	return &App{
		Config: cfg,

		Queue:   queue,
		Repo:    repo,
		Engine:  engine,
		Reports: reports,

		SubmitUC:  submitUC,
		ProcessUC: processUC,
		ReviewUC:  reviewUC,
		QueryUC:   queryUC,

		closeFn: func() {
			closeQueue()
			closeDB()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
