package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"casedocs/internal/config"
	"casedocs/internal/database"
	"casedocs/internal/database/migration"
	"casedocs/internal/download"
	handlers "casedocs/internal/http/handler"
	"casedocs/internal/http/middleware"
	"casedocs/internal/ocr"
	"casedocs/internal/otel"
	"casedocs/internal/policy"
	"casedocs/internal/queue"
	"casedocs/internal/repository/postgres"
	"casedocs/internal/service"
	"casedocs/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// app holds the process wide dependencies shared by every command.
type app struct {
	cfg      *config.AppConfig
	log      zerolog.Logger
	db       *sql.DB
	redis    *redis.Client
	registry *prometheus.Registry
	tracing  otel.Shutdown

	docSvc service.DocumentService
	poller *ocr.Poller
}

func newApp(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, registry: prometheus.NewRegistry()}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context) error {
	cfg, log := a.cfg, a.log
	var err error

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if a.tracing, err = otel.Init(ctx, log); err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	// Initialize PostgreSQL connection (with pooling via database/sql)
	if a.db, err = database.NewPostgres(ctx, cfg.Database); err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	store, err := storage.New(ctx, *cfg)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	if a.redis, err = queue.NewClient(ctx, cfg.Redis); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	streamOpts := queue.StreamOptions{
		Group:             cfg.OCR.ConsumerGroup,
		Consumer:          cfg.OCR.ConsumerName,
		VisibilityTimeout: cfg.OCR.VisibilityTimeout,
	}
	input := queue.NewRedisStream(a.redis, cfg.OCR.InputQueue, streamOpts)
	output := queue.NewRedisStream(a.redis, cfg.OCR.OutputQueue, streamOpts)
	deadLetter := queue.NewRedisStream(a.redis, cfg.OCR.DeadLetterQueue, streamOpts)

	metrics, err := ocr.NewMetrics(a.registry)
	if err != nil {
		return fmt.Errorf("register ocr metrics: %w", err)
	}

	docRepo := postgres.NewDocumentPostgres(a.db)
	subjectRepo := postgres.NewSubjectPostgres(a.db)

	submitter := ocr.NewSubmitter(input, ocr.SubmitterConfig{
		StorageType: cfg.StorageBackend,
		FormVersion: cfg.OCR.FormVersion,
		Retries:     cfg.OCR.EnqueueRetries,
		RetryDelay:  cfg.OCR.EnqueueRetryDelay,
	}, metrics, log)

	a.docSvc = service.NewDocumentService(
		docRepo,
		subjectRepo,
		store,
		download.NewHTTPDownloader(cfg.Download),
		submitter,
		service.Options{
			EnqueueFailurePolicy: cfg.OCR.EnqueueFailurePolicy,
			OriginalURLExpiry:    cfg.OriginalURLExpiry,
		},
		log,
	)

	reconciler := ocr.NewReconciler(docRepo, store, output, deadLetter, ocr.ReconcilerConfig{
		MaxDequeueCount: int64(cfg.OCR.MaxDequeueCount),
		ResultTimeout:   cfg.OCR.ResultTimeout,
		MaxResultBytes:  cfg.OCR.ResultMaxBytes,
	}, metrics, log)
	a.poller = ocr.NewPoller(output, reconciler, ocr.PollerConfig{
		Interval:  cfg.OCR.PollInterval,
		BatchSize: cfg.OCR.BatchSize,
	}, metrics, log)

	return nil
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error().Str("event", "redis_close_failed").Err(err).Send()
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Error().Str("event", "db_close_failed").Err(err).Send()
		}
	}
	if a.tracing != nil {
		if err := a.tracing(ctx); err != nil {
			a.log.Error().Str("event", "tracing_shutdown_failed").Err(err).Send()
		}
	}
}

func runMigrate(ctx context.Context, a *app) error {
	return migration.EnsureMigrated(ctx, a.db, a.log, a.cfg.Database.Host)
}

func runResubmit(ctx context.Context, a *app, docID string) error {
	if err := a.docSvc.Resubmit(ctx, docID); err != nil {
		return err
	}
	a.log.Info().Str("event", "document_resubmitted").Str("document_id", docID).Send()
	return nil
}

func runServe(ctx context.Context, a *app) error {
	if err := migration.EnsureMigrated(ctx, a.db, a.log, a.cfg.Database.Host); err != nil {
		return err
	}

	pol, err := policy.Default()
	if err != nil {
		return err
	}
	prom, err := middleware.NewPrometheusMiddleware(a.registry)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	srv := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(a.log),
		DisableStartupMessage: true,
	})

	// Register global middleware
	srv.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	srv.Use(middleware.RequestID())
	srv.Use(middleware.Logger(a.log))
	srv.Use(prom.Handler())

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(srv, a.db, a.docSvc, pol, a.registry)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := ":" + a.cfg.Port
		a.log.Info().Str("event", "http_listening").Str("addr", addr).Send()
		if err := srv.Listen(addr); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.poller.Start(gctx)
		<-gctx.Done()

		// poller first so no reconciliation runs against a closing pool
		a.poller.Stop()
		if err := srv.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		a.log.Info().Str("event", "shutdown_complete").Send()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
