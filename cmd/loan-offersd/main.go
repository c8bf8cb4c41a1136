package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/loan-offers/internal/async"
	"github.com/joseph-ayodele/loan-offers/internal/cache"
	"github.com/joseph-ayodele/loan-offers/internal/catalog"
	"github.com/joseph-ayodele/loan-offers/internal/common"
	"github.com/joseph-ayodele/loan-offers/internal/export"
	"github.com/joseph-ayodele/loan-offers/internal/ingest"
	"github.com/joseph-ayodele/loan-offers/internal/logging"
	"github.com/joseph-ayodele/loan-offers/internal/matching"
	"github.com/joseph-ayodele/loan-offers/internal/notify"
	"github.com/joseph-ayodele/loan-offers/internal/pipeline"
	"github.com/joseph-ayodele/loan-offers/internal/render"
	"github.com/joseph-ayodele/loan-offers/internal/repository"
)

const healthInterval = 30 * time.Second

func main() {
	cfg := common.LoadConfig()
	logger, closer := logging.New(cfg.Log, os.Stdout)
	defer closer.Close()
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	if err := cfg.ValidateDaemon(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("loan-offersd stopped", "err", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	// Database
	drv, pool, err := repository.Open(ctx, repository.Config{
		Driver:           cfg.Database.Driver,
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		return err
	}
	defer repository.Close(drv, pool, logger)

	if err := repository.HealthCheck(ctx, drv, pool, 3*time.Second, logger); err != nil {
		return err
	}
	if err := repository.Migrate(ctx, drv, logger); err != nil {
		return err
	}
	logger.Info("database ready")

	runs := repository.NewRunRepository(drv, logger)
	products := repository.NewProductRepository(drv, logger)
	applicants := repository.NewApplicantRepository(drv, logger)
	matches := repository.NewMatchRepository(drv, logger)

	// Rendering, optionally cached
	var renderer render.Renderer
	if renderer, err = render.New(cfg.Browser, logger); err != nil {
		return err
	}
	store, closeStore := cache.Open(ctx, cfg.Cache, logger)
	defer closeStore()
	renderer = cache.NewCachingRenderer(renderer, store, cfg.Cache.SnapshotTTL, logger)

	cat := catalog.Default()
	if cfg.Scrape.CatalogFile != "" {
		if cat, err = catalog.Load(cfg.Scrape.CatalogFile, logger); err != nil {
			return err
		}
	}
	proc, err := pipeline.NewProcessor(pipeline.Deps{
		Logger:    logger,
		Catalog:   cat,
		Options:   cfg.Scrape.ExtractorOptions(),
		Renderer:  renderer,
		Runs:      runs,
		Products:  products,
		Exporter:  export.NewService(cat.Names(), logger),
		OutputDir: cfg.Output.Dir,
	})
	if err != nil {
		return err
	}

	// Every successful run re-matches applicants, then mails them when SMTP is set up.
	matcher := matching.NewService(products, applicants, matches, logger)
	var notifier *notify.Notifier
	if cfg.ValidateSMTP() == nil {
		notifier = notify.NewNotifier(applicants, matches, notify.NewSMTPSender(cfg.SMTP), logger)
	} else {
		logger.Info("SMTP not configured; notifications disabled")
	}
	afterRun := func(job async.Job, res pipeline.Result, err error) {
		if err != nil || res.Collection.LenderCount == 0 {
			return
		}
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Worker.ProcessTimeout)
		defer cancel()
		sum, err := matcher.Run(actx, nil)
		if err != nil {
			logger.Error("daemon.match.failed", "run_id", res.RunID, "err", err)
			return
		}
		logger.Info("daemon.match.ok", "run_id", res.RunID, "applicants", sum.Applicants, "matches", sum.Matches)
		if notifier == nil || sum.Matches == 0 {
			return
		}
		if _, err := notifier.NotifyAll(actx, false); err != nil {
			logger.Error("daemon.notify.failed", "run_id", res.RunID, "err", err)
		}
	}

	queue := async.NewQueue(proc, logger,
		async.WithWorkers(cfg.Worker.Workers),
		async.WithQueueSize(cfg.Worker.QueueSize),
		async.WithProcessTimeout(cfg.Worker.ProcessTimeout),
		async.WithOnDone(afterRun),
	)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		queue.Shutdown(sctx)
	}()

	go schedule(ctx, queue, cfg.Scrape.URL, cfg.Scrape.Interval, logger)

	if cfg.Scrape.WatchDir != "" {
		go func() {
			err := ingest.Watch(ctx, ingest.WatchConfig{
				Roots:       []string{cfg.Scrape.WatchDir},
				InitialScan: true,
				Debounce:    500 * time.Millisecond,
				SkipHidden:  true,
				Logger:      logger,
			}, ingest.NewSnapshotIngestor(queue, logger))
			if err != nil && ctx.Err() == nil {
				logger.Error("daemon.watch.failed", "dir", cfg.Scrape.WatchDir, "err", err)
			}
		}()
	}

	// gRPC server
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(grpcServer)
	go watchHealth(ctx, hs, func(c context.Context) error {
		return repository.HealthCheck(c, drv, pool, 3*time.Second, logger)
	}, logger)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return err
	}
	logger.Info("gRPC serving", "addr", cfg.Server.GRPCAddr)

	serveErr := make(chan error, 1)
	go func() { serveErr <- grpcServer.Serve(lis) }()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return err
	}
	logger.Info("shutting down...")
	hs.Shutdown()
	grpcServer.GracefulStop()
	return nil
}

// schedule enqueues url right away and then every interval until ctx ends.
func schedule(ctx context.Context, q *async.Queue, url string, interval time.Duration, logger *slog.Logger) {
	enqueue := func() {
		if err := q.Enqueue(ctx, async.Job{URL: url}); err != nil && ctx.Err() == nil {
			logger.Error("daemon.schedule.enqueue_failed", "url", url, "err", err)
		}
	}
	enqueue()
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			enqueue()
		}
	}
}

// watchHealth flips the health status with the database ping.
func watchHealth(ctx context.Context, hs *health.Server, ping func(context.Context) error, logger *slog.Logger) {
	t := time.NewTicker(healthInterval)
	defer t.Stop()
	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		ok := ping(ctx) == nil
		if ok == serving {
			continue
		}
		serving = ok
		status := healthpb.HealthCheckResponse_SERVING
		if !ok {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", status)
		logger.Warn("daemon.health.changed", "serving", ok)
	}
}
