package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"radarmap/internal/config"
	"radarmap/internal/database"
	"radarmap/internal/database/migration"
	handlers "radarmap/internal/http/handler"
	"radarmap/internal/http/server"
	"radarmap/internal/logging"
	"radarmap/internal/otel"
	"radarmap/internal/radar"
	"radarmap/internal/repository/postgres"
	"radarmap/internal/service"
	"radarmap/internal/storage"
	"radarmap/internal/web"
	"radarmap/internal/worker"
)

// @title radarmap API
// @version 1.0
// @description Live iNav Radar peers, track history and snapshot archive.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger := logging.New(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	radarMetrics, err := radar.NewMetrics(reg)
	if err != nil {
		logger.Error("failed to register radar metrics", "error", err)
		os.Exit(1)
	}

	opts := service.Options{
		Metrics:   radarMetrics,
		Retention: cfg.Database.Retention,
	}

	// Track history is optional: without DB_HOST the map still works live.
	var pinger handlers.Pinger
	var closeDB func() error
	if cfg.Database.Enabled() {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err, "host", cfg.Database.Host)
			os.Exit(1)
		}
		if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
			logger.Error("failed to migrate database", "error", err)
			_ = db.Close()
			os.Exit(1)
		}
		opts.Repo = postgres.NewTrackPostgres(db)
		pinger = db
		closeDB = db.Close
		logger.Info("track history enabled", "retention", cfg.Database.Retention)
	}

	if cfg.MinIO.Enabled() {
		store, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			logger.Error("failed to initialize object storage", "error", err)
			os.Exit(1)
		}
		opts.Store = store
		logger.Info("snapshot archive enabled", "bucket", cfg.MinIO.Bucket, "interval", cfg.MinIO.ArchiveInterval)
	}

	svc := service.NewRadarService(opts)

	assets, err := web.Load(cfg.WebDir)
	if err != nil {
		logger.Error("failed to load web assets", "error", err, "dir", cfg.WebDir)
		os.Exit(1)
	}

	app, err := server.NewApp(cfg, server.Deps{
		Logger:   logger,
		Registry: reg,
		Assets:   assets,
		Service:  svc,
		DB:       pinger,
	})
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	srv := server.New(app, cfg.ShutdownTimeout, logger)
	srv.OnShutdown("tracing", func(ctx context.Context) error { return shutdownTracing(ctx) })
	if closeDB != nil {
		srv.OnShutdown("database", func(context.Context) error { return closeDB() })
	}

	var wg sync.WaitGroup
	if cfg.Radar.Enabled {
		client := radar.NewClient(cfg.Radar.BaseURL, cfg.Radar.Timeout)
		poller := radar.NewPoller(client, svc, logger, radarMetrics, cfg.Radar.PollInterval, cfg.Radar.RetryInterval)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("radar poller stopped", "error", err)
			}
		}()
	}
	if opts.Store != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Every(ctx, logger, "archive", cfg.MinIO.ArchiveInterval, func(ctx context.Context) error {
				_, err := svc.Archive(ctx)
				if errors.Is(err, service.ErrNothingToArchive) {
					return nil
				}
				return err
			})
		}()
	}
	if opts.Repo != nil {
		pruneEvery := pruneInterval(cfg.Database.Retention)
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Every(ctx, logger, "prune", pruneEvery, func(ctx context.Context) error {
				n, err := svc.Prune(ctx)
				if err == nil && n > 0 {
					logger.Info("pruned track points", "deleted", n)
				}
				return err
			})
		}()
	}
	// Registered last so it runs first: background jobs stop before the database closes.
	srv.OnShutdown("workers", func(context.Context) error {
		wg.Wait()
		return nil
	})

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		logger.Error("failed to listen", "error", err, "addr", cfg.Addr())
		os.Exit(1)
	}

	logger.Info("starting server",
		"addr", cfg.Addr(),
		"debug", cfg.Debug,
		"radar", cfg.Radar.Enabled,
	)

	if err := srv.Run(ctx, ln); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// pruneInterval is a 24th of the retention window (hourly for the 24h default),
// never shorter than a minute.
func pruneInterval(retention time.Duration) time.Duration {
	return max(retention/24, time.Minute)
}
