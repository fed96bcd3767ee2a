package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/exploremaroc/companion/internal/catalog"
	"github.com/exploremaroc/companion/internal/config"
	"github.com/exploremaroc/companion/internal/database"
	"github.com/exploremaroc/companion/internal/keyval"
	"github.com/exploremaroc/companion/internal/migrations"
	"github.com/exploremaroc/companion/internal/progress"
	"github.com/exploremaroc/companion/internal/recognition"
	"github.com/exploremaroc/companion/internal/scan"
	"github.com/exploremaroc/companion/internal/server"
	"github.com/exploremaroc/companion/internal/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Key-value backend ---
	// Progress counters live in Redis when configured, SQLite otherwise.
	var kv keyval.Store = keyval.NewSQLiteStore(db)
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		kv = keyval.NewRedisStore(rdb)
		logger.Info("connected to redis")
	}

	// --- Catalog ---
	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	logger.Info("catalog loaded",
		"locations", len(cat.Locations()),
		"attractions", len(cat.Attractions()),
	)

	// --- Services ---
	broker := server.NewBroker()

	svc := progress.NewService(kv, func(userID string, a progress.Achievement) {
		broker.Publish(userID, map[string]any{
			"type":        "achievement_unlocked",
			"achievement": a,
		})
	})
	tracker := progress.NewTracker(svc, logger, 5*time.Second)

	var simOpts []recognition.Option
	var scanOpts []scan.Option
	if cfg.SimFast {
		instant := func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
		simOpts = append(simOpts, recognition.WithSleep(instant))
		scanOpts = append(scanOpts, scan.WithSleep(instant))
	}
	sim := recognition.NewSimulator(cat, simOpts...)

	orch := scan.NewOrchestrator(ctx, sim, svc, cat, logger,
		func(userID string, e scan.Event) { broker.Publish(userID, e) },
		scanOpts...)

	sessions := session.NewStore(db)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		DB:       db,
		Redis:    rdb,
		Catalog:  cat,
		Sessions: sessions,
		Progress: svc,
		Tracker:  tracker,
		Scans:    orch,
		Broker:   broker,
	}, cfg.SPADir)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return tracker.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
