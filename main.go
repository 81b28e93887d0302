package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mudkipdev/rephoton/internal/api"
	"github.com/mudkipdev/rephoton/internal/bsky"
	"github.com/mudkipdev/rephoton/internal/config"
	"github.com/mudkipdev/rephoton/internal/metrics"
	http "github.com/mudkipdev/rephoton/internal/server"
	"github.com/mudkipdev/rephoton/internal/session"
	"github.com/mudkipdev/rephoton/internal/session/store"
)

const pruneInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("exit", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	reg := metrics.NewRegistry()

	sealer, err := session.NewSealer(cfg.MasterKeyHex)
	if err != nil {
		return err
	}
	if cfg.MasterKeyHex == "" {
		logger.Warn("MASTER_KEY_HEX not set, sessions will not survive a restart")
	}

	// adapters
	var blobs session.StorePort = session.NewMemoryStore()
	if cfg.UsePostgres() {
		pg, err := store.New(ctx, cfg.BuildDSN())
		if err != nil {
			return err
		}
		defer pg.Close()
		blobs = pg
		go prune(ctx, pg, cfg.SessionMaxAge, logger)
		logger.Info("session store", "backend", "postgres", "host", cfg.PGHost)
	}

	sessions := session.NewManager(blobs, sealer, session.Options{
		Service: cfg.BskyService,
		HTTP:    bsky.NewHTTPClient(cfg.HTTPTimeout),
		Metrics: reg,
		Logger:  logger,
	})

	// api facade
	app := api.New(sessions, cfg.SiteName, time.Now, logger)

	// http server uses the api layer
	s := http.New(app, reg, logger)
	s.AllowedOrigins = cfg.CORSAllowedOrigins
	return s.ListenAndServe(ctx, cfg.ListenAddr)
}

func prune(ctx context.Context, pg *store.PGStore, maxAge time.Duration, logger *slog.Logger) {
	t := time.NewTicker(pruneInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := pg.Prune(ctx, now.Add(-maxAge))
			if err != nil {
				logger.Warn("prune sessions", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("pruned sessions", "count", n)
			}
		}
	}
}
