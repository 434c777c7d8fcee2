package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faithadeola/TrustRail/internal/config"
	"github.com/faithadeola/TrustRail/internal/db"
	"github.com/faithadeola/TrustRail/internal/domain/business"
	"github.com/faithadeola/TrustRail/internal/ingest"
	"github.com/faithadeola/TrustRail/internal/observability"
	postgresrepo "github.com/faithadeola/TrustRail/internal/repository/postgres"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env, "ingest")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := ingest.NewService(
		postgresrepo.NewIngestRepository(pool),
		postgresrepo.NewProjectionStore(pool),
		postgresrepo.NewApplicationRepository(pool),
		business.NewService(postgresrepo.NewBusinessRepository(pool)),
		postgresrepo.NewCustomerRepository(pool),
		postgresrepo.NewNotificationRepository(pool),
	)

	interval := cfg.IngestPollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("ingest started", "interval", interval.String(), "batch_size", cfg.IngestBatchSize)
	for {
		select {
		case <-sigCtx.Done():
			logger.Info("ingest stopped")
			return
		case <-ticker.C:
			runCtx, runCancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := svc.RunOnce(runCtx, cfg.IngestBatchSize)
			runCancel()
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("ingest run failed", "err", err)
			}
		}
	}
}
