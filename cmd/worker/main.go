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
	"github.com/faithadeola/TrustRail/internal/jobs"
	"github.com/faithadeola/TrustRail/internal/observability"
	"github.com/faithadeola/TrustRail/internal/provider"
	postgresrepo "github.com/faithadeola/TrustRail/internal/repository/postgres"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env, "worker")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	gateway, err := provider.NewGatewayFromConfig(cfg)
	if err != nil {
		logger.Error("invalid provider config", "err", err)
		os.Exit(1)
	}

	worker := jobs.NewWorker(
		postgresrepo.NewOutboxRepository(pool),
		postgresrepo.NewApplicationRepository(pool),
		postgresrepo.NewMandateRepository(pool),
		gateway,
	)

	interval := cfg.WorkerPollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started", "interval", interval.String(), "batch_size", cfg.WorkerBatchSize)
	for {
		select {
		case <-sigCtx.Done():
			logger.Info("worker stopped")
			return
		case <-ticker.C:
			runCtx, runCancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := worker.RunOnce(runCtx, cfg.WorkerBatchSize)
			runCancel()
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker run failed", "err", err)
			}
		}
	}
}
