package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faithadeola/TrustRail/internal/auth"
	"github.com/faithadeola/TrustRail/internal/config"
	"github.com/faithadeola/TrustRail/internal/db"
	applicationdomain "github.com/faithadeola/TrustRail/internal/domain/application"
	"github.com/faithadeola/TrustRail/internal/domain/business"
	"github.com/faithadeola/TrustRail/internal/domain/customer"
	"github.com/faithadeola/TrustRail/internal/domain/notification"
	"github.com/faithadeola/TrustRail/internal/domain/trust"
	"github.com/faithadeola/TrustRail/internal/http/handlers"
	"github.com/faithadeola/TrustRail/internal/ingest"
	"github.com/faithadeola/TrustRail/internal/observability"
	postgresrepo "github.com/faithadeola/TrustRail/internal/repository/postgres"
	"github.com/faithadeola/TrustRail/internal/server"
	"github.com/faithadeola/TrustRail/internal/ws"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env, "api")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	businessRepo := postgresrepo.NewBusinessRepository(pool)
	applicationRepo := postgresrepo.NewApplicationRepository(pool)
	customerRepo := postgresrepo.NewCustomerRepository(pool)
	notificationRepo := postgresrepo.NewNotificationRepository(pool)
	scheduleRepo := postgresrepo.NewScheduleRepository(pool)
	outboxRepo := postgresrepo.NewOutboxRepository(pool)
	ingestRepo := postgresrepo.NewIngestRepository(pool)

	businessService := business.NewService(businessRepo)
	customerService := customer.NewService(customerRepo)
	notificationService := notification.NewService(notificationRepo)

	var evaluatorOpts []trust.Option
	if cfg.ScoringJitterEnabled {
		evaluatorOpts = append(evaluatorOpts, trust.WithSeededJitter(cfg.ScoringJitterSeed))
	}
	applicationService := applicationdomain.NewService(
		applicationRepo,
		businessService,
		customerRepo,
		notificationRepo,
		scheduleRepo,
		outboxRepo,
		trust.NewEvaluator(evaluatorOpts...),
	)
	ingestService := ingest.NewService(
		ingestRepo,
		postgresrepo.NewProjectionStore(pool),
		applicationRepo,
		businessService,
		customerRepo,
		notificationRepo,
	)

	authRepo := db.NewAuthRepository(pool)
	jwtManager := auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSigningKey)
	authService := auth.NewService(authRepo, businessService, jwtManager, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	cookieCfg := auth.CookieConfig{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure}

	hub := ws.NewHub()
	notifier := ws.NewNotifier(notificationRepo, hub, cfg.NotifierInterval)

	r := server.NewRouter(cfg, logger, server.Dependencies{
		Pinger:              pool,
		AuthHandler:         handlers.NewAuthHandler(authService, cookieCfg, cfg.JWTAccessTTL, cfg.JWTRefreshTTL),
		BusinessHandler:     handlers.NewBusinessHandler(businessService),
		ApplicationHandler:  handlers.NewApplicationHandler(applicationService),
		ScheduleHandler:     handlers.NewScheduleHandler(),
		CustomerHandler:     handlers.NewCustomerHandler(customerService),
		NotificationHandler: handlers.NewNotificationHandler(notificationService),
		WebhookHandler:      handlers.NewWebhookHandler(ingestService),
		WSHandler:           ws.NewHandler(hub),
		JWTManager:          jwtManager,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	notifierCtx, notifierCancel := context.WithCancel(context.Background())
	defer notifierCancel()
	go func() {
		if err := notifier.Run(notifierCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("notifier stopped", "err", err)
		}
	}()

	go func() {
		logger.Info("api server starting", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("api server stopped")
}
