package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet-ledger/config"
	httpHandler "wallet-ledger/internal/adapter/http/handler"
	"wallet-ledger/internal/adapter/pricefeed"
	pgStorage "wallet-ledger/internal/adapter/storage/postgres"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Wallet Ledger Engine")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	pinRepo := pgStorage.NewPinRepo(pool)
	auditRepo := pgStorage.NewAuditRepository(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize core services
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	auditSvc := service.NewAuditService(auditRepo, log)

	// Transfer notifications: signed webhook when configured, log-only otherwise.
	var notifier ports.NotificationSink
	if cfg.Notify.WebhookURL != "" {
		notifier = service.NewWebhookNotifier(
			cfg.Notify.WebhookURL,
			cfg.Notify.Secret,
			sigSvc,
			&http.Client{Timeout: 10 * time.Second},
			log,
		)
	} else {
		notifier = service.NewLogNotifier(log)
	}

	// Price oracle: static table or HTTP feed, with a Redis quote cache
	// in front of the feed.
	var oracle ports.PriceOracle
	switch cfg.Oracle.Mode {
	case "http":
		feed := pricefeed.NewHTTPOracle(cfg.Oracle.FeedURL, &http.Client{Timeout: 5 * time.Second})
		quoteCache := redisStorage.NewQuoteCache(rdb)
		oracle = pricefeed.NewCachedOracle(feed, quoteCache, cfg.Oracle.CacheTTL, log)
	default:
		oracle = pricefeed.NewStaticOracle(cfg.Oracle.StaticPrices)
	}

	// Initialize business services
	pinSvc := service.NewPinService(pinRepo, hashSvc, notifier, auditSvc, log)
	accountSvc := service.NewAccountService(userRepo, walletRepo, pinSvc, log)
	ledgerSvc := service.NewLedgerService(service.LedgerDeps{
		WalletRepo: walletRepo,
		TxRepo:     txRepo,
		UserRepo:   userRepo,
		PinSvc:     pinSvc,
		Oracle:     oracle,
		Notifier:   notifier,
		AuditSvc:   auditSvc,
		Transactor: transactor,
		FiatAsset:  cfg.Ledger.FiatAsset,
		SystemName: cfg.Ledger.SystemCounterparty,
		Logger:     log,
	})

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AccountSvc:     accountSvc,
		LedgerSvc:      ledgerSvc,
		PinSvc:         pinSvc,
		TokenSvc:       tokenSvc,
		AdminUsernames: cfg.Ledger.AdminUsernames,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
