package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpAdapter "github.com/contabilidad/ledger/internal/adapter/http"
	"github.com/contabilidad/ledger/internal/adapter/http/handler"
	"github.com/contabilidad/ledger/internal/adapter/http/middleware"
	postgresRepo "github.com/contabilidad/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/contabilidad/ledger/internal/adapter/repository/redis"
	"github.com/contabilidad/ledger/internal/infrastructure/config"
	"github.com/contabilidad/ledger/internal/infrastructure/logger"
	"github.com/contabilidad/ledger/internal/infrastructure/logging"
	"github.com/contabilidad/ledger/internal/infrastructure/metrics"
	"github.com/contabilidad/ledger/internal/infrastructure/postgres"
	"github.com/contabilidad/ledger/internal/infrastructure/redis"
	"github.com/contabilidad/ledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// Infrastructure helpers log through slog; route them to the
	// same level and format.
	slog.SetDefault(logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat).Logger)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// rateLimiterFromConfig returns nil when rate limiting is disabled.
func rateLimiterFromConfig(cfg *config.Config) *middleware.RateLimiter {
	if cfg.RateLimitPerSecond <= 0 {
		return nil
	}

	return middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	counterpartyRepo := postgresRepo.NewCounterpartyRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()
	m := metrics.New()

	// Use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, auditRepo, idGen)
	counterpartyUC := usecase.NewCounterpartyUseCase(counterpartyRepo, transactionRepo, auditRepo, idGen)
	transactionUC := usecase.NewTransactionUseCase(
		txManager, accountRepo, counterpartyRepo, transactionRepo,
		balanceRepo, auditRepo, cache, idGen, retrier, m,
	)
	balanceUC := usecase.NewBalanceUseCase(accountRepo, balanceRepo, cache, m)
	auditUC := usecase.NewAuditUseCase(auditRepo)

	// HTTP surface
	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:      handler.NewAccountHandler(accountUC),
		CounterpartyHandler: handler.NewCounterpartyHandler(counterpartyUC),
		TransactionHandler:  handler.NewTransactionHandler(transactionUC),
		BalanceHandler:      handler.NewBalanceHandler(balanceUC),
		AuditHandler:        handler.NewAuditHandler(auditUC),
		HealthHandler:       handler.NewHealthHandler(pool, redisClient),
		Logger:              log,
		IdempotencyStore:    idempotencyStore,
		IdempotencyTTL:      cfg.IdempotencyTTL,
	}

	if limiter := rateLimiterFromConfig(cfg); limiter != nil {
		go func() {
			ticker := time.NewTicker(10 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				limiter.CleanupLimiters()
			}
		}()
		routerCfg.RateLimiter = limiter
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("server stopped")

	return nil
}
