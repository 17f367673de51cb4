package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/contabilidad/ledger/internal/adapter/http/handler"
	"github.com/contabilidad/ledger/internal/adapter/http/middleware"
	"github.com/contabilidad/ledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler      *handler.AccountHandler
	CounterpartyHandler *handler.CounterpartyHandler
	TransactionHandler  *handler.TransactionHandler
	BalanceHandler      *handler.BalanceHandler
	AuditHandler        *handler.AuditHandler
	HealthHandler       *handler.HealthHandler

	Logger           zerolog.Logger
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Chart of accounts
		r.Route("/cuentas", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/activas", cfg.AccountHandler.ListActive)
			r.Get("/search", cfg.AccountHandler.Search)
			r.Get("/tipo/{tipo}", cfg.AccountHandler.ListByType)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Put("/{id}", cfg.AccountHandler.Update)
			r.Delete("/{id}", cfg.AccountHandler.Delete)
			r.Put("/{id}/activar", cfg.AccountHandler.Activate)
			r.Put("/{id}/desactivar", cfg.AccountHandler.Deactivate)
		})

		// Counterparties
		r.Route("/terceros", func(r chi.Router) {
			r.Post("/", cfg.CounterpartyHandler.Create)
			r.Get("/", cfg.CounterpartyHandler.List)
			r.Get("/search", cfg.CounterpartyHandler.Search)
			r.Get("/{id}", cfg.CounterpartyHandler.Get)
			r.Put("/{id}", cfg.CounterpartyHandler.Update)
			r.Delete("/{id}", cfg.CounterpartyHandler.Delete)
			r.Get("/{id}/transacciones/count", cfg.CounterpartyHandler.CountTransactions)
		})

		// Journal transactions
		r.Route("/transacciones", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/", cfg.TransactionHandler.List)
			r.Get("/count", cfg.TransactionHandler.Count)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Get("/{id}/partidas", cfg.TransactionHandler.Entries)
			r.Put("/{id}", cfg.TransactionHandler.Update)
			r.Put("/{id}/estado", cfg.TransactionHandler.ChangeState)
			r.Put("/{id}/anular", cfg.TransactionHandler.Void)
			r.Put("/{id}/reactivar", cfg.TransactionHandler.Reactivate)
			r.Put("/{id}/pendiente", cfg.TransactionHandler.MarkPending)
			r.Get("/{id}/auditoria", cfg.AuditHandler.TransactionHistory)
		})

		// Audit trail
		r.Get("/auditoria", cfg.AuditHandler.List)

		// Derived balances
		r.Route("/saldos", func(r chi.Router) {
			r.Get("/", cfg.BalanceHandler.List)
			r.Get("/consistencia", cfg.BalanceHandler.Consistency)
			r.Get("/{cuentaId}", cfg.BalanceHandler.Get)
			r.Get("/{cuentaId}/valor", cfg.BalanceHandler.Value)
			r.Get("/{cuentaId}/hasta-fecha", cfg.BalanceHandler.AsOf)
			r.Get("/{cuentaId}/validar-saldo-negativo", cfg.BalanceHandler.NegativeAllowed)
			r.Get("/{cuentaId}/validar-activa", cfg.BalanceHandler.Active)
		})
	})

	return r
}
