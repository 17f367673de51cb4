package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database
	// transaction. Prevents long-running transactions from holding row
	// locks on transacciones.
	DefaultTransactionTimeout = 10 * time.Second

	// BalancesCacheKey is the cache key for the all-accounts balance
	// listing. Invalidated whenever the ACTIVE transaction set changes.
	BalancesCacheKey = "saldos:all"

	// BalancesCacheTTL bounds staleness when invalidation is missed.
	BalancesCacheTTL = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
