package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contabilidad/ledger/internal/domain"
	"github.com/contabilidad/ledger/internal/infrastructure/metrics"
)

// BalanceUseCase serves derived balances. Balances are never stored:
// every figure is a projection over the ACTIVE entry set, optionally
// served from a short-lived cache that mutations invalidate.
type BalanceUseCase struct {
	accountRepo AccountRepository
	balanceRepo BalanceRepository
	cache       Cache
	metrics     *metrics.Metrics
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	accountRepo AccountRepository,
	balanceRepo BalanceRepository,
	cache Cache,
	metrics *metrics.Metrics,
) *BalanceUseCase {
	return &BalanceUseCase{
		accountRepo: accountRepo,
		balanceRepo: balanceRepo,
		cache:       cache,
		metrics:     metrics,
	}
}

// ConsistencyReport summarizes the ledger-wide invariant check.
type ConsistencyReport struct {
	Debits     decimal.Decimal `json:"debits"`
	Credits    decimal.Decimal `json:"credits"`
	Difference decimal.Decimal `json:"difference"`
	Consistent bool            `json:"consistent"`
}

// ListBalances returns the current balance of every account. The
// full listing is the most expensive projection, so it is cached
// briefly; single-account reads always hit the database.
func (uc *BalanceUseCase) ListBalances(ctx context.Context) ([]*domain.AccountBalance, error) {
	if balances, ok := uc.fromCache(ctx); ok {
		return balances, nil
	}

	balances, err := uc.balanceRepo.ListBalances(ctx)
	if err != nil {
		return nil, err
	}

	uc.toCache(ctx, balances)

	return balances, nil
}

// GetAccountBalance returns one account with its current balance.
func (uc *BalanceUseCase) GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	value, err := uc.balanceRepo.ValueByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &domain.AccountBalance{Account: account, Balance: value}, nil
}

// GetBalanceValue returns only the numeric balance of an account.
func (uc *BalanceUseCase) GetBalanceValue(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}

	return uc.balanceRepo.ValueByAccount(ctx, accountID)
}

// GetBalanceAsOf returns the account balance considering only ACTIVE
// transactions dated on or before asOf.
func (uc *BalanceUseCase) GetBalanceAsOf(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}

	return uc.balanceRepo.ValueAsOfDate(ctx, accountID, asOf)
}

// AllowsNegativeBalance reports whether the account may go below zero.
func (uc *BalanceUseCase) AllowsNegativeBalance(ctx context.Context, accountID string) (bool, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}

	return account.AllowNegativeBalance, nil
}

// IsAccountActive reports whether the account accepts new postings.
func (uc *BalanceUseCase) IsAccountActive(ctx context.Context, accountID string) (bool, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}

	return account.Active, nil
}

// CheckConsistency verifies the double-entry invariant across the
// whole ledger: the sum of DEBE equals the sum of HABER over ACTIVE
// transactions.
func (uc *BalanceUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	debits, credits, err := uc.balanceRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	diff := debits.Sub(credits)

	return &ConsistencyReport{
		Debits:     debits,
		Credits:    credits,
		Difference: diff,
		Consistent: diff.IsZero(),
	}, nil
}

func (uc *BalanceUseCase) fromCache(ctx context.Context) ([]*domain.AccountBalance, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, err := uc.cache.Get(ctx, BalancesCacheKey)
	if err != nil || data == nil {
		if uc.metrics != nil {
			uc.metrics.BalanceCacheMisses.Inc()
		}
		return nil, false
	}

	var balances []*domain.AccountBalance
	if err := json.Unmarshal(data, &balances); err != nil {
		return nil, false
	}

	if uc.metrics != nil {
		uc.metrics.BalanceCacheHits.Inc()
	}

	return balances, true
}

func (uc *BalanceUseCase) toCache(ctx context.Context, balances []*domain.AccountBalance) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(balances)
	if err != nil {
		return
	}

	_ = uc.cache.Set(ctx, BalancesCacheKey, data, BalancesCacheTTL)
}
