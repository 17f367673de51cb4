package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceProjection maps account ID to its signed balance:
// sum of debits minus sum of credits over ACTIVE transactions.
type BalanceProjection map[string]decimal.Decimal

// ProjectBalances derives per-account balances from a snapshot of
// accounts and transactions. Only ACTIVE transactions contribute;
// PENDING and VOID are excluded. Every account in the snapshot gets
// an entry, zero when nothing posts to it. The projection is a pure
// function of its inputs and is recomputed, never mutated in place.
func ProjectBalances(accounts []*Account, transactions []*Transaction) BalanceProjection {
	balances := make(BalanceProjection, len(accounts))
	for _, a := range accounts {
		balances[a.ID] = decimal.Zero
	}

	for _, t := range transactions {
		if t.State != StateActive {
			continue
		}

		for _, e := range t.Entries {
			balances[e.AccountID] = balances[e.AccountID].Add(e.SignedAmount())
		}
	}

	return balances
}

// ProjectBalancesAsOf derives balances counting only ACTIVE
// transactions dated on or before asOf.
func ProjectBalancesAsOf(accounts []*Account, transactions []*Transaction, asOf time.Time) BalanceProjection {
	var included []*Transaction

	for _, t := range transactions {
		if !t.Date.After(asOf) {
			included = append(included, t)
		}
	}

	return ProjectBalances(accounts, included)
}
