package domain

import (
	"github.com/shopspring/decimal"
)

// AccountBalance pairs an account with its derived balance. Balances
// are never stored; they are recomputed from ACTIVE transactions.
type AccountBalance struct {
	Account *Account
	Balance decimal.Decimal
}
