package domain

import (
	"time"
)

// AccountType classifies a chart-of-accounts entry.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// ParseAccountType parses an account type string.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return AccountType(s), nil
	default:
		return "", ErrInvalidAccountType
	}
}

// Account represents a chart-of-accounts entry ("cuenta contable").
// Accounts are deactivated rather than deleted so historical entries
// keep a valid reference.
type Account struct {
	ID                   string
	Code                 string
	Name                 string
	Type                 AccountType
	AllowNegativeBalance bool
	Active               bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CanPost reports whether new entries may reference this account.
// Inactive accounts reject new postings but keep their historical
// contribution to balances.
func (a *Account) CanPost() bool {
	return a.Active
}
