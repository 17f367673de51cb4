package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ViolationCode identifies a category of validation failure.
type ViolationCode string

const (
	ViolationInsufficientEntries       ViolationCode = "InsufficientEntries"
	ViolationInvalidEntry              ViolationCode = "InvalidEntry"
	ViolationInactiveAccountReferenced ViolationCode = "InactiveAccountReferenced"
	ViolationUnbalancedTransaction     ViolationCode = "UnbalancedTransaction"
	ViolationNegativeBalanceNotAllowed ViolationCode = "NegativeBalanceNotAllowed"
)

// Violation is a single validation failure with enough detail for the
// caller to correct and resubmit.
type Violation struct {
	Code        ViolationCode   `json:"code"`
	EntryIndex  int             `json:"entryIndex,omitempty"`
	AccountID   string          `json:"accountId,omitempty"`
	DebitTotal  decimal.Decimal `json:"debitTotal,omitempty"`
	CreditTotal decimal.Decimal `json:"creditTotal,omitempty"`
	Message     string          `json:"message"`
}

// ValidationError carries every violation found in a candidate
// transaction. It is always recoverable.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

// EntryDraft is a candidate entry before validation assigns identity.
type EntryDraft struct {
	AccountID string
	Side      Side
	Amount    decimal.Decimal
	Memo      string
}

// ValidateEntries checks a candidate entry set against the account
// snapshot. All checks run; violations are collected rather than
// short-circuited so the caller sees every problem at once. Returns
// nil, or a *ValidationError with at least one violation.
//
// Checks, in order:
//  1. at least two entries
//  2. every entry references an account and has a positive amount
//  3. every referenced account exists and is active
//  4. debit total equals credit total exactly
func ValidateEntries(drafts []EntryDraft, accounts map[string]*Account) error {
	var violations []Violation

	if len(drafts) < 2 {
		violations = append(violations, Violation{
			Code:    ViolationInsufficientEntries,
			Message: fmt.Sprintf("a transaction requires at least 2 entries, got %d", len(drafts)),
		})
	}

	for i, d := range drafts {
		if d.AccountID == "" || d.Amount.LessThanOrEqual(decimal.Zero) {
			violations = append(violations, Violation{
				Code:       ViolationInvalidEntry,
				EntryIndex: i,
				Message:    fmt.Sprintf("entry %d must reference an account and have a positive amount", i),
			})
		}
	}

	// An account missing from the snapshot cannot accept postings any
	// more than a deactivated one; both surface as the same violation.
	seen := make(map[string]bool)
	for _, d := range drafts {
		if d.AccountID == "" || seen[d.AccountID] {
			continue
		}
		seen[d.AccountID] = true

		acc, ok := accounts[d.AccountID]
		if !ok || !acc.CanPost() {
			violations = append(violations, Violation{
				Code:      ViolationInactiveAccountReferenced,
				AccountID: d.AccountID,
				Message:   fmt.Sprintf("account %s is inactive or unknown and cannot be posted to", d.AccountID),
			})
		}
	}

	debits := decimal.Zero
	credits := decimal.Zero

	for _, d := range drafts {
		switch d.Side {
		case SideDebit:
			debits = debits.Add(d.Amount)
		case SideCredit:
			credits = credits.Add(d.Amount)
		}
	}

	if !debits.Equal(credits) {
		violations = append(violations, Violation{
			Code:        ViolationUnbalancedTransaction,
			DebitTotal:  debits,
			CreditTotal: credits,
			Message:     fmt.Sprintf("entries are not balanced: debits %s, credits %s", debits, credits),
		})
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	return nil
}

// ValidateAccountsActive re-checks that every account referenced by
// the entries is active. Used when a transaction transitions into
// ACTIVE, since accounts may have been deactivated since creation.
func ValidateAccountsActive(entries []Entry, accounts map[string]*Account) error {
	var violations []Violation

	seen := make(map[string]bool)
	for _, e := range entries {
		if seen[e.AccountID] {
			continue
		}
		seen[e.AccountID] = true

		acc, ok := accounts[e.AccountID]
		if !ok || !acc.CanPost() {
			violations = append(violations, Violation{
				Code:      ViolationInactiveAccountReferenced,
				AccountID: e.AccountID,
				Message:   fmt.Sprintf("account %s is inactive or unknown and cannot be posted to", e.AccountID),
			})
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	return nil
}

// Validation constants for registry fields.
const (
	MaxAccountCodeLength = 10
	MaxAccountNameLength = 100
	MaxDescriptionLength = 200
	MaxCounterpartyName  = 200
)

// ValidateAccountCode validates a chart-of-accounts code.
func ValidateAccountCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: account code is required", ErrValidation)
	}

	if len(code) > MaxAccountCodeLength {
		return fmt.Errorf("%w: account code exceeds %d characters", ErrValidation, MaxAccountCodeLength)
	}

	return nil
}

// ValidateAccountName validates an account name.
func ValidateAccountName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: account name is required", ErrValidation)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: account name exceeds %d characters", ErrValidation, MaxAccountNameLength)
	}

	return nil
}

// ValidateDescription validates a transaction description.
func ValidateDescription(desc string) error {
	if strings.TrimSpace(desc) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}

	if len(desc) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	}

	return nil
}
