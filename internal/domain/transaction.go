package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the accounting side of an entry. Wire values follow the
// Spanish bookkeeping convention: DEBE (debit) and HABER (credit).
type Side string

const (
	SideDebit  Side = "DEBE"
	SideCredit Side = "HABER"
)

// ParseSide parses an entry side string.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideDebit, SideCredit:
		return Side(s), nil
	default:
		return "", fmt.Errorf("%w: invalid entry side %q", ErrValidation, s)
	}
}

// TransactionState is the lifecycle state of a journal transaction.
type TransactionState string

const (
	StatePending TransactionState = "PENDING"
	StateActive  TransactionState = "ACTIVE"
	StateVoid    TransactionState = "VOID"
)

// ParseTransactionState parses a transaction state string.
func ParseTransactionState(s string) (TransactionState, error) {
	switch TransactionState(s) {
	case StatePending, StateActive, StateVoid:
		return TransactionState(s), nil
	default:
		return "", ErrInvalidTransactionState
	}
}

// allowedTransitions is the lifecycle state machine. Anything not
// listed is an illegal transition. VOID is reversible only through
// explicit reactivation, which distinguishes it from a hard delete.
var allowedTransitions = map[TransactionState]map[TransactionState]bool{
	StatePending: {StateActive: true},
	StateActive:  {StateVoid: true},
	StateVoid:    {StateActive: true},
}

// CanTransition reports whether from -> to is an allowed transition.
func CanTransition(from, to TransactionState) bool {
	return allowedTransitions[from][to]
}

// RequiresRevalidation reports whether a transition must re-check that
// all referenced accounts are still active. Transitions into ACTIVE
// re-validate; voiding an already-consistent transaction never can
// violate an invariant and needs no check.
func RequiresRevalidation(to TransactionState) bool {
	return to == StateActive
}

// Entry is a single debit or credit line ("partida") of a transaction.
// An entry never exists outside its owning transaction. Amount is
// strictly positive; the sign is carried by Side.
type Entry struct {
	ID            string
	TransactionID string
	AccountID     string
	Side          Side
	Amount        decimal.Decimal
	Memo          string
}

// SignedAmount returns the entry amount signed by side: debits
// positive, credits negative.
func (e Entry) SignedAmount() decimal.Decimal {
	if e.Side == SideCredit {
		return e.Amount.Neg()
	}

	return e.Amount
}

// Transaction is a balanced journal transaction ("transaccion")
// owning an ordered sequence of at least two entries.
type Transaction struct {
	ID             string
	Date           time.Time
	Description    string
	CounterpartyID *string
	State          TransactionState
	Entries        []Entry
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DebitTotal sums the DEBE side.
func (t *Transaction) DebitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		if e.Side == SideDebit {
			total = total.Add(e.Amount)
		}
	}

	return total
}

// CreditTotal sums the HABER side.
func (t *Transaction) CreditTotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		if e.Side == SideCredit {
			total = total.Add(e.Amount)
		}
	}

	return total
}

// IsBalanced reports exact decimal equality of debit and credit
// totals. No epsilon tolerance: the authoritative check is exact.
func (t *Transaction) IsBalanced() bool {
	return t.DebitTotal().Equal(t.CreditTotal())
}

// Transition moves the transaction to the target state, or returns
// ErrIllegalTransition. It does not re-validate account references;
// callers run the validator first when the target requires it.
func (t *Transaction) Transition(to TransactionState) error {
	if !CanTransition(t.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, t.State, to)
	}

	t.State = to

	return nil
}

// Mutable reports whether entries and header fields may still be
// edited. VOID transactions are frozen until reactivated.
func (t *Transaction) Mutable() bool {
	return t.State != StateVoid
}
