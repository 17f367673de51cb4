package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func projectionAccounts() []*Account {
	return []*Account{
		{ID: "1000", Code: "1000", Name: "Caja", Type: AccountTypeAsset, Active: true},
		{ID: "2000", Code: "2000", Name: "Proveedores", Type: AccountTypeLiability, Active: true},
		{ID: "3000", Code: "3000", Name: "Capital", Type: AccountTypeEquity, Active: true},
	}
}

func balancedTransaction(id string, state TransactionState, date time.Time, amount string) *Transaction {
	return &Transaction{
		ID:    id,
		Date:  date,
		State: state,
		Entries: []Entry{
			{ID: id + "-d", TransactionID: id, AccountID: "1000", Side: SideDebit, Amount: decimal.RequireFromString(amount)},
			{ID: id + "-c", TransactionID: id, AccountID: "2000", Side: SideCredit, Amount: decimal.RequireFromString(amount)},
		},
	}
}

func TestProjectBalances_SignConvention(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txns := []*Transaction{balancedTransaction("t1", StateActive, date, "100.00")}

	balances := ProjectBalances(projectionAccounts(), txns)

	if !balances["1000"].Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("expected account 1000 balance +100.00, got %s", balances["1000"])
	}

	if !balances["2000"].Equal(decimal.RequireFromString("-100.00")) {
		t.Errorf("expected account 2000 balance -100.00, got %s", balances["2000"])
	}

	if !balances["3000"].IsZero() {
		t.Errorf("expected untouched account 3000 balance 0, got %s", balances["3000"])
	}
}

func TestProjectBalances_ExcludesPendingAndVoid(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txns := []*Transaction{
		balancedTransaction("t1", StateActive, date, "100.00"),
		balancedTransaction("t2", StatePending, date, "40.00"),
		balancedTransaction("t3", StateVoid, date, "60.00"),
	}

	balances := ProjectBalances(projectionAccounts(), txns)

	if !balances["1000"].Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("pending/void must not contribute, got %s", balances["1000"])
	}
}

func TestProjectBalances_Idempotent(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	accounts := projectionAccounts()
	txns := []*Transaction{
		balancedTransaction("t1", StateActive, date, "100.00"),
		balancedTransaction("t2", StateActive, date.AddDate(0, 0, 1), "25.50"),
	}

	first := ProjectBalances(accounts, txns)
	second := ProjectBalances(accounts, txns)

	if len(first) != len(second) {
		t.Fatalf("projection sizes differ: %d vs %d", len(first), len(second))
	}

	for id, balance := range first {
		if !balance.Equal(second[id]) {
			t.Errorf("account %s: %s vs %s on recompute", id, balance, second[id])
		}
	}
}

func TestProjectBalances_VoidThenReactivateRestores(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	accounts := projectionAccounts()
	txn := balancedTransaction("t1", StateActive, date, "100.00")

	before := ProjectBalances(accounts, []*Transaction{txn})

	if err := txn.Transition(StateVoid); err != nil {
		t.Fatalf("void: %v", err)
	}

	voided := ProjectBalances(accounts, []*Transaction{txn})
	if !voided["1000"].IsZero() || !voided["2000"].IsZero() {
		t.Errorf("voided transaction must not contribute: %s / %s", voided["1000"], voided["2000"])
	}

	if err := txn.Transition(StateActive); err != nil {
		t.Fatalf("reactivate: %v", err)
	}

	after := ProjectBalances(accounts, []*Transaction{txn})
	for id := range before {
		if !before[id].Equal(after[id]) {
			t.Errorf("account %s: expected %s restored, got %s", id, before[id], after[id])
		}
	}
}

func TestProjectBalances_DeactivationDoesNotChangeContribution(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	accounts := projectionAccounts()
	txns := []*Transaction{balancedTransaction("t1", StateActive, date, "100.00")}

	before := ProjectBalances(accounts, txns)

	// Grandfathering: deactivating an account leaves its historical
	// ACTIVE postings in the projection.
	accounts[0].Active = false

	after := ProjectBalances(accounts, txns)
	if !before["1000"].Equal(after["1000"]) {
		t.Errorf("deactivation changed balance: %s vs %s", before["1000"], after["1000"])
	}
}

func TestProjectBalancesAsOf(t *testing.T) {
	accounts := projectionAccounts()
	txns := []*Transaction{
		balancedTransaction("t1", StateActive, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "100.00"),
		balancedTransaction("t2", StateActive, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), "50.00"),
	}

	asOf := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	balances := ProjectBalancesAsOf(accounts, txns, asOf)

	if !balances["1000"].Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("expected only January postings, got %s", balances["1000"])
	}

	// Boundary date is inclusive.
	balances = ProjectBalancesAsOf(accounts, txns, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC))
	if !balances["1000"].Equal(decimal.RequireFromString("150.00")) {
		t.Errorf("expected as-of boundary to include same-day postings, got %s", balances["1000"])
	}
}
