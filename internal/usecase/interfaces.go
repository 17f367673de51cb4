package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contabilidad/ledger/internal/domain"
)

// AccountRepository defines data access for chart-of-accounts entries.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByCode(ctx context.Context, code string) (*domain.Account, error)
	// GetByIDsForUpdate locks the referenced accounts (FOR UPDATE, in
	// sorted order) inside a database transaction, so the validator and
	// the negative-balance guard serialize with concurrent postings to
	// the same accounts.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListActive(ctx context.Context) ([]*domain.Account, error)
	ListByType(ctx context.Context, accountType domain.AccountType) ([]*domain.Account, error)
	SearchByName(ctx context.Context, name string, activeOnly bool) ([]*domain.Account, error)
	HasEntries(ctx context.Context, id string) (bool, error)
}

// CounterpartyRepository defines data access for counterparties.
type CounterpartyRepository interface {
	Create(ctx context.Context, counterparty *domain.Counterparty) error
	GetByID(ctx context.Context, id string) (*domain.Counterparty, error)
	GetByDocument(ctx context.Context, documentNumber string) (*domain.Counterparty, error)
	Update(ctx context.Context, counterparty *domain.Counterparty) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.Counterparty, error)
	Search(ctx context.Context, query string) ([]*domain.Counterparty, error)
}

// TransactionFilter narrows transaction listings and counts.
type TransactionFilter struct {
	CounterpartyID *string
	DateFrom       *time.Time
	DateTo         *time.Time
	Description    string
	State          *domain.TransactionState
	Limit          int
	Offset         int
}

// TransactionRepository defines data access for journal transactions
// and their owned entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDWithEntries(ctx context.Context, id string) (*domain.Transaction, error)
	// GetByIDForUpdate locks the transaction row so concurrent state
	// transitions serialize; the loser observes the committed state.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	Update(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	UpdateState(ctx context.Context, tx Transaction, id string, state domain.TransactionState, updatedAt time.Time) error
	List(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, error)
	Count(ctx context.Context, filter TransactionFilter) (int64, error)
	ExistsByCounterparty(ctx context.Context, counterpartyID string) (bool, error)
}

// BalanceRepository derives balances from stored entries. The SQL
// projection must agree with domain.ProjectBalances over the same
// snapshot; the pure function is the ground truth in tests.
type BalanceRepository interface {
	ListBalances(ctx context.Context) ([]*domain.AccountBalance, error)
	ValueByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
	ValueByAccountTx(ctx context.Context, tx Transaction, accountID string) (decimal.Decimal, error)
	ValueAsOfDate(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error)
	// Totals returns ledger-wide debit and credit sums over ACTIVE
	// transactions; a consistent ledger has them equal.
	Totals(ctx context.Context) (debits, credits decimal.Decimal, err error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient database failures such
// as deadlocks between row-lock holders. Domain errors pass through
// untouched.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
