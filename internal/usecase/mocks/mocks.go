package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contabilidad/ledger/internal/domain"
	"github.com/contabilidad/ledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByCodeFunc         func(ctx context.Context, code string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	UpdateFunc            func(ctx context.Context, account *domain.Account) error
	SetActiveFunc         func(ctx context.Context, id string, active bool, updatedAt time.Time) error
	DeleteFunc            func(ctx context.Context, id string) error
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListActiveFunc        func(ctx context.Context) ([]*domain.Account, error)
	ListByTypeFunc        func(ctx context.Context, accountType domain.AccountType) ([]*domain.Account, error)
	SearchByNameFunc      func(ctx context.Context, name string, activeOnly bool) ([]*domain.Account, error)
	HasEntriesFunc        func(ctx context.Context, id string) (bool, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed stores accounts directly, bypassing the Create hook.
func (m *MockAccountRepository) Seed(accounts ...*domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByCode(ctx context.Context, code string) (*domain.Account, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Code == code {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Active = active
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func (m *MockAccountRepository) ListActive(ctx context.Context) ([]*domain.Account, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.Active {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) ListByType(ctx context.Context, accountType domain.AccountType) ([]*domain.Account, error) {
	if m.ListByTypeFunc != nil {
		return m.ListByTypeFunc(ctx, accountType)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.Type == accountType {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) SearchByName(ctx context.Context, name string, activeOnly bool) ([]*domain.Account, error) {
	if m.SearchByNameFunc != nil {
		return m.SearchByNameFunc(ctx, name, activeOnly)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if activeOnly && !acc.Active {
			continue
		}
		if strings.Contains(strings.ToLower(acc.Name), strings.ToLower(name)) {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) HasEntries(ctx context.Context, id string) (bool, error) {
	if m.HasEntriesFunc != nil {
		return m.HasEntriesFunc(ctx, id)
	}
	return false, nil
}

// MockCounterpartyRepository is a mock implementation of CounterpartyRepository.
type MockCounterpartyRepository struct {
	mu             sync.RWMutex
	counterparties map[string]*domain.Counterparty

	CreateFunc        func(ctx context.Context, counterparty *domain.Counterparty) error
	GetByIDFunc       func(ctx context.Context, id string) (*domain.Counterparty, error)
	GetByDocumentFunc func(ctx context.Context, documentNumber string) (*domain.Counterparty, error)
	UpdateFunc        func(ctx context.Context, counterparty *domain.Counterparty) error
	DeleteFunc        func(ctx context.Context, id string) error
	ListFunc          func(ctx context.Context, limit, offset int) ([]*domain.Counterparty, error)
	SearchFunc        func(ctx context.Context, query string) ([]*domain.Counterparty, error)
}

func NewMockCounterpartyRepository() *MockCounterpartyRepository {
	return &MockCounterpartyRepository{
		counterparties: make(map[string]*domain.Counterparty),
	}
}

func (m *MockCounterpartyRepository) Seed(counterparties ...*domain.Counterparty) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range counterparties {
		m.counterparties[c.ID] = c
	}
}

func (m *MockCounterpartyRepository) Create(ctx context.Context, counterparty *domain.Counterparty) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, counterparty)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counterparties[counterparty.ID] = counterparty
	return nil
}

func (m *MockCounterpartyRepository) GetByID(ctx context.Context, id string) (*domain.Counterparty, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.counterparties[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCounterpartyNotFound
}

func (m *MockCounterpartyRepository) GetByDocument(ctx context.Context, documentNumber string) (*domain.Counterparty, error) {
	if m.GetByDocumentFunc != nil {
		return m.GetByDocumentFunc(ctx, documentNumber)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.counterparties {
		if c.DocumentNumber == documentNumber {
			return c, nil
		}
	}
	return nil, domain.ErrCounterpartyNotFound
}

func (m *MockCounterpartyRepository) Update(ctx context.Context, counterparty *domain.Counterparty) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, counterparty)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.counterparties[counterparty.ID]; !ok {
		return domain.ErrCounterpartyNotFound
	}
	m.counterparties[counterparty.ID] = counterparty
	return nil
}

func (m *MockCounterpartyRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.counterparties[id]; !ok {
		return domain.ErrCounterpartyNotFound
	}
	delete(m.counterparties, id)
	return nil
}

func (m *MockCounterpartyRepository) List(ctx context.Context, limit, offset int) ([]*domain.Counterparty, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var counterparties []*domain.Counterparty
	for _, c := range m.counterparties {
		counterparties = append(counterparties, c)
	}
	return counterparties, nil
}

func (m *MockCounterpartyRepository) Search(ctx context.Context, query string) ([]*domain.Counterparty, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var counterparties []*domain.Counterparty
	for _, c := range m.counterparties {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(query)) ||
			strings.Contains(c.DocumentNumber, query) {
			counterparties = append(counterparties, c)
		}
	}
	return counterparties, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction

	CreateFunc               func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDWithEntriesFunc   func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdateFunc     func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error)
	UpdateFunc               func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	UpdateStateFunc          func(ctx context.Context, tx usecase.Transaction, id string, state domain.TransactionState, updatedAt time.Time) error
	ListFunc                 func(ctx context.Context, filter usecase.TransactionFilter) ([]*domain.Transaction, error)
	CountFunc                func(ctx context.Context, filter usecase.TransactionFilter) (int64, error)
	ExistsByCounterpartyFunc func(ctx context.Context, counterpartyID string) (bool, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Seed(txns ...*domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range txns {
		m.transactions[t.ID] = t
	}
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.ID] = txn
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIDWithEntries(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDWithEntriesFunc != nil {
		return m.GetByIDWithEntriesFunc(ctx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[txn.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	m.transactions[txn.ID] = txn
	return nil
}

func (m *MockTransactionRepository) UpdateState(ctx context.Context, tx usecase.Transaction, id string, state domain.TransactionState, updatedAt time.Time) error {
	if m.UpdateStateFunc != nil {
		return m.UpdateStateFunc(ctx, tx, id, state, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.State = state
	t.UpdatedAt = updatedAt
	return nil
}

func (m *MockTransactionRepository) List(ctx context.Context, filter usecase.TransactionFilter) ([]*domain.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.Transaction
	for _, t := range m.transactions {
		txns = append(txns, t)
	}
	return txns, nil
}

func (m *MockTransactionRepository) Count(ctx context.Context, filter usecase.TransactionFilter) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, t := range m.transactions {
		if filter.CounterpartyID != nil {
			if t.CounterpartyID == nil || *t.CounterpartyID != *filter.CounterpartyID {
				continue
			}
		}
		n++
	}
	return n, nil
}

func (m *MockTransactionRepository) ExistsByCounterparty(ctx context.Context, counterpartyID string) (bool, error) {
	if m.ExistsByCounterpartyFunc != nil {
		return m.ExistsByCounterpartyFunc(ctx, counterpartyID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.transactions {
		if t.CounterpartyID != nil && *t.CounterpartyID == counterpartyID {
			return true, nil
		}
	}
	return false, nil
}

// MockBalanceRepository is a mock implementation of BalanceRepository.
// Defaults serve balances from a seeded map keyed by account ID.
type MockBalanceRepository struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal

	ListBalancesFunc     func(ctx context.Context) ([]*domain.AccountBalance, error)
	ValueByAccountFunc   func(ctx context.Context, accountID string) (decimal.Decimal, error)
	ValueByAccountTxFunc func(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error)
	ValueAsOfDateFunc    func(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error)
	TotalsFunc           func(ctx context.Context) (decimal.Decimal, decimal.Decimal, error)
}

func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{
		balances: make(map[string]decimal.Decimal),
	}
}

func (m *MockBalanceRepository) SetBalance(accountID string, balance decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[accountID] = balance
}

func (m *MockBalanceRepository) ListBalances(ctx context.Context) ([]*domain.AccountBalance, error) {
	if m.ListBalancesFunc != nil {
		return m.ListBalancesFunc(ctx)
	}
	return nil, nil
}

func (m *MockBalanceRepository) ValueByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if m.ValueByAccountFunc != nil {
		return m.ValueByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[accountID], nil
}

func (m *MockBalanceRepository) ValueByAccountTx(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error) {
	if m.ValueByAccountTxFunc != nil {
		return m.ValueByAccountTxFunc(ctx, tx, accountID)
	}
	return m.ValueByAccount(ctx, accountID)
}

func (m *MockBalanceRepository) ValueAsOfDate(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	if m.ValueAsOfDateFunc != nil {
		return m.ValueAsOfDateFunc(ctx, accountID, asOf)
	}
	return m.ValueByAccount(ctx, accountID)
}

func (m *MockBalanceRepository) Totals(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	if m.TotalsFunc != nil {
		return m.TotalsFunc(ctx)
	}
	return decimal.Zero, decimal.Zero, nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc   func(ctx context.Context, log *domain.AuditLog) error
	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
	ListFunc     func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditLog(nil), m.logs...), nil
}

func (m *MockAuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var logs []*domain.AuditLog
	for _, l := range m.logs {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

// Logs returns a snapshot of recorded audit logs.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditLog(nil), m.logs...)
}

// MockTransactionManager is a mock TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock database transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
	Committed    bool
	RolledBack   bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.RolledBack = true
	return nil
}

// MockIDGenerator is a mock IDGenerator producing sequential IDs.
type MockIDGenerator struct {
	mu           sync.Mutex
	counter      int
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockCache is a mock in-memory Cache.
type MockCache struct {
	mu      sync.RWMutex
	entries map[string][]byte

	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	SetFunc    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[key], nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
