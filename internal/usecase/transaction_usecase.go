package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contabilidad/ledger/internal/domain"
	"github.com/contabilidad/ledger/internal/infrastructure/logging"
	"github.com/contabilidad/ledger/internal/infrastructure/metrics"
)

// TransactionUseCase handles journal transaction business logic:
// validated creation, the PENDING/ACTIVE/VOID state machine, and
// edits that re-run validation against the current account set.
type TransactionUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	counterparties  CounterpartyRepository
	transactionRepo TransactionRepository
	balanceRepo     BalanceRepository
	auditRepo       AuditRepository
	cache           Cache
	idGen           IDGenerator
	retrier         Retrier
	metrics         *metrics.Metrics
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	counterparties CounterpartyRepository,
	transactionRepo TransactionRepository,
	balanceRepo BalanceRepository,
	auditRepo AuditRepository,
	cache Cache,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		counterparties:  counterparties,
		transactionRepo: transactionRepo,
		balanceRepo:     balanceRepo,
		auditRepo:       auditRepo,
		cache:           cache,
		idGen:           idGen,
		retrier:         retrier,
		metrics:         metrics,
	}
}

// EntryInput is a candidate entry line.
type EntryInput struct {
	AccountID string
	Side      domain.Side
	Amount    decimal.Decimal
	Memo      string
}

// CreateTransactionInput represents input for creating a transaction.
type CreateTransactionInput struct {
	Date           time.Time
	Description    string
	CounterpartyID *string
	State          domain.TransactionState
	Entries        []EntryInput
}

// CreateTransaction validates and persists a new transaction in the
// caller-selected initial state (ACTIVE or PENDING). A rejected
// transaction leaves no trace: validation and insert share one
// database transaction.
func (uc *TransactionUseCase) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	if input.Date.IsZero() {
		return nil, errors.New("transaction date is required")
	}

	state := input.State
	if state == "" {
		state = domain.StateActive
	}

	if state != domain.StateActive && state != domain.StatePending {
		return nil, fmt.Errorf("%w: initial state must be ACTIVE or PENDING", domain.ErrInvalidTransactionState)
	}

	if input.CounterpartyID != nil {
		if _, err := uc.counterparties.GetByID(ctx, *input.CounterpartyID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()

	txn := &domain.Transaction{
		ID:             uc.idGen.Generate(),
		Date:           input.Date,
		Description:    input.Description,
		CounterpartyID: input.CounterpartyID,
		State:          state,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	txn.Entries = make([]domain.Entry, len(input.Entries))
	for i, e := range input.Entries {
		txn.Entries[i] = domain.Entry{
			ID:            uc.idGen.Generate(),
			TransactionID: txn.ID,
			AccountID:     e.AccountID,
			Side:          e.Side,
			Amount:        e.Amount,
			Memo:          e.Memo,
		}
	}

	drafts := make([]domain.EntryDraft, len(input.Entries))
	for i, e := range input.Entries {
		drafts[i] = domain.EntryDraft{AccountID: e.AccountID, Side: e.Side, Amount: e.Amount, Memo: e.Memo}
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	err := uc.withRetry(txCtx, func() error {
		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer tx.Rollback(txCtx)

		accounts, err := uc.loadAccountSnapshot(txCtx, tx, entryAccountIDs(input.Entries))
		if err != nil {
			return err
		}

		if err := domain.ValidateEntries(drafts, accounts); err != nil {
			return err
		}

		// Only ACTIVE transactions move balances, so the negative-balance
		// guard applies only when posting straight to ACTIVE.
		if state == domain.StateActive {
			if err := uc.checkNegativeBalances(txCtx, tx, accounts, nil, txn.Entries); err != nil {
				return err
			}
		}

		if err := uc.transactionRepo.Create(txCtx, tx, txn); err != nil {
			return err
		}

		uc.auditTx(txCtx, tx, domain.AuditActionTransactionCreate, txn.ID, nil, txn)

		return tx.Commit(txCtx)
	})
	if err != nil {
		uc.recordValidationFailure(err)
		return nil, err
	}

	uc.invalidateBalances(ctx)

	if uc.metrics != nil {
		uc.metrics.TransactionsCreated.Inc()
	}

	return txn, nil
}

// UpdateTransactionInput represents input for editing a transaction.
type UpdateTransactionInput struct {
	Date           time.Time
	Description    string
	CounterpartyID *string
	Entries        []EntryInput
}

// UpdateTransaction replaces the header fields and the entire entry
// set of a non-VOID transaction. The edit re-runs the validator under
// the currently-authoritative account snapshot; a rejected edit
// changes nothing.
func (uc *TransactionUseCase) UpdateTransaction(ctx context.Context, id string, input UpdateTransactionInput) (*domain.Transaction, error) {
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	if input.Date.IsZero() {
		return nil, errors.New("transaction date is required")
	}

	if input.CounterpartyID != nil {
		if _, err := uc.counterparties.GetByID(ctx, *input.CounterpartyID); err != nil {
			return nil, err
		}
	}

	drafts := make([]domain.EntryDraft, len(input.Entries))
	for i, e := range input.Entries {
		drafts[i] = domain.EntryDraft{AccountID: e.AccountID, Side: e.Side, Amount: e.Amount, Memo: e.Memo}
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	var txn *domain.Transaction

	err := uc.withRetry(txCtx, func() error {
		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer tx.Rollback(txCtx)

		txn, err = uc.transactionRepo.GetByIDForUpdate(txCtx, tx, id)
		if err != nil {
			return err
		}

		if !txn.Mutable() {
			return fmt.Errorf("%w: %s transaction cannot be edited", domain.ErrIllegalTransition, txn.State)
		}

		ids := entryAccountIDs(input.Entries)
		for _, e := range txn.Entries {
			ids = append(ids, e.AccountID)
		}

		accounts, err := uc.loadAccountSnapshot(txCtx, tx, ids)
		if err != nil {
			return err
		}

		if err := domain.ValidateEntries(drafts, accounts); err != nil {
			return err
		}

		before := *txn

		newEntries := make([]domain.Entry, len(input.Entries))
		for i, e := range input.Entries {
			newEntries[i] = domain.Entry{
				ID:            uc.idGen.Generate(),
				TransactionID: txn.ID,
				AccountID:     e.AccountID,
				Side:          e.Side,
				Amount:        e.Amount,
				Memo:          e.Memo,
			}
		}

		if txn.State == domain.StateActive {
			if err := uc.checkNegativeBalances(txCtx, tx, accounts, txn.Entries, newEntries); err != nil {
				return err
			}
		}

		txn.Date = input.Date
		txn.Description = input.Description
		txn.CounterpartyID = input.CounterpartyID
		txn.Entries = newEntries
		txn.UpdatedAt = time.Now().UTC()

		if err := uc.transactionRepo.Update(txCtx, tx, txn); err != nil {
			return err
		}

		uc.auditTx(txCtx, tx, domain.AuditActionTransactionUpdate, txn.ID, &before, txn)

		return tx.Commit(txCtx)
	})
	if err != nil {
		uc.recordValidationFailure(err)
		return nil, err
	}

	uc.invalidateBalances(ctx)

	return txn, nil
}

// ChangeState transitions a transaction through the lifecycle state
// machine. The transaction row is locked for the duration, so two
// concurrent transitions against the same ID serialize; the loser
// observes the committed state and fails with ErrIllegalTransition.
func (uc *TransactionUseCase) ChangeState(ctx context.Context, id string, target domain.TransactionState) (*domain.Transaction, error) {
	if _, err := domain.ParseTransactionState(string(target)); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	var (
		txn  *domain.Transaction
		from domain.TransactionState
	)

	err := uc.withRetry(txCtx, func() error {
		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer tx.Rollback(txCtx)

		txn, err = uc.transactionRepo.GetByIDForUpdate(txCtx, tx, id)
		if err != nil {
			return err
		}

		from = txn.State

		if !domain.CanTransition(from, target) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, from, target)
		}

		// Accounts may have been deactivated since the transaction left
		// ACTIVE; transitions back in must re-check the active set.
		// Activation also starts moving balances, so the entries face
		// the same negative-balance guard as an ACTIVE create.
		if domain.RequiresRevalidation(target) {
			accounts, err := uc.loadAccountSnapshot(txCtx, tx, entryIDs(txn.Entries))
			if err != nil {
				return err
			}

			if err := domain.ValidateAccountsActive(txn.Entries, accounts); err != nil {
				return err
			}

			if err := uc.checkNegativeBalances(txCtx, tx, accounts, nil, txn.Entries); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		if err := uc.transactionRepo.UpdateState(txCtx, tx, id, target, now); err != nil {
			return err
		}

		before := *txn
		txn.State = target
		txn.UpdatedAt = now

		uc.auditTx(txCtx, tx, transitionAuditAction(from, target), id, &before, txn)

		return tx.Commit(txCtx)
	})
	if err != nil {
		uc.recordValidationFailure(err)
		return nil, err
	}

	uc.invalidateBalances(ctx)

	if uc.metrics != nil {
		switch target {
		case domain.StateVoid:
			uc.metrics.TransactionsVoided.Inc()
		case domain.StateActive:
			uc.metrics.TransactionsActivated.Inc()
		}
	}

	return txn, nil
}

// VoidTransaction voids an ACTIVE transaction ("anular"), removing
// its contribution from all balances.
func (uc *TransactionUseCase) VoidTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.ChangeState(ctx, id, domain.StateVoid)
}

// ReactivateTransaction restores a VOID transaction to ACTIVE after
// re-validating its accounts.
func (uc *TransactionUseCase) ReactivateTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.ChangeState(ctx, id, domain.StateActive)
}

// MarkPendingTransaction attempts to move a transaction to PENDING.
// No lifecycle state may transition into PENDING, so this reports
// ErrIllegalTransition for every existing transaction.
func (uc *TransactionUseCase) MarkPendingTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.ChangeState(ctx, id, domain.StatePending)
}

// GetTransactionWithEntries retrieves a transaction with its entries.
func (uc *TransactionUseCase) GetTransactionWithEntries(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.transactionRepo.GetByIDWithEntries(ctx, id)
}

// ListTransactions lists transactions matching the filter.
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	if filter.Limit > 100 {
		filter.Limit = 100
	}

	return uc.transactionRepo.List(ctx, filter)
}

// CountTransactions counts transactions matching the filter.
func (uc *TransactionUseCase) CountTransactions(ctx context.Context, filter TransactionFilter) (int64, error) {
	return uc.transactionRepo.Count(ctx, filter)
}

// loadAccountSnapshot locks the referenced accounts inside the
// database transaction and returns them keyed by ID. Locking in
// sorted order prevents lock-order deadlocks between concurrent
// postings; without the locks two read-committed transactions could
// both pass the negative-balance guard against the same pre-insert
// balance. Unknown IDs are simply absent; the validator reports them.
func (uc *TransactionUseCase) loadAccountSnapshot(ctx context.Context, tx Transaction, ids []string) (map[string]*domain.Account, error) {
	if len(ids) == 0 {
		return map[string]*domain.Account{}, nil
	}

	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	m := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a
	}

	return m, nil
}

// checkNegativeBalances rejects postings that would drive an account
// without AllowNegativeBalance below zero. oldEntries is the entry
// set being replaced (nil on create); its contribution is backed out
// of the stored balance before the new entries are applied.
func (uc *TransactionUseCase) checkNegativeBalances(
	ctx context.Context,
	tx Transaction,
	accounts map[string]*domain.Account,
	oldEntries, newEntries []domain.Entry,
) error {
	deltas := make(map[string]decimal.Decimal)

	for _, e := range oldEntries {
		deltas[e.AccountID] = deltas[e.AccountID].Sub(e.SignedAmount())
	}

	for _, e := range newEntries {
		deltas[e.AccountID] = deltas[e.AccountID].Add(e.SignedAmount())
	}

	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var violations []domain.Violation

	for _, id := range ids {
		account, ok := accounts[id]
		if !ok || account.AllowNegativeBalance {
			continue
		}

		current, err := uc.balanceRepo.ValueByAccountTx(ctx, tx, id)
		if err != nil {
			return err
		}

		projected := current.Add(deltas[id])
		if projected.IsNegative() {
			violations = append(violations, domain.Violation{
				Code:      domain.ViolationNegativeBalanceNotAllowed,
				AccountID: id,
				Message: fmt.Sprintf("posting would leave account %s at %s, which does not allow negative balances",
					account.Code, projected),
			})
		}
	}

	if len(violations) > 0 {
		return &domain.ValidationError{Violations: violations}
	}

	return nil
}

func (uc *TransactionUseCase) withRetry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}

	return uc.retrier.Retry(ctx, op)
}

func (uc *TransactionUseCase) invalidateBalances(ctx context.Context) {
	if uc.cache == nil {
		return
	}

	_ = uc.cache.Delete(ctx, BalancesCacheKey)
}

func (uc *TransactionUseCase) recordValidationFailure(err error) {
	if uc.metrics == nil {
		return
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		for _, v := range verr.Violations {
			uc.metrics.ValidationFailures.WithLabelValues(string(v.Code)).Inc()
		}
	}
}

func (uc *TransactionUseCase) auditTx(ctx context.Context, tx Transaction, action domain.AuditAction, resourceID string, before, after any) {
	if uc.auditRepo == nil {
		return
	}

	_ = uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		Action:       string(action),
		ResourceType: domain.ResourceTypeTransaction,
		ResourceID:   resourceID,
		RequestID:    logging.RequestIDFromContext(ctx),
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}

func transitionAuditAction(from, to domain.TransactionState) domain.AuditAction {
	switch {
	case to == domain.StateVoid:
		return domain.AuditActionTransactionVoid
	case from == domain.StateVoid:
		return domain.AuditActionTransactionReactivate
	default:
		return domain.AuditActionTransactionActivate
	}
}

func entryAccountIDs(entries []EntryInput) []string {
	seen := make(map[string]bool)

	var ids []string
	for _, e := range entries {
		if e.AccountID == "" || seen[e.AccountID] {
			continue
		}
		seen[e.AccountID] = true
		ids = append(ids, e.AccountID)
	}

	return ids
}

func entryIDs(entries []domain.Entry) []string {
	seen := make(map[string]bool)

	var ids []string
	for _, e := range entries {
		if seen[e.AccountID] {
			continue
		}
		seen[e.AccountID] = true
		ids = append(ids, e.AccountID)
	}

	return ids
}
