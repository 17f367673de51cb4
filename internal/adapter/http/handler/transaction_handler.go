package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contabilidad/ledger/internal/adapter/http/dto"
	"github.com/contabilidad/ledger/internal/domain"
	"github.com/contabilidad/ledger/internal/usecase"
)

// TransactionService defines the behavior needed by
// TransactionHandler.
type TransactionService interface {
	CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	GetTransactionWithEntries(ctx context.Context, id string) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, input usecase.UpdateTransactionInput) (*domain.Transaction, error)
	ChangeState(ctx context.Context, id string, target domain.TransactionState) (*domain.Transaction, error)
	VoidTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ReactivateTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	MarkPendingTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter usecase.TransactionFilter) ([]*domain.Transaction, error)
	CountTransactions(ctx context.Context, filter usecase.TransactionFilter) (int64, error)
}

// TransactionHandler handles journal transaction HTTP requests.
type TransactionHandler struct {
	transactionUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

// Create validates and persists a new transaction. A rejected
// submission returns 422 with every violation found.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid transaction", err)
		return
	}

	txn, err := h.transactionUC.CreateTransaction(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Get retrieves a transaction with its entries.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	txn, err := h.transactionUC.GetTransactionWithEntries(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Entries returns only the entry lines ("partidas") of a transaction.
func (h *TransactionHandler) Entries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	txn, err := h.transactionUC.GetTransactionWithEntries(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get transaction entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn).Entries)
}

// Update replaces the header and the entire entry set of a non-VOID
// transaction.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid transaction", err)
		return
	}

	txn, err := h.transactionUC.UpdateTransaction(r.Context(), id, input)
	if err != nil {
		writeDomainError(w, "failed to update transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// ChangeState moves a transaction to the state named in the body.
func (h *TransactionHandler) ChangeState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.ChangeStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	target, err := domain.ParseTransactionState(req.State)
	if err != nil {
		writeDomainError(w, "invalid target state", err)
		return
	}

	txn, err := h.transactionUC.ChangeState(r.Context(), id, target)
	if err != nil {
		writeDomainError(w, "failed to change transaction state", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// Void excludes a transaction from balances without deleting it.
func (h *TransactionHandler) Void(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.transactionUC.VoidTransaction, "failed to void transaction")
}

// Reactivate returns a voided transaction to the balances, re-checking
// that every referenced account is still active.
func (h *TransactionHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.transactionUC.ReactivateTransaction, "failed to reactivate transaction")
}

// MarkPending asks for a transition back to PENDING. No state may
// legally move there, so this always answers 409; the route exists to
// make the rejection explicit.
func (h *TransactionHandler) MarkPending(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.transactionUC.MarkPendingTransaction, "failed to mark transaction pending")
}

func (h *TransactionHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id string) (*domain.Transaction, error),
	message string,
) {
	id := chi.URLParam(r, "id")

	txn, err := op(r.Context(), id)
	if err != nil {
		writeDomainError(w, message, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// List lists transactions matching the filter query parameters. Total
// counts all matches, not just the returned page.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilter(r)
	if err != nil {
		writeDomainError(w, "invalid filter", err)
		return
	}

	txns, err := h.transactionUC.ListTransactions(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	total, err := h.transactionUC.CountTransactions(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to count transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(txns),
		Total:        total,
	})
}

// Count returns how many transactions match the filter.
func (h *TransactionHandler) Count(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilter(r)
	if err != nil {
		writeDomainError(w, "invalid filter", err)
		return
	}

	total, err := h.transactionUC.CountTransactions(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to count transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CountResponse{Count: total})
}

// transactionFilter builds the use case filter from the query string:
// terceroId, estado, fechaInicio, fechaFin, descripcion, limit, offset.
func transactionFilter(r *http.Request) (usecase.TransactionFilter, error) {
	q := r.URL.Query()

	filter := usecase.TransactionFilter{
		Description: q.Get("descripcion"),
		Limit:       parseIntQuery(r, "limit", 20),
		Offset:      parseIntQuery(r, "offset", 0),
	}

	if v := q.Get("terceroId"); v != "" {
		filter.CounterpartyID = &v
	}

	if v := q.Get("estado"); v != "" {
		state, err := domain.ParseTransactionState(v)
		if err != nil {
			return usecase.TransactionFilter{}, err
		}
		filter.State = &state
	}

	if v := q.Get("fechaInicio"); v != "" {
		from, err := dto.ParseDate(v)
		if err != nil {
			return usecase.TransactionFilter{}, err
		}
		filter.DateFrom = &from
	}

	if v := q.Get("fechaFin"); v != "" {
		to, err := dto.ParseDate(v)
		if err != nil {
			return usecase.TransactionFilter{}, err
		}
		filter.DateTo = &to
	}

	return filter, nil
}
