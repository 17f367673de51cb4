package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/contabilidad/ledger/internal/adapter/http/dto"
	"github.com/contabilidad/ledger/internal/domain"
	"github.com/contabilidad/ledger/internal/usecase"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	ListBalances(ctx context.Context) ([]*domain.AccountBalance, error)
	GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error)
	GetBalanceValue(ctx context.Context, accountID string) (decimal.Decimal, error)
	GetBalanceAsOf(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error)
	AllowsNegativeBalance(ctx context.Context, accountID string) (bool, error)
	IsAccountActive(ctx context.Context, accountID string) (bool, error)
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// BalanceHandler handles derived balance ("saldo") HTTP requests.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// List returns the balance of every account, including accounts with
// no entries.
func (h *BalanceHandler) List(w http.ResponseWriter, r *http.Request) {
	balances, err := h.balanceUC.ListBalances(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list balances", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListBalancesResponse{
		Balances: dto.BalancesFromDomain(balances),
		Total:    int64(len(balances)),
	})
}

// Get returns one account's balance together with the account.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cuentaId")

	balance, err := h.balanceUC.GetAccountBalance(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// Value returns one account's bare balance value.
func (h *BalanceHandler) Value(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cuentaId")

	value, err := h.balanceUC.GetBalanceValue(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get balance value", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceValueResponse{
		AccountID: id,
		Balance:   value,
	})
}

// AsOf returns one account's balance counting only transactions dated
// on or before the fecha query parameter.
func (h *BalanceHandler) AsOf(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cuentaId")

	asOf, err := dto.ParseDate(r.URL.Query().Get("fecha"))
	if err != nil {
		writeDomainError(w, "invalid cutoff date", err)
		return
	}

	value, err := h.balanceUC.GetBalanceAsOf(r.Context(), id, asOf)
	if err != nil {
		writeDomainError(w, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceValueResponse{
		AccountID: id,
		Balance:   value,
		AsOf:      &asOf,
	})
}

// NegativeAllowed reports whether the account may go below zero.
func (h *BalanceHandler) NegativeAllowed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cuentaId")

	allowed, err := h.balanceUC.AllowsNegativeBalance(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to check account policy", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountCheckResponse{
		AccountID:            id,
		AllowNegativeBalance: &allowed,
	})
}

// Active reports whether the account accepts new postings.
func (h *BalanceHandler) Active(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cuentaId")

	active, err := h.balanceUC.IsAccountActive(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to check account state", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountCheckResponse{
		AccountID: id,
		Active:    &active,
	})
}

// Consistency checks the ledger-wide invariant that active debits
// equal active credits. An inconsistent ledger answers 409.
func (h *BalanceHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.balanceUC.CheckConsistency(r.Context())
	if err != nil {
		writeDomainError(w, "failed to check consistency", err)
		return
	}

	status := http.StatusOK
	if !report.Consistent {
		status = http.StatusConflict
	}

	writeJSON(w, status, report)
}
