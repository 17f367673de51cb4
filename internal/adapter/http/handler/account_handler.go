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

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, id string, input usecase.UpdateAccountInput) (*domain.Account, error)
	ActivateAccount(ctx context.Context, id string) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, id string) (*domain.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	ListActiveAccounts(ctx context.Context) ([]*domain.Account, error)
	ListAccountsByType(ctx context.Context, accountType string) ([]*domain.Account, error)
	SearchAccounts(ctx context.Context, name string, activeOnly bool) ([]*domain.Account, error)
}

// AccountHandler handles chart-of-accounts HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Update updates an account's registry fields.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.UpdateAccount(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to update account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Activate reopens an account for new postings.
func (h *AccountHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.accountUC.ActivateAccount, "failed to activate account")
}

// Deactivate closes an account to new postings. Existing entries keep
// counting toward balances.
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, h.accountUC.DeactivateAccount, "failed to deactivate account")
}

func (h *AccountHandler) setActive(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id string) (*domain.Account, error),
	message string,
) {
	id := chi.URLParam(r, "id")

	account, err := op(r.Context(), id)
	if err != nil {
		writeDomainError(w, message, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Delete removes an account that has no entries.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.accountUC.DeleteAccount(r.Context(), id); err != nil {
		writeDomainError(w, "failed to delete account", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List lists accounts with pagination.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list accounts", err)
		return
	}

	writeAccountList(w, accounts)
}

// ListActive lists the accounts currently accepting postings.
func (h *AccountHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountUC.ListActiveAccounts(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list active accounts", err)
		return
	}

	writeAccountList(w, accounts)
}

// ListByType lists accounts of a single chart-of-accounts type.
func (h *AccountHandler) ListByType(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountUC.ListAccountsByType(r.Context(), chi.URLParam(r, "tipo"))
	if err != nil {
		writeDomainError(w, "failed to list accounts by type", err)
		return
	}

	writeAccountList(w, accounts)
}

// Search searches accounts by name. With activas=true only accounts
// accepting postings match.
func (h *AccountHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("nombre")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing search term", "query parameter nombre is required")
		return
	}

	accounts, err := h.accountUC.SearchAccounts(r.Context(), name, parseBoolQuery(r, "activas", false))
	if err != nil {
		writeDomainError(w, "failed to search accounts", err)
		return
	}

	writeAccountList(w, accounts)
}

func writeAccountList(w http.ResponseWriter, accounts []*domain.Account) {
	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}
