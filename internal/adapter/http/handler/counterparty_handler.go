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

// CounterpartyService defines the behavior needed by
// CounterpartyHandler.
type CounterpartyService interface {
	CreateCounterparty(ctx context.Context, input usecase.CounterpartyInput) (*domain.Counterparty, error)
	GetCounterparty(ctx context.Context, id string) (*domain.Counterparty, error)
	UpdateCounterparty(ctx context.Context, id string, input usecase.CounterpartyInput) (*domain.Counterparty, error)
	DeleteCounterparty(ctx context.Context, id string) error
	ListCounterparties(ctx context.Context, input usecase.ListCounterpartiesInput) ([]*domain.Counterparty, error)
	SearchCounterparties(ctx context.Context, query string) ([]*domain.Counterparty, error)
	CountTransactions(ctx context.Context, counterpartyID string) (int64, error)
}

// CounterpartyHandler handles counterparty ("tercero") HTTP requests.
type CounterpartyHandler struct {
	counterpartyUC CounterpartyService
}

// NewCounterpartyHandler creates a new CounterpartyHandler.
func NewCounterpartyHandler(counterpartyUC CounterpartyService) *CounterpartyHandler {
	return &CounterpartyHandler{counterpartyUC: counterpartyUC}
}

// Create creates a new counterparty.
func (h *CounterpartyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CounterpartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	counterparty, err := h.counterpartyUC.CreateCounterparty(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create counterparty", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CounterpartyFromDomain(counterparty))
}

// Get retrieves a counterparty by ID.
func (h *CounterpartyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing counterparty ID", "")
		return
	}

	counterparty, err := h.counterpartyUC.GetCounterparty(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get counterparty", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CounterpartyFromDomain(counterparty))
}

// Update updates a counterparty.
func (h *CounterpartyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.CounterpartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	counterparty, err := h.counterpartyUC.UpdateCounterparty(r.Context(), id, req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to update counterparty", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CounterpartyFromDomain(counterparty))
}

// Delete removes a counterparty that no transaction references.
func (h *CounterpartyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.counterpartyUC.DeleteCounterparty(r.Context(), id); err != nil {
		writeDomainError(w, "failed to delete counterparty", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List lists counterparties with pagination.
func (h *CounterpartyHandler) List(w http.ResponseWriter, r *http.Request) {
	counterparties, err := h.counterpartyUC.ListCounterparties(r.Context(), usecase.ListCounterpartiesInput{
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list counterparties", err)
		return
	}

	writeCounterpartyList(w, counterparties)
}

// Search searches counterparties by name, email, or document number.
func (h *CounterpartyHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing search term", "query parameter q is required")
		return
	}

	counterparties, err := h.counterpartyUC.SearchCounterparties(r.Context(), q)
	if err != nil {
		writeDomainError(w, "failed to search counterparties", err)
		return
	}

	writeCounterpartyList(w, counterparties)
}

func writeCounterpartyList(w http.ResponseWriter, counterparties []*domain.Counterparty) {
	writeJSON(w, http.StatusOK, dto.ListCounterpartiesResponse{
		Counterparties: dto.CounterpartiesFromDomain(counterparties),
		Total:          int64(len(counterparties)),
	})
}

// CountTransactions returns how many transactions reference the
// counterparty.
func (h *CounterpartyHandler) CountTransactions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	count, err := h.counterpartyUC.CountTransactions(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to count transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CountResponse{Count: count})
}
