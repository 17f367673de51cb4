package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contabilidad/ledger/internal/adapter/http/dto"
	"github.com/contabilidad/ledger/internal/domain"
)

// AuditService defines the behavior needed by AuditHandler.
type AuditService interface {
	ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetResourceHistory(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// AuditHandler serves the audit trail.
type AuditHandler struct {
	auditUC AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditUC AuditService) *AuditHandler {
	return &AuditHandler{auditUC: auditUC}
}

// List handles GET /auditoria.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.AuditFilter{
		Action:       r.URL.Query().Get("action"),
		ResourceType: r.URL.Query().Get("resourceType"),
		ResourceID:   r.URL.Query().Get("resourceId"),
		Limit:        parseIntQuery(r, "limit", 50),
		Offset:       parseIntQuery(r, "offset", 0),
	}

	if raw := r.URL.Query().Get("fechaInicio"); raw != "" {
		from, err := dto.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid fechaInicio", err.Error())
			return
		}
		filter.StartDate = &from
	}

	if raw := r.URL.Query().Get("fechaFin"); raw != "" {
		to, err := dto.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid fechaFin", err.Error())
			return
		}
		filter.EndDate = &to
	}

	logs, err := h.auditUC.ListAuditLogs(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "failed to list audit logs", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAuditLogsResponse{
		Logs:  dto.AuditLogsFromDomain(logs),
		Total: int64(len(logs)),
	})
}

// TransactionHistory handles GET /transacciones/{id}/auditoria.
func (h *AuditHandler) TransactionHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	logs, err := h.auditUC.GetResourceHistory(r.Context(), domain.ResourceTypeTransaction, id)
	if err != nil {
		writeDomainError(w, "failed to load audit trail", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAuditLogsResponse{
		Logs:  dto.AuditLogsFromDomain(logs),
		Total: int64(len(logs)),
	})
}
