package usecase

import (
	"context"

	"github.com/contabilidad/ledger/internal/domain"
)

// AuditUseCase exposes the audit trail written by the mutating use
// cases.
type AuditUseCase struct {
	auditRepo AuditRepository
}

// NewAuditUseCase creates a new AuditUseCase.
func NewAuditUseCase(auditRepo AuditRepository) *AuditUseCase {
	return &AuditUseCase{auditRepo: auditRepo}
}

// ListAuditLogs lists audit entries matching the filter, newest first.
func (uc *AuditUseCase) ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}

	return uc.auditRepo.List(ctx, filter)
}

// GetResourceHistory returns the audit trail of a single resource.
func (uc *AuditUseCase) GetResourceHistory(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return uc.auditRepo.GetByResourceID(ctx, resourceType, resourceID)
}
