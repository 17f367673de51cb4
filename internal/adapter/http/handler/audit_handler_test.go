package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/contabilidad/ledger/internal/adapter/http/dto"
	"github.com/contabilidad/ledger/internal/domain"
)

type auditServiceStub struct {
	listFn    func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	historyFn func(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

func (s *auditServiceStub) ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	return s.listFn(ctx, filter)
}

func (s *auditServiceStub) GetResourceHistory(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return s.historyFn(ctx, resourceType, resourceID)
}

func TestAuditHandler_List_AppliesFilters(t *testing.T) {
	var captured domain.AuditFilter
	h := NewAuditHandler(&auditServiceStub{
		listFn: func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
			captured = filter
			return []*domain.AuditLog{
				{ID: "log-1", Action: string(domain.AuditActionTransactionCreate), ResourceType: domain.ResourceTypeTransaction, ResourceID: "txn-1", Status: string(domain.AuditStatusSuccess), CreatedAt: time.Now()},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/auditoria?action=transaction.create&resourceType=transaction&fechaInicio=2026-01-01&fechaFin=2026-01-31&limit=10&offset=20", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Action != "transaction.create" || captured.ResourceType != "transaction" {
		t.Fatalf("unexpected filter: %+v", captured)
	}
	if captured.Limit != 10 || captured.Offset != 20 {
		t.Fatalf("expected limit 10 offset 20, got %d/%d", captured.Limit, captured.Offset)
	}
	if captured.StartDate == nil || captured.StartDate.Format("2006-01-02") != "2026-01-01" {
		t.Fatalf("unexpected start date: %v", captured.StartDate)
	}
	if captured.EndDate == nil || captured.EndDate.Format("2006-01-02") != "2026-01-31" {
		t.Fatalf("unexpected end date: %v", captured.EndDate)
	}

	var resp dto.ListAuditLogsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Logs) != 1 {
		t.Fatalf("expected one log, got %+v", resp)
	}
	if resp.Logs[0].ID != "log-1" {
		t.Fatalf("unexpected log id %q", resp.Logs[0].ID)
	}
}

func TestAuditHandler_List_InvalidDate(t *testing.T) {
	h := NewAuditHandler(&auditServiceStub{
		listFn: func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/auditoria?fechaInicio=31-01-2026", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuditHandler_TransactionHistory(t *testing.T) {
	var gotType, gotID string
	h := NewAuditHandler(&auditServiceStub{
		historyFn: func(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
			gotType, gotID = resourceType, resourceID
			return []*domain.AuditLog{
				{ID: "log-1", Action: string(domain.AuditActionTransactionVoid), ResourceType: resourceType, ResourceID: resourceID, Status: string(domain.AuditStatusSuccess), CreatedAt: time.Now()},
				{ID: "log-2", Action: string(domain.AuditActionTransactionCreate), ResourceType: resourceType, ResourceID: resourceID, Status: string(domain.AuditStatusSuccess), CreatedAt: time.Now()},
			}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/transacciones/txn-1/auditoria", nil), "id", "txn-1")
	rec := httptest.NewRecorder()
	h.TransactionHistory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotType != domain.ResourceTypeTransaction || gotID != "txn-1" {
		t.Fatalf("expected transaction history lookup, got %s/%s", gotType, gotID)
	}

	var resp dto.ListAuditLogsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("expected two entries, got %d", resp.Total)
	}
}
