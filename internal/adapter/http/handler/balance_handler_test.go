package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contabilidad/ledger/internal/adapter/http/dto"
	"github.com/contabilidad/ledger/internal/domain"
	"github.com/contabilidad/ledger/internal/usecase"
)

type balanceServiceStub struct {
	listFn        func(ctx context.Context) ([]*domain.AccountBalance, error)
	getFn         func(ctx context.Context, accountID string) (*domain.AccountBalance, error)
	valueFn       func(ctx context.Context, accountID string) (decimal.Decimal, error)
	asOfFn        func(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error)
	negativeFn    func(ctx context.Context, accountID string) (bool, error)
	activeFn      func(ctx context.Context, accountID string) (bool, error)
	consistencyFn func(ctx context.Context) (*usecase.ConsistencyReport, error)
}

func (s *balanceServiceStub) ListBalances(ctx context.Context) ([]*domain.AccountBalance, error) {
	return s.listFn(ctx)
}

func (s *balanceServiceStub) GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	return s.getFn(ctx, accountID)
}

func (s *balanceServiceStub) GetBalanceValue(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return s.valueFn(ctx, accountID)
}

func (s *balanceServiceStub) GetBalanceAsOf(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
	return s.asOfFn(ctx, accountID, asOf)
}

func (s *balanceServiceStub) AllowsNegativeBalance(ctx context.Context, accountID string) (bool, error) {
	return s.negativeFn(ctx, accountID)
}

func (s *balanceServiceStub) IsAccountActive(ctx context.Context, accountID string) (bool, error) {
	return s.activeFn(ctx, accountID)
}

func (s *balanceServiceStub) CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error) {
	return s.consistencyFn(ctx)
}

func TestBalanceHandler_List(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		listFn: func(ctx context.Context) ([]*domain.AccountBalance, error) {
			return []*domain.AccountBalance{
				{
					Account: &domain.Account{ID: "acc-1", Code: "1105", Name: "Caja", Type: domain.AccountTypeAsset, Active: true},
					Balance: decimal.RequireFromString("150.00"),
				},
				{
					Account: &domain.Account{ID: "acc-2", Code: "2205", Name: "Proveedores", Type: domain.AccountTypeLiability, Active: true},
					Balance: decimal.Zero,
				},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/saldos", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListBalancesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 2 || !resp.Balances[0].Balance.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("unexpected balance list: %+v", resp)
	}
}

func TestBalanceHandler_AsOf(t *testing.T) {
	var capturedCutoff time.Time
	handler := NewBalanceHandler(&balanceServiceStub{
		asOfFn: func(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
			capturedCutoff = asOf
			return decimal.RequireFromString("80.00"), nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/saldos/acc-1/hasta-fecha?fecha=2026-06-30", nil), "cuentaId", "acc-1")
	rec := httptest.NewRecorder()

	handler.AsOf(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !capturedCutoff.Equal(time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("cutoff = %v", capturedCutoff)
	}

	var resp dto.BalanceValueResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AsOf == nil || !resp.Balance.Equal(decimal.RequireFromString("80.00")) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBalanceHandler_AsOf_MissingDate(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		asOfFn: func(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, error) {
			t.Fatal("use case should not run without a cutoff date")
			return decimal.Zero, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/saldos/acc-1/hasta-fecha", nil), "cuentaId", "acc-1")
	rec := httptest.NewRecorder()

	handler.AsOf(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBalanceHandler_Checks(t *testing.T) {
	handler := NewBalanceHandler(&balanceServiceStub{
		negativeFn: func(ctx context.Context, accountID string) (bool, error) { return true, nil },
		activeFn:   func(ctx context.Context, accountID string) (bool, error) { return false, nil },
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/saldos/acc-1/validar-saldo-negativo", nil), "cuentaId", "acc-1")
	rec := httptest.NewRecorder()
	handler.NegativeAllowed(rec, req)

	var check dto.AccountCheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &check); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if check.AllowNegativeBalance == nil || !*check.AllowNegativeBalance {
		t.Fatalf("unexpected policy answer: %+v", check)
	}

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/saldos/acc-1/validar-activa", nil), "cuentaId", "acc-1")
	rec = httptest.NewRecorder()
	handler.Active(rec, req)

	check = dto.AccountCheckResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &check); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if check.Active == nil || *check.Active {
		t.Fatalf("unexpected active answer: %+v", check)
	}
}

func TestBalanceHandler_Consistency(t *testing.T) {
	report := &usecase.ConsistencyReport{
		Debits:     decimal.RequireFromString("1000.00"),
		Credits:    decimal.RequireFromString("1000.00"),
		Difference: decimal.Zero,
		Consistent: true,
	}

	handler := NewBalanceHandler(&balanceServiceStub{
		consistencyFn: func(ctx context.Context) (*usecase.ConsistencyReport, error) {
			return report, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Consistency(rec, httptest.NewRequest(http.MethodGet, "/saldos/consistencia", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	report.Consistent = false
	report.Difference = decimal.RequireFromString("0.01")

	rec = httptest.NewRecorder()
	handler.Consistency(rec, httptest.NewRequest(http.MethodGet, "/saldos/consistencia", nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for an inconsistent ledger, got %d", rec.Code)
	}
}
