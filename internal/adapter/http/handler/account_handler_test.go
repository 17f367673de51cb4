package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/contabilidad/ledger/internal/adapter/http/dto"
	"github.com/contabilidad/ledger/internal/domain"
	"github.com/contabilidad/ledger/internal/usecase"
)

type accountServiceStub struct {
	createFn     func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn        func(ctx context.Context, id string) (*domain.Account, error)
	updateFn     func(ctx context.Context, id string, input usecase.UpdateAccountInput) (*domain.Account, error)
	activateFn   func(ctx context.Context, id string) (*domain.Account, error)
	deactivateFn func(ctx context.Context, id string) (*domain.Account, error)
	deleteFn     func(ctx context.Context, id string) error
	listFn       func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	listActiveFn func(ctx context.Context) ([]*domain.Account, error)
	listByTypeFn func(ctx context.Context, accountType string) ([]*domain.Account, error)
	searchFn     func(ctx context.Context, name string, activeOnly bool) ([]*domain.Account, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) UpdateAccount(ctx context.Context, id string, input usecase.UpdateAccountInput) (*domain.Account, error) {
	return s.updateFn(ctx, id, input)
}

func (s *accountServiceStub) ActivateAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.activateFn(ctx, id)
}

func (s *accountServiceStub) DeactivateAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.deactivateFn(ctx, id)
}

func (s *accountServiceStub) DeleteAccount(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, input)
}

func (s *accountServiceStub) ListActiveAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.listActiveFn(ctx)
}

func (s *accountServiceStub) ListAccountsByType(ctx context.Context, accountType string) ([]*domain.Account, error) {
	return s.listByTypeFn(ctx, accountType)
}

func (s *accountServiceStub) SearchAccounts(ctx context.Context, name string, activeOnly bool) ([]*domain.Account, error) {
	return s.searchFn(ctx, name, activeOnly)
}

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:     "acc-1",
		Code:   "1105",
		Name:   "Caja General",
		Type:   domain.AccountTypeAsset,
		Active: true,
	}

	var captured usecase.CreateAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{
		Code: "1105",
		Name: "Caja General",
		Type: "ASSET",
	})

	req := httptest.NewRequest(http.MethodPost, "/cuentas", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Code != "1105" || captured.Name != "Caja General" || !captured.Active {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" {
		t.Fatalf("expected account ID acc-1, got %s", resp.ID)
	}
}

func TestAccountHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			t.Fatal("CreateAccount should not be called for invalid payload")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/cuentas", bytes.NewBufferString("{invalid json"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_DuplicateCode(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			return nil, domain.ErrDuplicateAccountCode
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{Code: "1105", Name: "Caja", Type: "ASSET"})
	req := httptest.NewRequest(http.MethodPost, "/cuentas", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/cuentas/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Deactivate(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		deactivateFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return &domain.Account{ID: id, Code: "1105", Active: false}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/cuentas/acc-1/desactivar", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Deactivate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Active {
		t.Fatal("expected deactivated account in response")
	}
}

func TestAccountHandler_Delete_InUse(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		deleteFn: func(ctx context.Context, id string) error {
			return domain.ErrAccountInUse
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/cuentas/acc-1", nil), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountHandler_List(t *testing.T) {
	var captured usecase.ListAccountsInput
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
			captured = input
			return []*domain.Account{{ID: "acc-1", Code: "1105"}}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/cuentas?limit=5&offset=10", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Limit != 5 || captured.Offset != 10 {
		t.Fatalf("pagination lost: %+v", captured)
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 || len(resp.Accounts) != 1 {
		t.Fatalf("unexpected list response: %+v", resp)
	}
}

func TestAccountHandler_Search(t *testing.T) {
	var searched string
	var activeOnly bool
	handler := NewAccountHandler(&accountServiceStub{
		searchFn: func(ctx context.Context, name string, active bool) ([]*domain.Account, error) {
			searched, activeOnly = name, active
			return []*domain.Account{{ID: "acc-1", Code: "1105"}}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Search(rec, httptest.NewRequest(http.MethodGet, "/cuentas/search?nombre=caja&activas=true", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if searched != "caja" || !activeOnly {
		t.Fatalf("search parameters lost: name=%q activeOnly=%v", searched, activeOnly)
	}

	rec = httptest.NewRecorder()
	handler.Search(rec, httptest.NewRequest(http.MethodGet, "/cuentas/search", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a search term, got %d", rec.Code)
	}
}

func TestAccountHandler_ListByType(t *testing.T) {
	var byType string
	handler := NewAccountHandler(&accountServiceStub{
		listByTypeFn: func(ctx context.Context, accountType string) ([]*domain.Account, error) {
			byType = accountType
			return []*domain.Account{{ID: "acc-1", Code: "1105", Type: domain.AccountTypeAsset}}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/cuentas/tipo/ASSET", nil), "tipo", "ASSET")
	rec := httptest.NewRecorder()
	handler.ListByType(rec, req)

	if rec.Code != http.StatusOK || byType != "ASSET" {
		t.Fatalf("expected list by type ASSET, status=%d type=%q", rec.Code, byType)
	}
}
