package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/contabilidad/ledger/internal/adapter/http/dto"
)

func TestAccountLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutilDB(t)
	testDB.TruncateAll(ctx)

	server := newTestServer(t, testDB)

	// Create
	var created dto.AccountResponse
	status := doJSON(t, http.MethodPost, server.URL+"/api/v1/cuentas/", map[string]any{
		"code": "1105",
		"name": "Caja General",
		"type": "ASSET",
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if created.ID == "" || created.Code != "1105" || !created.Active {
		t.Fatalf("unexpected created account: %+v", created)
	}

	// Duplicate code conflicts
	status = doJSON(t, http.MethodPost, server.URL+"/api/v1/cuentas/", map[string]any{
		"code": "1105",
		"name": "Caja Duplicada",
		"type": "ASSET",
	}, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate code, got %d", status)
	}

	// Deactivate
	var deactivated dto.AccountResponse
	status = doJSON(t, http.MethodPut, server.URL+"/api/v1/cuentas/"+created.ID+"/desactivar", nil, &deactivated)
	if status != http.StatusOK || deactivated.Active {
		t.Fatalf("expected deactivated account, got status %d account %+v", status, deactivated)
	}

	// Reactivate
	var activated dto.AccountResponse
	status = doJSON(t, http.MethodPut, server.URL+"/api/v1/cuentas/"+created.ID+"/activar", nil, &activated)
	if status != http.StatusOK || !activated.Active {
		t.Fatalf("expected active account, got status %d account %+v", status, activated)
	}

	// Search by name
	var results dto.ListAccountsResponse
	status = doJSON(t, http.MethodGet, server.URL+"/api/v1/cuentas/search?nombre=Caja", nil, &results)
	if status != http.StatusOK || len(results.Accounts) != 1 {
		t.Fatalf("expected one search result, got status %d results %+v", status, results)
	}
}

func TestAccountDeletionGuard(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutilDB(t)
	testDB.TruncateAll(ctx)

	server := newTestServer(t, testDB)

	debit := testDB.CreateTestAccount(ctx, "1105", "Caja", "ASSET", false)
	credit := testDB.CreateTestAccount(ctx, "4135", "Ingresos", "INCOME", true)

	status := doJSON(t, http.MethodPost, server.URL+"/api/v1/transacciones/", map[string]any{
		"date":        "2026-03-15",
		"description": "Venta de contado",
		"entries": []map[string]any{
			{"accountId": debit.ID, "side": "DEBE", "amount": "100.00"},
			{"accountId": credit.ID, "side": "HABER", "amount": "100.00"},
		},
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 creating transaction, got %d", status)
	}

	// An account with entries cannot be deleted.
	status = doJSON(t, http.MethodDelete, server.URL+"/api/v1/cuentas/"+debit.ID, nil, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 deleting referenced account, got %d", status)
	}
}
