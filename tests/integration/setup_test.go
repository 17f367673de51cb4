package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	adaptershttp "github.com/contabilidad/ledger/internal/adapter/http"
	"github.com/contabilidad/ledger/internal/adapter/http/handler"
	"github.com/contabilidad/ledger/internal/adapter/repository/postgres"
	redisrepo "github.com/contabilidad/ledger/internal/adapter/repository/redis"
	infraredis "github.com/contabilidad/ledger/internal/infrastructure/redis"
	"github.com/contabilidad/ledger/internal/usecase"
	"github.com/contabilidad/ledger/tests/testutil"
)

func testutilDB(t *testing.T) *testutil.TestDB {
	t.Helper()

	db := testutil.NewTestDB(t)
	t.Cleanup(db.Cleanup)

	return db
}

// newTestServer wires the full HTTP stack against a real database and
// an in-process Redis.
func newTestServer(t *testing.T, testDB *testutil.TestDB) *httptest.Server {
	t.Helper()

	ctx := context.Background()
	pool := testDB.Pool

	mini := miniredis.RunT(t)
	redisClient, err := infraredis.NewClient(ctx, fmt.Sprintf("redis://%s", mini.Addr()))
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	counterpartyRepo := postgres.NewCounterpartyRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	cache := redisrepo.NewCache(redisClient)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier()

	accountUC := usecase.NewAccountUseCase(accountRepo, auditRepo, idGen)
	counterpartyUC := usecase.NewCounterpartyUseCase(counterpartyRepo, transactionRepo, auditRepo, idGen)
	transactionUC := usecase.NewTransactionUseCase(
		txManager, accountRepo, counterpartyRepo, transactionRepo,
		balanceRepo, auditRepo, cache, idGen, retrier, nil,
	)
	balanceUC := usecase.NewBalanceUseCase(accountRepo, balanceRepo, cache, nil)
	auditUC := usecase.NewAuditUseCase(auditRepo)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:      handler.NewAccountHandler(accountUC),
		CounterpartyHandler: handler.NewCounterpartyHandler(counterpartyUC),
		TransactionHandler:  handler.NewTransactionHandler(transactionUC),
		BalanceHandler:      handler.NewBalanceHandler(balanceUC),
		AuditHandler:        handler.NewAuditHandler(auditUC),
		HealthHandler:       handler.NewHealthHandler(pool, redisClient),
		Logger:              zerolog.Nop(),
		IdempotencyStore:    redisrepo.NewIdempotencyStore(redisClient),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("failed to decode response: %v", err)
		}
	}

	return resp.StatusCode
}
