package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/contabilidad/ledger/internal/domain"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID                   string    `json:"id"`
	Code                 string    `json:"code"`
	Name                 string    `json:"name"`
	Type                 string    `json:"type"`
	AllowNegativeBalance bool      `json:"allowNegativeBalance"`
	Active               bool      `json:"active"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:                   a.ID,
		Code:                 a.Code,
		Name:                 a.Name,
		Type:                 string(a.Type),
		AllowNegativeBalance: a.AllowNegativeBalance,
		Active:               a.Active,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// CounterpartyResponse represents a counterparty in API responses.
type CounterpartyResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	DocumentType   string    `json:"documentType"`
	DocumentNumber string    `json:"documentNumber"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CounterpartyFromDomain converts a domain counterparty to a response.
func CounterpartyFromDomain(c *domain.Counterparty) *CounterpartyResponse {
	return &CounterpartyResponse{
		ID:             c.ID,
		Name:           c.Name,
		DocumentType:   c.DocumentType,
		DocumentNumber: c.DocumentNumber,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		Active:         c.Active,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// CounterpartiesFromDomain converts domain counterparties to responses.
func CounterpartiesFromDomain(counterparties []*domain.Counterparty) []*CounterpartyResponse {
	result := make([]*CounterpartyResponse, len(counterparties))
	for i, c := range counterparties {
		result[i] = CounterpartyFromDomain(c)
	}
	return result
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID        string          `json:"id"`
	AccountID string          `json:"accountId"`
	Side      string          `json:"side"`
	Amount    decimal.Decimal `json:"amount"`
	Memo      string          `json:"memo,omitempty"`
}

// TransactionResponse represents a transaction in API responses.
// Entries are present only when the endpoint loads them.
type TransactionResponse struct {
	ID             string           `json:"id"`
	Date           time.Time        `json:"date"`
	Description    string           `json:"description"`
	CounterpartyID *string          `json:"counterpartyId,omitempty"`
	State          string           `json:"state"`
	Entries        []*EntryResponse `json:"entries,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:             t.ID,
		Date:           t.Date,
		Description:    t.Description,
		CounterpartyID: t.CounterpartyID,
		State:          string(t.State),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}

	for _, e := range t.Entries {
		resp.Entries = append(resp.Entries, &EntryResponse{
			ID:        e.ID,
			AccountID: e.AccountID,
			Side:      string(e.Side),
			Amount:    e.Amount,
			Memo:      e.Memo,
		})
	}

	return resp
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// BalanceResponse represents a derived account balance.
type BalanceResponse struct {
	AccountID string          `json:"accountId"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Active    bool            `json:"active"`
	Balance   decimal.Decimal `json:"balance"`
}

// BalanceFromDomain converts a domain account balance to a response.
func BalanceFromDomain(b *domain.AccountBalance) *BalanceResponse {
	return &BalanceResponse{
		AccountID: b.Account.ID,
		Code:      b.Account.Code,
		Name:      b.Account.Name,
		Type:      string(b.Account.Type),
		Active:    b.Account.Active,
		Balance:   b.Balance,
	}
}

// BalancesFromDomain converts domain account balances to responses.
func BalancesFromDomain(balances []*domain.AccountBalance) []*BalanceResponse {
	result := make([]*BalanceResponse, len(balances))
	for i, b := range balances {
		result[i] = BalanceFromDomain(b)
	}
	return result
}

// BalanceValueResponse represents a single balance value, optionally
// cut off at a date.
type BalanceValueResponse struct {
	AccountID string          `json:"accountId"`
	Balance   decimal.Decimal `json:"balance"`
	AsOf      *time.Time      `json:"asOf,omitempty"`
}

// AccountCheckResponse answers a per-account policy question.
type AccountCheckResponse struct {
	AccountID            string `json:"accountId"`
	AllowNegativeBalance *bool  `json:"allowNegativeBalance,omitempty"`
	Active               *bool  `json:"active,omitempty"`
}

// ListAccountsResponse represents a paginated list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// ListCounterpartiesResponse represents a paginated list of
// counterparties.
type ListCounterpartiesResponse struct {
	Counterparties []*CounterpartyResponse `json:"counterparties"`
	Total          int64                   `json:"total"`
}

// ListTransactionsResponse represents a filtered page of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// ListBalancesResponse represents the full balance report.
type ListBalancesResponse struct {
	Balances []*BalanceResponse `json:"balances"`
	Total    int64              `json:"total"`
}

// CountResponse represents a bare count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// AuditLogResponse represents an audit trail entry.
type AuditLogResponse struct {
	ID           string      `json:"id"`
	Action       string      `json:"action"`
	ResourceType string      `json:"resourceType"`
	ResourceID   string      `json:"resourceId"`
	RequestID    string      `json:"requestId,omitempty"`
	BeforeState  domain.JSON `json:"beforeState,omitempty"`
	AfterState   domain.JSON `json:"afterState,omitempty"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// AuditLogFromDomain converts a domain audit log to a response DTO.
func AuditLogFromDomain(log *domain.AuditLog) *AuditLogResponse {
	return &AuditLogResponse{
		ID:           log.ID,
		Action:       log.Action,
		ResourceType: log.ResourceType,
		ResourceID:   log.ResourceID,
		RequestID:    log.RequestID,
		BeforeState:  log.BeforeState,
		AfterState:   log.AfterState,
		Status:       log.Status,
		ErrorMessage: log.ErrorMessage,
		CreatedAt:    log.CreatedAt,
	}
}

// AuditLogsFromDomain converts a slice of domain audit logs.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	out := make([]*AuditLogResponse, 0, len(logs))
	for _, log := range logs {
		out = append(out, AuditLogFromDomain(log))
	}

	return out
}

// ListAuditLogsResponse represents an audit trail listing.
type ListAuditLogsResponse struct {
	Logs  []*AuditLogResponse `json:"logs"`
	Total int64               `json:"total"`
}

// ErrorResponse represents an error response. Violations is set only
// for rejected transaction submissions.
type ErrorResponse struct {
	Error      string             `json:"error"`
	Message    string             `json:"message,omitempty"`
	Violations []domain.Violation `json:"violations,omitempty"`
}
