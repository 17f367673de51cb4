package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contabilidad/ledger/internal/domain"
	"github.com/contabilidad/ledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Code                 string `json:"code"`
	Name                 string `json:"name"`
	Type                 string `json:"type"`
	AllowNegativeBalance bool   `json:"allowNegativeBalance"`
	Active               *bool  `json:"active,omitempty"`
}

// ToUseCaseInput converts to use case input. Accounts are active
// unless the request says otherwise.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	active := true
	if r.Active != nil {
		active = *r.Active
	}

	return usecase.CreateAccountInput{
		Code:                 r.Code,
		Name:                 r.Name,
		Type:                 r.Type,
		AllowNegativeBalance: r.AllowNegativeBalance,
		Active:               active,
	}
}

// UpdateAccountRequest represents a request to update an account.
type UpdateAccountRequest struct {
	Code                 string `json:"code"`
	Name                 string `json:"name"`
	Type                 string `json:"type"`
	AllowNegativeBalance bool   `json:"allowNegativeBalance"`
	Active               bool   `json:"active"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateAccountRequest) ToUseCaseInput() usecase.UpdateAccountInput {
	return usecase.UpdateAccountInput{
		Code:                 r.Code,
		Name:                 r.Name,
		Type:                 r.Type,
		AllowNegativeBalance: r.AllowNegativeBalance,
		Active:               r.Active,
	}
}

// CounterpartyRequest represents a request to create or update a
// counterparty.
type CounterpartyRequest struct {
	Name           string `json:"name"`
	DocumentType   string `json:"documentType"`
	DocumentNumber string `json:"documentNumber"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CounterpartyRequest) ToUseCaseInput() usecase.CounterpartyInput {
	return usecase.CounterpartyInput{
		Name:           r.Name,
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
		Email:          r.Email,
		Phone:          r.Phone,
		Address:        r.Address,
	}
}

// EntryRequest represents a single entry line in a transaction
// request.
type EntryRequest struct {
	AccountID string          `json:"accountId"`
	Side      string          `json:"side"`
	Amount    decimal.Decimal `json:"amount"`
	Memo      string          `json:"memo,omitempty"`
}

// CreateTransactionRequest represents a request to create a
// transaction. Date accepts a plain date (2006-01-02) or RFC 3339.
type CreateTransactionRequest struct {
	Date           string         `json:"date"`
	Description    string         `json:"description"`
	CounterpartyID *string        `json:"counterpartyId,omitempty"`
	State          string         `json:"state,omitempty"`
	Entries        []EntryRequest `json:"entries"`
}

// ToUseCaseInput converts to use case input, parsing the date, the
// optional initial state, and every entry side.
func (r *CreateTransactionRequest) ToUseCaseInput() (usecase.CreateTransactionInput, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return usecase.CreateTransactionInput{}, err
	}

	var state domain.TransactionState
	if r.State != "" {
		state, err = domain.ParseTransactionState(r.State)
		if err != nil {
			return usecase.CreateTransactionInput{}, err
		}
	}

	entries, err := toEntryInputs(r.Entries)
	if err != nil {
		return usecase.CreateTransactionInput{}, err
	}

	return usecase.CreateTransactionInput{
		Date:           date,
		Description:    r.Description,
		CounterpartyID: r.CounterpartyID,
		State:          state,
		Entries:        entries,
	}, nil
}

// UpdateTransactionRequest represents a request to edit a transaction.
// State is not part of an edit; lifecycle changes go through the
// state endpoints.
type UpdateTransactionRequest struct {
	Date           string         `json:"date"`
	Description    string         `json:"description"`
	CounterpartyID *string        `json:"counterpartyId,omitempty"`
	Entries        []EntryRequest `json:"entries"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateTransactionRequest) ToUseCaseInput() (usecase.UpdateTransactionInput, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return usecase.UpdateTransactionInput{}, err
	}

	entries, err := toEntryInputs(r.Entries)
	if err != nil {
		return usecase.UpdateTransactionInput{}, err
	}

	return usecase.UpdateTransactionInput{
		Date:           date,
		Description:    r.Description,
		CounterpartyID: r.CounterpartyID,
		Entries:        entries,
	}, nil
}

func toEntryInputs(entries []EntryRequest) ([]usecase.EntryInput, error) {
	result := make([]usecase.EntryInput, len(entries))
	for i, e := range entries {
		side, err := domain.ParseSide(e.Side)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		result[i] = usecase.EntryInput{
			AccountID: e.AccountID,
			Side:      side,
			Amount:    e.Amount,
			Memo:      e.Memo,
		}
	}

	return result, nil
}

// ParseDate parses a transaction date, accepting a plain date or a
// full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}

	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, nil
	}

	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrValidation, s)
	}

	return d, nil
}

// ChangeStateRequest names the target lifecycle state for a
// transaction.
type ChangeStateRequest struct {
	State string `json:"state"`
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
