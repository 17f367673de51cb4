package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/contabilidad/ledger/internal/domain"
	"github.com/contabilidad/ledger/internal/infrastructure/logging"
)

// AccountUseCase handles chart-of-accounts business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, auditRepo AuditRepository, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Code                 string
	Name                 string
	Type                 string
	AllowNegativeBalance bool
	Active               bool
}

// CreateAccount creates a new account with a unique code.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountCode(input.Code); err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	accountType, err := domain.ParseAccountType(input.Type)
	if err != nil {
		return nil, err
	}

	existing, err := uc.accountRepo.GetByCode(ctx, input.Code)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	if existing != nil {
		return nil, domain.ErrDuplicateAccountCode
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:                   uc.idGen.Generate(),
		Code:                 input.Code,
		Name:                 input.Name,
		Type:                 accountType,
		AllowNegativeBalance: input.AllowNegativeBalance,
		Active:               input.Active,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionAccountCreate, account.ID, nil, account)

	return account, nil
}

// UpdateAccountInput represents input for updating an account.
type UpdateAccountInput struct {
	Code                 string
	Name                 string
	Type                 string
	AllowNegativeBalance bool
	Active               bool
}

// UpdateAccount updates an account, keeping the code unique.
func (uc *AccountUseCase) UpdateAccount(ctx context.Context, id string, input UpdateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountCode(input.Code); err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	accountType, err := domain.ParseAccountType(input.Type)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Code != account.Code {
		existing, err := uc.accountRepo.GetByCode(ctx, input.Code)
		if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}

		if existing != nil {
			return nil, domain.ErrDuplicateAccountCode
		}
	}

	before := *account

	account.Code = input.Code
	account.Name = input.Name
	account.Type = accountType
	account.AllowNegativeBalance = input.AllowNegativeBalance
	account.Active = input.Active
	account.UpdatedAt = time.Now().UTC()

	if err := uc.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionAccountUpdate, account.ID, &before, account)

	return account, nil
}

// ActivateAccount re-enables postings to an account.
func (uc *AccountUseCase) ActivateAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.setActive(ctx, id, true, domain.AuditActionAccountActivate)
}

// DeactivateAccount blocks new postings to an account. Existing
// ACTIVE transactions that reference it are grandfathered: their
// balance contribution is untouched.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.setActive(ctx, id, false, domain.AuditActionAccountDeactivate)
}

func (uc *AccountUseCase) setActive(ctx context.Context, id string, active bool, action domain.AuditAction) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := *account

	now := time.Now().UTC()
	if err := uc.accountRepo.SetActive(ctx, id, active, now); err != nil {
		return nil, err
	}

	account.Active = active
	account.UpdatedAt = now

	uc.audit(ctx, action, id, &before, account)

	return account, nil
}

// DeleteAccount removes an account that was never posted to. Accounts
// with entries are deactivated instead, preserving referential
// integrity with historical transactions.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, id string) error {
	if _, err := uc.accountRepo.GetByID(ctx, id); err != nil {
		return err
	}

	hasEntries, err := uc.accountRepo.HasEntries(ctx, id)
	if err != nil {
		return err
	}

	if hasEntries {
		return domain.ErrAccountInUse
	}

	return uc.accountRepo.Delete(ctx, id)
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}

// ListActiveAccounts lists the accounts currently accepting postings.
func (uc *AccountUseCase) ListActiveAccounts(ctx context.Context) ([]*domain.Account, error) {
	return uc.accountRepo.ListActive(ctx)
}

// ListAccountsByType lists active accounts of a given type.
func (uc *AccountUseCase) ListAccountsByType(ctx context.Context, accountType string) ([]*domain.Account, error) {
	parsed, err := domain.ParseAccountType(accountType)
	if err != nil {
		return nil, err
	}

	return uc.accountRepo.ListByType(ctx, parsed)
}

// SearchAccounts searches accounts by name substring.
func (uc *AccountUseCase) SearchAccounts(ctx context.Context, name string, activeOnly bool) ([]*domain.Account, error) {
	return uc.accountRepo.SearchByName(ctx, name, activeOnly)
}

func (uc *AccountUseCase) audit(ctx context.Context, action domain.AuditAction, resourceID string, before, after any) {
	if uc.auditRepo == nil {
		return
	}

	// Audit failures never fail the operation.
	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		Action:       string(action),
		ResourceType: domain.ResourceTypeAccount,
		ResourceID:   resourceID,
		RequestID:    logging.RequestIDFromContext(ctx),
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
