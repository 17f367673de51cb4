package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contabilidad/ledger/internal/domain"
	"github.com/contabilidad/ledger/internal/infrastructure/logging"
)

// CounterpartyUseCase handles counterparty business logic.
type CounterpartyUseCase struct {
	counterpartyRepo CounterpartyRepository
	transactionRepo  TransactionRepository
	auditRepo        AuditRepository
	idGen            IDGenerator
}

// NewCounterpartyUseCase creates a new CounterpartyUseCase.
func NewCounterpartyUseCase(
	counterpartyRepo CounterpartyRepository,
	transactionRepo TransactionRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
) *CounterpartyUseCase {
	return &CounterpartyUseCase{
		counterpartyRepo: counterpartyRepo,
		transactionRepo:  transactionRepo,
		auditRepo:        auditRepo,
		idGen:            idGen,
	}
}

// CounterpartyInput represents input for creating or updating a counterparty.
type CounterpartyInput struct {
	Name           string
	DocumentType   string
	DocumentNumber string
	Email          string
	Phone          string
	Address        string
}

func (in CounterpartyInput) validate() error {
	if in.Name == "" || in.DocumentNumber == "" {
		return fmt.Errorf("%w: name and document number are required", domain.ErrValidation)
	}

	if err := domain.ValidateDocumentType(in.DocumentType); err != nil {
		return err
	}

	return domain.ValidateEmail(in.Email)
}

// CreateCounterparty creates a counterparty with a unique document number.
func (uc *CounterpartyUseCase) CreateCounterparty(ctx context.Context, input CounterpartyInput) (*domain.Counterparty, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	existing, err := uc.counterpartyRepo.GetByDocument(ctx, input.DocumentNumber)
	if err != nil && !errors.Is(err, domain.ErrCounterpartyNotFound) {
		return nil, err
	}

	if existing != nil {
		return nil, domain.ErrDuplicateDocument
	}

	now := time.Now().UTC()

	counterparty := &domain.Counterparty{
		ID:             uc.idGen.Generate(),
		Name:           input.Name,
		DocumentType:   input.DocumentType,
		DocumentNumber: input.DocumentNumber,
		Email:          input.Email,
		Phone:          input.Phone,
		Address:        input.Address,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.counterpartyRepo.Create(ctx, counterparty); err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionCounterpartyCreate, counterparty.ID, nil, counterparty)

	return counterparty, nil
}

// UpdateCounterparty updates a counterparty, keeping the document
// number unique across the registry.
func (uc *CounterpartyUseCase) UpdateCounterparty(ctx context.Context, id string, input CounterpartyInput) (*domain.Counterparty, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	counterparty, err := uc.counterpartyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.DocumentNumber != counterparty.DocumentNumber {
		existing, err := uc.counterpartyRepo.GetByDocument(ctx, input.DocumentNumber)
		if err != nil && !errors.Is(err, domain.ErrCounterpartyNotFound) {
			return nil, err
		}

		if existing != nil {
			return nil, domain.ErrDuplicateDocument
		}
	}

	before := *counterparty

	counterparty.Name = input.Name
	counterparty.DocumentType = input.DocumentType
	counterparty.DocumentNumber = input.DocumentNumber
	counterparty.Email = input.Email
	counterparty.Phone = input.Phone
	counterparty.Address = input.Address
	counterparty.UpdatedAt = time.Now().UTC()

	if err := uc.counterpartyRepo.Update(ctx, counterparty); err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionCounterpartyUpdate, id, &before, counterparty)

	return counterparty, nil
}

// DeleteCounterparty removes a counterparty that no transaction
// references.
func (uc *CounterpartyUseCase) DeleteCounterparty(ctx context.Context, id string) error {
	counterparty, err := uc.counterpartyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := uc.transactionRepo.ExistsByCounterparty(ctx, id)
	if err != nil {
		return err
	}

	if inUse {
		return domain.ErrCounterpartyInUse
	}

	if err := uc.counterpartyRepo.Delete(ctx, id); err != nil {
		return err
	}

	uc.audit(ctx, domain.AuditActionCounterpartyDelete, id, counterparty, nil)

	return nil
}

// GetCounterparty retrieves a counterparty by ID.
func (uc *CounterpartyUseCase) GetCounterparty(ctx context.Context, id string) (*domain.Counterparty, error) {
	return uc.counterpartyRepo.GetByID(ctx, id)
}

// ListCounterpartiesInput represents input for listing counterparties.
type ListCounterpartiesInput struct {
	Limit  int
	Offset int
}

// ListCounterparties lists counterparties with pagination.
func (uc *CounterpartyUseCase) ListCounterparties(ctx context.Context, input ListCounterpartiesInput) ([]*domain.Counterparty, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.counterpartyRepo.List(ctx, input.Limit, input.Offset)
}

// SearchCounterparties searches counterparties by name, email, or
// document number.
func (uc *CounterpartyUseCase) SearchCounterparties(ctx context.Context, query string) ([]*domain.Counterparty, error) {
	return uc.counterpartyRepo.Search(ctx, query)
}

// CountTransactions counts transactions referencing a counterparty.
func (uc *CounterpartyUseCase) CountTransactions(ctx context.Context, counterpartyID string) (int64, error) {
	if _, err := uc.counterpartyRepo.GetByID(ctx, counterpartyID); err != nil {
		return 0, err
	}

	return uc.transactionRepo.Count(ctx, TransactionFilter{CounterpartyID: &counterpartyID})
}

func (uc *CounterpartyUseCase) audit(ctx context.Context, action domain.AuditAction, resourceID string, before, after any) {
	if uc.auditRepo == nil {
		return
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		Action:       string(action),
		ResourceType: domain.ResourceTypeCounterparty,
		ResourceID:   resourceID,
		RequestID:    logging.RequestIDFromContext(ctx),
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
