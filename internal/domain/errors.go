package domain

import "errors"

var (
	// Not-found errors
	ErrAccountNotFound      = errors.New("account not found")
	ErrCounterpartyNotFound = errors.New("counterparty not found")
	ErrTransactionNotFound  = errors.New("transaction not found")

	// Registry errors
	ErrDuplicateAccountCode    = errors.New("account code already exists")
	ErrDuplicateDocument       = errors.New("document number already exists")
	ErrCounterpartyInUse       = errors.New("counterparty has transactions and cannot be deleted")
	ErrAccountInUse            = errors.New("account has entries and cannot be deleted")
	ErrInvalidAccountType      = errors.New("invalid account type")
	ErrInvalidDocumentType     = errors.New("invalid document type")
	ErrInvalidTransactionState = errors.New("invalid transaction state")

	// Lifecycle errors
	ErrIllegalTransition = errors.New("illegal state transition")

	// ErrValidation marks field-level input errors. Wrap it so callers
	// can map the whole family with errors.Is.
	ErrValidation = errors.New("validation failed")
)
