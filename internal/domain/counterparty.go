package domain

import (
	"errors"
	"regexp"
	"time"
)

// Valid document types for counterparties (Colombian identifiers).
var validDocumentTypes = map[string]bool{
	"CC": true, "CE": true, "NIT": true, "TI": true,
	"PP": true, "RC": true, "DE": true, "PA": true,
}

// ValidateDocumentType validates a counterparty document type.
func ValidateDocumentType(docType string) error {
	if !validDocumentTypes[docType] {
		return ErrInvalidDocumentType
	}

	return nil
}

var (
	ErrInvalidEmail = errors.New("invalid email format")

	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidateEmail validates email format. Empty emails are allowed; the
// field is optional on a counterparty.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// Counterparty represents a party ("tercero") a transaction may
// optionally reference. Its lifecycle is independent of transactions.
type Counterparty struct {
	ID             string
	Name           string
	DocumentType   string
	DocumentNumber string
	Email          string
	Phone          string
	Address        string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
