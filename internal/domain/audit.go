package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records a state-changing operation for traceability.
type AuditLog struct {
	ID           string
	Action       string
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionAccountCreate     AuditAction = "account.create"
	AuditActionAccountUpdate     AuditAction = "account.update"
	AuditActionAccountActivate   AuditAction = "account.activate"
	AuditActionAccountDeactivate AuditAction = "account.deactivate"

	AuditActionTransactionCreate     AuditAction = "transaction.create"
	AuditActionTransactionUpdate     AuditAction = "transaction.update"
	AuditActionTransactionVoid       AuditAction = "transaction.void"
	AuditActionTransactionReactivate AuditAction = "transaction.reactivate"
	AuditActionTransactionActivate   AuditAction = "transaction.activate"

	AuditActionCounterpartyCreate AuditAction = "counterparty.create"
	AuditActionCounterpartyUpdate AuditAction = "counterparty.update"
	AuditActionCounterpartyDelete AuditAction = "counterparty.delete"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// Resource types for audit logs.
const (
	ResourceTypeAccount      = "account"
	ResourceTypeCounterparty = "counterparty"
	ResourceTypeTransaction  = "transaction"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
