package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionPinSet          AuditAction = "PIN_SET"
	AuditActionPinReset        AuditAction = "PIN_RESET"
	AuditActionPinVerifyOK     AuditAction = "PIN_VERIFY_OK"
	AuditActionPinVerifyFailed AuditAction = "PIN_VERIFY_FAILED"
	AuditActionBalanceOverride AuditAction = "BALANCE_OVERRIDE"
)

// AuditLog records a single audited action. PIN verification attempts and
// administrator interventions land here; they are not ledger entries.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	UserID       *uuid.UUID  `json:"user_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time   `json:"created_at"`
}
