package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionRegister          AuditAction = "REGISTER"
	AuditActionLogin             AuditAction = "LOGIN"
	AuditActionPayment           AuditAction = "PAYMENT"
	AuditActionDisputeFlag       AuditAction = "DISPUTE_FLAG"
	AuditActionDisputeResolve    AuditAction = "DISPUTE_RESOLVE"
	AuditActionResetCodeIssue    AuditAction = "RESET_CODE_ISSUE"
	AuditActionResetCodeConsume  AuditAction = "RESET_CODE_CONSUME"
	AuditActionProfileUpdate     AuditAction = "PROFILE_UPDATE"
	AuditActionTicketReport      AuditAction = "TICKET_REPORT"
	AuditActionMerchantDelete    AuditAction = "MERCHANT_DELETE"
	AuditActionTransactionDelete AuditAction = "TRANSACTION_DELETE"
	AuditActionTicketDelete      AuditAction = "TICKET_DELETE"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID            uuid.UUID   `json:"id"`
	BusinessPhone string      `json:"business_phone,omitempty"`
	Action        AuditAction `json:"action"`
	ResourceType  string      `json:"resource_type"`
	ResourceID    string      `json:"resource_id,omitempty"`
	Details       string      `json:"details,omitempty"` // JSON string
	IPAddress     string      `json:"ip_address"`
	CreatedAt     time.Time   `json:"created_at"`
}
