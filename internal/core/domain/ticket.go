package domain

import (
	"time"

	"github.com/google/uuid"
)

// SupportTicket is one merchant-reported issue awaiting admin resolution.
// BusinessName and OwnerName are write-time snapshots for display.
type SupportTicket struct {
	ID            uuid.UUID `json:"id"`
	BusinessPhone string    `json:"business_phone"`
	BusinessName  string    `json:"business_name"`
	OwnerName     string    `json:"owner_name"`
	Issue         string    `json:"issue"`
	Resolved      bool      `json:"resolved"`
	ReportedAt    time.Time `json:"reported_at"`
}
