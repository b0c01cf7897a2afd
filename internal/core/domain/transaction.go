package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle state of a transaction.
// Payments are recorded post-hoc, so every transaction is born completed;
// the type exists so the wire format stays stable if pending/failed states
// are ever modeled.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
)

// Transaction is one recorded payment event in the ledger.
//
// BusinessName is a snapshot taken at write time so common read paths need
// no join; later merchant profile updates do not rewrite historical rows.
type Transaction struct {
	TransactionID  string            `json:"transaction_id"`
	BusinessPhone  string            `json:"business_phone"`
	BusinessName   string            `json:"business_name"`
	CustomerName   string            `json:"customer_name"`
	CustomerNumber string            `json:"customer_number"`
	Network        Network           `json:"network"`
	Amount         decimal.Decimal   `json:"amount"`
	Commission     decimal.Decimal   `json:"commission"`
	NetToMerchant  decimal.Decimal   `json:"net_to_merchant"`
	Status         TransactionStatus `json:"status"`
	DisputeFlag    bool              `json:"dispute_flag"`
	Resolved       bool              `json:"resolved"`
	Notes          string            `json:"notes,omitempty"`
	CreatedAt      time.Time         `json:"timestamp"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// IsDisputed reports whether the transaction is contested and still open.
func (t *Transaction) IsDisputed() bool {
	return t.DisputeFlag && !t.Resolved
}
