package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Network identifies the mobile-money network a merchant or customer uses.
type Network string

const (
	NetworkMTN        Network = "MTN"
	NetworkTelecel    Network = "Telecel"
	NetworkAirtelTogo Network = "AirtelTogo"
)

// Valid reports whether the network is one of the supported operators.
func (n Network) Valid() bool {
	switch n {
	case NetworkMTN, NetworkTelecel, NetworkAirtelTogo:
		return true
	}
	return false
}

// Merchant represents a registered business accepting payments.
//
// TotalTransactions and TotalVolume are cached aggregates derived from the
// transaction ledger; the ledger is the source of truth and every ledger
// write must keep the two in lockstep.
type Merchant struct {
	ID                uuid.UUID       `json:"id"`
	BusinessPhone     string          `json:"business_phone"`
	BusinessName      string          `json:"business_name"`
	OwnerName         string          `json:"owner_name"`
	OwnerDOB          time.Time       `json:"owner_dob"`
	Network           Network         `json:"network"`
	Category          string          `json:"category"`
	Location          string          `json:"location"`
	Since             int             `json:"since"`
	ContactPreference string          `json:"contact_preference"`
	PasswordHash      string          `json:"-"` // Never expose
	ResetCode         *string         `json:"-"`
	ResetCodeExpiry   *time.Time      `json:"-"`
	TotalTransactions int64           `json:"total_transactions"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
	LastSeen          time.Time       `json:"last_seen"`
}

// HasValidResetCode reports whether the merchant holds an unexpired reset
// code matching the supplied value at the given instant.
func (m *Merchant) HasValidResetCode(code string, now time.Time) bool {
	if m.ResetCode == nil || m.ResetCodeExpiry == nil {
		return false
	}
	return *m.ResetCode == code && now.Before(*m.ResetCodeExpiry)
}
