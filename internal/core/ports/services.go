package ports

import (
	"context"
	"time"

	"empower-pay/internal/core/domain"

	"github.com/shopspring/decimal"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations for merchant sessions.
type TokenService interface {
	Generate(businessPhone string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	BusinessPhone string
}

// StatsCache caches the admin global stats for a short TTL.
type StatsCache interface {
	Get(ctx context.Context) ([]byte, error) // cached stats JSON or nil
	Set(ctx context.Context, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// --- Service Ports (Business Logic) ---

// LedgerService is the single write path over the transaction ledger.
type LedgerService interface {
	RecordPayment(ctx context.Context, req PaymentRequest) (*domain.Transaction, error)
	FlagDispute(ctx context.Context, transactionID, notes string) error
	ResolveDispute(ctx context.Context, transactionID string) error
	DeleteMerchantCascade(ctx context.Context, businessPhone string) error
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// PaymentRequest holds validated input for recording a payment.
type PaymentRequest struct {
	BusinessPhone  string
	CustomerName   string
	CustomerNumber string
	Network        domain.Network
	Amount         decimal.Decimal
}

// ReportingService is the read-only view over the ledger.
type ReportingService interface {
	GetMerchantLedger(ctx context.Context, businessPhone string) ([]domain.Transaction, error)
	GetAdminOverview(ctx context.Context, filter OverviewFilter) (*AdminOverview, error)
	// VerifyAggregates recomputes one merchant's aggregates from the ledger
	// and reports whether the cached counters agree.
	VerifyAggregates(ctx context.Context, businessPhone string) (*AggregateCheck, error)
}

// OverviewFilter narrows the admin overview lists. Filtering applies to the
// result lists only; stats always reflect the entire ledger.
type OverviewFilter struct {
	SearchText string
	Network    domain.Network
}

// AdminOverview is the full admin dashboard payload.
type AdminOverview struct {
	Merchants      []domain.Merchant      `json:"merchants"`
	Transactions   []domain.Transaction   `json:"transactions"`
	SupportTickets []domain.SupportTicket `json:"support_tickets"`
	Stats          GlobalStats            `json:"stats"`
}

// AggregateCheck reports the cached vs. recomputed aggregates for a merchant.
type AggregateCheck struct {
	BusinessPhone string          `json:"business_phone"`
	CachedCount   int64           `json:"cached_count"`
	LedgerCount   int64           `json:"ledger_count"`
	CachedVolume  decimal.Decimal `json:"cached_volume"`
	LedgerVolume  decimal.Decimal `json:"ledger_volume"`
	Consistent    bool            `json:"consistent"`
}

// AuthService defines registration, login, and credential recovery.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, businessPhone, password string) (string, time.Time, error) // token, expiry, error
	GenerateResetCode(ctx context.Context, businessPhone string) (*ResetCodeResponse, error)
	ConsumeResetCode(ctx context.Context, businessPhone, code, newPassword string) error
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) error
}

// RegisterRequest holds input for merchant registration.
type RegisterRequest struct {
	BusinessPhone     string
	BusinessName      string
	OwnerName         string
	OwnerDOB          time.Time
	Network           domain.Network
	Category          string
	Location          string
	Since             int
	ContactPreference string
	Password          string
}

// RegisterResponse holds the registration result.
type RegisterResponse struct {
	MerchantID    string
	BusinessPhone string
}

// ResetCodeResponse holds a freshly issued reset code.
type ResetCodeResponse struct {
	BusinessName string
	Code         string
	ExpiresAt    time.Time
}

// UpdateProfileRequest holds the mutable profile fields. Historical
// transaction snapshots are not rewritten.
type UpdateProfileRequest struct {
	BusinessPhone     string
	BusinessName      string
	OwnerName         string
	Category          string
	Location          string
	ContactPreference string
}

// TicketService defines support ticket operations.
type TicketService interface {
	Report(ctx context.Context, businessPhone, issue string) (*domain.SupportTicket, error)
	ListUnresolved(ctx context.Context) ([]domain.SupportTicket, error)
	Resolve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// AuditService records audited actions (fire-and-forget).
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
