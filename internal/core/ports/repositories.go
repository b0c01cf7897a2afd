package ports

import (
	"context"
	"time"

	"empower-pay/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MerchantRepository defines persistence operations for merchants.
// Methods accepting pgx.Tx participate in the ledger write transaction.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *domain.Merchant) error
	GetByPhone(ctx context.Context, businessPhone string) (*domain.Merchant, error)
	ListActive(ctx context.Context) ([]domain.Merchant, error)
	CountActive(ctx context.Context) (int64, error)
	UpdateProfile(ctx context.Context, merchant *domain.Merchant) error
	SetResetCode(ctx context.Context, businessPhone, code string, expiry time.Time) error
	// ConsumeResetCode atomically sets the new password hash and clears the
	// reset code, guarded by code match and unexpired expiry. Returns false
	// when the guard did not match (wrong, already-used, or expired code).
	ConsumeResetCode(ctx context.Context, businessPhone, code, newPasswordHash string, now time.Time) (bool, error)
	// ApplyLedgerEntry increments the merchant's cached aggregates inside the
	// ledger write transaction using a relative update, never read-modify-write.
	ApplyLedgerEntry(ctx context.Context, tx pgx.Tx, businessPhone string, amount decimal.Decimal, at time.Time) error
	// ReverseLedgerEntry decrements the aggregates when a transaction is
	// hard-deleted, keeping the lockstep invariant.
	ReverseLedgerEntry(ctx context.Context, tx pgx.Tx, businessPhone string, amount decimal.Decimal) error
	Delete(ctx context.Context, tx pgx.Tx, businessPhone string) error
}

// TransactionRepository defines persistence operations for the ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListByPhone(ctx context.Context, businessPhone string) ([]domain.Transaction, error)
	ListAll(ctx context.Context) ([]domain.Transaction, error)
	SetDispute(ctx context.Context, transactionID, notes string, at time.Time) (bool, error)
	ResolveDispute(ctx context.Context, transactionID string, at time.Time) (bool, error)
	Delete(ctx context.Context, tx pgx.Tx, transactionID string) error
	DeleteByPhone(ctx context.Context, tx pgx.Tx, businessPhone string) error
	// GlobalStats sums count, volume and commission over the whole
	// transaction set. This is the authoritative aggregation path,
	// independent of the cached merchant counters. TotalMerchants is left
	// for the caller to fill from MerchantRepository.CountActive.
	GlobalStats(ctx context.Context) (*GlobalStats, error)
	// AggregateByPhone recomputes count and volume for one merchant, used to
	// verify the cached aggregates.
	AggregateByPhone(ctx context.Context, businessPhone string) (int64, decimal.Decimal, error)
}

// GlobalStats holds platform-wide top-line counters for the admin dashboard.
type GlobalStats struct {
	TotalMerchants    int64           `json:"total_merchants"`
	TotalTransactions int64           `json:"total_transactions"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
	TotalCommission   decimal.Decimal `json:"total_commission"`
}

// TicketRepository defines persistence operations for support tickets.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.SupportTicket) error
	ListUnresolved(ctx context.Context) ([]domain.SupportTicket, error)
	Resolve(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByPhone(ctx context.Context, tx pgx.Tx, businessPhone string) error
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
