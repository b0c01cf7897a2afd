package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"empower-pay/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const merchantColumns = `id, business_phone, business_name, owner_name, owner_dob, network, category,
	location, since, contact_preference, password_hash, reset_code, reset_code_expiry,
	total_transactions, total_volume, active, created_at, last_seen`

// MerchantRepo implements ports.MerchantRepository.
type MerchantRepo struct {
	pool Pool
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

// Create inserts a new merchant. Returns domain.ErrDuplicateKey when the
// business phone is already registered.
func (r *MerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	query := `INSERT INTO merchants (` + merchantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.BusinessPhone, m.BusinessName, m.OwnerName, m.OwnerDOB,
		m.Network, m.Category, m.Location, m.Since, m.ContactPreference,
		m.PasswordHash, m.ResetCode, m.ResetCodeExpiry,
		m.TotalTransactions, m.TotalVolume, m.Active, m.CreatedAt, m.LastSeen,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert merchant: %w", domain.ErrDuplicateKey)
		}
		return fmt.Errorf("insert merchant: %w", err)
	}
	return nil
}

// GetByPhone fetches a merchant by its business phone number.
func (r *MerchantRepo) GetByPhone(ctx context.Context, businessPhone string) (*domain.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE business_phone = $1`

	m := &domain.Merchant{}
	err := r.pool.QueryRow(ctx, query, businessPhone).Scan(
		&m.ID, &m.BusinessPhone, &m.BusinessName, &m.OwnerName, &m.OwnerDOB,
		&m.Network, &m.Category, &m.Location, &m.Since, &m.ContactPreference,
		&m.PasswordHash, &m.ResetCode, &m.ResetCodeExpiry,
		&m.TotalTransactions, &m.TotalVolume, &m.Active, &m.CreatedAt, &m.LastSeen,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get merchant by phone: %w", err)
	}
	return m, nil
}

// ListActive fetches all active merchants, newest-first.
func (r *MerchantRepo) ListActive(ctx context.Context) ([]domain.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE active ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	defer rows.Close()

	var merchants []domain.Merchant
	for rows.Next() {
		m := domain.Merchant{}
		err := rows.Scan(
			&m.ID, &m.BusinessPhone, &m.BusinessName, &m.OwnerName, &m.OwnerDOB,
			&m.Network, &m.Category, &m.Location, &m.Since, &m.ContactPreference,
			&m.PasswordHash, &m.ResetCode, &m.ResetCodeExpiry,
			&m.TotalTransactions, &m.TotalVolume, &m.Active, &m.CreatedAt, &m.LastSeen,
		)
		if err != nil {
			return nil, fmt.Errorf("scan merchant row: %w", err)
		}
		merchants = append(merchants, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merchant rows: %w", err)
	}
	return merchants, nil
}

// CountActive returns the number of active merchants.
func (r *MerchantRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM merchants WHERE active`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count merchants: %w", err)
	}
	return count, nil
}

// UpdateProfile updates the mutable profile fields of a merchant.
func (r *MerchantRepo) UpdateProfile(ctx context.Context, m *domain.Merchant) error {
	query := `UPDATE merchants
		SET business_name = $1, owner_name = $2, category = $3, location = $4, contact_preference = $5
		WHERE business_phone = $6`

	tag, err := r.pool.Exec(ctx, query,
		m.BusinessName, m.OwnerName, m.Category, m.Location, m.ContactPreference, m.BusinessPhone,
	)
	if err != nil {
		return fmt.Errorf("update merchant profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("merchant not found: %s", m.BusinessPhone)
	}
	return nil
}

// SetResetCode stores a freshly issued reset code and its expiry.
func (r *MerchantRepo) SetResetCode(ctx context.Context, businessPhone, code string, expiry time.Time) error {
	query := `UPDATE merchants SET reset_code = $1, reset_code_expiry = $2 WHERE business_phone = $3`

	tag, err := r.pool.Exec(ctx, query, code, expiry, businessPhone)
	if err != nil {
		return fmt.Errorf("set reset code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("merchant not found: %s", businessPhone)
	}
	return nil
}

// ConsumeResetCode sets the new password hash and clears the reset code in a
// single guarded UPDATE, so a code can never be used twice.
func (r *MerchantRepo) ConsumeResetCode(ctx context.Context, businessPhone, code, newPasswordHash string, now time.Time) (bool, error) {
	query := `UPDATE merchants
		SET password_hash = $1, reset_code = NULL, reset_code_expiry = NULL
		WHERE business_phone = $2 AND reset_code = $3 AND reset_code_expiry > $4`

	tag, err := r.pool.Exec(ctx, query, newPasswordHash, businessPhone, code, now)
	if err != nil {
		return false, fmt.Errorf("consume reset code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ApplyLedgerEntry increments the merchant's cached aggregates with a
// relative update and stamps last-seen, inside the ledger write transaction.
func (r *MerchantRepo) ApplyLedgerEntry(ctx context.Context, tx pgx.Tx, businessPhone string, amount decimal.Decimal, at time.Time) error {
	query := `UPDATE merchants
		SET total_transactions = total_transactions + 1,
			total_volume = total_volume + $1,
			last_seen = $2
		WHERE business_phone = $3`

	tag, err := tx.Exec(ctx, query, amount, at, businessPhone)
	if err != nil {
		return fmt.Errorf("apply ledger entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("merchant not found: %s", businessPhone)
	}
	return nil
}

// ReverseLedgerEntry decrements the cached aggregates when a transaction is
// hard-deleted.
func (r *MerchantRepo) ReverseLedgerEntry(ctx context.Context, tx pgx.Tx, businessPhone string, amount decimal.Decimal) error {
	query := `UPDATE merchants
		SET total_transactions = total_transactions - 1,
			total_volume = total_volume - $1
		WHERE business_phone = $2`

	tag, err := tx.Exec(ctx, query, amount, businessPhone)
	if err != nil {
		return fmt.Errorf("reverse ledger entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("merchant not found: %s", businessPhone)
	}
	return nil
}

// Delete removes the merchant row inside a cascade transaction.
func (r *MerchantRepo) Delete(ctx context.Context, tx pgx.Tx, businessPhone string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM merchants WHERE business_phone = $1`, businessPhone)
	if err != nil {
		return fmt.Errorf("delete merchant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("merchant not found: %s", businessPhone)
	}
	return nil
}
