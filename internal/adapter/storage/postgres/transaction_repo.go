package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"empower-pay/internal/core/domain"
	"empower-pay/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, business_phone, business_name, customer_name, customer_number,
	network, amount, commission, net_to_merchant, status, dispute_flag, resolved, notes, created_at, updated_at`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction within a database transaction. Returns
// domain.ErrDuplicateKey on a transaction-ID collision so the caller can
// retry with a fresh ID.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := tx.Exec(ctx, query,
		t.TransactionID, t.BusinessPhone, t.BusinessName, t.CustomerName, t.CustomerNumber,
		t.Network, t.Amount, t.Commission, t.NetToMerchant, t.Status,
		t.DisputeFlag, t.Resolved, t.Notes, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert transaction: %w", domain.ErrDuplicateKey)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by its human-readable ID.
func (r *TransactionRepo) GetByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`

	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, transactionID).Scan(
		&t.TransactionID, &t.BusinessPhone, &t.BusinessName, &t.CustomerName, &t.CustomerNumber,
		&t.Network, &t.Amount, &t.Commission, &t.NetToMerchant, &t.Status,
		&t.DisputeFlag, &t.Resolved, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListByPhone fetches one merchant's transactions, newest-first.
func (r *TransactionRepo) ListByPhone(ctx context.Context, businessPhone string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE business_phone = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, businessPhone)
	if err != nil {
		return nil, fmt.Errorf("list merchant transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListAll fetches every transaction, newest-first.
func (r *TransactionRepo) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// SetDispute flags a transaction as disputed, overwriting notes. Returns
// false if the transaction does not exist.
func (r *TransactionRepo) SetDispute(ctx context.Context, transactionID, notes string, at time.Time) (bool, error) {
	query := `UPDATE transactions
		SET dispute_flag = TRUE, resolved = FALSE, notes = $1, updated_at = $2
		WHERE transaction_id = $3`

	tag, err := r.pool.Exec(ctx, query, notes, at, transactionID)
	if err != nil {
		return false, fmt.Errorf("flag dispute: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ResolveDispute marks a disputed transaction as resolved.
func (r *TransactionRepo) ResolveDispute(ctx context.Context, transactionID string, at time.Time) (bool, error) {
	query := `UPDATE transactions SET resolved = TRUE, updated_at = $1 WHERE transaction_id = $2`

	tag, err := r.pool.Exec(ctx, query, at, transactionID)
	if err != nil {
		return false, fmt.Errorf("resolve dispute: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes a single transaction inside a database transaction.
func (r *TransactionRepo) Delete(ctx context.Context, tx pgx.Tx, transactionID string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction not found: %s", transactionID)
	}
	return nil
}

// DeleteByPhone removes all of a merchant's transactions inside a cascade
// transaction.
func (r *TransactionRepo) DeleteByPhone(ctx context.Context, tx pgx.Tx, businessPhone string) error {
	_, err := tx.Exec(ctx, `DELETE FROM transactions WHERE business_phone = $1`, businessPhone)
	if err != nil {
		return fmt.Errorf("delete merchant transactions: %w", err)
	}
	return nil
}

// GlobalStats sums count, volume, and commission over the whole ledger.
func (r *TransactionRepo) GlobalStats(ctx context.Context) (*ports.GlobalStats, error) {
	query := `SELECT
		COUNT(*),
		COALESCE(SUM(amount), 0),
		COALESCE(SUM(commission), 0)
		FROM transactions`

	stats := &ports.GlobalStats{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalTransactions, &stats.TotalVolume, &stats.TotalCommission,
	)
	if err != nil {
		return nil, fmt.Errorf("global stats: %w", err)
	}
	return stats, nil
}

// AggregateByPhone recomputes count and volume for one merchant from the
// ledger, for verification against the cached counters.
func (r *TransactionRepo) AggregateByPhone(ctx context.Context, businessPhone string) (int64, decimal.Decimal, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM transactions WHERE business_phone = $1`

	var count int64
	var volume decimal.Decimal
	err := r.pool.QueryRow(ctx, query, businessPhone).Scan(&count, &volume)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("aggregate by phone: %w", err)
	}
	return count, volume, nil
}

// scanTransactions drains rows into a slice.
func scanTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.TransactionID, &t.BusinessPhone, &t.BusinessName, &t.CustomerName, &t.CustomerNumber,
			&t.Network, &t.Amount, &t.Commission, &t.NetToMerchant, &t.Status,
			&t.DisputeFlag, &t.Resolved, &t.Notes, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}
