package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"empower-pay/internal/core/domain"
	"empower-pay/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory Merchant Repo ---

type inMemoryMerchantRepo struct {
	mu        sync.RWMutex
	merchants map[string]*domain.Merchant // keyed by business phone
}

func newInMemoryMerchantRepo() *inMemoryMerchantRepo {
	return &inMemoryMerchantRepo{merchants: make(map[string]*domain.Merchant)}
}

func (r *inMemoryMerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.merchants[m.BusinessPhone]; ok {
		return domain.ErrDuplicateKey
	}
	cp := *m
	r.merchants[m.BusinessPhone] = &cp
	return nil
}

func (r *inMemoryMerchantRepo) GetByPhone(ctx context.Context, businessPhone string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.merchants[businessPhone]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *inMemoryMerchantRepo) ListActive(ctx context.Context) ([]domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Merchant
	for _, m := range r.merchants {
		if m.Active {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BusinessPhone < out[j].BusinessPhone })
	return out, nil
}

func (r *inMemoryMerchantRepo) CountActive(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, m := range r.merchants {
		if m.Active {
			n++
		}
	}
	return n, nil
}

func (r *inMemoryMerchantRepo) UpdateProfile(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.merchants[m.BusinessPhone]
	if !ok {
		return fmt.Errorf("merchant not found")
	}
	existing.BusinessName = m.BusinessName
	existing.OwnerName = m.OwnerName
	existing.Category = m.Category
	existing.Location = m.Location
	existing.ContactPreference = m.ContactPreference
	existing.LastSeen = m.LastSeen
	return nil
}

func (r *inMemoryMerchantRepo) SetResetCode(ctx context.Context, businessPhone, code string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[businessPhone]
	if !ok {
		return fmt.Errorf("merchant not found")
	}
	m.ResetCode = &code
	m.ResetCodeExpiry = &expiry
	return nil
}

func (r *inMemoryMerchantRepo) ConsumeResetCode(ctx context.Context, businessPhone, code, newPasswordHash string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[businessPhone]
	if !ok || !m.HasValidResetCode(code, now) {
		return false, nil
	}
	m.PasswordHash = newPasswordHash
	m.ResetCode = nil
	m.ResetCodeExpiry = nil
	return true, nil
}

func (r *inMemoryMerchantRepo) ApplyLedgerEntry(ctx context.Context, tx pgx.Tx, businessPhone string, amount decimal.Decimal, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[businessPhone]
	if !ok {
		return fmt.Errorf("merchant not found")
	}
	m.TotalTransactions++
	m.TotalVolume = m.TotalVolume.Add(amount)
	m.LastSeen = at
	return nil
}

func (r *inMemoryMerchantRepo) ReverseLedgerEntry(ctx context.Context, tx pgx.Tx, businessPhone string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.merchants[businessPhone]
	if !ok {
		return fmt.Errorf("merchant not found")
	}
	m.TotalTransactions--
	m.TotalVolume = m.TotalVolume.Sub(amount)
	return nil
}

func (r *inMemoryMerchantRepo) Delete(ctx context.Context, tx pgx.Tx, businessPhone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.merchants[businessPhone]; !ok {
		return fmt.Errorf("merchant not found")
	}
	delete(r.merchants, businessPhone)
	return nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction // keyed by transaction ID
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[string]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[t.TransactionID]; ok {
		return domain.ErrDuplicateKey
	}
	cp := *t
	r.transactions[t.TransactionID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[transactionID]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) ListByPhone(ctx context.Context, businessPhone string) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Transaction
	for _, t := range r.transactions {
		if t.BusinessPhone == businessPhone {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *inMemoryTransactionRepo) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Transaction
	for _, t := range r.transactions {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *inMemoryTransactionRepo) SetDispute(ctx context.Context, transactionID, notes string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[transactionID]
	if !ok {
		return false, nil
	}
	t.DisputeFlag = true
	t.Resolved = false
	t.Notes = notes
	t.UpdatedAt = at
	return true, nil
}

func (r *inMemoryTransactionRepo) ResolveDispute(ctx context.Context, transactionID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[transactionID]
	if !ok {
		return false, nil
	}
	t.Resolved = true
	t.UpdatedAt = at
	return true, nil
}

func (r *inMemoryTransactionRepo) Delete(ctx context.Context, tx pgx.Tx, transactionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[transactionID]; !ok {
		return fmt.Errorf("transaction not found")
	}
	delete(r.transactions, transactionID)
	return nil
}

func (r *inMemoryTransactionRepo) DeleteByPhone(ctx context.Context, tx pgx.Tx, businessPhone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.transactions {
		if t.BusinessPhone == businessPhone {
			delete(r.transactions, id)
		}
	}
	return nil
}

func (r *inMemoryTransactionRepo) GlobalStats(ctx context.Context) (*ports.GlobalStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := &ports.GlobalStats{
		TotalVolume:     decimal.Zero,
		TotalCommission: decimal.Zero,
	}
	for _, t := range r.transactions {
		stats.TotalTransactions++
		stats.TotalVolume = stats.TotalVolume.Add(t.Amount)
		stats.TotalCommission = stats.TotalCommission.Add(t.Commission)
	}
	return stats, nil
}

func (r *inMemoryTransactionRepo) AggregateByPhone(ctx context.Context, businessPhone string) (int64, decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	volume := decimal.Zero
	for _, t := range r.transactions {
		if t.BusinessPhone == businessPhone {
			count++
			volume = volume.Add(t.Amount)
		}
	}
	return count, volume, nil
}

// --- In-Memory Ticket Repo ---

type inMemoryTicketRepo struct {
	mu      sync.RWMutex
	tickets map[string]*domain.SupportTicket // keyed by ticket ID string
}

func newInMemoryTicketRepo() *inMemoryTicketRepo {
	return &inMemoryTicketRepo{tickets: make(map[string]*domain.SupportTicket)}
}

func (r *inMemoryTicketRepo) Create(ctx context.Context, t *domain.SupportTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tickets[t.ID.String()] = &cp
	return nil
}

func (r *inMemoryTicketRepo) ListUnresolved(ctx context.Context) ([]domain.SupportTicket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.SupportTicket
	for _, t := range r.tickets {
		if !t.Resolved {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportedAt.After(out[j].ReportedAt) })
	return out, nil
}

func (r *inMemoryTicketRepo) Resolve(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return false, nil
	}
	t.Resolved = true
	return true, nil
}

func (r *inMemoryTicketRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return false, nil
	}
	delete(r.tickets, id)
	return true, nil
}

func (r *inMemoryTicketRepo) DeleteByPhone(ctx context.Context, tx pgx.Tx, businessPhone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tickets {
		if t.BusinessPhone == businessPhone {
			delete(r.tickets, id)
		}
	}
	return nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
