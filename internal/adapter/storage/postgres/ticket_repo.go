package postgres

import (
	"context"
	"fmt"

	"empower-pay/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const ticketColumns = `id, business_phone, business_name, owner_name, issue, resolved, reported_at`

// TicketRepo implements ports.TicketRepository.
type TicketRepo struct {
	pool Pool
}

// NewTicketRepo creates a new TicketRepo.
func NewTicketRepo(pool Pool) *TicketRepo {
	return &TicketRepo{pool: pool}
}

func (r *TicketRepo) Create(ctx context.Context, t *domain.SupportTicket) error {
	query := `INSERT INTO support_tickets (` + ticketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.BusinessPhone, t.BusinessName, t.OwnerName, t.Issue, t.Resolved, t.ReportedAt,
	)
	if err != nil {
		return fmt.Errorf("insert support ticket: %w", err)
	}
	return nil
}

// ListUnresolved fetches open tickets, newest-first.
func (r *TicketRepo) ListUnresolved(ctx context.Context) ([]domain.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets
		WHERE resolved = FALSE ORDER BY reported_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unresolved tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.SupportTicket
	for rows.Next() {
		t := domain.SupportTicket{}
		err := rows.Scan(&t.ID, &t.BusinessPhone, &t.BusinessName, &t.OwnerName, &t.Issue, &t.Resolved, &t.ReportedAt)
		if err != nil {
			return nil, fmt.Errorf("scan ticket row: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket rows: %w", err)
	}
	return tickets, nil
}

// Resolve marks a ticket resolved. Returns false if it does not exist.
func (r *TicketRepo) Resolve(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE support_tickets SET resolved = TRUE WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("resolve ticket: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes a ticket. Returns false if it does not exist.
func (r *TicketRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM support_tickets WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete ticket: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteByPhone removes all of a merchant's tickets inside a cascade
// transaction.
func (r *TicketRepo) DeleteByPhone(ctx context.Context, tx pgx.Tx, businessPhone string) error {
	_, err := tx.Exec(ctx, `DELETE FROM support_tickets WHERE business_phone = $1`, businessPhone)
	if err != nil {
		return fmt.Errorf("delete merchant tickets: %w", err)
	}
	return nil
}
