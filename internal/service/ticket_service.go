package service

import (
	"context"
	"fmt"
	"time"

	"empower-pay/internal/core/domain"
	"empower-pay/internal/core/ports"
	"empower-pay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TicketServiceImpl implements ports.TicketService.
type TicketServiceImpl struct {
	ticketRepo   ports.TicketRepository
	merchantRepo ports.MerchantRepository
	log          zerolog.Logger
}

// NewTicketService creates a new TicketServiceImpl.
func NewTicketService(
	ticketRepo ports.TicketRepository,
	merchantRepo ports.MerchantRepository,
	log zerolog.Logger,
) *TicketServiceImpl {
	return &TicketServiceImpl{
		ticketRepo:   ticketRepo,
		merchantRepo: merchantRepo,
		log:          log,
	}
}

// Report files a support ticket for a merchant. The merchant's name and
// owner are snapshotted so the ticket stays meaningful even if the profile
// changes later.
func (s *TicketServiceImpl) Report(ctx context.Context, businessPhone, issue string) (*domain.SupportTicket, error) {
	if issue == "" {
		return nil, apperror.Validation("Issue description is required")
	}

	merchant, err := s.merchantRepo.GetByPhone(ctx, businessPhone)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrMerchantNotFound()
	}

	ticket := &domain.SupportTicket{
		ID:            uuid.New(),
		BusinessPhone: merchant.BusinessPhone,
		BusinessName:  merchant.BusinessName,
		OwnerName:     merchant.OwnerName,
		Issue:         issue,
		Resolved:      false,
		ReportedAt:    time.Now().UTC(),
	}

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create ticket: %w", err))
	}

	s.log.Info().
		Str("ticket_id", ticket.ID.String()).
		Str("business_phone", businessPhone).
		Msg("support ticket reported")

	return ticket, nil
}

// ListUnresolved returns all open tickets, newest-first.
func (s *TicketServiceImpl) ListUnresolved(ctx context.Context) ([]domain.SupportTicket, error) {
	tickets, err := s.ticketRepo.ListUnresolved(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list tickets: %w", err))
	}
	return tickets, nil
}

// Resolve marks a ticket as handled.
func (s *TicketServiceImpl) Resolve(ctx context.Context, id string) error {
	ok, err := s.ticketRepo.Resolve(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("resolve ticket: %w", err))
	}
	if !ok {
		return apperror.ErrTicketNotFound()
	}

	s.log.Info().Str("ticket_id", id).Msg("support ticket resolved")
	return nil
}

// Delete removes a ticket outright.
func (s *TicketServiceImpl) Delete(ctx context.Context, id string) error {
	ok, err := s.ticketRepo.Delete(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("delete ticket: %w", err))
	}
	if !ok {
		return apperror.ErrTicketNotFound()
	}

	s.log.Info().Str("ticket_id", id).Msg("support ticket deleted")
	return nil
}
