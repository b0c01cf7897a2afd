package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"empower-pay/internal/core/domain"
	"empower-pay/internal/core/ports"
	"empower-pay/pkg/apperror"

	"github.com/rs/zerolog"
)

// statsTTL bounds staleness of the cached admin stats between ledger writes.
const statsTTL = 10 * time.Second

// ReportingServiceImpl implements ports.ReportingService.
type ReportingServiceImpl struct {
	merchantRepo ports.MerchantRepository
	txRepo       ports.TransactionRepository
	ticketRepo   ports.TicketRepository
	statsCache   ports.StatsCache
	log          zerolog.Logger
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(
	merchantRepo ports.MerchantRepository,
	txRepo ports.TransactionRepository,
	ticketRepo ports.TicketRepository,
	statsCache ports.StatsCache,
	log zerolog.Logger,
) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		merchantRepo: merchantRepo,
		txRepo:       txRepo,
		ticketRepo:   ticketRepo,
		statsCache:   statsCache,
		log:          log,
	}
}

// GetMerchantLedger returns one merchant's transactions, newest-first.
func (s *ReportingServiceImpl) GetMerchantLedger(ctx context.Context, businessPhone string) ([]domain.Transaction, error) {
	merchant, err := s.merchantRepo.GetByPhone(ctx, businessPhone)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrMerchantNotFound()
	}

	txns, err := s.txRepo.ListByPhone(ctx, businessPhone)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// GetAdminOverview assembles the admin dashboard: merchant, transaction and
// open-ticket lists narrowed by the filter, plus global stats. The stats
// always cover the entire ledger regardless of the filter.
func (s *ReportingServiceImpl) GetAdminOverview(ctx context.Context, filter ports.OverviewFilter) (*ports.AdminOverview, error) {
	merchants, err := s.merchantRepo.ListActive(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list merchants: %w", err))
	}

	txns, err := s.txRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}

	tickets, err := s.ticketRepo.ListUnresolved(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list tickets: %w", err))
	}

	stats, err := s.globalStats(ctx)
	if err != nil {
		return nil, err
	}

	return &ports.AdminOverview{
		Merchants:      filterMerchants(merchants, filter),
		Transactions:   filterTransactions(txns, filter),
		SupportTickets: tickets,
		Stats:          *stats,
	}, nil
}

// VerifyAggregates recomputes a merchant's transaction count and volume from
// the ledger and compares them with the cached counters on the merchant row.
func (s *ReportingServiceImpl) VerifyAggregates(ctx context.Context, businessPhone string) (*ports.AggregateCheck, error) {
	merchant, err := s.merchantRepo.GetByPhone(ctx, businessPhone)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrMerchantNotFound()
	}

	count, volume, err := s.txRepo.AggregateByPhone(ctx, businessPhone)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("aggregate transactions: %w", err))
	}

	check := &ports.AggregateCheck{
		BusinessPhone: businessPhone,
		CachedCount:   merchant.TotalTransactions,
		LedgerCount:   count,
		CachedVolume:  merchant.TotalVolume,
		LedgerVolume:  volume,
		Consistent:    merchant.TotalTransactions == count && merchant.TotalVolume.Equal(volume),
	}

	if !check.Consistent {
		s.log.Error().
			Str("business_phone", businessPhone).
			Int64("cached_count", check.CachedCount).
			Int64("ledger_count", check.LedgerCount).
			Str("cached_volume", check.CachedVolume.String()).
			Str("ledger_volume", check.LedgerVolume.String()).
			Msg("merchant aggregates drifted from ledger")
	}

	return check, nil
}

// globalStats returns the platform-wide totals, served from the short-TTL
// cache when available.
func (s *ReportingServiceImpl) globalStats(ctx context.Context) (*ports.GlobalStats, error) {
	if s.statsCache != nil {
		cached, err := s.statsCache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("stats cache read failed, recomputing")
		}
		if cached != nil {
			stats := &ports.GlobalStats{}
			if err := json.Unmarshal(cached, stats); err == nil {
				return stats, nil
			}
			s.log.Warn().Msg("stats cache held malformed payload, recomputing")
		}
	}

	stats, err := s.txRepo.GlobalStats(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("global stats: %w", err))
	}

	merchantCount, err := s.merchantRepo.CountActive(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count merchants: %w", err))
	}
	stats.TotalMerchants = merchantCount

	if s.statsCache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.statsCache.Set(ctx, payload, statsTTL); err != nil {
				s.log.Warn().Err(err).Msg("failed to cache stats")
			}
		}
	}

	return stats, nil
}

// filterMerchants narrows the merchant list by search text and network.
func filterMerchants(merchants []domain.Merchant, filter ports.OverviewFilter) []domain.Merchant {
	if filter.SearchText == "" && filter.Network == "" {
		return merchants
	}

	needle := strings.ToLower(filter.SearchText)
	out := make([]domain.Merchant, 0, len(merchants))
	for _, m := range merchants {
		if filter.Network != "" && m.Network != filter.Network {
			continue
		}
		if needle != "" && !containsFold(needle, m.BusinessName, m.OwnerName, m.BusinessPhone) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// filterTransactions narrows the transaction list by search text and network.
func filterTransactions(txns []domain.Transaction, filter ports.OverviewFilter) []domain.Transaction {
	if filter.SearchText == "" && filter.Network == "" {
		return txns
	}

	needle := strings.ToLower(filter.SearchText)
	out := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if filter.Network != "" && t.Network != filter.Network {
			continue
		}
		if needle != "" && !containsFold(needle, t.TransactionID, t.BusinessName, t.BusinessPhone, t.CustomerName, t.CustomerNumber) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// containsFold reports whether any field contains the lowercase needle.
func containsFold(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
