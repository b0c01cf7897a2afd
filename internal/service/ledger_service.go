package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"empower-pay/internal/core/domain"
	"empower-pay/internal/core/ports"
	"empower-pay/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// maxIDAttempts bounds retries when a generated transaction ID collides
// with an existing one. The ID space is small by design (keyed for humans),
// so collisions are expected under load and handled by regeneration.
const maxIDAttempts = 5

// LedgerServiceImpl implements ports.LedgerService. It is the only write
// path over the transaction ledger; every mutation that touches a
// transaction row also adjusts the merchant's cached aggregates inside the
// same database transaction.
type LedgerServiceImpl struct {
	merchantRepo ports.MerchantRepository
	txRepo       ports.TransactionRepository
	ticketRepo   ports.TicketRepository
	transactor   ports.DBTransactor
	statsCache   ports.StatsCache
	rate         decimal.Decimal
	log          zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. rate is the platform
// commission rate as a fraction (e.g. 0.01 for 1%).
func NewLedgerService(
	merchantRepo ports.MerchantRepository,
	txRepo ports.TransactionRepository,
	ticketRepo ports.TicketRepository,
	transactor ports.DBTransactor,
	statsCache ports.StatsCache,
	rate decimal.Decimal,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		merchantRepo: merchantRepo,
		txRepo:       txRepo,
		ticketRepo:   ticketRepo,
		transactor:   transactor,
		statsCache:   statsCache,
		rate:         rate,
		log:          log,
	}
}

// RecordPayment validates and records a customer payment against a
// merchant's ledger. The transaction row and the merchant's aggregate
// counters are written in one database transaction so they can never
// drift apart.
func (s *LedgerServiceImpl) RecordPayment(ctx context.Context, req ports.PaymentRequest) (*domain.Transaction, error) {
	if !req.Network.Valid() {
		return nil, apperror.ErrInvalidNetwork()
	}

	split, err := domain.SplitAmount(req.Amount, s.rate)
	if err != nil {
		return nil, apperror.ErrInvalidAmount()
	}

	merchant, err := s.merchantRepo.GetByPhone(ctx, req.BusinessPhone)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrMerchantNotFound()
	}

	// The ID space is small, so an insert can collide with an existing row.
	// Each attempt runs in a fresh database transaction because a unique
	// violation aborts the one it happened in.
	var txn *domain.Transaction
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		now := time.Now().UTC()
		candidate := &domain.Transaction{
			TransactionID:  domain.NewCode(domain.CodePrefix),
			BusinessPhone:  merchant.BusinessPhone,
			BusinessName:   merchant.BusinessName,
			CustomerName:   req.CustomerName,
			CustomerNumber: req.CustomerNumber,
			Network:        req.Network,
			Amount:         split.Amount,
			Commission:     split.Commission,
			NetToMerchant:  split.NetToMerchant,
			Status:         domain.TransactionStatusCompleted,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		err = s.recordOnce(ctx, candidate)
		if err == nil {
			txn = candidate
			break
		}
		if errors.Is(err, domain.ErrDuplicateKey) {
			s.log.Warn().
				Str("tx_id", candidate.TransactionID).
				Int("attempt", attempt).
				Msg("transaction ID collision, regenerating")
			continue
		}
		return nil, apperror.InternalError(err)
	}
	if txn == nil {
		return nil, apperror.ErrIDGenerationExhausted()
	}

	s.invalidateStats(ctx)

	s.log.Info().
		Str("tx_id", txn.TransactionID).
		Str("business_phone", txn.BusinessPhone).
		Str("amount", txn.Amount.String()).
		Str("commission", txn.Commission.String()).
		Msg("payment recorded")

	return txn, nil
}

// recordOnce inserts the transaction and applies the aggregate update in a
// single database transaction.
func (s *LedgerServiceImpl) recordOnce(ctx context.Context, txn *domain.Transaction) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return err
	}

	if err := s.merchantRepo.ApplyLedgerEntry(ctx, dbTx, txn.BusinessPhone, txn.Amount, txn.CreatedAt); err != nil {
		return fmt.Errorf("apply ledger entry: %w", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// FlagDispute marks a transaction as disputed with the given notes.
// Re-flagging an already disputed transaction replaces the notes and
// reopens it.
func (s *LedgerServiceImpl) FlagDispute(ctx context.Context, transactionID, notes string) error {
	ok, err := s.txRepo.SetDispute(ctx, transactionID, notes, time.Now().UTC())
	if err != nil {
		return apperror.InternalError(err)
	}
	if !ok {
		return apperror.ErrTransactionNotFound()
	}

	s.log.Info().Str("tx_id", transactionID).Msg("dispute flagged")
	return nil
}

// ResolveDispute marks a disputed transaction as resolved. The dispute flag
// stays set so the history remains visible.
func (s *LedgerServiceImpl) ResolveDispute(ctx context.Context, transactionID string) error {
	ok, err := s.txRepo.ResolveDispute(ctx, transactionID, time.Now().UTC())
	if err != nil {
		return apperror.InternalError(err)
	}
	if !ok {
		return apperror.ErrTransactionNotFound()
	}

	s.log.Info().Str("tx_id", transactionID).Msg("dispute resolved")
	return nil
}

// DeleteMerchantCascade removes a merchant together with all of its
// transactions and support tickets in one database transaction.
func (s *LedgerServiceImpl) DeleteMerchantCascade(ctx context.Context, businessPhone string) error {
	merchant, err := s.merchantRepo.GetByPhone(ctx, businessPhone)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return apperror.ErrMerchantNotFound()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.ticketRepo.DeleteByPhone(ctx, dbTx, businessPhone); err != nil {
		return apperror.InternalError(err)
	}
	if err := s.txRepo.DeleteByPhone(ctx, dbTx, businessPhone); err != nil {
		return apperror.InternalError(err)
	}
	if err := s.merchantRepo.Delete(ctx, dbTx, businessPhone); err != nil {
		return apperror.InternalError(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.invalidateStats(ctx)

	s.log.Info().
		Str("business_phone", businessPhone).
		Msg("merchant deleted with full cascade")
	return nil
}

// DeleteTransaction hard-deletes a single transaction and reverses its
// contribution to the merchant's cached aggregates, in one database
// transaction.
func (s *LedgerServiceImpl) DeleteTransaction(ctx context.Context, transactionID string) error {
	txn, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get transaction: %w", err))
	}
	if txn == nil {
		return apperror.ErrTransactionNotFound()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.Delete(ctx, dbTx, transactionID); err != nil {
		return apperror.InternalError(err)
	}
	if err := s.merchantRepo.ReverseLedgerEntry(ctx, dbTx, txn.BusinessPhone, txn.Amount); err != nil {
		return apperror.InternalError(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.invalidateStats(ctx)

	s.log.Info().
		Str("tx_id", transactionID).
		Str("business_phone", txn.BusinessPhone).
		Msg("transaction deleted, aggregates reversed")
	return nil
}

// invalidateStats drops the cached admin stats after a ledger write.
// Best-effort: the cache TTL bounds staleness if the drop fails.
func (s *LedgerServiceImpl) invalidateStats(ctx context.Context) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate stats cache")
	}
}
