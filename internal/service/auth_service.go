package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"empower-pay/internal/core/domain"
	"empower-pay/internal/core/ports"
	"empower-pay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// resetCodeTTL is how long an issued reset code stays valid.
const resetCodeTTL = 30 * time.Minute

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	merchantRepo ports.MerchantRepository
	hashSvc      ports.HashService
	tokenSvc     ports.TokenService
	phonePrefix  string
	log          zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl. phonePrefix is the required
// country prefix for business phone numbers (e.g. "+233").
func NewAuthService(
	merchantRepo ports.MerchantRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	phonePrefix string,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		merchantRepo: merchantRepo,
		hashSvc:      hashSvc,
		tokenSvc:     tokenSvc,
		phonePrefix:  phonePrefix,
		log:          log,
	}
}

// Register creates a new merchant account. The business phone is the natural
// key; registering an existing phone fails with a conflict.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*ports.RegisterResponse, error) {
	if !strings.HasPrefix(req.BusinessPhone, s.phonePrefix) {
		return nil, apperror.ErrInvalidPhone(s.phonePrefix)
	}
	if !req.Network.Valid() {
		return nil, apperror.ErrInvalidNetwork()
	}

	hash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	merchant := &domain.Merchant{
		ID:                uuid.New(),
		BusinessPhone:     req.BusinessPhone,
		BusinessName:      req.BusinessName,
		OwnerName:         req.OwnerName,
		OwnerDOB:          req.OwnerDOB,
		Network:           req.Network,
		Category:          req.Category,
		Location:          req.Location,
		Since:             req.Since,
		ContactPreference: req.ContactPreference,
		PasswordHash:      hash,
		TotalTransactions: 0,
		TotalVolume:       decimal.Zero,
		Active:            true,
		CreatedAt:         now,
		LastSeen:          now,
	}

	if err := s.merchantRepo.Create(ctx, merchant); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, apperror.ErrDuplicateMerchant()
		}
		return nil, apperror.InternalError(fmt.Errorf("create merchant: %w", err))
	}

	s.log.Info().
		Str("merchant_id", merchant.ID.String()).
		Str("business_phone", merchant.BusinessPhone).
		Str("network", string(merchant.Network)).
		Msg("merchant registered")

	return &ports.RegisterResponse{
		MerchantID:    merchant.ID.String(),
		BusinessPhone: merchant.BusinessPhone,
	}, nil
}

// Login verifies credentials and issues a session token. All credential
// failures return the same error so the response never reveals whether the
// phone is registered.
func (s *AuthServiceImpl) Login(ctx context.Context, businessPhone, password string) (string, time.Time, error) {
	merchant, err := s.merchantRepo.GetByPhone(ctx, businessPhone)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil || !merchant.Active {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hashSvc.Verify(password, merchant.PasswordHash)
	if err != nil || !ok {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiresAt, err := s.tokenSvc.Generate(merchant.BusinessPhone)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.log.Info().
		Str("business_phone", merchant.BusinessPhone).
		Msg("merchant logged in")

	return token, expiresAt, nil
}

// GenerateResetCode issues a short-lived password reset code for a merchant.
// Issuing a new code replaces any outstanding one.
func (s *AuthServiceImpl) GenerateResetCode(ctx context.Context, businessPhone string) (*ports.ResetCodeResponse, error) {
	merchant, err := s.merchantRepo.GetByPhone(ctx, businessPhone)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return nil, apperror.ErrMerchantNotFound()
	}

	code := domain.NewCode(domain.CodePrefix)
	expiresAt := time.Now().UTC().Add(resetCodeTTL)

	if err := s.merchantRepo.SetResetCode(ctx, businessPhone, code, expiresAt); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("set reset code: %w", err))
	}

	s.log.Info().
		Str("business_phone", businessPhone).
		Time("expires_at", expiresAt).
		Msg("reset code issued")

	return &ports.ResetCodeResponse{
		BusinessName: merchant.BusinessName,
		Code:         code,
		ExpiresAt:    expiresAt,
	}, nil
}

// ConsumeResetCode exchanges a valid reset code for a new password. The code
// match, expiry check, password write and code clear happen in one guarded
// store update, so a code can only ever be spent once. Wrong, expired and
// already-used codes are indistinguishable to the caller.
func (s *AuthServiceImpl) ConsumeResetCode(ctx context.Context, businessPhone, code, newPassword string) error {
	hash, err := s.hashSvc.Hash(newPassword)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	ok, err := s.merchantRepo.ConsumeResetCode(ctx, businessPhone, code, hash, time.Now().UTC())
	if err != nil {
		return apperror.InternalError(fmt.Errorf("consume reset code: %w", err))
	}
	if !ok {
		return apperror.ErrInvalidOrExpiredCode()
	}

	s.log.Info().
		Str("business_phone", businessPhone).
		Msg("password reset via code")
	return nil
}

// UpdateProfile changes the mutable profile fields. Transactions keep the
// business name they were recorded with; history is not rewritten.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, req ports.UpdateProfileRequest) error {
	merchant, err := s.merchantRepo.GetByPhone(ctx, req.BusinessPhone)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return apperror.ErrMerchantNotFound()
	}

	if req.BusinessName != "" {
		merchant.BusinessName = req.BusinessName
	}
	if req.OwnerName != "" {
		merchant.OwnerName = req.OwnerName
	}
	if req.Category != "" {
		merchant.Category = req.Category
	}
	if req.Location != "" {
		merchant.Location = req.Location
	}
	if req.ContactPreference != "" {
		merchant.ContactPreference = req.ContactPreference
	}

	if err := s.merchantRepo.UpdateProfile(ctx, merchant); err != nil {
		return apperror.InternalError(fmt.Errorf("update profile: %w", err))
	}

	s.log.Info().
		Str("business_phone", req.BusinessPhone).
		Msg("merchant profile updated")
	return nil
}
