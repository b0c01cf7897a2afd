package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("LEDG_001", "Merchant not found", http.StatusNotFound),
			expected: "[LEDG_001] Merchant not found",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] Internal server error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := InternalError(inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("VAL_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestErrorCatalog(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"Validation", Validation("missing field"), "VAL_001", 400},
		{"InvalidAmount", ErrInvalidAmount(), "VAL_002", 400},
		{"InvalidPhone", ErrInvalidPhone("+233"), "VAL_003", 400},
		{"InvalidNetwork", ErrInvalidNetwork(), "VAL_004", 400},
		{"MerchantNotFound", ErrMerchantNotFound(), "LEDG_001", 404},
		{"TransactionNotFound", ErrTransactionNotFound(), "LEDG_002", 404},
		{"TicketNotFound", ErrTicketNotFound(), "LEDG_003", 404},
		{"DuplicateMerchant", ErrDuplicateMerchant(), "LEDG_004", 409},
		{"IDGenerationExhausted", ErrIDGenerationExhausted(), "LEDG_005", 409},
		{"InvalidCredentials", ErrInvalidCredentials(), "AUTH_001", 401},
		{"InvalidToken", ErrInvalidToken(), "AUTH_002", 401},
		{"InvalidOrExpiredCode", ErrInvalidOrExpiredCode(), "AUTH_003", 401},
		{"AdminUnauthorized", ErrAdminUnauthorized(), "AUTH_004", 401},
		{"RateLimitExceeded", ErrRateLimitExceeded(), "RATE_001", 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestCredentialErrorsAreUniform(t *testing.T) {
	// Merchant and admin credential failures must be indistinguishable in
	// message and status.
	assert.Equal(t, ErrInvalidCredentials().Message, ErrAdminUnauthorized().Message)
	assert.Equal(t, ErrInvalidCredentials().HTTPStatus, ErrAdminUnauthorized().HTTPStatus)
}
