package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// Validation returns a generic field-validation error with a specific reason.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_002", "Amount must be a positive number", http.StatusBadRequest)
}

func ErrInvalidPhone(prefix string) *AppError {
	return New("VAL_003", fmt.Sprintf("Business phone must start with %s", prefix), http.StatusBadRequest)
}

func ErrInvalidNetwork() *AppError {
	return New("VAL_004", "Network must be one of MTN, Telecel, AirtelTogo", http.StatusBadRequest)
}

// ---- Ledger & Entities (LEDG) ----

func ErrMerchantNotFound() *AppError {
	return New("LEDG_001", "Merchant not found", http.StatusNotFound)
}

func ErrTransactionNotFound() *AppError {
	return New("LEDG_002", "Transaction not found", http.StatusNotFound)
}

func ErrTicketNotFound() *AppError {
	return New("LEDG_003", "Support ticket not found", http.StatusNotFound)
}

func ErrDuplicateMerchant() *AppError {
	return New("LEDG_004", "Business phone already registered", http.StatusConflict)
}

func ErrIDGenerationExhausted() *AppError {
	return New("LEDG_005", "Could not allocate a unique transaction ID", http.StatusConflict)
}

// ---- Authentication & Authorization (AUTH) ----

// ErrInvalidCredentials is returned uniformly for any credential failure so
// callers cannot learn which part of the credential was wrong.
func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrInvalidOrExpiredCode() *AppError {
	return New("AUTH_003", "Invalid or expired reset code", http.StatusUnauthorized)
}

func ErrAdminUnauthorized() *AppError {
	return New("AUTH_004", "Invalid credentials", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps a store or infrastructure error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
