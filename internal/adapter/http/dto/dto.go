package dto

import "github.com/shopspring/decimal"

// RegisterRequest is the request body for merchant registration.
type RegisterRequest struct {
	BusinessPhone     string `json:"business_phone" binding:"required,phone_e164"`
	Password          string `json:"password" binding:"required,min=8,max=128"`
	BusinessName      string `json:"business_name" binding:"required,min=1,max=100"`
	OwnerName         string `json:"owner_name" binding:"required,min=1,max=100"`
	OwnerDOB          string `json:"owner_dob" binding:"required,datetime=2006-01-02"`
	Network           string `json:"network" binding:"required,momo_network"`
	Category          string `json:"category" binding:"max=100"`
	Location          string `json:"location" binding:"max=100"`
	Since             int    `json:"since" binding:"required,gte=1900,lte=2100"`
	ContactPreference string `json:"contact_preference" binding:"max=20"`
}

// LoginRequest is the request body for merchant login.
type LoginRequest struct {
	BusinessPhone string `json:"business_phone" binding:"required"`
	Password      string `json:"password" binding:"required"`
}

// ResetPasswordRequest is the request body for redeeming a reset code.
type ResetPasswordRequest struct {
	BusinessPhone string `json:"business_phone" binding:"required"`
	Code          string `json:"code" binding:"required"`
	NewPassword   string `json:"new_password" binding:"required,min=8,max=128"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	MerchantID    string `json:"merchant_id"`
	BusinessPhone string `json:"business_phone"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// PaymentRequest is the request body for recording a payment.
// Amount accepts a JSON number or numeric string.
type PaymentRequest struct {
	CustomerName   string          `json:"customer_name" binding:"required,min=1,max=100"`
	CustomerNumber string          `json:"customer_number" binding:"required,phone_e164"`
	Network        string          `json:"network" binding:"required,momo_network"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
}

// UpdateProfileRequest is the request body for editing a merchant profile.
// Omitted fields keep their stored values.
type UpdateProfileRequest struct {
	BusinessName      string `json:"business_name" binding:"omitempty,min=1,max=100"`
	OwnerName         string `json:"owner_name" binding:"omitempty,min=1,max=100"`
	Category          string `json:"category" binding:"max=100"`
	Location          string `json:"location" binding:"max=100"`
	ContactPreference string `json:"contact_preference" binding:"max=20"`
}

// TicketRequest is the request body for reporting a support issue.
type TicketRequest struct {
	Issue string `json:"issue" binding:"required,min=1,max=2000"`
}

// DisputeRequest is the request body for flagging a transaction.
type DisputeRequest struct {
	Notes string `json:"notes" binding:"required,min=1,max=2000"`
}

// ResetCodeIssueRequest is the admin request body for issuing a reset code.
type ResetCodeIssueRequest struct {
	BusinessPhone string `json:"business_phone" binding:"required"`
}

// ResetCodeResponse is the response body for an issued reset code.
type ResetCodeResponse struct {
	BusinessName string `json:"business_name"`
	Code         string `json:"code"`
	ExpiresAt    string `json:"expires_at"`
}
