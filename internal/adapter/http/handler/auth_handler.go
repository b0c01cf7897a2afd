package handler

import (
	"net/http"
	"time"

	"empower-pay/internal/adapter/http/dto"
	"empower-pay/internal/core/domain"
	"empower-pay/internal/core/ports"
	"empower-pay/pkg/apperror"
	"empower-pay/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authSvc ports.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	dob, err := time.Parse("2006-01-02", req.OwnerDOB)
	if err != nil {
		response.Error(c, apperror.Validation("owner_dob must be formatted YYYY-MM-DD"))
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), ports.RegisterRequest{
		BusinessPhone:     req.BusinessPhone,
		BusinessName:      req.BusinessName,
		OwnerName:         req.OwnerName,
		OwnerDOB:          dob,
		Network:           domain.Network(req.Network),
		Category:          req.Category,
		Location:          req.Location,
		Since:             req.Since,
		ContactPreference: req.ContactPreference,
		Password:          req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.RegisterResponse{
		MerchantID:    result.MerchantID,
		BusinessPhone: result.BusinessPhone,
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	token, expiry, err := h.authSvc.Login(c.Request.Context(), req.BusinessPhone, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{
		Token:  token,
		Expiry: expiry.Unix(),
	})
}

// ResetPassword handles POST /api/v1/auth/reset-password. The code must have
// been issued by an administrator and is consumed on first successful use.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.authSvc.ConsumeResetCode(c.Request.Context(), req.BusinessPhone, req.Code, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Password updated"})
}

// HealthCheck handles GET /health — deep health check verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
