package handler

import (
	"empower-pay/internal/adapter/http/dto"
	"empower-pay/internal/adapter/http/middleware"
	"empower-pay/internal/core/ports"
	"empower-pay/pkg/apperror"
	"empower-pay/pkg/response"

	"github.com/gin-gonic/gin"
)

// MerchantHandler handles merchant self-service endpoints.
type MerchantHandler struct {
	authSvc   ports.AuthService
	ticketSvc ports.TicketService
}

// NewMerchantHandler creates a new MerchantHandler.
func NewMerchantHandler(authSvc ports.AuthService, ticketSvc ports.TicketService) *MerchantHandler {
	return &MerchantHandler{authSvc: authSvc, ticketSvc: ticketSvc}
}

// UpdateProfile handles PUT /api/v1/merchants/me. Omitted fields keep their
// stored values; past transaction snapshots are never rewritten.
func (h *MerchantHandler) UpdateProfile(c *gin.Context) {
	phone, ok := c.Get(middleware.CtxBusinessPhone)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	err := h.authSvc.UpdateProfile(c.Request.Context(), ports.UpdateProfileRequest{
		BusinessPhone:     phone.(string),
		BusinessName:      req.BusinessName,
		OwnerName:         req.OwnerName,
		Category:          req.Category,
		Location:          req.Location,
		ContactPreference: req.ContactPreference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Profile updated"})
}

// ReportTicket handles POST /api/v1/support.
func (h *MerchantHandler) ReportTicket(c *gin.Context) {
	phone, ok := c.Get(middleware.CtxBusinessPhone)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	ticket, err := h.ticketSvc.Report(c.Request.Context(), phone.(string), req.Issue)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, ticket)
}
