package handler

import (
	"empower-pay/internal/adapter/http/dto"
	"empower-pay/internal/core/domain"
	"empower-pay/internal/core/ports"
	"empower-pay/pkg/apperror"
	"empower-pay/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles administrative endpoints.
type AdminHandler struct {
	authSvc      ports.AuthService
	ledgerSvc    ports.LedgerService
	reportingSvc ports.ReportingService
	ticketSvc    ports.TicketService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authSvc ports.AuthService, ledgerSvc ports.LedgerService, reportingSvc ports.ReportingService, ticketSvc ports.TicketService) *AdminHandler {
	return &AdminHandler{
		authSvc:      authSvc,
		ledgerSvc:    ledgerSvc,
		reportingSvc: reportingSvc,
		ticketSvc:    ticketSvc,
	}
}

// GetOverview handles GET /api/v1/admin/overview. The search and network
// query parameters narrow the merchant and transaction lists; stats always
// cover the entire ledger.
func (h *AdminHandler) GetOverview(c *gin.Context) {
	filter := ports.OverviewFilter{
		SearchText: c.Query("search"),
		Network:    domain.Network(c.Query("network")),
	}
	if filter.Network != "" && !filter.Network.Valid() {
		response.Error(c, apperror.ErrInvalidNetwork())
		return
	}

	overview, err := h.reportingSvc.GetAdminOverview(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, overview)
}

// IssueResetCode handles POST /api/v1/admin/reset-codes. The plaintext code
// is returned exactly once for out-of-band delivery to the merchant.
func (h *AdminHandler) IssueResetCode(c *gin.Context) {
	var req dto.ResetCodeIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.authSvc.GenerateResetCode(c.Request.Context(), req.BusinessPhone)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ResetCodeResponse{
		BusinessName: result.BusinessName,
		Code:         result.Code,
		ExpiresAt:    result.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// FlagDispute handles POST /api/v1/admin/transactions/:id/dispute.
func (h *AdminHandler) FlagDispute(c *gin.Context) {
	var req dto.DisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.ledgerSvc.FlagDispute(c.Request.Context(), c.Param("id"), req.Notes); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Dispute flagged"})
}

// ResolveDispute handles POST /api/v1/admin/transactions/:id/resolve.
func (h *AdminHandler) ResolveDispute(c *gin.Context) {
	if err := h.ledgerSvc.ResolveDispute(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Dispute resolved"})
}

// DeleteTransaction handles DELETE /api/v1/admin/transactions/:id. The
// merchant's aggregates are wound back in the same database transaction.
func (h *AdminHandler) DeleteTransaction(c *gin.Context) {
	if err := h.ledgerSvc.DeleteTransaction(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Transaction deleted"})
}

// DeleteMerchant handles DELETE /api/v1/admin/merchants/:phone. Removes the
// merchant together with their transactions and support tickets.
func (h *AdminHandler) DeleteMerchant(c *gin.Context) {
	if err := h.ledgerSvc.DeleteMerchantCascade(c.Request.Context(), c.Param("phone")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Merchant deleted"})
}

// VerifyAggregates handles GET /api/v1/admin/merchants/:phone/verify.
func (h *AdminHandler) VerifyAggregates(c *gin.Context) {
	check, err := h.reportingSvc.VerifyAggregates(c.Request.Context(), c.Param("phone"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, check)
}

// ResolveTicket handles POST /api/v1/admin/tickets/:id/resolve.
func (h *AdminHandler) ResolveTicket(c *gin.Context) {
	if err := h.ticketSvc.Resolve(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Ticket resolved"})
}

// DeleteTicket handles DELETE /api/v1/admin/tickets/:id.
func (h *AdminHandler) DeleteTicket(c *gin.Context) {
	if err := h.ticketSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"message": "Ticket deleted"})
}
