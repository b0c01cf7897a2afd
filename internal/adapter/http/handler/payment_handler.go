package handler

import (
	"empower-pay/internal/adapter/http/dto"
	"empower-pay/internal/adapter/http/middleware"
	"empower-pay/internal/core/domain"
	"empower-pay/internal/core/ports"
	"empower-pay/pkg/apperror"
	"empower-pay/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment-recording and ledger endpoints.
type PaymentHandler struct {
	ledgerSvc    ports.LedgerService
	reportingSvc ports.ReportingService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(ledgerSvc ports.LedgerService, reportingSvc ports.ReportingService) *PaymentHandler {
	return &PaymentHandler{ledgerSvc: ledgerSvc, reportingSvc: reportingSvc}
}

// RecordPayment handles POST /api/v1/payments.
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	phone, ok := c.Get(middleware.CtxBusinessPhone)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.ledgerSvc.RecordPayment(c.Request.Context(), ports.PaymentRequest{
		BusinessPhone:  phone.(string),
		CustomerName:   req.CustomerName,
		CustomerNumber: req.CustomerNumber,
		Network:        domain.Network(req.Network),
		Amount:         req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetLedger handles GET /api/v1/ledger — the caller's transactions, newest first.
func (h *PaymentHandler) GetLedger(c *gin.Context) {
	phone, ok := c.Get(middleware.CtxBusinessPhone)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	txns, err := h.reportingSvc.GetMerchantLedger(c.Request.Context(), phone.(string))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"transactions": txns, "count": len(txns)})
}
