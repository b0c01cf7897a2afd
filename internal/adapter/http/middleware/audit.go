package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"empower-pay/internal/core/domain"
	"empower-pay/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// It maps HTTP methods and paths to audit actions.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, resourceType := mapPathToAction(c.Request.URL.Path, c.Request.Method)
		if action == "" {
			return
		}

		var businessPhone string
		if phone, exists := c.Get(CtxBusinessPhone); exists {
			if p, ok := phone.(string); ok {
				businessPhone = p
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:            uuid.New(),
			BusinessPhone: businessPhone,
			Action:        action,
			ResourceType:  resourceType,
			ResourceID:    lastPathSegment(c.Request.URL.Path),
			IPAddress:     c.ClientIP(),
			Details:       string(details),
			CreatedAt:     time.Now(),
		})
	}
}

func mapPathToAction(path, method string) (domain.AuditAction, string) {
	switch {
	case path == "/api/v1/auth/register" && method == "POST":
		return domain.AuditActionRegister, "merchant"
	case path == "/api/v1/auth/login" && method == "POST":
		return domain.AuditActionLogin, "session"
	case path == "/api/v1/auth/reset-password" && method == "POST":
		return domain.AuditActionResetCodeConsume, "merchant"
	case path == "/api/v1/payments" && method == "POST":
		return domain.AuditActionPayment, "transaction"
	case path == "/api/v1/merchants/me" && method == "PUT":
		return domain.AuditActionProfileUpdate, "merchant"
	case path == "/api/v1/support" && method == "POST":
		return domain.AuditActionTicketReport, "ticket"
	case strings.HasPrefix(path, "/api/v1/admin/reset-codes") && method == "POST":
		return domain.AuditActionResetCodeIssue, "merchant"
	case strings.HasPrefix(path, "/api/v1/admin/transactions/") && strings.HasSuffix(path, "/dispute") && method == "POST":
		return domain.AuditActionDisputeFlag, "transaction"
	case strings.HasPrefix(path, "/api/v1/admin/transactions/") && strings.HasSuffix(path, "/resolve") && method == "POST":
		return domain.AuditActionDisputeResolve, "transaction"
	case strings.HasPrefix(path, "/api/v1/admin/transactions/") && method == "DELETE":
		return domain.AuditActionTransactionDelete, "transaction"
	case strings.HasPrefix(path, "/api/v1/admin/merchants/") && method == "DELETE":
		return domain.AuditActionMerchantDelete, "merchant"
	case strings.HasPrefix(path, "/api/v1/admin/tickets/") && strings.HasSuffix(path, "/resolve") && method == "POST":
		return "", "" // ticket resolution is visible in the ticket row itself
	case strings.HasPrefix(path, "/api/v1/admin/tickets/") && method == "DELETE":
		return domain.AuditActionTicketDelete, "ticket"
	}
	return "", ""
}

func lastPathSegment(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) == 0 {
		return ""
	}
	last := segs[len(segs)-1]
	switch last {
	case "dispute", "resolve":
		if len(segs) >= 2 {
			return segs[len(segs)-2]
		}
	case "register", "login", "reset-password", "payments", "me", "support", "reset-codes":
		return ""
	}
	return last
}
