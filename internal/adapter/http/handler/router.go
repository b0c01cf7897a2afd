package handler

import (
	"empower-pay/internal/adapter/http/middleware"
	redisStore "empower-pay/internal/adapter/storage/redis"
	"empower-pay/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LedgerSvc      ports.LedgerService
	ReportingSvc   ports.ReportingService
	TicketSvc      ports.TicketService
	TokenSvc       ports.TokenService
	AdminPassword  string
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
		auth.POST("/reset-password", rl("auth_reset"), authHandler.ResetPassword)
	}

	// --- JWT-authenticated routes (merchant) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	paymentHandler := NewPaymentHandler(deps.LedgerSvc, deps.ReportingSvc)
	merchantHandler := NewMerchantHandler(deps.AuthSvc, deps.TicketSvc)

	payments := v1.Group("/payments", jwtAuth)
	{
		payments.POST("", rl("payments"), paymentHandler.RecordPayment)
	}

	ledger := v1.Group("/ledger", jwtAuth)
	{
		ledger.GET("", rl("ledger"), paymentHandler.GetLedger)
	}

	merchants := v1.Group("/merchants/me", jwtAuth)
	{
		merchants.PUT("", rl("ledger"), merchantHandler.UpdateProfile)
	}

	support := v1.Group("/support", jwtAuth)
	{
		support.POST("", rl("support"), merchantHandler.ReportTicket)
	}

	// --- Admin routes (shared-secret header) ---
	adminAuth := middleware.AdminAuth(deps.AdminPassword, deps.Logger)
	adminHandler := NewAdminHandler(deps.AuthSvc, deps.LedgerSvc, deps.ReportingSvc, deps.TicketSvc)
	admin := v1.Group("/admin", adminAuth, rl("admin"))
	{
		admin.GET("/overview", adminHandler.GetOverview)
		admin.POST("/reset-codes", adminHandler.IssueResetCode)
		admin.POST("/transactions/:id/dispute", adminHandler.FlagDispute)
		admin.POST("/transactions/:id/resolve", adminHandler.ResolveDispute)
		admin.DELETE("/transactions/:id", adminHandler.DeleteTransaction)
		admin.DELETE("/merchants/:phone", adminHandler.DeleteMerchant)
		admin.GET("/merchants/:phone/verify", adminHandler.VerifyAggregates)
		admin.POST("/tickets/:id/resolve", adminHandler.ResolveTicket)
		admin.DELETE("/tickets/:id", adminHandler.DeleteTicket)
	}

	return r
}
