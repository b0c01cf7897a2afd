package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"empower-pay/internal/core/ports"
	"empower-pay/pkg/apperror"
	"empower-pay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// HeaderAdminPassword carries the shared admin secret.
	HeaderAdminPassword = "X-Admin-Password"

	// Context keys
	CtxBusinessPhone = "business_phone"
	CtxIsAdmin       = "is_admin"
)

// JWTAuth creates a middleware that validates merchant session tokens.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		tokenStr := authHeader[7:]
		claims, err := tokenSvc.Validate(tokenStr)
		if err != nil {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		c.Set(CtxBusinessPhone, claims.BusinessPhone)
		c.Next()
	}
}

// AdminAuth creates a middleware that gates admin routes behind a shared
// secret. The comparison is constant-time and the failure response is
// identical whether the header is missing or wrong.
func AdminAuth(password string, log zerolog.Logger) gin.HandlerFunc {
	secret := []byte(password)
	return func(c *gin.Context) {
		supplied := []byte(c.GetHeader(HeaderAdminPassword))
		if len(secret) == 0 ||
			len(supplied) != len(secret) ||
			subtle.ConstantTimeCompare(supplied, secret) != 1 {
			log.Warn().
				Str("path", c.Request.URL.Path).
				Str("client_ip", c.ClientIP()).
				Msg("admin auth rejected")
			response.Error(c, apperror.ErrAdminUnauthorized())
			c.Abort()
			return
		}

		c.Set(CtxIsAdmin, true)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
