package middleware

import (
	"net/http"
	"strings"

	"paystream/internal/core/domain"
	"paystream/internal/core/services"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware for downstream handlers.
const (
	ContextUserID  = "user_id"
	ContextAddress = "caller_address"
)

func AuthMiddleware(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextAddress, claims.Address)
		c.Next()
	}
}

func OptionalAuthMiddleware(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if claims, err := authService.ValidateToken(parts[1]); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextAddress, claims.Address)
			}
		}

		c.Next()
	}
}

// CallerAddress returns the authenticated caller's on-ledger address, or
// false when the request carried no valid token.
func CallerAddress(c *gin.Context) (domain.Address, bool) {
	val, exists := c.Get(ContextAddress)
	if !exists {
		return "", false
	}
	addr, ok := val.(domain.Address)
	if !ok || addr == "" {
		return "", false
	}
	return addr, true
}
