package middleware

import (
	"net/http"
	"strings"

	"supportly/config"
	"supportly/internal/auth"
	"supportly/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	ctxClaims    = "claims"
	ctxUserID    = "user_id"
	ctxCreatorID = "creator_id"
)

// AuthRequired validates the bearer token issued by the identity service and
// stores its claims in the context.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || scheme != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(ctxClaims, claims)
		c.Set(ctxUserID, claims.UserID)
		c.Next()
	}
}

// CreatorRequired admits creator accounts only and scopes the request to the
// caller's own ledger. Balance, payout and payment-info handlers read the
// creator with GetCreatorID, never from the request.
func CreatorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if claims.Role != domain.RoleCreator {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "creator account required"})
			return
		}
		c.Set(ctxCreatorID, claims.UserID)
		c.Next()
	}
}

func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

// GetUserID returns the authenticated user ID (must be used after AuthRequired).
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// GetCreatorID returns the creator the request is scoped to, or 0 outside
// CreatorRequired routes.
func GetCreatorID(c *gin.Context) uint {
	return c.GetUint(ctxCreatorID)
}
