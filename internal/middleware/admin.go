package middleware

import (
	"log"
	"net/http"

	"supportly/internal/domain"

	"github.com/gin-gonic/gin"
)

// AdminRequired admits back-office accounts. Every state-changing admin call
// (withdrawal decisions, refunds, settings, sweeps) is written to the log with
// the acting admin and the outcome.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || claims.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
		if c.Request.Method != http.MethodGet {
			log.Printf("[ADMIN] admin=%d %s %s -> %d", claims.UserID, c.Request.Method, c.Request.URL.Path, c.Writer.Status())
		}
	}
}
