package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	tenantIDKey = contextKey("tenantID")
	actorIDKey  = contextKey("actorID")
)

// TenantContextMiddleware extracts the tenant from the :tenantID path
// parameter and the acting principal from the X-Actor-ID header (stamped by
// the upstream auth gateway), and stores both in the Gin context. Every
// core call signature still takes the tenant explicitly; this middleware
// only centralizes extraction and the missing-tenant rejection.
func TenantContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.Param("tenantID")
		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "tenant ID is required"})
			return
		}
		c.Set(string(tenantIDKey), tenantID)

		actorID := c.GetHeader("X-Actor-ID")
		if actorID == "" {
			actorID = "system"
		}
		c.Set(string(actorIDKey), actorID)

		c.Next()
	}
}

// GetTenantIDFromContext retrieves the tenant ID from the Gin context.
func GetTenantIDFromContext(c *gin.Context) (string, bool) {
	val, exists := c.Get(string(tenantIDKey))
	if !exists {
		return "", false
	}
	tenantID, ok := val.(string)
	return tenantID, ok && tenantID != ""
}

// GetActorIDFromContext retrieves the acting principal from the Gin context.
func GetActorIDFromContext(c *gin.Context) string {
	val, exists := c.Get(string(actorIDKey))
	if !exists {
		return "system"
	}
	actorID, ok := val.(string)
	if !ok || actorID == "" {
		return "system"
	}
	return actorID
}
