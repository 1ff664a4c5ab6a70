package middleware

import (
	"net/http"
	"strings"

	"taskpilot/internal/services"

	"github.com/gin-gonic/gin"
)

const contextKeyClaims = "deviceClaims"

// JWTAuth validates the Authorization bearer token on every request and
// stores the device claims in the gin context.
func JWTAuth(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(contextKeyClaims, claims)
		c.Next()
	}
}

// GetDeviceClaims returns the validated claims for the current request, or
// nil when the request was not authenticated.
func GetDeviceClaims(c *gin.Context) *services.DeviceClaims {
	value, exists := c.Get(contextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := value.(*services.DeviceClaims)
	if !ok {
		return nil
	}
	return claims
}
