package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminAuth validates admin JWT tokens: a valid user token whose role claim
// is "admin".
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearerClaims(c, secret)
		if !ok {
			return
		}

		role, _ := claims["role"].(string)
		if role != "admin" {
			log.Println("[AUTH] [ERROR] admin role required")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		if userID, ok := userIDFromClaims(claims); ok {
			c.Set("userId", userID)
		}
		c.Set("role", role)
		c.Next()
	}
}
