package middleware

import (
	"net/http"
	"strings"

	"memoryatlas/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT verifies the Bearer member token and puts member_id into the
// context. Tokens are minted by the member service with the shared secret.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
			return
		}

		memberID, err := service.ParseMemberToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("member_id", memberID)
		c.Next()
	}
}
