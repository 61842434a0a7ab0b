package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"zarmind-system/internal/utils"
)

// JWTAuth validates the bearer token and stores the actor's identity on
// the request context. Authentication itself lives in an external
// identity service; this only verifies the signature and expiry.
// An empty secret disables the check, for local development.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Missing or malformed authorization header",
			})
			return
		}

		claims, err := utils.ParseToken([]byte(secret), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set("userId", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}
