package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/hashgate/core"
	"github.com/layer-3/hashgate/ports"
)

// AuthMiddleware creates middleware that validates session tokens
func AuthMiddleware(tokenizer ports.SessionTokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		// Check if the Authorization header is present and in correct format
		if len(auth) < 8 || auth[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		token := auth[7:]

		session, err := tokenizer.Parse(token)
		if err != nil {
			if errors.Is(err, core.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		c.Set("userID", session.UserID)
		c.Set("accountID", session.AccountID)

		c.Next()
	}
}
