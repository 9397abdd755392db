package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// RequireSession gates an endpoint behind a valid session token. Session
// issuance is owned by the auth service; this only verifies the Bearer
// credential and stashes the user id in the request context.
func (h *Handler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token missing"})
			return
		}

		userID, err := h.Tokens.VerifySessionToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// sessionUserID returns the authenticated user set by RequireSession.
func sessionUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
