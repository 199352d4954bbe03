package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	cookiePrefix    = "shop_"
	cookieSessionID = cookiePrefix + "session-id"
	cookieMaxAge    = 60 * 60 * 48
)

// EnsureSessionID tags every shopper with a stable cookie id so log lines
// from one browsing session can be correlated.
func EnsureSessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookieSessionID)
		if err != nil || sessionID == "" {
			sessionID = uuid.NewString()
			c.SetCookie(cookieSessionID, sessionID, cookieMaxAge, "/", "", false, true)
		}
		c.Set("sessionId", sessionID)
		c.Next()
	}
}
