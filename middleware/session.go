package middleware

import (
	"log"
	"net/http"

	"coffee-quality-api/services"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "coffee_session"
	SessionIDKey  = "session_id"
)

// Session attaches a session ID to every request, issuing a fresh signed
// cookie when the request carries none or an invalid one.
func Session(sessions *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
			if id, err := sessions.Validate(token); err == nil {
				c.Set(SessionIDKey, id)
				c.Next()
				return
			}
		}

		id, token, err := sessions.Issue()
		if err != nil {
			log.Printf("session issue failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, token, int(sessions.Expiry().Seconds()), "/", "", false, true)
		c.Set(SessionIDKey, id)
		c.Next()
	}
}

// SessionID returns the ID set by Session, or "" outside it.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
