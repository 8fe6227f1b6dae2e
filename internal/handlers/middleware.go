package handlers

import (
	"errors"
	"log"
	"net/http"

	"folio/internal/constants"
	"folio/internal/gitdb"
	"folio/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthMiddleware resolves the session cookie against sessions.json and
// rejects anything but a live admin session.
func AuthMiddleware(sessionService *services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(constants.CookieSessionID)
		if err != nil || sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		session, err := sessionService.Get(c.Request.Context(), sessionID)
		if err != nil {
			log.Printf("resolving session: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			c.Abort()
			return
		}
		if session == nil || !session.IsAdmin {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		c.Set(constants.ContextKeySession, sessionID)
		c.Next()
	}
}

// VisitorMiddleware gives every visitor a stable anonymous id via the
// cookie session; it becomes the userId on likes and comments.
func VisitorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		visitorID, _ := session.Get(constants.SessionKeyVisitorID).(string)
		if visitorID == "" {
			visitorID = uuid.NewString()
			session.Set(constants.SessionKeyVisitorID, visitorID)
			if err := session.Save(); err != nil {
				log.Printf("saving visitor session: %v", err)
			}
		}
		c.Set(constants.ContextKeyVisitorID, visitorID)
		c.Next()
	}
}

func visitorID(c *gin.Context) string {
	id, _ := c.Get(constants.ContextKeyVisitorID)
	s, _ := id.(string)
	return s
}

// fail maps service errors onto the API's error vocabulary: conflicts and
// timeouts get their own statuses, everything else is a generic failure.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, gitdb.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "the content was modified concurrently, please retry"})
	case errors.Is(err, gitdb.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "the document store timed out"})
	default:
		log.Printf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load or save data"})
	}
}
