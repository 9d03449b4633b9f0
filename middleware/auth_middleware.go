package middleware

import (
	"net/http"
	"time"

	"notes-app/notes/services"
	"notes-app/notes/utils/token"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// SessionMiddleware resolves the session presented with the request and stores the
// identity on the context. It never rejects a request; that is left to AccessGuard and
// RequireIdentity. Rotated session tokens are written back as a fresh cookie.
func SessionMiddleware(identity services.IdentityProvider, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken, err := token.ExtractToken(c, services.SessionCookieName)
		if err != nil {
			c.Next()
			return
		}

		session, err := identity.GetUser(c.Request.Context(), sessionToken)
		if err != nil {
			c.Next()
			return
		}

		if session.Rotated {
			SetSessionCookie(c, session, secureCookies)
		}

		c.Set(identityKey, session)
		c.Set("userID", session.UserID)
		c.Set("email", session.Email)

		c.Next()
	}
}

// RequireIdentity rejects requests without a resolved session with 401.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the session resolved for this request, if any.
func CurrentIdentity(c *gin.Context) (*services.Session, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*services.Session)
	return session, ok && session != nil
}

func SetSessionCookie(c *gin.Context, session *services.Session, secure bool) {
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(services.SessionCookieName, session.Token, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(services.SessionCookieName, "", -1, "/", "", secure, true)
}
