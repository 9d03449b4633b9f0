package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type GuardConfig struct {
	// ProtectedPrefixes lists the path prefixes that need a signed-in user.
	ProtectedPrefixes []string
	// AnonymousRoute is the sign-in page. Signed-in users are sent away from it.
	AnonymousRoute string
	// EntryRoute is where signed-in users land.
	EntryRoute string
}

func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		ProtectedPrefixes: []string{"/notes"},
		AnonymousRoute:    "/login",
		EntryRoute:        "/notes",
	}
}

// AccessGuard gates page routes on the identity resolved by SessionMiddleware. Anonymous
// page loads of a protected path are redirected to the sign-in page, anonymous writes
// get 401, and signed-in users asking for the sign-in page go to the entry route.
func AccessGuard(cfg GuardConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		_, signedIn := CurrentIdentity(c)

		if !signedIn && cfg.isProtected(path) {
			if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
				c.Redirect(http.StatusFound, cfg.AnonymousRoute)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if signedIn && path == cfg.AnonymousRoute && c.Request.Method == http.MethodGet {
			c.Redirect(http.StatusFound, cfg.EntryRoute)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (cfg GuardConfig) isProtected(path string) bool {
	for _, prefix := range cfg.ProtectedPrefixes {
		if path == prefix || strings.HasPrefix(path, strings.TrimRight(prefix, "/")+"/") {
			return true
		}
	}
	return false
}
