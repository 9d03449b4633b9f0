package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"
)

// CORSMiddleware adds the required headers to allow cross-origin requests from appOrigins,
// a comma separated list. An empty list allows none.
func CORSMiddleware(appOrigins string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	origins := make([]string, 0)
	for _, origin := range strings.Split(appOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	switch {
	case len(origins) == 1 && origins[0] == "*":
		// Any origin may call, but never with the session cookie.
		corsConfig.AllowAllOrigins = true
	case len(origins) == 0:
		corsConfig.AllowOriginFunc = func(origin string) bool { return false }
	default:
		corsConfig.AllowOrigins = origins
		corsConfig.AllowWildcard = true
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, []string{
		"Accept",
		"Authorization",
		"Accept-Encoding",
		"X-Requested-With",
	}...)

	return cors.New(corsConfig)
}
