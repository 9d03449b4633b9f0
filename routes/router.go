package routes

import (
	"fmt"
	"net/http"
	"strings"

	"notes-app/notes/config"
	"notes-app/notes/database"
	"notes-app/notes/middleware"
	"notes-app/notes/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Dependencies struct {
	Config   config.Config
	DB       *database.Database
	Log      *zap.Logger
	Notes    services.NoteServiceInterface
	Identity services.IdentityProvider
	Welcome  services.WelcomeServiceInterface
	Webhooks services.WebhookServiceInterface
}

// SetupRouter builds the gin engine with every page and API route mounted.
func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	templates, err := LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	secureCookies := strings.HasPrefix(deps.Config.AppURL, "https://")

	router := gin.New()
	// Forwarding headers only count when they come from a configured proxy; the rate
	// limiter keys on c.ClientIP().
	if err := router.SetTrustedProxies(deps.Config.TrustedProxyList()); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.SetHTMLTemplate(templates)
	router.Use(middleware.Logger(log), middleware.Recovery(log))
	router.Use(pathPrefix("/api", middleware.CORSMiddleware(deps.Config.AllowedOrigins)))
	router.Use(middleware.SessionMiddleware(deps.Identity, secureCookies))
	router.Use(middleware.AccessGuard(middleware.DefaultGuardConfig()))

	authLimit := middleware.NewRateLimiter(deps.Config.AuthRateLimit).Middleware()
	welcomeLimit := middleware.NewRateLimiter(deps.Config.AuthRateLimit).Middleware()

	router.GET("/health", func(c *gin.Context) { Health(c, deps.DB) })

	RegisterPageRoutes(router, deps.DB, deps.Notes)
	RegisterNoteRoutes(router.Group("/notes"), deps.DB, deps.Notes)
	RegisterAuthRoutes(router, NewAuthHandler(deps.DB, deps.Identity, deps.Welcome, deps.Config.AppURL, secureCookies, log), authLimit)

	api := router.Group("/api")
	RegisterTriggerRoutes(api, deps.DB, deps.Webhooks, log)
	RegisterWelcomeRoutes(api, deps.DB, deps.Welcome, welcomeLimit, log)
	RegisterNoteAPIRoutes(api.Group("/notes", middleware.RequireIdentity()), deps.DB, deps.Notes)

	return router, nil
}

func Health(c *gin.Context, db *database.Database) {
	if db == nil || db.Ping() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// pathPrefix runs handler only for requests under prefix. Used for CORS, which has to see
// preflight requests that match no route.
func pathPrefix(prefix string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			handler(c)
			return
		}
		c.Next()
	}
}
