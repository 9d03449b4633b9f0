package routes

import (
	"net/http"
	"strings"

	"notes-app/notes/database"
	"notes-app/notes/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterWelcomeRoutes(group *gin.RouterGroup, db *database.Database, welcome services.WelcomeServiceInterface, limit gin.HandlerFunc, log *zap.Logger) {
	group.POST("/welcome-email", limit, func(c *gin.Context) { SendWelcomeEmail(c, db, welcome, log) })
}

// SendWelcomeEmail answers 200 for anything but a missing email address; delivery
// problems are logged, never returned.
func SendWelcomeEmail(c *gin.Context, db *database.Database, welcome services.WelcomeServiceInterface, log *zap.Logger) {
	var req services.WelcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("error in welcome email route", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Signup successful, email may be delayed"})
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	c.JSON(http.StatusOK, welcome.Send(c.Request.Context(), db, req))
}
