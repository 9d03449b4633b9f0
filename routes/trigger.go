package routes

import (
	"encoding/json"
	"io"
	"net/http"

	"notes-app/notes/database"
	"notes-app/notes/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

func RegisterTriggerRoutes(group *gin.RouterGroup, db *database.Database, webhookService services.WebhookServiceInterface, log *zap.Logger) {
	group.POST("/trigger", func(c *gin.Context) { ReceiveWebhook(c, db, webhookService, log) })
}

// ReceiveWebhook accepts any JSON payload from the task scheduler once the bearer secret
// checks out.
func ReceiveWebhook(c *gin.Context, db *database.Database, webhookService services.WebhookServiceInterface, log *zap.Logger) {
	if !webhookService.Authorize(c.GetHeader("Authorization")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read request body"})
		return
	}
	if !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	log.Info("task scheduler webhook received", zap.ByteString("payload", body))

	if err := webhookService.Receive(c.Request.Context(), db, json.RawMessage(body)); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
