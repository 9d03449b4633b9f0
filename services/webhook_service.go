package services

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"strings"

	"notes-app/notes/database"
	"notes-app/notes/models"
)

type WebhookServiceInterface interface {
	Authorize(authHeader string) bool
	Receive(ctx context.Context, db *database.Database, payload json.RawMessage) error
}

type WebhookService struct {
	secret string
}

func NewWebhookService(secret string) *WebhookService {
	return &WebhookService{secret: secret}
}

// Authorize checks an Authorization header against "Bearer <secret>". With no secret
// configured every request is refused.
func (s *WebhookService) Authorize(authHeader string) bool {
	if s.secret == "" {
		return false
	}
	presented, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(s.secret)) == 1
}

// Receive records the payload as a webhook.received event. No schema is enforced.
func (s *WebhookService) Receive(ctx context.Context, db *database.Database, payload json.RawMessage) error {
	return recordEvent(db.DB.WithContext(ctx), models.WebhookReceived, "webhook", "receive", "task-scheduler", payload)
}
