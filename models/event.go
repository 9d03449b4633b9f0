package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	NoteCreated     EventType = "note.created"
	NoteUpdated     EventType = "note.updated"
	NoteDeleted     EventType = "note.deleted"
	NotesPurged     EventType = "notes.purged"
	WebhookReceived EventType = "webhook.received"
	UserCreated     EventType = "user.created"
)

// Event is an outbox row written in the same transaction as the change it describes.
type Event struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Event        string          `gorm:"not null;index" json:"event"`
	Version      int             `gorm:"not null" json:"version"`
	Entity       string          `gorm:"not null" json:"entity"`
	Operation    string          `gorm:"not null" json:"operation"`
	Timestamp    time.Time       `gorm:"not null" json:"timestamp"`
	ActorID      string          `json:"actor_id"`
	Data         json.RawMessage `gorm:"type:jsonb;not null" json:"data"`
	Status       string          `gorm:"not null;default:'pending'" json:"status"`
	Dispatched   bool            `gorm:"not null;default:false;index" json:"dispatched"`
	DispatchedAt *time.Time      `json:"dispatched_at,omitempty"`
}

func NewEvent(event EventType, entity, operation, actorID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Event:     string(event),
		Version:   1,
		Entity:    entity,
		Operation: operation,
		Timestamp: time.Now().UTC(),
		ActorID:   actorID,
		Data:      dataBytes,
		Status:    "pending",
	}, nil
}
