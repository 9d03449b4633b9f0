package testutils

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"notes-app/notes/models"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

// MockEventRows creates mock SQL rows for events testing
func MockEventRows(events []models.Event) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "event", "version", "entity", "operation",
		"timestamp", "actor_id", "data", "status",
		"dispatched", "dispatched_at",
	})

	for _, event := range events {
		if event.ID == uuid.Nil {
			event.ID = uuid.New()
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now()
		}
		if event.Data == nil {
			event.Data = json.RawMessage(`{}`)
		}
		if event.Status == "" {
			event.Status = "pending"
		}

		rows.AddRow(
			event.ID.String(),
			event.Event,
			event.Version,
			event.Entity,
			event.Operation,
			event.Timestamp,
			event.ActorID,
			[]byte(event.Data),
			event.Status,
			event.Dispatched,
			nil,
		)
	}

	return rows
}

// MockNoteRows creates mock SQL rows for notes.
func MockNoteRows(notes ...models.Note) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "content", "state", "created_at", "updated_at"})
	for _, n := range notes {
		rows.AddRow(n.ID.String(), n.UserID.String(), n.Title, n.Content, string(n.State), n.CreatedAt, n.UpdatedAt)
	}
	return rows
}

func NewResult(lastInsertID, rowsAffected int64) driver.Result {
	return sqlmock.NewResult(lastInsertID, rowsAffected)
}
