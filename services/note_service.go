package services

import (
	"context"
	"errors"
	"time"

	"notes-app/notes/database"
	"notes-app/notes/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteServiceInterface interface {
	ListNotes(ctx context.Context, db *database.Database, userID uuid.UUID) ([]models.Note, error)
	GetNote(ctx context.Context, db *database.Database, userID uuid.UUID, id string) (models.Note, error)
	CreateNote(ctx context.Context, db *database.Database, userID uuid.UUID, input models.NoteInput) (models.Note, error)
	UpdateNote(ctx context.Context, db *database.Database, userID uuid.UUID, id string, input models.NoteInput) (models.Note, error)
	DeleteNote(ctx context.Context, db *database.Database, userID uuid.UUID, id string) error
}

type NoteService struct {
	now func() time.Time
}

// NewNoteService creates a new instance of NoteService
func NewNoteService() *NoteService {
	return &NoteService{now: func() time.Time { return time.Now().UTC() }}
}

// NewNoteServiceWithClock is NewNoteService with a fixed time source.
func NewNoteServiceWithClock(now func() time.Time) *NoteService {
	return &NoteService{now: now}
}

func (s *NoteService) ListNotes(ctx context.Context, db *database.Database, userID uuid.UUID) ([]models.Note, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	notes := []models.Note{}
	err := db.DB.WithContext(ctx).
		Where("user_id = ? AND state = ?", userID, models.NoteActive).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// GetNote returns the caller's note when it is still active. Foreign, soft-deleted and
// missing notes all produce ErrNoteNotFound.
func (s *NoteService) GetNote(ctx context.Context, db *database.Database, userID uuid.UUID, id string) (models.Note, error) {
	if userID == uuid.Nil {
		return models.Note{}, ErrUnauthorized
	}
	noteID, err := uuid.Parse(id)
	if err != nil {
		return models.Note{}, ErrNoteNotFound
	}

	var note models.Note
	err = db.DB.WithContext(ctx).
		Where("id = ? AND user_id = ? AND state = ?", noteID, userID, models.NoteActive).
		Take(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, err
	}
	return note, nil
}

func (s *NoteService) CreateNote(ctx context.Context, db *database.Database, userID uuid.UUID, input models.NoteInput) (models.Note, error) {
	if userID == uuid.Nil {
		return models.Note{}, ErrUnauthorized
	}

	input = input.Normalized()
	now := s.now()
	note := models.Note{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     input.Title,
		Content:   input.Content,
		State:     models.NoteActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&note).Error; err != nil {
			return err
		}
		return recordEvent(tx, models.NoteCreated, "note", "create", userID.String(), map[string]interface{}{
			"note_id":    note.ID.String(),
			"user_id":    note.UserID.String(),
			"title":      note.Title,
			"created_at": note.CreatedAt,
		})
	})
	if err != nil {
		return models.Note{}, err
	}
	return note, nil
}

// UpdateNote rewrites title and content with one UPDATE whose WHERE clause restates the
// ownership and active-state requirements, so no write can land on a foreign or deleted
// note. A miss is classified afterwards for the error returned.
func (s *NoteService) UpdateNote(ctx context.Context, db *database.Database, userID uuid.UUID, id string, input models.NoteInput) (models.Note, error) {
	if userID == uuid.Nil {
		return models.Note{}, ErrUnauthorized
	}
	noteID, err := uuid.Parse(id)
	if err != nil {
		return models.Note{}, ErrNoteNotFound
	}

	input = input.Normalized()
	now := s.now()

	var note models.Note
	err = db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Note{}).
			Where("id = ? AND user_id = ? AND state = ?", noteID, userID, models.NoteActive).
			Updates(map[string]interface{}{
				"title":      input.Title,
				"content":    input.Content,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return classifyMiss(tx, noteID, userID, ErrCannotEditDeleted)
		}

		if err := tx.Where("id = ? AND user_id = ?", noteID, userID).Take(&note).Error; err != nil {
			return err
		}

		return recordEvent(tx, models.NoteUpdated, "note", "update", userID.String(), map[string]interface{}{
			"note_id":    note.ID.String(),
			"user_id":    note.UserID.String(),
			"title":      note.Title,
			"updated_at": note.UpdatedAt,
		})
	})
	if err != nil {
		return models.Note{}, err
	}
	return note, nil
}

// DeleteNote moves an active note owned by userID to the soft-deleted state.
func (s *NoteService) DeleteNote(ctx context.Context, db *database.Database, userID uuid.UUID, id string) error {
	if userID == uuid.Nil {
		return ErrUnauthorized
	}
	noteID, err := uuid.Parse(id)
	if err != nil {
		return ErrNoteNotFound
	}

	now := s.now()
	return db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Note{}).
			Where("id = ? AND user_id = ? AND state = ?", noteID, userID, models.NoteActive).
			Updates(map[string]interface{}{
				"state":      models.NoteSoftDeleted,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return classifyMiss(tx, noteID, userID, ErrAlreadyDeleted)
		}

		return recordEvent(tx, models.NoteDeleted, "note", "delete", userID.String(), map[string]interface{}{
			"note_id": noteID.String(),
			"user_id": userID.String(),
		})
	})
}

// classifyMiss explains why a guarded write touched no row. Only the owner learns that a
// note is soft-deleted; everyone else sees ErrNoteNotFound.
func classifyMiss(tx *gorm.DB, noteID, userID uuid.UUID, deletedErr error) error {
	var existing models.Note
	err := tx.Select("id", "user_id", "state").Where("id = ?", noteID).Take(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoteNotFound
		}
		return err
	}
	if existing.UserID != userID {
		return ErrNoteNotFound
	}
	// A stored note that can no longer be soft-deleted has already left the active state.
	if existing.State.Stored() && !existing.State.CanTransition(models.NoteSoftDeleted) {
		return deletedErr
	}
	return ErrNoteNotFound
}

func recordEvent(tx *gorm.DB, eventType models.EventType, entity, operation, actorID string, data interface{}) error {
	event, err := models.NewEvent(eventType, entity, operation, actorID, data)
	if err != nil {
		return err
	}
	return tx.Create(event).Error
}
