package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const DefaultNoteTitle = "Untitled Note"

// NoteState is the lifecycle tag of a note.
//
//	active ──► soft_deleted ──► purged
//	   └──────────────────────────▲
//
// Purging is driven by age alone, so it is reachable from both stored states.
type NoteState string

const (
	NoteActive      NoteState = "active"
	NoteSoftDeleted NoteState = "soft_deleted"
	NotePurged      NoteState = "purged"
)

var noteTransitions = map[NoteState][]NoteState{
	NoteActive:      {NoteSoftDeleted, NotePurged},
	NoteSoftDeleted: {NotePurged},
}

// CanTransition reports whether a note in state s may move to state to.
func (s NoteState) CanTransition(to NoteState) bool {
	for _, next := range noteTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s NoteState) Value() (driver.Value, error) {
	return string(s), nil
}

var storedStates = []NoteState{NoteActive, NoteSoftDeleted}

// Stored reports whether notes in this state still have a row.
func (s NoteState) Stored() bool {
	for _, stored := range storedStates {
		if s == stored {
			return true
		}
	}
	return false
}

// StatesReaching lists the stored states a note may leave for target.
func StatesReaching(target NoteState) []NoteState {
	var states []NoteState
	for _, s := range storedStates {
		if s.CanTransition(target) {
			states = append(states, s)
		}
	}
	return states
}

type Note struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_notes_owner_state,priority:1" json:"user_id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	State     NoteState `gorm:"type:varchar(16);not null;default:'active';index:idx_notes_owner_state,priority:2" json:"state"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// IsDeleted mirrors the deleted flag of the record: anything but active is deleted.
func (n Note) IsDeleted() bool {
	return n.State != NoteActive
}

// Preview returns the first 100 characters of the content, with an ellipsis when cut.
func (n Note) Preview() string {
	runes := []rune(n.Content)
	if len(runes) <= 100 {
		return n.Content
	}
	return string(runes[:100]) + "..."
}

// DisplayTitle falls back to the default title for notes stored with an empty one.
func (n Note) DisplayTitle() string {
	if n.Title == "" {
		return DefaultNoteTitle
	}
	return n.Title
}

type noteJSON struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	State     NoteState `json:"state"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n Note) MarshalJSON() ([]byte, error) {
	return json.Marshal(noteJSON{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Content:   n.Content,
		State:     n.State,
		Deleted:   n.IsDeleted(),
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	})
}

func (n *Note) UnmarshalJSON(data []byte) error {
	var raw noteJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Note{
		ID:        raw.ID,
		UserID:    raw.UserID,
		Title:     raw.Title,
		Content:   raw.Content,
		State:     raw.State,
		CreatedAt: raw.CreatedAt,
		UpdatedAt: raw.UpdatedAt,
	}
	if n.State == "" {
		n.State = NoteActive
		if raw.Deleted {
			n.State = NoteSoftDeleted
		}
	}
	return nil
}

// NoteInput is the writable part of a note as submitted by its owner.
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Normalized applies the write defaults: an empty title becomes DefaultNoteTitle.
func (in NoteInput) Normalized() NoteInput {
	if in.Title == "" {
		in.Title = DefaultNoteTitle
	}
	return in
}
