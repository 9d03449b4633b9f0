package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteStateTransitions(t *testing.T) {
	testCases := []struct {
		from NoteState
		to   NoteState
		want bool
	}{
		{NoteActive, NoteSoftDeleted, true},
		{NoteActive, NotePurged, true},
		{NoteSoftDeleted, NotePurged, true},
		{NoteSoftDeleted, NoteActive, false},
		{NoteSoftDeleted, NoteSoftDeleted, false},
		{NotePurged, NoteActive, false},
		{NotePurged, NoteSoftDeleted, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransition(tc.to))
		})
	}

	assert.True(t, NoteActive.Stored())
	assert.True(t, NoteSoftDeleted.Stored())
	assert.False(t, NotePurged.Stored())
}

func TestStatesReaching(t *testing.T) {
	assert.Equal(t, []NoteState{NoteActive}, StatesReaching(NoteSoftDeleted))
	assert.Equal(t, []NoteState{NoteActive, NoteSoftDeleted}, StatesReaching(NotePurged))
	assert.Empty(t, StatesReaching(NoteActive))
}

func TestNoteJSON_RoundTrip(t *testing.T) {
	note := Note{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Title:     "Test Title",
		Content:   "Test Content",
		State:     NoteSoftDeleted,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 3, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(note)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, true, raw["deleted"])
	assert.Equal(t, "soft_deleted", raw["state"])

	var result Note
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, note, result)
}

func TestNoteUnmarshal_DeletedFlagOnly(t *testing.T) {
	data := `{
		"id": "550e8400-e29b-41d4-a716-446655440000",
		"user_id": "550e8400-e29b-41d4-a716-446655440001",
		"title": "Test Title",
		"content": "Test Content",
		"deleted": true
	}`

	var note Note
	require.NoError(t, json.Unmarshal([]byte(data), &note))
	assert.Equal(t, "Test Title", note.Title)
	assert.Equal(t, NoteSoftDeleted, note.State)
	assert.True(t, note.IsDeleted())
}

func TestNotePreview(t *testing.T) {
	short := Note{Content: "short"}
	assert.Equal(t, "short", short.Preview())

	long := Note{Content: strings.Repeat("é", 150)}
	preview := long.Preview()
	assert.True(t, strings.HasSuffix(preview, "..."))
	assert.Equal(t, 103, len([]rune(preview)))
}

func TestNoteDisplayTitle(t *testing.T) {
	assert.Equal(t, DefaultNoteTitle, Note{}.DisplayTitle())
	assert.Equal(t, "Groceries", Note{Title: "Groceries"}.DisplayTitle())
}

func TestNoteInputNormalized(t *testing.T) {
	in := NoteInput{}.Normalized()
	assert.Equal(t, DefaultNoteTitle, in.Title)
	assert.Equal(t, "", in.Content)

	in = NoteInput{Title: "A", Content: "B"}.Normalized()
	assert.Equal(t, "A", in.Title)
	assert.Equal(t, "B", in.Content)
}
