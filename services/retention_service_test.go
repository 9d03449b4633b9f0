package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"notes-app/notes/database"
	"notes-app/notes/models"
	"notes-app/notes/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func insertAgedNote(t require.TestingT, db *database.Database, owner uuid.UUID, createdAt time.Time, state models.NoteState) models.Note {
	note := models.Note{
		ID:        uuid.New(),
		UserID:    owner,
		Title:     "aged",
		State:     state,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.DB.Create(&note).Error)
	return note
}

func remainingNoteIDs(t require.TestingT, db *database.Database) map[uuid.UUID]bool {
	var notes []models.Note
	require.NoError(t, db.DB.Find(&notes).Error)
	ids := make(map[uuid.UUID]bool, len(notes))
	for _, n := range notes {
		ids[n.ID] = true
	}
	return ids
}

func TestRetentionService_Cutoff(t *testing.T) {
	svc := NewRetentionServiceWithClock(0, func() time.Time { return fixedNow })
	assert.Equal(t, fixedNow.AddDate(0, 0, -90), svc.Cutoff())

	svc = NewRetentionServiceWithClock(7, func() time.Time { return fixedNow })
	assert.Equal(t, fixedNow.AddDate(0, 0, -7), svc.Cutoff())
}

func TestPurge_RemovesOnlyOlderThanRetention(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	svc := NewRetentionServiceWithClock(DefaultRetentionDays, func() time.Time { return fixedNow })
	cutoff := svc.Cutoff()
	owner, other := uuid.New(), uuid.New()

	oldActive := insertAgedNote(t, db, owner, cutoff.Add(-time.Hour), models.NoteActive)
	oldDeleted := insertAgedNote(t, db, other, cutoff.AddDate(0, 0, -30), models.NoteSoftDeleted)
	atCutoff := insertAgedNote(t, db, owner, cutoff, models.NoteActive)
	recentDeleted := insertAgedNote(t, db, owner, fixedNow.AddDate(0, 0, -1), models.NoteSoftDeleted)
	recentActive := insertAgedNote(t, db, other, fixedNow, models.NoteActive)

	report, err := svc.Purge(context.Background(), db)
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.Deleted)
	assert.Equal(t, int64(1), report.ByState[models.NoteActive])
	assert.Equal(t, int64(1), report.ByState[models.NoteSoftDeleted])
	assert.True(t, report.Cutoff.Equal(cutoff))

	remaining := remainingNoteIDs(t, db)
	assert.False(t, remaining[oldActive.ID])
	assert.False(t, remaining[oldDeleted.ID])
	assert.True(t, remaining[atCutoff.ID])
	assert.True(t, remaining[recentDeleted.ID])
	assert.True(t, remaining[recentActive.ID])
	assert.Equal(t, int64(1), countEvents(t, db, models.NotesPurged))
	for state := range report.ByState {
		assert.Contains(t, models.StatesReaching(models.NotePurged), state)
	}
}

func insertOutboxEvent(t *testing.T, db *database.Database, at time.Time, dispatched bool) uuid.UUID {
	t.Helper()
	event := models.Event{
		ID:         uuid.New(),
		Event:      string(models.WebhookReceived),
		Version:    1,
		Entity:     "webhook",
		Operation:  "receive",
		Timestamp:  at,
		Data:       json.RawMessage(`{"payload":"large"}`),
		Status:     "pending",
		Dispatched: dispatched,
	}
	require.NoError(t, db.DB.Create(&event).Error)
	return event.ID
}

func TestPurge_PrunesDispatchedEvents(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	svc := NewRetentionServiceWithClock(DefaultRetentionDays, func() time.Time { return fixedNow })
	cutoff := svc.Cutoff()

	oldDispatched := insertOutboxEvent(t, db, cutoff.Add(-time.Hour), true)
	oldPending := insertOutboxEvent(t, db, cutoff.Add(-time.Hour), false)
	recentDispatched := insertOutboxEvent(t, db, fixedNow.Add(-time.Hour), true)

	report, err := svc.Purge(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.EventsDeleted)

	exists := func(id uuid.UUID) bool {
		var count int64
		require.NoError(t, db.DB.Model(&models.Event{}).Where("id = ?", id).Count(&count).Error)
		return count == 1
	}
	assert.False(t, exists(oldDispatched))
	assert.True(t, exists(oldPending))
	assert.True(t, exists(recentDispatched))
	assert.Equal(t, int64(1), countEvents(t, db, models.NotesPurged))
}

func TestPurge_NothingToDelete(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	svc := NewRetentionService(DefaultRetentionDays)

	report, err := svc.Purge(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.Deleted)
	assert.Empty(t, report.ByState)
}

func TestPurge_Property(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	svc := NewRetentionServiceWithClock(DefaultRetentionDays, func() time.Time { return fixedNow })
	cutoff := svc.Cutoff()

	rapid.Check(t, func(rt *rapid.T) {
		require.NoError(rt, db.DB.Where("1 = 1").Delete(&models.Note{}).Error)

		ageHours := rapid.SliceOfN(rapid.IntRange(0, 24*200), 0, 20).Draw(rt, "ageHours")
		deletedFlags := rapid.SliceOfN(rapid.Bool(), len(ageHours), len(ageHours)).Draw(rt, "deleted")

		expectKept := map[uuid.UUID]bool{}
		var expectPurged int64
		for i, hours := range ageHours {
			state := models.NoteActive
			if deletedFlags[i] {
				state = models.NoteSoftDeleted
			}
			createdAt := fixedNow.Add(-time.Duration(hours) * time.Hour)
			note := insertAgedNote(rt, db, uuid.New(), createdAt, state)
			if createdAt.Before(cutoff) {
				expectPurged++
			} else {
				expectKept[note.ID] = true
			}
		}

		report, err := svc.Purge(context.Background(), db)
		require.NoError(rt, err)
		require.Equal(rt, expectPurged, report.Deleted)
		require.Equal(rt, expectKept, remainingNoteIDs(rt, db))
	})
}
