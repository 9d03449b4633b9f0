package services

import (
	"context"
	"time"

	"notes-app/notes/database"
	"notes-app/notes/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultRetentionDays is how long a note may live before the cleanup job removes it.
const DefaultRetentionDays = 90

type RetentionServiceInterface interface {
	Purge(ctx context.Context, db *database.Database) (PurgeReport, error)
}

// PurgeReport describes one retention run. ByState counts the lifecycle state each purged
// note was in, showing that active notes are purged alongside soft-deleted ones.
//
// EventsDeleted counts dispatched outbox rows older than the cutoff removed in the same run.
type PurgeReport struct {
	Cutoff        time.Time                  `json:"cutoff"`
	Deleted       int64                      `json:"deleted_count"`
	ByState       map[models.NoteState]int64 `json:"by_state"`
	EventsDeleted int64                      `json:"events_deleted"`
}

type stateCount struct {
	State models.NoteState
	Count int64
}

type RetentionService struct {
	days int
	now  func() time.Time
}

func NewRetentionService(days int) *RetentionService {
	return NewRetentionServiceWithClock(days, func() time.Time { return time.Now().UTC() })
}

func NewRetentionServiceWithClock(days int, now func() time.Time) *RetentionService {
	if days <= 0 {
		days = DefaultRetentionDays
	}
	return &RetentionService{days: days, now: now}
}

// Cutoff is the creation time before which notes are purged.
func (s *RetentionService) Cutoff() time.Time {
	return s.now().AddDate(0, 0, -s.days)
}

// Purge hard-deletes every note created strictly before the cutoff, whoever owns it and
// whichever stored state it is in. Dispatched events past the cutoff go with them. It
// must run with credentials that can see all rows.
func (s *RetentionService) Purge(ctx context.Context, db *database.Database) (PurgeReport, error) {
	report := PurgeReport{
		Cutoff:  s.Cutoff(),
		ByState: map[models.NoteState]int64{},
	}

	purgeable := models.StatesReaching(models.NotePurged)

	err := db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counts []stateCount
		err := tx.Model(&models.Note{}).
			Select("state, count(*) AS count").
			Where("created_at < ? AND state IN ?", report.Cutoff, purgeable).
			Group("state").
			Scan(&counts).Error
		if err != nil {
			return err
		}
		for _, c := range counts {
			report.ByState[c.State] = c.Count
		}

		result := tx.Where("created_at < ? AND state IN ?", report.Cutoff, purgeable).Delete(&models.Note{})
		if result.Error != nil {
			return result.Error
		}
		report.Deleted = result.RowsAffected

		events := tx.Where("dispatched = ?", true).
			Where(clause.Lt{Column: clause.Column{Name: "timestamp"}, Value: report.Cutoff}).
			Delete(&models.Event{})
		if events.Error != nil {
			return events.Error
		}
		report.EventsDeleted = events.RowsAffected

		return recordEvent(tx, models.NotesPurged, "note", "purge", "retention", map[string]interface{}{
			"cutoff":        report.Cutoff,
			"deleted_count": report.Deleted,
			"by_state":      report.ByState,
		})
	})
	if err != nil {
		return PurgeReport{}, err
	}
	return report, nil
}
