package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"notes-app/notes/database"
	"notes-app/notes/models"
	"notes-app/notes/services"
	"notes-app/notes/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingRetention struct{}

func (failingRetention) Purge(ctx context.Context, db *database.Database) (services.PurgeReport, error) {
	return services.PurgeReport{}, errors.New("permission denied for table notes")
}

func TestRunCleanup(t *testing.T) {
	db := testutils.SetupSQLiteDB(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	owner := uuid.New()

	for _, created := range []time.Time{now.AddDate(0, 0, -120), now.AddDate(0, 0, -10)} {
		note := models.Note{ID: uuid.New(), UserID: owner, Title: "n", State: models.NoteActive, CreatedAt: created, UpdatedAt: created}
		require.NoError(t, db.DB.Create(&note).Error)
	}

	var out bytes.Buffer
	retention := services.NewRetentionServiceWithClock(90, func() time.Time { return now })
	require.NoError(t, runCleanup(context.Background(), &out, db, retention, zap.NewNop()))

	var report services.PurgeReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, int64(1), report.Deleted)
	assert.True(t, report.Cutoff.Equal(now.AddDate(0, 0, -90)))

	var left int64
	require.NoError(t, db.DB.Model(&models.Note{}).Count(&left).Error)
	assert.Equal(t, int64(1), left)
}

func TestRunCleanup_Failure(t *testing.T) {
	var out bytes.Buffer
	err := runCleanup(context.Background(), &out, nil, failingRetention{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Empty(t, out.String())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["cleanup"])

	flag := cleanupCmd.Flags().Lookup("days")
	require.NotNil(t, flag)
	assert.Equal(t, "90", flag.DefValue)
}
