package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"notes-app/notes/database"
	"notes-app/notes/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var retentionDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Permanently delete notes older than the retention period",
	Long: `Cleanup hard-deletes every note created before the retention cutoff, active or
soft-deleted, for all users, along with dispatched events older than the cutoff.
It connects with DATABASE_SERVICE_URL when set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := loadConfig()
		defer log.Sync()

		db, err := database.Setup(cfg, cfg.ServiceDatabaseURL())
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		return runCleanup(cmd.Context(), cmd.OutOrStdout(), db, services.NewRetentionService(retentionDays), log)
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().IntVar(&retentionDays, "days", services.DefaultRetentionDays, "Retention period in days")
}

func runCleanup(ctx context.Context, out io.Writer, db *database.Database, retention services.RetentionServiceInterface, log *zap.Logger) error {
	report, err := retention.Purge(ctx, db)
	if err != nil {
		log.Error("cleanup failed", zap.Error(err))
		return fmt.Errorf("cleanup failed: %w", err)
	}

	log.Info("cleanup finished",
		zap.Time("cutoff", report.Cutoff),
		zap.Int64("deleted_count", report.Deleted),
		zap.Int64("events_deleted", report.EventsDeleted))

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
