package main

import (
	"fmt"
	"os"

	"notes-app/notes/config"
	"notes-app/notes/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "notes",
	Short: "Notes app server and maintenance commands",
	Long: `Notes is a small note-taking web app. Run "notes serve" for the web server
and "notes cleanup" from a scheduler to apply the retention policy.`,
	SilenceUsage: true,
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig reads the configuration and builds the matching logger.
func loadConfig() (config.Config, *zap.Logger) {
	cfg := config.Load()
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return cfg, logger.Must(level, cfg.IsDevelopment())
}
