package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"notes-app/notes/broker"
	"notes-app/notes/config"
	"notes-app/notes/database"
	"notes-app/notes/routes"
	"notes-app/notes/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := loadConfig()
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	db, err := database.Setup(cfg, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	b := broker.Connect(cfg.NATSURL, log)
	defer b.Close()

	eventHandler := services.NewEventHandlerService(db, b, log)
	eventHandler.Start()
	defer eventHandler.Stop()

	authService := services.NewAuthService(cfg.JWTSecret, cfg.SessionTTLHours, cfg.AppURL)

	var mailer services.EmailSender
	if cfg.ResendAPIKey != "" {
		mailer = services.NewResendMailer(cfg.ResendAPIKey, "", nil)
	} else {
		log.Warn("RESEND_API_KEY not set, welcome emails are only logged")
		mailer = services.NewLogMailer(log)
	}
	scheduler := services.NewTaskSchedulerClient(cfg.TriggerAPIKey, cfg.TriggerAPIURL, nil)

	router, err := routes.SetupRouter(routes.Dependencies{
		Config:   cfg,
		DB:       db,
		Log:      log,
		Notes:    services.NewNoteService(),
		Identity: authService,
		Welcome:  services.NewWelcomeService(cfg, authService, scheduler, mailer, log),
		Webhooks: services.NewWebhookService(cfg.TriggerSecretKey),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("app_url", cfg.AppURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
