package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"notes-app/notes/config"
	"notes-app/notes/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	welcomeSubject = "Welcome to Notes App!"
	appName        = "Notes App"

	MethodTrigger = "trigger.dev"
	MethodDirect  = "direct"

	softSuccessMessage = "Signup recorded, email may be delayed"
)

//go:embed templates/welcome.html.tmpl templates/welcome.txt.tmpl
var welcomeTemplates embed.FS

var (
	welcomeHTML = htmltemplate.Must(htmltemplate.ParseFS(welcomeTemplates, "templates/welcome.html.tmpl"))
	welcomeText = texttemplate.Must(texttemplate.ParseFS(welcomeTemplates, "templates/welcome.txt.tmpl"))
)

type WelcomeRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// WelcomePayload is what the scheduler task and the direct sender both receive.
type WelcomePayload struct {
	Email            string `json:"email"`
	Name             string `json:"name,omitempty"`
	VerificationLink string `json:"verificationLink"`
}

// WelcomeResult is always a success from the caller's point of view. Message is set
// when delivery failed or was skipped.
type WelcomeResult struct {
	Success                   bool   `json:"success"`
	TaskID                    string `json:"taskId,omitempty"`
	Method                    string `json:"method,omitempty"`
	VerificationLinkGenerated *bool  `json:"verificationLinkGenerated,omitempty"`
	Message                   string `json:"message,omitempty"`
}

type WelcomeServiceInterface interface {
	Send(ctx context.Context, db *database.Database, req WelcomeRequest) WelcomeResult
}

type WelcomeService struct {
	identity    IdentityProvider
	scheduler   TaskTrigger
	mailer      EmailSender
	from        string
	appURL      string
	withoutLink string
	log         *zap.Logger
}

func NewWelcomeService(cfg config.Config, identity IdentityProvider, scheduler TaskTrigger, mailer EmailSender, log *zap.Logger) *WelcomeService {
	if log == nil {
		log = zap.NewNop()
	}
	policy := cfg.WelcomeWithoutLink
	if policy != config.WelcomeWithoutLinkSkip {
		policy = config.WelcomeWithoutLinkDegraded
	}
	return &WelcomeService{
		identity:    identity,
		scheduler:   scheduler,
		mailer:      mailer,
		from:        cfg.EmailFrom,
		appURL:      strings.TrimRight(cfg.AppURL, "/"),
		withoutLink: policy,
		log:         log,
	}
}

// Send requests a verification link when one is needed, then hands the welcome email to
// the task scheduler, falling back to sending it in-process. Provider failures are
// logged and reported as a soft success, never as an error.
func (s *WelcomeService) Send(ctx context.Context, db *database.Database, req WelcomeRequest) WelcomeResult {
	log := s.log.With(zap.String("email", req.Email))

	link, attempted := s.verificationLink(ctx, db, req, log)
	if attempted && link == "" && s.withoutLink == config.WelcomeWithoutLinkSkip {
		log.Warn("verification link unavailable, welcome email skipped")
		return softSuccess()
	}

	payload := WelcomePayload{
		Email:            req.Email,
		Name:             req.Name,
		VerificationLink: link,
	}

	if s.scheduler != nil {
		taskID, err := s.scheduler.Trigger(ctx, WelcomeEmailTaskID, payload)
		switch {
		case err == nil:
			log.Info("welcome email task triggered", zap.String("task_id", taskID))
			return WelcomeResult{Success: true, TaskID: taskID, Method: MethodTrigger}
		case errors.Is(err, ErrSchedulerDisabled):
		default:
			log.Warn("task scheduler failed, falling back to direct send", zap.Error(err))
		}
	}

	taskID, err := s.SendDirect(ctx, payload)
	if err != nil {
		log.Error("failed to send welcome email", zap.Error(err))
		return softSuccess()
	}

	generated := link != ""
	return WelcomeResult{
		Success:                   true,
		TaskID:                    taskID,
		Method:                    MethodDirect,
		VerificationLinkGenerated: &generated,
	}
}

// SendDirect renders the welcome email and sends it through the configured mailer.
func (s *WelcomeService) SendDirect(ctx context.Context, payload WelcomePayload) (string, error) {
	html, text, err := RenderWelcomeEmail(payload)
	if err != nil {
		return "", err
	}
	return s.mailer.Send(ctx, Email{
		From:    s.from,
		To:      payload.Email,
		Subject: welcomeSubject,
		HTML:    html,
		Text:    text,
	})
}

// verificationLink returns the link and whether generating one was attempted. Only
// unconfirmed users who supplied their password get one.
func (s *WelcomeService) verificationLink(ctx context.Context, db *database.Database, req WelcomeRequest, log *zap.Logger) (string, bool) {
	if req.UserID == "" || req.Password == "" || s.identity == nil {
		return "", false
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		log.Info("user already verified or user not found")
		return "", false
	}
	user, err := s.identity.GetUserByID(ctx, db, userID)
	if err != nil || user.IsConfirmed() {
		log.Info("user already verified or user not found")
		return "", false
	}

	link, err := s.identity.GenerateVerificationLink(ctx, db, req.Email, req.Password, s.appURL+"/notes?verified=1")
	if err != nil {
		log.Error("error generating verification link", zap.Error(err))
		return "", true
	}
	return link, true
}

func RenderWelcomeEmail(payload WelcomePayload) (string, string, error) {
	data := struct {
		AppName          string
		Name             string
		VerificationLink string
	}{appName, payload.Name, payload.VerificationLink}

	var html, text bytes.Buffer
	if err := welcomeHTML.Execute(&html, data); err != nil {
		return "", "", err
	}
	if err := welcomeText.Execute(&text, data); err != nil {
		return "", "", err
	}
	return html.String(), text.String(), nil
}

func softSuccess() WelcomeResult {
	return WelcomeResult{Success: true, Message: softSuccessMessage}
}
