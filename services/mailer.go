package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultResendURL = "https://api.resend.com"

type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// EmailSender delivers one message and returns the provider's id for it.
type EmailSender interface {
	Send(ctx context.Context, email Email) (string, error)
}

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewResendMailer(apiKey, baseURL string, client *http.Client) *ResendMailer {
	if baseURL == "" {
		baseURL = defaultResendURL
	}
	return &ResendMailer{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: defaultHTTPClient(client),
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

func (m *ResendMailer) Send(ctx context.Context, email Email) (string, error) {
	var resp resendResponse
	err := postJSON(ctx, m.httpClient, m.baseURL+"/emails", m.apiKey, resendRequest{
		From:    email.From,
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    email.HTML,
		Text:    email.Text,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// LogMailer writes messages to the log instead of sending them. Used when no email
// provider is configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, email Email) (string, error) {
	id := uuid.NewString()
	m.log.Info("email not sent, no provider configured",
		zap.String("id", id),
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.String("text", email.Text))
	return id, nil
}
