package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTaskSchedulerClient_Trigger(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"run_abc"}`))
	}))
	defer server.Close()

	client := NewTaskSchedulerClient("tr_key", server.URL+"/", server.Client())
	id, err := client.Trigger(context.Background(), WelcomeEmailTaskID, WelcomePayload{
		Email:            "a@example.com",
		Name:             "A",
		VerificationLink: "http://link",
	})

	require.NoError(t, err)
	assert.Equal(t, "run_abc", id)
	assert.Equal(t, "/api/v1/tasks/send-welcome-email/trigger", gotPath)
	assert.Equal(t, "Bearer tr_key", gotAuth)
	assert.Equal(t, map[string]string{
		"email":            "a@example.com",
		"name":             "A",
		"verificationLink": "http://link",
	}, gotBody["payload"])
}

func TestTaskSchedulerClient_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewTaskSchedulerClient("tr_key", server.URL, server.Client()).Trigger(context.Background(), "task", nil)
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = NewTaskSchedulerClient("", server.URL, server.Client()).Trigger(context.Background(), "task", nil)
	assert.ErrorIs(t, err, ErrSchedulerDisabled)
}

func TestResendMailer_Send(t *testing.T) {
	var got resendRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"email_xyz"}`))
	}))
	defer server.Close()

	mailer := NewResendMailer("re_key", server.URL, server.Client())
	id, err := mailer.Send(context.Background(), Email{
		From:    "Notes App <noreply@notes.test>",
		To:      "a@example.com",
		Subject: "Hello",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	})

	require.NoError(t, err)
	assert.Equal(t, "email_xyz", id)
	assert.Equal(t, "Bearer re_key", gotAuth)
	assert.Equal(t, []string{"a@example.com"}, got.To)
	assert.Equal(t, "Hello", got.Subject)
}

func TestResendMailer_RejectedByProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer server.Close()

	_, err := NewResendMailer("re_key", server.URL, server.Client()).Send(context.Background(), Email{To: "a@example.com"})
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "422")
}

func TestLogMailer_Send(t *testing.T) {
	id, err := NewLogMailer(zap.NewNop()).Send(context.Background(), Email{To: "a@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
