package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const WelcomeEmailTaskID = "send-welcome-email"

var ErrSchedulerDisabled = errors.New("task scheduler not configured")

// TaskTrigger starts a task on the external scheduler and returns the run id.
type TaskTrigger interface {
	Trigger(ctx context.Context, taskID string, payload interface{}) (string, error)
}

type TaskSchedulerClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewTaskSchedulerClient(apiKey, baseURL string, client *http.Client) *TaskSchedulerClient {
	return &TaskSchedulerClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: defaultHTTPClient(client),
	}
}

type triggerRequest struct {
	Payload interface{} `json:"payload"`
}

type triggerResponse struct {
	ID string `json:"id"`
}

// Trigger POSTs to {base}/api/v1/tasks/{taskID}/trigger. Without an API key it fails
// with ErrSchedulerDisabled and makes no request.
func (c *TaskSchedulerClient) Trigger(ctx context.Context, taskID string, payload interface{}) (string, error) {
	if c.apiKey == "" {
		return "", ErrSchedulerDisabled
	}

	endpoint := fmt.Sprintf("%s/api/v1/tasks/%s/trigger", c.baseURL, url.PathEscape(taskID))
	var resp triggerResponse
	if err := postJSON(ctx, c.httpClient, endpoint, c.apiKey, triggerRequest{Payload: payload}, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}
