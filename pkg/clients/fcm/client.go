// Package fcm is a thin client for the Firebase Cloud Messaging HTTP
// API, used to deliver reminder pushes to farm workers' devices.
package fcm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"dairyherd/internal/config"
)

// Client exposes the FCM operations used by the application.
type Client interface {
	Send(ctx context.Context, req SendRequest) (*SendResponse, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds an FCM API client using the provided configuration
// values.
func NewClient(cfg config.FCMConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("Authorization", fmt.Sprintf("key=%s", cfg.ServerKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// SendRequest is a single-device push message.
type SendRequest struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// SendResponse mirrors the downstream send result.
type SendResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// apiError represents an FCM error payload.
type apiError struct {
	Error string `json:"error"`
}

// Send delivers one push notification.
func (c *APIClient) Send(ctx context.Context, req SendRequest) (*SendResponse, error) {
	payload := map[string]any{
		"to":       req.Token,
		"priority": "high",
		"notification": map[string]any{
			"title": req.Title,
			"body":  req.Body,
			"sound": "default",
		},
		"data": req.Data,
	}

	result := new(SendResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post("/fcm/send")
	if err != nil {
		return nil, fmt.Errorf("send push notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("fcm api error: status=%d, message=%s", resp.StatusCode(), apiErr.Error)
	}

	if result.Failure > 0 && len(result.Results) > 0 && result.Results[0].Error != "" {
		return nil, fmt.Errorf("fcm delivery failed: %s", result.Results[0].Error)
	}

	return result, nil
}
