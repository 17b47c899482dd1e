// internal/provider/client.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xiaoliu2354/huobao-canvas/internal/config"
	"github.com/xiaoliu2354/huobao-canvas/internal/task"
)

// Client talks to an OpenAI-compatible generation API. It implements the
// task transport contracts: streamed chat, single-shot images and the
// submit/poll video pair.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client against the given base URL. logger may be nil.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		// No overall timeout: chat streams and video polls are long-lived;
		// cancellation happens through the request context.
		http:   &http.Client{},
		logger: logger,
	}
}

// FromSettings builds a client from the stored credential and base URL.
func FromSettings(settings *config.Settings, logger *zap.Logger) *Client {
	return NewClient(settings.BaseURL(), settings.APIKey(), logger)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

// apiError extracts the provider's error message from a non-2xx body.
func apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, envelope.Error.Message)
		}
		if envelope.Message != "" {
			return fmt.Errorf("api error (%d): %s", resp.StatusCode, envelope.Message)
		}
	}
	return fmt.Errorf("api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GenerateImage performs a single-shot image generation.
func (c *Client) GenerateImage(ctx context.Context, req task.ImageRequest, opts task.CallOptions) (*task.ImageResponse, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = task.DefaultImageEndpoint
	}
	var response task.ImageResponse
	if err := c.postJSON(ctx, endpoint, req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// CreateVideoTask submits a video generation job.
func (c *Client) CreateVideoTask(ctx context.Context, req task.VideoRequest, opts task.CallOptions) (*task.VideoSubmission, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = task.DefaultVideoEndpoint
	}
	var submission task.VideoSubmission
	if err := c.postJSON(ctx, endpoint, req, &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

// GetVideoTaskStatus queries one poll answer for an asynchronous video job.
func (c *Client) GetVideoTaskStatus(ctx context.Context, taskID string) (*task.VideoStatus, error) {
	var status task.VideoStatus
	if err := c.getJSON(ctx, task.DefaultVideoEndpoint+"/"+taskID, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
