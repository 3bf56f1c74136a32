package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"whisprdraw-backend/internal/apperror"
	"whisprdraw-backend/internal/imaging"
)

const (
	StatusInQueue    = "IN_QUEUE"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

type Options struct {
	BaseURL      string
	APIKey       string
	Model        string
	HTTPClient   *http.Client
	PollInterval time.Duration
	MaxPolls     int
	Backoffs     []time.Duration
	Logger       *zerolog.Logger
}

// Client renders images through the fal.ai queue API: submit, poll status,
// then fetch the result.
type Client struct {
	baseURL      string
	apiKey       string
	model        string
	httpClient   *http.Client
	pollInterval time.Duration
	maxPolls     int
	backoffs     []time.Duration
	logger       zerolog.Logger
}

type RenderRequest struct {
	Prompt    string `json:"prompt"`
	ImageSize string `json:"image_size,omitempty"`
	NumImages int    `json:"num_images,omitempty"`
}

type SubmitResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

type LogEntry struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type StatusResponse struct {
	Status        string     `json:"status"`
	QueuePosition int        `json:"queue_position"`
	Logs          []LogEntry `json:"logs"`
}

type Image struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

type ResultResponse struct {
	Images []Image `json:"images"`
	Prompt string  `json:"prompt"`
}

func NewClient(opts Options) *Client {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://queue.fal.run"
	}
	model := strings.Trim(opts.Model, "/")
	if model == "" {
		model = "fal-ai/flux/schnell"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	maxPolls := opts.MaxPolls
	if maxPolls <= 0 {
		maxPolls = 300
	}
	backoffs := opts.Backoffs
	if backoffs == nil {
		backoffs = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Client{
		baseURL:      baseURL,
		apiKey:       opts.APIKey,
		model:        model,
		httpClient:   httpClient,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
		backoffs:     backoffs,
		logger:       logger.With().Str("component", "fal").Logger(),
	}
}

func (c *Client) Model() string {
	return c.model
}

// Render runs one prompt through the queue and returns the URL of the first
// rendered image. The URL may be a data URI.
func (c *Client) Render(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", apperror.Downstream("icon generation failed", fmt.Errorf("FAL_API_KEY is not configured"))
	}

	var submitted *SubmitResponse
	err := c.RetryWithBackoff(ctx, func() error {
		var err error
		submitted, err = c.Submit(ctx, RenderRequest{Prompt: prompt, ImageSize: "square_hd", NumImages: 1})
		return err
	}, len(c.backoffs))
	if err != nil {
		return "", apperror.Downstream("icon generation failed", err)
	}

	if err := c.waitForCompletion(ctx, submitted); err != nil {
		return "", apperror.Downstream("icon generation failed", err)
	}

	result, err := c.GetResult(ctx, submitted)
	if err != nil {
		return "", apperror.Downstream("icon generation failed", err)
	}
	if len(result.Images) == 0 || result.Images[0].URL == "" {
		return "", apperror.Downstream("icon generation failed",
			fmt.Errorf("request %s returned no images", submitted.RequestID))
	}

	return result.Images[0].URL, nil
}

func (c *Client) Submit(ctx context.Context, renderReq RenderRequest) (*SubmitResponse, error) {
	jsonData, err := json.Marshal(renderReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result SubmitResponse
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("failed to submit request: %w", err)
	}
	if result.RequestID == "" {
		return nil, fmt.Errorf("request_id is empty in submit response")
	}

	c.logger.Debug().Str("request_id", result.RequestID).Msg("submitted render request")
	return &result, nil
}

func (c *Client) GetStatus(ctx context.Context, submitted *SubmitResponse) (*StatusResponse, error) {
	url := submitted.StatusURL
	if url == "" {
		url = c.requestURL(submitted.RequestID) + "/status"
	}
	url += "?logs=1"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result StatusResponse
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("failed to get request status: %w", err)
	}
	return &result, nil
}

func (c *Client) GetResult(ctx context.Context, submitted *SubmitResponse) (*ResultResponse, error) {
	url := submitted.ResponseURL
	if url == "" {
		url = c.requestURL(submitted.RequestID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result ResultResponse
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("failed to get request result: %w", err)
	}
	return &result, nil
}

// waitForCompletion polls until the request completes, logging each new
// progress line once.
func (c *Client) waitForCompletion(ctx context.Context, submitted *SubmitResponse) error {
	seen := 0
	for i := 0; i < c.maxPolls; i++ {
		status, err := c.GetStatus(ctx, submitted)
		if err != nil {
			return err
		}

		for ; seen < len(status.Logs); seen++ {
			c.logger.Info().
				Str("request_id", submitted.RequestID).
				Msg(status.Logs[seen].Message)
		}

		if status.Status == StatusCompleted {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
	return fmt.Errorf("request %s did not complete after %d polls", submitted.RequestID, c.maxPolls)
}

// requestURL drops the model's sub path: queue request routes live under
// the owner/app prefix only.
func (c *Client) requestURL(requestID string) string {
	appID := c.model
	if parts := strings.Split(c.model, "/"); len(parts) > 2 {
		appID = strings.Join(parts[:2], "/")
	}
	return c.baseURL + "/" + appID + "/requests/" + requestID
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	return nil
}

// DownloadFile fetches the bytes behind url, decoding data URIs in place.
func (c *Client) DownloadFile(ctx context.Context, downloadURL string) ([]byte, error) {
	if strings.HasPrefix(downloadURL, "data:") {
		return imaging.DecodeBase64(downloadURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to download file: status %d, body: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

// RetryWithBackoff executes fn up to maxRetries times, waiting between
// attempts according to the configured backoff schedule. It stops early on
// errors that a retry cannot fix and when ctx is done.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}

		lastErr = err
		if i < maxRetries-1 && i < len(c.backoffs) {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry aborted: %w", errors.Join(ctx.Err(), lastErr))
			case <-time.After(c.backoffs[i]):
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// StatusError is a non-2xx answer from the fal API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d, body: %s", e.StatusCode, e.Body)
}

// retryable reports whether err may succeed on another attempt: transport
// failures, 5xx answers and 429.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}
