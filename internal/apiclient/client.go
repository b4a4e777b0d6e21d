package apiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/imroc/req/v3"
	"github.com/mmcdole/seerctl/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	apiPrefix      = "/api/v1"
	userAgent      = "seerctl/1.0"
	headerAPIKey   = "X-Api-Key"
)

const (
	pathConnection    = "/settings/connection"
	pathDevices       = "/settings/connection/devices"
	pathLibraries     = "/settings/connection/libraries"
	pathSync          = "/settings/connection/sync"
	pathNotifications = "/settings/notifications/{userId}"
)

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// Unwrap lets callers match any API error with domain.ErrRequestFailed
func (e *APIError) Unwrap() error { return domain.ErrRequestFailed }

// Options tunes a Client
type Options struct {
	Timeout    time.Duration
	RetryCount int // Retries for idempotent reads; writes are never retried
	Logger     *slog.Logger
}

// Client implements domain.SettingsAPI over HTTP
type Client struct {
	baseURL    string
	httpClient *req.Client
	retryCount int
	logger     *slog.Logger
}

var _ domain.SettingsAPI = (*Client)(nil)

// NewClient creates a new settings API client
func NewClient(baseURL, apiKey string, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := req.C().
		SetBaseURL(baseURL+apiPrefix).
		SetTimeout(timeout).
		SetUserAgent(userAgent).
		SetCommonHeader("Accept", "application/json").
		SetCommonHeader(headerAPIKey, apiKey).
		SetCommonErrorResult(&ErrorBody{}).
		SetJsonMarshal(json.Marshal).
		SetJsonUnmarshal(json.Unmarshal)

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		retryCount: opts.RetryCount,
		logger:     logger,
	}
}

// BaseURL returns the server URL the client was built for
func (c *Client) BaseURL() string { return c.baseURL }

// read builds an idempotent request that may be retried
func (c *Client) read(ctx context.Context) *req.Request {
	r := c.httpClient.R().SetContext(ctx)
	if c.retryCount > 0 {
		r.SetRetryCount(c.retryCount).SetRetryFixedInterval(500 * time.Millisecond)
	}
	return r
}

func (c *Client) write(ctx context.Context) *req.Request {
	return c.httpClient.R().SetContext(ctx)
}

// check classifies the outcome of a request
func (c *Client) check(ctx context.Context, resp *req.Response, err error, op string) error {
	if resp != nil && resp.Response != nil {
		c.logger.Debug("api response", "op", op, "status", resp.StatusCode)

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%s: %w", op, domain.ErrAuthFailed)
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			apiErr := &APIError{Status: resp.StatusCode}
			if body, ok := resp.ErrorResult().(*ErrorBody); ok && body != nil {
				apiErr.Message = body.Message
				if apiErr.Message == "" {
					apiErr.Message = body.Error
				}
			}
			c.logger.Error("api request error", "op", op, "status", resp.StatusCode, "message", apiErr.Message)
			return fmt.Errorf("%s: %w", op, apiErr)
		}

		if err != nil {
			c.logger.Error("JSON parse error", "op", op, "error", err)
			return fmt.Errorf("%s: failed to parse response: %w", op, err)
		}
		return nil
	}

	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	c.logger.Error("api request failed", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, domain.ErrServerOffline)
}

// GetConnection returns current connection settings
func (c *Client) GetConnection(ctx context.Context) (domain.ConnectionSettings, error) {
	var dto ConnectionDTO
	resp, err := c.read(ctx).SetSuccessResult(&dto).Get(pathConnection)
	if err := c.check(ctx, resp, err, "get connection"); err != nil {
		return domain.ConnectionSettings{}, err
	}
	return MapConnection(dto), nil
}

// SaveConnection persists the full connection payload
func (c *Client) SaveConnection(ctx context.Context, settings domain.ConnectionSettings) error {
	resp, err := c.write(ctx).SetBody(ToSaveConnection(settings)).Post(pathConnection)
	return c.check(ctx, resp, err, "save connection")
}

// GetDevices returns discoverable servers
func (c *Client) GetDevices(ctx context.Context) ([]domain.Device, error) {
	var dtos []DeviceDTO
	resp, err := c.read(ctx).SetSuccessResult(&dtos).Get(pathDevices)
	if err := c.check(ctx, resp, err, "get devices"); err != nil {
		return nil, err
	}
	return MapDevices(dtos), nil
}

// SyncLibraries refreshes the library list from the media server
func (c *Client) SyncLibraries(ctx context.Context) error {
	resp, err := c.write(ctx).SetQueryParam("sync", "true").Get(pathLibraries)
	return c.check(ctx, resp, err, "sync libraries")
}

// EnableLibraries replaces the enabled set
func (c *Client) EnableLibraries(ctx context.Context, ids []string) error {
	resp, err := c.write(ctx).SetQueryParam("enable", domain.JoinIDs(ids)).Get(pathLibraries)
	return c.check(ctx, resp, err, "enable libraries")
}

// GetSyncStatus returns the current scan state
func (c *Client) GetSyncStatus(ctx context.Context) (domain.SyncStatus, error) {
	var dto SyncStatusDTO
	resp, err := c.read(ctx).SetSuccessResult(&dto).Get(pathSync)
	if err := c.check(ctx, resp, err, "get sync status"); err != nil {
		return domain.SyncStatus{}, err
	}
	return MapSyncStatus(dto), nil
}

// StartSync requests a full scan
func (c *Client) StartSync(ctx context.Context) (domain.SyncStatus, error) {
	return c.controlSync(ctx, SyncControlRequest{Start: true}, "start sync")
}

// CancelSync requests the running scan to stop
func (c *Client) CancelSync(ctx context.Context) (domain.SyncStatus, error) {
	return c.controlSync(ctx, SyncControlRequest{Cancel: true}, "cancel sync")
}

func (c *Client) controlSync(ctx context.Context, body SyncControlRequest, op string) (domain.SyncStatus, error) {
	var dto SyncStatusDTO
	resp, err := c.write(ctx).SetBody(body).SetSuccessResult(&dto).Post(pathSync)
	if err := c.check(ctx, resp, err, op); err != nil {
		return domain.SyncStatus{}, err
	}
	return MapSyncStatus(dto), nil
}

// GetNotificationSettings returns a user's notification configuration
func (c *Client) GetNotificationSettings(ctx context.Context, userID string) (domain.NotificationSettings, error) {
	var dto NotificationSettingsDTO
	resp, err := c.read(ctx).
		SetPathParam("userId", userID).
		SetSuccessResult(&dto).
		Get(pathNotifications)
	if err := c.check(ctx, resp, err, "get notification settings"); err != nil {
		return domain.NotificationSettings{}, err
	}
	return MapNotificationSettings(dto), nil
}

// SaveNotificationSettings persists a user's configuration in full
func (c *Client) SaveNotificationSettings(ctx context.Context, userID string, settings domain.NotificationSettings) error {
	resp, err := c.write(ctx).
		SetPathParam("userId", userID).
		SetBody(ToNotificationSettings(settings)).
		Post(pathNotifications)
	return c.check(ctx, resp, err, "save notification settings")
}
