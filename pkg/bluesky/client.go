// Package bluesky fetches posts and profiles from a public Bluesky AppView.
package bluesky

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iconidentify/bskye/internal/domain"
)

const (
	DefaultAppViewURL = "https://public.api.bsky.app"
	DefaultUserAgent  = "bskye/1.0 (+https://github.com/FerroEduardo/bskye)"
	defaultTimeout    = 10 * time.Second

	threadViewPostType = "app.bsky.feed.defs#threadViewPost"

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// ClientConfig configures a Client. Zero values fall back to the defaults.
type ClientConfig struct {
	AppViewURL string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// Client is an unauthenticated AppView client.
type Client struct {
	appViewURL string
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a new AppView client.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.AppViewURL == "" {
		cfg.AppViewURL = DefaultAppViewURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		appViewURL: strings.TrimSuffix(cfg.AppViewURL, "/"),
		httpClient: httpClient,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}
}

// FetchPostThread retrieves the post at atURI without parents or replies.
// Blocked, deleted and non-post records fail with an error matching both
// domain.ErrInvalidPost and domain.ErrMalformedResponse.
func (c *Client) FetchPostThread(ctx context.Context, atURI string) (*domain.ThreadView, error) {
	params := url.Values{}
	params.Set("uri", atURI)
	params.Set("depth", "0")
	params.Set("parentHeight", "0")

	var resp threadResponse
	if err := c.get(ctx, "app.bsky.feed.getPostThread", params, &resp); err != nil {
		return nil, err
	}

	thread, err := resp.toDomain()
	if err != nil {
		return nil, fmt.Errorf("get post thread %s: %w", atURI, err)
	}
	return thread, nil
}

// FetchProfile retrieves the profile of actor, a handle or DID. A profile
// the AppView reports as missing fails with domain.ErrNotFound.
func (c *Client) FetchProfile(ctx context.Context, actor string) (*domain.Profile, error) {
	params := url.Values{}
	params.Set("actor", actor)

	var resp profileJSON
	if err := c.get(ctx, "app.bsky.actor.getProfile", params, &resp); err != nil {
		return nil, err
	}

	profile, err := resp.toDomain()
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", actor, err)
	}
	return profile, nil
}

// get calls the XRPC query nsid and decodes a successful response into out.
func (c *Client) get(ctx context.Context, nsid string, params url.Values, out any) error {
	endpoint := c.appViewURL + "/xrpc/" + nsid + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("appview request",
		"nsid", nsid,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(nsid, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w: %w", domain.ErrMalformedResponse, err)
	}
	return nil
}

// xrpcError is the error body returned by XRPC services.
type xrpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newAPIError(nsid string, status int, body []byte) error {
	var xe xrpcError
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &xe); err == nil && (xe.Error != "" || xe.Message != "") {
		message = xe.Message
		if message == "" {
			message = xe.Error
		}
	}

	var cause error
	if xe.Error == "NotFound" || strings.Contains(strings.ToLower(message), "not found") {
		cause = domain.ErrNotFound
	}
	return domain.NewFetchError(nsid, status, message, cause)
}
