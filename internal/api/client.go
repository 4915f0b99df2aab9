package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flowmeta/flowmeta/internal/logger"
	flowerrors "github.com/flowmeta/flowmeta/pkg/errors"
)

// DefaultTimeout bounds every platform call. The original deployments ran
// against slow webservers, hence the generous default.
const DefaultTimeout = 120 * time.Second

// Doer is the single-call contract shared by the raw client and its
// retrying wrapper. Implementations must be safe for concurrent use.
type Doer interface {
	Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error)
}

// Credentials holds either a bearer token or a basic-auth pair. When both
// are present the token wins.
type Credentials struct {
	Token    string
	Username string
	Password string
}

// Config describes how to construct a Client.
type Config struct {
	BaseURL     string
	Credentials Credentials
	Timeout     time.Duration
	Logger      *logger.Logger
}

// Client is the authenticated transport to the platform REST API. It
// injects credentials, classifies failures, and emits one structured log
// record per call. It never retries; that is the retry policy's job.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      Credentials
	log        *logger.Logger
}

var _ Doer = (*Client)(nil)

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, flowerrors.NewValidationError("base_url", "base URL is required", nil)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, flowerrors.NewValidationError("base_url", err.Error(), err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		creds:      cfg.Credentials,
		log:        cfg.Logger,
	}, nil
}

// Do sends one request and returns the response body. Failures are
// classified: 401/403 become AuthError, other non-2xx statuses become
// HTTPError with the body attached, and transport failures (including
// timeouts) become NetworkError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body for %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("build request for %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	switch {
	case c.creds.Token != "":
		req.Header.Set("Authorization", "Bearer "+c.creds.Token)
	case c.creds.Username != "":
		req.SetBasicAuth(c.creds.Username, c.creds.Password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, flowerrors.NewNetworkError(method+" "+path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	c.log.Call(method, path, resp.StatusCode, duration)
	if err != nil {
		return nil, flowerrors.NewNetworkError(method+" "+path, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, flowerrors.NewAuthError(resp.StatusCode, nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, flowerrors.NewHTTPError(method, path, resp.StatusCode, truncate(string(data), 2048))
	}

	return data, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
