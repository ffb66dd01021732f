// Package elevation implements the batched elevation lookup pipeline: an
// HTTP client for the remote elevation endpoint and a batch fetcher that
// partitions coordinate pairs into size-limited requests, consults a response
// cache before the network, and merges per-batch results back into one
// ordered collection.
package elevation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/velomaps/gradient/pkg/logging"
)

// ClientConfig holds the transport configuration.
type ClientConfig struct {
	// UserAgent header sent with every request.
	UserAgent string

	// Timeout for a single HTTP request.
	Timeout time.Duration

	// Proxy is an optional proxy URL for outbound requests.
	Proxy string

	// Retry controls backoff behavior for 5xx and network errors.
	Retry RetryConfig
}

// DefaultClientConfig returns a safe default transport configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		UserAgent: "gradient/0.1.0",
		Timeout:   30 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// Client issues requests against the remote elevation endpoint.
type Client struct {
	httpClient *http.Client
	config     ClientConfig
	logger     zerolog.Logger
}

// NewClient creates an elevation API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	transport := http.DefaultTransport
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		config: cfg,
		logger: logging.NewLogger("elevation-client"),
	}, nil
}

// Get performs a GET request against the given fully-formed URL and returns
// the response body. Server errors and network failures are retried with
// backoff; client errors are not.
func (c *Client) Get(ctx context.Context, requestURL string) ([]byte, error) {
	var body []byte

	err := retryWithBackoff(ctx, c.config.Retry, c.logger, isRetryable, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		requestDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			requestsTotal.WithLabelValues("network_error").Inc()
			c.logger.Warn().Err(err).Str("url", requestURL).Msg("HTTP request failed")
			return fmt.Errorf("http get: %w", err)
		}
		defer resp.Body.Close()

		requestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

		if resp.StatusCode != http.StatusOK {
			c.logger.Warn().
				Int("status", resp.StatusCode).
				Str("url", requestURL).
				Msg("Elevation request error")
			return &HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// isRetryable reports whether a request error is worth retrying: server-side
// and network failures are, client errors are not.
func isRetryable(err error) bool {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	// Network and body-read failures.
	return true
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
