package http

import (
	"fmt"
	"net/http"
	"time"

	"Mnemo/internal/config"
	"Mnemo/pkg/circuitbreaker"
)

// Client is a custom HTTP client that wraps the standard http.Client
// and provides built-in support for circuit breaking. The memory pipeline
// uses it to talk to the graph ingestion service, so that a down or
// misbehaving graph backend stops being hammered while it recovers.
type Client struct {
	httpClient *http.Client
	breaker    circuitbreaker.CircuitBreaker
}

// NewClient creates a new Client. timeout bounds every request end to end;
// the circuit breaker is attached only when enabled in the config.
func NewClient(cfg config.CircuitBreakerConfig, timeout time.Duration) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}

	if !cfg.Enabled {
		return &Client{httpClient: httpClient}, nil
	}

	breakerTimeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid circuit breaker timeout duration: %w", err)
	}

	return &Client{
		httpClient: httpClient,
		breaker:    circuitbreaker.New(cfg.FailureThreshold, cfg.SuccessThreshold, breakerTimeout),
	}, nil
}

// Do executes an HTTP request with circuit breaker protection.
// It considers status codes >= 500 as failures.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	var resp *http.Response

	_, breakerErr := c.breaker.Execute(func() (interface{}, error) {
		r, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		// Treat server-side errors as failures for the circuit breaker.
		if r.StatusCode >= http.StatusInternalServerError {
			r.Body.Close()
			return nil, fmt.Errorf("server error: received status code %d", r.StatusCode)
		}

		resp = r
		return r, nil
	})

	if breakerErr != nil {
		return nil, breakerErr
	}

	return resp, nil
}
