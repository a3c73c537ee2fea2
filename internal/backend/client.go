// Package backend holds the HTTP clients for the first-party persistence
// backend (user records and monthly winrate snapshots).
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"vega-tracker/internal/config"
)

const apiKeyHeader = "X-API-Key"

// Client is the shared transport for the backend API. All requests carry the
// shared API key; no retries.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	apiKey  string
	logger  zerolog.Logger
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return &Client{
		http: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		baseURL: cfg.BackendURL,
		apiKey:  cfg.BackendAPIKey,
		logger:  logger,
	}
}

// do issues one request and returns the response body and status. A non-2xx
// status is not an error here; callers decide what 404 means for them.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.SetContentType("application/json")

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		req.SetBody(payload)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.http.DoDeadline(req, resp, deadline); err != nil {
			return nil, 0, err
		}
	} else {
		if err := c.http.Do(req, resp); err != nil {
			return nil, 0, err
		}
	}

	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, resp.StatusCode(), nil
}
