// Package github implements the remote-repository adapter: each tool is a
// GraphQL call (or a paginated sequence of calls) against the GitHub API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/bobmcallan/hubgate/internal/common"
	"github.com/bobmcallan/hubgate/internal/config"
	"github.com/bobmcallan/hubgate/internal/gateway"
)

// Client executes GraphQL queries against the GitHub API with bearer auth,
// per-call timeouts, and bounded retry on rate limits.
type Client struct {
	apiURL     string
	token      string
	httpClient *http.Client
	logger     *common.Logger
	retry      RetryPolicy
	pageSize   int
}

// NewClient creates a GitHub GraphQL client from config.
func NewClient(cfg config.GitHubConfig, logger *common.Logger) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Client{
		apiURL: cfg.APIURL,
		token:  cfg.Token,
		httpClient: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		logger:   logger,
		retry:    NewRetryPolicy(cfg.MaxRetries),
		pageSize: pageSize,
	}
}

// PageSize returns the fixed upstream page size used for pagination.
func (c *Client) PageSize() int {
	return c.pageSize
}

// graphqlError is one entry in a GraphQL error response.
type graphqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// graphqlResponse is the upstream response wrapper.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// Execute runs one GraphQL query with retry, decoding the data payload
// into out. Rate-limit signals are retried with exponential backoff; after
// exhaustion the last classified error is returned.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, out any) error {
	return c.retry.Do(ctx, func(ctx context.Context, attempt int) error {
		return c.executeOnce(ctx, query, variables, out, attempt)
	})
}

// executeOnce performs a single GraphQL round trip.
func (c *Client) executeOnce(ctx context.Context, query string, variables map[string]any, out any, attempt int) error {
	payload := map[string]any{
		"query":     query,
		"variables": variables,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return gateway.NewError(gateway.KindInternalError, "failed to marshal GraphQL request: %v", err)
	}

	c.logger.Debug().
		Str("url", c.apiURL).
		Int("attempt", attempt).
		Msg("GitHub GraphQL request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return gateway.NewError(gateway.KindInternalError, "failed to build GraphQL request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error().Err(err).Dur("duration", duration).Msg("GitHub request failed")
		// A per-call transport timeout is retryable; expiry of the caller's
		// context is not — the request deadline is already gone.
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() && ctx.Err() == nil {
			return gateway.NewError(gateway.KindTimeout, "github request timed out: %v", err)
		}
		return fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read github response: %w", err)
	}

	c.logger.Debug().
		Int("status_code", resp.StatusCode).
		Dur("duration", duration).
		Msg("GitHub GraphQL response")

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return rateLimitError(resp, body)
	}
	if resp.StatusCode >= 400 {
		return gateway.NewError(gateway.KindUpstreamFailure, "github returned %d: %s", resp.StatusCode, truncate(string(body), 512))
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return gateway.NewError(gateway.KindUpstreamFailure, "github returned invalid JSON: %v", err)
	}

	if len(gqlResp.Errors) > 0 {
		for _, gqlErr := range gqlResp.Errors {
			if gqlErr.Type == "RATE_LIMITED" {
				return &gateway.Error{
					Kind:    gateway.KindRateLimited,
					Message: gqlErr.Message,
				}
			}
		}
		return gateway.NewError(gateway.KindUpstreamFailure, "graphql error: %s", gqlResp.Errors[0].Message)
	}

	if out != nil {
		if err := json.Unmarshal(gqlResp.Data, out); err != nil {
			return gateway.NewError(gateway.KindUpstreamFailure, "failed to decode github data: %v", err)
		}
	}
	return nil
}

// rateLimitError builds a RateLimited error from an HTTP 403/429 response,
// carrying the Retry-After hint when upstream provides one.
func rateLimitError(resp *http.Response, body []byte) *gateway.Error {
	retryAfter := 0
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			retryAfter = secs
		}
	}
	return &gateway.Error{
		Kind:       gateway.KindRateLimited,
		Message:    fmt.Sprintf("github rate limit exceeded (status %d): %s", resp.StatusCode, truncate(string(body), 256)),
		RetryAfter: retryAfter,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
