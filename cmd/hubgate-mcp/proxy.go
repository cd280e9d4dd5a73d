package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bobmcallan/hubgate/internal/common"
)

// Proxy forwards MCP tool calls to the hubgate dispatch endpoint.
type Proxy struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	retryDelay time.Duration
}

// NewProxy creates a proxy for the given gateway base URL.
func NewProxy(baseURL string, logger *common.Logger) *Proxy {
	return &Proxy{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger:     logger,
		retryDelay: time.Second,
	}
}

// get performs a GET against the gateway and returns the raw body.
func (p *Proxy) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error().Err(err).Str("path", path).Dur("duration", duration).Msg("gateway request failed")
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, string(body))
	}

	p.logger.Debug().Str("path", path).Int("status", resp.StatusCode).Dur("duration", duration).Msg("gateway request")
	return body, nil
}

// envelope mirrors the gateway's response wrapper.
type envelope struct {
	Status     string          `json:"status"`
	Result     json.RawMessage `json:"result"`
	Kind       string          `json:"kind"`
	Message    string          `json:"message"`
	RetryAfter int             `json:"retry_after_seconds"`
}

// CallTool dispatches one tool call through POST /tools/call and returns
// the raw result JSON, or an error carrying the envelope's kind and message.
func (p *Proxy) CallTool(ctx context.Context, tool string, args map[string]any) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"tool": tool,
		"args": args,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool call: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/tools/call", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error().Err(err).Str("tool", tool).Dur("duration", duration).Msg("tool call failed")
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("gateway returned invalid envelope: %s", string(body))
	}

	if env.Status != "success" {
		if env.RetryAfter > 0 {
			return nil, fmt.Errorf("%s: %s (retry after %ds)", env.Kind, env.Message, env.RetryAfter)
		}
		return nil, fmt.Errorf("%s: %s", env.Kind, env.Message)
	}

	p.logger.Debug().Str("tool", tool).Dur("duration", duration).Msg("tool call succeeded")
	return env.Result, nil
}
