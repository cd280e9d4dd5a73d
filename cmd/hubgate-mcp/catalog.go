package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/hubgate/internal/common"
)

// maxCatalogSize is the maximum allowed size for a catalog response (1MB).
const maxCatalogSize = 1 << 20

// catalogFetchAttempts bounds startup retries while the gateway comes up.
const catalogFetchAttempts = 5

// CatalogTool represents one tool entry from GET /tools.
type CatalogTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Params      []CatalogParam `json:"params"`
}

// CatalogParam describes one parameter for a catalog tool.
type CatalogParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, int, bool
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     any    `json:"default"`
}

// FetchCatalog fetches the tool catalog from the gateway, retrying a few
// times so the bridge can start alongside a still-booting gateway.
func (p *Proxy) FetchCatalog(ctx context.Context) ([]CatalogTool, error) {
	var lastErr error

	for attempt := 1; attempt <= catalogFetchAttempts; attempt++ {
		body, err := p.get(ctx, "/tools")
		if err == nil {
			if len(body) > maxCatalogSize {
				return nil, fmt.Errorf("catalog response too large: %d bytes (max %d)", len(body), maxCatalogSize)
			}
			var payload struct {
				Tools []CatalogTool `json:"tools"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				return nil, fmt.Errorf("failed to parse tool catalog: %w", err)
			}
			return payload.Tools, nil
		}

		lastErr = err
		p.logger.Warn().
			Int("attempt", attempt).
			Str("error", err.Error()).
			Msg("catalog fetch failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * p.retryDelay):
		}
	}

	return nil, lastErr
}

// ValidateCatalog filters catalog entries, logging warnings for invalid or
// duplicate tools.
func ValidateCatalog(catalog []CatalogTool, logger *common.Logger) []CatalogTool {
	seen := make(map[string]bool, len(catalog))
	valid := make([]CatalogTool, 0, len(catalog))
	for _, ct := range catalog {
		if ct.Name == "" {
			logger.Warn().Msg("skipping catalog tool with empty name")
			continue
		}
		if seen[ct.Name] {
			logger.Warn().Str("name", ct.Name).Msg("skipping duplicate catalog tool")
			continue
		}
		seen[ct.Name] = true
		valid = append(valid, ct)
	}
	return valid
}

// BuildMCPTool converts a CatalogTool into an mcp.Tool with the matching schema.
func BuildMCPTool(ct CatalogTool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(ct.Description)}
	for _, p := range ct.Params {
		opts = append(opts, buildParamOption(p))
	}
	return mcp.NewTool(ct.Name, opts...)
}

// buildParamOption maps a CatalogParam to the appropriate mcp-go tool option.
func buildParamOption(p CatalogParam) mcp.ToolOption {
	var opts []mcp.PropertyOption
	if p.Description != "" {
		opts = append(opts, mcp.Description(p.Description))
	}
	if p.Required {
		opts = append(opts, mcp.Required())
	}

	switch p.Type {
	case "int":
		return mcp.WithNumber(p.Name, opts...)
	case "bool":
		return mcp.WithBoolean(p.Name, opts...)
	default:
		return mcp.WithString(p.Name, opts...)
	}
}

// GenericToolHandler creates a handler that forwards an MCP tool call to
// the gateway's dispatch endpoint. Only arguments the catalog declares are
// passed through; the gateway revalidates on its side.
func GenericToolHandler(p *Proxy, ct CatalogTool) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]any{}
		if provided := r.GetArguments(); provided != nil {
			for _, param := range ct.Params {
				if v, ok := provided[param.Name]; ok {
					args[param.Name] = v
				}
			}
		}

		result, err := p.CallTool(ctx, ct.Name, args)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(string(result)), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
