// hubgate-mcp bridges an MCP client (stdio or streamable HTTP) to the
// hubgate dispatch endpoint. The tool catalog is fetched from the gateway
// at startup and registered dynamically.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/hubgate/internal/common"
	"github.com/bobmcallan/hubgate/internal/config"
)

// ServerConfig holds MCP bridge settings.
type ServerConfig struct {
	Name       string `toml:"name"`
	Port       string `toml:"port"`
	GatewayURL string `toml:"gateway_url"`
}

// Config holds all hubgate-mcp configuration.
type Config struct {
	Server  ServerConfig         `toml:"server"`
	Logging common.LoggingConfig `toml:"logging"`
}

// newDefaultConfig returns a Config with sensible defaults.
func newDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Name:       "HubGate-MCP",
			Port:       "8005",
			GatewayURL: "http://localhost:8004",
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/hubgate-mcp.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// loadConfig loads configuration from a TOML file with defaults and env overrides.
func loadConfig(path string) (Config, error) {
	cfg := newDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			// File not found — use defaults
		} else {
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if url := os.Getenv("HUBGATE_URL"); url != "" {
		cfg.Server.GatewayURL = url
	}
	if port := os.Getenv("HUBGATE_MCP_PORT"); port != "" {
		cfg.Server.Port = port
	}

	return cfg, nil
}

func main() {
	stdio := flag.Bool("stdio", false, "Use stdio transport (for desktop MCP clients)")
	configFile := flag.String("config", "hubgate-mcp.toml", "Path to config file")
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)

	proxy := NewProxy(cfg.Server.GatewayURL, logger)

	// Fetch the tool catalog from the gateway. The gateway may still be
	// starting, so a few attempts are made before giving up.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	catalog, err := proxy.FetchCatalog(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch tool catalog from %s: %v\n", cfg.Server.GatewayURL, err)
		os.Exit(1)
	}

	mcpServer := server.NewMCPServer(
		cfg.Server.Name,
		config.GetVersion(),
		server.WithToolCapabilities(true),
	)

	registered := 0
	for _, ct := range ValidateCatalog(catalog, logger) {
		mcpServer.AddTool(BuildMCPTool(ct), GenericToolHandler(proxy, ct))
		registered++
	}

	logger.Info().
		Int("tools", registered).
		Str("gateway", cfg.Server.GatewayURL).
		Msg("tool catalog registered")

	if *stdio {
		// Stdio transport — reads stdin, writes stdout
		if err := server.ServeStdio(mcpServer); err != nil {
			fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Streamable HTTP transport — listens on configured port
	httpServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithStateLess(true),
	)

	fmt.Fprintf(os.Stderr, "Starting MCP Streamable HTTP on :%s\n", cfg.Server.Port)

	if err := httpServer.Start(":" + cfg.Server.Port); err != nil {
		fmt.Fprintf(os.Stderr, "http server error: %v\n", err)
		os.Exit(1)
	}
}
