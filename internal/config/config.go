// Package config loads hubgate configuration from TOML files,
// environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/hubgate/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig         `toml:"server"`
	GitHub   GitHubConfig         `toml:"github"`
	Database DatabaseConfig       `toml:"database"`
	Gateway  GatewayConfig        `toml:"gateway"`
	Logging  common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// GitHubConfig contains settings for the remote GitHub adapter.
type GitHubConfig struct {
	Enabled    bool   `toml:"enabled"`
	Token      string `toml:"token"`
	APIURL     string `toml:"api_url"`
	PageSize   int    `toml:"page_size"`
	MaxRetries int    `toml:"max_retries"`
	Timeout    string `toml:"timeout"`
}

// GetTimeout parses and returns the per-call timeout duration.
func (c *GitHubConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// DatabaseConfig contains settings for the local SQLite adapter.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// GatewayConfig contains tool-dispatch settings.
type GatewayConfig struct {
	RequestTimeout string `toml:"request_timeout"`
}

// GetRequestTimeout parses and returns the per-request dispatch timeout.
func (c *GatewayConfig) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8004,
		},
		GitHub: GitHubConfig{
			Enabled:    true,
			APIURL:     "https://api.github.com/graphql",
			PageSize:   50,
			MaxRetries: 3,
			Timeout:    "30s",
		},
		Database: DatabaseConfig{
			Path: "./data/hubgate.db",
		},
		Gateway: GatewayConfig{
			RequestTimeout: "30s",
		},
		Logging: common.LoggingConfig{
			Level:   "info",
			Format:  "json",
			Outputs: []string{"console", "file"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files. Missing files are skipped.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
// GITHUB_TOKEN, MCP_HOST, and MCP_PORT are the documented client-facing keys;
// HUBGATE_* variables cover the remaining settings.
func applyEnvOverrides(config *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		config.GitHub.Token = token
	}

	if host := os.Getenv("MCP_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("MCP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if url := os.Getenv("HUBGATE_GITHUB_API_URL"); url != "" {
		config.GitHub.APIURL = url
	}

	if path := os.Getenv("HUBGATE_DB_PATH"); path != "" {
		config.Database.Path = path
	}

	if level := os.Getenv("HUBGATE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host string, localOnly bool) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if localOnly {
		config.GitHub.Enabled = false
	}
}

// Validate checks mandatory configuration and returns a list of issues.
// The GitHub token is required whenever the remote adapter is enabled.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}

	if c.GitHub.Enabled && c.GitHub.Token == "" {
		issues = append(issues, "github.token is required when the GitHub adapter is enabled — set GITHUB_TOKEN or run with -local-only")
	}

	return issues
}
