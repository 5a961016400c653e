package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/paularlott/cli"
)

// Defaults. The base URL points at the ORDS-style collection endpoint the
// backend exposes; everything else is tuning.
const (
	DefaultBaseURL         = "http://localhost:8080/ords/inventario/equipos/"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultRefreshInterval = 30 * time.Second
	DefaultMCPListenAddr   = ":8090"
)

// Config holds the application configuration. All state the tool keeps is
// transient; there is no data directory and nothing is persisted locally.
type Config struct {
	BaseURL         string        // collection endpoint URL
	RequestTimeout  time.Duration // per-request transport timeout
	RefreshInterval time.Duration // watch-mode refresh cadence
	MCPListenAddr   string        // listen address for the MCP endpoint
	MCPAuthToken    string        // optional bearer token for MCP requests
}

// Load builds a Config from environment variables with defaults. Command
// line flags (see GetFlags) take precedence via FromCommand.
func Load() *Config {
	cfg := &Config{
		BaseURL:         coalesce(os.Getenv("EQUIPCTL_BASE_URL"), DefaultBaseURL),
		RequestTimeout:  durationEnv("EQUIPCTL_TIMEOUT", DefaultRequestTimeout),
		RefreshInterval: durationEnv("EQUIPCTL_REFRESH_INTERVAL", DefaultRefreshInterval),
		MCPListenAddr:   coalesce(os.Getenv("EQUIPCTL_MCP_LISTEN_ADDR"), DefaultMCPListenAddr),
		MCPAuthToken:    os.Getenv("EQUIPCTL_MCP_AUTH_TOKEN"),
	}
	return cfg
}

// GetFlags returns the flags shared by every command that talks to the
// backend.
func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:         "base-url",
			Aliases:      []string{"u"},
			Usage:        "Collection endpoint URL",
			DefaultValue: DefaultBaseURL,
			EnvVars:      []string{"EQUIPCTL_BASE_URL"},
		},
		&cli.StringFlag{
			Name:         "timeout",
			Usage:        "Per-request timeout (e.g. 30s)",
			DefaultValue: DefaultRequestTimeout.String(),
			EnvVars:      []string{"EQUIPCTL_TIMEOUT"},
		},
	}
}

// FromCommand merges command flags over the environment configuration.
func FromCommand(cmd *cli.Command) (*Config, error) {
	cfg := Load()

	if v := cmd.GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v := cmd.GetString("timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", v, err)
		}
		cfg.RequestTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parts of the configuration every command relies on.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL must not be empty")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base URL %q must be http(s)", c.BaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// IsMCPAuthEnabled checks if MCP authentication is configured.
func (c *Config) IsMCPAuthEnabled() bool {
	return c.MCPAuthToken != ""
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// coalesce returns the first non-empty string value.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
