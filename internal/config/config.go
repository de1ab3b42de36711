// internal/config/config.go
//
// YAML configuration for the dashboard client and the analysis service.
// Missing files are not an error: everything has a working default, and a
// handful of DIPSCAN_* environment variables can override the file.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "10s" parse.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler for "10s"-style values.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"10s\": %w", err)
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

const (
	// DefaultConfigFile is looked up in the working directory.
	DefaultConfigFile = "dipscan.yaml"

	DefaultAPIBaseURL                  = "http://127.0.0.1:8000"
	DefaultStatusPollInterval Duration = Duration(10 * time.Second)
	DefaultRequestTimeout     Duration = Duration(2 * time.Minute)

	DefaultServerHost = "127.0.0.1"
	DefaultServerPort = 8000

	DefaultMarketAPIBaseURL = "https://api.coingecko.com/api/v3"
	DefaultMarketPages      = 5
	DefaultMarketPerPage    = 250
)

// ClientConfig configures the TUI dashboard.
type ClientConfig struct {
	// APIBaseURL is the analysis service the dashboard talks to.
	APIBaseURL string `yaml:"api_base_url"`
	// StatusPollInterval is how often the health endpoint is probed.
	StatusPollInterval Duration `yaml:"status_poll_interval"`
	// RequestTimeout bounds one analysis round trip.
	RequestTimeout Duration `yaml:"request_timeout"`
	// LogPath is where the session logbook is written. Empty keeps the
	// logbook in memory only.
	LogPath string `yaml:"log_path"`
}

// ServerConfig configures the analysis service.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// MarketAPIBaseURL is the upstream market-data source.
	MarketAPIBaseURL string `yaml:"market_api_base_url"`
	// MarketPages and MarketPerPage shape the upstream pagination sweep.
	MarketPages   int `yaml:"market_pages"`
	MarketPerPage int `yaml:"market_per_page"`
}

// Config models dipscan.yaml.
type Config struct {
	Client ClientConfig `yaml:"client"`
	Server ServerConfig `yaml:"server"`
}

// Default returns a fully populated configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML file at path, falling back to defaults when the file
// does not exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ServerAddress returns the analysis service bind address in host:port form.
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func (c *Config) applyDefaults() {
	if c.Client.APIBaseURL == "" {
		c.Client.APIBaseURL = DefaultAPIBaseURL
	}
	if c.Client.StatusPollInterval <= 0 {
		c.Client.StatusPollInterval = DefaultStatusPollInterval
	}
	if c.Client.RequestTimeout <= 0 {
		c.Client.RequestTimeout = DefaultRequestTimeout
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultServerHost
	}
	if !isValidPort(c.Server.Port) {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.MarketAPIBaseURL == "" {
		c.Server.MarketAPIBaseURL = DefaultMarketAPIBaseURL
	}
	if c.Server.MarketPages <= 0 {
		c.Server.MarketPages = DefaultMarketPages
	}
	if c.Server.MarketPerPage <= 0 {
		c.Server.MarketPerPage = DefaultMarketPerPage
	}
}

func (c *Config) applyEnvOverrides() {
	if url := strings.TrimSpace(os.Getenv("DIPSCAN_API_URL")); url != "" {
		c.Client.APIBaseURL = url
	}
	if path := strings.TrimSpace(os.Getenv("DIPSCAN_LOG_PATH")); path != "" {
		c.Client.LogPath = path
	}
	if raw := strings.TrimSpace(os.Getenv("DIPSCAN_POLL_INTERVAL")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			c.Client.StatusPollInterval = Duration(d)
		}
	}
	if host := strings.TrimSpace(os.Getenv("DIPSCAN_SERVER_HOST")); host != "" {
		c.Server.Host = host
	}
	if raw := strings.TrimSpace(os.Getenv("DIPSCAN_SERVER_PORT")); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil && isValidPort(port) {
			c.Server.Port = port
		}
	}
}

func (c *Config) normalize() {
	c.Client.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Client.APIBaseURL), "/")
	c.Client.LogPath = strings.TrimSpace(c.Client.LogPath)
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	c.Server.MarketAPIBaseURL = strings.TrimRight(strings.TrimSpace(c.Server.MarketAPIBaseURL), "/")
}

func (c *Config) validate() error {
	if c.Client.APIBaseURL == "" {
		return fmt.Errorf("client.api_base_url is required")
	}
	if !strings.HasPrefix(c.Client.APIBaseURL, "http://") && !strings.HasPrefix(c.Client.APIBaseURL, "https://") {
		return fmt.Errorf("client.api_base_url must be an http(s) URL")
	}
	if !isValidPort(c.Server.Port) {
		return fmt.Errorf("server.port must be in (0, 65535]")
	}
	return nil
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}
