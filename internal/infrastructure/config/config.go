package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// BrowserConfig holds remote browser backend configuration.
//
// Endpoint is the address of the remote automation backend. When
// LaunchLocal is set the service ignores Endpoint and launches a fresh
// local browser per session instead.
type BrowserConfig struct {
	Endpoint        string        `envconfig:"BROWSER_ENDPOINT" default:"http://localhost:4444/wd/hub"`
	LaunchLocal     bool          `envconfig:"BROWSER_LAUNCH_LOCAL" default:"false"`
	Headless        bool          `envconfig:"BROWSER_HEADLESS" default:"false"`
	PageLoadTimeout time.Duration `envconfig:"BROWSER_PAGE_LOAD_TIMEOUT" default:"30s"`
	ReadyTimeout    time.Duration `envconfig:"BROWSER_READY_TIMEOUT" default:"10s"`
	WindowWidth     int           `envconfig:"BROWSER_WINDOW_WIDTH" default:"1920"`
	WindowHeight    int           `envconfig:"BROWSER_WINDOW_HEIGHT" default:"1080"`
	UserAgent       string        `envconfig:"BROWSER_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"`
	BlockAssets     bool          `envconfig:"BROWSER_BLOCK_ASSETS" default:"true"`
	NoSandbox       bool          `envconfig:"BROWSER_NO_SANDBOX" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Browser: BrowserConfig{
			Endpoint:        "http://localhost:4444/wd/hub",
			PageLoadTimeout: 30 * time.Second,
			ReadyTimeout:    10 * time.Second,
			WindowWidth:     1920,
			WindowHeight:    1080,
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			BlockAssets:     true,
			NoSandbox:       true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
