package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Relay     RelayConfig
	Lookup    LookupConfig
	Transport TransportConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// RelayConfig holds the readiness wait policy.
type RelayConfig struct {
	PollInterval time.Duration `envconfig:"RELAY_POLL_INTERVAL" default:"500ms"`
	WaitTimeout  time.Duration `envconfig:"RELAY_WAIT_TIMEOUT" default:"10s"`
	DefaultsFile string        `envconfig:"RELAY_DEFAULTS_FILE"`
}

// LookupConfig holds target-URL lookup configuration.
// TargetURL, when set, bypasses the lookup service.
type LookupConfig struct {
	URL       string        `envconfig:"LOOKUP_URL"`
	TargetURL string        `envconfig:"TARGET_URL"`
	PagePath  string        `envconfig:"FRAME_PAGE_PATH" default:"/apex/LC_APIPage"`
	Timeout   time.Duration `envconfig:"LOOKUP_TIMEOUT" default:"10s"`
	Retries   int           `envconfig:"LOOKUP_RETRIES" default:"3"`

	BreakerFailures uint32        `envconfig:"LOOKUP_BREAKER_FAILURES" default:"5"`
	BreakerTimeout  time.Duration `envconfig:"LOOKUP_BREAKER_TIMEOUT" default:"30s"`
}

// TransportConfig holds channel transport configuration.
type TransportConfig struct {
	NATSClientName      string        `envconfig:"NATS_CLIENT_NAME" default:"framerelay"`
	NATSConnectTimeout  time.Duration `envconfig:"NATS_CONNECT_TIMEOUT" default:"10s"`
	WSHandshakeTimeout  time.Duration `envconfig:"WS_HANDSHAKE_TIMEOUT" default:"10s"`
	WSEnableCompression bool          `envconfig:"WS_COMPRESSION" default:"false"`
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

// CORSConfig holds allowed origins for the HTTP surface.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" default:"*"`
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
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Relay: RelayConfig{
			PollInterval: 500 * time.Millisecond,
			WaitTimeout:  10 * time.Second,
		},
		Lookup: LookupConfig{
			PagePath:        "/apex/LC_APIPage",
			Timeout:         10 * time.Second,
			Retries:         3,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Transport: TransportConfig{
			NATSClientName:     "framerelay",
			NATSConnectTimeout: 10 * time.Second,
			WSHandshakeTimeout: 10 * time.Second,
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
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	if c.Relay.PollInterval <= 0 {
		errs = append(errs, errors.New("RELAY_POLL_INTERVAL must be positive"))
	}
	if c.Relay.WaitTimeout <= 0 {
		errs = append(errs, errors.New("RELAY_WAIT_TIMEOUT must be positive"))
	}
	if c.Relay.PollInterval > c.Relay.WaitTimeout {
		errs = append(errs, errors.New("RELAY_POLL_INTERVAL must not exceed RELAY_WAIT_TIMEOUT"))
	}
	if c.Lookup.Retries < 0 {
		errs = append(errs, errors.New("LOOKUP_RETRIES must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
