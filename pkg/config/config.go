package config

import (
	"os"
	"time"
)

// Config is the umbrella configuration object returned by Initialize and
// passed to the server, relay and database layers.
type Config struct {
	configDir string

	Server   *ServerConfig
	Upstream *UpstreamConfig
	Relay    *RelayConfig
	Auth     *AuthConfig
}

// ServerConfig controls the inbound HTTP server.
type ServerConfig struct {
	HTTPPort        string        `yaml:"http_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AutomateRateLimit is the sustained number of /api/automate requests per
	// second accepted by this replica. Zero disables limiting.
	AutomateRateLimit float64 `yaml:"automate_rate_limit"`
	AutomateRateBurst int     `yaml:"automate_rate_burst"`
}

// UpstreamConfig describes the external contract-generation service.
type UpstreamConfig struct {
	BaseURL      string `yaml:"base_url"`
	GeneratePath string `yaml:"generate_path"`

	// ResponseHeaderTimeout bounds the wait for the upstream status line.
	// The event stream body itself has no deadline.
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout"`
}

// GenerateURL returns the full URL of the generation endpoint.
func (u *UpstreamConfig) GenerateURL() string {
	return trimTrailingSlash(u.BaseURL) + u.GeneratePath
}

// RelayConfig tunes the SSE relay loop.
type RelayConfig struct {
	ReadBufferBytes int `yaml:"read_buffer_bytes"`

	// MaxLineBytes caps a single line. A negative value disables the cap;
	// zero in YAML keeps the default.
	MaxLineBytes int `yaml:"max_line_bytes"`

	// EmitMalformedAsError replaces an unparseable data frame with a
	// synthetic error event instead of dropping it silently.
	EmitMalformedAsError bool `yaml:"emit_malformed_as_error"`
}

// AuthConfig configures bearer authentication for the contracts listing.
type AuthConfig struct {
	SecretEnv string `yaml:"secret_env"`
}

// Secret returns the configured API secret, read from the environment at call time.
func (a *AuthConfig) Secret() string {
	return os.Getenv(a.SecretEnv)
}

// ConfigDir returns the configuration directory path
func (c *Config) ConfigDir() string {
	return c.configDir
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
