// Package config loads process-wide gateway settings from MCP_-prefixed
// environment variables, mirroring the settings surface the original
// Python server exposed through pydantic-settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AuthProvider identifies which credential-validation strategy is active.
type AuthProvider string

const (
	AuthProviderAPIKey AuthProvider = "api_key"
	AuthProviderNone   AuthProvider = "none"
	AuthProviderOAuth  AuthProvider = "oauth"
)

// TransportType records the configured MCP transport. No entrypoint reads
// it: both transports are always mounted by the edge router regardless of
// this value.
type TransportType string

const (
	TransportSSE         TransportType = "sse"
	TransportStreamable  TransportType = "streamable_http"
)

// Config is the immutable, process-wide configuration of the gateway.
type Config struct {
	APIBaseURL string
	APIKey     string

	MCPAPIKey      string
	MCPAPIKeyHeader string
	AuthProvider   AuthProvider
	TransportType  TransportType

	Host string
	Port int

	SessionMaxAge        time.Duration
	LegacyInactivityTTL  time.Duration
	StreamTimeout        time.Duration
	ConnectionSweep      time.Duration
	KeepAlivePeriod      time.Duration
	LegacyQueueWait      time.Duration
	BackendTimeout       time.Duration

	LogLevel string
	LogJSON  bool

	AllowedOrigins []string
}

// Load reads Config from the process environment, applying the same
// defaults the original cloud settings module used.
func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL:          getEnv("MCP_API_BASE_URL", getEnv("API_BASE_URL", "")),
		APIKey:              getEnv("MCP_API_KEY_BACKEND", getEnv("API_KEY", "")),
		MCPAPIKey:           getEnv("MCP_API_KEY", ""),
		MCPAPIKeyHeader:     getEnv("MCP_API_KEY_HEADER", "x-mcp-api-key"),
		AuthProvider:        AuthProvider(getEnv("MCP_AUTH_PROVIDER", string(AuthProviderAPIKey))),
		TransportType:       TransportType(getEnv("MCP_TRANSPORT_TYPE", string(TransportStreamable))),
		Host:                getEnv("MCP_HOST", "0.0.0.0"),
		Port:                getEnvInt("MCP_PORT", 8080),
		SessionMaxAge:       getEnvDuration("MCP_SESSION_MAX_AGE", 30*time.Minute),
		LegacyInactivityTTL: getEnvDuration("MCP_LEGACY_INACTIVITY_TTL", 15*time.Minute),
		StreamTimeout:       getEnvDuration("MCP_STREAM_TIMEOUT", 840*time.Second),
		ConnectionSweep:     getEnvDuration("MCP_CONNECTION_SWEEP", 60*time.Second),
		KeepAlivePeriod:     getEnvDuration("MCP_KEEPALIVE_PERIOD", 30*time.Second),
		LegacyQueueWait:     getEnvDuration("MCP_LEGACY_QUEUE_WAIT", 30*time.Second),
		BackendTimeout:      getEnvDuration("MCP_BACKEND_TIMEOUT", 30*time.Second),
		LogLevel:            getEnv("MCP_LOG_LEVEL", "info"),
		LogJSON:             getEnv("MCP_CLOUD_MODE", "") != "" || getEnv("NODE_ENV", "") == "production",
		AllowedOrigins:      defaultOrigins(getEnv("MCP_ALLOWED_ORIGINS", "")),
	}

	switch cfg.AuthProvider {
	case AuthProviderAPIKey, AuthProviderNone, AuthProviderOAuth:
	default:
		return nil, fmt.Errorf("unsupported MCP_AUTH_PROVIDER: %s", cfg.AuthProvider)
	}

	return cfg, nil
}

func defaultOrigins(csv string) []string {
	origins := []string{
		"http://localhost",
		"http://127.0.0.1",
	}
	if csv == "" {
		return origins
	}
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// Addr returns the host:port string the HTTP server should bind to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
