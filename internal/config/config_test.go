package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MCP_API_BASE_URL", "API_BASE_URL", "MCP_API_KEY_BACKEND", "API_KEY",
		"MCP_API_KEY", "MCP_API_KEY_HEADER", "MCP_AUTH_PROVIDER", "MCP_TRANSPORT_TYPE",
		"MCP_HOST", "MCP_PORT", "MCP_SESSION_MAX_AGE", "MCP_CLOUD_MODE", "NODE_ENV",
		"MCP_ALLOWED_ORIGINS",
	} {
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, AuthProviderAPIKey, cfg.AuthProvider)
	require.Equal(t, 30*time.Minute, cfg.SessionMaxAge)
	require.Equal(t, 15*time.Minute, cfg.LegacyInactivityTTL)
	require.Equal(t, 840*time.Second, cfg.StreamTimeout)
	require.Equal(t, "x-mcp-api-key", cfg.MCPAPIKeyHeader)
	require.Equal(t, "0.0.0.0:8080", cfg.Addr())
	require.Contains(t, cfg.AllowedOrigins, "http://localhost")
}

func TestLoad_RejectsUnknownAuthProvider(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Setenv("MCP_AUTH_PROVIDER", "bogus"))
	defer os.Unsetenv("MCP_AUTH_PROVIDER")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_CustomOrigins(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Setenv("MCP_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com"))
	defer os.Unsetenv("MCP_ALLOWED_ORIGINS")

	cfg, err := Load()
	require.NoError(t, err)
	require.Contains(t, cfg.AllowedOrigins, "https://app.example.com")
	require.Contains(t, cfg.AllowedOrigins, "https://admin.example.com")
}
