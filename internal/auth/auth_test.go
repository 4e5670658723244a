package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viant/mcp-ticket-gateway/internal/config"
)

func TestExtractCredentials_Precedence(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/mcp?api_key=query-key", nil)
	req.Header.Set("Authorization", "Bearer bearer-key")
	req.Header.Set("x-mcp-api-key", "header-key")

	creds := ExtractCredentials(req, "x-mcp-api-key")
	require.Equal(t, "bearer-key", creds.APIKey)
	require.Equal(t, "bearer", creds.Source)

	req2 := httptest.NewRequest(http.MethodPost, "/mcp?api_key=query-key", nil)
	req2.Header.Set("x-mcp-api-key", "header-key")
	creds2 := ExtractCredentials(req2, "x-mcp-api-key")
	require.Equal(t, "query-key", creds2.APIKey)

	req3 := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req3.Header.Set("x-mcp-api-key", "header-key")
	creds3 := ExtractCredentials(req3, "x-mcp-api-key")
	require.Equal(t, "header-key", creds3.APIKey)

	req4 := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	require.True(t, ExtractCredentials(req4, "x-mcp-api-key").Empty())
}

func TestAPIKeyProvider(t *testing.T) {
	p := &APIKeyProvider{HeaderName: "x-mcp-api-key"}
	require.False(t, p.Validate(Credentials{}))
	res := p.Authenticate(Credentials{APIKey: "k"})
	require.True(t, res.Success)
	require.Equal(t, "api_key_user", res.UserID)

	empty := p.Authenticate(Credentials{})
	require.False(t, empty.Success)
	require.NotEmpty(t, empty.Err)
}

func TestNoAuthProvider(t *testing.T) {
	p := NoAuthProvider{}
	res := p.Authenticate(Credentials{})
	require.True(t, res.Success)
	require.Equal(t, "anonymous", res.UserID)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(config.AuthProviderAPIKey, "x-mcp-api-key")
	require.NoError(t, err)
	require.IsType(t, &APIKeyProvider{}, p)

	p, err = NewProvider(config.AuthProviderNone, "")
	require.NoError(t, err)
	require.IsType(t, NoAuthProvider{}, p)

	_, err = NewProvider(config.AuthProviderOAuth, "")
	require.Error(t, err)

	_, err = NewProvider("bogus", "")
	require.Error(t, err)
}
