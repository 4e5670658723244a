package origin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuard_AllowsConfiguredAndMissingOrigin(t *testing.T) {
	g := NewGuard([]string{"http://localhost", "https://gateway.example.com"})

	require.True(t, g.Allowed(""))
	require.True(t, g.Allowed("http://localhost"))
	require.True(t, g.Allowed("https://gateway.example.com"))
	require.False(t, g.Allowed("https://evil.example"))
}

func TestGuard_SubdomainMatchesViaTopDomain(t *testing.T) {
	g := NewGuard([]string{"https://example.com"})
	require.True(t, g.Allowed("https://preview.example.com"))
	require.False(t, g.Allowed("https://example.net"))
}

func TestExtractForwarded(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	req.Host = "internal:8080"
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "gateway.example.com")

	fwd := ExtractForwarded(req)
	require.Equal(t, "https", fwd.Proto)
	require.Equal(t, "gateway.example.com", fwd.Host)
}

func TestExtractForwarded_DefaultsToRequestHost(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	fwd := ExtractForwarded(req)
	require.Equal(t, "http", fwd.Proto)
	require.Equal(t, req.Host, fwd.Host)
}

func TestSetCORSHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SetCORSHeaders(w)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Mcp-Session-Id")
}
