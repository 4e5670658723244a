// Package auth implements the gateway's pluggable credential-validation
// surface, grounded on mcp_server/auth/providers.py's AuthProvider/
// AuthManager split and on viant-jsonrpc's UnauthorizedError.
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/viant/mcp-ticket-gateway/internal/config"
)

// Credentials is the typed result of extracting auth material from an
// incoming HTTP request, centralising what was previously scattered across
// individual transport handlers.
type Credentials struct {
	// APIKey is the bearer token / api_key value, empty if absent.
	APIKey string
	// Source records which mechanism the value was pulled from, useful for
	// diagnostics only.
	Source string
}

// Empty reports whether no credential material was found at all.
func (c Credentials) Empty() bool {
	return c.APIKey == ""
}

// ExtractCredentials implements the precedence order fixed by the gateway:
// Authorization: Bearer header, then ?api_key= query parameter, then the
// configured MCP API key header.
func ExtractCredentials(r *http.Request, headerName string) Credentials {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return Credentials{APIKey: strings.TrimPrefix(auth, "Bearer "), Source: "bearer"}
	}
	if key := r.URL.Query().Get("api_key"); key != "" {
		return Credentials{APIKey: key, Source: "query"}
	}
	if headerName == "" {
		headerName = "x-mcp-api-key"
	}
	if key := r.Header.Get(headerName); key != "" {
		return Credentials{APIKey: key, Source: "header"}
	}
	return Credentials{}
}

// Result is what a Provider returns after attempting to authenticate a
// Credentials value.
type Result struct {
	Success bool
	UserID  string
	Info    map[string]string
	Err     string
}

// Provider is the polymorphic authentication capability set mirrored from
// the original AuthProvider ABC: authenticate, derive outbound headers, and
// validate credential shape without a network round trip.
type Provider interface {
	Authenticate(creds Credentials) Result
	Headers(creds Credentials) map[string]string
	Validate(creds Credentials) bool
}

// APIKeyProvider trusts any syntactically well-formed key; real validation
// is the backend's job, matching APIKeyAuthProvider.authenticate.
type APIKeyProvider struct {
	HeaderName string
}

func (p *APIKeyProvider) Authenticate(creds Credentials) Result {
	if !p.Validate(creds) {
		return Result{Success: false, Err: "API key not provided"}
	}
	return Result{Success: true, UserID: "api_key_user", Info: map[string]string{"auth_method": "api_key"}}
}

func (p *APIKeyProvider) Headers(creds Credentials) map[string]string {
	if creds.Empty() {
		return map[string]string{}
	}
	header := p.HeaderName
	if header == "" {
		header = "x-mcp-api-key"
	}
	return map[string]string{
		header:          creds.APIKey,
		"Content-Type":  "application/json",
	}
}

func (p *APIKeyProvider) Validate(creds Credentials) bool {
	return strings.TrimSpace(creds.APIKey) != ""
}

// NoAuthProvider always succeeds, matching NoAuthProvider in the source.
type NoAuthProvider struct{}

func (NoAuthProvider) Authenticate(Credentials) Result {
	return Result{Success: true, UserID: "anonymous", Info: map[string]string{"auth_method": "none"}}
}

func (NoAuthProvider) Headers(Credentials) map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

func (NoAuthProvider) Validate(Credentials) bool { return true }

// NewProvider is the factory mirroring create_auth_manager: it never
// panics, returning an error for unimplemented or unknown providers.
func NewProvider(kind config.AuthProvider, headerName string) (Provider, error) {
	switch kind {
	case config.AuthProviderAPIKey:
		return &APIKeyProvider{HeaderName: headerName}, nil
	case config.AuthProviderNone:
		return NoAuthProvider{}, nil
	case config.AuthProviderOAuth:
		return nil, fmt.Errorf("oauth authentication not yet implemented")
	default:
		return nil, fmt.Errorf("unsupported authentication type: %s", kind)
	}
}
