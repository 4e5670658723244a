package legacy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/viant/mcp-ticket-gateway/internal/auth"
	"github.com/viant/mcp-ticket-gateway/internal/backend"
	"github.com/viant/mcp-ticket-gateway/internal/dispatch"
	"github.com/viant/mcp-ticket-gateway/internal/origin"
	"github.com/viant/mcp-ticket-gateway/internal/session"
	"github.com/viant/mcp-ticket-gateway/internal/stream"
	"github.com/viant/mcp-ticket-gateway/internal/tools"
)

func newTestHandler(t *testing.T) (*Handler, *session.Manager) {
	t.Helper()
	sessions := session.NewManager(30 * time.Minute)
	connections := stream.NewManager(840 * time.Second)
	adapter := tools.NewAdapter(backend.New("http://unused", "", 0))
	provider := &auth.APIKeyProvider{HeaderName: "x-mcp-api-key"}
	return &Handler{
		Sessions:     sessions,
		Connections:  connections,
		Dispatcher:   dispatch.New(adapter),
		AuthProvider: provider,
		AuthHeader:   "x-mcp-api-key",
		Origin:       origin.NewGuard([]string{"localhost"}),
		QueueWait:    10 * time.Millisecond,
	}, sessions
}

type flushRecorder struct {
	*httptest.ResponseRecorder
}

func (f flushRecorder) Flush() {}

func TestServeSSE_StandardModeEmitsEndpointEvent(t *testing.T) {
	h, sessions := newTestHandler(t)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/sse", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer secret-token")
	rec := flushRecorder{httptest.NewRecorder()}

	h.ServeSSE(rec, req)

	require.Contains(t, rec.Body.String(), "/messages?session_id=")
	require.NotEmpty(t, rec.Header().Get("Mcp-Session-Id"))
	require.Equal(t, 1, sessions.Count())
}

func TestServeSSE_WelcomeModeFallback(t *testing.T) {
	h, _ := newTestHandler(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/sse?api_key=abc", nil).WithContext(ctx)
	rec := flushRecorder{httptest.NewRecorder()}

	h.ServeSSE(rec, req)

	require.Contains(t, rec.Body.String(), "welcome")
}

func TestServeMessages_MissingSessionID(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeMessages(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeMessages_TokenMismatchRejected(t *testing.T) {
	h, sessions := newTestHandler(t)
	sessionID, err := sessions.Create(map[string]string{"token": "secret-token"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/messages?session_id="+sessionID, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec := httptest.NewRecorder()
	h.ServeMessages(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServeMessages_DispatchesAndEnqueues(t *testing.T) {
	h, sessions := newTestHandler(t)
	sessionID, err := sessions.Create(map[string]string{"token": "secret-token"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/messages?session_id="+sessionID, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	req.Header.Set("Authorization", "Bearer secret-token")
	rec := httptest.NewRecorder()
	h.ServeMessages(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "accepted")

	msg := sessions.WaitNext(context.Background(), sessionID, 50*time.Millisecond)
	require.NotNil(t, msg)
}

func TestServeMessages_AliasSessionIdParam(t *testing.T) {
	h, sessions := newTestHandler(t)
	sessionID, err := sessions.Create(map[string]string{"token": "secret-token"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/message?sessionId="+sessionID, strings.NewReader(`{"jsonrpc":"2.0","id":2,"method":"ping"}`))
	req.Header.Set("Authorization", "Bearer secret-token")
	rec := httptest.NewRecorder()
	h.ServeMessages(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
