// Package legacy implements the pre-MCP SSE transport (C9): a GET stream
// endpoint bridged to a POST message endpoint through the session's
// queue, grounded on mcp_server/transport/sse_transport.py's two-mode
// split between "standard" (Bearer-authenticated, session-backed) and the
// pre-MCP welcome/ping loop, rebuilt over this gateway's session/stream
// managers.
package legacy

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	jsonrpc "github.com/viant/mcp-ticket-gateway"
	"github.com/viant/mcp-ticket-gateway/internal/auth"
	"github.com/viant/mcp-ticket-gateway/internal/dispatch"
	"github.com/viant/mcp-ticket-gateway/internal/origin"
	"github.com/viant/mcp-ticket-gateway/internal/session"
	"github.com/viant/mcp-ticket-gateway/internal/sse"
	"github.com/viant/mcp-ticket-gateway/internal/stream"
)

// Handler serves /sse, /messages and /message.
type Handler struct {
	Sessions     *session.Manager
	Connections  *stream.Manager
	Dispatcher   *dispatch.Dispatcher
	AuthProvider auth.Provider
	AuthHeader   string
	Origin       *origin.Guard
	QueueWait    time.Duration
	Logger       jsonrpc.Logger
}

func (h *Handler) queueWait() time.Duration {
	if h.QueueWait <= 0 {
		return 30 * time.Second
	}
	return h.QueueWait
}

// ServeSSE handles GET /sse.
func (h *Handler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	origin.SetCORSHeaders(w)
	if !h.Origin.Allowed(r.Header.Get("Origin")) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	creds := auth.ExtractCredentials(r, h.AuthHeader)
	if creds.Source == "bearer" {
		h.serveStandardStream(w, r, creds)
		return
	}
	h.serveWelcomeStream(w, r, creds)
}

// serveStandardStream is the Bearer-authenticated mode: a session is
// minted and queued responses are delivered as "message" frames.
func (h *Handler) serveStandardStream(w http.ResponseWriter, r *http.Request, creds auth.Credentials) {
	result := h.AuthProvider.Authenticate(creds)
	if !result.Success {
		writeUnauthorized(w, jsonrpc.NewUnauthorizedError(http.StatusUnauthorized, []byte(result.Err)))
		return
	}

	sessionID, err := h.Sessions.Create(map[string]string{"token": creds.APIKey})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse.SetHeaders(w)
	w.Header().Set("Mcp-Session-Id", sessionID)
	flusher, err := sse.NewFlushWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if _, err := flusher.Write(sse.EndpointEventLegacy("/messages?session_id=" + sessionID).Bytes()); err != nil {
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			h.logf("legacy stream for session %s terminated: %v", sessionID, ctx.Err())
			return
		default:
		}

		if !h.Sessions.Validate(sessionID) {
			return
		}

		msg := h.Sessions.WaitNext(ctx, sessionID, h.queueWait())
		if msg == nil {
			if _, err := flusher.Write(sse.CommentBytes("keep-alive")); err != nil {
				return
			}
			continue
		}

		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		frame := sse.Frame{Event: "message", Data: data}
		if _, err := flusher.Write(frame.Bytes()); err != nil {
			return
		}
	}
}

// serveWelcomeStream is the pre-MCP fallback: a connection-manager entry
// backs a welcome-then-ping loop with no session semantics.
func (h *Handler) serveWelcomeStream(w http.ResponseWriter, r *http.Request, creds auth.Credentials) {
	connID := h.Connections.Connect(r.RemoteAddr, map[string]string{"api_key": creds.APIKey})
	defer h.Connections.Disconnect(connID)

	sse.SetHeaders(w)
	flusher, err := sse.NewFlushWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	welcome, err := sse.NewFrame("message", map[string]interface{}{
		"type":      "welcome",
		"message":   "MCP Ticket Server connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	if _, err := flusher.Write(welcome.Bytes()); err != nil {
		return
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !h.Connections.Ping(connID) {
				return
			}
			ping, err := sse.NewFrame("message", map[string]interface{}{
				"type":      "ping",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			if err != nil {
				continue
			}
			if _, err := flusher.Write(ping.Bytes()); err != nil {
				return
			}
		}
	}
}

// ServeMessages handles POST /messages and POST /message.
func (h *Handler) ServeMessages(w http.ResponseWriter, r *http.Request) {
	origin.SetCORSHeaders(w)
	if !h.Origin.Allowed(r.Header.Get("Origin")) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = r.URL.Query().Get("sessionId")
	}
	if sessionID == "" {
		http.Error(w, "missing session_id", http.StatusBadRequest)
		return
	}
	if !session.ValidCharset(sessionID) {
		http.Error(w, "malformed session_id", http.StatusBadRequest)
		return
	}

	sess, ok := h.Sessions.Get(sessionID)
	if !ok {
		http.Error(w, "unknown or expired session", http.StatusNotFound)
		return
	}

	creds := auth.ExtractCredentials(r, h.AuthHeader)
	if creds.Empty() || sess.AuthInfo["token"] != creds.APIKey {
		writeUnauthorized(w, jsonrpc.NewUnauthorizedError(http.StatusUnauthorized, []byte("token does not match session")))
		return
	}

	body, err := readBody(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, jsonrpc.NewParsingError(err, nil))
		return
	}

	kind := dispatch.Classify(body)
	if kind != dispatch.KindRequest {
		writeJSONError(w, http.StatusBadRequest, jsonrpc.NewInvalidRequest("expected a JSON-RPC request"))
		return
	}

	var req jsonrpc.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, jsonrpc.NewParsingError(err, body))
		return
	}

	resp := h.Dispatcher.HandleRequest(r.Context(), &req)
	h.Sessions.Enqueue(sessionID, resp)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

func (h *Handler) logf(format string, args ...interface{}) {
	if h.Logger != nil {
		h.Logger.Errorf(format, args...)
	}
}

const maxRequestBody = 1 << 20

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty request body")
	}
	return body, nil
}

func writeJSONError(w http.ResponseWriter, status int, err *jsonrpc.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonrpc.NewResponseError(nil, err))
}

// writeUnauthorized reports a 401 raised as err, keyed off errors.As so a
// wrapped UnauthorizedError further up a call chain is handled the same way.
func writeUnauthorized(w http.ResponseWriter, err error) {
	var unauthorized *jsonrpc.UnauthorizedError
	if !errors.As(err, &unauthorized) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Error(w, unauthorized.Error(), unauthorized.StatusCode)
}
