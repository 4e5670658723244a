// Package streamable implements the Streamable HTTP transport (C8): a
// single endpoint serving both JSON-RPC request/response and SSE streams,
// grounded on viant-jsonrpc/transport/server/http/streamable's GET/POST
// dispatch shape and options pattern, rebuilt against this gateway's
// session/dispatch/origin packages since the retrieved transport sources
// referenced symbols absent from the rest of the pack (see DESIGN.md).
package streamable

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	jsonrpc "github.com/viant/mcp-ticket-gateway"
	"github.com/viant/mcp-ticket-gateway/internal/auth"
	"github.com/viant/mcp-ticket-gateway/internal/dispatch"
	"github.com/viant/mcp-ticket-gateway/internal/origin"
	"github.com/viant/mcp-ticket-gateway/internal/session"
	"github.com/viant/mcp-ticket-gateway/internal/sse"
)

const SessionHeader = "Mcp-Session-Id"

// Handler serves the Streamable HTTP endpoint.
type Handler struct {
	Endpoint     string
	Sessions     *session.Manager
	Dispatcher   *dispatch.Dispatcher
	AuthProvider auth.Provider
	AuthHeader   string
	Origin       *origin.Guard
	KeepAlive    time.Duration
	Logger       jsonrpc.Logger
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin.SetCORSHeaders(w)

	if !h.Origin.Allowed(r.Header.Get("Origin")) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		writeJSONRPCError(w, http.StatusMethodNotAllowed, nil, jsonrpc.NewTransportError("method not allowed"))
	}
}

func acceptsSSE(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

func acceptsBothMediaTypes(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && strings.Contains(accept, "text/event-stream")
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	if !acceptsSSE(r) {
		writeJSONRPCError(w, http.StatusMethodNotAllowed, nil, jsonrpc.NewTransportError("GET requires Accept: text/event-stream"))
		return
	}

	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		http.Error(w, "missing "+SessionHeader, http.StatusBadRequest)
		return
	}
	if !session.ValidCharset(sessionID) {
		http.Error(w, "malformed "+SessionHeader, http.StatusBadRequest)
		return
	}
	if !h.Sessions.Validate(sessionID) {
		http.Error(w, "unknown or expired session", http.StatusNotFound)
		return
	}

	sse.SetHeaders(w)
	w.Header().Set(SessionHeader, sessionID)
	flusher, err := sse.NewFlushWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	endpoint := h.Endpoint
	if endpoint == "" {
		endpoint = "/mcp"
	}
	if _, err := flusher.Write(sse.EndpointEventStreamable(endpoint).Bytes()); err != nil {
		return
	}

	ticker := time.NewTicker(h.keepAlive())
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			h.logf("stream for session %s terminated: %v", sessionID, ctx.Err())
			return
		case <-ticker.C:
			if !h.Sessions.Validate(sessionID) {
				return
			}
			frame, err := sse.PingFrame(time.Now().UTC().Format(time.RFC3339))
			if err != nil {
				continue
			}
			if _, err := flusher.Write(frame.Bytes()); err != nil {
				return
			}
		}
	}
}

func (h *Handler) keepAlive() time.Duration {
	if h.KeepAlive <= 0 {
		return 30 * time.Second
	}
	return h.KeepAlive
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	if !acceptsBothMediaTypes(r) {
		writeJSONRPCError(w, http.StatusBadRequest, nil, jsonrpc.NewInvalidRequest("Accept header must include both application/json and text/event-stream"))
		return
	}

	body, err := readLimitedBody(r)
	if err != nil {
		writeJSONRPCError(w, http.StatusBadRequest, nil, jsonrpc.NewParsingError(err, nil))
		return
	}

	if !json.Valid(body) {
		writeJSONRPCError(w, http.StatusBadRequest, nil, jsonrpc.NewParsingError(errors.New("invalid JSON"), body))
		return
	}

	if jsonrpc.LooksLikeBatch(body) {
		writeJSONRPCError(w, http.StatusBadRequest, nil, jsonrpc.NewInvalidRequest("batch requests are not supported"))
		return
	}

	kind := dispatch.Classify(body)
	switch kind {
	case dispatch.KindRequest:
		h.handlePostRequest(w, r, body)
	case dispatch.KindNotification, dispatch.KindResponse:
		h.handlePostNotificationOrResponse(w, r, body)
	default:
		writeJSONRPCError(w, http.StatusBadRequest, nil, jsonrpc.NewInvalidRequest("well-formed JSON does not match a JSON-RPC request, notification, or response shape"))
	}
}

func (h *Handler) handlePostRequest(w http.ResponseWriter, r *http.Request, body []byte) {
	var req jsonrpc.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSONRPCError(w, http.StatusBadRequest, nil, jsonrpc.NewParsingError(err, body))
		return
	}

	if req.Method == "initialize" {
		authInfo := map[string]string{}
		if authz := r.Header.Get("Authorization"); authz != "" {
			authInfo["authorization"] = authz
		}
		sessionID, err := h.Sessions.Create(authInfo)
		if err != nil {
			writeJSONRPCError(w, http.StatusInternalServerError, req.Id, jsonrpc.NewInternalError(err))
			return
		}
		resp := h.Dispatcher.HandleRequest(r.Context(), &req)
		w.Header().Set(SessionHeader, sessionID)
		writeJSONResponse(w, http.StatusOK, resp)
		return
	}

	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		writeJSONRPCError(w, http.StatusBadRequest, req.Id, jsonrpc.NewTransportError("missing "+SessionHeader))
		return
	}
	if !session.ValidCharset(sessionID) {
		writeJSONRPCError(w, http.StatusBadRequest, req.Id, jsonrpc.NewTransportError("malformed "+SessionHeader))
		return
	}
	if !h.Sessions.Validate(sessionID) {
		writeJSONRPCError(w, http.StatusNotFound, req.Id, jsonrpc.NewTransportError("unknown or expired session"))
		return
	}

	resp := h.Dispatcher.HandleRequest(r.Context(), &req)
	h.Sessions.UpdateActivity(sessionID)
	w.Header().Set(SessionHeader, sessionID)
	writeJSONResponse(w, http.StatusOK, resp)
}

func (h *Handler) handlePostNotificationOrResponse(w http.ResponseWriter, r *http.Request, body []byte) {
	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" || !h.Sessions.Validate(sessionID) {
		writeJSONRPCError(w, http.StatusBadRequest, nil, jsonrpc.NewTransportError("missing or invalid "+SessionHeader))
		return
	}

	var notification jsonrpc.Notification
	if err := json.Unmarshal(body, &notification); err == nil && notification.Method == "notifications/cancelled" {
		var params struct {
			RequestID string `json:"requestId"`
			Reason    string `json:"reason"`
		}
		_ = json.Unmarshal(notification.Params, &params)
		h.logf("request %s cancelled: %s", params.RequestID, params.Reason)
	}

	h.Sessions.UpdateActivity(sessionID)
	w.Header().Set(SessionHeader, sessionID)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) logf(format string, args ...interface{}) {
	if h.Logger != nil {
		h.Logger.Errorf(format, args...)
	}
}

const maxRequestBody = 1 << 20

func readLimitedBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	buf, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, errors.New("empty request body")
	}
	return buf, nil
}

func writeJSONResponse(w http.ResponseWriter, status int, resp *jsonrpc.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeJSONRPCError(w http.ResponseWriter, status int, id jsonrpc.RequestId, err *jsonrpc.Error) {
	writeJSONResponse(w, status, jsonrpc.NewResponseError(id, err))
}
