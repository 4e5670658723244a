// Package httpserver assembles the edge router (C11): the chi mux that
// mounts the Streamable and legacy SSE transports, health/metrics/OAuth
// discovery stubs, and the shared request-logging/recovery middleware,
// grounded on googleapis-genai-toolbox/internal/server/server.go's chi +
// httplog + middleware.Recoverer wiring.
package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"

	"github.com/viant/mcp-ticket-gateway/internal/auth"
	"github.com/viant/mcp-ticket-gateway/internal/config"
	"github.com/viant/mcp-ticket-gateway/internal/dispatch"
	"github.com/viant/mcp-ticket-gateway/internal/metrics"
	"github.com/viant/mcp-ticket-gateway/internal/origin"
	"github.com/viant/mcp-ticket-gateway/internal/session"
	"github.com/viant/mcp-ticket-gateway/internal/stream"
	"github.com/viant/mcp-ticket-gateway/internal/transport/legacy"
	"github.com/viant/mcp-ticket-gateway/internal/transport/streamable"
)

// Deps bundles the components the router wires together.
type Deps struct {
	Config       *config.Config
	Sessions     *session.Manager
	Connections  *stream.Manager
	Dispatcher   *dispatch.Dispatcher
	AuthProvider auth.Provider
	Origin       *origin.Guard
}

// NewRouter builds the top-level chi.Router for the gateway.
func NewRouter(deps Deps) chi.Router {
	logger := httplog.NewLogger("mcp-ticket-gateway", httplog.Options{
		JSON:             deps.Config.LogJSON,
		LogLevel:         parseLevel(deps.Config.LogLevel),
		Concise:          true,
		RequestHeaders:   true,
		MessageFieldName: "message",
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  func(r *http.Request, rawOrigin string) bool { return deps.Origin.Allowed(rawOrigin) },
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Mcp-Session-Id"},
		ExposedHeaders:   []string{"Mcp-Session-Id"},
		AllowCredentials: false,
	}))

	streamableHandler := &streamable.Handler{
		Endpoint:     "/mcp",
		Sessions:     deps.Sessions,
		Dispatcher:   deps.Dispatcher,
		AuthProvider: deps.AuthProvider,
		AuthHeader:   deps.Config.MCPAPIKeyHeader,
		Origin:       deps.Origin,
		KeepAlive:    deps.Config.KeepAlivePeriod,
	}
	r.Handle("/mcp", streamableHandler)

	legacyHandler := &legacy.Handler{
		Sessions:     deps.Sessions,
		Connections:  deps.Connections,
		Dispatcher:   deps.Dispatcher,
		AuthProvider: deps.AuthProvider,
		AuthHeader:   deps.Config.MCPAPIKeyHeader,
		Origin:       deps.Origin,
		QueueWait:    deps.Config.LegacyQueueWait,
	}
	r.Get("/sse", legacyHandler.ServeSSE)
	r.Post("/messages", legacyHandler.ServeMessages)
	r.Post("/message", legacyHandler.ServeMessages)

	r.Get("/health", healthHandler(deps))
	r.Get("/.well-known/oauth-authorization-server", oauthAuthorizationServerStub(deps.Config))
	r.Get("/.well-known/oauth-protected-resource", oauthProtectedResourceStub(deps.Config))
	r.Handle("/metrics", metrics.Handler())

	return r
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func healthHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "ok",
			"sessions":    deps.Sessions.Count(),
			"connections": deps.Connections.ActiveCount(),
			"time":        time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// oauthAuthorizationServerStub and oauthProtectedResourceStub are thin,
// static discovery responses: a development shim, not a real OAuth server.
// The advertised /oauth/token endpoint is not served by this router, and no
// token is issued.
func oauthAuthorizationServerStub(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"issuer":                 baseURL(r),
			"token_endpoint":         baseURL(r) + "/oauth/token",
			"response_types_supported": []string{"token"},
			"grant_types_supported":  []string{"client_credentials"},
			"note":                   "development shim: static discovery document; no token is issued",
		})
	}
}

func oauthProtectedResourceStub(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"resource":              baseURL(r) + "/mcp",
			"authorization_servers": []string{baseURL(r)},
			"bearer_methods_supported": []string{"header"},
		})
	}
}

func baseURL(r *http.Request) string {
	fwd := origin.ExtractForwarded(r)
	return fwd.Proto + "://" + fwd.Host
}
