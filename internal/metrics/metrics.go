// Package metrics exports the gateway's operational gauges and counters
// (C12), grounded on HyphaGroup-oubliette/internal/metrics/metrics.go's
// promauto package-level vars and request-duration middleware.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mcp_active_sessions",
		Help: "Number of live MCP sessions.",
	})

	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mcp_active_connections",
		Help: "Number of live SSE/Streamable stream connections.",
	})

	ToolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcp_tool_calls_total",
		Help: "Total tool invocations by tool name and outcome.",
	}, []string{"tool", "outcome"})

	DispatchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcp_dispatch_errors_total",
		Help: "Total JSON-RPC dispatch errors by error code.",
	}, []string{"code"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mcp_request_duration_seconds",
		Help:    "HTTP request latency by method and path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records request latency keyed by method and request path.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		RequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// RecordToolCall increments the tool-call counter for the given outcome
// ("success" or "error").
func RecordToolCall(tool, outcome string) {
	ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
}

// RecordDispatchError increments the dispatch-error counter for a
// JSON-RPC error code.
func RecordDispatchError(code int) {
	DispatchErrorsTotal.WithLabelValues(codeLabel(code)).Inc()
}

func codeLabel(code int) string {
	switch code {
	case -32700:
		return "parse_error"
	case -32600:
		return "invalid_request"
	case -32601:
		return "method_not_found"
	case -32602:
		return "invalid_params"
	case -32603:
		return "internal_error"
	case -32000:
		return "transport_error"
	default:
		return "unknown"
	}
}
