package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	jsonrpc "github.com/viant/mcp-ticket-gateway"
	"github.com/viant/mcp-ticket-gateway/internal/auth"
	"github.com/viant/mcp-ticket-gateway/internal/backend"
	"github.com/viant/mcp-ticket-gateway/internal/config"
	"github.com/viant/mcp-ticket-gateway/internal/dispatch"
	"github.com/viant/mcp-ticket-gateway/internal/httpserver"
	"github.com/viant/mcp-ticket-gateway/internal/metrics"
	"github.com/viant/mcp-ticket-gateway/internal/origin"
	"github.com/viant/mcp-ticket-gateway/internal/session"
	"github.com/viant/mcp-ticket-gateway/internal/stream"
	"github.com/viant/mcp-ticket-gateway/internal/tools"
)

func main() {
	logger := jsonrpc.NewStdLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("failed to load configuration: %v", err)
		os.Exit(1)
	}

	authProvider, err := auth.NewProvider(cfg.AuthProvider, cfg.MCPAPIKeyHeader)
	if err != nil {
		logger.Errorf("failed to initialize auth provider: %v", err)
		os.Exit(1)
	}

	backendClient := backend.New(cfg.APIBaseURL, cfg.APIKey, cfg.BackendTimeout)
	adapter := tools.NewAdapter(backendClient)
	dispatcher := dispatch.New(adapter)

	sessions := session.NewManager(cfg.SessionMaxAge)
	sessions.StartCleanup(cfg.ConnectionSweep)
	defer sessions.Close()

	connections := stream.NewManager(cfg.StreamTimeout)
	connections.StartSweep(cfg.ConnectionSweep)
	defer connections.Close()

	guard := origin.NewGuard(cfg.AllowedOrigins)

	go reportGauges(ctx, sessions, connections, cfg.ConnectionSweep)

	router := httpserver.NewRouter(httpserver.Deps{
		Config:       cfg,
		Sessions:     sessions,
		Connections:  connections,
		Dispatcher:   dispatcher,
		AuthProvider: authProvider,
		Origin:       guard,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.BackendTimeout,
		WriteTimeout: cfg.StreamTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Errorf("listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("http server error: %v", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("http server shutdown error: %v", err)
	}

	fmt.Fprintln(os.Stderr, "server stopped gracefully")
}

// reportGauges periodically syncs the session/connection counters into the
// Prometheus gauges C12 exposes, since the manager's own mutex-guarded
// tables are the source of truth and should not import the metrics package
// directly.
func reportGauges(ctx context.Context, sessions *session.Manager, connections *stream.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.ActiveSessions.Set(float64(sessions.Count()))
			metrics.ActiveConnections.Set(float64(connections.ActiveCount()))
		}
	}
}
