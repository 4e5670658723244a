// Command stdio runs the gateway as a single-process, single-session
// STDIO adapter: one implicit session, direct dispatch, no HTTP surface.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	jsonrpc "github.com/viant/mcp-ticket-gateway"
	"github.com/viant/mcp-ticket-gateway/internal/backend"
	"github.com/viant/mcp-ticket-gateway/internal/config"
	"github.com/viant/mcp-ticket-gateway/internal/dispatch"
	"github.com/viant/mcp-ticket-gateway/internal/tools"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	backendClient := backend.New(cfg.APIBaseURL, cfg.APIKey, cfg.BackendTimeout)
	adapter := tools.NewAdapter(backendClient)
	dispatcher := dispatch.New(adapter)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	encoder := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		switch dispatch.Classify(line) {
		case dispatch.KindRequest:
			var req jsonrpc.Request
			if err := json.Unmarshal(line, &req); err != nil {
				_ = encoder.Encode(jsonrpc.NewResponseError(nil, jsonrpc.NewParsingError(err, line)))
				continue
			}
			resp := dispatcher.HandleRequest(ctx, &req)
			_ = encoder.Encode(resp)
		case dispatch.KindNotification, dispatch.KindResponse:
			// No outbound messages in single-session STDIO mode; ignored.
		default:
			_ = encoder.Encode(jsonrpc.NewResponseError(nil, jsonrpc.NewInvalidRequest("malformed JSON-RPC message")))
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "stdio read error: %v\n", err)
		os.Exit(1)
	}
}
