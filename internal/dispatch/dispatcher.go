// Package dispatch implements the JSON-RPC method dispatcher (C7):
// message-kind classification and routing of initialize/tools.list/
// tools.call/ping plus notifications, grounded on viant-jsonrpc's Request/
// Notification/Response types and const.go's error codes, restructured
// around the typed ToolCall tagged union the spec's redesign notes call
// for in place of dynamic dispatch by name string.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	jsonrpc "github.com/viant/mcp-ticket-gateway"
	"github.com/viant/mcp-ticket-gateway/internal/metrics"
	"github.com/viant/mcp-ticket-gateway/internal/tools"
)

// Kind is the syntactic classification of an inbound JSON-RPC payload.
type Kind string

const (
	KindRequest      Kind = "request"
	KindNotification Kind = "notification"
	KindResponse     Kind = "response"
	KindInvalid      Kind = "invalid"
)

// envelopeProbe is used only to classify an incoming payload by field
// presence, never to decode it fully.
type envelopeProbe struct {
	Method *string          `json:"method"`
	ID     *json.RawMessage `json:"id"`
	Result *json.RawMessage `json:"result"`
	Error  *json.RawMessage `json:"error"`
}

// Classify determines the message kind purely from field presence, per
// spec.md §4.7.
func Classify(raw []byte) Kind {
	var probe envelopeProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return KindInvalid
	}
	switch {
	case probe.Method != nil && probe.ID != nil:
		return KindRequest
	case probe.Method != nil && probe.ID == nil:
		return KindNotification
	case (probe.Result != nil || probe.Error != nil) && probe.ID != nil:
		return KindResponse
	default:
		return KindInvalid
	}
}

// ToolCall is the typed tagged union the dispatcher decodes a tools/call
// request's params into, replacing dynamic dispatch by name string.
type ToolCall struct {
	Search *SearchArgs
	Fetch  *FetchArgs
}

type SearchArgs struct {
	Query string `json:"query"`
}

type FetchArgs struct {
	ID string `json:"id"`
}

// Dispatcher routes classified JSON-RPC requests to their handlers.
type Dispatcher struct {
	Tools       *tools.Adapter
	ServerName  string
	ServerVers  string
	nowFn       func() time.Time
}

// New constructs a Dispatcher over the given tool adapter.
func New(adapter *tools.Adapter) *Dispatcher {
	return &Dispatcher{
		Tools:      adapter,
		ServerName: "MCP Ticket Server",
		ServerVers: "1.0.0",
		nowFn:      time.Now,
	}
}

// HandleRequest dispatches a parsed JSON-RPC request and returns the
// Response to send back (never nil).
func (d *Dispatcher) HandleRequest(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	switch req.Method {
	case "initialize":
		return d.handleInitialize(req)
	case "tools/list":
		return d.handleToolsList(req)
	case "tools/call":
		return d.handleToolsCall(ctx, req)
	case "ping":
		return d.handlePing(req)
	default:
		metrics.RecordDispatchError(jsonrpc.MethodNotFound)
		return jsonrpc.NewResponseError(req.Id, jsonrpc.NewMethodNotFound(req.Method))
	}
}

func (d *Dispatcher) handleInitialize(req *jsonrpc.Request) *jsonrpc.Response {
	result := map[string]interface{}{
		"protocolVersion": jsonrpc.ProtocolVersion,
		"serverName":      d.ServerName,
		"serverVersion":   d.ServerVers,
		"capabilities": map[string]interface{}{
			"tools":     map[string]interface{}{},
			"resources": map[string]interface{}{},
			"prompts":   map[string]interface{}{},
			"logging":   map[string]interface{}{},
		},
	}
	return responseWithResult(req.Id, result)
}

func searchSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"query"},
		Properties: map[string]*jsonschema.Schema{
			"query": {Type: "string"},
		},
	}
}

func fetchSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"id"},
		Properties: map[string]*jsonschema.Schema{
			"id": {Type: "string"},
		},
	}
}

func (d *Dispatcher) handleToolsList(req *jsonrpc.Request) *jsonrpc.Response {
	result := map[string]interface{}{
		"tools": []map[string]interface{}{
			{"name": "search", "description": "Search tickets by free-text query", "inputSchema": searchSchema()},
			{"name": "fetch", "description": "Fetch a single ticket by id", "inputSchema": fetchSchema()},
		},
	}
	return responseWithResult(req.Id, result)
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (d *Dispatcher) handleToolsCall(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		metrics.RecordDispatchError(jsonrpc.InvalidParams)
		return jsonrpc.NewResponseError(req.Id, jsonrpc.NewInvalidParams("malformed tools/call params: "+err.Error()))
	}

	call, err := decodeToolCall(params)
	if err != nil {
		metrics.RecordToolCall(params.Name, "error")
		return jsonrpc.NewResponseError(req.Id, jsonrpc.NewInternalError(err))
	}

	var payload interface{}
	switch {
	case call.Search != nil:
		payload = d.Tools.Search(ctx, call.Search.Query)
		metrics.RecordToolCall("search", "success")
	case call.Fetch != nil:
		fetched, ferr := d.Tools.Fetch(ctx, call.Fetch.ID)
		if ferr != nil {
			metrics.RecordToolCall("fetch", "error")
			return jsonrpc.NewResponseError(req.Id, jsonrpc.NewInternalError(ferr))
		}
		payload = fetched
		metrics.RecordToolCall("fetch", "success")
	}

	text, err := json.Marshal(payload)
	if err != nil {
		return jsonrpc.NewResponseError(req.Id, jsonrpc.NewInternalError(err))
	}

	result := map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": string(text)},
		},
	}
	return responseWithResult(req.Id, result)
}

func decodeToolCall(params toolCallParams) (ToolCall, error) {
	switch params.Name {
	case "search":
		var args SearchArgs
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return ToolCall{}, fmt.Errorf("invalid search arguments: %w", err)
		}
		return ToolCall{Search: &args}, nil
	case "fetch":
		var args FetchArgs
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return ToolCall{}, fmt.Errorf("invalid fetch arguments: %w", err)
		}
		return ToolCall{Fetch: &args}, nil
	default:
		return ToolCall{}, fmt.Errorf("Unknown tool: %s", params.Name)
	}
}

func (d *Dispatcher) handlePing(req *jsonrpc.Request) *jsonrpc.Response {
	result := map[string]interface{}{
		"status":    "pong",
		"timestamp": d.nowFn().UTC().Format(time.RFC3339),
	}
	return responseWithResult(req.Id, result)
}

func responseWithResult(id jsonrpc.RequestId, result interface{}) *jsonrpc.Response {
	data, err := json.Marshal(result)
	if err != nil {
		return jsonrpc.NewResponseError(id, jsonrpc.NewInternalError(err))
	}
	return &jsonrpc.Response{Id: id, Jsonrpc: jsonrpc.Version, Result: data}
}
